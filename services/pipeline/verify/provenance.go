// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package verify

import (
	"time"

	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// ProvenanceAuditor scores citation quality and hallucination risk.
//
// Per-claim score is a weighted combination of completeness (all
// required citation fields present), verification (the quoted text
// matches the source at the recorded offset; a hallucinated quote fails
// this), and freshness (citation retrieval age). Claims without
// citations score 0.
//
// Thread Safety: Safe for concurrent use (stateless after construction).
type ProvenanceAuditor struct {
	config    *ProvenanceConfig
	validator *CitationValidator

	// now is injectable for tests.
	now func() time.Time
}

// NewProvenanceAuditor creates a new provenance auditor.
//
// Inputs:
//
//	config - Configuration for the auditor (nil uses defaults).
//	validator - Citation validator used for the verification factor.
//
// Outputs:
//
//	*ProvenanceAuditor - The configured auditor.
func NewProvenanceAuditor(config *ProvenanceConfig, validator *CitationValidator) *ProvenanceAuditor {
	if config == nil {
		config = DefaultProvenanceConfig()
	}
	return &ProvenanceAuditor{
		config:    config,
		validator: validator,
		now:       time.Now,
	}
}

// Score computes one claim's provenance score in [0,1].
//
// Thread Safety: Safe for concurrent use.
func (a *ProvenanceAuditor) Score(claim *schedule.Claim, corpus schedule.Corpus) float64 {
	if claim.Citation == nil {
		return 0
	}

	completeness := a.completeness(claim.Citation)

	verification := 0.0
	if a.validator.Validate(claim, corpus).Valid {
		verification = 1.0
	}

	freshness := a.freshness(claim.Citation.RetrievedAt)

	return a.config.CompletenessWeight*completeness +
		a.config.VerificationWeight*verification +
		a.config.FreshnessWeight*freshness
}

// TaskScore computes the mean provenance score over a task's claims.
// Tasks without claims score 0.
func (a *ProvenanceAuditor) TaskScore(taskClaims []schedule.Claim, corpus schedule.Corpus) float64 {
	if len(taskClaims) == 0 {
		return 0
	}

	sum := 0.0
	for i := range taskClaims {
		sum += a.Score(&taskClaims[i], corpus)
	}
	return sum / float64(len(taskClaims))
}

// completeness scores the fraction of required citation fields present.
func (a *ProvenanceAuditor) completeness(cit *schedule.Citation) float64 {
	present := 0
	total := 4

	if cit.DocumentName != "" {
		present++
	}
	if cit.Quote != "" {
		present++
	}
	if cit.End > cit.Start {
		present++
	}
	if !cit.RetrievedAt.IsZero() {
		present++
	}

	return float64(present) / float64(total)
}

// freshness scores citation age in decaying tiers.
func (a *ProvenanceAuditor) freshness(retrievedAt time.Time) float64 {
	if retrievedAt.IsZero() {
		return 0
	}

	age := a.now().Sub(retrievedAt)
	days := int(age.Hours() / 24)

	switch {
	case days <= a.config.FreshDays:
		return 1.0
	case days <= a.config.RecentDays:
		return 0.7
	case days <= a.config.StaleDays:
		return 0.4
	default:
		return 0.2
	}
}

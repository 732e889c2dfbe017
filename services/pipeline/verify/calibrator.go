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
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// Calibration adjustments. Deterministic, no randomness.
const (
	// coverageBonus applies when task citation coverage is at or above
	// the high threshold.
	coverageBonus = 0.10

	// coveragePenalty applies when task citation coverage is below the
	// low threshold.
	coveragePenalty = -0.15

	// contradictionPenalty applies per associated high-severity
	// contradiction.
	contradictionPenalty = -0.20

	// provenancePenalty applies when the task provenance score is below
	// the provenance threshold.
	provenancePenalty = -0.10

	// originBonus applies to explicit-origin claims.
	originBonus = 0.05
)

// Calibrator recomputes claim confidence from coverage, contradictions,
// and provenance.
//
// The calibrator must run only after contradiction detection and
// provenance audit have completed for the entire ledger: cross-task
// contradictions must be known before any claim is recalibrated.
//
// Thread Safety: Safe for concurrent use (stateless after construction).
type Calibrator struct {
	config *CalibratorConfig
}

// NewCalibrator creates a new confidence calibrator.
func NewCalibrator(config *CalibratorConfig) *Calibrator {
	if config == nil {
		config = DefaultCalibratorConfig()
	}
	return &Calibrator{config: config}
}

// Calibrate computes a claim's recalibrated confidence.
//
// Description:
//
//	confidence = clamp(base + coverage + contradictions + provenance
//	+ origin, 0, 1). The result always lands in [0,1] regardless of
//	input magnitudes.
//
// Inputs:
//
//	claim - The claim being recalibrated (base confidence source).
//	taskCoverage - The owning task's citation coverage.
//	taskProvenance - The owning task's provenance score.
//	contradictions - All contradictions involving the claim.
//
// Outputs:
//
//	float64 - The new confidence in [0,1].
//
// Thread Safety: Safe for concurrent use.
func (c *Calibrator) Calibrate(claim *schedule.Claim, taskCoverage, taskProvenance float64, contradictions []schedule.Contradiction) float64 {
	confidence := claim.Confidence

	switch {
	case taskCoverage >= c.config.CoverageHighThreshold:
		confidence += coverageBonus
	case taskCoverage < c.config.CoverageLowThreshold:
		confidence += coveragePenalty
	}

	for _, con := range contradictions {
		if con.Severity == schedule.SeverityHigh && con.Involves(claim.ID) {
			confidence += contradictionPenalty
		}
	}

	if taskProvenance < c.config.ProvenanceThreshold {
		confidence += provenancePenalty
	}

	if claim.Origin == schedule.OriginExplicit {
		confidence += originBonus
	}

	return Clamp(confidence)
}

// Clamp bounds a confidence value to [0,1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

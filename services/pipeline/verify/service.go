// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package verify implements the per-task validation service and its
// checkers: citation validation, provenance audit, contradiction
// detection, and confidence calibration.
package verify

import (
	"context"
	"fmt"

	"github.com/AleutianAI/planproof/pkg/logging"
	"github.com/AleutianAI/planproof/services/pipeline/claims"
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// Service coordinates citation validation, provenance audit,
// contradiction detection, and confidence calibration against one
// shared per-job ledger.
//
// The flow is two-phase by design: Populate must finish across ALL
// tasks before Validate runs, because contradiction detection over a
// partial ledger yields order-dependent false negatives.
//
// Thread Safety: A Service is safe for concurrent use, but a Ledger
// belongs to exactly one job.
type Service struct {
	citations  *CitationValidator
	provenance *ProvenanceAuditor
	detector   *ContradictionDetector
	calibrator *Calibrator
	logger     *logging.Logger
}

// NewService creates a validation service with the given configuration.
//
// Inputs:
//
//	config - Service configuration (nil uses defaults).
//	logger - Structured logger (nil uses the default logger).
//
// Outputs:
//
//	*Service - The configured service.
func NewService(config *Config, logger *logging.Logger) *Service {
	if config == nil {
		defaultConfig := DefaultConfig()
		config = &defaultConfig
	}
	if logger == nil {
		logger = logging.Default()
	}

	citations := NewCitationValidator(config.CitationValidatorConfig)
	return &Service{
		citations:  citations,
		provenance: NewProvenanceAuditor(config.ProvenanceConfig, citations),
		detector:   NewContradictionDetector(config.DetectorConfig, logger),
		calibrator: NewCalibrator(config.CalibratorConfig),
		logger:     logger,
	}
}

// Populate extracts claims from every task into the ledger.
//
// Description:
//
//	Phase one of validation. Tasks are processed in stable input
//	order; each populated field yields one claim.
//
// Inputs:
//
//	ledger - The job's ledger, empty on first call.
//	tasks - All schedule tasks.
//
// Outputs:
//
//	error - Non-nil if a claim could not be added (duplicate task ID).
func (s *Service) Populate(ledger *claims.Ledger, tasks []*schedule.Task) error {
	for _, task := range tasks {
		extracted := claims.Extract(task)
		if err := ledger.Add(extracted...); err != nil {
			return fmt.Errorf("populating ledger for task %s: %w", task.ID, err)
		}
	}
	return nil
}

// Validate runs detection, audit, and calibration over the populated
// ledger, then writes ValidationMetadata onto every task.
//
// Description:
//
//	Contradiction detection runs first over the whole ledger. Citation
//	coverage and provenance are then computed per task, and only once
//	both are known for the entire ledger does calibration run — the
//	calibrator depends on cross-task contradictions being complete.
//	Metadata is recomputed from scratch: nothing accumulates across
//	validation passes.
//
// Inputs:
//
//	ctx - Context for cancellation between phases.
//	ledger - The fully populated job ledger.
//	tasks - All schedule tasks, in stable order.
//	corpus - Source documents for citation checks.
//
// Outputs:
//
//	error - ctx.Err() on cancellation; otherwise nil.
func (s *Service) Validate(ctx context.Context, ledger *claims.Ledger, tasks []*schedule.Task, corpus schedule.Corpus) error {
	s.detector.Detect(ctx, ledger)
	if err := ctx.Err(); err != nil {
		return err
	}

	// Coverage and provenance for every task before any calibration.
	coverage := make(map[string]float64, len(tasks))
	provenance := make(map[string]float64, len(tasks))
	for _, task := range tasks {
		taskClaims := ledger.ByTask(task.ID)
		coverage[task.ID] = s.citations.Coverage(taskClaims, corpus)
		provenance[task.ID] = s.provenance.TaskScore(taskClaims, corpus)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Calibrate every claim in place.
	for _, task := range tasks {
		for _, claim := range ledger.ByTask(task.ID) {
			cons := ledger.ContradictionsFor([]string{claim.ID})
			newConfidence := s.calibrator.Calibrate(&claim, coverage[task.ID], provenance[task.ID], cons)
			if err := ledger.UpdateConfidence(claim.ID, newConfidence); err != nil {
				return fmt.Errorf("calibrating claim %s: %w", claim.ID, err)
			}
		}
	}

	// Write fresh metadata onto each task.
	for _, task := range tasks {
		taskClaims := ledger.ByTask(task.ID)
		claimIDs := make([]string, len(taskClaims))
		for i := range taskClaims {
			claimIDs[i] = taskClaims[i].ID
		}

		task.Validation = &schedule.ValidationMetadata{
			Claims:           taskClaims,
			CitationCoverage: coverage[task.ID],
			Contradictions:   ledger.ContradictionsFor(claimIDs),
			ProvenanceScore:  provenance[task.ID],
		}

		if len(taskClaims) > 0 {
			sum := 0.0
			for i := range taskClaims {
				sum += taskClaims[i].Confidence
			}
			task.Confidence = sum / float64(len(taskClaims))
		}
	}

	return nil
}

// Run executes both phases: populate then validate.
func (s *Service) Run(ctx context.Context, ledger *claims.Ledger, tasks []*schedule.Task, corpus schedule.Corpus) error {
	if err := s.Populate(ledger, tasks); err != nil {
		return err
	}
	return s.Validate(ctx, ledger, tasks, corpus)
}

// CitationValidator exposes the underlying citation validator for
// callers that need single-claim checks (the repair engine).
func (s *Service) CitationValidator() *CitationValidator {
	return s.citations
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package repair

import (
	"context"
	"errors"

	"github.com/AleutianAI/planproof/pkg/logging"
	"github.com/AleutianAI/planproof/services/pipeline/gates"
	"github.com/AleutianAI/planproof/services/pipeline/verify"
)

// FinalStatus is the terminal outcome of a repair run.
type FinalStatus string

const (
	// StatusClean means every gate passes, warnings included.
	StatusClean FinalStatus = "clean"

	// StatusPartial means the attempt budget ran out (or repair
	// stalled) with gate failures remaining. Not an error: the job
	// still completes and surfaces RemainingFailures.
	StatusPartial FinalStatus = "partial"

	// StatusTimeout means the wall-clock budget expired before repair
	// finished; the log and report carry the best state reached.
	StatusTimeout FinalStatus = "timeout"
)

// Attempt records one iteration of the repair loop.
type Attempt struct {
	Number   int      `json:"number"`
	Failures []string `json:"failures"`
	Actions  []Action `json:"actions,omitempty"`
}

// Log is the append-only audit record of a repair run.
type Log struct {
	Attempts          []Attempt          `json:"attempts"`
	FinalStatus       FinalStatus        `json:"final_status"`
	RemainingFailures []gates.GateResult `json:"remaining_failures,omitempty"`
}

// Engine drives the bounded repair loop: evaluate gates, dispatch a
// strategy per failed gate, re-evaluate, repeat.
//
// Termination is guaranteed two ways: the attempt budget is a hard cap,
// and an attempt in which no strategy changed anything ends the loop
// early (repeating it would change nothing either).
//
// Thread Safety: Safe for concurrent use against distinct environments.
type Engine struct {
	config     *Config
	manager    *gates.Manager
	strategies map[string]Strategy
	logger     *logging.Logger
}

// NewEngine creates a repair engine with one strategy per gate.
//
// Inputs:
//
//	config - Repair bounds (nil uses defaults).
//	gateConfig - Gate thresholds, shared with the gate manager so
//	repairs target the same limits gating checks (nil uses defaults).
//	citations - Citation validator used by the confidence strategy.
//	logger - Structured logger (nil uses the default logger).
//
// Outputs:
//
//	*Engine - The configured engine.
func NewEngine(config *Config, gateConfig *gates.Config, citations *verify.CitationValidator, logger *logging.Logger) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	if gateConfig == nil {
		gateConfig = gates.DefaultConfig()
	}
	if citations == nil {
		citations = verify.NewCitationValidator(nil)
	}
	if logger == nil {
		logger = logging.Default()
	}

	strategies := []Strategy{
		citationCoverageStrategy{},
		contradictionStrategy{loserPenalty: config.LoserPenalty},
		confidenceStrategy{
			threshold: gateConfig.ConfidenceThreshold,
			boost:     config.ConfidenceBoost,
			citations: citations,
		},
		schemaStrategy{},
		regulatoryStrategy{keywords: gateConfig.RegulatoryKeywords},
	}

	byGate := make(map[string]Strategy, len(strategies))
	for _, s := range strategies {
		byGate[s.Gate()] = s
	}

	return &Engine{
		config:     config,
		manager:    gates.NewManager(gateConfig, logger),
		strategies: byGate,
		logger:     logger,
	}
}

// Run executes the repair loop until clean, stalled, cancelled, or out
// of attempts.
//
// Description:
//
//	Each attempt dispatches the matching strategy for every currently
//	failed gate, then re-evaluates all gates. The log records every
//	attempt and action; nothing is ever removed from it.
//
// Inputs:
//
//	ctx - Context checked between attempts.
//	env - The job state to repair in place.
//
// Outputs:
//
//	*Log - The append-only repair audit log.
//	gates.Report - The final gate report after the last attempt.
//	error - ctx.Err() on explicit cancellation. A deadline expiry is
//	not an error: remaining attempts are truncated and the best state
//	reached is returned with FinalStatus timeout. Strategy errors are
//	logged and skipped, not returned.
func (e *Engine) Run(ctx context.Context, env *Environment) (*Log, gates.Report, error) {
	log := &Log{}
	report := e.manager.Evaluate(env.Tasks, env.Ledger)

	for attempt := 1; attempt <= e.config.MaxAttempts; attempt++ {
		failed := report.Failed()
		if len(failed) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			e.finalize(log, report, err)
			if errors.Is(err, context.DeadlineExceeded) {
				return log, report, nil
			}
			return log, report, err
		}

		record := Attempt{Number: attempt}
		changed := false
		for _, failure := range failed {
			record.Failures = append(record.Failures, failure.Name)

			strategy, ok := e.strategies[failure.Name]
			if !ok {
				continue
			}
			action, err := strategy.Apply(ctx, env, failure)
			if err != nil {
				e.logger.Warn("repair strategy failed",
					"gate", failure.Name,
					"attempt", attempt,
					"error", err.Error())
				continue
			}
			if action.Changed() {
				changed = true
				record.Actions = append(record.Actions, *action)
			}
		}
		log.Attempts = append(log.Attempts, record)

		report = e.manager.Evaluate(env.Tasks, env.Ledger)
		if !changed {
			// Stalled: another attempt would change nothing.
			break
		}
	}

	e.finalize(log, report, nil)
	return log, report, nil
}

func (e *Engine) finalize(log *Log, report gates.Report, ctxErr error) {
	log.RemainingFailures = report.Failed()
	switch {
	case len(log.RemainingFailures) == 0:
		log.FinalStatus = StatusClean
	case errors.Is(ctxErr, context.DeadlineExceeded):
		log.FinalStatus = StatusTimeout
	default:
		log.FinalStatus = StatusPartial
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/AleutianAI/planproof/services/pipeline/gates"
	"github.com/AleutianAI/planproof/services/pipeline/repair"
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// State is a job's position in the pipeline state machine.
type State string

const (
	StateQueued     State = "queued"
	StateExtracting State = "extracting"
	StateValidating State = "validating"
	StateGating     State = "gating"
	StateRepairing  State = "repairing"
	StateFinalizing State = "finalizing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Terminal reports whether the state is an end state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// transitions is the legal state machine. Every state may also fail.
var transitions = map[State][]State{
	StateQueued:     {StateExtracting},
	StateExtracting: {StateValidating},
	StateValidating: {StateGating},
	StateGating:     {StateRepairing, StateFinalizing},
	StateRepairing:  {StateFinalizing},
	StateFinalizing: {StateCompleted},
}

func legalTransition(from, to State) bool {
	if to == StateFailed {
		return !from.Terminal()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// stateProgress maps pipeline states onto the polling contract's 0-100
// progress percent. Failed jobs keep the progress of the phase that
// failed.
var stateProgress = map[State]int{
	StateQueued:     0,
	StateExtracting: 15,
	StateValidating: 40,
	StateGating:     60,
	StateRepairing:  75,
	StateFinalizing: 90,
	StateCompleted:  100,
}

// Status is the overall quality outcome of a finished job.
type Status string

const (
	// StatusClean means every gate passed.
	StatusClean Status = "clean"

	// StatusPartial means blockers passed but warning gates still fail.
	StatusPartial Status = "partial"

	// StatusBlocked means blocker gates still fail after repair ran out
	// of attempts.
	StatusBlocked Status = "blocked"
)

// statusFromReport derives the job status from the final gate report,
// for repaired and validate-only runs alike.
func statusFromReport(report *gates.Report) Status {
	switch {
	case len(report.Failed()) == 0:
		return StatusClean
	case report.Passed():
		return StatusPartial
	default:
		return StatusBlocked
	}
}

// schemaFailure converts a schema gate still failing after repair into
// the job-fatal finalization error.
func schemaFailure(report *gates.Report) error {
	result := report.Result(gates.GateSchemaCompliance)
	if result == nil || result.Passed {
		return nil
	}
	return fmt.Errorf("schema compliance failed at finalization: %s",
		strings.Join(result.Details, "; "))
}

// Result is the output contract of a finished pipeline run.
type Result struct {
	// Tasks carry recalibrated confidences, flags, notes, and
	// validation metadata.
	Tasks []*schedule.Task `json:"tasks"`

	// Report is the final gate report.
	Report gates.Report `json:"report"`

	// RepairLog is nil for validate-only runs.
	RepairLog *repair.Log `json:"repair_log,omitempty"`

	// Status summarizes the quality outcome.
	Status Status `json:"status"`

	// ClaimCounts is the ledger summary by claim kind.
	ClaimCounts map[schedule.ClaimKind]int `json:"claim_counts"`
}

// Job tracks one asynchronous pipeline run.
type Job struct {
	ID    string `json:"id"`
	State State  `json:"state"`

	// Progress is the 0-100 polling percent, advanced at each state
	// transition.
	Progress int `json:"progress"`

	SubmittedAt time.Time `json:"submitted_at"`
	StartedAt   time.Time `json:"started_at,omitzero"`
	CompletedAt time.Time `json:"completed_at,omitzero"`

	// Error holds the failure message for failed jobs.
	Error string `json:"error,omitempty"`

	// Result is set once the job completes.
	Result *Result `json:"result,omitempty"`
}

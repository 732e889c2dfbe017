// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package repair runs targeted repair strategies against failed quality
// gates, inside a bounded loop that always terminates.
package repair

import (
	"context"

	"github.com/AleutianAI/planproof/services/pipeline/claims"
	"github.com/AleutianAI/planproof/services/pipeline/gates"
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// FlagManualReview marks a task whose low-confidence uncited claims
// could not be repaired automatically.
const FlagManualReview = "manual-review"

// Environment is the mutable job state a strategy operates on.
type Environment struct {
	Tasks  []*schedule.Task
	Ledger *claims.Ledger
	Corpus schedule.Corpus
}

// Action records what one strategy did during one attempt. Actions are
// append-only: the log is audit state, never rewritten.
type Action struct {
	// Gate is the failed gate this action addressed.
	Gate string `json:"gate"`

	// Changes lists the individual mutations, human readable.
	Changes []string `json:"changes"`
}

// Changed reports whether the action mutated anything.
func (a *Action) Changed() bool {
	return len(a.Changes) > 0
}

// Strategy repairs one class of gate failure.
//
// A strategy mutates the environment in place and reports what it
// changed. Strategies must be idempotent: applying one to an
// already-repaired environment yields no further changes.
type Strategy interface {
	// Gate names the gate this strategy repairs.
	Gate() string

	// Apply attempts repair for one gate failure.
	Apply(ctx context.Context, env *Environment, failure gates.GateResult) (*Action, error)
}

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
	"fmt"

	"github.com/google/uuid"

	"github.com/AleutianAI/planproof/services/pipeline/gates"
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
	"github.com/AleutianAI/planproof/services/pipeline/verify"
)

// citationCoverageStrategy annotates uncited claims with an inference
// rationale so a reviewer can see why no citation exists. It never
// fabricates citations, so it cannot raise coverage on its own.
type citationCoverageStrategy struct{}

func (citationCoverageStrategy) Gate() string { return gates.GateCitationCoverage }

func (citationCoverageStrategy) Apply(_ context.Context, env *Environment, _ gates.GateResult) (*Action, error) {
	action := &Action{Gate: gates.GateCitationCoverage}

	for _, claim := range env.Ledger.All() {
		if claim.Cited() || claim.Rationale != "" {
			continue
		}
		rationale := fmt.Sprintf("no source citation: %s value inferred by the generator", claim.Kind)
		if err := env.Ledger.SetRationale(claim.ID, rationale); err != nil {
			return nil, err
		}
		action.Changes = append(action.Changes, fmt.Sprintf("rationale attached to claim %s", claim.ID))

		if task := taskByID(env.Tasks, claim.TaskID); task != nil {
			task.Notes = append(task.Notes, fmt.Sprintf("claim %s: %s", claim.ID, rationale))
		}
	}
	return action, nil
}

// contradictionStrategy resolves unresolved high-severity
// contradictions by picking a winner: explicit origin beats inference,
// then higher confidence, then the lexically smaller claim ID. The
// loser keeps its record but points at the winner and loses confidence.
type contradictionStrategy struct {
	loserPenalty float64
}

func (contradictionStrategy) Gate() string { return gates.GateContradictionSeverity }

func (s contradictionStrategy) Apply(_ context.Context, env *Environment, _ gates.GateResult) (*Action, error) {
	action := &Action{Gate: gates.GateContradictionSeverity}

	for _, con := range env.Ledger.UnresolvedHighSeverity() {
		a := env.Ledger.Get(con.ClaimA)
		b := env.Ledger.Get(con.ClaimB)
		if a == nil || b == nil {
			return nil, fmt.Errorf("contradiction %s references a missing claim", con.ID)
		}

		winner, loser := pickWinner(a, b)
		if err := env.Ledger.ResolveContradiction(con.ID, winner.ID); err != nil {
			return nil, err
		}
		if err := env.Ledger.SetResolution(loser.ID, winner.ID); err != nil {
			return nil, err
		}
		if err := env.Ledger.UpdateConfidence(loser.ID, verify.Clamp(loser.Confidence-s.loserPenalty)); err != nil {
			return nil, err
		}
		action.Changes = append(action.Changes,
			fmt.Sprintf("contradiction %s resolved: %s wins over %s", con.ID, winner.ID, loser.ID))
	}
	return action, nil
}

// pickWinner orders two conflicting claims.
func pickWinner(a, b *schedule.Claim) (winner, loser *schedule.Claim) {
	switch {
	case a.Origin == schedule.OriginExplicit && b.Origin != schedule.OriginExplicit:
		return a, b
	case b.Origin == schedule.OriginExplicit && a.Origin != schedule.OriginExplicit:
		return b, a
	case a.Confidence != b.Confidence:
		if a.Confidence > b.Confidence {
			return a, b
		}
		return b, a
	case a.ID < b.ID:
		return a, b
	default:
		return b, a
	}
}

// confidenceStrategy boosts valid cited claims below the threshold and
// flags tasks whose uncited low-confidence claims need a human.
type confidenceStrategy struct {
	threshold float64
	boost     float64
	citations *verify.CitationValidator
}

func (confidenceStrategy) Gate() string { return gates.GateConfidenceMinimum }

func (s confidenceStrategy) Apply(_ context.Context, env *Environment, _ gates.GateResult) (*Action, error) {
	action := &Action{Gate: gates.GateConfidenceMinimum}

	for _, claim := range env.Ledger.BelowConfidence(s.threshold) {
		if claim.Cited() && s.citations.Validate(&claim, env.Corpus).Valid {
			boosted := verify.Clamp(claim.Confidence + s.boost)
			if boosted == claim.Confidence {
				continue
			}
			if err := env.Ledger.UpdateConfidence(claim.ID, boosted); err != nil {
				return nil, err
			}
			action.Changes = append(action.Changes,
				fmt.Sprintf("claim %s confidence boosted to %.2f", claim.ID, boosted))
			continue
		}

		task := taskByID(env.Tasks, claim.TaskID)
		if task != nil && !task.HasFlag(FlagManualReview) {
			task.AddFlag(FlagManualReview)
			action.Changes = append(action.Changes,
				fmt.Sprintf("task %s flagged %s", task.ID, FlagManualReview))
		}
	}
	return action, nil
}

// schemaStrategy repairs schema violations in place: missing IDs get
// generated identifiers, out-of-range confidences are clamped, and
// malformed fields or citations are dropped.
type schemaStrategy struct{}

func (schemaStrategy) Gate() string { return gates.GateSchemaCompliance }

func (schemaStrategy) Apply(_ context.Context, env *Environment, _ gates.GateResult) (*Action, error) {
	action := &Action{Gate: gates.GateSchemaCompliance}

	for _, task := range env.Tasks {
		if task.ID == "" {
			task.ID = uuid.NewString()
			action.Changes = append(action.Changes, fmt.Sprintf("task assigned generated ID %s", task.ID))
		}
		if task.Name == "" {
			task.Name = "task-" + task.ID
			action.Changes = append(action.Changes, fmt.Sprintf("task %s assigned placeholder name", task.ID))
		}
		if task.Confidence < 0 || task.Confidence > 1 {
			task.Confidence = verify.Clamp(task.Confidence)
			action.Changes = append(action.Changes,
				fmt.Sprintf("task %s confidence clamped to %.2f", task.ID, task.Confidence))
		}

		kept := task.Fields[:0]
		for i := range task.Fields {
			field := task.Fields[i]
			if !knownKind(field.Kind) || field.Value == "" {
				action.Changes = append(action.Changes,
					fmt.Sprintf("task %s field %q dropped (malformed)", task.ID, field.Kind))
				continue
			}
			if field.Confidence != nil && (*field.Confidence < 0 || *field.Confidence > 1) {
				clamped := verify.Clamp(*field.Confidence)
				field.Confidence = &clamped
				action.Changes = append(action.Changes,
					fmt.Sprintf("task %s field %s confidence clamped to %.2f", task.ID, field.Kind, clamped))
			}
			citations := field.Citations[:0]
			for _, cit := range field.Citations {
				if cit.End < cit.Start || cit.Start < 0 {
					action.Changes = append(action.Changes,
						fmt.Sprintf("task %s field %s citation dropped (offsets [%d,%d))", task.ID, field.Kind, cit.Start, cit.End))
					continue
				}
				citations = append(citations, cit)
			}
			field.Citations = citations
			kept = append(kept, field)
		}
		task.Fields = kept
	}
	return action, nil
}

func knownKind(kind schedule.FieldKind) bool {
	for _, k := range schedule.KnownFieldKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// regulatoryStrategy attaches the regulatory review flag to every task
// the keyword heuristic matches.
type regulatoryStrategy struct {
	keywords []string
}

func (regulatoryStrategy) Gate() string { return gates.GateRegulatoryFlags }

func (s regulatoryStrategy) Apply(_ context.Context, env *Environment, _ gates.GateResult) (*Action, error) {
	action := &Action{Gate: gates.GateRegulatoryFlags}

	for _, task := range env.Tasks {
		matched := gates.RegulatoryMatches(s.keywords, task)
		if len(matched) == 0 || task.HasFlag(gates.FlagRegulatoryReview) {
			continue
		}
		task.AddFlag(gates.FlagRegulatoryReview)
		task.Notes = append(task.Notes,
			fmt.Sprintf("flagged for regulatory review (matched: %v)", matched))
		action.Changes = append(action.Changes,
			fmt.Sprintf("task %s flagged %s", task.ID, gates.FlagRegulatoryReview))
	}
	return action, nil
}

func taskByID(tasks []*schedule.Task, id string) *schedule.Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package claims decomposes tasks into atomic claims and stores them in
// a per-job ledger for cross-task contradiction detection.
package claims

import (
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// DefaultClaimConfidence is assigned when a field carries no confidence
// of its own.
const DefaultClaimConfidence = 0.5

// Extract decomposes one task into atomic claims, one per populated
// sourced field. Absent fields produce no claim.
//
// Description:
//
//	Each claim gets a deterministic ID derived from task and field
//	kind, confidence initialized from the field (DefaultClaimConfidence
//	if absent), origin copied from the field, and the field's first
//	citation if present. Pure function: no side effects beyond the
//	returned slice.
//
// Inputs:
//
//	task - The task to decompose.
//
// Outputs:
//
//	[]schedule.Claim - One claim per populated field, in stable field
//	order.
func Extract(task *schedule.Task) []schedule.Claim {
	if task == nil {
		return nil
	}

	subject := schedule.NormalizeSubject(task.Name)
	out := make([]schedule.Claim, 0, len(task.Fields))

	for _, field := range task.Fields {
		if field.Value == "" {
			continue
		}

		confidence := DefaultClaimConfidence
		if field.Confidence != nil {
			confidence = *field.Confidence
		}

		origin := field.Origin
		if origin == "" {
			origin = schedule.OriginInference
		}

		claim := schedule.Claim{
			ID:         ClaimID(task.ID, field.Kind),
			Kind:       schedule.ClaimKindForField(field.Kind),
			TaskID:     task.ID,
			Subject:    subject,
			Value:      field.Value,
			Unit:       field.Unit,
			Confidence: confidence,
			Origin:     origin,
		}

		if len(field.Citations) > 0 {
			// The first citation is the claim's backing reference;
			// additional citations stay on the field.
			cit := field.Citations[0]
			claim.Citation = &cit
		}

		out = append(out, claim)
	}

	return out
}

// ClaimID derives the stable claim identifier for a task field.
func ClaimID(taskID string, kind schedule.FieldKind) string {
	return taskID + ":" + string(kind)
}

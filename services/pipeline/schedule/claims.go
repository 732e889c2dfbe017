// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schedule

import (
	"regexp"
	"strings"
)

// ClaimKind is the tagged-union discriminant for claims. There is one
// kind per sourced field kind; comparators switch exhaustively on it.
type ClaimKind string

const (
	ClaimDuration    ClaimKind = "duration"
	ClaimStartDate   ClaimKind = "start_date"
	ClaimDependency  ClaimKind = "dependency"
	ClaimResource    ClaimKind = "resource"
	ClaimRequirement ClaimKind = "requirement"
)

// ClaimKindForField maps a field kind to its claim kind.
func ClaimKindForField(kind FieldKind) ClaimKind {
	switch kind {
	case FieldDuration:
		return ClaimDuration
	case FieldStartDate:
		return ClaimStartDate
	case FieldDependency:
		return ClaimDependency
	case FieldResource:
		return ClaimResource
	case FieldRequirement:
		return ClaimRequirement
	default:
		return ClaimKind(kind)
	}
}

// Claim is an atomic, independently verifiable assertion about one task
// field.
//
// Identity (ID, Kind, TaskID, Value) is immutable after extraction.
// Confidence is the only field the calibrator updates; Resolution and
// Rationale are set only by the repair engine. Claims are never deleted.
type Claim struct {
	// ID is deterministic: "<taskID>:<kind>".
	ID string `json:"id"`

	Kind   ClaimKind `json:"kind"`
	TaskID string    `json:"task_id"`

	// Subject is the normalized grouping key for contradiction
	// detection. Claims sharing Kind and Subject are comparable.
	Subject string `json:"subject"`

	// Value is the original field value, verbatim.
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`

	Confidence float64 `json:"confidence"`
	Origin     Origin  `json:"origin"`

	// Citation is nil for uncited claims.
	Citation *Citation `json:"citation,omitempty"`

	// Resolution points at the winning claim when this claim lost a
	// contradiction. Empty otherwise.
	Resolution string `json:"resolution,omitempty"`

	// Rationale is the inference-rationale note attached by
	// citation-coverage repair.
	Rationale string `json:"rationale,omitempty"`
}

// Cited reports whether the claim carries a citation.
func (c *Claim) Cited() bool {
	return c.Citation != nil
}

// ContradictionKind categorizes a detected conflict between two claims.
type ContradictionKind string

const (
	ContradictionNumerical    ContradictionKind = "numerical"
	ContradictionPolarity     ContradictionKind = "polarity"
	ContradictionTemporal     ContradictionKind = "temporal"
	ContradictionDefinitional ContradictionKind = "definitional"
)

// Severity ranks a contradiction.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Contradiction is a detected conflict between two claims sharing a
// kind and a comparable subject. Resolution is set only by the repair
// engine; no contradiction is ever deleted.
type Contradiction struct {
	ID          string            `json:"id"`
	Kind        ContradictionKind `json:"kind"`
	Severity    Severity          `json:"severity"`
	ClaimA      string            `json:"claim_a"`
	ClaimB      string            `json:"claim_b"`
	Description string            `json:"description"`

	// Resolution is the winning claim ID once repaired.
	Resolution string `json:"resolution,omitempty"`
}

// Resolved reports whether a winner has been recorded.
func (c *Contradiction) Resolved() bool {
	return c.Resolution != ""
}

// Involves reports whether the contradiction references the claim ID.
func (c *Contradiction) Involves(claimID string) bool {
	return c.ClaimA == claimID || c.ClaimB == claimID
}

var subjectStripPattern = regexp.MustCompile(`[^a-z0-9 ]+`)

// NormalizeSubject canonicalizes a task name into a contradiction
// grouping key: lowercase, punctuation stripped, whitespace collapsed.
func NormalizeSubject(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = subjectStripPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// SubjectKey builds the (kind, subject) grouping key used by the ledger
// and the contradiction detector.
func SubjectKey(kind ClaimKind, subject string) string {
	return string(kind) + "|" + subject
}

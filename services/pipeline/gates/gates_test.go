// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/planproof/services/pipeline/claims"
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

func validatedTask(id string, coverage, provenance float64) *schedule.Task {
	return &schedule.Task{
		ID:         id,
		Name:       "Task " + id,
		Confidence: 0.8,
		Validation: &schedule.ValidationMetadata{
			CitationCoverage: coverage,
			ProvenanceScore:  provenance,
		},
	}
}

func ledgerWithConfidences(t *testing.T, confidences ...float64) *claims.Ledger {
	t.Helper()
	ledger := claims.NewLedger()
	for i, conf := range confidences {
		err := ledger.Add(schedule.Claim{
			ID:         string(rune('a'+i)) + ":duration",
			Kind:       schedule.ClaimDuration,
			TaskID:     string(rune('a' + i)),
			Subject:    "subject " + string(rune('a'+i)),
			Value:      "1 day",
			Confidence: conf,
		})
		require.NoError(t, err)
	}
	return ledger
}

func TestCitationCoverageGate(t *testing.T) {
	m := NewManager(nil, nil)
	ledger := claims.NewLedger()

	t.Run("passes at threshold", func(t *testing.T) {
		tasks := []*schedule.Task{
			validatedTask("a", 0.9, 0.9),
			validatedTask("b", 0.6, 0.9),
		}
		report := m.Evaluate(tasks, ledger)
		result := report.Result(GateCitationCoverage)
		require.NotNil(t, result)
		assert.True(t, result.Passed)
		assert.InDelta(t, 0.75, result.Score, 1e-9)
	})

	t.Run("fails below threshold with per-task details", func(t *testing.T) {
		tasks := []*schedule.Task{
			validatedTask("a", 0.9, 0.9),
			validatedTask("b", 0.2, 0.9),
		}
		report := m.Evaluate(tasks, ledger)
		result := report.Result(GateCitationCoverage)
		require.NotNil(t, result)
		assert.False(t, result.Passed)
		assert.True(t, result.Blocker)
		assert.Len(t, result.Details, 1)
		assert.Contains(t, result.Details[0], "task b")
	})
}

func TestContradictionSeverityGate(t *testing.T) {
	m := NewManager(nil, nil)
	tasks := []*schedule.Task{validatedTask("a", 1, 1)}

	ledger := ledgerWithConfidences(t, 0.8, 0.8)
	ledger.AddContradictions(schedule.Contradiction{
		ID:       "numerical|a:duration|b:duration",
		Kind:     schedule.ContradictionNumerical,
		Severity: schedule.SeverityHigh,
		ClaimA:   "a:duration",
		ClaimB:   "b:duration",
	})

	report := m.Evaluate(tasks, ledger)
	result := report.Result(GateContradictionSeverity)
	require.NotNil(t, result)
	assert.False(t, result.Passed)
	assert.False(t, report.Passed())

	// Resolving the contradiction clears the gate.
	require.NoError(t, ledger.ResolveContradiction("numerical|a:duration|b:duration", "a:duration"))
	report = m.Evaluate(tasks, ledger)
	assert.True(t, report.Result(GateContradictionSeverity).Passed)
}

func TestConfidenceMinimumGate_WarningOnly(t *testing.T) {
	m := NewManager(nil, nil)
	tasks := []*schedule.Task{validatedTask("a", 1, 1)}
	ledger := ledgerWithConfidences(t, 0.3, 0.4)

	report := m.Evaluate(tasks, ledger)
	result := report.Result(GateConfidenceMinimum)
	require.NotNil(t, result)
	assert.False(t, result.Passed)
	assert.False(t, result.Blocker)

	// A failed warning gate does not block the report.
	assert.True(t, report.Passed())
	assert.Len(t, report.Failed(), 1)
}

func TestSchemaComplianceGate(t *testing.T) {
	m := NewManager(nil, nil)
	ledger := claims.NewLedger()

	bad := validatedTask("a", 1, 1)
	bad.Confidence = 1.4
	badConf := -0.2
	bad.Fields = []schedule.SourcedField{
		{Kind: "made_up", Value: "x"},
		{Kind: schedule.FieldDuration, Value: ""},
		{Kind: schedule.FieldResource, Value: "crane", Confidence: &badConf},
	}

	report := m.Evaluate([]*schedule.Task{bad}, ledger)
	result := report.Result(GateSchemaCompliance)
	require.NotNil(t, result)
	assert.False(t, result.Passed)
	assert.True(t, result.Blocker)
	// Out-of-range task confidence, unknown kind, empty value, bad field
	// confidence.
	assert.Len(t, result.Details, 4)
}

func TestRegulatoryFlagsGate(t *testing.T) {
	m := NewManager(nil, nil)
	ledger := claims.NewLedger()

	task := validatedTask("a", 1, 1)
	task.Description = "Obtain building permit before excavation"

	report := m.Evaluate([]*schedule.Task{task}, ledger)
	result := report.Result(GateRegulatoryFlags)
	require.NotNil(t, result)
	assert.False(t, result.Passed)
	assert.False(t, result.Blocker)

	// Once flagged, the gate passes.
	task.AddFlag(FlagRegulatoryReview)
	report = m.Evaluate([]*schedule.Task{task}, ledger)
	assert.True(t, report.Result(GateRegulatoryFlags).Passed)
}

// Re-evaluating an unchanged schedule yields an identical report and
// does not accumulate GatesPassed entries.
func TestEvaluate_Idempotent(t *testing.T) {
	m := NewManager(nil, nil)
	tasks := []*schedule.Task{
		validatedTask("a", 0.9, 0.9),
		validatedTask("b", 0.8, 0.9),
	}
	ledger := ledgerWithConfidences(t, 0.8, 0.7)

	first := m.Evaluate(tasks, ledger)
	second := m.Evaluate(tasks, ledger)

	assert.Equal(t, first, second)
	for _, task := range tasks {
		assert.Len(t, task.Validation.GatesPassed, 5)
	}
}

func TestRegulatoryMatches(t *testing.T) {
	keywords := DefaultConfig().RegulatoryKeywords

	task := &schedule.Task{
		ID:   "t1",
		Name: "Interior finishes",
		Fields: []schedule.SourcedField{
			{Kind: schedule.FieldRequirement, Value: "Schedule OSHA inspection after scaffold erection"},
		},
	}
	matched := RegulatoryMatches(keywords, task)
	assert.ElementsMatch(t, []string{"inspection", "osha"}, matched)

	plain := &schedule.Task{ID: "t2", Name: "Paint walls"}
	assert.Empty(t, RegulatoryMatches(keywords, plain))
}

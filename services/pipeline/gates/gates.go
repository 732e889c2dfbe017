// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gates evaluates quality gates over a validated schedule. Gate
// evaluation is pure: the same tasks and ledger always produce the same
// report, and evaluation never mutates claims or contradictions.
package gates

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/planproof/pkg/logging"
	"github.com/AleutianAI/planproof/services/pipeline/claims"
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// Gate names. The repair engine keys its strategies on these.
const (
	GateCitationCoverage      = "CITATION_COVERAGE"
	GateContradictionSeverity = "CONTRADICTION_SEVERITY"
	GateConfidenceMinimum     = "CONFIDENCE_MINIMUM"
	GateSchemaCompliance      = "SCHEMA_COMPLIANCE"
	GateRegulatoryFlags       = "REGULATORY_FLAGS"
)

// FlagRegulatoryReview marks a task the regulatory heuristic matched.
const FlagRegulatoryReview = "regulatory-review"

// GateResult is one gate's outcome.
type GateResult struct {
	// Name is the gate identifier.
	Name string `json:"name"`

	// Blocker gates prevent finalization when failed; non-blocker gates
	// only warn.
	Blocker bool `json:"blocker"`

	Passed bool `json:"passed"`

	// Score is the measured value the gate compared against Threshold.
	// Zero for gates without a scalar measure.
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`

	// Details lists the specific failures behind a failed gate.
	Details []string `json:"details,omitempty"`
}

// Report is the outcome of one full gate evaluation.
type Report struct {
	Results []GateResult `json:"results"`
}

// Passed reports whether every blocker gate passed. Failed warning
// gates do not block.
func (r *Report) Passed() bool {
	for _, res := range r.Results {
		if res.Blocker && !res.Passed {
			return false
		}
	}
	return true
}

// Failed returns every failed gate, blockers and warnings alike.
func (r *Report) Failed() []GateResult {
	var out []GateResult
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res)
		}
	}
	return out
}

// Result returns the named gate's result, or nil.
func (r *Report) Result(name string) *GateResult {
	for i := range r.Results {
		if r.Results[i].Name == name {
			return &r.Results[i]
		}
	}
	return nil
}

// Manager evaluates all quality gates against a validated schedule.
//
// Thread Safety: Safe for concurrent use (stateless after construction).
type Manager struct {
	config *Config
	logger *logging.Logger
}

// NewManager creates a gate manager.
//
// Inputs:
//
//	config - Gate thresholds (nil uses defaults).
//	logger - Structured logger (nil uses the default logger).
//
// Outputs:
//
//	*Manager - The configured manager.
func NewManager(config *Config, logger *logging.Logger) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{config: config, logger: logger}
}

// Evaluate runs every gate and writes the per-task GatesPassed list.
//
// Description:
//
//	Evaluation order is fixed. GatesPassed is overwritten on every
//	evaluation, never appended, so repeated evaluation of an unchanged
//	schedule yields an identical report and identical task metadata.
//
// Inputs:
//
//	tasks - Tasks with validation metadata already written.
//	ledger - The job's populated ledger.
//
// Outputs:
//
//	Report - All five gate results.
//
// Thread Safety: Safe for concurrent use against distinct ledgers.
func (m *Manager) Evaluate(tasks []*schedule.Task, ledger *claims.Ledger) Report {
	report := Report{
		Results: []GateResult{
			m.citationCoverage(tasks),
			m.contradictionSeverity(ledger),
			m.confidenceMinimum(ledger),
			m.schemaCompliance(tasks),
			m.regulatoryFlags(tasks),
		},
	}

	var passedNames []string
	for _, res := range report.Results {
		if res.Passed {
			passedNames = append(passedNames, res.Name)
		} else {
			m.logger.Info("quality gate failed",
				"gate", res.Name,
				"blocker", res.Blocker,
				"score", res.Score,
				"threshold", res.Threshold)
		}
	}
	for _, task := range tasks {
		if task.Validation != nil {
			task.Validation.GatesPassed = append([]string(nil), passedNames...)
		}
	}

	return report
}

// citationCoverage passes when mean task coverage meets the threshold.
// Blocker.
func (m *Manager) citationCoverage(tasks []*schedule.Task) GateResult {
	result := GateResult{
		Name:      GateCitationCoverage,
		Blocker:   true,
		Threshold: m.config.CoverageThreshold,
	}

	if len(tasks) == 0 {
		result.Score = 1
		result.Passed = true
		return result
	}

	sum := 0.0
	for _, task := range tasks {
		if task.Validation != nil {
			sum += task.Validation.CitationCoverage
		}
	}
	result.Score = sum / float64(len(tasks))
	result.Passed = result.Score >= result.Threshold

	if !result.Passed {
		for _, task := range tasks {
			if task.Validation != nil && task.Validation.CitationCoverage < m.config.CoverageThreshold {
				result.Details = append(result.Details,
					fmt.Sprintf("task %s coverage %.2f", task.ID, task.Validation.CitationCoverage))
			}
		}
	}
	return result
}

// contradictionSeverity passes only when no unresolved high-severity
// contradiction remains. Blocker.
func (m *Manager) contradictionSeverity(ledger *claims.Ledger) GateResult {
	result := GateResult{
		Name:    GateContradictionSeverity,
		Blocker: true,
	}

	unresolved := ledger.UnresolvedHighSeverity()
	result.Score = float64(len(unresolved))
	result.Passed = len(unresolved) == 0
	for _, con := range unresolved {
		result.Details = append(result.Details, fmt.Sprintf("%s: %s", con.ID, con.Description))
	}
	return result
}

// confidenceMinimum passes when mean claim confidence meets the
// threshold. Warning only.
func (m *Manager) confidenceMinimum(ledger *claims.Ledger) GateResult {
	result := GateResult{
		Name:      GateConfidenceMinimum,
		Blocker:   false,
		Threshold: m.config.ConfidenceThreshold,
	}

	all := ledger.All()
	if len(all) == 0 {
		result.Score = 1
		result.Passed = true
		return result
	}

	sum := 0.0
	for i := range all {
		sum += all[i].Confidence
	}
	result.Score = sum / float64(len(all))
	result.Passed = result.Score >= result.Threshold

	if !result.Passed {
		for _, c := range ledger.BelowConfidence(m.config.ConfidenceThreshold) {
			result.Details = append(result.Details, fmt.Sprintf("claim %s confidence %.2f", c.ID, c.Confidence))
		}
	}
	return result
}

// schemaCompliance passes when no task violates the output schema.
// Blocker.
func (m *Manager) schemaCompliance(tasks []*schedule.Task) GateResult {
	result := GateResult{
		Name:    GateSchemaCompliance,
		Blocker: true,
	}

	violations := SchemaViolations(tasks)
	result.Score = float64(len(violations))
	result.Passed = len(violations) == 0
	for _, v := range violations {
		result.Details = append(result.Details, v.Error())
	}
	return result
}

// regulatoryFlags passes when every keyword-matched task carries the
// regulatory review flag. Warning only; the repair engine attaches the
// missing flags.
func (m *Manager) regulatoryFlags(tasks []*schedule.Task) GateResult {
	result := GateResult{
		Name:    GateRegulatoryFlags,
		Blocker: false,
		Passed:  true,
	}

	for _, task := range tasks {
		matched := RegulatoryMatches(m.config.RegulatoryKeywords, task)
		if len(matched) > 0 && !task.HasFlag(FlagRegulatoryReview) {
			result.Passed = false
			result.Score++
			result.Details = append(result.Details,
				fmt.Sprintf("task %s matches %s without %s flag", task.ID, strings.Join(matched, ", "), FlagRegulatoryReview))
		}
	}
	return result
}

// SchemaViolations checks every task against the output schema.
//
// Checked: non-empty task ID and name, task and field confidences in
// [0,1], known field kinds, non-empty field values, and citation
// offsets with End >= Start.
func SchemaViolations(tasks []*schedule.Task) []*SchemaViolationError {
	var out []*SchemaViolationError

	for _, task := range tasks {
		if task.ID == "" {
			out = append(out, &SchemaViolationError{Reason: "task missing ID"})
		}
		if task.Name == "" {
			out = append(out, &SchemaViolationError{TaskID: task.ID, Reason: "task missing name"})
		}
		if task.Confidence < 0 || task.Confidence > 1 {
			out = append(out, &SchemaViolationError{
				TaskID: task.ID,
				Reason: fmt.Sprintf("task confidence %.2f outside [0,1]", task.Confidence),
			})
		}

		for i := range task.Fields {
			field := &task.Fields[i]
			if !knownFieldKind(field.Kind) {
				out = append(out, &SchemaViolationError{
					TaskID: task.ID,
					Field:  string(field.Kind),
					Reason: "unknown field kind",
				})
			}
			if field.Value == "" {
				out = append(out, &SchemaViolationError{
					TaskID: task.ID,
					Field:  string(field.Kind),
					Reason: "field missing value",
				})
			}
			if field.Confidence != nil && (*field.Confidence < 0 || *field.Confidence > 1) {
				out = append(out, &SchemaViolationError{
					TaskID: task.ID,
					Field:  string(field.Kind),
					Reason: fmt.Sprintf("field confidence %.2f outside [0,1]", *field.Confidence),
				})
			}
			for _, cit := range field.Citations {
				if cit.End < cit.Start || cit.Start < 0 {
					out = append(out, &SchemaViolationError{
						TaskID: task.ID,
						Field:  string(field.Kind),
						Reason: fmt.Sprintf("citation offsets [%d,%d) malformed", cit.Start, cit.End),
					})
				}
			}
		}
	}
	return out
}

func knownFieldKind(kind schedule.FieldKind) bool {
	for _, k := range schedule.KnownFieldKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// RegulatoryMatches returns the keywords matched by a task's name,
// description, or requirement field values. Case-insensitive substring
// match.
func RegulatoryMatches(keywords []string, task *schedule.Task) []string {
	var haystack strings.Builder
	haystack.WriteString(task.Name)
	haystack.WriteString(" ")
	haystack.WriteString(task.Description)
	for i := range task.Fields {
		if task.Fields[i].Kind == schedule.FieldRequirement {
			haystack.WriteString(" ")
			haystack.WriteString(task.Fields[i].Value)
		}
	}
	text := strings.ToLower(haystack.String())

	var matched []string
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

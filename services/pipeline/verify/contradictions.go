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
	"context"
	"fmt"
	"math"

	"github.com/AleutianAI/planproof/pkg/logging"
	"github.com/AleutianAI/planproof/services/pipeline/claims"
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// ContradictionDetector finds conflicting claims sharing a kind and
// subject.
//
// Claims are grouped by (kind, subject) before pairwise comparison, so
// the quadratic cost applies only within each group, never across
// unrelated claims. Detection requires the complete ledger: running it
// before every claim is extracted produces order-dependent false
// negatives.
//
// Thread Safety: Safe for concurrent use (stateless after construction).
type ContradictionDetector struct {
	config *DetectorConfig
	logger *logging.Logger
}

// NewContradictionDetector creates a new contradiction detector.
//
// Inputs:
//
//	config - Detection tolerances (nil uses defaults).
//	logger - Destination for per-claim scoring errors (nil uses the
//	default logger).
//
// Outputs:
//
//	*ContradictionDetector - The configured detector.
func NewContradictionDetector(config *DetectorConfig, logger *logging.Logger) *ContradictionDetector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ContradictionDetector{config: config, logger: logger}
}

// Detect compares all comparable claim pairs in the ledger and appends
// discovered contradictions to it.
//
// Description:
//
//	Pairwise comparison within each (kind, subject) group. A claim
//	whose value cannot be parsed is skipped and logged (ScoringError
//	isolation); the rest of the detection continues.
//
// Inputs:
//
//	ctx - Context for cancellation between groups.
//	ledger - The fully populated per-job ledger.
//
// Outputs:
//
//	[]schedule.Contradiction - The contradictions appended this run.
//
// Thread Safety: Safe for concurrent use.
func (d *ContradictionDetector) Detect(ctx context.Context, ledger *claims.Ledger) []schedule.Contradiction {
	groups := ledger.Groups()

	var found []schedule.Contradiction
	for _, key := range ledger.GroupKeys() {
		select {
		case <-ctx.Done():
			ledger.AddContradictions(found...)
			return found
		default:
		}

		group := groups[key]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				con, err := d.compare(&group[i], &group[j])
				if err != nil {
					d.logger.Warn("claim skipped during contradiction detection", "error", err.Error())
					continue
				}
				if con != nil {
					found = append(found, *con)
				}
			}
		}
	}

	ledger.AddContradictions(found...)
	return found
}

// compare dispatches on the claim kind. The switch is exhaustive over
// the claim tagged union; both claims in a pair share the kind by
// construction of the groups.
func (d *ContradictionDetector) compare(a, b *schedule.Claim) (*schedule.Contradiction, error) {
	switch a.Kind {
	case schedule.ClaimDuration:
		return d.compareNumerical(a, b)
	case schedule.ClaimStartDate:
		return d.compareTemporal(a, b)
	case schedule.ClaimDependency:
		return d.compareDependency(a, b)
	case schedule.ClaimResource:
		return d.comparePolarity(a, b)
	case schedule.ClaimRequirement:
		return d.compareRequirement(a, b)
	default:
		return nil, &claims.ScoringError{ClaimID: a.ID, Reason: fmt.Sprintf("unknown claim kind %q", a.Kind)}
	}
}

// compareNumerical applies the relative-difference bands: below the
// noise threshold there is no contradiction, between the thresholds the
// severity is medium, above the high threshold it is high.
func (d *ContradictionDetector) compareNumerical(a, b *schedule.Claim) (*schedule.Contradiction, error) {
	va, err := parseDurationDays(a)
	if err != nil {
		return nil, err
	}
	vb, err := parseDurationDays(b)
	if err != nil {
		return nil, err
	}

	larger := math.Max(math.Abs(va), math.Abs(vb))
	if larger == 0 {
		return nil, nil
	}

	diff := math.Abs(va-vb) / larger
	if diff < d.config.NumericalNoiseThreshold {
		return nil, nil
	}

	severity := schedule.SeverityMedium
	if diff > d.config.NumericalHighThreshold {
		severity = schedule.SeverityHigh
	}

	return d.newContradiction(schedule.ContradictionNumerical, severity, a, b,
		fmt.Sprintf("duration claims differ by %.0f%%: %s %s vs %s %s", diff*100, a.Value, a.Unit, b.Value, b.Unit)), nil
}

// compareTemporal flags date claims for the same event differing beyond
// the tolerance window as high, and non-zero differences within the
// window as medium.
func (d *ContradictionDetector) compareTemporal(a, b *schedule.Claim) (*schedule.Contradiction, error) {
	ta, err := parseDate(a)
	if err != nil {
		return nil, err
	}
	tb, err := parseDate(b)
	if err != nil {
		return nil, err
	}

	diffDays := int(math.Abs(ta.Sub(tb).Hours()) / 24)
	if diffDays == 0 {
		return nil, nil
	}

	severity := schedule.SeverityMedium
	if diffDays > d.config.TemporalToleranceDays {
		severity = schedule.SeverityHigh
	}

	return d.newContradiction(schedule.ContradictionTemporal, severity, a, b,
		fmt.Sprintf("start dates for the same event differ by %d days: %s vs %s", diffDays, a.Value, b.Value)), nil
}

// comparePolarity flags directly opposing categorical assertions.
// Opposite negation of a similar core, or entirely different
// assignments for the same subject, are high severity.
func (d *ContradictionDetector) comparePolarity(a, b *schedule.Claim) (*schedule.Contradiction, error) {
	coreA, negA := parsePolarity(a.Value)
	coreB, negB := parsePolarity(b.Value)

	if negA != negB && coreA == coreB {
		return d.newContradiction(schedule.ContradictionPolarity, schedule.SeverityHigh, a, b,
			fmt.Sprintf("opposing assertions: %q vs %q", a.Value, b.Value)), nil
	}

	if negA == negB && coreA != coreB {
		return d.newContradiction(schedule.ContradictionPolarity, schedule.SeverityHigh, a, b,
			fmt.Sprintf("conflicting assignments for the same subject: %q vs %q", a.Value, b.Value)), nil
	}

	return nil, nil
}

// compareDependency treats dependency lists as sets. Equal sets agree;
// disjoint sets are directly opposing (high); partial overlap is not a
// contradiction.
func (d *ContradictionDetector) compareDependency(a, b *schedule.Claim) (*schedule.Contradiction, error) {
	setA := parseSet(a.Value)
	setB := parseSet(b.Value)

	if len(setA) == 0 || len(setB) == 0 || setsEqual(setA, setB) {
		return nil, nil
	}

	if setsDisjoint(setA, setB) {
		return d.newContradiction(schedule.ContradictionPolarity, schedule.SeverityHigh, a, b,
			fmt.Sprintf("dependency sets share no members: %q vs %q", a.Value, b.Value)), nil
	}

	return nil, nil
}

// compareRequirement checks polarity first (opposite negation is a hard
// conflict), then falls back to the definitional similarity heuristic.
// Definitional detection never escalates past medium: the heuristic is
// prone to false positives.
func (d *ContradictionDetector) compareRequirement(a, b *schedule.Claim) (*schedule.Contradiction, error) {
	coreA, negA := parsePolarity(a.Value)
	coreB, negB := parsePolarity(b.Value)

	if negA != negB && jaccard(tokenSet(coreA), tokenSet(coreB)) >= d.config.DefinitionalSimilarityThreshold {
		return d.newContradiction(schedule.ContradictionPolarity, schedule.SeverityHigh, a, b,
			fmt.Sprintf("opposing requirement assertions: %q vs %q", a.Value, b.Value)), nil
	}

	sim := jaccard(tokenSet(a.Value), tokenSet(b.Value))
	if sim >= d.config.DefinitionalSimilarityThreshold {
		return nil, nil
	}

	severity := schedule.SeverityLow
	if sim < d.config.DefinitionalSimilarityThreshold/2 {
		severity = schedule.SeverityMedium
	}

	return d.newContradiction(schedule.ContradictionDefinitional, severity, a, b,
		fmt.Sprintf("same label described dissimilarly (similarity %.2f): %q vs %q", sim, a.Value, b.Value)), nil
}

// newContradiction builds a contradiction with a deterministic ID so
// repeated validation passes produce identical records.
func (d *ContradictionDetector) newContradiction(kind schedule.ContradictionKind, severity schedule.Severity, a, b *schedule.Claim, description string) *schedule.Contradiction {
	first, second := sortedPair(a.ID, b.ID)
	return &schedule.Contradiction{
		ID:          fmt.Sprintf("%s|%s|%s", kind, first, second),
		Kind:        kind,
		Severity:    severity,
		ClaimA:      first,
		ClaimB:      second,
		Description: description,
	}
}

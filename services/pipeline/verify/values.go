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
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/planproof/services/pipeline/claims"
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// numberPattern extracts the leading numeric token from values like
// "10", "10 days", "approx 10.5".
var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// parseDurationDays parses a duration claim into days.
//
// The unit comes from the claim's Unit field, falling back to a unit
// word inside the value ("10 days"). Unknown units default to days.
func parseDurationDays(c *schedule.Claim) (float64, error) {
	raw := numberPattern.FindString(c.Value)
	if raw == "" {
		return 0, &claims.ScoringError{ClaimID: c.ID, Reason: "no numeric value in " + strconv.Quote(c.Value)}
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &claims.ScoringError{ClaimID: c.ID, Reason: "unparseable number " + strconv.Quote(raw)}
	}

	unit := strings.ToLower(strings.TrimSpace(c.Unit))
	if unit == "" {
		unit = unitFromText(c.Value)
	}

	switch {
	case strings.HasPrefix(unit, "hour"), unit == "h", unit == "hrs":
		return n / 24, nil
	case strings.HasPrefix(unit, "week"), unit == "w", unit == "wks":
		return n * 7, nil
	case strings.HasPrefix(unit, "month"), unit == "mo":
		return n * 30, nil
	default:
		// days, "d", or unknown
		return n, nil
	}
}

// unitFromText finds a unit word in a free-form value.
func unitFromText(value string) string {
	lower := strings.ToLower(value)
	for _, u := range []string{"hour", "week", "month", "day"} {
		if strings.Contains(lower, u) {
			return u
		}
	}
	return ""
}

// dateLayouts are tried in order when parsing date claims.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// parseDate parses a start-date claim value.
func parseDate(c *schedule.Claim) (time.Time, error) {
	value := strings.TrimSpace(c.Value)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, &claims.ScoringError{ClaimID: c.ID, Reason: "unparseable date " + strconv.Quote(c.Value)}
}

// negationPattern matches negated categorical assertions
// ("no crane required", "does not need a permit", "without scaffolding").
var negationPattern = regexp.MustCompile(`(?i)\b(no|not|none|never|without|doesn'?t|don'?t)\b`)

// parsePolarity splits a categorical value into its normalized core
// statement and a negation flag.
func parsePolarity(value string) (core string, negated bool) {
	negated = negationPattern.MatchString(value)
	core = negationPattern.ReplaceAllString(value, " ")
	return schedule.NormalizeSubject(core), negated
}

// parseSet splits a comma/semicolon separated value into a normalized
// member set, used for dependency claims.
func parseSet(value string) map[string]bool {
	out := make(map[string]bool)
	for _, part := range strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		if norm := schedule.NormalizeSubject(part); norm != "" {
			out[norm] = true
		}
	}
	return out
}

// setsEqual reports whether two member sets are identical.
func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// setsDisjoint reports whether two member sets share no members.
func setsDisjoint(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return false
		}
	}
	return true
}

// definitionalStopWords are filtered before token similarity.
var definitionalStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "to": true, "for": true,
	"and": true, "or": true, "in": true, "on": true, "at": true, "with": true,
	"is": true, "are": true, "be": true, "this": true, "that": true,
	"must": true, "shall": true, "will": true, "required": true, "requires": true,
}

// tokenSet tokenizes text for similarity comparison.
func tokenSet(text string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range strings.Fields(schedule.NormalizeSubject(text)) {
		if len(tok) < 3 || definitionalStopWords[tok] {
			continue
		}
		out[tok] = true
	}
	return out
}

// jaccard computes token-set similarity in [0,1]. Two empty sets are
// considered identical.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// sortedPair orders two claim IDs for deterministic contradiction IDs.
func sortedPair(a, b string) (string, string) {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0], pair[1]
}

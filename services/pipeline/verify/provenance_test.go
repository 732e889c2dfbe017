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
	"math"
	"strings"
	"testing"
	"time"
)

func newTestAuditor(now time.Time) *ProvenanceAuditor {
	a := NewProvenanceAuditor(nil, NewCitationValidator(nil))
	a.now = func() time.Time { return now }
	return a
}

func TestScore_Uncited(t *testing.T) {
	a := newTestAuditor(time.Now())
	claim := citedClaim("x", 0, 1)
	claim.Citation = nil

	if got := a.Score(claim, testCorpus()); got != 0 {
		t.Fatalf("expected score 0 for uncited claim, got %.3f", got)
	}
}

func TestScore_CompleteVerifiedFresh(t *testing.T) {
	now := time.Now()
	a := newTestAuditor(now)

	quote := "requires 10 days"
	start := strings.Index(testDoc, quote)
	claim := citedClaim(quote, start, start+len(quote))
	claim.Citation.RetrievedAt = now.AddDate(0, 0, -1)

	// Complete (1.0), verified (1.0), fresh (1.0) under 0.4/0.4/0.2.
	if got := a.Score(claim, testCorpus()); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected score 1.0, got %.3f", got)
	}
}

func TestScore_HallucinatedQuote(t *testing.T) {
	now := time.Now()
	a := newTestAuditor(now)

	// Quote not present in the document at the recorded offsets.
	claim := citedClaim("requires 30 days", 16, 32)
	claim.Citation.RetrievedAt = now.AddDate(0, 0, -1)

	// Completeness and freshness survive; verification fails.
	got := a.Score(claim, testCorpus())
	want := 0.4*1.0 + 0.4*0 + 0.2*1.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected score %.3f for hallucinated quote, got %.3f", want, got)
	}
}

func TestFreshnessTiers(t *testing.T) {
	now := time.Now()
	a := newTestAuditor(now)

	cases := []struct {
		name string
		age  int
		want float64
	}{
		{"fresh", 10, 1.0},
		{"recent", 60, 0.7},
		{"stale", 200, 0.4},
		{"ancient", 400, 0.2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := a.freshness(now.AddDate(0, 0, -tc.age))
			if got != tc.want {
				t.Fatalf("age %d days: expected freshness %.1f, got %.1f", tc.age, tc.want, got)
			}
		})
	}

	if got := a.freshness(time.Time{}); got != 0 {
		t.Fatalf("expected freshness 0 for zero time, got %.1f", got)
	}
}

func TestTaskScore_NoClaims(t *testing.T) {
	a := newTestAuditor(time.Now())
	if got := a.TaskScore(nil, testCorpus()); got != 0 {
		t.Fatalf("expected task score 0 without claims, got %.3f", got)
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package claims

import (
	"sync"
	"testing"

	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

func testClaim(id, taskID, subject string, kind schedule.ClaimKind) schedule.Claim {
	return schedule.Claim{
		ID:         id,
		Kind:       kind,
		TaskID:     taskID,
		Subject:    subject,
		Value:      "10",
		Unit:       "days",
		Confidence: 0.5,
		Origin:     schedule.OriginInference,
	}
}

func TestLedger_AddAndGet(t *testing.T) {
	ledger := NewLedger()

	err := ledger.Add(testClaim("t1:duration", "t1", "pour foundation", schedule.ClaimDuration))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := ledger.Get("t1:duration")
	if got == nil || got.TaskID != "t1" {
		t.Fatal("expected stored claim")
	}

	if ledger.Get("missing") != nil {
		t.Error("expected nil for missing claim")
	}
}

func TestLedger_DuplicateIDRejected(t *testing.T) {
	ledger := NewLedger()
	c := testClaim("t1:duration", "t1", "s", schedule.ClaimDuration)

	if err := ledger.Add(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ledger.Add(c); err == nil {
		t.Error("expected duplicate claim to be rejected")
	}
}

func TestLedger_GroupsRequireTwoClaims(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Add(
		testClaim("t1:duration", "t1", "pour foundation", schedule.ClaimDuration),
		testClaim("t2:duration", "t2", "pour foundation", schedule.ClaimDuration),
		testClaim("t3:duration", "t3", "electrical", schedule.ClaimDuration),
	)

	groups := ledger.Groups()
	if len(groups) != 1 {
		t.Fatalf("expected 1 comparable group, got %d", len(groups))
	}

	key := schedule.SubjectKey(schedule.ClaimDuration, "pour foundation")
	if len(groups[key]) != 2 {
		t.Errorf("expected 2 claims in group, got %d", len(groups[key]))
	}
}

func TestLedger_GroupsSeparateKinds(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Add(
		testClaim("t1:duration", "t1", "pour foundation", schedule.ClaimDuration),
		testClaim("t1:start_date", "t1", "pour foundation", schedule.ClaimStartDate),
	)

	// Same subject, different kinds: not comparable.
	if groups := ledger.Groups(); len(groups) != 0 {
		t.Errorf("expected no comparable groups across kinds, got %d", len(groups))
	}
}

func TestLedger_UpdateConfidenceInPlace(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Add(testClaim("t1:duration", "t1", "s", schedule.ClaimDuration))

	if err := ledger.UpdateConfidence("t1:duration", 0.9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ledger.Get("t1:duration").Confidence; got != 0.9 {
		t.Errorf("expected confidence 0.9, got %f", got)
	}

	if err := ledger.UpdateConfidence("missing", 0.1); err == nil {
		t.Error("expected error for unknown claim")
	}
}

func TestLedger_BelowConfidence(t *testing.T) {
	ledger := NewLedger()
	low := testClaim("t1:duration", "t1", "a", schedule.ClaimDuration)
	low.Confidence = 0.2
	high := testClaim("t2:duration", "t2", "b", schedule.ClaimDuration)
	high.Confidence = 0.8
	_ = ledger.Add(low, high)

	got := ledger.BelowConfidence(0.5)
	if len(got) != 1 || got[0].ID != "t1:duration" {
		t.Errorf("expected only the low-confidence claim, got %v", got)
	}
}

func TestLedger_Summary(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Add(
		testClaim("t1:duration", "t1", "a", schedule.ClaimDuration),
		testClaim("t2:duration", "t2", "b", schedule.ClaimDuration),
		testClaim("t1:resource", "t1", "a", schedule.ClaimResource),
	)

	summary := ledger.Summary()
	if summary[schedule.ClaimDuration] != 2 || summary[schedule.ClaimResource] != 1 {
		t.Errorf("unexpected summary: %v", summary)
	}
}

func TestLedger_Contradictions(t *testing.T) {
	ledger := NewLedger()
	ledger.AddContradictions(schedule.Contradiction{
		ID:       "c1",
		Kind:     schedule.ContradictionNumerical,
		Severity: schedule.SeverityHigh,
		ClaimA:   "t1:duration",
		ClaimB:   "t2:duration",
	})

	if got := ledger.UnresolvedHighSeverity(); len(got) != 1 {
		t.Fatalf("expected 1 unresolved high contradiction, got %d", len(got))
	}

	if err := ledger.ResolveContradiction("c1", "t2:duration"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := ledger.UnresolvedHighSeverity(); len(got) != 0 {
		t.Errorf("expected no unresolved contradictions after resolve, got %d", len(got))
	}

	forClaims := ledger.ContradictionsFor([]string{"t1:duration"})
	if len(forClaims) != 1 || forClaims[0].Resolution != "t2:duration" {
		t.Errorf("expected resolved contradiction for claim, got %v", forClaims)
	}
}

func TestLedger_ConcurrentAccess(t *testing.T) {
	ledger := NewLedger()
	_ = ledger.Add(testClaim("t1:duration", "t1", "a", schedule.ClaimDuration))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ledger.UpdateConfidence("t1:duration", 0.7)
			_ = ledger.All()
			_ = ledger.Groups()
		}()
	}
	wg.Wait()

	if got := ledger.Get("t1:duration").Confidence; got != 0.7 {
		t.Errorf("expected confidence 0.7 after concurrent updates, got %f", got)
	}
}

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
	"fmt"
	"sort"
	"sync"

	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// Ledger is the per-job store of all claims and discovered
// contradictions across one schedule.
//
// A Ledger is constructed fresh per orchestrator run and must never be
// shared between jobs: cross-job leakage would corrupt contradiction
// detection with unrelated schedules.
//
// Thread Safety: Safe for concurrent use.
type Ledger struct {
	mu             sync.RWMutex
	order          []string
	claims         map[string]*schedule.Claim
	contradictions []schedule.Contradiction
}

// NewLedger creates an empty per-job ledger.
func NewLedger() *Ledger {
	return &Ledger{
		claims: make(map[string]*schedule.Claim),
	}
}

// Add appends claims to the ledger. A claim with an ID already present
// is rejected: claim identity is immutable and claims are never
// replaced.
func (l *Ledger) Add(cs ...schedule.Claim) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, c := range cs {
		if _, exists := l.claims[c.ID]; exists {
			return fmt.Errorf("claim %s already in ledger", c.ID)
		}
		stored := c
		l.claims[c.ID] = &stored
		l.order = append(l.order, c.ID)
	}
	return nil
}

// Get returns the claim with the given ID, or nil.
func (l *Ledger) Get(id string) *schedule.Claim {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if c, ok := l.claims[id]; ok {
		copied := *c
		return &copied
	}
	return nil
}

// All returns every claim in insertion order.
func (l *Ledger) All() []schedule.Claim {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]schedule.Claim, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.claims[id])
	}
	return out
}

// ByTask returns the claims belonging to one task, in insertion order.
func (l *Ledger) ByTask(taskID string) []schedule.Claim {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []schedule.Claim
	for _, id := range l.order {
		if c := l.claims[id]; c.TaskID == taskID {
			out = append(out, *c)
		}
	}
	return out
}

// Groups returns claims grouped by (kind, subject) key. Only groups
// with at least two claims are returned, since singleton groups cannot
// contradict. Keys are sorted for deterministic iteration.
func (l *Ledger) Groups() map[string][]schedule.Claim {
	l.mu.RLock()
	defer l.mu.RUnlock()

	groups := make(map[string][]schedule.Claim)
	for _, id := range l.order {
		c := l.claims[id]
		key := schedule.SubjectKey(c.Kind, c.Subject)
		groups[key] = append(groups[key], *c)
	}

	for key, group := range groups {
		if len(group) < 2 {
			delete(groups, key)
		}
	}
	return groups
}

// GroupKeys returns the sorted keys of Groups.
func (l *Ledger) GroupKeys() []string {
	groups := l.Groups()
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BelowConfidence returns claims with confidence strictly below the
// threshold.
func (l *Ledger) BelowConfidence(threshold float64) []schedule.Claim {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []schedule.Claim
	for _, id := range l.order {
		if c := l.claims[id]; c.Confidence < threshold {
			out = append(out, *c)
		}
	}
	return out
}

// Summary returns claim counts by kind.
func (l *Ledger) Summary() map[schedule.ClaimKind]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[schedule.ClaimKind]int)
	for _, c := range l.claims {
		out[c.Kind]++
	}
	return out
}

// UpdateConfidence sets a claim's confidence in place. The value is the
// caller's responsibility to clamp; the ledger only enforces existence.
func (l *Ledger) UpdateConfidence(id string, confidence float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.claims[id]
	if !ok {
		return fmt.Errorf("claim %s not in ledger", id)
	}
	c.Confidence = confidence
	return nil
}

// SetResolution records the winning claim on a losing claim.
func (l *Ledger) SetResolution(id, winnerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.claims[id]
	if !ok {
		return fmt.Errorf("claim %s not in ledger", id)
	}
	c.Resolution = winnerID
	return nil
}

// SetRationale attaches an inference-rationale note to a claim.
func (l *Ledger) SetRationale(id, rationale string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.claims[id]
	if !ok {
		return fmt.Errorf("claim %s not in ledger", id)
	}
	c.Rationale = rationale
	return nil
}

// AddContradictions appends detected contradictions.
func (l *Ledger) AddContradictions(cs ...schedule.Contradiction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.contradictions = append(l.contradictions, cs...)
}

// Contradictions returns all recorded contradictions.
func (l *Ledger) Contradictions() []schedule.Contradiction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]schedule.Contradiction, len(l.contradictions))
	copy(out, l.contradictions)
	return out
}

// ContradictionsFor returns contradictions involving any of the given
// claim IDs.
func (l *Ledger) ContradictionsFor(claimIDs []string) []schedule.Contradiction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make(map[string]bool, len(claimIDs))
	for _, id := range claimIDs {
		ids[id] = true
	}

	var out []schedule.Contradiction
	for _, c := range l.contradictions {
		if ids[c.ClaimA] || ids[c.ClaimB] {
			out = append(out, c)
		}
	}
	return out
}

// UnresolvedHighSeverity returns high-severity contradictions without a
// recorded resolution.
func (l *Ledger) UnresolvedHighSeverity() []schedule.Contradiction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []schedule.Contradiction
	for _, c := range l.contradictions {
		if c.Severity == schedule.SeverityHigh && !c.Resolved() {
			out = append(out, c)
		}
	}
	return out
}

// ResolveContradiction records the winner on the contradiction record
// itself (the loser claim's Resolution is set separately).
func (l *Ledger) ResolveContradiction(contradictionID, winnerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.contradictions {
		if l.contradictions[i].ID == contradictionID {
			l.contradictions[i].Resolution = winnerID
			return nil
		}
	}
	return fmt.Errorf("contradiction %s not in ledger", contradictionID)
}

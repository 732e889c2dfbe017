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

import "fmt"

// ScoringError reports that a single claim's value could not be parsed
// or compared (e.g. a non-numeric duration).
//
// Scoring errors are isolated per claim: the claim is skipped and
// logged, and the rest of the pipeline continues.
type ScoringError struct {
	// ClaimID identifies the claim that could not be scored.
	ClaimID string

	// Reason explains the parse/compare failure.
	Reason string
}

// Error implements error.
func (e *ScoringError) Error() string {
	return fmt.Sprintf("claim scoring: %s: %s", e.ClaimID, e.Reason)
}

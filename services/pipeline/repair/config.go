// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package repair

// Config bounds the repair loop. Immutable during a job.
type Config struct {
	// MaxAttempts caps repair iterations per job. The loop always
	// terminates within this many attempts regardless of gate outcomes.
	MaxAttempts int `yaml:"max_attempts"`

	// ConfidenceBoost is added to a valid cited claim's confidence by
	// the confidence repair strategy.
	ConfidenceBoost float64 `yaml:"confidence_boost"`

	// LoserPenalty is subtracted from the losing claim's confidence when
	// a contradiction is resolved.
	LoserPenalty float64 `yaml:"loser_penalty"`
}

// DefaultConfig returns the default repair bounds.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:     3,
		ConfidenceBoost: 0.1,
		LoserPenalty:    0.2,
	}
}

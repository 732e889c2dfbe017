// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package orchestrator

import (
	"time"

	"github.com/AleutianAI/planproof/services/pipeline/gates"
	"github.com/AleutianAI/planproof/services/pipeline/repair"
	"github.com/AleutianAI/planproof/services/pipeline/verify"
)

// Config assembles every pipeline threshold in one place. A job reads
// its configuration once at submission; changing the orchestrator's
// config never affects jobs already running.
type Config struct {
	// Verify configures citation validation, contradiction detection,
	// provenance audit, and calibration.
	Verify verify.Config `yaml:"verify"`

	// Gates configures the quality gate thresholds.
	Gates gates.Config `yaml:"gates"`

	// Repair bounds the repair loop.
	Repair repair.Config `yaml:"repair"`

	// JobTimeout is the wall-clock budget for one job.
	JobTimeout time.Duration `yaml:"job_timeout"`

	// SubmitRate is the maximum job submissions per second.
	SubmitRate float64 `yaml:"submit_rate"`

	// SubmitBurst is the submission burst allowance.
	SubmitBurst int `yaml:"submit_burst"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		Verify:      verify.DefaultConfig(),
		Gates:       *gates.DefaultConfig(),
		Repair:      *repair.DefaultConfig(),
		JobTimeout:  2 * time.Minute,
		SubmitRate:  10,
		SubmitBurst: 20,
	}
}

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

// Config holds the gate thresholds. Immutable once the manager is
// constructed; mid-job threshold changes would make gate outcomes
// non-reproducible.
type Config struct {
	// CoverageThreshold is the minimum mean citation coverage across
	// tasks for the citation coverage gate.
	CoverageThreshold float64 `yaml:"coverage_threshold"`

	// ConfidenceThreshold is the minimum mean claim confidence for the
	// confidence minimum gate.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// RegulatoryKeywords trigger the regulatory flags gate when found in
	// a task's name, description, or requirement values.
	RegulatoryKeywords []string `yaml:"regulatory_keywords"`
}

// DefaultConfig returns the default gate thresholds.
func DefaultConfig() *Config {
	return &Config{
		CoverageThreshold:   0.75,
		ConfidenceThreshold: 0.5,
		RegulatoryKeywords: []string{
			"permit",
			"inspection",
			"asbestos",
			"abatement",
			"osha",
			"fire code",
			"fire marshal",
			"zoning",
			"environmental review",
			"wetland",
			"ada",
			"historic preservation",
		},
	}
}

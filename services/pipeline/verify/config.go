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

// Config configures the validation service and its checkers.
type Config struct {
	// CitationValidatorConfig configures citation verification.
	CitationValidatorConfig *CitationValidatorConfig

	// ProvenanceConfig configures provenance scoring.
	ProvenanceConfig *ProvenanceConfig

	// DetectorConfig configures contradiction detection.
	DetectorConfig *DetectorConfig

	// CalibratorConfig configures confidence recalibration.
	CalibratorConfig *CalibratorConfig
}

// DefaultConfig returns sensible defaults for the validation service.
func DefaultConfig() Config {
	return Config{
		CitationValidatorConfig: DefaultCitationValidatorConfig(),
		ProvenanceConfig:        DefaultProvenanceConfig(),
		DetectorConfig:          DefaultDetectorConfig(),
		CalibratorConfig:        DefaultCalibratorConfig(),
	}
}

// CitationValidatorConfig configures the citation validator.
type CitationValidatorConfig struct {
	// RequireExactQuote requires the document substring at the recorded
	// offsets to equal the recorded quote byte for byte.
	RequireExactQuote bool
}

// DefaultCitationValidatorConfig returns default citation validator config.
func DefaultCitationValidatorConfig() *CitationValidatorConfig {
	return &CitationValidatorConfig{
		RequireExactQuote: true,
	}
}

// ProvenanceConfig configures provenance scoring weights and freshness
// windows.
type ProvenanceConfig struct {
	// CompletenessWeight weights the all-required-fields-present factor.
	CompletenessWeight float64

	// VerificationWeight weights the quote-matches-source factor.
	VerificationWeight float64

	// FreshnessWeight weights the citation-age factor.
	FreshnessWeight float64

	// FreshDays is the age in days under which a citation scores full
	// freshness. RecentDays and StaleDays bound the decaying tiers.
	FreshDays  int
	RecentDays int
	StaleDays  int
}

// DefaultProvenanceConfig returns default provenance config.
func DefaultProvenanceConfig() *ProvenanceConfig {
	return &ProvenanceConfig{
		CompletenessWeight: 0.4,
		VerificationWeight: 0.4,
		FreshnessWeight:    0.2,
		FreshDays:          30,
		RecentDays:         90,
		StaleDays:          365,
	}
}

// DetectorConfig configures contradiction detection tolerances.
type DetectorConfig struct {
	// NumericalNoiseThreshold is the relative difference below which
	// numerical claims are treated as noise (no contradiction).
	NumericalNoiseThreshold float64

	// NumericalHighThreshold is the relative difference above which a
	// numerical contradiction is high severity. Between the two
	// thresholds the severity is medium.
	NumericalHighThreshold float64

	// TemporalToleranceDays is the window beyond which date claims for
	// the same event are high severity. Non-zero differences within the
	// window are medium.
	TemporalToleranceDays int

	// DefinitionalSimilarityThreshold is the token similarity below
	// which two requirement descriptions for the same label are
	// considered dissimilar. Detection is heuristic and prone to false
	// positives, so definitional contradictions never escalate past
	// medium severity.
	DefinitionalSimilarityThreshold float64
}

// DefaultDetectorConfig returns default detector config.
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		NumericalNoiseThreshold:         0.10,
		NumericalHighThreshold:          0.30,
		TemporalToleranceDays:           30,
		DefinitionalSimilarityThreshold: 0.30,
	}
}

// CalibratorConfig configures confidence recalibration thresholds.
type CalibratorConfig struct {
	// CoverageHighThreshold is the per-task citation coverage at or
	// above which claims earn the coverage bonus.
	CoverageHighThreshold float64

	// CoverageLowThreshold is the per-task citation coverage below
	// which claims take the coverage penalty.
	CoverageLowThreshold float64

	// ProvenanceThreshold is the task provenance score below which
	// claims take the provenance penalty.
	ProvenanceThreshold float64
}

// DefaultCalibratorConfig returns default calibrator config.
func DefaultCalibratorConfig() *CalibratorConfig {
	return &CalibratorConfig{
		CoverageHighThreshold: 0.9,
		CoverageLowThreshold:  0.5,
		ProvenanceThreshold:   0.7,
	}
}

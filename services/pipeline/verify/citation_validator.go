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
	"fmt"

	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// CitationResult is the outcome of checking one claim's citation.
type CitationResult struct {
	// Valid is true when the cited document exists and the substring at
	// the recorded offsets equals the recorded quote.
	Valid bool `json:"valid"`

	// Reason explains an invalid result.
	Reason string `json:"reason,omitempty"`
}

// CitationValidator checks a claim's citation against the source
// document corpus.
//
// Invalid citations are treated as absent for coverage purposes: they
// count toward the denominator only.
//
// Thread Safety: Safe for concurrent use (stateless after construction).
type CitationValidator struct {
	config *CitationValidatorConfig
}

// NewCitationValidator creates a new citation validator.
//
// Inputs:
//
//	config - Configuration for the validator (nil uses defaults).
//
// Outputs:
//
//	*CitationValidator - The configured validator.
func NewCitationValidator(config *CitationValidatorConfig) *CitationValidator {
	if config == nil {
		config = DefaultCitationValidatorConfig()
	}
	return &CitationValidator{config: config}
}

// Validate checks one claim's citation against the corpus.
//
// Description:
//
//	Validates that the cited document exists and that the document
//	substring at [Start, End) equals the recorded exact quote. An
//	uncited claim is reported invalid with reason "uncited".
//
// Thread Safety: Safe for concurrent use.
func (v *CitationValidator) Validate(claim *schedule.Claim, corpus schedule.Corpus) CitationResult {
	if claim.Citation == nil {
		return CitationResult{Valid: false, Reason: "uncited"}
	}

	cit := claim.Citation
	content, ok := corpus[cit.DocumentName]
	if !ok {
		return CitationResult{
			Valid:  false,
			Reason: fmt.Sprintf("cited document %q not in corpus", cit.DocumentName),
		}
	}

	if cit.Start < 0 || cit.End > len(content) || cit.Start > cit.End {
		return CitationResult{
			Valid:  false,
			Reason: fmt.Sprintf("offsets [%d,%d) out of range for %q (%d chars)", cit.Start, cit.End, cit.DocumentName, len(content)),
		}
	}

	if v.config.RequireExactQuote {
		actual := content[cit.Start:cit.End]
		if actual != cit.Quote {
			return CitationResult{
				Valid:  false,
				Reason: fmt.Sprintf("quote mismatch at [%d,%d): document has %q, citation claims %q", cit.Start, cit.End, truncate(actual, 60), truncate(cit.Quote, 60)),
			}
		}
	}

	return CitationResult{Valid: true}
}

// Coverage computes a task's citation coverage: validated explicit
// cited claims over total claims. Tasks without claims have coverage 1
// (nothing to cite).
func (v *CitationValidator) Coverage(taskClaims []schedule.Claim, corpus schedule.Corpus) float64 {
	if len(taskClaims) == 0 {
		return 1
	}

	valid := 0
	for i := range taskClaims {
		c := &taskClaims[i]
		if c.Origin != schedule.OriginExplicit {
			continue
		}
		if v.Validate(c, corpus).Valid {
			valid++
		}
	}
	return float64(valid) / float64(len(taskClaims))
}

// truncate shortens a string for error messages.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

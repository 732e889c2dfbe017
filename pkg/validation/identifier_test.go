// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"strings"
	"testing"
)

func TestValidateIdentifier_Valid(t *testing.T) {
	valid := []string{
		"task-1",
		"T001",
		"foundation.pour",
		"a",
		"job_2025-08-24",
		strings.Repeat("x", 64),
	}

	for _, id := range valid {
		if err := ValidateIdentifier(id); err != nil {
			t.Errorf("ValidateIdentifier(%q) = %v, want nil", id, err)
		}
	}
}

func TestValidateIdentifier_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"-leading-hyphen",
		".leading-dot",
		"has space",
		"has/slash",
		strings.Repeat("x", 65),
	}

	for _, id := range invalid {
		if err := ValidateIdentifier(id); err == nil {
			t.Errorf("ValidateIdentifier(%q) = nil, want error", id)
		}
	}
}

func TestValidateDocumentName(t *testing.T) {
	if err := ValidateDocumentName("structural plans rev B.txt"); err != nil {
		t.Errorf("expected valid document name, got %v", err)
	}

	for _, name := range []string{"", "../escape.txt", `plans\rev.txt`} {
		if err := ValidateDocumentName(name); err == nil {
			t.Errorf("ValidateDocumentName(%q) = nil, want error", name)
		}
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	got, err := SanitizeIdentifier("  task-7  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "task-7" {
		t.Errorf("expected trimmed identifier, got %q", got)
	}

	if _, err := SanitizeIdentifier("   "); err == nil {
		t.Error("expected error for blank identifier")
	}
}

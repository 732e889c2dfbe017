// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for identifiers
// that cross trust boundaries.
//
// Task IDs and document names arrive from an external generator and an
// external ingestion service. They end up in log lines, file names, and
// the JSON output contract, so they are validated here before the
// pipeline touches them.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern matches valid task/job identifiers.
// Allows: letters, digits, then dots, hyphens, underscores.
// Max length: 64 characters.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,63}$`)

// documentNamePattern matches valid document names.
// Same alphabet as identifiers plus spaces, up to 128 characters.
var documentNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\- ]{0,127}$`)

// ValidateIdentifier validates a task or job identifier.
//
// Valid identifiers:
//   - 1-64 characters
//   - Start with a letter or digit
//   - Contain only letters, digits, dots, hyphens, underscores
//
// Returns an error if the identifier is invalid.
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	if !identifierPattern.MatchString(id) {
		return fmt.Errorf("invalid identifier: %q (must be 1-64 alphanumeric chars, dots, hyphens, or underscores)", id)
	}

	return nil
}

// ValidateDocumentName validates a source document name.
//
// Document names follow the identifier alphabet plus spaces and may be
// up to 128 characters. Path separators are rejected outright so a
// document name can never traverse outside its corpus.
func ValidateDocumentName(name string) error {
	if name == "" {
		return fmt.Errorf("document name cannot be empty")
	}

	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid document name: %q (path separators not allowed)", name)
	}

	if !documentNamePattern.MatchString(name) {
		return fmt.Errorf("invalid document name: %q", name)
	}

	return nil
}

// SanitizeIdentifier normalizes and validates an identifier.
// Returns the trimmed identifier if valid, or an error if invalid.
func SanitizeIdentifier(id string) (string, error) {
	id = strings.TrimSpace(id)
	if err := ValidateIdentifier(id); err != nil {
		return "", err
	}
	return id, nil
}

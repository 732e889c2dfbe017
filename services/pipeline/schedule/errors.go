// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schedule

import "fmt"

// InputValidationError reports malformed raw tasks or documents.
//
// This error fails the job immediately; no repair is attempted for
// malformed input.
type InputValidationError struct {
	// Field is the offending input field path (e.g. "tasks[2].name").
	Field string

	// Reason is a human-readable explanation.
	Reason string
}

// Error implements error.
func (e *InputValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("input validation: %s", e.Reason)
	}
	return fmt.Sprintf("input validation: %s: %s", e.Field, e.Reason)
}

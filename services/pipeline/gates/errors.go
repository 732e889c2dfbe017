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

import "fmt"

// SchemaViolationError reports a task that breaks the output schema:
// missing identifiers, out-of-range confidence, or malformed fields.
type SchemaViolationError struct {
	// TaskID identifies the violating task (may be empty when the ID
	// itself is the violation).
	TaskID string

	// Field names the violating field, if any.
	Field string

	// Reason describes the violation.
	Reason string
}

// Error implements the error interface.
func (e *SchemaViolationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema violation on task %q field %q: %s", e.TaskID, e.Field, e.Reason)
	}
	return fmt.Sprintf("schema violation on task %q: %s", e.TaskID, e.Reason)
}

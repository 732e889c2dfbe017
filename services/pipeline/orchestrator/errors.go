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
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when a job ID is unknown.
	ErrJobNotFound = errors.New("job not found")

	// ErrRateLimited is returned when job submission exceeds the
	// configured rate.
	ErrRateLimited = errors.New("job submission rate exceeded")

	// ErrNoGenerator is returned by GenerateValidated when the
	// orchestrator was built without a generator.
	ErrNoGenerator = errors.New("no schedule generator configured")
)

// StateError reports an illegal job state transition. State
// transitions follow a fixed machine; anything else is a programming
// error surfaced loudly.
type StateError struct {
	JobID string
	From  State
	To    State
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("job %s: illegal transition %s -> %s", e.JobID, e.From, e.To)
}

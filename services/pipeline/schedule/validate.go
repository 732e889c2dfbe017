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

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/planproof/pkg/validation"
)

// validate is the shared struct validator. validator.Validate caches
// struct metadata, so a single instance is the intended usage.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateInput checks raw tasks and source documents before the
// pipeline runs.
//
// Description:
//
//	Structural validation only: missing names, unknown field kinds,
//	duplicate field kinds on one task, negative citation offsets,
//	empty documents. Out-of-range numerics
//	(e.g. confidence > 1) are deliberately NOT rejected here; clamping
//	them is the schema repair strategy's job.
//
// Inputs:
//
//	tasks - Raw tasks from the upstream generator.
//	docs - Source documents from the ingestion collaborator.
//
// Outputs:
//
//	error - *InputValidationError on the first malformed input, nil
//	otherwise.
func ValidateInput(tasks []*Task, docs []Document) error {
	if len(tasks) == 0 {
		return &InputValidationError{Field: "tasks", Reason: "no tasks provided"}
	}

	for i, t := range tasks {
		if t == nil {
			return &InputValidationError{
				Field:  fmt.Sprintf("tasks[%d]", i),
				Reason: "task is nil",
			}
		}
		if err := validate.Struct(t); err != nil {
			return inputError(fmt.Sprintf("tasks[%d]", i), err)
		}
		// IDs may be absent (schema repair fills them), but a present
		// ID must be well-formed.
		if t.ID != "" {
			if err := validation.ValidateIdentifier(t.ID); err != nil {
				return &InputValidationError{
					Field:  fmt.Sprintf("tasks[%d].id", i),
					Reason: err.Error(),
				}
			}
		}
		// One field per kind per task: claim IDs derive from the
		// (task, kind) pair, so a second field of the same kind could
		// never become a distinct claim.
		kinds := make(map[FieldKind]bool, len(t.Fields))
		for j, f := range t.Fields {
			if kinds[f.Kind] {
				return &InputValidationError{
					Field:  fmt.Sprintf("tasks[%d].fields[%d].kind", i, j),
					Reason: fmt.Sprintf("duplicate %q field", f.Kind),
				}
			}
			kinds[f.Kind] = true
			for k, c := range f.Citations {
				if c.End < c.Start {
					return &InputValidationError{
						Field:  fmt.Sprintf("tasks[%d].fields[%d].citations[%d]", i, j, k),
						Reason: fmt.Sprintf("citation end %d before start %d", c.End, c.Start),
					}
				}
			}
		}
	}

	for i, d := range docs {
		if err := validate.Struct(d); err != nil {
			return inputError(fmt.Sprintf("documents[%d]", i), err)
		}
		if err := validation.ValidateDocumentName(d.Name); err != nil {
			return &InputValidationError{
				Field:  fmt.Sprintf("documents[%d].name", i),
				Reason: err.Error(),
			}
		}
	}

	return nil
}

// inputError converts a validator error into an InputValidationError.
func inputError(prefix string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &InputValidationError{
			Field:  prefix + "." + fe.StructNamespace(),
			Reason: fmt.Sprintf("failed %q constraint", fe.Tag()),
		}
	}
	return &InputValidationError{Field: prefix, Reason: err.Error()}
}

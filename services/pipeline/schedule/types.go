// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package schedule defines the data model shared by the validation pipeline:
// tasks, sourced fields, citations, claims, contradictions, and the
// per-task validation metadata the pipeline writes back.
//
// Types in this package are plain data. Behavior lives in the component
// packages (claims, verify, gates, repair, orchestrator).
package schedule

import "time"

// Origin tags a task or field as directly sourced or model-inferred.
type Origin string

const (
	// OriginExplicit means the value was read directly from source material.
	OriginExplicit Origin = "explicit"

	// OriginInference means the value was inferred by the upstream generator.
	OriginInference Origin = "inference"
)

// FieldKind identifies a sourced field on a task.
type FieldKind string

const (
	FieldDuration    FieldKind = "duration"
	FieldStartDate   FieldKind = "start_date"
	FieldDependency  FieldKind = "dependency"
	FieldResource    FieldKind = "resource"
	FieldRequirement FieldKind = "requirement"
)

// KnownFieldKinds lists every field kind the extractor understands,
// in stable extraction order.
var KnownFieldKinds = []FieldKind{
	FieldDuration,
	FieldStartDate,
	FieldDependency,
	FieldResource,
	FieldRequirement,
}

// Citation is a reference to an exact span of a source document.
// Immutable once attached to a claim or field.
type Citation struct {
	// DocumentName is the name of the cited source document.
	DocumentName string `json:"document_name" validate:"required"`

	// Quote is the exact text the citation claims appears at [Start, End).
	Quote string `json:"quote"`

	// Start and End are character offsets into the document content.
	Start int `json:"start" validate:"gte=0"`
	End   int `json:"end" validate:"gte=0"`

	// Source tags where the citation came from (e.g. "upload", "rag").
	Source string `json:"source,omitempty"`

	// RetrievedAt is when the citation was captured.
	RetrievedAt time.Time `json:"retrieved_at,omitzero"`
}

// SourcedField is one field of a task, carrying its own provenance.
type SourcedField struct {
	Kind       FieldKind  `json:"kind" validate:"required,oneof=duration start_date dependency resource requirement"`
	Value      string     `json:"value" validate:"required"`
	Unit       string     `json:"unit,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	Origin     Origin     `json:"origin" validate:"omitempty,oneof=explicit inference"`
	Citations  []Citation `json:"citations,omitempty" validate:"dive"`
}

// Task is one schedule task produced by the upstream generator.
//
// Tasks are mutated only by this pipeline (confidence recalibration,
// added flags, notes, validation metadata) and never destroyed within
// a job.
type Task struct {
	ID          string         `json:"id"`
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description,omitempty"`
	Origin      Origin         `json:"origin" validate:"omitempty,oneof=explicit inference"`
	Confidence  float64        `json:"confidence"`
	Fields      []SourcedField `json:"fields,omitempty" validate:"dive"`

	// Flags are markers attached by the pipeline (regulatory review,
	// manual review). Never removed once attached.
	Flags []string `json:"flags,omitempty"`

	// Notes are human-readable rationale notes attached by repair.
	Notes []string `json:"notes,omitempty"`

	// Metadata is free-form metadata carried through the pipeline.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Validation is recomputed on every validation pass. Not cumulative.
	Validation *ValidationMetadata `json:"validation,omitempty"`
}

// Field returns the sourced field of the given kind, or nil.
func (t *Task) Field(kind FieldKind) *SourcedField {
	for i := range t.Fields {
		if t.Fields[i].Kind == kind {
			return &t.Fields[i]
		}
	}
	return nil
}

// HasFlag reports whether the task carries the given flag.
func (t *Task) HasFlag(flag string) bool {
	for _, f := range t.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddFlag attaches a flag if not already present.
func (t *Task) AddFlag(flag string) {
	if !t.HasFlag(flag) {
		t.Flags = append(t.Flags, flag)
	}
}

// Document is one source document the claims were derived from.
// Produced by an external ingestion collaborator.
type Document struct {
	Name    string `json:"name" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// Corpus indexes documents by name for citation lookup.
type Corpus map[string]string

// NewCorpus builds a Corpus from a document slice. Later documents with
// duplicate names win.
func NewCorpus(docs []Document) Corpus {
	c := make(Corpus, len(docs))
	for _, d := range docs {
		c[d.Name] = d.Content
	}
	return c
}

// Schedule is the unit the pipeline operates on: one generated schedule
// for one job.
type Schedule struct {
	ID          string         `json:"id"`
	ProjectName string         `json:"project_name"`
	Tasks       []*Task        `json:"tasks"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ValidationMetadata is the per-task result of one validation pass.
type ValidationMetadata struct {
	// Claims extracted from the task's sourced fields.
	Claims []Claim `json:"claims"`

	// CitationCoverage is validated-explicit-cited claims over total
	// claims for this task, in [0,1].
	CitationCoverage float64 `json:"citation_coverage"`

	// Contradictions involving this task's claims.
	Contradictions []Contradiction `json:"contradictions,omitempty"`

	// ProvenanceScore is the mean provenance score over the task's
	// claims, in [0,1].
	ProvenanceScore float64 `json:"provenance_score"`

	// GatesPassed lists the gates this task contributed a passing
	// score to, filled at gating time.
	GatesPassed []string `json:"gates_passed,omitempty"`
}

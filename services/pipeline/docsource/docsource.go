// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package docsource loads source document corpora for citation
// validation.
package docsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/planproof/pkg/validation"
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// Source provides the documents claims are checked against.
type Source interface {
	// Load returns all documents. The result order is stable.
	Load(ctx context.Context) ([]schedule.Document, error)
}

// defaultExtensions are the document types the directory source reads.
var defaultExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
}

// Directory loads every matching file under one directory as a
// document. Files are read concurrently; document names are the file
// base names.
//
// Thread Safety: Safe for concurrent use.
type Directory struct {
	root        string
	extensions  map[string]bool
	concurrency int
}

// NewDirectory creates a directory source.
//
// Inputs:
//
//	root - The directory holding source documents.
//	extensions - File extensions to load (nil loads .txt, .md, .csv).
//
// Outputs:
//
//	*Directory - The configured source.
func NewDirectory(root string, extensions []string) *Directory {
	exts := defaultExtensions
	if len(extensions) > 0 {
		exts = make(map[string]bool, len(extensions))
		for _, e := range extensions {
			exts[e] = true
		}
	}
	return &Directory{
		root:        root,
		extensions:  exts,
		concurrency: 8,
	}
}

// Load reads all matching files, in parallel, and returns them sorted
// by name.
//
// Files with names that fail identifier validation are rejected rather
// than skipped: a corpus with unverifiable names would silently break
// citation lookup downstream.
func (d *Directory) Load(ctx context.Context) ([]schedule.Document, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("reading document directory %s: %w", d.root, err)
	}

	var mu sync.Mutex
	var docs []schedule.Document

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, entry := range entries {
		if entry.IsDir() || !d.extensions[filepath.Ext(entry.Name())] {
			continue
		}
		name := entry.Name()

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := validation.ValidateDocumentName(name); err != nil {
				return fmt.Errorf("document %s: %w", name, err)
			}

			content, err := os.ReadFile(filepath.Join(d.root, name))
			if err != nil {
				return fmt.Errorf("reading document %s: %w", name, err)
			}

			mu.Lock()
			docs = append(docs, schedule.Document{Name: name, Content: string(content)})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Static is a fixed in-memory document set, used when the caller
// already holds the corpus (API input, tests).
type Static []schedule.Document

// Load returns the documents as-is.
func (s Static) Load(context.Context) ([]schedule.Document, error) {
	return s, nil
}

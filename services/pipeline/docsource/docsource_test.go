// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package docsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestDirectory_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "geotech-report.txt", "soil bearing capacity 2000 psf")
	writeFile(t, dir, "master-schedule.md", "framing starts 2026-03-01")
	writeFile(t, dir, "photo.jpg", "binary junk")

	docs, err := NewDirectory(dir, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	// Sorted by name.
	if docs[0].Name != "geotech-report.txt" || docs[1].Name != "master-schedule.md" {
		t.Fatalf("unexpected order: %s, %s", docs[0].Name, docs[1].Name)
	}
	if docs[0].Content != "soil bearing capacity 2000 psf" {
		t.Fatalf("unexpected content: %q", docs[0].Content)
	}
}

func TestDirectory_Load_CustomExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "specs.rst", "two hour fire rating")
	writeFile(t, dir, "notes.txt", "ignored")

	docs, err := NewDirectory(dir, []string{".rst"}).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "specs.rst" {
		t.Fatalf("expected only specs.rst, got %+v", docs)
	}
}

func TestDirectory_Load_SkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "content")
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0755); err != nil {
		t.Fatal(err)
	}

	docs, err := NewDirectory(dir, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
}

func TestDirectory_Load_InvalidName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "_leading-underscore.txt", "content")

	_, err := NewDirectory(dir, nil).Load(context.Background())
	if err == nil {
		t.Fatal("expected a name validation error")
	}
}

func TestDirectory_Load_MissingDirectory(t *testing.T) {
	_, err := NewDirectory("/nonexistent/docs", nil).Load(context.Background())
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestDirectory_Load_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewDirectory(dir, nil).Load(ctx); err == nil {
		t.Fatal("expected a context error")
	}
}

func TestStatic_Load(t *testing.T) {
	s := Static{{Name: "inline.txt", Content: "x"}}
	docs, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "inline.txt" {
		t.Fatalf("unexpected documents: %+v", docs)
	}
}

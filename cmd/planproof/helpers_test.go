// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTasks_Array(t *testing.T) {
	path := writeTempFile(t, "tasks.json",
		`[{"id": "pour-1", "name": "Foundation Pour"}]`)

	tasks, err := loadTasks(path)
	if err != nil {
		t.Fatalf("loadTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "pour-1" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestLoadTasks_ScheduleObject(t *testing.T) {
	path := writeTempFile(t, "schedule.json",
		`{"id": "s1", "project_name": "warehouse", "tasks": [{"id": "pour-1", "name": "Foundation Pour"}]}`)

	tasks, err := loadTasks(path)
	if err != nil {
		t.Fatalf("loadTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "Foundation Pour" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestLoadTasks_Invalid(t *testing.T) {
	path := writeTempFile(t, "junk.json", `not json`)
	if _, err := loadTasks(path); err == nil {
		t.Fatal("expected a parse error")
	}

	if _, err := loadTasks(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadTasks_EmptySchedule(t *testing.T) {
	path := writeTempFile(t, "empty.json", `{"id": "s1", "tasks": []}`)
	if _, err := loadTasks(path); err == nil {
		t.Fatal("expected an error for a schedule with no tasks")
	}
}

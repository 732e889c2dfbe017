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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/AleutianAI/planproof/services/pipeline/docsource"
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
)

// loadTasks reads tasks from a JSON file. The file may contain either
// a bare task array or a full schedule object with a "tasks" key.
func loadTasks(path string) ([]*schedule.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tasks []*schedule.Task
	if err := json.Unmarshal(data, &tasks); err == nil {
		return tasks, nil
	}

	var sched schedule.Schedule
	if err := json.Unmarshal(data, &sched); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(sched.Tasks) == 0 {
		return nil, fmt.Errorf("%s contains no tasks", path)
	}
	return sched.Tasks, nil
}

// loadDocs loads the document corpus from the --docs flag, falling
// back to the configured docs directory.
func loadDocs(ctx context.Context, flagDir string) ([]schedule.Document, error) {
	dir := flagDir
	if dir == "" {
		dir = config.Docs.Dir
	}
	return docsource.NewDirectory(dir, config.Docs.Extensions).Load(ctx)
}

// writeTasks writes the tasks as indented JSON.
func writeTasks(path string, tasks []*schedule.Task) error {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

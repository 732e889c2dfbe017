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
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/planproof/services/pipeline/orchestrator"
)

func runValidateCommand(cmd *cobra.Command, args []string) {
	logger, err := config.newLogger()
	if err != nil {
		log.Fatalf("Error configuring logging: %v", err)
	}
	defer logger.Close()

	tasks, err := loadTasks(args[0])
	if err != nil {
		log.Fatalf("Error loading tasks: %v", err)
	}

	docs, err := loadDocs(cmd.Context(), validateDocsDir)
	if err != nil {
		log.Fatalf("Error loading documents: %v", err)
	}

	orchConfig, err := config.orchestratorConfig()
	if err != nil {
		log.Fatalf("Error in pipeline configuration: %v", err)
	}
	o := orchestrator.New(orchConfig, nil, logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), orchConfig.JobTimeout)
	defer cancel()

	result, err := o.ValidateExisting(ctx, tasks, docs)
	if err != nil {
		log.Fatalf("Error validating schedule: %v", err)
	}

	if validateJSONOutput {
		if err := printJSON(os.Stdout, result); err != nil {
			log.Fatalf("Error encoding result: %v", err)
		}
	} else {
		printResult(result)
	}

	if result.Status == orchestrator.StatusBlocked {
		os.Exit(1)
	}
}

// printResult renders a human-readable summary of a pipeline result.
func printResult(result *orchestrator.Result) {
	fmt.Printf("Status: %s\n\n", result.Status)

	fmt.Println("Gates:")
	for _, gate := range result.Report.Results {
		mark := "PASS"
		if !gate.Passed {
			mark = "FAIL"
			if !gate.Blocker {
				mark = "WARN"
			}
		}
		fmt.Printf("  [%s] %-24s score=%.2f threshold=%.2f\n",
			mark, gate.Name, gate.Score, gate.Threshold)
		for _, detail := range gate.Details {
			fmt.Printf("         - %s\n", detail)
		}
	}

	fmt.Println("\nClaims:")
	for kind, count := range result.ClaimCounts {
		fmt.Printf("  %-12s %d\n", kind, count)
	}

	for _, task := range result.Tasks {
		if task.Validation == nil {
			continue
		}
		fmt.Printf("\nTask %s (%s): coverage=%.2f provenance=%.2f confidence=%.2f\n",
			task.ID, task.Name,
			task.Validation.CitationCoverage,
			task.Validation.ProvenanceScore,
			task.Confidence)
		for i := range task.Validation.Contradictions {
			contradiction := &task.Validation.Contradictions[i]
			state := "unresolved"
			if contradiction.Resolved() {
				state = "resolved"
			}
			fmt.Printf("  contradiction [%s/%s] %s vs %s: %s\n",
				contradiction.Severity, state,
				contradiction.ClaimA, contradiction.ClaimB,
				contradiction.Description)
		}
	}
}

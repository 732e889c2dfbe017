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
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/planproof/services/pipeline/orchestrator"
	"github.com/AleutianAI/planproof/services/pipeline/repair"
)

func runPipelineCommand(cmd *cobra.Command, args []string) {
	logger, err := config.newLogger()
	if err != nil {
		log.Fatalf("Error configuring logging: %v", err)
	}
	defer logger.Close()

	tasks, err := loadTasks(args[0])
	if err != nil {
		log.Fatalf("Error loading tasks: %v", err)
	}

	docs, err := loadDocs(cmd.Context(), pipelineDocsDir)
	if err != nil {
		log.Fatalf("Error loading documents: %v", err)
	}

	orchConfig, err := config.orchestratorConfig()
	if err != nil {
		log.Fatalf("Error in pipeline configuration: %v", err)
	}
	o := orchestrator.New(orchConfig, nil, logger)

	jobID, err := o.SubmitValidation(cmd.Context(), tasks, docs)
	if err != nil {
		log.Fatalf("Error submitting job: %v", err)
	}

	job, err := waitForJob(cmd.Context(), o, jobID)
	if err != nil {
		log.Fatalf("Error waiting for job %s: %v", jobID, err)
	}
	if job.State == orchestrator.StateFailed {
		log.Fatalf("Job %s failed: %s", jobID, job.Error)
	}

	result := job.Result
	if pipelineJSONOutput {
		if err := printJSON(os.Stdout, result); err != nil {
			log.Fatalf("Error encoding result: %v", err)
		}
	} else {
		printResult(result)
		printRepairLog(result.RepairLog)
	}

	if pipelineOutputPath != "" {
		if err := writeTasks(pipelineOutputPath, result.Tasks); err != nil {
			log.Fatalf("Error writing repaired tasks: %v", err)
		}
		fmt.Printf("\nRepaired tasks written to %s\n", pipelineOutputPath)
	}

	if result.Status == orchestrator.StatusBlocked {
		os.Exit(1)
	}
}

// waitForJob polls the job until it reaches a terminal state.
func waitForJob(ctx context.Context, o *orchestrator.Orchestrator, jobID string) (*orchestrator.Job, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		job, err := o.GetJobStatus(jobID)
		if err != nil {
			return nil, err
		}
		if job.State.Terminal() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func printRepairLog(repairLog *repair.Log) {
	if repairLog == nil {
		fmt.Println("\nRepair: not needed, all gates passed")
		return
	}

	fmt.Printf("\nRepair: %s after %d attempt(s)\n",
		repairLog.FinalStatus, len(repairLog.Attempts))
	for _, attempt := range repairLog.Attempts {
		fmt.Printf("  attempt %d:\n", attempt.Number)
		for _, action := range attempt.Actions {
			for _, change := range action.Changes {
				fmt.Printf("    [%s] %s\n", action.Gate, change)
			}
		}
	}
	for _, failure := range repairLog.RemainingFailures {
		fmt.Printf("  unresolved: %s\n", failure.Name)
	}
}

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
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yaml"

var (
	rootCmd = &cobra.Command{
		Use:   "planproof",
		Short: "A CLI to validate and repair LLM-generated construction schedules",
		Long: `Planproof checks generated schedule tasks against their source
documents: it verifies citations, detects contradictory claims, scores
provenance, recalibrates confidence, and runs the quality gates. The
pipeline command additionally attempts bounded automatic repair.`,
	}

	configPath string

	// --- validate flags ---
	validateDocsDir    string
	validateJSONOutput bool

	validateCmd = &cobra.Command{
		Use:   "validate [tasks.json]",
		Short: "Validate a schedule against its document corpus",
		Long: `Runs citation validation, contradiction detection, provenance
audit, calibration, and the quality gates over the tasks in the given
JSON file. No repair is attempted; the input file is never modified.

Exits non-zero when a blocking gate fails.`,
		Args: cobra.ExactArgs(1),
		Run:  runValidateCommand,
	}

	// --- pipeline flags ---
	pipelineDocsDir    string
	pipelineOutputPath string
	pipelineJSONOutput bool

	pipelineCmd = &cobra.Command{
		Use:   "pipeline [tasks.json]",
		Short: "Run the full validate-and-repair pipeline on a schedule",
		Long: `Submits the tasks in the given JSON file as an asynchronous
pipeline job and waits for it to finish. Failed gates trigger the
bounded repair loop; the repaired tasks are written to --output.

Exits non-zero when the job fails or finishes blocked.`,
		Args: cobra.ExactArgs(1),
		Run:  runPipelineCommand,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath,
		"Path to the configuration file")

	validateCmd.Flags().StringVar(&validateDocsDir, "docs", "",
		"Directory of source documents (overrides config)")
	validateCmd.Flags().BoolVar(&validateJSONOutput, "json", false,
		"Print the full result as JSON")
	rootCmd.AddCommand(validateCmd)

	pipelineCmd.Flags().StringVar(&pipelineDocsDir, "docs", "",
		"Directory of source documents (overrides config)")
	pipelineCmd.Flags().StringVarP(&pipelineOutputPath, "output", "o", "",
		"Write the repaired tasks to this file instead of stdout")
	pipelineCmd.Flags().BoolVar(&pipelineJSONOutput, "json", false,
		"Print the full result as JSON")
	rootCmd.AddCommand(pipelineCmd)
}

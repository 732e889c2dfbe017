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
	"fmt"
	"time"

	"github.com/AleutianAI/planproof/pkg/logging"
	"github.com/AleutianAI/planproof/services/pipeline/gates"
	"github.com/AleutianAI/planproof/services/pipeline/orchestrator"
	"github.com/AleutianAI/planproof/services/pipeline/repair"
)

// Config is the CLI configuration, loaded from config.yaml. Every
// field has a working default, so the file is optional.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Docs     DocsConfig     `yaml:"docs"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Dir enables JSON file logging when set. Supports ~ expansion.
	Dir string `yaml:"dir"`

	// JSON switches stderr output to JSON.
	JSON bool `yaml:"json"`

	// Quiet disables stderr logging so command output stays clean.
	Quiet bool `yaml:"quiet"`
}

// DocsConfig configures where source documents are loaded from.
type DocsConfig struct {
	// Dir is the default documents directory, overridable per command
	// with --docs.
	Dir string `yaml:"dir"`

	// Extensions lists the file extensions treated as documents.
	Extensions []string `yaml:"extensions"`
}

// PipelineConfig exposes the tunable pipeline thresholds. Verification
// internals (contradiction tolerances, provenance weights) keep their
// built-in defaults.
type PipelineConfig struct {
	Gates  gates.Config  `yaml:"gates"`
	Repair repair.Config `yaml:"repair"`

	// JobTimeout is a Go duration string, e.g. "2m" or "90s".
	JobTimeout string `yaml:"job_timeout"`
}

// DefaultCLIConfig returns the configuration used when config.yaml is
// absent.
func DefaultCLIConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Quiet: true},
		Docs:    DocsConfig{Dir: "docs"},
		Pipeline: PipelineConfig{
			Gates:  *gates.DefaultConfig(),
			Repair: *repair.DefaultConfig(),
		},
	}
}

// newLogger builds the process logger from the logging section.
func (c Config) newLogger() (*logging.Logger, error) {
	var level logging.Level
	switch c.Logging.Level {
	case "", "info":
		level = logging.LevelInfo
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	return logging.New(logging.Config{
		Level:   level,
		LogDir:  c.Logging.Dir,
		Service: "cli",
		JSON:    c.Logging.JSON,
		Quiet:   c.Logging.Quiet,
	}), nil
}

// jobTimeout parses the configured job timeout, zero when unset.
func (c Config) jobTimeout() (time.Duration, error) {
	if c.Pipeline.JobTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Pipeline.JobTimeout)
}

// orchestratorConfig merges the CLI's pipeline section over the
// orchestrator defaults.
func (c Config) orchestratorConfig() (*orchestrator.Config, error) {
	merged := orchestrator.DefaultConfig()

	if c.Pipeline.Gates.CoverageThreshold > 0 {
		merged.Gates.CoverageThreshold = c.Pipeline.Gates.CoverageThreshold
	}
	if c.Pipeline.Gates.ConfidenceThreshold > 0 {
		merged.Gates.ConfidenceThreshold = c.Pipeline.Gates.ConfidenceThreshold
	}
	if len(c.Pipeline.Gates.RegulatoryKeywords) > 0 {
		merged.Gates.RegulatoryKeywords = c.Pipeline.Gates.RegulatoryKeywords
	}
	if c.Pipeline.Repair.MaxAttempts > 0 {
		merged.Repair.MaxAttempts = c.Pipeline.Repair.MaxAttempts
	}
	if c.Pipeline.Repair.ConfidenceBoost > 0 {
		merged.Repair.ConfidenceBoost = c.Pipeline.Repair.ConfidenceBoost
	}
	if c.Pipeline.Repair.LoserPenalty > 0 {
		merged.Repair.LoserPenalty = c.Pipeline.Repair.LoserPenalty
	}
	timeout, err := c.jobTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid job_timeout: %w", err)
	}
	if timeout > 0 {
		merged.JobTimeout = timeout
	}
	return merged, nil
}

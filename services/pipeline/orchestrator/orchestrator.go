// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package orchestrator drives the validation pipeline end to end:
// extraction, validation, gating, repair, and finalization, as
// asynchronous jobs with a fixed state machine.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/planproof/pkg/logging"
	"github.com/AleutianAI/planproof/services/pipeline/claims"
	"github.com/AleutianAI/planproof/services/pipeline/gates"
	"github.com/AleutianAI/planproof/services/pipeline/repair"
	"github.com/AleutianAI/planproof/services/pipeline/schedule"
	"github.com/AleutianAI/planproof/services/pipeline/verify"
)

// GenerateRequest asks the upstream generator for a schedule to
// validate.
type GenerateRequest struct {
	// ProjectName labels the schedule.
	ProjectName string `json:"project_name"`

	// Prompt is the brief handed to the generator.
	Prompt string `json:"prompt"`

	// Documents are the source material for generation and citation
	// validation.
	Documents []schedule.Document `json:"documents"`
}

// Generator produces schedule tasks from a request. The generator is
// external to this pipeline; only its output contract matters here.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]*schedule.Task, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req GenerateRequest) ([]*schedule.Task, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req GenerateRequest) ([]*schedule.Task, error) {
	return f(ctx, req)
}

// Orchestrator runs validation pipelines as asynchronous jobs.
//
// Thread Safety: Safe for concurrent use. Each job owns its ledger and
// task copies; jobs share nothing but the (stateless) pipeline
// components.
type Orchestrator struct {
	config    *Config
	generator Generator
	verifier  *verify.Service
	manager   *gates.Manager
	engine    *repair.Engine
	limiter   *rate.Limiter
	tracer    trace.Tracer
	logger    *logging.Logger

	mu      sync.RWMutex
	jobs    map[string]*Job
	cancels map[string]context.CancelFunc
}

// New creates an orchestrator.
//
// Inputs:
//
//	config - Pipeline configuration (nil uses defaults).
//	generator - Upstream schedule generator (nil disables
//	GenerateValidated; ValidateExisting still works).
//	logger - Structured logger (nil uses the default logger).
//
// Outputs:
//
//	*Orchestrator - The configured orchestrator.
func New(config *Config, generator Generator, logger *logging.Logger) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Default()
	}

	verifier := verify.NewService(&config.Verify, logger)
	return &Orchestrator{
		config:    config,
		generator: generator,
		verifier:  verifier,
		manager:   gates.NewManager(&config.Gates, logger),
		engine:    repair.NewEngine(&config.Repair, &config.Gates, verifier.CitationValidator(), logger),
		limiter:   rate.NewLimiter(rate.Limit(config.SubmitRate), config.SubmitBurst),
		tracer:    otel.Tracer("planproof.pipeline"),
		logger:    logger,
		jobs:      make(map[string]*Job),
		cancels:   make(map[string]context.CancelFunc),
	}
}

// GenerateValidated submits an asynchronous generate-then-validate job.
//
// Description:
//
//	The generator runs inside the job, followed by the full pipeline:
//	extraction, validation, gating, repair, finalization. The job ID
//	is returned immediately; poll GetJobStatus for progress.
//
// Inputs:
//
//	ctx - Context for the submission only; the job gets its own
//	timeout-bounded context.
//	req - The generation request.
//
// Outputs:
//
//	string - The job ID.
//	error - ErrNoGenerator, ErrRateLimited, or input validation errors.
func (o *Orchestrator) GenerateValidated(ctx context.Context, req GenerateRequest) (string, error) {
	if o.generator == nil {
		return "", ErrNoGenerator
	}
	if !o.limiter.Allow() {
		return "", ErrRateLimited
	}

	job, jobCtx := o.newJob()
	go o.runJob(jobCtx, job.ID, func(loadCtx context.Context) ([]*schedule.Task, schedule.Corpus, error) {
		tasks, err := o.generator.Generate(loadCtx, req)
		if err != nil {
			return nil, nil, fmt.Errorf("generating schedule: %w", err)
		}
		if err := schedule.ValidateInput(tasks, req.Documents); err != nil {
			return nil, nil, err
		}
		return tasks, schedule.NewCorpus(req.Documents), nil
	})
	return job.ID, nil
}

// SubmitValidation submits an asynchronous validate-and-repair job for
// an existing schedule.
func (o *Orchestrator) SubmitValidation(ctx context.Context, tasks []*schedule.Task, docs []schedule.Document) (string, error) {
	if !o.limiter.Allow() {
		return "", ErrRateLimited
	}
	if err := schedule.ValidateInput(tasks, docs); err != nil {
		return "", err
	}

	// Copy up front so later caller mutations cannot race the job.
	copied := copyTasks(tasks)
	corpus := schedule.NewCorpus(docs)

	job, jobCtx := o.newJob()
	go o.runJob(jobCtx, job.ID, func(context.Context) ([]*schedule.Task, schedule.Corpus, error) {
		return copied, corpus, nil
	})
	return job.ID, nil
}

// ValidateExisting runs validation and gating synchronously, without
// repair, and without mutating the caller's tasks.
//
// Description:
//
//	Read-only audit mode: claims are extracted and calibrated on
//	internal copies, gates are evaluated, and the result reports what
//	a full job would find. Calling it twice with the same input yields
//	the same result.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	tasks - The schedule to audit. Never mutated.
//	docs - Source documents.
//
// Outputs:
//
//	*Result - Validation metadata, gate report, and status.
//	error - Input validation or context errors.
func (o *Orchestrator) ValidateExisting(ctx context.Context, tasks []*schedule.Task, docs []schedule.Document) (*Result, error) {
	if err := schedule.ValidateInput(tasks, docs); err != nil {
		return nil, err
	}

	ctx, span := o.tracer.Start(ctx, "pipeline.validate_existing")
	defer span.End()

	copied := copyTasks(tasks)
	corpus := schedule.NewCorpus(docs)
	ledger := claims.NewLedger()

	if err := o.verifier.Run(ctx, ledger, copied, corpus); err != nil {
		return nil, err
	}
	report := o.manager.Evaluate(copied, ledger)

	return &Result{
		Tasks:       copied,
		Report:      report,
		Status:      statusFromReport(&report),
		ClaimCounts: ledger.Summary(),
	}, nil
}

// GetJobStatus returns a snapshot of the job. The snapshot is a copy;
// mutating it does not affect the running job.
func (o *Orchestrator) GetJobStatus(jobID string) (*Job, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	job, ok := o.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	snapshot := *job
	return &snapshot, nil
}

// newJob registers a queued job together with the context its run is
// bound to, so CancelJob can reach it.
func (o *Orchestrator) newJob() (*Job, context.Context) {
	job := &Job{
		ID:          uuid.NewString(),
		State:       StateQueued,
		SubmittedAt: time.Now(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	o.mu.Lock()
	o.jobs[job.ID] = job
	o.cancels[job.ID] = cancel
	o.mu.Unlock()
	return job, ctx
}

// CancelJob requests cancellation of a running job.
//
// Description:
//
//	Cancellation is honored between pipeline phases: an already-started
//	external call is allowed to complete, its result is discarded, and
//	the job is marked failed. Cancelling a finished job is a no-op.
//
// Inputs:
//
//	jobID - The job to cancel.
//
// Outputs:
//
//	error - ErrJobNotFound for unknown jobs, nil otherwise.
func (o *Orchestrator) CancelJob(jobID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if job.State.Terminal() {
		return nil
	}
	if cancel, ok := o.cancels[jobID]; ok {
		cancel()
	}
	return nil
}

// releaseJob drops the job's cancel handle once the run has reached a
// terminal state.
func (o *Orchestrator) releaseJob(jobID string) {
	o.mu.Lock()
	cancel := o.cancels[jobID]
	delete(o.cancels, jobID)
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// transition moves a job through the state machine, failing loudly on
// an illegal move.
func (o *Orchestrator) transition(jobID string, to State) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if !legalTransition(job.State, to) {
		return &StateError{JobID: jobID, From: job.State, To: to}
	}
	job.State = to
	if progress, ok := stateProgress[to]; ok {
		job.Progress = progress
	}
	return nil
}

func (o *Orchestrator) failJob(jobID string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[jobID]
	if !ok || job.State.Terminal() {
		return
	}
	job.State = StateFailed
	job.Error = err.Error()
	job.CompletedAt = time.Now()
}

func (o *Orchestrator) completeJob(jobID string, result *Result) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[jobID]
	if !ok {
		return
	}
	job.State = StateCompleted
	job.Progress = stateProgress[StateCompleted]
	job.Result = result
	job.CompletedAt = time.Now()
}

// loadTasks produces a job's tasks and corpus (running the generator
// for generate jobs).
type loadTasks func(ctx context.Context) ([]*schedule.Task, schedule.Corpus, error)

// runJob executes the full pipeline for one job. Runs on its own
// goroutine with a wall-clock budget; cancellation is checked between
// phases.
func (o *Orchestrator) runJob(parent context.Context, jobID string, load loadTasks) {
	defer o.releaseJob(jobID)

	ctx, cancel := context.WithTimeout(parent, o.config.JobTimeout)
	defer cancel()

	ctx, span := o.tracer.Start(ctx, "pipeline.job")
	defer span.End()

	start := time.Now()
	recordJobStarted(ctx)
	logger := o.logger.With("job_id", jobID)

	o.mu.Lock()
	if job, ok := o.jobs[jobID]; ok {
		job.StartedAt = start
	}
	o.mu.Unlock()

	fail := func(err error) {
		logger.Error("job failed", "error", err.Error())
		o.failJob(jobID, err)
		recordJobCompleted(ctx, StateFailed, StatusBlocked, time.Since(start).Seconds())
	}

	// advance moves the job forward and marks the phase on the span.
	advance := func(to State) error {
		if err := o.transition(jobID, to); err != nil {
			return err
		}
		span.AddEvent(string(to))
		return nil
	}

	// Extraction phase covers generation and ledger population.
	if err := advance(StateExtracting); err != nil {
		fail(err)
		return
	}
	tasks, corpus, err := load(ctx)
	if err != nil {
		fail(err)
		return
	}

	// Claim identity derives from task IDs, so missing IDs are filled
	// before extraction rather than left for schema repair.
	for _, task := range tasks {
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
	}

	ledger := claims.NewLedger()
	if err := o.verifier.Populate(ledger, tasks); err != nil {
		fail(err)
		return
	}
	recordClaims(ctx, len(ledger.All()))
	logger.Info("claims extracted", "tasks", len(tasks), "claims", len(ledger.All()))

	if err := advance(StateValidating); err != nil {
		fail(err)
		return
	}
	if err := o.verifier.Validate(ctx, ledger, tasks, corpus); err != nil {
		fail(err)
		return
	}
	for severity, count := range countBySeverity(ledger.Contradictions()) {
		recordContradictions(ctx, severity, count)
	}

	if err := advance(StateGating); err != nil {
		fail(err)
		return
	}
	report := o.manager.Evaluate(tasks, ledger)
	for _, failure := range report.Failed() {
		recordGateFailure(ctx, failure.Name)
	}

	var repairLog *repair.Log
	if len(report.Failed()) > 0 {
		if err := advance(StateRepairing); err != nil {
			fail(err)
			return
		}
		env := &repair.Environment{Tasks: tasks, Ledger: ledger, Corpus: corpus}
		repairLog, report, err = o.engine.Run(ctx, env)
		if err != nil {
			fail(err)
			return
		}
		recordRepairAttempts(ctx, len(repairLog.Attempts))
		logger.Info("repair finished",
			"attempts", len(repairLog.Attempts),
			"final_status", string(repairLog.FinalStatus))
	}

	if err := advance(StateFinalizing); err != nil {
		fail(err)
		return
	}
	refreshMetadata(tasks, ledger)
	for _, claim := range ledger.All() {
		recordClaimConfidence(ctx, claim.Confidence)
	}

	// Schema violations that survived repair are job-fatal.
	if err := schemaFailure(&report); err != nil {
		fail(err)
		return
	}

	status := statusFromReport(&report)
	result := &Result{
		Tasks:       tasks,
		Report:      report,
		RepairLog:   repairLog,
		Status:      status,
		ClaimCounts: ledger.Summary(),
	}

	o.completeJob(jobID, result)
	recordJobCompleted(ctx, StateCompleted, status, time.Since(start).Seconds())
	logger.Info("job completed",
		"status", string(status),
		"duration_ms", time.Since(start).Milliseconds())
}

// refreshMetadata re-snapshots each task's claims and contradictions
// from the ledger, so repair outcomes (resolutions, adjusted
// confidences, rationales) appear in the output contract.
func refreshMetadata(tasks []*schedule.Task, ledger *claims.Ledger) {
	for _, task := range tasks {
		if task.Validation == nil {
			continue
		}
		taskClaims := ledger.ByTask(task.ID)
		claimIDs := make([]string, len(taskClaims))
		for i := range taskClaims {
			claimIDs[i] = taskClaims[i].ID
		}
		task.Validation.Claims = taskClaims
		task.Validation.Contradictions = ledger.ContradictionsFor(claimIDs)
	}
}

func countBySeverity(cons []schedule.Contradiction) map[string]int {
	out := make(map[string]int)
	for _, c := range cons {
		out[string(c.Severity)]++
	}
	return out
}

// copyTasks deep-copies tasks so pipeline mutations never reach the
// caller's slice.
func copyTasks(tasks []*schedule.Task) []*schedule.Task {
	out := make([]*schedule.Task, len(tasks))
	for i, t := range tasks {
		copied := *t
		copied.Fields = make([]schedule.SourcedField, len(t.Fields))
		for j, f := range t.Fields {
			field := f
			if f.Confidence != nil {
				conf := *f.Confidence
				field.Confidence = &conf
			}
			field.Citations = append([]schedule.Citation(nil), f.Citations...)
			copied.Fields[j] = field
		}
		copied.Flags = append([]string(nil), t.Flags...)
		copied.Notes = append([]string(nil), t.Notes...)
		if t.Metadata != nil {
			copied.Metadata = make(map[string]any, len(t.Metadata))
			for k, v := range t.Metadata {
				copied.Metadata[k] = v
			}
		}
		copied.Validation = nil
		out[i] = &copied
	}
	return out
}

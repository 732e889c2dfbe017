// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package orchestrator

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Pipeline metrics. Instruments are created once on first use; with no
// meter provider installed they are no-ops.
var (
	metricsOnce sync.Once

	jobsStarted         metric.Int64Counter
	jobsCompleted       metric.Int64Counter
	jobDuration         metric.Float64Histogram
	claimsExtracted     metric.Int64Counter
	claimConfidence     metric.Float64Histogram
	contradictionsFound metric.Int64Counter
	gateFailures        metric.Int64Counter
	repairAttempts      metric.Int64Counter
)

func initMetrics() {
	metricsOnce.Do(func() {
		meter := otel.Meter("planproof.pipeline")

		jobsStarted, _ = meter.Int64Counter("planproof.jobs.started",
			metric.WithDescription("Pipeline jobs started"))
		jobsCompleted, _ = meter.Int64Counter("planproof.jobs.completed",
			metric.WithDescription("Pipeline jobs finished, by terminal state and status"))
		jobDuration, _ = meter.Float64Histogram("planproof.jobs.duration_seconds",
			metric.WithDescription("Wall-clock job duration"),
			metric.WithUnit("s"))
		claimsExtracted, _ = meter.Int64Counter("planproof.claims.extracted",
			metric.WithDescription("Claims extracted into job ledgers"))
		claimConfidence, _ = meter.Float64Histogram("planproof.claims.confidence",
			metric.WithDescription("Calibrated claim confidence at job completion"))
		contradictionsFound, _ = meter.Int64Counter("planproof.contradictions.found",
			metric.WithDescription("Contradictions detected, by severity"))
		gateFailures, _ = meter.Int64Counter("planproof.gates.failures",
			metric.WithDescription("Quality gate failures, by gate"))
		repairAttempts, _ = meter.Int64Counter("planproof.repair.attempts",
			metric.WithDescription("Repair loop attempts"))
	})
}

func recordJobStarted(ctx context.Context) {
	initMetrics()
	if jobsStarted != nil {
		jobsStarted.Add(ctx, 1)
	}
}

func recordJobCompleted(ctx context.Context, state State, status Status, seconds float64) {
	initMetrics()
	attrs := metric.WithAttributes(
		attribute.String("state", string(state)),
		attribute.String("status", string(status)),
	)
	if jobsCompleted != nil {
		jobsCompleted.Add(ctx, 1, attrs)
	}
	if jobDuration != nil {
		jobDuration.Record(ctx, seconds, attrs)
	}
}

func recordClaims(ctx context.Context, count int) {
	initMetrics()
	if claimsExtracted != nil {
		claimsExtracted.Add(ctx, int64(count))
	}
}

func recordClaimConfidence(ctx context.Context, confidence float64) {
	initMetrics()
	if claimConfidence != nil {
		claimConfidence.Record(ctx, confidence)
	}
}

func recordContradictions(ctx context.Context, severity string, count int) {
	initMetrics()
	if contradictionsFound != nil && count > 0 {
		contradictionsFound.Add(ctx, int64(count),
			metric.WithAttributes(attribute.String("severity", severity)))
	}
}

func recordGateFailure(ctx context.Context, gate string) {
	initMetrics()
	if gateFailures != nil {
		gateFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("gate", gate)))
	}
}

func recordRepairAttempts(ctx context.Context, count int) {
	initMetrics()
	if repairAttempts != nil && count > 0 {
		repairAttempts.Add(ctx, int64(count))
	}
}

// Package job runs one end-to-end decision: acquire conditions, generate the
// decision, record metrics and publish the document.
package job

import (
	"context"
	"fmt"
	"time"

	"fishcast/internal/acquisition"
	"fishcast/internal/decision"
	"fishcast/internal/telemetry"
	"fishcast/internal/types"
)

// Acquirer gathers the conditions for a run.
type Acquirer interface {
	Acquire(ctx context.Context, at time.Time) (*acquisition.Result, error)
}

// Decider generates a decision from acquired conditions.
type Decider interface {
	Generate(ctx context.Context, req decision.Request) (*types.Decision, error)
}

// Publisher delivers a finished decision.
type Publisher interface {
	Publish(ctx context.Context, doc *types.Decision) error
}

var (
	_ Acquirer = (*acquisition.Acquirer)(nil)
	_ Decider  = (*decision.Engine)(nil)
)

// RunRequest is one run's input. Zero values take the job defaults.
type RunRequest struct {
	EvaluatedAt time.Time        `json:"evaluatedAt"`
	TraceLevel  types.TraceLevel `json:"traceLevel"`
}

// Job wires the decision pipeline.
type Job struct {
	Acquirer Acquirer
	Decider  Decider
	// Publisher is optional; nil skips publishing.
	Publisher Publisher
	Metrics   telemetry.Metrics
	Clock     types.Clock
	Logger    types.Logger
	// DefaultTrace applies when a request names no trace level.
	DefaultTrace types.TraceLevel
}

// Run executes one decision.
//
// Decision logic:
//  1. The evaluation instant is the request's, else the clock's.
//  2. Acquisition substitutes fallbacks for failed providers; each
//     substitution is counted as a ProviderFallback metric.
//  3. The engine's result is recorded as decision metrics with the
//     end-to-end latency.
//  4. Publishing failures fail the run so the scheduler retries it.
func (j *Job) Run(ctx context.Context, req RunRequest) (*types.Decision, error) {
	clock := j.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	metrics := j.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}
	logger := j.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}

	started := clock.Now()
	at := req.EvaluatedAt
	if at.IsZero() {
		at = started
	}
	level := req.TraceLevel
	if level == "" {
		level = j.DefaultTrace
	}

	acquired, err := j.Acquirer.Acquire(ctx, at)
	if err != nil {
		return nil, fmt.Errorf("acquire conditions: %w", err)
	}
	for _, o := range acquired.Outcomes {
		if o.Fallback() {
			metrics.RecordProviderFallback(ctx, o.Provider)
		}
	}

	doc, err := j.Decider.Generate(ctx, decision.Request{
		Conditions:  acquired.Conditions,
		EvaluatedAt: at,
		TraceLevel:  level,
	})
	if err != nil {
		return nil, fmt.Errorf("generate decision: %w", err)
	}
	metrics.RecordDecision(ctx, doc, clock.Now().Sub(started))

	if j.Publisher != nil {
		if err := j.Publisher.Publish(types.WithRunID(ctx, doc.Meta.RunID), doc); err != nil {
			return nil, fmt.Errorf("publish decision: %w", err)
		}
	}

	logger.Info("decision run complete",
		"run_id", doc.Meta.RunID,
		"evaluated_at", at.Format(time.RFC3339),
		"data_quality", doc.DaySummary.DataQuality,
		"no_go", doc.NoGo.IsNoGo,
		"published", j.Publisher != nil,
	)
	return doc, nil
}

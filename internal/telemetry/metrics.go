// Package telemetry emits decision metrics to CloudWatch.
//
// Metric emission is best effort: failures are logged and never fail a
// decision run.
package telemetry

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"fishcast/internal/types"
)

// Result is the outcome dimension of a publish metric.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailed  Result = "failed"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics records decision run metrics.
type Metrics interface {
	RecordDecision(ctx context.Context, doc *types.Decision, latency time.Duration)
	RecordProviderFallback(ctx context.Context, provider string)
	RecordPublish(ctx context.Context, result Result)
}

var (
	_ Metrics = (*CloudWatchMetrics)(nil)
	_ Metrics = NopMetrics{}
)

// CloudWatchMetrics implements Metrics against CloudWatch.
//
// Metrics emitted:
//   - DecisionGenerated: Dims {DataQuality, Health}
//   - DecisionLatency: no dims, milliseconds
//   - NoGoActive: no dims, 1 or 0
//   - TraceDowngraded: no dims, only when the gate lowered the level
//   - ProviderFallback: Dims {Provider}
//   - DecisionPublished: Dims {Result}
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
}

// NewCloudWatchMetrics creates metrics under namespace; empty uses the
// default namespace.
func NewCloudWatchMetrics(client CloudWatchClient, namespace string, logger types.Logger) *CloudWatchMetrics {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	return &CloudWatchMetrics{client: client, namespace: namespace, logger: logger}
}

// RecordDecision emits the per-run metrics in one PutMetricData call.
func (m *CloudWatchMetrics) RecordDecision(ctx context.Context, doc *types.Decision, latency time.Duration) {
	noGo := 0.0
	if doc.NoGo.IsNoGo {
		noGo = 1
	}
	data := []cwtypes.MetricDatum{
		{
			MetricName: aws.String(types.MetricDecisionGenerated),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{
				dim(types.DimDataQuality, string(doc.DaySummary.DataQuality)),
				dim(types.DimHealth, string(doc.Health.Status)),
			},
		},
		{
			MetricName: aws.String(types.MetricDecisionLatency),
			Value:      aws.Float64(float64(latency.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
		},
		{
			MetricName: aws.String(types.MetricNoGoActive),
			Value:      aws.Float64(noGo),
			Unit:       cwtypes.StandardUnitCount,
		},
	}
	if doc.Meta.TraceLevelRequested == types.TraceFull && doc.Meta.TraceLevelApplied != types.TraceFull {
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricTraceDowngraded),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
		})
	}
	m.put(ctx, data, "run_id", doc.Meta.RunID)
}

// RecordProviderFallback emits a ProviderFallback metric.
func (m *CloudWatchMetrics) RecordProviderFallback(ctx context.Context, provider string) {
	m.put(ctx, []cwtypes.MetricDatum{{
		MetricName: aws.String(types.MetricProviderFallback),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{dim(types.DimProvider, provider)},
	}}, "provider", provider)
}

// RecordPublish emits a DecisionPublished metric.
func (m *CloudWatchMetrics) RecordPublish(ctx context.Context, result Result) {
	m.put(ctx, []cwtypes.MetricDatum{{
		MetricName: aws.String(types.MetricDecisionPublished),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{dim(types.DimResult, string(result))},
	}}, "result", string(result))
}

func (m *CloudWatchMetrics) put(ctx context.Context, data []cwtypes.MetricDatum, logArgs ...any) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to put metric data", append([]any{"error", err.Error()}, logArgs...)...)
	}
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

// NopMetrics discards all metrics.
type NopMetrics struct{}

func (NopMetrics) RecordDecision(context.Context, *types.Decision, time.Duration) {}
func (NopMetrics) RecordProviderFallback(context.Context, string)                 {}
func (NopMetrics) RecordPublish(context.Context, Result)                          {}

package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricDecisionGenerated = "DecisionGenerated"
	MetricDecisionLatency   = "DecisionLatency"
	MetricNoGoActive        = "NoGoActive"
	MetricTraceDowngraded   = "TraceDowngraded"
	MetricProviderFallback  = "ProviderFallback"
	MetricDecisionPublished = "DecisionPublished"

	// Dimension Keys
	DimDataQuality = "DataQuality"
	DimHealth      = "Health"
	DimProvider    = "Provider"
	DimResult      = "Result"

	// Metric Namespace
	MetricNamespace = "FishCast"

	// EventDecisionGenerated is the structured log event emitted per decision.
	EventDecisionGenerated = "decision_generated"
)

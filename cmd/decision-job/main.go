// Package main is the entrypoint for the scheduled decision Lambda.
//
// EventBridge invokes the function on the morning and evening schedules.
// Each invocation acquires conditions, generates one decision, records
// CloudWatch metrics and publishes the document to the decision queue.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"fishcast/internal/config"
	"fishcast/internal/external"
	"fishcast/internal/job"
	"fishcast/internal/publish"
	"fishcast/internal/telemetry"
	"fishcast/internal/types"
)

// slogAdapter wraps *slog.Logger to implement the types.Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// endpointOption points SDK clients at LocalStack when an endpoint is set.
func endpointOption[O any](endpoint string, set func(*O, *string)) func(*O) {
	return func(o *O) {
		if endpoint != "" {
			set(o, aws.String(endpoint))
		}
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})).With("service", "decision-job", "env", cfg.Environment, "version", cfg.Build.Version)
	appLogger := &slogAdapter{logger: logger}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return fmt.Errorf("load AWS SDK config: %w", err)
	}
	endpoint := cfg.AWS.EndpointURL

	var metrics telemetry.Metrics = telemetry.NopMetrics{}
	if cfg.AWS.EnableMetrics {
		cw := cloudwatch.NewFromConfig(awsCfg, endpointOption(endpoint, func(o *cloudwatch.Options, e *string) { o.BaseEndpoint = e }))
		metrics = telemetry.NewCloudWatchMetrics(cw, cfg.AWS.MetricNamespace, appLogger)
	}

	deps := job.Deps{
		Slog:    logger,
		Logger:  appLogger,
		Clock:   types.RealClock{},
		Metrics: metrics,
		Objects: external.NewS3Objects(s3.NewFromConfig(awsCfg, endpointOption(endpoint, func(o *s3.Options, e *string) {
			o.BaseEndpoint = e
			o.UsePathStyle = true
		}))),
	}

	if cfg.AWS.DecisionQueueURL != "" {
		sqsClient := sqs.NewFromConfig(awsCfg, endpointOption(endpoint, func(o *sqs.Options, e *string) { o.BaseEndpoint = e }))
		pub, err := publish.NewPublisher(sqsClient, cfg.AWS.DecisionQueueURL, cfg.AWS.PublishCompressThreshold, metrics, appLogger)
		if err != nil {
			return err
		}
		deps.Publisher = pub
	} else {
		logger.Warn("DECISION_QUEUE_URL not set, decisions will not be published")
	}

	j, err := job.New(ctx, cfg, deps)
	if err != nil {
		return fmt.Errorf("build decision job: %w", err)
	}

	lambda.Start(j.Handler)
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("decision-job failed to start", "error", err)
		os.Exit(1)
	}
}

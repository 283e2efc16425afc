package main

import (
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func TestLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := logLevel(in); got != want {
			t.Errorf("logLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestEndpointOption(t *testing.T) {
	set := func(o *sqs.Options, e *string) { o.BaseEndpoint = e }

	var opts sqs.Options
	endpointOption("", set)(&opts)
	if opts.BaseEndpoint != nil {
		t.Errorf("empty endpoint should leave BaseEndpoint unset, got %q", *opts.BaseEndpoint)
	}

	endpointOption("http://localhost:4566", set)(&opts)
	if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://localhost:4566" {
		t.Errorf("BaseEndpoint = %v, want LocalStack endpoint", opts.BaseEndpoint)
	}
}

package config

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"
)

var configKeys = []string{
	"APP_ENV", "LOG_LEVEL",
	"CATALOG_DIR", "ALLOW_TRACE_FULL", "DEFAULT_TRACE_LEVEL", "DECISION_TIMEZONE", "ENGINE_WORKERS",
	"OFFLINE_MODE", "SNAPSHOT_PATH", "OPEN_METEO_URL", "OPEN_METEO_MARINE_URL", "OPEN_METEO_API_KEY",
	"PROVIDER_TIMEOUT", "PROVIDER_CACHE_TTL", "PROVIDER_STALE_TTL",
	"PROVIDER_BREAKER_FAILURES", "PROVIDER_BREAKER_COOLDOWN", "REFERENCE_LAT", "REFERENCE_LON",
	"AWS_REGION", "DECISION_QUEUE_URL", "METRIC_NAMESPACE", "ENABLE_METRICS",
	"PUBLISH_COMPRESS_THRESHOLD", "AWS_ENDPOINT_URL",
}

// clearConfigEnv unsets every key LoadConfig reads; t.Setenv restores the
// previous values after the test.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Environment != "local" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "local")
	}
	if cfg.Engine.DefaultTraceLevel != "none" {
		t.Errorf("DefaultTraceLevel = %q, want %q", cfg.Engine.DefaultTraceLevel, "none")
	}
	if cfg.Engine.AllowTraceFull {
		t.Error("AllowTraceFull should default to false")
	}
	if cfg.Engine.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Engine.Workers)
	}
	if cfg.Provider.Timeout != 8*time.Second {
		t.Errorf("Timeout = %v, want 8s", cfg.Provider.Timeout)
	}
	if cfg.Provider.StaleTTL != 3*time.Hour {
		t.Errorf("StaleTTL = %v, want 3h", cfg.Provider.StaleTTL)
	}
	if cfg.Provider.ReferenceLat != 41.01 || cfg.Provider.ReferenceLon != 28.98 {
		t.Errorf("reference = (%v, %v), want Istanbul", cfg.Provider.ReferenceLat, cfg.Provider.ReferenceLon)
	}
	if cfg.AWS.MetricNamespace != "FishCast" {
		t.Errorf("MetricNamespace = %q, want %q", cfg.AWS.MetricNamespace, "FishCast")
	}
	if cfg.AWS.PublishCompressThreshold != 65536 {
		t.Errorf("PublishCompressThreshold = %d, want 65536", cfg.AWS.PublishCompressThreshold)
	}
	if cfg.Build.Version != "dev" {
		t.Errorf("Build.Version = %q, want %q", cfg.Build.Version, "dev")
	}
	if time.Local != time.UTC {
		t.Error("LoadConfig should pin time.Local to UTC")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("ALLOW_TRACE_FULL", "true")
	t.Setenv("DEFAULT_TRACE_LEVEL", "minimal")
	t.Setenv("OFFLINE_MODE", "true")
	t.Setenv("PROVIDER_TIMEOUT", "2s")
	t.Setenv("OPEN_METEO_API_KEY", "om-secret")
	t.Setenv("DECISION_QUEUE_URL", "https://sqs.eu-central-1.amazonaws.com/123/fishcast-decisions")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if !cfg.Engine.AllowTraceFull || cfg.Engine.DefaultTraceLevel != "minimal" {
		t.Errorf("trace settings = (%v, %q)", cfg.Engine.AllowTraceFull, cfg.Engine.DefaultTraceLevel)
	}
	if !cfg.Provider.Offline {
		t.Error("Offline should be true")
	}
	if cfg.Provider.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", cfg.Provider.Timeout)
	}
	if cfg.Provider.OpenMeteoAPIKey.Unmask() != "om-secret" {
		t.Error("OpenMeteoAPIKey not loaded")
	}
	if cfg.Provider.OpenMeteoAPIKey.String() == "om-secret" {
		t.Error("OpenMeteoAPIKey must not print in clear")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantType ConfigErrorType
		wantText string
	}{
		{"unknown environment", map[string]string{"APP_ENV": "qa"}, ErrValidation, "Environment"},
		{"unknown trace level", map[string]string{"DEFAULT_TRACE_LEVEL": "verbose"}, ErrValidation, "DefaultTraceLevel"},
		{"unknown timezone", map[string]string{"DECISION_TIMEZONE": "Mars/Olympus"}, ErrValidation, "Timezone"},
		{"zero workers", map[string]string{"ENGINE_WORKERS": "0"}, ErrValidation, "Workers"},
		{"stale shorter than fresh", map[string]string{"PROVIDER_CACHE_TTL": "1h", "PROVIDER_STALE_TTL": "30m"}, ErrValidation, "StaleTTL"},
		{"bad queue url", map[string]string{"DECISION_QUEUE_URL": "not a url"}, ErrValidation, "DecisionQueueURL"},
		{"bad duration", map[string]string{"PROVIDER_TIMEOUT": "soon"}, ErrParsing, "PROVIDER_TIMEOUT"},
		{"bad bool", map[string]string{"OFFLINE_MODE": "maybe"}, ErrParsing, "OFFLINE_MODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cfgErr.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", cfgErr.Type, tt.wantType)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantText)
			}
		})
	}
}

func TestEngineConfigLocation(t *testing.T) {
	loc := EngineConfig{Timezone: "Europe/Istanbul"}.Location()
	if loc.String() != "Europe/Istanbul" {
		t.Errorf("Location() = %q, want Europe/Istanbul", loc.String())
	}

	fallback := EngineConfig{Timezone: "Nowhere/Atlantis"}.Location()
	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, fallback).Zone()
	if offset != 3*60*60 {
		t.Errorf("fallback offset = %d, want %d", offset, 3*60*60)
	}
}

func TestConfigErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &ConfigError{Type: ErrParsing, Message: "wrap", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("ConfigError should unwrap to its cause")
	}
	if got := (&ConfigError{Type: ErrValidation, Message: "bare"}).Error(); got != "[VALIDATION_FAILED] bare" {
		t.Errorf("Error() = %q", got)
	}
}

// Package config defines the process configuration for FishCast binaries.
// Configuration is loaded once at startup and is immutable thereafter.
//
// Values are resolved with the OS environment taking precedence over a
// dotenv file. Any invalid value fails startup.
package config

import (
	"time"

	"fishcast/internal/types"
)

// SecretString is an alias for types.SecretString so secrets never reach
// logs through config dumps.
type SecretString = types.SecretString

// Config is the top-level configuration. Components receive only the
// subset they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Engine   EngineConfig
	Provider ProviderConfig
	AWS      AWSConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// EngineConfig tunes the decision engine.
type EngineConfig struct {
	// CatalogDir holds the four catalogue documents; empty uses the
	// embedded defaults.
	CatalogDir        string `envconfig:"CATALOG_DIR"`
	AllowTraceFull    bool   `envconfig:"ALLOW_TRACE_FULL" default:"false"`
	DefaultTraceLevel string `envconfig:"DEFAULT_TRACE_LEVEL" default:"none" validate:"oneof=none minimal full"`
	Timezone          string `envconfig:"DECISION_TIMEZONE" default:"Europe/Istanbul" validate:"required,timezone"`
	Workers           int    `envconfig:"ENGINE_WORKERS" default:"4" validate:"min=1,max=64"`
}

// ProviderConfig selects and tunes the upstream providers.
type ProviderConfig struct {
	Offline      bool   `envconfig:"OFFLINE_MODE" default:"false"`
	SnapshotPath string `envconfig:"SNAPSHOT_PATH"`

	OpenMeteoURL       string       `envconfig:"OPEN_METEO_URL" validate:"omitempty,url"`
	OpenMeteoMarineURL string       `envconfig:"OPEN_METEO_MARINE_URL" validate:"omitempty,url"`
	OpenMeteoAPIKey    SecretString `envconfig:"OPEN_METEO_API_KEY"`

	Timeout  time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"8s" validate:"min=100ms"`
	CacheTTL time.Duration `envconfig:"PROVIDER_CACHE_TTL" default:"10m"`
	StaleTTL time.Duration `envconfig:"PROVIDER_STALE_TTL" default:"3h" validate:"gtefield=CacheTTL"`

	BreakerFailures uint32        `envconfig:"PROVIDER_BREAKER_FAILURES" default:"3" validate:"min=1"`
	BreakerCooldown time.Duration `envconfig:"PROVIDER_BREAKER_COOLDOWN" default:"1m"`

	// Reference point for city-wide weather and sea state (Istanbul).
	ReferenceLat float64 `envconfig:"REFERENCE_LAT" default:"41.01" validate:"latitude"`
	ReferenceLon float64 `envconfig:"REFERENCE_LON" default:"28.98" validate:"longitude"`
}

// AWSConfig holds AWS resource identifiers for the decision job.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"eu-central-1"`

	// DecisionQueueURL receives published decisions; empty disables publishing.
	DecisionQueueURL         string `envconfig:"DECISION_QUEUE_URL" validate:"omitempty,url"`
	MetricNamespace          string `envconfig:"METRIC_NAMESPACE" default:"FishCast"`
	EnableMetrics            bool   `envconfig:"ENABLE_METRICS" default:"false"`
	PublishCompressThreshold int    `envconfig:"PUBLISH_COMPRESS_THRESHOLD" default:"65536" validate:"min=1024"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates an environment value could not be parsed into its
	// target type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)

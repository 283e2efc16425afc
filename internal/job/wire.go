package job

import (
	"context"
	"fmt"
	"log/slog"

	"fishcast/internal/acquisition"
	"fishcast/internal/catalog"
	"fishcast/internal/config"
	"fishcast/internal/decision"
	"fishcast/internal/external"
	"fishcast/internal/telemetry"
	"fishcast/internal/types"
)

// Deps are the process-level collaborators a Job is built with.
type Deps struct {
	Slog   *slog.Logger
	Logger types.Logger
	Clock  types.Clock
	// Objects serves s3:// snapshot paths; nil disables them.
	Objects   external.ObjectGetter
	Publisher Publisher
	Metrics   telemetry.Metrics
}

// LoadCatalog loads the catalogue directory, or the embedded defaults when
// dir is empty.
func LoadCatalog(dir string) (*catalog.Bundle, error) {
	if dir == "" {
		return catalog.LoadEmbedded()
	}
	return catalog.LoadDir(dir)
}

// New assembles a Job from configuration.
func New(ctx context.Context, cfg *config.Config, deps Deps) (*Job, error) {
	if deps.Logger == nil {
		deps.Logger = types.NopLogger{}
	}
	bundle, err := LoadCatalog(cfg.Engine.CatalogDir)
	if err != nil {
		return nil, err
	}
	for _, w := range bundle.Warnings {
		deps.Logger.Warn("catalogue warning", "warning", w)
	}

	loc := cfg.Engine.Location()
	reference := types.Coordinates{Lat: cfg.Provider.ReferenceLat, Lon: cfg.Provider.ReferenceLon}

	providers, err := external.NewProviders(ctx, external.RegistryConfig{
		Offline:            cfg.Provider.Offline,
		SnapshotPath:       cfg.Provider.SnapshotPath,
		Objects:            deps.Objects,
		OpenMeteoURL:       cfg.Provider.OpenMeteoURL,
		OpenMeteoMarineURL: cfg.Provider.OpenMeteoMarineURL,
		OpenMeteoAPIKey:    cfg.Provider.OpenMeteoAPIKey,
		Timezone:           cfg.Engine.Timezone,
		Timeout:            cfg.Provider.Timeout,
		CacheTTL:           cfg.Provider.CacheTTL,
		StaleTTL:           cfg.Provider.StaleTTL,
		Breaker: external.BreakerSettings{
			ConsecutiveFailures: cfg.Provider.BreakerFailures,
			Cooldown:            cfg.Provider.BreakerCooldown,
		},
		UserAgent: fmt.Sprintf("fishcast/%s", cfg.Build.Version),
		Reference: reference,
	}, deps.Slog, deps.Clock)
	if err != nil {
		return nil, fmt.Errorf("providers: %w", err)
	}

	acquirer := acquisition.New(providers, bundle.Locations, acquisition.Config{
		Timeout:   cfg.Provider.Timeout,
		Workers:   cfg.Engine.Workers,
		Location:  loc,
		Reference: reference,
	}, deps.Logger)

	opts := []decision.Option{
		decision.WithLogger(deps.Logger),
		decision.WithTracePolicy(decision.TracePolicy{AllowFull: cfg.Engine.AllowTraceFull}),
		decision.WithWorkers(cfg.Engine.Workers),
		decision.WithLocation(loc),
	}
	if deps.Clock != nil {
		opts = append(opts, decision.WithClock(deps.Clock))
	}

	active, disabled := bundle.Rules.Counts()
	deps.Logger.Info("decision job ready",
		"provider_source", providers.Source,
		"offline", cfg.Provider.Offline,
		"allow_trace_full", cfg.Engine.AllowTraceFull,
		"rules_active", active,
		"rules_disabled", disabled,
		"catalog_digest", bundle.Digest,
		"locations", len(bundle.Locations),
		"timezone", loc.String(),
	)

	return &Job{
		Acquirer:     acquirer,
		Decider:      decision.NewEngine(bundle, opts...),
		Publisher:    deps.Publisher,
		Metrics:      deps.Metrics,
		Clock:        deps.Clock,
		Logger:       deps.Logger,
		DefaultTrace: decision.ParseTraceLevel(cfg.Engine.DefaultTraceLevel),
	}, nil
}

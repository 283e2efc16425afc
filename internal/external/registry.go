package external

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fishcast/internal/types"
)

// Provider source modes.
const (
	SourceLive     = "live"
	SourceSnapshot = "snapshot"
	SourceOffline  = "offline"
)

// RegistryConfig selects and tunes the providers.
type RegistryConfig struct {
	Offline      bool
	SnapshotPath string
	// Objects serves s3:// snapshot paths.
	Objects ObjectGetter

	OpenMeteoURL       string
	OpenMeteoMarineURL string
	OpenMeteoAPIKey    types.SecretString
	Timezone           string
	Timeout            time.Duration
	CacheTTL           time.Duration
	StaleTTL           time.Duration
	Breaker            BreakerSettings
	UserAgent          string

	// Reference is the city reference point; its longitude anchors the
	// almanac.
	Reference types.Coordinates
}

// Providers holds one implementation per upstream concern.
type Providers struct {
	Weather WeatherProvider
	Marine  MarineProvider
	Lunar   LunarProvider
	Reports ReportAggregator

	// Source is one of SourceLive, SourceSnapshot or SourceOffline.
	Source string
	// Notes are data issues that apply to every run with these providers.
	Notes []string
}

// NewProviders builds the providers for cfg.
//
// Offline mode serves the fixed offline data set with zero network calls.
// A snapshot path replays recorded readings, computing the lunar day when
// the snapshot has none. Otherwise weather and sea state come from
// Open-Meteo behind a breaker and a TTL cache, the lunar day from the
// almanac, and reports are absent.
func NewProviders(ctx context.Context, cfg RegistryConfig, logger *slog.Logger, clock types.Clock) (*Providers, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	almanac := NewAlmanac(cfg.Reference.Lon)

	if cfg.Offline {
		logger.Info("initializing providers in OFFLINE mode")
		snap := NewSnapshotProvider(OfflineSnapshot(int(clock.Now().Month())), clock)
		return &Providers{
			Weather: snap, Marine: snap, Lunar: snap, Reports: snap,
			Source: SourceOffline,
			Notes:  []string{IssueOffline},
		}, nil
	}

	if cfg.SnapshotPath != "" {
		logger.Info("initializing providers from snapshot", "path", cfg.SnapshotPath)
		data, err := LoadSnapshot(ctx, cfg.SnapshotPath, cfg.Objects)
		if err != nil {
			return nil, err
		}
		snap := NewSnapshotProvider(data, clock)
		p := &Providers{Weather: snap, Marine: snap, Lunar: snap, Reports: snap, Source: SourceSnapshot}
		if data.Lunar == nil {
			p.Lunar = almanac
		}
		return p, nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger.Info("initializing providers in LIVE mode",
		"open_meteo_url", cfg.OpenMeteoURL,
		"timeout", timeout.String(),
	)
	base := NewBaseClient(&http.Client{Timeout: timeout}, "fishcast-open-meteo", DefaultRetryPolicy(), cfg.UserAgent)
	meteo := NewOpenMeteoClient(base, OpenMeteoConfig{
		ForecastURL: cfg.OpenMeteoURL,
		MarineURL:   cfg.OpenMeteoMarineURL,
		Timezone:    cfg.Timezone,
		APIKey:      cfg.OpenMeteoAPIKey,
	})

	return &Providers{
		Weather: NewCachedWeather(GuardWeather(meteo, cfg.Breaker),
			NewTTLCache[types.WeatherReading](cfg.CacheTTL, cfg.StaleTTL, DefaultCacheEntries, clock).WithFetchTimeout(timeout)),
		Marine: NewCachedMarine(GuardMarine(meteo, cfg.Breaker),
			NewTTLCache[types.SeaReading](cfg.CacheTTL, cfg.StaleTTL, DefaultCacheEntries, clock).WithFetchTimeout(timeout)),
		Lunar:   almanac,
		Reports: GuardReports(NoReports{}, cfg.Breaker),
		Source:  SourceLive,
	}, nil
}

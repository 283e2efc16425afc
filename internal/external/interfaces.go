package external

import (
	"context"
	"time"

	"fishcast/internal/types"
)

// WeatherProvider returns the current atmospheric reading at a point.
// Implementations set Status to the freshness of what they return.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, at types.Coordinates) (types.WeatherReading, error)
}

// MarineProvider returns sea temperature and wave height at a point.
// Either value may be nil when the upstream has no data for it.
type MarineProvider interface {
	SeaState(ctx context.Context, at types.Coordinates) (types.SeaReading, error)
}

// LunarProvider describes the lunar day containing date in loc.
type LunarProvider interface {
	LunarDay(ctx context.Context, date time.Time, loc *time.Location) (types.LunarContext, error)
}

// ReportAggregator summarizes the last 24 hours of community reports for a
// location. A nil aggregate with a nil error means no reports.
type ReportAggregator interface {
	Aggregate24h(ctx context.Context, locationID string) (*types.ReportAggregate, error)
}

// Provider names used in logs, data issues and metric dimensions.
const (
	ProviderWeather = "weather"
	ProviderMarine  = "marine"
	ProviderLunar   = "lunar"
	ProviderReports = "reports"
)

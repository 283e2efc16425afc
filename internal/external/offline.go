package external

import (
	"context"

	"fishcast/internal/types"
)

// OfflineSnapshot is the fixed data set served in offline mode. Every
// reading is graded fallback so decisions made from it say so.
func OfflineSnapshot(month int) *Snapshot {
	wave := 0.3
	sea := ClimatologySea(month)
	sea.WaveHeightM = &wave
	lunar := DefaultLunarDay()

	return &Snapshot{
		Weather: &types.WeatherReading{
			WindSpeedKmh:        10,
			WindDirDeg:          45,
			PressureHPa:         1015,
			PressureChange3hHPa: -0.5,
			AirTempC:            15,
			CloudCoverPct:       40,
			Status:              types.DataQualityFallback,
		},
		Sea:   &sea,
		Lunar: &lunar,
	}
}

// NoReports is the aggregator used when no report backend is configured.
type NoReports struct{}

// Aggregate24h always reports no data.
func (NoReports) Aggregate24h(ctx context.Context, _ string) (*types.ReportAggregate, error) {
	return nil, ctx.Err()
}

package external

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"fishcast/internal/types"
)

// Snapshot is a recorded set of upstream readings. It backs the snapshot
// providers used for replays and operator runs without network access.
//
// A missing section makes the matching provider fail, which exercises the
// same fallback path as an upstream outage.
type Snapshot struct {
	Weather *types.WeatherReading             `yaml:"weather"`
	Sea     *types.SeaReading                 `yaml:"sea"`
	Lunar   *types.LunarContext               `yaml:"lunar"`
	Reports map[string]*types.ReportAggregate `yaml:"reports"`
	// ReportLog holds raw catch reports; aggregates are derived from it for
	// locations without an entry in Reports.
	ReportLog []CatchReport `yaml:"reportLog"`
}

// CatchReport is one community catch report.
type CatchReport struct {
	LocationID  string            `yaml:"locationId"`
	Species     types.SpeciesID   `yaml:"species"`
	Technique   types.TechniqueID `yaml:"technique"`
	NaturalBait bool              `yaml:"naturalBait"`
	At          time.Time         `yaml:"at"`
}

// ParseSnapshot decodes a YAML snapshot. Readings without a status are
// treated as live.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamBadPayload, "invalid snapshot", err)
	}
	if s.Weather != nil && s.Weather.Status == "" {
		s.Weather.Status = types.DataQualityLive
	}
	if s.Sea != nil && s.Sea.Status == "" {
		s.Sea.Status = types.DataQualityLive
	}
	if s.Lunar != nil && s.Lunar.Status == "" {
		s.Lunar.Status = types.DataQualityLive
	}
	return &s, nil
}

// LoadSnapshot reads and decodes a snapshot from a local path or an
// s3:// URL. A .zst suffix marks a zstd-compressed snapshot.
func LoadSnapshot(ctx context.Context, path string, objects ObjectGetter) (*Snapshot, error) {
	data, err := readSource(ctx, path, objects)
	if err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, types.NewAppError(types.ErrCodeUpstreamUnavailable, "failed to read snapshot", err).
			WithDetails(map[string]any{"path": path})
	}
	return ParseSnapshot(data)
}

// SnapshotProvider serves a Snapshot through every provider interface.
type SnapshotProvider struct {
	snap  *Snapshot
	clock types.Clock
}

// NewSnapshotProvider returns providers over snap. The clock anchors the
// 24-hour report window.
func NewSnapshotProvider(snap *Snapshot, clock types.Clock) *SnapshotProvider {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &SnapshotProvider{snap: snap, clock: clock}
}

func missingSection(name string) error {
	return types.NewAppError(types.ErrCodeUpstreamUnavailable,
		fmt.Sprintf("snapshot has no %s section", name), nil)
}

// CurrentWeather implements WeatherProvider.
func (p *SnapshotProvider) CurrentWeather(ctx context.Context, _ types.Coordinates) (types.WeatherReading, error) {
	if err := ctx.Err(); err != nil {
		return types.WeatherReading{}, err
	}
	if p.snap.Weather == nil {
		return types.WeatherReading{}, missingSection("weather")
	}
	return *p.snap.Weather, nil
}

// SeaState implements MarineProvider.
func (p *SnapshotProvider) SeaState(ctx context.Context, _ types.Coordinates) (types.SeaReading, error) {
	if err := ctx.Err(); err != nil {
		return types.SeaReading{}, err
	}
	if p.snap.Sea == nil {
		return types.SeaReading{}, missingSection("sea")
	}
	return *p.snap.Sea, nil
}

// LunarDay implements LunarProvider. The recorded day is returned
// regardless of date.
func (p *SnapshotProvider) LunarDay(ctx context.Context, _ time.Time, _ *time.Location) (types.LunarContext, error) {
	if err := ctx.Err(); err != nil {
		return types.LunarContext{}, err
	}
	if p.snap.Lunar == nil {
		return types.LunarContext{}, missingSection("lunar")
	}
	return *p.snap.Lunar, nil
}

// Aggregate24h implements ReportAggregator.
func (p *SnapshotProvider) Aggregate24h(ctx context.Context, locationID string) (*types.ReportAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if agg, ok := p.snap.Reports[locationID]; ok {
		return agg, nil
	}
	return AggregateReports(p.snap.ReportLog, locationID, p.clock.Now()), nil
}

// AggregateReports summarizes the reports for locationID in the 24 hours
// before now. Natural bait bias is set when more than half of those reports
// used natural bait. Returns nil when there are none.
func AggregateReports(log []CatchReport, locationID string, now time.Time) *types.ReportAggregate {
	cutoff := now.Add(-24 * time.Hour)
	agg := &types.ReportAggregate{TechniqueCounts: map[types.TechniqueID]int{}}
	natural := 0
	for _, r := range log {
		if r.LocationID != locationID || r.At.Before(cutoff) || r.At.After(now) {
			continue
		}
		agg.TotalReports++
		if r.Technique != "" {
			agg.TechniqueCounts[r.Technique]++
		}
		if r.NaturalBait {
			natural++
		}
	}
	if agg.TotalReports == 0 {
		return nil
	}
	agg.NaturalBaitBias = natural*2 > agg.TotalReports
	return agg
}

package acquisition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fishcast/internal/external"
	"fishcast/internal/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)        {}
func (nopLogger) Warn(string, ...any)        {}
func (nopLogger) Error(string, ...any)       {}
func (n nopLogger) With(...any) types.Logger { return n }

type mockWeather struct{ mock.Mock }

func (m *mockWeather) CurrentWeather(ctx context.Context, at types.Coordinates) (types.WeatherReading, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(types.WeatherReading), args.Error(1)
}

type mockMarine struct{ mock.Mock }

func (m *mockMarine) SeaState(ctx context.Context, at types.Coordinates) (types.SeaReading, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(types.SeaReading), args.Error(1)
}

type mockReports struct{ mock.Mock }

func (m *mockReports) Aggregate24h(ctx context.Context, id string) (*types.ReportAggregate, error) {
	args := m.Called(ctx, id)
	agg, _ := args.Get(0).(*types.ReportAggregate)
	return agg, args.Error(1)
}

type blockingLunar struct{}

func (blockingLunar) LunarDay(ctx context.Context, _ time.Time, _ *time.Location) (types.LunarContext, error) {
	<-ctx.Done()
	return types.LunarContext{}, ctx.Err()
}

var (
	trt       = time.FixedZone("TRT", 3*60*60)
	reference = types.Coordinates{Lat: 41.01, Lon: 28.98}
	evalAt    = time.Date(2026, 10, 15, 7, 30, 0, 0, time.UTC)
	locations = []types.Location{{ID: "moda"}, {ID: "bebek"}}
)

func liveWeather() types.WeatherReading {
	return types.WeatherReading{WindSpeedKmh: 12, WindDirDeg: 45, PressureHPa: 1016, AirTempC: 17, CloudCoverPct: 20, Status: types.DataQualityLive}
}

func liveSea() types.SeaReading {
	t, w := 19.5, 0.4
	return types.SeaReading{SeaTempC: &t, WaveHeightM: &w, Status: types.DataQualityLive}
}

func newAcquirer(p *external.Providers) *Acquirer {
	return New(p, locations, Config{Timeout: 50 * time.Millisecond, Location: trt, Reference: reference}, nopLogger{})
}

func TestAcquireAllLive(t *testing.T) {
	weather := &mockWeather{}
	weather.On("CurrentWeather", mock.Anything, reference).Return(liveWeather(), nil)
	marine := &mockMarine{}
	marine.On("SeaState", mock.Anything, reference).Return(liveSea(), nil)
	reports := &mockReports{}
	modaAgg := &types.ReportAggregate{TotalReports: 2}
	reports.On("Aggregate24h", mock.Anything, "moda").Return(modaAgg, nil)
	reports.On("Aggregate24h", mock.Anything, "bebek").Return(nil, nil)

	a := newAcquirer(&external.Providers{
		Weather: weather, Marine: marine, Lunar: external.NewAlmanac(28.98), Reports: reports,
		Source: external.SourceLive,
	})
	res, err := a.Acquire(context.Background(), evalAt)
	require.NoError(t, err)

	c := res.Conditions
	assert.Equal(t, types.DataQualityLive, c.DataQuality)
	assert.Empty(t, c.DataIssues)
	assert.NotNil(t, c.DataIssues)
	assert.Equal(t, liveWeather(), c.Weather)
	assert.Equal(t, map[string]*types.ReportAggregate{"moda": modaAgg}, c.Reports)
	assert.Len(t, c.Lunar.MajorPeriods, 2)
	for _, o := range res.Outcomes {
		assert.False(t, o.Fallback(), o.Provider)
	}
	weather.AssertExpectations(t)
	marine.AssertExpectations(t)
	reports.AssertExpectations(t)
}

func TestAcquireSubstitutesFallbacks(t *testing.T) {
	weather := &mockWeather{}
	weather.On("CurrentWeather", mock.Anything, reference).Return(types.WeatherReading{}, errors.New("timeout"))
	marine := &mockMarine{}
	marine.On("SeaState", mock.Anything, reference).Return(types.SeaReading{}, errors.New("503"))
	reports := &mockReports{}
	reports.On("Aggregate24h", mock.Anything, "bebek").Return(nil, errors.New("down"))
	reports.On("Aggregate24h", mock.Anything, "moda").Return(nil, nil)

	a := newAcquirer(&external.Providers{Weather: weather, Marine: marine, Lunar: blockingLunar{}, Reports: reports})
	res, err := a.Acquire(context.Background(), evalAt)
	require.NoError(t, err)

	c := res.Conditions
	assert.Equal(t, types.DataQualityFallback, c.DataQuality)
	assert.Equal(t, external.FallbackWeather(), c.Weather)
	require.NotNil(t, c.Sea.SeaTempC)
	assert.Equal(t, 19.0, *c.Sea.SeaTempC, "October climatology")
	assert.Nil(t, c.Sea.WaveHeightM)
	assert.Equal(t, external.DefaultLunarDay(), c.Lunar, "lunar call timed out")
	assert.Empty(t, c.Reports)
	assert.Equal(t, []string{
		external.IssueWeatherFallback,
		external.IssueSeaClimatology(19),
		external.IssueLunarFallback,
		external.IssueReportsUnavailable("bebek"),
	}, c.DataIssues)

	var fallbacks []string
	for _, o := range res.Outcomes {
		if o.Fallback() {
			fallbacks = append(fallbacks, o.Provider)
		}
	}
	assert.Equal(t, []string{external.ProviderWeather, external.ProviderMarine, external.ProviderLunar, external.ProviderReports}, fallbacks)
}

func TestAcquireCachedGrade(t *testing.T) {
	weather := &mockWeather{}
	w := liveWeather()
	w.Status = types.DataQualityCached
	weather.On("CurrentWeather", mock.Anything, reference).Return(w, nil)
	marine := &mockMarine{}
	s := liveSea()
	s.Status = types.DataQualityCached
	marine.On("SeaState", mock.Anything, reference).Return(s, nil)

	a := newAcquirer(&external.Providers{Weather: weather, Marine: marine, Lunar: external.NewAlmanac(28.98), Reports: external.NoReports{}})
	res, err := a.Acquire(context.Background(), evalAt)
	require.NoError(t, err)

	assert.Equal(t, types.DataQualityCached, res.Conditions.DataQuality)
	assert.Equal(t, []string{IssueWeatherCached, external.IssueSeaCached}, res.Conditions.DataIssues)
}

func TestAcquireOfflineProviders(t *testing.T) {
	p, err := external.NewProviders(context.Background(), external.RegistryConfig{Offline: true}, nil, types.FixedClock{T: evalAt})
	require.NoError(t, err)

	res, err := newAcquirer(p).Acquire(context.Background(), evalAt)
	require.NoError(t, err)

	assert.Equal(t, types.DataQualityFallback, res.Conditions.DataQuality)
	assert.Equal(t, []string{external.IssueOffline}, res.Conditions.DataIssues)
	assert.Equal(t, 0.3, *res.Conditions.Sea.WaveHeightM)
}

func TestAcquireCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := external.NewSnapshotProvider(external.OfflineSnapshot(10), nil)
	a := newAcquirer(&external.Providers{Weather: snap, Marine: snap, Lunar: snap, Reports: snap})
	_, err := a.Acquire(ctx, evalAt)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGrade(t *testing.T) {
	assert.Equal(t, types.DataQualityLive, Grade())
	assert.Equal(t, types.DataQualityLive, Grade(types.DataQualityLive, ""))
	assert.Equal(t, types.DataQualityCached, Grade(types.DataQualityLive, types.DataQualityCached))
	assert.Equal(t, types.DataQualityFallback, Grade(types.DataQualityCached, types.DataQualityFallback, types.DataQualityLive))
}

// Package acquisition gathers every upstream input a decision run needs
// before the engine starts. Provider failures never abort a run: each is
// replaced by its documented fallback and recorded as a data issue.
package acquisition

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fishcast/internal/external"
	"fishcast/internal/types"
)

// Defaults for Config.
const (
	DefaultTimeout = 8 * time.Second
	DefaultWorkers = 4
)

// Data issues for readings served from the stale cache.
const (
	IssueWeatherCached = "Hava verisi: önbellekten (hava servisi geçici olarak erişilemez)"
)

// Config tunes acquisition.
type Config struct {
	// Timeout bounds each provider call.
	Timeout time.Duration
	// Workers bounds concurrent provider calls.
	Workers int
	// Location is the decision timezone; it fixes the local date and month.
	Location *time.Location
	// Reference is the city point used for weather and sea state.
	Reference types.Coordinates
}

// Outcome is the result of one provider call, kept for metrics.
type Outcome struct {
	Provider string
	Quality  types.DataQuality
	Err      error
}

// Fallback reports whether the call's result was substituted.
func (o Outcome) Fallback() bool { return o.Err != nil }

// Result is the acquired input of one run.
type Result struct {
	Conditions types.Conditions
	Outcomes   []Outcome
}

// Acquirer collects conditions from the providers.
type Acquirer struct {
	providers *external.Providers
	locations []types.Location
	cfg       Config
	logger    types.Logger
}

// New returns an Acquirer for the catalogue locations.
func New(providers *external.Providers, locations []types.Location, cfg Config, logger types.Logger) *Acquirer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	locs := slices.Clone(locations)
	slices.SortFunc(locs, func(a, b types.Location) int { return strings.Compare(a.ID, b.ID) })
	return &Acquirer{providers: providers, locations: locs, cfg: cfg, logger: logger}
}

// Acquire gathers weather, sea state, the lunar day and per-location
// reports for the evaluation instant.
//
// Decision logic:
//  1. All calls run concurrently, each under its own timeout.
//  2. A failed weather call takes the fallback weather set; a failed sea
//     call takes the monthly climatology; a failed lunar call takes the
//     default day; a failed report lookup leaves that location without
//     reports. Each substitution adds a data issue.
//  3. Data quality is the worst grade among weather, sea and lunar:
//     any fallback makes it fallback, else any cached makes it cached.
//  4. Only cancellation of ctx fails the run.
func (a *Acquirer) Acquire(ctx context.Context, at time.Time) (*Result, error) {
	local := at.In(a.cfg.Location)
	p := a.providers

	var (
		weather types.WeatherReading
		sea     types.SeaReading
		lunar   types.LunarContext
		errs    = make(map[string]error)
		reports = make(map[string]*types.ReportAggregate, len(a.locations))
		mu      sync.Mutex
	)
	record := func(key string, err error) {
		if err == nil {
			return
		}
		mu.Lock()
		errs[key] = err
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)

	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, a.cfg.Timeout)
		defer cancel()
		var err error
		weather, err = p.Weather.CurrentWeather(cctx, a.cfg.Reference)
		record(external.ProviderWeather, err)
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, a.cfg.Timeout)
		defer cancel()
		var err error
		sea, err = p.Marine.SeaState(cctx, a.cfg.Reference)
		record(external.ProviderMarine, err)
		return nil
	})
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, a.cfg.Timeout)
		defer cancel()
		var err error
		lunar, err = p.Lunar.LunarDay(cctx, local, a.cfg.Location)
		record(external.ProviderLunar, err)
		return nil
	})
	for _, loc := range a.locations {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, a.cfg.Timeout)
			defer cancel()
			agg, err := p.Reports.Aggregate24h(cctx, loc.ID)
			record(external.ProviderReports+":"+loc.ID, err)
			if err == nil && agg != nil {
				mu.Lock()
				reports[loc.ID] = agg
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	issues := slices.Clone(p.Notes)
	var outcomes []Outcome

	if err := errs[external.ProviderWeather]; err != nil {
		a.logger.Warn("weather provider failed, using fallback", "error", err)
		weather = external.FallbackWeather()
		issues = append(issues, external.IssueWeatherFallback)
	} else if weather.Status == types.DataQualityCached {
		issues = append(issues, IssueWeatherCached)
	}
	outcomes = append(outcomes, Outcome{Provider: external.ProviderWeather, Quality: weather.Status, Err: errs[external.ProviderWeather]})

	if err := errs[external.ProviderMarine]; err != nil {
		a.logger.Warn("marine provider failed, using climatology", "error", err)
		sea = external.ClimatologySea(int(local.Month()))
		issues = append(issues, external.IssueSeaClimatology(*sea.SeaTempC))
	} else if sea.Status == types.DataQualityCached {
		issues = append(issues, external.IssueSeaCached)
	}
	outcomes = append(outcomes, Outcome{Provider: external.ProviderMarine, Quality: sea.Status, Err: errs[external.ProviderMarine]})

	if err := errs[external.ProviderLunar]; err != nil {
		a.logger.Warn("lunar provider failed, using default day", "error", err)
		lunar = external.DefaultLunarDay()
		issues = append(issues, external.IssueLunarFallback)
	}
	outcomes = append(outcomes, Outcome{Provider: external.ProviderLunar, Quality: lunar.Status, Err: errs[external.ProviderLunar]})

	for _, loc := range a.locations {
		if err := errs[external.ProviderReports+":"+loc.ID]; err != nil {
			a.logger.Warn("report lookup failed", "location_id", loc.ID, "error", err)
			issues = append(issues, external.IssueReportsUnavailable(loc.ID))
			outcomes = append(outcomes, Outcome{Provider: external.ProviderReports, Quality: types.DataQualityFallback, Err: err})
		}
	}

	quality := Grade(weather.Status, sea.Status, lunar.Status)
	if issues == nil {
		issues = []string{}
	}

	a.logger.Info("conditions acquired",
		"source", p.Source,
		"data_quality", quality,
		"issue_count", len(issues),
		"report_locations", len(reports),
	)

	return &Result{
		Conditions: types.Conditions{
			Weather:     weather,
			Sea:         sea,
			Lunar:       lunar,
			Reports:     reports,
			DataQuality: quality,
			DataIssues:  issues,
		},
		Outcomes: outcomes,
	}, nil
}

// Grade combines field statuses: fallback beats cached beats live. An empty
// status counts as live.
func Grade(statuses ...types.DataQuality) types.DataQuality {
	q := types.DataQualityLive
	for _, s := range statuses {
		if s == "" {
			continue
		}
		q = q.Worse(s)
	}
	return q
}

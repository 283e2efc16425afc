// Package decision composes the fishing recommendation document.
//
// The engine is pure with respect to I/O: all conditions are acquired before
// Generate is called, and the configuration bundle is shared read-only.
// Per-location scoring is fanned out with errgroup; a run returns a complete
// document or an error, never a partial document.
package decision

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fishcast/internal/catalog"
	"fishcast/internal/mode"
	"fishcast/internal/types"
)

// DefaultTimezone is the decision timezone.
const DefaultTimezone = "Europe/Istanbul"

// DefaultWorkers bounds concurrent location evaluations.
const DefaultWorkers = 8

// Engine generates decisions from a catalogue bundle.
type Engine struct {
	bundle     *catalog.Bundle
	classifier *mode.Classifier
	policy     TracePolicy
	logger     types.Logger
	clock      types.Clock
	location   *time.Location
	workers    int
	newRunID   func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the decision event and invariant failures.
func WithLogger(l types.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithClock sets the clock used for generatedAt and latency.
func WithClock(c types.Clock) Option { return func(e *Engine) { e.clock = c } }

// WithTracePolicy sets the operator trace gate.
func WithTracePolicy(p TracePolicy) Option { return func(e *Engine) { e.policy = p } }

// WithWorkers bounds concurrent location evaluations.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLocation sets the decision timezone.
func WithLocation(loc *time.Location) Option { return func(e *Engine) { e.location = loc } }

// WithRunIDs overrides run id generation.
func WithRunIDs(fn func() string) Option { return func(e *Engine) { e.newRunID = fn } }

// WithClassifier overrides the mode cascade built from the bundle.
func WithClassifier(c *mode.Classifier) Option { return func(e *Engine) { e.classifier = c } }

// NewEngine returns an engine over b.
func NewEngine(b *catalog.Bundle, opts ...Option) *Engine {
	e := &Engine{
		bundle:     b,
		classifier: mode.New(b.Mode),
		logger:     types.NopLogger{},
		clock:      types.RealClock{},
		workers:    DefaultWorkers,
		newRunID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.location == nil {
		e.location = istanbul()
	}
	return e
}

// Bundle returns the configuration the engine serves.
func (e *Engine) Bundle() *catalog.Bundle { return e.bundle }

// Request is one decision run's input.
type Request struct {
	Conditions  types.Conditions
	EvaluatedAt time.Time
	TraceLevel  types.TraceLevel
}

// Generate runs the full decision pipeline.
//
// Steps:
//  1. Resolve the trace level through the operator gate.
//  2. Build one situational context per location and evaluate them in
//     parallel.
//  3. Global no-go is the OR over locations; reasons are de-duplicated.
//  4. Pick each region's representative and assemble targets, techniques,
//     avoid list and explanations.
//  5. Add best windows, sheltered exceptions (under no-go), health, day
//     summary, traces and meta; emit the decision event.
func (e *Engine) Generate(ctx context.Context, req Request) (*types.Decision, error) {
	started := e.clock.Now()
	b := e.bundle
	applied := e.policy.Apply(req.TraceLevel)
	full := applied == types.TraceFull

	evaluatedAt := req.EvaluatedAt
	if evaluatedAt.IsZero() {
		evaluatedAt = started
	}
	local := evaluatedAt.In(e.location)

	evals := make([]locationEval, len(b.Locations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, loc := range b.Locations {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sc := NewSituation(b, loc, req.Conditions, local)
			ev, err := e.evaluateLocation(sc, loc, full)
			if err != nil {
				return err
			}
			evals[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Error("decision run failed", "error", err)
		return nil, err
	}
	slices.SortFunc(evals, func(a, c locationEval) int {
		return strings.Compare(a.location.ID, c.location.ID)
	})

	noGo := types.NoGoBlock{Reasons: []string{}, ShelteredExceptions: []types.ShelteredException{}}
	for _, ev := range evals {
		if !ev.result.NoGo {
			continue
		}
		noGo.IsNoGo = true
		for _, r := range ev.result.NoGoReasons {
			if !slices.Contains(noGo.Reasons, r) {
				noGo.Reasons = append(noGo.Reasons, r)
			}
		}
	}

	citySituation := NewSituation(b, types.Location{}, req.Conditions, local)
	if noGo.IsNoGo {
		noGo.ShelteredExceptions = shelteredExceptions(b, citySituation.WindCardinal)
	}

	windows := BestWindows(req.Conditions.Lunar, req.Conditions.Weather, req.Conditions.DataQuality, b.Composer.Windows)

	regions := []types.RegionDecision{}
	for _, region := range b.Regions() {
		var inRegion []locationEval
		for _, ev := range evals {
			if ev.location.Region == region {
				inRegion = append(inRegion, ev)
			}
		}
		best, ok := bestLocation(inRegion)
		if !ok {
			continue
		}
		regions = append(regions, types.RegionDecision{
			Region:      region,
			Recommended: e.recommend(best, windows),
		})
	}

	doc := &types.Decision{
		Meta: types.DecisionMeta{
			ContractVersion:     types.ContractVersion,
			RunID:               e.newRunID(),
			GeneratedAt:         started.UTC(),
			EvaluatedAt:         evaluatedAt.UTC(),
			Timezone:            e.location.String(),
			RulesVersion:        b.Versions.Rules,
			ScoringVersion:      b.Versions.Scoring,
			SeasonVersion:       b.Versions.Seasonality,
			LocationsVersion:    b.Versions.Locations,
			CatalogDigest:       b.Digest,
			TraceLevelRequested: req.TraceLevel,
			TraceLevelApplied:   applied,
		},
		DaySummary:  DaySummary(req.Conditions, citySituation, b.Composer.DaySummary),
		BestWindows: windows,
		Regions:     regions,
		NoGo:        noGo,
		Health:      Health(req.Conditions),
	}
	if doc.Meta.TraceLevelRequested == "" {
		doc.Meta.TraceLevelRequested = types.TraceNone
	}
	if applied != types.TraceNone {
		for _, ev := range evals {
			doc.Traces = append(doc.Traces, buildTrace(ev, applied))
		}
	}

	e.logEvent(doc, e.clock.Now().Sub(started))
	return doc, nil
}

// recommend assembles the region output for its representative location.
func (e *Engine) recommend(ev locationEval, windows []types.TimeWindow) types.RecommendedLocation {
	b := e.bundle
	cfg := b.Composer
	top := ev.targets(cfg.MaxTargets)

	bandMin, bandMax := windBand(ev.situation.WindSpeedKmh, cfg.WindBand)
	out := types.RecommendedLocation{
		LocationID:            ev.location.ID,
		Name:                  ev.location.Name,
		AggregateScore:        ev.aggregate,
		WindBandKmhMin:        bandMin,
		WindBandKmhMax:        bandMax,
		Why:                   explanations(b, ev),
		Targets:               []types.Target{},
		RecommendedTechniques: []types.TechniqueAdvice{},
		AvoidTechniques:       []types.TechniqueAdvice{},
		Species:               make([]types.SpeciesScore, len(ev.species)),
		Reports:               ev.situation.Reports,
	}
	for i, s := range ev.species {
		out.Species[i] = s.score
	}

	var recommended, avoided []types.TechniqueID
	for _, s := range top {
		out.Targets = append(out.Targets, types.Target{
			Species:         s.score.Species,
			Name:            b.SpeciesName(s.score.Species),
			Score:           s.score.Score,
			Confidence:      s.score.Confidence,
			Mode:            s.score.Mode,
			SeasonStatus:    s.score.SeasonStatus,
			BestWindowIndex: windowIndexFor(s.score.BestTime, windows),
		})
		for _, t := range s.score.Recommended {
			if !slices.Contains(recommended, t) {
				recommended = append(recommended, t)
			}
		}
		for _, t := range s.score.Avoid {
			if slices.Contains(avoided, t) {
				continue
			}
			avoided = append(avoided, t)
			reason := cfg.RuleAvoidReason()
			if slices.Contains(cfg.ModeAvoid[s.score.Mode], t) {
				reason = cfg.AvoidReason(s.score.Mode)
			}
			out.AvoidTechniques = append(out.AvoidTechniques, types.TechniqueAdvice{
				Technique: t,
				Name:      b.TechniqueName(t),
				Reason:    reason,
			})
		}
	}

	if len(recommended) == 0 {
		fallback := ev.location.TechniqueBias
		if len(fallback) == 0 {
			fallback = ev.location.PrimaryTechniques
		}
		for _, t := range fallback {
			if !slices.Contains(recommended, t) && !slices.Contains(avoided, t) {
				recommended = append(recommended, t)
			}
		}
	}
	for _, t := range recommended {
		if len(out.RecommendedTechniques) == cfg.MaxRecommendedTechniques {
			break
		}
		out.RecommendedTechniques = append(out.RecommendedTechniques, types.TechniqueAdvice{
			Technique: t,
			Name:      b.TechniqueName(t),
		})
	}
	return out
}

// logEvent emits the decision_generated event.
func (e *Engine) logEvent(doc *types.Decision, latency time.Duration) {
	var top []types.SpeciesID
	for _, r := range doc.Regions {
		for _, t := range r.Recommended.Targets {
			if !slices.Contains(top, t.Species) && len(top) < 3 {
				top = append(top, t.Species)
			}
		}
	}
	e.logger.Info(types.EventDecisionGenerated,
		"run_id", doc.Meta.RunID,
		"contract_version", doc.Meta.ContractVersion,
		"health", doc.Health.Status,
		"data_quality", doc.DaySummary.DataQuality,
		"no_go", doc.NoGo.IsNoGo,
		"top_species", top,
		"latency_ms", float64(latency.Microseconds())/1000,
		"region_count", len(doc.Regions),
		"trace_requested", doc.Meta.TraceLevelRequested,
		"trace_applied", doc.Meta.TraceLevelApplied,
	)
}

// istanbul loads the decision timezone, falling back to its fixed offset
// when no zone database is available.
func istanbul() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.FixedZone(DefaultTimezone, 3*60*60)
	}
	return loc
}

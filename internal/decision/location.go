package decision

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"fishcast/internal/rules"
	"fishcast/internal/scoring"
	"fishcast/internal/types"
)

// speciesEval is the full evaluation of one species at one location.
type speciesEval struct {
	score    types.SpeciesScore
	modeStep string
	rules    rules.SpeciesResult
}

// locationEval is the evaluation of one location.
type locationEval struct {
	location  types.Location
	situation types.SituationalContext
	result    rules.Result
	species   []speciesEval
	aggregate int
}

// evaluateLocation scores every evaluated species at one location.
//
// Decision logic:
//  1. Evaluate every enabled rule once against the location context.
//  2. Per species: parameter scores → weighted sum → season adjustment →
//     compose with the capped rule bonus.
//  3. Classify the mode; a rule mode hint overrides the cascade.
//  4. Recommended techniques are the rule hints minus mode avoids; the
//     avoid list is the mode avoids followed by rule removals.
//  5. The location aggregate is the rounded mean over in-season species,
//     or 0 when a no-go rule fired (species stay scored and are flagged).
func (e *Engine) evaluateLocation(sc types.SituationalContext, loc types.Location, full bool) (locationEval, error) {
	b := e.bundle
	res := b.Rules.Evaluate(sc)
	if err := checkNoGoAuthority(res); err != nil {
		return locationEval{}, err
	}

	out := locationEval{location: loc, situation: sc, result: res}
	sum, count := 0, 0
	for _, sp := range b.Species {
		params, ok := b.Scoring.Parameters(sp, sc)
		if !ok {
			continue
		}
		weighted := params.Weighted()
		season := b.Season.Adjust(sp, sc.Month, weighted)
		rr := res.For(sp)
		score := scoring.ComposeScore(weighted, season, rr.FinalBonus)

		mode, step := e.classifier.Classify(sp, sc)
		if rr.ModeHint != "" {
			mode, step = rr.ModeHint, "rule:"+rr.ModeHintRule
		}

		conf := b.Scoring.Confidence.Estimate(scoring.ConfidenceInputs{
			DataQuality: sc.DataQuality,
			HasReports:  sc.HasRecentReports(),
			Accuracy:    sc.Accuracy,
			FiredRules:  res.FiredCount(),
			Season:      season,
		})

		modeAvoid := b.Composer.ModeAvoid[mode]
		var recommended []types.TechniqueID
		for _, t := range rr.Hints {
			if !slices.Contains(modeAvoid, t) && len(recommended) < b.Composer.MaxRecommendedTechniques {
				recommended = append(recommended, t)
			}
		}
		avoid := slices.Clone(modeAvoid)
		for _, t := range rr.Removals {
			if !slices.Contains(avoid, t) {
				avoid = append(avoid, t)
			}
		}

		ss := types.SpeciesScore{
			Species:          sp,
			Score:            score,
			Mode:             mode,
			Confidence:       conf,
			SeasonStatus:     season.Status,
			PartialCatch:     season.PartialCatch,
			SuppressedByNoGo: res.NoGo,
			BestTime:         b.Scoring.BestTime(sp),
			Recommended:      nonNil(recommended),
			Avoid:            nonNil(avoid),
		}
		if full {
			ss.Breakdown = &types.ScoreBreakdown{
				Pressure:         params.Pressure,
				Wind:             params.Wind,
				SeaTemp:          params.SeaTemp,
				Solunar:          params.Solunar,
				Time:             params.Time,
				Weighted:         math.Round(weighted*1000) / 1000,
				SeasonAdjustment: season.Adjustment,
				RuleBonus:        rr.FinalBonus,
			}
		}
		if err := checkSpeciesBounds(loc.ID, ss); err != nil {
			return locationEval{}, err
		}

		out.species = append(out.species, speciesEval{score: ss, modeStep: step, rules: rr})
		if !season.Status.IsOff() {
			sum += score
			count++
		}
	}

	if count > 0 {
		out.aggregate = int(math.RoundToEven(float64(sum) / float64(count)))
	}
	if res.NoGo {
		out.aggregate = 0
	}
	return out, nil
}

// targets returns the in-season species ordered by score descending, then id.
func (l locationEval) targets(limit int) []speciesEval {
	var in []speciesEval
	for _, s := range l.species {
		if !s.score.SeasonStatus.IsOff() {
			in = append(in, s)
		}
	}
	slices.SortStableFunc(in, func(a, b speciesEval) int {
		if c := cmp.Compare(b.score.Score, a.score.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.score.Species, b.score.Species)
	})
	if len(in) > limit {
		in = in[:limit]
	}
	return in
}

// bestLocation picks the region representative: highest aggregate, no-go
// locations last, ties to the smallest location id.
func bestLocation(evals []locationEval) (locationEval, bool) {
	if len(evals) == 0 {
		return locationEval{}, false
	}
	ranked := slices.Clone(evals)
	rank := func(l locationEval) int {
		if l.result.NoGo {
			return -1
		}
		return l.aggregate
	}
	slices.SortStableFunc(ranked, func(a, b locationEval) int {
		if c := cmp.Compare(rank(b), rank(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.location.ID, b.location.ID)
	})
	return ranked[0], true
}

func checkSpeciesBounds(locationID string, s types.SpeciesScore) error {
	if s.Score < scoring.MinScore || s.Score > scoring.MaxScore {
		return types.NewAppError(types.ErrCodeInvariantScore,
			fmt.Sprintf("score %d for %s outside [%d, %d]", s.Score, s.Species, scoring.MinScore, scoring.MaxScore), nil).
			WithDetails(map[string]any{"location_id": locationID, "species": s.Species})
	}
	if s.Confidence < scoring.ConfidenceFloor || s.Confidence > scoring.ConfidenceCeiling || math.IsNaN(s.Confidence) {
		return types.NewAppError(types.ErrCodeInvariantConfidence,
			fmt.Sprintf("confidence %.2f for %s outside [%.1f, %.1f]", s.Confidence, s.Species, scoring.ConfidenceFloor, scoring.ConfidenceCeiling), nil).
			WithDetails(map[string]any{"location_id": locationID, "species": s.Species})
	}
	return nil
}

// checkNoGoAuthority fails when a no-go came from a rule outside the safety
// category.
func checkNoGoAuthority(res rules.Result) error {
	for _, f := range res.Fired {
		if f.NoGo && f.Category != types.CategoryAbsolute {
			return types.NewAppError(types.ErrCodeInvariantNoGo,
				fmt.Sprintf("rule %s set no-go from category %s", f.ID, f.Category), nil).
				WithDetails(map[string]any{"rule_id": f.ID})
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

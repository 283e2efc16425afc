package scoring

import (
	"fmt"
	"math"

	"fishcast/internal/timeofday"
	"fishcast/internal/types"
)

// Score bounds for a composed species score.
const (
	MinScore = 0
	MaxScore = 100
)

// ParameterScores is the five-scalar set plus the weights that combine them.
type ParameterScores struct {
	Pressure float64
	Wind     float64
	SeaTemp  float64
	Solunar  float64
	Time     float64
	Weights  Weights
}

// Weighted returns the weighted parameter sum in [0, 1].
func (p ParameterScores) Weighted() float64 {
	w := p.Weights
	return unit(w.Pressure*p.Pressure + w.Wind*p.Wind + w.SeaTemp*p.SeaTemp + w.Solunar*p.Solunar + w.Time*p.Time)
}

// Parameters runs the five scorers for species against ctx. It returns false
// when the species has no configured weights.
func (c Config) Parameters(species types.SpeciesID, ctx types.SituationalContext) (ParameterScores, bool) {
	weights, ok := c.Weights[species]
	if !ok {
		return ParameterScores{}, false
	}

	seaTemp := c.ClimatologySeaTemp(ctx.Month)
	if ctx.SeaTempC != nil {
		seaTemp = *ctx.SeaTempC
	}
	var band *TempBand
	if b, ok := c.SeaTemp[species]; ok {
		band = &b
	}

	now := timeofday.Of(ctx.Hour, ctx.Minute)
	return ParameterScores{
		Pressure: PressureScore(ctx.PressureHPa, ctx.PressureChange3hHPa),
		Wind:     WindScore(ctx.WindSpeedKmh, ctx.WindDirDeg, ctx.Shore, c.Wind),
		SeaTemp:  SeaTempScore(seaTemp, band),
		Solunar:  SolunarScore(now, ParseWindows(ctx.MajorPeriods), ParseWindows(ctx.MinorPeriods), ctx.MoonIlluminationPct),
		Time:     TimeScore(ctx.Hour, species, c),
		Weights:  weights,
	}, true
}

// BestTime renders the species' first best-hour window as "HH:00-HH:00".
func (c Config) BestTime(species types.SpeciesID) string {
	hours := c.bestHoursFor(species)
	if len(hours) == 0 {
		return ""
	}
	return fmt.Sprintf("%02d:00-%02d:00", hours[0][0], hours[0][1])
}

// ComposeScore combines the weighted sum, the additive season term and the
// already-capped rule bonus:
//
//	score = clamp(0, 100, round(weighted*100 + season) + bonus)
//
// then lifts off-season scores to the season floor.
func ComposeScore(weighted float64, season SeasonAdjustment, ruleBonus int) int {
	raw := int(math.RoundToEven(unit(weighted)*100+float64(season.Adjustment))) + ruleBonus
	score := max(MinScore, min(MaxScore, raw))
	if season.Status.IsOff() && score < season.Floor {
		score = min(season.Floor, MaxScore)
	}
	return score
}

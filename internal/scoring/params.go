// Package scoring implements the five parameter scorers, the additive season
// adjuster, the confidence estimator, and the composition of a species score.
//
// Every scorer is a total, pure function: any numeric input maps to a score in
// [0, 1]. Out-of-domain and non-finite inputs are clamped, never rejected.
package scoring

import (
	"math"
	"slices"

	"fishcast/internal/timeofday"
	"fishcast/internal/types"
	"fishcast/internal/wind"
)

// approachLeadMinutes is how early before a major period the solunar score
// starts to rise.
const approachLeadMinutes = 60

// clampFinite clamps v to [lo, hi], mapping NaN to def.
func clampFinite(v, lo, hi, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return math.Max(lo, math.Min(hi, v))
}

func unit(v float64) float64 {
	return clampFinite(v, 0, 1, 0)
}

// PressureScore scores absolute pressure by band, then adjusts by the 3-hour
// change: falling pressure boosts, strongly rising pressure penalizes.
//
//  1. 1010–1020 hPa → 1.0
//  2. 1005–1010 or 1020–1025 → 0.7
//  3. 1000–1005 or 1025–1030 → 0.4
//  4. otherwise → 0.2
func PressureScore(hpa, change3h float64) float64 {
	hpa = clampFinite(hpa, 850, 1100, 1013)
	change3h = clampFinite(change3h, -50, 50, 0)

	var base float64
	switch {
	case hpa >= 1010 && hpa <= 1020:
		base = 1.0
	case (hpa >= 1005 && hpa < 1010) || (hpa > 1020 && hpa <= 1025):
		base = 0.7
	case (hpa >= 1000 && hpa < 1005) || (hpa > 1025 && hpa <= 1030):
		base = 0.4
	default:
		base = 0.2
	}

	switch {
	case change3h < -2:
		base += 0.3
	case change3h < -1:
		base += 0.15
	case change3h > 2:
		base -= 0.2
	}
	return unit(base)
}

// WindScore scores wind speed by band and, once speed reaches the configured
// threshold, shifts it by the direction/shore interaction table. The 0 returned
// at extreme speed is informational; no-go is decided by the rule catalogue.
func WindScore(speedKmh, dirDeg float64, shore types.Shore, cfg WindConfig) float64 {
	speedKmh = clampFinite(speedKmh, 0, 300, 0)

	var base float64
	switch {
	case speedKmh < 5:
		base = 0.65
	case speedKmh <= 15:
		base = 0.90
	case speedKmh <= 25:
		base = 0.75
	case speedKmh <= 35:
		base = 0.40
	default:
		return 0
	}

	if speedKmh >= cfg.ShiftThresholdKmh {
		cardinal := wind.Cardinal8(dirDeg)
		for _, s := range cfg.Shifts {
			if s.Shore == shore && slices.Contains(s.Directions, cardinal) {
				base += s.Delta
				break
			}
		}
	}
	return unit(base)
}

// SeaTempScore scores a temperature against a species band. Inside the band
// the score falls gently from 1.0 at the midpoint to 0.7 at the edges (never
// below 0.5); outside it drops linearly by diff/penalty from 0.5. A species
// without a band scores a neutral 0.5.
func SeaTempScore(tempC float64, band *TempBand) float64 {
	if band == nil {
		return 0.5
	}
	tempC = clampFinite(tempC, -5, 40, (band.Min+band.Max)/2)

	if tempC >= band.Min && tempC <= band.Max {
		half := (band.Max - band.Min) / 2
		if half == 0 {
			return 1.0
		}
		mid := (band.Min + band.Max) / 2
		distance := math.Abs(tempC-mid) / half
		return math.Max(0.5, 1.0-distance*0.3)
	}

	diff := tempC - band.Max
	if tempC < band.Min {
		diff = band.Min - tempC
	}
	return math.Max(0, 0.5-diff/band.Penalty)
}

// SolunarScore scores the current minute against the day's lunar periods.
//
//  1. Inside a major period → 1.0
//  2. Within an hour before a major period → 0.7
//  3. Inside a minor period → 0.7
//  4. Otherwise 0.3 plus up to 0.2 from moon illumination
func SolunarScore(now timeofday.Minute, major, minor []timeofday.Window, illuminationPct float64) float64 {
	for _, w := range major {
		if w.Contains(now) {
			return 1.0
		}
	}
	for _, w := range major {
		if w.Approaching(now, approachLeadMinutes) {
			return 0.7
		}
	}
	for _, w := range minor {
		if w.Contains(now) {
			return 0.7
		}
	}
	illuminationPct = clampFinite(illuminationPct, 0, 100, 50)
	return 0.3 + illuminationPct/100*0.2
}

// TimeScore scores the hour against the species' best-hour windows: inside a
// window 1.0, within an hour of a window edge 0.6, otherwise 0.3. A fixed
// nocturnal bonus is added afterwards for night-feeding species.
func TimeScore(hour int, species types.SpeciesID, cfg Config) float64 {
	hour = ((hour % 24) + 24) % 24
	windows := cfg.bestHoursFor(species)

	base := 0.3
	for _, w := range windows {
		if w.Contains(hour) {
			base = 1.0
			break
		}
	}
	if base < 1.0 {
		for _, w := range windows {
			if hourDistance(hour, w[0]) <= 1 || hourDistance(hour, w[1]) <= 1 {
				base = 0.6
				break
			}
		}
	}
	if cfg.Nocturnal.Applies(species, hour) {
		base += cfg.Nocturnal.Bonus
	}
	return unit(base)
}

func hourDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	d %= 24
	if d > 12 {
		d = 24 - d
	}
	return d
}

// ParseWindows converts lunar periods into clock windows, skipping any period
// that does not parse. Acquisition validates periods, so skips are rare.
func ParseWindows(periods []types.Period) []timeofday.Window {
	out := make([]timeofday.Window, 0, len(periods))
	for _, p := range periods {
		w, err := timeofday.NewWindow(p.Start, p.End)
		if err != nil {
			continue
		}
		out = append(out, w)
	}
	return out
}

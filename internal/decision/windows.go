package decision

import (
	"cmp"
	"slices"

	"fishcast/internal/catalog"
	"fishcast/internal/timeofday"
	"fishcast/internal/types"
)

// Window reason fragments.
const (
	reasonMajor        = "Major solunar periyodu"
	reasonMinor        = "Minor solunar periyodu"
	reasonPressureDrop = "Basınç düşüşü aktiviteyi artırır"
	reasonIdealWind    = "İdeal rüzgar koşulları"
)

type scoredWindow struct {
	span       timeofday.Window
	score      int
	confidence float64
	reasons    []string
}

// BestWindows turns the lunar major/minor periods into scored windows.
//
// Decision logic:
//  1. Majors start at MajorBase, gain PressureDropBonus when the 3h change
//     is below PressureDropBelowHPa and IdealWindBonus when the wind is in
//     the ideal band; confidence comes from the data-quality grade.
//  2. Minors score MinorBase with MinorConfidence.
//  3. Overlapping windows merge into their union with the max score and
//     confidence and the union of reasons.
//  4. Sort by score descending, then start; keep at most MaxWindows.
//
// Periods that do not parse are skipped.
func BestWindows(lunar types.LunarContext, w types.WeatherReading, quality types.DataQuality, cfg catalog.WindowConfig) []types.TimeWindow {
	var windows []scoredWindow

	majorConf, ok := cfg.MajorConfidence[quality]
	if !ok {
		majorConf = cfg.MinorConfidence
	}
	for _, p := range lunar.MajorPeriods {
		span, err := timeofday.NewWindow(p.Start, p.End)
		if err != nil {
			continue
		}
		sw := scoredWindow{span: span, score: cfg.MajorBase, confidence: majorConf, reasons: []string{reasonMajor}}
		if w.PressureChange3hHPa < cfg.PressureDropBelowHPa {
			sw.score += cfg.PressureDropBonus
			sw.reasons = append(sw.reasons, reasonPressureDrop)
		}
		if w.WindSpeedKmh >= cfg.IdealWindMinKmh && w.WindSpeedKmh <= cfg.IdealWindMaxKmh {
			sw.score += cfg.IdealWindBonus
			sw.reasons = append(sw.reasons, reasonIdealWind)
		}
		sw.score = min(sw.score, 100)
		windows = append(windows, sw)
	}
	for _, p := range lunar.MinorPeriods {
		span, err := timeofday.NewWindow(p.Start, p.End)
		if err != nil {
			continue
		}
		windows = append(windows, scoredWindow{span: span, score: cfg.MinorBase, confidence: cfg.MinorConfidence, reasons: []string{reasonMinor}})
	}

	windows = mergeOverlapping(windows)
	slices.SortStableFunc(windows, func(a, b scoredWindow) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.span.Start, b.span.Start)
	})
	if len(windows) > cfg.MaxWindows {
		windows = windows[:cfg.MaxWindows]
	}

	out := make([]types.TimeWindow, len(windows))
	for i, sw := range windows {
		out[i] = types.TimeWindow{
			Start:      sw.span.Start.String(),
			End:        sw.span.End.String(),
			Score:      sw.score,
			Confidence: sw.confidence,
			Reasons:    sw.reasons,
		}
	}
	return out
}

// mergeOverlapping folds every overlapping pair until none remain.
func mergeOverlapping(in []scoredWindow) []scoredWindow {
	out := slices.Clone(in)
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(out) && !merged; i++ {
			for j := i + 1; j < len(out); j++ {
				if !out[i].span.Overlaps(out[j].span) {
					continue
				}
				a, b := out[i], out[j]
				reasons := slices.Clone(a.reasons)
				for _, r := range b.reasons {
					if !slices.Contains(reasons, r) {
						reasons = append(reasons, r)
					}
				}
				out[i] = scoredWindow{
					span:       a.span.Union(b.span),
					score:      max(a.score, b.score),
					confidence: max(a.confidence, b.confidence),
					reasons:    reasons,
				}
				out = slices.Delete(out, j, j+1)
				merged = true
				break
			}
		}
	}
	return out
}

// windowIndexFor returns the index of the first ranked window overlapping
// the species' best-time window, 0 when none overlaps, or nil when there are
// no windows.
func windowIndexFor(bestTime string, windows []types.TimeWindow) *int {
	if len(windows) == 0 {
		return nil
	}
	idx := 0
	if bt, err := timeofday.ParseWindow(bestTime); err == nil {
		for i, w := range windows {
			span, err := timeofday.NewWindow(w.Start, w.End)
			if err == nil && span.Overlaps(bt) {
				idx = i
				break
			}
		}
	}
	return &idx
}

package decision

import (
	"time"

	"fishcast/internal/catalog"
	"fishcast/internal/timeofday"
	"fishcast/internal/types"
	"fishcast/internal/wind"
)

// TrendThresholdHPa is the 3-hour change beyond which pressure counts as
// falling or rising.
const TrendThresholdHPa = 0.5

// PressureTrendOf classifies a 3-hour pressure change.
func PressureTrendOf(change3h float64) types.PressureTrend {
	switch {
	case change3h < -TrendThresholdHPa:
		return types.PressureFalling
	case change3h > TrendThresholdHPa:
		return types.PressureRising
	default:
		return types.PressureStable
	}
}

// IsDaylight reports whether local lies in [sunrise, sunset). The lunar
// day's sunrise/sunset are used when present, otherwise the monthly table.
func IsDaylight(local time.Time, lunar types.LunarContext, table map[int]catalog.DaylightHours) bool {
	rise, set := lunar.Sunrise, lunar.Sunset
	if rise == "" || set == "" {
		h, ok := table[int(local.Month())]
		if !ok {
			return false
		}
		rise, set = h.Sunrise, h.Sunset
	}
	r, err := timeofday.Parse(rise)
	if err != nil {
		return false
	}
	s, err := timeofday.Parse(set)
	if err != nil {
		return false
	}
	now := timeofday.Of(local.Hour(), local.Minute())
	return r <= now && now < s
}

// NewSituation builds the immutable context for one location. local must
// already be in the decision timezone.
func NewSituation(b *catalog.Bundle, loc types.Location, cond types.Conditions, local time.Time) types.SituationalContext {
	w := cond.Weather
	cardinal := wind.Cardinal8(w.WindDirDeg)
	mass, strength := wind.WaterMassProxy(cardinal, w.WindSpeedKmh, b.WaterMass)

	var reports *types.ReportAggregate
	if r, ok := cond.Reports[loc.ID]; ok {
		reports = r
	}

	return types.SituationalContext{
		LocationID:      loc.ID,
		Region:          loc.Region,
		Shore:           loc.Shore,
		Accuracy:        loc.Accuracy,
		OnshoreDirsDeg:  loc.OnshoreDirsDeg,
		ShelterScore:    loc.ShelterScore,
		ShelteredFrom:   loc.ShelteredFrom,
		Features:        loc.Features,
		PelagicCorridor: loc.PelagicCorridor,

		WindSpeedKmh:        w.WindSpeedKmh,
		WindDirDeg:          wind.NormalizeDegrees(w.WindDirDeg),
		WindCardinal:        cardinal,
		PressureHPa:         w.PressureHPa,
		PressureChange3hHPa: w.PressureChange3hHPa,
		PressureTrend:       PressureTrendOf(w.PressureChange3hHPa),
		AirTempC:            w.AirTempC,
		SeaTempC:            cond.Sea.SeaTempC,
		CloudCoverPct:       w.CloudCoverPct,
		WaveHeightM:         cond.Sea.WaveHeightM,

		MajorPeriods:        cond.Lunar.MajorPeriods,
		MinorPeriods:        cond.Lunar.MinorPeriods,
		MoonIlluminationPct: cond.Lunar.IlluminationPct,
		LunarRating:         cond.Lunar.Rating,

		Hour:       local.Hour(),
		Minute:     local.Minute(),
		Month:      int(local.Month()),
		IsDaylight: IsDaylight(local, cond.Lunar, b.Composer.Daylight),

		WaterMass:         mass,
		WaterMassStrength: strength,

		Reports:     reports,
		DataQuality: cond.DataQuality,
	}
}

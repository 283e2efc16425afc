package external

import (
	"context"
	"math"
	"time"

	"fishcast/internal/timeofday"
	"fishcast/internal/types"
)

// Moon phase names.
const (
	PhaseNewMoon        = "new_moon"
	PhaseWaxingCrescent = "waxing_crescent"
	PhaseFirstQuarter   = "first_quarter"
	PhaseWaxingGibbous  = "waxing_gibbous"
	PhaseFullMoon       = "full_moon"
	PhaseWaningGibbous  = "waning_gibbous"
	PhaseLastQuarter    = "last_quarter"
	PhaseWaningCrescent = "waning_crescent"
)

const (
	synodicDays = 29.530588853

	// halfLunarDay is half of the 24h50m interval between moon transits.
	halfLunarDay = 745
	// riseToTransit approximates the moon's rise (and transit to set) offset.
	riseToTransit = 372

	majorHalfWidth = 60
	minorHalfWidth = 30
)

var referenceNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// Almanac computes the lunar day locally from the mean synodic cycle. It
// never calls out and never fails other than on cancellation, so it is the
// live lunar source.
type Almanac struct {
	// Longitude of the reference point in degrees east.
	Longitude float64
}

// NewAlmanac returns an Almanac for a reference longitude.
func NewAlmanac(longitude float64) *Almanac {
	return &Almanac{Longitude: longitude}
}

// LunarDay describes the local day containing date.
//
// Decision logic:
//  1. Moon age is taken at local noon against a reference new moon.
//  2. Transit drifts one full day per synodic month after local solar noon;
//     the anti-transit follows half a lunar day later. Majors are ±1 h
//     around both.
//  3. Rise and set sit 6 h 12 m either side of transit; minors are ±30 min
//     around both.
//  4. Rating starts at 0.3, adds 0.3 near new or full moon (or 0.15 near a
//     quarter) and 0.1 per period up to 0.3, capped at 1.
func (a *Almanac) LunarDay(ctx context.Context, date time.Time, loc *time.Location) (types.LunarContext, error) {
	if err := ctx.Err(); err != nil {
		return types.LunarContext{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.In(loc).Date()
	noon := time.Date(y, m, d, 12, 0, 0, 0, loc)

	age := MoonAge(noon)
	illum := math.Round(Illumination(age)*10) / 10

	_, offset := noon.Zone()
	solarNoon := 12*60 + (float64(offset)/3600*15-a.Longitude)*4
	transit := int(math.Round(solarNoon + age/synodicDays*timeofday.MinutesPerDay))
	anti := transit + halfLunarDay

	majors := []types.Period{around(transit, majorHalfWidth), around(anti, majorHalfWidth)}
	minors := []types.Period{around(transit-riseToTransit, minorHalfWidth), around(transit+riseToTransit, minorHalfWidth)}

	return types.LunarContext{
		MajorPeriods:    majors,
		MinorPeriods:    minors,
		MoonPhase:       PhaseName(illum, age < synodicDays/2),
		IlluminationPct: illum,
		Rating:          solunarRating(illum, len(majors)+len(minors)),
		Status:          types.DataQualityLive,
	}, nil
}

// MoonAge returns days since the last new moon at t.
func MoonAge(t time.Time) float64 {
	days := t.Sub(referenceNewMoon).Hours() / 24
	age := math.Mod(days, synodicDays)
	if age < 0 {
		age += synodicDays
	}
	return age
}

// Illumination returns the lit fraction of the disc, in percent, for a
// moon age in days.
func Illumination(age float64) float64 {
	return (1 - math.Cos(2*math.Pi*age/synodicDays)) / 2 * 100
}

// PhaseName names the phase for an illumination percentage.
func PhaseName(illum float64, waxing bool) string {
	switch {
	case illum < 5:
		return PhaseNewMoon
	case illum > 95:
		return PhaseFullMoon
	case waxing && illum < 35:
		return PhaseWaxingCrescent
	case waxing && illum < 65:
		return PhaseFirstQuarter
	case waxing:
		return PhaseWaxingGibbous
	case illum < 35:
		return PhaseWaningCrescent
	case illum < 65:
		return PhaseLastQuarter
	default:
		return PhaseWaningGibbous
	}
}

func solunarRating(illum float64, periods int) float64 {
	rating := 0.3
	switch {
	case illum > 90 || illum < 10:
		rating += 0.3
	case illum > 40 && illum < 60:
		rating += 0.15
	}
	rating += math.Min(0.3, float64(periods)*0.1)
	return math.Round(math.Min(1, rating)*100) / 100
}

func around(center, half int) types.Period {
	return types.Period{
		Start: timeofday.Of(0, center-half).String(),
		End:   timeofday.Of(0, center+half).String(),
	}
}

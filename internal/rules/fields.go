package rules

import (
	"slices"

	"fishcast/internal/types"
)

type valueKind int

const (
	valueNumber valueKind = iota
	valueText
	valueFlag
)

// value is a context field resolved for matching.
type value struct {
	kind valueKind
	num  float64
	text string
	flag bool
}

func (v value) equals(s scalar) bool {
	switch v.kind {
	case valueNumber:
		return s.numeric && s.num == v.num
	case valueText:
		return !s.numeric && s.text == v.text
	}
	return false
}

func number(n float64) (value, bool) { return value{kind: valueNumber, num: n}, true }
func text(s string) (value, bool)    { return value{kind: valueText, text: s}, s != "" }
func flag(b bool) (value, bool)      { return value{kind: valueFlag, flag: b}, true }

const fieldFeatures = "features"

// resolvers maps a catalogue field name to its value in a SituationalContext.
// A resolver returning false means the field is missing for this context.
var resolvers = map[string]func(types.SituationalContext) (value, bool){
	"windSpeedKmh":          func(c types.SituationalContext) (value, bool) { return number(c.WindSpeedKmh) },
	"windDirDeg":            func(c types.SituationalContext) (value, bool) { return number(c.WindDirDeg) },
	"windDirectionCardinal": func(c types.SituationalContext) (value, bool) { return text(c.WindCardinal) },
	"pressureHpa":           func(c types.SituationalContext) (value, bool) { return number(c.PressureHPa) },
	"pressureChange3hHpa":   func(c types.SituationalContext) (value, bool) { return number(c.PressureChange3hHPa) },
	"pressureTrend":         func(c types.SituationalContext) (value, bool) { return text(string(c.PressureTrend)) },
	"airTempC":              func(c types.SituationalContext) (value, bool) { return number(c.AirTempC) },
	"cloudCoverPct":         func(c types.SituationalContext) (value, bool) { return number(c.CloudCoverPct) },
	"seaTempC": func(c types.SituationalContext) (value, bool) {
		if c.SeaTempC == nil {
			return value{}, false
		}
		return number(*c.SeaTempC)
	},
	"waveHeightM": func(c types.SituationalContext) (value, bool) {
		if c.WaveHeightM == nil {
			return value{}, false
		}
		return number(*c.WaveHeightM)
	},
	"shore":             func(c types.SituationalContext) (value, bool) { return text(string(c.Shore)) },
	"regionId":          func(c types.SituationalContext) (value, bool) { return text(string(c.Region)) },
	"spot":              func(c types.SituationalContext) (value, bool) { return text(c.LocationID) },
	"pelagicCorridor":   func(c types.SituationalContext) (value, bool) { return flag(c.PelagicCorridor) },
	"isDaylight":        func(c types.SituationalContext) (value, bool) { return flag(c.IsDaylight) },
	"hour":              func(c types.SituationalContext) (value, bool) { return number(float64(c.Hour)) },
	"minute":            func(c types.SituationalContext) (value, bool) { return number(float64(c.Minute)) },
	"moonIllumination":  func(c types.SituationalContext) (value, bool) { return number(c.MoonIlluminationPct) },
	"solunarRating":     func(c types.SituationalContext) (value, bool) { return number(c.LunarRating) },
	"shelterScore":      func(c types.SituationalContext) (value, bool) { return number(c.ShelterScore) },
	"waterMassProxy":    func(c types.SituationalContext) (value, bool) { return text(string(c.WaterMass)) },
	"waterMassStrength": func(c types.SituationalContext) (value, bool) { return number(c.WaterMassStrength) },
	"dataQuality":       func(c types.SituationalContext) (value, bool) { return text(string(c.DataQuality)) },
	"reportsTotal24h": func(c types.SituationalContext) (value, bool) {
		if c.Reports == nil {
			return value{}, false
		}
		return number(float64(c.Reports.TotalReports))
	},
	"naturalBaitBias": func(c types.SituationalContext) (value, bool) {
		if c.Reports == nil {
			return value{}, false
		}
		return flag(c.Reports.NaturalBaitBias)
	},
	"shelteredFromWind": func(c types.SituationalContext) (value, bool) {
		return flag(slices.Contains(c.ShelteredFrom, c.WindCardinal))
	},
}

// KnownField reports whether name resolves against a SituationalContext.
// Conditions on unknown fields compile but never match.
func KnownField(name string) bool {
	if name == keyTime || name == keyMonth || name == fieldFeatures {
		return true
	}
	_, ok := resolvers[name]
	return ok
}

func resolve(field string, ctx types.SituationalContext) (value, bool) {
	r, ok := resolvers[field]
	if !ok {
		return value{}, false
	}
	return r(ctx)
}

// Package wind is the single normalization point for wind direction handling:
// degrees to 8-point cardinals, 16-point to 8-point folding, Turkish local
// wind names, onshore geometry and the lodos/poyraz water-mass proxy.
package wind

import (
	"math"
	"slices"
	"strings"

	"fishcast/internal/types"
)

// Cardinals is the canonical 8-point set, clockwise from north.
var Cardinals = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

var sixteenToEight = map[string]string{
	"NNE": "NE",
	"ENE": "NE",
	"ESE": "SE",
	"SSE": "SE",
	"SSW": "SW",
	"WSW": "SW",
	"WNW": "NW",
	"NNW": "NW",
}

var turkishNames = map[string]string{
	"N":  "yıldız",
	"NE": "poyraz",
	"E":  "gün doğusu",
	"SE": "kıble",
	"S":  "keşişleme",
	"SW": "lodos",
	"W":  "gün batısı",
	"NW": "karayel",
}

// NormalizeDegrees folds any finite angle into [0, 360). Non-finite input maps to 0.
func NormalizeDegrees(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Cardinal8 converts a meteorological direction in degrees to one of the
// 8 canonical cardinals. Exact half-sector boundaries round to even.
func Cardinal8(deg float64) string {
	idx := int(math.RoundToEven(NormalizeDegrees(deg)/45)) % 8
	return Cardinals[idx]
}

// Normalize8 folds any cardinal spelling (any case, 16-point) to the 8-point form.
func Normalize8(card string) string {
	upper := strings.ToUpper(strings.TrimSpace(card))
	if folded, ok := sixteenToEight[upper]; ok {
		return folded
	}
	return upper
}

// NameTR returns the Istanbul local name for a cardinal, or the cardinal itself.
func NameTR(card string) string {
	if name, ok := turkishNames[Normalize8(card)]; ok {
		return name
	}
	return card
}

// AngularDistance returns the smallest absolute difference between two
// directions, in [0, 180].
func AngularDistance(a, b float64) float64 {
	diff := math.Abs(NormalizeDegrees(a) - NormalizeDegrees(b))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// IsOnshore reports whether dirDeg lies within toleranceDeg of any of the
// location's onshore directions.
func IsOnshore(dirDeg float64, onshoreDirs []float64, toleranceDeg float64) bool {
	for _, o := range onshoreDirs {
		if AngularDistance(dirDeg, o) <= toleranceDeg {
			return true
		}
	}
	return false
}

// ProxyConfig configures the water-mass proxy.
type ProxyConfig struct {
	LodosDirections    []string `yaml:"lodosDirections" validate:"required,min=1"`
	PoyrazDirections   []string `yaml:"poyrazDirections" validate:"required,min=1"`
	WeakThresholdKmh   float64  `yaml:"weakThresholdKmh" validate:"gte=0"`
	StrongThresholdKmh float64  `yaml:"strongThresholdKmh" validate:"gtfield=WeakThresholdKmh"`
}

// WaterMassProxy classifies the dominant water body from wind direction and
// grades its strength linearly between the weak and strong thresholds,
// rounded to two decimals.
func WaterMassProxy(cardinal string, speedKmh float64, cfg ProxyConfig) (types.WaterMass, float64) {
	norm := Normalize8(cardinal)

	var mass types.WaterMass
	switch {
	case slices.Contains(cfg.LodosDirections, norm):
		mass = types.WaterMassLodos
	case slices.Contains(cfg.PoyrazDirections, norm):
		mass = types.WaterMassPoyraz
	default:
		return types.WaterMassNeutral, 0
	}

	var strength float64
	switch {
	case speedKmh < cfg.WeakThresholdKmh:
		strength = 0
	case speedKmh >= cfg.StrongThresholdKmh:
		strength = 1
	default:
		strength = (speedKmh - cfg.WeakThresholdKmh) / (cfg.StrongThresholdKmh - cfg.WeakThresholdKmh)
	}
	return mass, math.Round(strength*100) / 100
}

package scoring

import (
	"math"
	"slices"

	"fishcast/internal/types"
)

// Weights combines the five parameter scores for one species. The loader
// rejects weight vectors that do not sum to 1.0.
type Weights struct {
	Pressure float64 `yaml:"pressure" validate:"gte=0,lte=1"`
	Wind     float64 `yaml:"wind" validate:"gte=0,lte=1"`
	SeaTemp  float64 `yaml:"seaTemp" validate:"gte=0,lte=1"`
	Solunar  float64 `yaml:"solunar" validate:"gte=0,lte=1"`
	Time     float64 `yaml:"time" validate:"gte=0,lte=1"`
}

// WeightSumTolerance is how far a weight vector may drift from 1.0.
const WeightSumTolerance = 0.01

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Pressure + w.Wind + w.SeaTemp + w.Solunar + w.Time
}

// Balanced reports whether the weights sum to 1.0 within tolerance.
func (w Weights) Balanced() bool {
	return math.Abs(w.Sum()-1) <= WeightSumTolerance
}

// TempBand is a species' preferred sea-temperature band. Penalty is the
// number of degrees outside the band that costs a full 0.5 of score.
type TempBand struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max" validate:"gtefield=Min"`
	Penalty float64 `yaml:"pen" validate:"gt=0"`
}

// HourWindow is an inclusive [start, end] hour range; start > end wraps midnight.
type HourWindow [2]int

// Contains reports whether hour falls inside the window.
func (h HourWindow) Contains(hour int) bool {
	start, end := h[0], h[1]
	if start <= end {
		return start <= hour && hour <= end
	}
	return hour >= start || hour <= end
}

// NocturnalBonus is a fixed time-score bonus for night-feeding species.
type NocturnalBonus struct {
	Species []types.SpeciesID `yaml:"species"`
	Window  HourWindow        `yaml:"window" validate:"dive,min=0,max=23"`
	Bonus   float64           `yaml:"bonus" validate:"gte=0,lte=1"`
}

// Applies reports whether the bonus applies to species at hour.
func (n NocturnalBonus) Applies(species types.SpeciesID, hour int) bool {
	return n.Bonus > 0 && slices.Contains(n.Species, species) && n.Window.Contains(hour)
}

// WindShift is one row of the direction/shore interaction table.
type WindShift struct {
	Directions []string    `yaml:"directions" validate:"required,min=1"`
	Shore      types.Shore `yaml:"shore" validate:"oneof=european anatolian"`
	Delta      float64     `yaml:"delta"`
}

// WindConfig configures the direction/shore interaction of the wind scorer.
type WindConfig struct {
	ShiftThresholdKmh float64     `yaml:"shiftThresholdKmh" validate:"gt=0"`
	Shifts            []WindShift `yaml:"shifts" validate:"dive"`
}

// Config is the per-species scoring configuration.
type Config struct {
	Weights          map[types.SpeciesID]Weights      `yaml:"weights" validate:"required,dive"`
	SeaTemp          map[types.SpeciesID]TempBand     `yaml:"seaTemp" validate:"dive"`
	BestHours        map[types.SpeciesID][]HourWindow `yaml:"bestHours" validate:"dive,dive,dive,min=0,max=23"`
	DefaultBestHours []HourWindow                     `yaml:"defaultBestHours" validate:"required,min=1,dive,dive,min=0,max=23"`
	Nocturnal        NocturnalBonus                   `yaml:"nocturnal"`
	Wind             WindConfig                       `yaml:"wind"`
	Confidence       ConfidenceConfig                 `yaml:"confidence"`
	MonthlySeaTempC  map[int]float64                  `yaml:"monthlySeaTempC" validate:"len=12"`
}

// bestHoursFor returns the configured windows for species, or the defaults.
func (c Config) bestHoursFor(species types.SpeciesID) []HourWindow {
	if hours, ok := c.BestHours[species]; ok && len(hours) > 0 {
		return hours
	}
	return c.DefaultBestHours
}

// ClimatologySeaTemp returns the monthly mean sea temperature, or 15 when the
// month is unknown.
func (c Config) ClimatologySeaTemp(month int) float64 {
	if t, ok := c.MonthlySeaTempC[month]; ok {
		return t
	}
	return 15
}

// PartialCatch relaxes the off-season penalty when conditions are strong.
type PartialCatch struct {
	Threshold        float64 `yaml:"threshold" validate:"gte=0,lte=1"`
	PenaltyReduction float64 `yaml:"penaltyReduction" validate:"gte=0,lte=1"`
	Confidence       float64 `yaml:"confidence" validate:"gte=0,lte=1"`
}

// SeasonProfile is one species' season table.
type SeasonProfile struct {
	PeakMonths         []int        `yaml:"peakMonths" validate:"dive,min=1,max=12"`
	ShoulderMonths     []int        `yaml:"shoulderMonths" validate:"dive,min=1,max=12"`
	OffMonths          []int        `yaml:"offMonths" validate:"dive,min=1,max=12"`
	LegacyClosedMonths []int        `yaml:"legacyClosedMonths" validate:"dive,min=1,max=12"`
	PeakAdjustment     int          `yaml:"peakAdjustment" validate:"gte=0"`
	ShoulderAdjustment int          `yaml:"shoulderAdjustment" validate:"gte=0"`
	OffAdjustment      int          `yaml:"offAdjustment" validate:"lte=0"`
	OffFloor           int          `yaml:"offFloor" validate:"gte=1,lte=100"`
	ConfidenceImpact   float64      `yaml:"confidenceImpact" validate:"gte=0,lte=1"`
	PartialCatch       PartialCatch `yaml:"partialCatch"`
}

// SeasonTable maps species to their season profile.
type SeasonTable map[types.SpeciesID]SeasonProfile

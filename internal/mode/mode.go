// Package mode classifies species behavior (chasing, selective, holding)
// with an ordered cascade of predicate steps. The first matching step wins.
package mode

import (
	"math"
	"slices"

	"fishcast/internal/types"
	"fishcast/internal/wind"
)

// Config carries every threshold and species set the cascade reads.
type Config struct {
	BiasSensitive     []types.SpeciesID `yaml:"biasSensitiveSpecies" json:"biasSensitiveSpecies"`
	ExposureSensitive []types.SpeciesID `yaml:"exposureSensitiveSpecies" json:"exposureSensitiveSpecies"`
	Finicky           []types.SpeciesID `yaml:"finickySpecies" json:"finickySpecies"`

	HighWindKmh           float64 `yaml:"highWindKmh" json:"highWindKmh" validate:"gt=0"`
	PressureVolatilityHPa float64 `yaml:"pressureVolatilityHpa" json:"pressureVolatilityHpa" validate:"gt=0"`
	OnshoreToleranceDeg   float64 `yaml:"onshoreToleranceDeg" json:"onshoreToleranceDeg" validate:"gte=0,lte=180"`
	OnshoreWindKmh        float64 `yaml:"onshoreWindKmh" json:"onshoreWindKmh" validate:"gte=0"`
	LowShelter            float64 `yaml:"lowShelter" json:"lowShelter" validate:"gte=0,lte=1"`
	HighRating            float64 `yaml:"highRating" json:"highRating" validate:"gte=0,lte=1"`
	VeryHighRating        float64 `yaml:"veryHighRating" json:"veryHighRating" validate:"gte=0,lte=1"`
	FallingThresholdHPa   float64 `yaml:"fallingThresholdHpa" json:"fallingThresholdHpa" validate:"gte=0"`
	RisingThresholdHPa    float64 `yaml:"risingThresholdHpa" json:"risingThresholdHpa" validate:"gte=0"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		BiasSensitive:         []types.SpeciesID{types.SpeciesCinekop, types.SpeciesSarikanat, types.SpeciesLufer},
		ExposureSensitive:     []types.SpeciesID{types.SpeciesCinekop, types.SpeciesSarikanat},
		Finicky:               []types.SpeciesID{types.SpeciesCinekop, types.SpeciesSarikanat},
		HighWindKmh:           25,
		PressureVolatilityHPa: 3.0,
		OnshoreToleranceDeg:   45,
		OnshoreWindKmh:        15,
		LowShelter:            0.4,
		HighRating:            0.6,
		VeryHighRating:        0.8,
		FallingThresholdHPa:   1.0,
		RisingThresholdHPa:    1.0,
	}
}

// Step is one cascade entry. Match reports the label when the step applies.
type Step struct {
	Name  string
	Match func(species types.SpeciesID, ctx types.SituationalContext) (types.Mode, bool)
}

// Step names, in default cascade order.
const (
	StepReportBias      = "report_bias"
	StepExtreme         = "extreme_conditions"
	StepOnshoreExposure = "onshore_exposure"
	StepSolunar         = "solunar_stable"
	StepFalling         = "falling_pressure"
	StepRising          = "rising_pressure"
	StepDefault         = "default"
)

// DefaultSteps builds the standard cascade over cfg.
//
//  1. Natural-bait bias in recent reports and a bias-sensitive species → selective.
//  2. Wind above HighWindKmh or |Δp| above the volatility limit → holding.
//  3. Onshore wind above OnshoreWindKmh at a poorly sheltered location for an
//     exposure-sensitive species → holding.
//  4. Lunar rating high with stable pressure, or very high → chasing.
//  5. Falling pressure beyond the threshold: finicky species → selective,
//     others → chasing.
//  6. Rising pressure beyond the threshold → holding.
//  7. Otherwise → chasing.
func DefaultSteps(cfg Config) []Step {
	return []Step{
		{Name: StepReportBias, Match: func(sp types.SpeciesID, ctx types.SituationalContext) (types.Mode, bool) {
			if ctx.Reports != nil && ctx.Reports.NaturalBaitBias && slices.Contains(cfg.BiasSensitive, sp) {
				return types.ModeSelective, true
			}
			return "", false
		}},
		{Name: StepExtreme, Match: func(_ types.SpeciesID, ctx types.SituationalContext) (types.Mode, bool) {
			if ctx.WindSpeedKmh > cfg.HighWindKmh || math.Abs(ctx.PressureChange3hHPa) > cfg.PressureVolatilityHPa {
				return types.ModeHolding, true
			}
			return "", false
		}},
		{Name: StepOnshoreExposure, Match: func(sp types.SpeciesID, ctx types.SituationalContext) (types.Mode, bool) {
			if !slices.Contains(cfg.ExposureSensitive, sp) {
				return "", false
			}
			if wind.IsOnshore(ctx.WindDirDeg, ctx.OnshoreDirsDeg, cfg.OnshoreToleranceDeg) &&
				ctx.WindSpeedKmh > cfg.OnshoreWindKmh && ctx.ShelterScore < cfg.LowShelter {
				return types.ModeHolding, true
			}
			return "", false
		}},
		{Name: StepSolunar, Match: func(_ types.SpeciesID, ctx types.SituationalContext) (types.Mode, bool) {
			if (ctx.LunarRating >= cfg.HighRating && ctx.PressureTrend == types.PressureStable) ||
				ctx.LunarRating >= cfg.VeryHighRating {
				return types.ModeChasing, true
			}
			return "", false
		}},
		{Name: StepFalling, Match: func(sp types.SpeciesID, ctx types.SituationalContext) (types.Mode, bool) {
			if ctx.PressureTrend != types.PressureFalling || ctx.PressureChange3hHPa >= -cfg.FallingThresholdHPa {
				return "", false
			}
			if slices.Contains(cfg.Finicky, sp) {
				return types.ModeSelective, true
			}
			return types.ModeChasing, true
		}},
		{Name: StepRising, Match: func(_ types.SpeciesID, ctx types.SituationalContext) (types.Mode, bool) {
			if ctx.PressureTrend == types.PressureRising && ctx.PressureChange3hHPa > cfg.RisingThresholdHPa {
				return types.ModeHolding, true
			}
			return "", false
		}},
		{Name: StepDefault, Match: func(types.SpeciesID, types.SituationalContext) (types.Mode, bool) {
			return types.ModeChasing, true
		}},
	}
}

// Classifier runs a step cascade. It holds no mutable state.
type Classifier struct {
	steps []Step
}

// New returns a classifier over the default cascade for cfg.
func New(cfg Config) *Classifier {
	return NewWithSteps(DefaultSteps(cfg))
}

// NewWithSteps returns a classifier over an explicit cascade. If no step
// matches, the classifier falls back to chasing.
func NewWithSteps(steps []Step) *Classifier {
	return &Classifier{steps: slices.Clone(steps)}
}

// Classify returns the mode for species and the name of the step that
// produced it.
func (c *Classifier) Classify(species types.SpeciesID, ctx types.SituationalContext) (types.Mode, string) {
	for _, s := range c.steps {
		if m, ok := s.Match(species, ctx); ok {
			return m, s.Name
		}
	}
	return types.ModeChasing, StepDefault
}

// StepNames lists the cascade in evaluation order.
func (c *Classifier) StepNames() []string {
	names := make([]string, len(c.steps))
	for i, s := range c.steps {
		names[i] = s.Name
	}
	return names
}

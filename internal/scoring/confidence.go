package scoring

import (
	"math"

	"fishcast/internal/types"
)

// Confidence bounds. The floor is a hard invariant: a recommendation never
// communicates total certainty of irrelevance.
const (
	ConfidenceFloor   = 0.1
	ConfidenceCeiling = 1.0
)

// unknownQualityBase is used when the data-quality grade has no configured base.
const unknownQualityBase = 0.5

// ConfidenceConfig holds the confidence magnitudes. All values are data so
// they can be tuned without touching the estimator.
type ConfidenceConfig struct {
	DataQualityBase      map[types.DataQuality]float64  `yaml:"dataQualityBase" validate:"required"`
	ReportBoost          float64                        `yaml:"reportBoost" validate:"gte=0,lte=1"`
	ApproxCoordPenalty   float64                        `yaml:"approxCoordPenalty" validate:"gte=0,lte=1"`
	FiredRulesThreshold  int                            `yaml:"firedRulesThreshold" validate:"gte=0"`
	FiredRulesPenalty    float64                        `yaml:"firedRulesPenalty" validate:"gte=0,lte=1"`
	MaxFiredRulesPenalty float64                        `yaml:"maxFiredRulesPenalty" validate:"gte=0,lte=1"`
	SeasonPenalty        map[types.SeasonStatus]float64 `yaml:"seasonPenalty"`
}

// ConfidenceInputs are the metadata signals the estimator combines.
type ConfidenceInputs struct {
	DataQuality types.DataQuality
	HasReports  bool
	Accuracy    types.CoordAccuracy
	FiredRules  int
	Season      SeasonAdjustment
}

// Estimate combines data quality, report presence, coordinate accuracy, rule
// noise and season into a confidence in [0.1, 1.0], rounded to two decimals.
func (c ConfidenceConfig) Estimate(in ConfidenceInputs) float64 {
	base, ok := c.DataQualityBase[in.DataQuality]
	if !ok {
		base = unknownQualityBase
	}

	if in.HasReports {
		base += c.ReportBoost
	}
	if in.Accuracy == types.AccuracyApprox {
		base -= c.ApproxCoordPenalty
	}
	if extra := in.FiredRules - c.FiredRulesThreshold; extra > 0 {
		base -= math.Min(c.MaxFiredRulesPenalty, float64(extra)*c.FiredRulesPenalty)
	}
	base -= c.SeasonPenalty[in.Season.Status]
	base -= in.Season.ConfidenceImpact

	base = clampFinite(base, ConfidenceFloor, ConfidenceCeiling, ConfidenceFloor)
	return math.Round(base*100) / 100
}

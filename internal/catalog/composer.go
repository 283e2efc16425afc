package catalog

import "fishcast/internal/types"

// Avoid-reason keys in ComposerConfig.AvoidReasonsTR. Mode keys use the mode
// label itself.
const AvoidReasonRule = "rule"

// WindowConfig scores the solunar best-time windows.
type WindowConfig struct {
	MajorBase            int                           `yaml:"majorBase" validate:"gte=0,lte=100"`
	PressureDropBelowHPa float64                       `yaml:"pressureDropBelowHpa" validate:"lte=0"`
	PressureDropBonus    int                           `yaml:"pressureDropBonus" validate:"gte=0"`
	IdealWindMinKmh      float64                       `yaml:"idealWindMinKmh" validate:"gte=0"`
	IdealWindMaxKmh      float64                       `yaml:"idealWindMaxKmh" validate:"gtefield=IdealWindMinKmh"`
	IdealWindBonus       int                           `yaml:"idealWindBonus" validate:"gte=0"`
	MinorBase            int                           `yaml:"minorBase" validate:"gte=0,lte=100"`
	MinorConfidence      float64                       `yaml:"minorConfidence" validate:"gte=0.1,lte=1"`
	MajorConfidence      map[types.DataQuality]float64 `yaml:"majorConfidence" validate:"required,dive,gte=0.1,lte=1"`
	MaxWindows           int                           `yaml:"maxWindows" validate:"gte=2,lte=4"`
}

// ShelteredConfig restricts technique use at sheltered locations during a no-go.
type ShelteredConfig struct {
	AllowedTechniques []types.TechniqueID `yaml:"allowedTechniques" validate:"required,min=1"`
	WarningLevel      string              `yaml:"warningLevel" validate:"required"`
}

// BandConfig widens a measured wind speed into a displayed band.
type BandConfig struct {
	BelowKmh float64 `yaml:"belowKmh" validate:"gte=0"`
	AboveKmh float64 `yaml:"aboveKmh" validate:"gte=0"`
}

// DaySummaryConfig controls the day-level ranges.
type DaySummaryConfig struct {
	WindBelowKmh float64 `yaml:"windBelowKmh" validate:"gte=0"`
	WindAboveKmh float64 `yaml:"windAboveKmh" validate:"gte=0"`
	AirSpreadC   float64 `yaml:"airSpreadC" validate:"gte=0"`
}

// DaylightHours is the sunrise and sunset used when the lunar provider does
// not supply them.
type DaylightHours struct {
	Sunrise string `yaml:"sunrise" validate:"required"`
	Sunset  string `yaml:"sunset" validate:"required"`
}

// ComposerConfig holds the presentation and aggregation settings of the
// decision composer.
type ComposerConfig struct {
	ModeAvoid                map[types.Mode][]types.TechniqueID `yaml:"modeAvoid"`
	AvoidReasonsTR           map[string]string                  `yaml:"avoidReasonsTR"`
	ShelteredExceptions      ShelteredConfig                    `yaml:"shelteredExceptions"`
	Windows                  WindowConfig                       `yaml:"windows"`
	MaxTargets               int                                `yaml:"maxTargets" validate:"gte=1"`
	MaxRecommendedTechniques int                                `yaml:"maxRecommendedTechniques" validate:"gte=1"`
	MaxExplanations          int                                `yaml:"maxExplanations" validate:"gte=1"`
	MaxRuleExplanations      int                                `yaml:"maxRuleExplanations" validate:"gte=0"`
	LightWindKmh             float64                            `yaml:"lightWindKmh" validate:"gte=0"`
	WindBand                 BandConfig                         `yaml:"windBand"`
	DaySummary               DaySummaryConfig                   `yaml:"daySummary"`
	Daylight                 map[int]DaylightHours              `yaml:"daylight" validate:"len=12,dive"`
}

// AvoidReason returns the Turkish reason for avoiding a technique under mode,
// or the rule reason when the mode has none.
func (c ComposerConfig) AvoidReason(mode types.Mode) string {
	if r, ok := c.AvoidReasonsTR[string(mode)]; ok {
		return r
	}
	return c.RuleAvoidReason()
}

// RuleAvoidReason is the reason for a technique removed by a rule.
func (c ComposerConfig) RuleAvoidReason() string {
	return c.AvoidReasonsTR[AvoidReasonRule]
}

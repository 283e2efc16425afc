package types

import "time"

// ContractVersion is the decision document layout version.
const ContractVersion = "1.4.2"

// Decision is the top-level decision document.
type Decision struct {
	Meta        DecisionMeta     `json:"meta"`
	DaySummary  DaySummary       `json:"daySummary"`
	BestWindows []TimeWindow     `json:"bestWindows"`
	Regions     []RegionDecision `json:"regions"`
	NoGo        NoGoBlock        `json:"noGo"`
	Health      HealthBlock      `json:"health"`
	Traces      []LocationTrace  `json:"traces,omitempty"`
}

// DecisionMeta carries provenance for auditability.
type DecisionMeta struct {
	ContractVersion     string     `json:"contractVersion"`
	RunID               string     `json:"runId"`
	GeneratedAt         time.Time  `json:"generatedAt"`
	EvaluatedAt         time.Time  `json:"evaluatedAt"`
	Timezone            string     `json:"timezone"`
	RulesVersion        string     `json:"rulesVersion"`
	ScoringVersion      string     `json:"scoringVersion"`
	SeasonVersion       string     `json:"seasonVersion"`
	LocationsVersion    string     `json:"locationsVersion"`
	CatalogDigest       string     `json:"catalogDigest"`
	TraceLevelRequested TraceLevel `json:"traceLevelRequested"`
	TraceLevelApplied   TraceLevel `json:"traceLevelApplied"`
}

// DaySummary describes the day's conditions at a glance.
type DaySummary struct {
	WindSpeedKmhMin     int           `json:"windSpeedKmhMin"`
	WindSpeedKmhMax     int           `json:"windSpeedKmhMax"`
	WindDirDeg          float64       `json:"windDirDeg"`
	WindCardinal        string        `json:"windCardinal"`
	WindNameTR          string        `json:"windNameTR"`
	PressureHPa         float64       `json:"pressureHpa"`
	PressureChange3hHPa float64       `json:"pressureChange3hHpa"`
	PressureTrend       PressureTrend `json:"pressureTrend"`
	AirTempCMin         int           `json:"airTempCMin"`
	AirTempCMax         int           `json:"airTempCMax"`
	SeaTempC            *float64      `json:"seaTempC"`
	CloudCoverPct       float64       `json:"cloudCoverPct"`
	WaveHeightM         *float64      `json:"waveHeightM"`
	WaterMass           WaterMass     `json:"waterMass"`
	IsDaylight          bool          `json:"isDaylight"`
	DataQuality         DataQuality   `json:"dataQuality"`
	DataIssues          []string      `json:"dataIssues"`
}

// TimeWindow is a recommended fishing window for the day.
type TimeWindow struct {
	Start      string   `json:"startLocal"`
	End        string   `json:"endLocal"`
	Score      int      `json:"score0to100"`
	Confidence float64  `json:"confidence0to1"`
	Reasons    []string `json:"reasonsTR"`
}

// RegionDecision is the per-region recommendation.
type RegionDecision struct {
	Region      RegionID            `json:"regionId"`
	Recommended RecommendedLocation `json:"recommendedLocation"`
}

// RecommendedLocation is the representative location chosen for a region.
type RecommendedLocation struct {
	LocationID            string            `json:"locationId"`
	Name                  string            `json:"nameTR"`
	AggregateScore        int               `json:"aggregateScore"`
	WindBandKmhMin        int               `json:"windBandKmhMin"`
	WindBandKmhMax        int               `json:"windBandKmhMax"`
	Why                   []Explanation     `json:"whyTR"`
	Targets               []Target          `json:"targets"`
	RecommendedTechniques []TechniqueAdvice `json:"recommendedTechniques"`
	AvoidTechniques       []TechniqueAdvice `json:"avoidTechniques"`
	Species               []SpeciesScore    `json:"species"`
	Reports               *ReportAggregate  `json:"reportSignals24h"`
}

// Explanation is a short natural-language fragment with a presentation icon.
type Explanation struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

// Target is a ranked species for a recommended location.
type Target struct {
	Species         SpeciesID    `json:"speciesId"`
	Name            string       `json:"speciesNameTR"`
	Score           int          `json:"score0to100"`
	Confidence      float64      `json:"confidence0to1"`
	Mode            Mode         `json:"mode"`
	SeasonStatus    SeasonStatus `json:"seasonStatus"`
	BestWindowIndex *int         `json:"bestWindowIndex"`
}

// TechniqueAdvice names a technique and, for avoid lists, the reason.
type TechniqueAdvice struct {
	Technique TechniqueID `json:"techniqueId"`
	Name      string      `json:"techniqueNameTR"`
	Reason    string      `json:"reasonTR,omitempty"`
}

// SpeciesScore is the final per-species evaluation for one location.
type SpeciesScore struct {
	Species          SpeciesID       `json:"speciesId"`
	Score            int             `json:"score"`
	Mode             Mode            `json:"mode"`
	Confidence       float64         `json:"confidence0to1"`
	SeasonStatus     SeasonStatus    `json:"seasonStatus"`
	PartialCatch     bool            `json:"partialCatchLikely"`
	SuppressedByNoGo bool            `json:"suppressedByNoGo"`
	BestTime         string          `json:"bestTime,omitempty"`
	Recommended      []TechniqueID   `json:"recommendedTechniques"`
	Avoid            []TechniqueID   `json:"avoidTechniques"`
	Breakdown        *ScoreBreakdown `json:"breakdown,omitempty"`
}

// ScoreBreakdown exposes the intermediate terms of a species score.
type ScoreBreakdown struct {
	Pressure         float64 `json:"pressure"`
	Wind             float64 `json:"wind"`
	SeaTemp          float64 `json:"seaTemp"`
	Solunar          float64 `json:"solunar"`
	Time             float64 `json:"time"`
	Weighted         float64 `json:"weighted"`
	SeasonAdjustment int     `json:"seasonAdjustment"`
	RuleBonus        int     `json:"rulesBonus"`
}

// NoGoBlock reports the safety advisory.
type NoGoBlock struct {
	IsNoGo              bool                 `json:"isNoGo"`
	Reasons             []string             `json:"reasonsTR"`
	ShelteredExceptions []ShelteredException `json:"shelteredExceptions"`
}

// ShelteredException is a location still usable, with restrictions, under no-go.
type ShelteredException struct {
	LocationID        string        `json:"locationId"`
	Name              string        `json:"nameTR"`
	AllowedTechniques []TechniqueID `json:"allowedTechniques"`
	WarningLevel      string        `json:"warningLevel"`
	Message           string        `json:"messageTR"`
}

// HealthBlock summarizes input data health.
type HealthBlock struct {
	Status      HealthStatus     `json:"status"`
	ReasonCodes []string         `json:"reasonsCode"`
	Reasons     []string         `json:"reasonsTR"`
	Normalized  NormalizedInputs `json:"normalized"`
}

// NormalizedInputs echoes derived inputs for client-side debugging.
type NormalizedInputs struct {
	WindSpeedKmhRaw float64       `json:"windSpeedKmhRaw"`
	WindCardinal    string        `json:"windCardinalDerived"`
	PressureTrend   PressureTrend `json:"pressureTrendDerived"`
}

// LocationTrace is the per-location computation trace.
type LocationTrace struct {
	LocationID      string                     `json:"locationId"`
	FiredRulesCount int                        `json:"firedRulesCount"`
	ActiveRuleIDs   []string                   `json:"activeRuleIds"`
	RuleExplanation string                     `json:"ruleExplanationTR,omitempty"`
	DataQuality     DataQuality                `json:"dataQuality"`
	Species         map[SpeciesID]SpeciesTrace `json:"species,omitempty"`
}

// SpeciesTrace is the full-level rule aggregation trace for one species.
type SpeciesTrace struct {
	CategoryRaw    map[RuleCategory]int `json:"categoryRawBonuses"`
	CategoryCapped map[RuleCategory]int `json:"categoryCappedBonuses"`
	PositiveRaw    int                  `json:"positiveTotalRaw"`
	PositiveCapped int                  `json:"positiveTotalCapped"`
	NegativeTotal  int                  `json:"negativeTotal"`
	FinalBonus     int                  `json:"finalRuleBonus"`
	ModeStep       string               `json:"modeStep"`
}

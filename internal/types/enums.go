package types

// SpeciesID identifies a target species in the catalogue.
type SpeciesID string

const (
	SpeciesIstavrit  SpeciesID = "istavrit"
	SpeciesCinekop   SpeciesID = "cinekop"
	SpeciesSarikanat SpeciesID = "sarikanat"
	SpeciesPalamut   SpeciesID = "palamut"
	SpeciesKaragoz   SpeciesID = "karagoz"
	SpeciesLufer     SpeciesID = "lufer"
	SpeciesLevrek    SpeciesID = "levrek"
	SpeciesKolyoz    SpeciesID = "kolyoz"
	SpeciesMirmir    SpeciesID = "mirmir"
)

// AllSpecies is the full species catalogue in display order.
var AllSpecies = []SpeciesID{
	SpeciesIstavrit, SpeciesCinekop, SpeciesSarikanat, SpeciesPalamut, SpeciesKaragoz,
	SpeciesLufer, SpeciesLevrek, SpeciesKolyoz, SpeciesMirmir,
}

// Valid reports whether s is in the species catalogue.
func (s SpeciesID) Valid() bool {
	for _, known := range AllSpecies {
		if s == known {
			return true
		}
	}
	return false
}

// TechniqueID identifies a fishing technique.
type TechniqueID string

const (
	TechniqueCapari       TechniqueID = "capari"
	TechniqueKursunArkasi TechniqueID = "kursun_arkasi"
	TechniqueSpin         TechniqueID = "spin"
	TechniqueLRF          TechniqueID = "lrf"
	TechniqueSurf         TechniqueID = "surf"
	TechniqueYemliDip     TechniqueID = "yemli_dip"
	TechniqueShoreJig     TechniqueID = "shore_jig"
)

// AllTechniques is the full technique catalogue.
var AllTechniques = []TechniqueID{
	TechniqueCapari, TechniqueKursunArkasi, TechniqueSpin, TechniqueLRF,
	TechniqueSurf, TechniqueYemliDip, TechniqueShoreJig,
}

// Valid reports whether t is in the technique catalogue.
func (t TechniqueID) Valid() bool {
	for _, known := range AllTechniques {
		if t == known {
			return true
		}
	}
	return false
}

// Shore is the side of the Bosphorus a location sits on.
type Shore string

const (
	ShoreEuropean  Shore = "european"
	ShoreAnatolian Shore = "anatolian"
)

// RegionID groups locations for per-region recommendation.
type RegionID string

const (
	RegionAvrupa   RegionID = "avrupa"
	RegionAnadolu  RegionID = "anadolu"
	RegionCityBelt RegionID = "city_belt"
)

// DataQuality grades how fresh the acquired upstream data is.
// The ordering live < cached < fallback is used when combining field statuses.
type DataQuality string

const (
	DataQualityLive     DataQuality = "live"
	DataQualityCached   DataQuality = "cached"
	DataQualityFallback DataQuality = "fallback"
)

// Worse returns the lower-quality grade of q and other.
func (q DataQuality) Worse(other DataQuality) DataQuality {
	if q.rank() >= other.rank() {
		return q
	}
	return other
}

func (q DataQuality) rank() int {
	switch q {
	case DataQualityLive:
		return 0
	case DataQualityCached:
		return 1
	default:
		return 2
	}
}

// PressureTrend is the direction of the 3-hour pressure change.
type PressureTrend string

const (
	PressureFalling PressureTrend = "falling"
	PressureStable  PressureTrend = "stable"
	PressureRising  PressureTrend = "rising"
)

// Mode is the coarse behavior label of a species.
type Mode string

const (
	ModeChasing   Mode = "chasing"
	ModeSelective Mode = "selective"
	ModeHolding   Mode = "holding"
)

// Valid reports whether m is a known behavior mode.
func (m Mode) Valid() bool {
	return m == ModeChasing || m == ModeSelective || m == ModeHolding
}

// SeasonStatus classifies a species/month pair.
type SeasonStatus string

const (
	SeasonPeak         SeasonStatus = "peak"
	SeasonShoulder     SeasonStatus = "shoulder"
	SeasonActive       SeasonStatus = "active"
	SeasonOff          SeasonStatus = "off"
	SeasonLegacyClosed SeasonStatus = "legacy_closed"
)

// IsOff reports whether the status excludes the species from location aggregates.
func (s SeasonStatus) IsOff() bool {
	return s == SeasonOff || s == SeasonLegacyClosed
}

// RuleCategory tags a rule for bonus capping.
type RuleCategory string

const (
	CategoryAbsolute      RuleCategory = "absolute"
	CategoryWindCoast     RuleCategory = "windCoast"
	CategoryWeatherMode   RuleCategory = "weatherMode"
	CategoryIstanbul      RuleCategory = "istanbul"
	CategoryTechniqueTime RuleCategory = "techniqueTime"
)

// Valid reports whether c is a known category.
func (c RuleCategory) Valid() bool {
	switch c {
	case CategoryAbsolute, CategoryWindCoast, CategoryWeatherMode, CategoryIstanbul, CategoryTechniqueTime:
		return true
	}
	return false
}

// TraceLevel controls how much intermediate computation is returned.
type TraceLevel string

const (
	TraceNone    TraceLevel = "none"
	TraceMinimal TraceLevel = "minimal"
	TraceFull    TraceLevel = "full"
)

// CoordAccuracy describes how precisely a location's coordinates are known.
type CoordAccuracy string

const (
	AccuracyExact  CoordAccuracy = "exact"
	AccuracyApprox CoordAccuracy = "approx"
)

// WaterMass is the wind-derived proxy for which water body dominates the strait.
type WaterMass string

const (
	WaterMassLodos   WaterMass = "lodos"
	WaterMassPoyraz  WaterMass = "poyraz"
	WaterMassNeutral WaterMass = "neutral"
)

// HealthStatus summarizes input data health for a decision.
type HealthStatus string

const (
	HealthGood     HealthStatus = "good"
	HealthDegraded HealthStatus = "degraded"
	HealthBad      HealthStatus = "bad"
)

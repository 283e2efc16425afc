package types

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `yaml:"lat" json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `yaml:"lon" json:"lon" validate:"gte=-180,lte=180"`
}

// Location is a fishing spot from the location catalogue.
type Location struct {
	ID                string        `yaml:"id" json:"id" validate:"required"`
	Name              string        `yaml:"name" json:"name" validate:"required"`
	Coordinates       Coordinates   `yaml:"coordinates" json:"coordinates"`
	Accuracy          CoordAccuracy `yaml:"accuracy" json:"accuracy" validate:"oneof=exact approx"`
	Shore             Shore         `yaml:"shore" json:"shore" validate:"oneof=european anatolian"`
	Region            RegionID      `yaml:"region" json:"region" validate:"required"`
	PelagicCorridor   bool          `yaml:"pelagicCorridor" json:"pelagicCorridor"`
	Features          []string      `yaml:"features" json:"features"`
	OnshoreDirsDeg    []float64     `yaml:"onshoreDirsDeg" json:"onshoreDirsDeg" validate:"dive,gte=0,lt=360"`
	ShelterScore      float64       `yaml:"shelterScore" json:"shelterScore" validate:"gte=0,lte=1"`
	ShelteredFrom     []string      `yaml:"shelteredFrom" json:"shelteredFrom"`
	PrimaryTechniques []TechniqueID `yaml:"primaryTechniques" json:"primaryTechniques"`
	TechniqueBias     []TechniqueID `yaml:"techniqueBias" json:"techniqueBias"`
}

// Period is a local-time window expressed as "HH:MM" strings. End may be
// earlier than Start, in which case the window wraps midnight.
type Period struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// WeatherReading is the atmospheric part of the acquired conditions.
type WeatherReading struct {
	WindSpeedKmh        float64     `yaml:"windSpeedKmh" json:"windSpeedKmh"`
	WindDirDeg          float64     `yaml:"windDirDeg" json:"windDirDeg"`
	PressureHPa         float64     `yaml:"pressureHpa" json:"pressureHpa"`
	PressureChange3hHPa float64     `yaml:"pressureChange3hHpa" json:"pressureChange3hHpa"`
	AirTempC            float64     `yaml:"airTempC" json:"airTempC"`
	CloudCoverPct       float64     `yaml:"cloudCoverPct" json:"cloudCoverPct"`
	Status              DataQuality `yaml:"status" json:"status"`
}

// SeaReading is the marine part of the acquired conditions. Either value may
// be unknown.
type SeaReading struct {
	SeaTempC    *float64    `yaml:"seaTempC" json:"seaTempC"`
	WaveHeightM *float64    `yaml:"waveHeightM" json:"waveHeightM"`
	Status      DataQuality `yaml:"status" json:"status"`
}

// LunarContext is the lunar/solunar description of one local day.
type LunarContext struct {
	MajorPeriods    []Period    `yaml:"majorPeriods" json:"majorPeriods"`
	MinorPeriods    []Period    `yaml:"minorPeriods" json:"minorPeriods"`
	MoonPhase       string      `yaml:"moonPhase" json:"moonPhase"`
	IlluminationPct float64     `yaml:"illuminationPct" json:"illuminationPct"`
	Rating          float64     `yaml:"rating" json:"rating"`
	Sunrise         string      `yaml:"sunrise" json:"sunrise,omitempty"`
	Sunset          string      `yaml:"sunset" json:"sunset,omitempty"`
	Status          DataQuality `yaml:"status" json:"status"`
}

// ReportAggregate is the 24-hour community report summary for a location.
type ReportAggregate struct {
	TotalReports    int                 `yaml:"totalReports" json:"totalReports"`
	TechniqueCounts map[TechniqueID]int `yaml:"techniqueCounts" json:"techniqueCounts,omitempty"`
	NaturalBaitBias bool                `yaml:"naturalBaitBias" json:"naturalBaitBias"`
}

// Conditions is everything acquired before the engine runs. It is treated as
// a synchronous, read-only input by the engine.
type Conditions struct {
	Weather     WeatherReading
	Sea         SeaReading
	Lunar       LunarContext
	Reports     map[string]*ReportAggregate
	DataQuality DataQuality
	DataIssues  []string
}

// SituationalContext is the immutable snapshot for one location at one
// evaluation instant. It is built once per location per run and only read
// afterwards.
type SituationalContext struct {
	LocationID      string
	Region          RegionID
	Shore           Shore
	Accuracy        CoordAccuracy
	OnshoreDirsDeg  []float64
	ShelterScore    float64
	ShelteredFrom   []string
	Features        []string
	PelagicCorridor bool

	WindSpeedKmh        float64
	WindDirDeg          float64
	WindCardinal        string
	PressureHPa         float64
	PressureChange3hHPa float64
	PressureTrend       PressureTrend
	AirTempC            float64
	SeaTempC            *float64
	CloudCoverPct       float64
	WaveHeightM         *float64

	MajorPeriods        []Period
	MinorPeriods        []Period
	MoonIlluminationPct float64
	LunarRating         float64

	Hour       int
	Minute     int
	Month      int
	IsDaylight bool

	WaterMass         WaterMass
	WaterMassStrength float64

	Reports     *ReportAggregate
	DataQuality DataQuality
}

// HasRecentReports reports whether a non-empty 24h aggregate is attached.
func (s SituationalContext) HasRecentReports() bool {
	return s.Reports != nil && s.Reports.TotalReports > 0
}

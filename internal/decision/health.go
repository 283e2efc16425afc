package decision

import (
	"math"

	"fishcast/internal/catalog"
	"fishcast/internal/types"
	"fishcast/internal/wind"
)

// Health reason codes.
const (
	HealthCodeFallback     = "data_quality_fallback"
	HealthCodeCached       = "data_quality_cached"
	HealthCodeProvider     = "provider_issue"
	HealthCodeMissingSea   = "missing_sea_temp"
	HealthCodeMissingWaves = "missing_wave_height"
)

const (
	healthMissingSeaTR   = "Su sıcaklığı verisi yok"
	healthMissingWavesTR = "Dalga yüksekliği verisi yok"
)

// Health grades the input data.
//
// Decision logic:
//  1. Fallback quality → bad; cached → degraded.
//  2. Any acquisition issue adds provider_issue; issues are echoed as reasons.
//  3. Missing sea temperature → bad.
//  4. Missing wave height degrades an otherwise good block.
func Health(cond types.Conditions) types.HealthBlock {
	h := types.HealthBlock{
		Status:      types.HealthGood,
		ReasonCodes: []string{},
		Reasons:     append([]string{}, cond.DataIssues...),
	}

	switch cond.DataQuality {
	case types.DataQualityFallback:
		h.Status = types.HealthBad
		h.ReasonCodes = append(h.ReasonCodes, HealthCodeFallback)
	case types.DataQualityCached:
		h.Status = types.HealthDegraded
		h.ReasonCodes = append(h.ReasonCodes, HealthCodeCached)
	}
	if len(cond.DataIssues) > 0 {
		h.ReasonCodes = append(h.ReasonCodes, HealthCodeProvider)
	}
	if cond.Sea.SeaTempC == nil {
		h.Status = types.HealthBad
		h.ReasonCodes = append(h.ReasonCodes, HealthCodeMissingSea)
		h.Reasons = append(h.Reasons, healthMissingSeaTR)
	}
	if cond.Sea.WaveHeightM == nil && h.Status == types.HealthGood {
		h.Status = types.HealthDegraded
		h.ReasonCodes = append(h.ReasonCodes, HealthCodeMissingWaves)
		h.Reasons = append(h.Reasons, healthMissingWavesTR)
	}

	h.Normalized = types.NormalizedInputs{
		WindSpeedKmhRaw: math.Round(cond.Weather.WindSpeedKmh*10) / 10,
		WindCardinal:    wind.Cardinal8(cond.Weather.WindDirDeg),
		PressureTrend:   PressureTrendOf(cond.Weather.PressureChange3hHPa),
	}
	return h
}

// DaySummary condenses the city-wide conditions into display ranges.
func DaySummary(cond types.Conditions, sc types.SituationalContext, cfg catalog.DaySummaryConfig) types.DaySummary {
	w := cond.Weather
	return types.DaySummary{
		WindSpeedKmhMin:     roundInt(math.Max(0, w.WindSpeedKmh-cfg.WindBelowKmh)),
		WindSpeedKmhMax:     roundInt(w.WindSpeedKmh + cfg.WindAboveKmh),
		WindDirDeg:          sc.WindDirDeg,
		WindCardinal:        sc.WindCardinal,
		WindNameTR:          wind.NameTR(sc.WindCardinal),
		PressureHPa:         w.PressureHPa,
		PressureChange3hHPa: w.PressureChange3hHPa,
		PressureTrend:       sc.PressureTrend,
		AirTempCMin:         roundInt(w.AirTempC - cfg.AirSpreadC),
		AirTempCMax:         roundInt(w.AirTempC + cfg.AirSpreadC),
		SeaTempC:            cond.Sea.SeaTempC,
		CloudCoverPct:       w.CloudCoverPct,
		WaveHeightM:         cond.Sea.WaveHeightM,
		WaterMass:           sc.WaterMass,
		IsDaylight:          sc.IsDaylight,
		DataQuality:         cond.DataQuality,
		DataIssues:          append([]string{}, cond.DataIssues...),
	}
}

// windBand widens the measured wind into the displayed band for a location.
func windBand(speedKmh float64, cfg catalog.BandConfig) (int, int) {
	return roundInt(math.Max(0, speedKmh-cfg.BelowKmh)), roundInt(speedKmh + cfg.AboveKmh)
}

func roundInt(v float64) int {
	return int(math.RoundToEven(v))
}

package external

import (
	"fmt"

	"fishcast/internal/types"
)

// MonthlySeaTempC is the Bosphorus surface temperature climatology, indexed
// by month (1-12). Index 0 is unused.
var MonthlySeaTempC = [13]float64{0, 9, 8, 9, 11, 15, 20, 24, 25, 23, 19, 15, 11}

// Data issue messages recorded when a substitution is made.
const (
	IssueWeatherFallback = "Hava verisi alınamadı — varsayılan değerler kullanılıyor"
	IssueSeaCached       = "Su sıcaklığı: önbellekten (deniz verisi geçici olarak erişilemez)"
	IssueLunarFallback   = "Solunar verisi hesaplanamadı — varsayılan periyotlar kullanılıyor"
	IssueOffline         = "Çevrimdışı mod: sabit veri kullanılıyor"
)

// IssueSeaClimatology is the data issue for a climatology sea temperature.
func IssueSeaClimatology(tempC float64) string {
	return fmt.Sprintf("Su sıcaklığı: aylık ortalama (%.0f°C) kullanılıyor — deniz verisi alınamadı", tempC)
}

// IssueReportsUnavailable is the data issue for a failed report lookup.
func IssueReportsUnavailable(locationID string) string {
	return fmt.Sprintf("%s için saha raporları alınamadı", locationID)
}

// FallbackWeather is the documented substitute when weather acquisition
// fails: 10 km/h from the north, 1013 hPa, no 3h change, 15 °C, 50 % cloud.
func FallbackWeather() types.WeatherReading {
	return types.WeatherReading{
		WindSpeedKmh:        10,
		WindDirDeg:          0,
		PressureHPa:         1013,
		PressureChange3hHPa: 0,
		AirTempC:            15,
		CloudCoverPct:       50,
		Status:              types.DataQualityFallback,
	}
}

// ClimatologySea substitutes the monthly sea temperature. Wave height is
// unknown.
func ClimatologySea(month int) types.SeaReading {
	if month < 1 || month > 12 {
		month = 1
	}
	t := MonthlySeaTempC[month]
	return types.SeaReading{SeaTempC: &t, Status: types.DataQualityFallback}
}

// DefaultLunarDay is the substitute lunar day: majors 06-08 and 18-20,
// minors 12-13 and 00-01, 35 % illumination, rating 0.5.
func DefaultLunarDay() types.LunarContext {
	return types.LunarContext{
		MajorPeriods: []types.Period{
			{Start: "06:00", End: "08:00"},
			{Start: "18:00", End: "20:00"},
		},
		MinorPeriods: []types.Period{
			{Start: "12:00", End: "13:00"},
			{Start: "00:00", End: "01:00"},
		},
		MoonPhase:       PhaseWaxingCrescent,
		IlluminationPct: 35,
		Rating:          0.5,
		Status:          types.DataQualityFallback,
	}
}

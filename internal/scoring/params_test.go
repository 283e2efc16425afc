package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"fishcast/internal/timeofday"
	"fishcast/internal/types"
)

func testWindConfig() WindConfig {
	return WindConfig{
		ShiftThresholdKmh: 25,
		Shifts: []WindShift{
			{Directions: []string{"NE", "N"}, Shore: types.ShoreAnatolian, Delta: -0.15},
			{Directions: []string{"NE", "N"}, Shore: types.ShoreEuropean, Delta: 0.08},
			{Directions: []string{"SW", "S"}, Shore: types.ShoreEuropean, Delta: -0.15},
			{Directions: []string{"SW", "S"}, Shore: types.ShoreAnatolian, Delta: 0.05},
		},
	}
}

func testConfig() Config {
	return Config{
		Weights: map[types.SpeciesID]Weights{
			types.SpeciesCinekop: {Pressure: 0.25, Wind: 0.2, SeaTemp: 0.2, Solunar: 0.15, Time: 0.2},
			types.SpeciesMirmir:  {Pressure: 0.2, Wind: 0.2, SeaTemp: 0.2, Solunar: 0.2, Time: 0.2},
		},
		SeaTemp: map[types.SpeciesID]TempBand{
			types.SpeciesCinekop: {Min: 12, Max: 20, Penalty: 8},
		},
		BestHours: map[types.SpeciesID][]HourWindow{
			types.SpeciesCinekop: {{5, 8}, {17, 20}},
			types.SpeciesMirmir:  {{20, 2}},
		},
		DefaultBestHours: []HourWindow{{5, 8}, {16, 19}},
		Nocturnal: NocturnalBonus{
			Species: []types.SpeciesID{types.SpeciesMirmir},
			Window:  HourWindow{22, 4},
			Bonus:   0.1,
		},
		Wind: testWindConfig(),
		Confidence: ConfidenceConfig{
			DataQualityBase: map[types.DataQuality]float64{
				types.DataQualityLive:     0.85,
				types.DataQualityCached:   0.65,
				types.DataQualityFallback: 0.45,
			},
			ReportBoost:          0.10,
			ApproxCoordPenalty:   0.05,
			FiredRulesThreshold:  6,
			FiredRulesPenalty:    0.03,
			MaxFiredRulesPenalty: 0.15,
			SeasonPenalty: map[types.SeasonStatus]float64{
				types.SeasonOff:      0.20,
				types.SeasonShoulder: 0.05,
			},
		},
		MonthlySeaTempC: map[int]float64{
			1: 9, 2: 8, 3: 9, 4: 11, 5: 15, 6: 20, 7: 24, 8: 25, 9: 23, 10: 19, 11: 15, 12: 11,
		},
	}
}

func TestPressureScore(t *testing.T) {
	tests := []struct {
		name   string
		hpa    float64
		change float64
		want   float64
	}{
		{"ideal stable", 1015, 0, 1.0},
		{"ideal falling stays capped", 1015, -3, 1.0},
		{"moderate low", 1008, 0, 0.7},
		{"moderate low slight fall", 1008, -1.5, 0.85},
		{"moderate low sharp fall", 1008, -2.5, 1.0},
		{"high band rising", 1027, 2.5, 0.2},
		{"storm low", 998, -4, 0.5},
		{"extreme rising floors at zero", 1040, 5, 0.0},
		{"NaN pressure treated as standard", math.NaN(), 0, 1.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, PressureScore(tc.hpa, tc.change), 1e-9)
		})
	}
}

func TestWindScore(t *testing.T) {
	cfg := testWindConfig()
	tests := []struct {
		name  string
		speed float64
		dir   float64
		shore types.Shore
		want  float64
	}{
		{"calm", 3, 0, types.ShoreEuropean, 0.65},
		{"light", 10, 45, types.ShoreEuropean, 0.90},
		{"moderate below shift threshold", 20, 45, types.ShoreAnatolian, 0.75},
		{"poyraz on anatolian", 25, 45, types.ShoreAnatolian, 0.60},
		{"poyraz on european", 25, 45, types.ShoreEuropean, 0.83},
		{"lodos on european", 30, 225, types.ShoreEuropean, 0.25},
		{"lodos on anatolian", 30, 225, types.ShoreAnatolian, 0.45},
		{"east has no shift", 30, 90, types.ShoreAnatolian, 0.40},
		{"extreme", 40, 45, types.ShoreEuropean, 0},
		{"negative speed clamps to calm", -10, 0, types.ShoreEuropean, 0.65},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, WindScore(tc.speed, tc.dir, tc.shore, cfg), 1e-9)
		})
	}
}

func TestSeaTempScore(t *testing.T) {
	band := &TempBand{Min: 12, Max: 20, Penalty: 8}

	assert.InDelta(t, 1.0, SeaTempScore(16, band), 1e-9, "midpoint")
	assert.InDelta(t, 0.7, SeaTempScore(20, band), 1e-9, "edge")
	assert.InDelta(t, 0.25, SeaTempScore(10, band), 1e-9, "2 degrees below")
	assert.InDelta(t, 0.0, SeaTempScore(40, band), 1e-9, "far above")
	assert.InDelta(t, 0.5, SeaTempScore(16, nil), 1e-9, "no band")
	assert.InDelta(t, 1.0, SeaTempScore(15, &TempBand{Min: 15, Max: 15, Penalty: 4}), 1e-9, "point band")
}

func TestSolunarScore(t *testing.T) {
	major := []timeofday.Window{{Start: timeofday.Of(6, 0), End: timeofday.Of(8, 0)}}
	minor := []timeofday.Window{{Start: timeofday.Of(23, 30), End: timeofday.Of(0, 30)}}

	assert.Equal(t, 1.0, SolunarScore(timeofday.Of(7, 0), major, minor, 0))
	assert.Equal(t, 0.7, SolunarScore(timeofday.Of(5, 15), major, minor, 0), "approaching major")
	assert.Equal(t, 0.7, SolunarScore(timeofday.Of(0, 10), major, minor, 0), "minor across midnight")
	assert.InDelta(t, 0.3, SolunarScore(timeofday.Of(12, 0), major, minor, 0), 1e-9)
	assert.InDelta(t, 0.5, SolunarScore(timeofday.Of(12, 0), major, minor, 100), 1e-9)
	assert.InDelta(t, 0.5, SolunarScore(timeofday.Of(12, 0), major, minor, 400), 1e-9, "illumination clamps")
}

func TestTimeScore(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, 1.0, TimeScore(6, types.SpeciesCinekop, cfg))
	assert.Equal(t, 0.6, TimeScore(9, types.SpeciesCinekop, cfg), "one hour after window")
	assert.Equal(t, 0.3, TimeScore(12, types.SpeciesCinekop, cfg))
	assert.Equal(t, 0.6, TimeScore(15, types.SpeciesPalamut, cfg), "default windows apply")

	assert.Equal(t, 1.0, TimeScore(1, types.SpeciesMirmir, cfg), "wrapped window, bonus capped")
	assert.InDelta(t, 0.7, TimeScore(3, types.SpeciesMirmir, cfg), 1e-9, "edge plus nocturnal bonus")
	assert.Equal(t, 0.6, TimeScore(9+24, types.SpeciesCinekop, cfg), "hour folds into the day")
}

func TestParseWindowsSkipsMalformed(t *testing.T) {
	got := ParseWindows([]types.Period{{Start: "06:00", End: "08:00"}, {Start: "bad", End: "08:00"}})
	assert.Len(t, got, 1)
}

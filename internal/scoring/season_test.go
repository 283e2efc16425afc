package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fishcast/internal/types"
)

func testSeasonTable() SeasonTable {
	return SeasonTable{
		types.SpeciesPalamut: {
			PeakMonths:         []int{9, 10, 11},
			ShoulderMonths:     []int{8, 12},
			OffMonths:          []int{3, 4, 5, 6},
			LegacyClosedMonths: []int{7},
			PeakAdjustment:     12,
			ShoulderAdjustment: 5,
			OffAdjustment:      -25,
			OffFloor:           10,
			ConfidenceImpact:   0.2,
			PartialCatch:       PartialCatch{Threshold: 0.6, PenaltyReduction: 0.5, Confidence: 0.3},
		},
	}
}

func TestSeasonAdjust(t *testing.T) {
	table := testSeasonTable()

	tests := []struct {
		name     string
		month    int
		weighted float64
		want     SeasonAdjustment
	}{
		{"peak", 10, 0.5, SeasonAdjustment{Status: types.SeasonPeak, Adjustment: 12}},
		{"shoulder", 8, 0.5, SeasonAdjustment{Status: types.SeasonShoulder, Adjustment: 5, ConfidenceImpact: 0.2 * 0.3}},
		{"off weak conditions", 4, 0.4, SeasonAdjustment{Status: types.SeasonOff, Adjustment: -25, ConfidenceImpact: 0.2, Floor: 10}},
		{"off partial catch", 4, 0.7, SeasonAdjustment{Status: types.SeasonOff, Adjustment: -12, ConfidenceImpact: 0.3, PartialCatch: true, Floor: 10}},
		{"legacy closed", 7, 0.9, SeasonAdjustment{Status: types.SeasonLegacyClosed, Adjustment: -25, ConfidenceImpact: 0.2, Floor: 10}},
		{"unlisted month", 1, 0.9, SeasonAdjustment{Status: types.SeasonActive}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := table.Adjust(types.SpeciesPalamut, tc.month, tc.weighted)
			assert.Equal(t, tc.want.Status, got.Status)
			assert.Equal(t, tc.want.Adjustment, got.Adjustment)
			assert.InDelta(t, tc.want.ConfidenceImpact, got.ConfidenceImpact, 1e-9)
			assert.Equal(t, tc.want.PartialCatch, got.PartialCatch)
			assert.Equal(t, tc.want.Floor, got.Floor)
		})
	}
}

func TestSeasonAdjustUnknownSpecies(t *testing.T) {
	got := testSeasonTable().Adjust(types.SpeciesLufer, 4, 0.9)
	assert.Equal(t, SeasonAdjustment{Status: types.SeasonActive}, got)
}

func TestComposeScore(t *testing.T) {
	peak := SeasonAdjustment{Status: types.SeasonPeak, Adjustment: 12}
	assert.Equal(t, 82, ComposeScore(0.70, peak, 0))
	assert.Equal(t, 100, ComposeScore(0.95, peak, 25), "clamped at 100")
	assert.Equal(t, 0, ComposeScore(0.10, SeasonAdjustment{Status: types.SeasonActive}, -20), "clamped at 0")

	off := SeasonAdjustment{Status: types.SeasonOff, Adjustment: -25, Floor: 10}
	assert.Equal(t, 10, ComposeScore(0.2, off, 0), "off floor lifts the score")
	assert.Equal(t, 35, ComposeScore(0.6, off, 0), "off above floor is untouched")
	assert.Equal(t, 10, ComposeScore(0.2, off, -20), "floor holds against negative bonus")
}

func TestOffSeasonNeverZeroesPositiveSum(t *testing.T) {
	table := testSeasonTable()
	for month := 1; month <= 12; month++ {
		for _, weighted := range []float64{0.01, 0.1, 0.3, 0.59, 0.6, 1.0} {
			adj := table.Adjust(types.SpeciesPalamut, month, weighted)
			if !adj.Status.IsOff() {
				continue
			}
			assert.Positive(t, ComposeScore(weighted, adj, 0), "month=%d weighted=%v", month, weighted)
		}
	}
}

func TestConfidenceEstimate(t *testing.T) {
	cfg := testConfig().Confidence

	tests := []struct {
		name string
		in   ConfidenceInputs
		want float64
	}{
		{
			name: "live exact active",
			in:   ConfidenceInputs{DataQuality: types.DataQualityLive, Accuracy: types.AccuracyExact, Season: SeasonAdjustment{Status: types.SeasonActive}},
			want: 0.85,
		},
		{
			name: "live with reports, approx",
			in:   ConfidenceInputs{DataQuality: types.DataQualityLive, HasReports: true, Accuracy: types.AccuracyApprox, Season: SeasonAdjustment{Status: types.SeasonPeak}},
			want: 0.9,
		},
		{
			name: "noisy rules capped penalty",
			in:   ConfidenceInputs{DataQuality: types.DataQualityLive, Accuracy: types.AccuracyExact, FiredRules: 20, Season: SeasonAdjustment{Status: types.SeasonActive}},
			want: 0.7,
		},
		{
			name: "fallback off season hits the floor",
			in: ConfidenceInputs{
				DataQuality: types.DataQualityFallback,
				Accuracy:    types.AccuracyApprox,
				Season:      SeasonAdjustment{Status: types.SeasonOff, ConfidenceImpact: 0.2},
			},
			want: 0.1,
		},
		{
			name: "unknown grade uses neutral base",
			in:   ConfidenceInputs{DataQuality: "mystery", Accuracy: types.AccuracyExact, Season: SeasonAdjustment{Status: types.SeasonActive}},
			want: 0.5,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, cfg.Estimate(tc.in), 1e-9)
		})
	}
}

func TestParametersUsesClimatologyWhenSeaTempMissing(t *testing.T) {
	cfg := testConfig()
	ctx := types.SituationalContext{
		Shore:        types.ShoreEuropean,
		WindSpeedKmh: 10,
		PressureHPa:  1015,
		Month:        10,
		Hour:         6,
	}

	p, ok := cfg.Parameters(types.SpeciesCinekop, ctx)
	assert.True(t, ok)
	// October climatology is 19C, inside the 12-20 band.
	assert.InDelta(t, SeaTempScore(19, &TempBand{Min: 12, Max: 20, Penalty: 8}), p.SeaTemp, 1e-9)

	_, ok = cfg.Parameters(types.SpeciesLufer, ctx)
	assert.False(t, ok, "species without weights is not scored")
}

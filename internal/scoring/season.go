package scoring

import (
	"math"
	"slices"

	"fishcast/internal/types"
)

// shoulderImpactFactor scales a profile's confidence impact in shoulder months.
const shoulderImpactFactor = 0.3

// SeasonAdjustment is the additive season term for one species and month.
type SeasonAdjustment struct {
	Status           types.SeasonStatus
	Adjustment       int
	ConfidenceImpact float64
	PartialCatch     bool
	// Floor is the minimum final score for off and legacy-closed statuses.
	Floor int
}

// Adjust looks up the season profile for species and converts month and the
// weighted parameter sum into an additive adjustment.
//
// Decision logic:
//  1. Peak month → +PeakAdjustment, no confidence impact.
//  2. Shoulder month → +ShoulderAdjustment, 30% of the profile's impact.
//  3. Off month → OffAdjustment and the full impact; when the weighted sum
//     reaches the partial-catch threshold the penalty is reduced, the flag is
//     set and the impact becomes max(impact/2, partial-catch confidence).
//  4. Legacy-closed month → OffAdjustment and the full impact, no relief.
//  5. Any other month, or no profile → active, 0.
//
// The adjustment is never multiplicative; off statuses carry a floor that the
// composed score cannot drop below.
func (t SeasonTable) Adjust(species types.SpeciesID, month int, weighted float64) SeasonAdjustment {
	p, ok := t[species]
	if !ok {
		return SeasonAdjustment{Status: types.SeasonActive}
	}

	switch {
	case slices.Contains(p.PeakMonths, month):
		return SeasonAdjustment{Status: types.SeasonPeak, Adjustment: p.PeakAdjustment}

	case slices.Contains(p.ShoulderMonths, month):
		return SeasonAdjustment{
			Status:           types.SeasonShoulder,
			Adjustment:       p.ShoulderAdjustment,
			ConfidenceImpact: p.ConfidenceImpact * shoulderImpactFactor,
		}

	case slices.Contains(p.OffMonths, month):
		adj := SeasonAdjustment{
			Status:           types.SeasonOff,
			Adjustment:       p.OffAdjustment,
			ConfidenceImpact: p.ConfidenceImpact,
			Floor:            p.OffFloor,
		}
		if weighted >= p.PartialCatch.Threshold {
			adj.Adjustment = int(math.RoundToEven(float64(p.OffAdjustment) * (1 - p.PartialCatch.PenaltyReduction)))
			adj.PartialCatch = true
			adj.ConfidenceImpact = math.Max(p.ConfidenceImpact*0.5, p.PartialCatch.Confidence)
		}
		return adj

	case slices.Contains(p.LegacyClosedMonths, month):
		return SeasonAdjustment{
			Status:           types.SeasonLegacyClosed,
			Adjustment:       p.OffAdjustment,
			ConfidenceImpact: p.ConfidenceImpact,
			Floor:            p.OffFloor,
		}
	}

	return SeasonAdjustment{Status: types.SeasonActive}
}

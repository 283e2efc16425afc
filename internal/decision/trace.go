package decision

import (
	"strings"

	"fishcast/internal/types"
)

// TracePolicy is the operator gate for trace detail.
type TracePolicy struct {
	AllowFull bool
}

// ParseTraceLevel reads a requested level. Unknown or empty input is none.
func ParseTraceLevel(s string) types.TraceLevel {
	switch types.TraceLevel(strings.ToLower(strings.TrimSpace(s))) {
	case types.TraceMinimal:
		return types.TraceMinimal
	case types.TraceFull:
		return types.TraceFull
	default:
		return types.TraceNone
	}
}

// Apply returns the level actually served. Full is downgraded to minimal when
// the gate disallows it; this is never an error.
func (p TracePolicy) Apply(requested types.TraceLevel) types.TraceLevel {
	level := ParseTraceLevel(string(requested))
	if level == types.TraceFull && !p.AllowFull {
		return types.TraceMinimal
	}
	return level
}

func buildTrace(ev locationEval, level types.TraceLevel) types.LocationTrace {
	t := types.LocationTrace{
		LocationID:      ev.location.ID,
		FiredRulesCount: ev.result.FiredCount(),
		ActiveRuleIDs:   nonNil(ev.result.FiredIDs()),
		RuleExplanation: ev.result.Explanation(),
		DataQuality:     ev.situation.DataQuality,
	}
	if level != types.TraceFull {
		return t
	}
	t.Species = make(map[types.SpeciesID]types.SpeciesTrace, len(ev.species))
	for _, s := range ev.species {
		r := s.rules
		t.Species[s.score.Species] = types.SpeciesTrace{
			CategoryRaw:    r.CategoryRaw,
			CategoryCapped: r.CategoryCapped,
			PositiveRaw:    r.PositiveRaw,
			PositiveCapped: r.PositiveCapped,
			NegativeTotal:  r.NegativeTotal,
			FinalBonus:     r.FinalBonus,
			ModeStep:       s.modeStep,
		}
	}
	return t
}

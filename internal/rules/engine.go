package rules

import (
	"math"
	"slices"
	"strings"

	"fishcast/internal/types"
)

// MessageSeparator joins fired-rule messages into one explanation.
const MessageSeparator = " | "

// Caps bounds the rule bonus per category and overall. The absolute category
// is never capped.
type Caps struct {
	WindCoast     int `yaml:"windCoast" json:"windCoast" validate:"gte=0"`
	Istanbul      int `yaml:"istanbul" json:"istanbul" validate:"gte=0"`
	TechniqueTime int `yaml:"techniqueTime" json:"techniqueTime" validate:"gte=0"`
	WeatherMode   int `yaml:"weatherMode" json:"weatherMode" validate:"gte=0"`
	TotalCap      int `yaml:"totalCap" json:"totalCap" validate:"gte=0"`
	NegativeFloor int `yaml:"negativeFloor" json:"negativeFloor" validate:"lte=0"`
}

// DefaultCaps returns the stock bonus caps.
func DefaultCaps() Caps {
	return Caps{
		WindCoast:     12,
		Istanbul:      10,
		TechniqueTime: 8,
		WeatherMode:   15,
		TotalCap:      25,
		NegativeFloor: -20,
	}
}

// For returns the cap of category c. The second result is false when the
// category is uncapped.
func (c Caps) For(cat types.RuleCategory) (int, bool) {
	switch cat {
	case types.CategoryWindCoast:
		return c.WindCoast, true
	case types.CategoryIstanbul:
		return c.Istanbul, true
	case types.CategoryTechniqueTime:
		return c.TechniqueTime, true
	case types.CategoryWeatherMode:
		return c.WeatherMode, true
	case types.CategoryAbsolute:
		return 0, false
	}
	return c.TotalCap, true
}

// Engine evaluates a compiled rule catalogue. It is immutable after
// construction and safe for concurrent use.
type Engine struct {
	rules    []Rule
	caps     Caps
	wildcard []types.SpeciesID
}

// NewEngine returns an engine over rules. The wildcard selector "*" expands
// to wildcard.
func NewEngine(rules []Rule, caps Caps, wildcard []types.SpeciesID) *Engine {
	sorted := slices.Clone(rules)
	sortRules(sorted)
	return &Engine{
		rules:    sorted,
		caps:     caps,
		wildcard: slices.Clone(wildcard),
	}
}

// Rules returns the compiled rules, enabled and disabled, in evaluation order.
func (e *Engine) Rules() []Rule { return slices.Clone(e.rules) }

// Caps returns the configured bonus caps.
func (e *Engine) Caps() Caps { return e.caps }

// Counts returns the number of enabled and disabled rules.
func (e *Engine) Counts() (enabled, disabled int) {
	for _, r := range e.rules {
		if r.Enabled {
			enabled++
		} else {
			disabled++
		}
	}
	return enabled, disabled
}

// Disabled returns the disabled rules ordered by id.
func (e *Engine) Disabled() []Rule {
	var out []Rule
	for _, r := range e.rules {
		if !r.Enabled {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b Rule) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// FiredRule records one rule that matched during evaluation.
type FiredRule struct {
	ID       string
	Priority int
	Category types.RuleCategory
	Message  string
	Species  []types.SpeciesID
	NoGo     bool
}

// SpeciesResult is the aggregated rule outcome for one species.
type SpeciesResult struct {
	CategoryRaw    map[types.RuleCategory]int
	CategoryCapped map[types.RuleCategory]int
	PositiveRaw    int
	PositiveCapped int
	NegativeRaw    int
	NegativeTotal  int
	FinalBonus     int

	// Hints are the hinted techniques with removals already applied.
	Hints    []types.TechniqueID
	Removals []types.TechniqueID
	ModeHint types.Mode
	// ModeHintRule is the id of the rule that supplied ModeHint.
	ModeHintRule string
}

// Result is the outcome of evaluating every enabled rule against a context.
type Result struct {
	Fired       []FiredRule
	NoGo        bool
	NoGoReasons []string
	// Messages holds fired-rule messages by priority descending, de-duplicated.
	Messages []string
	Species  map[types.SpeciesID]SpeciesResult
}

// FiredCount is the number of rules that matched.
func (r Result) FiredCount() int { return len(r.Fired) }

// FiredIDs returns the fired rule ids in evaluation order.
func (r Result) FiredIDs() []string {
	ids := make([]string, len(r.Fired))
	for i, f := range r.Fired {
		ids[i] = f.ID
	}
	return ids
}

// Explanation joins all fired-rule messages with MessageSeparator.
func (r Result) Explanation() string {
	return strings.Join(r.Messages, MessageSeparator)
}

// For returns the result for species. Species no rule touched get a zero
// result.
func (r Result) For(species types.SpeciesID) SpeciesResult {
	return r.Species[species]
}

// speciesAcc accumulates effects for one species before capping.
type speciesAcc struct {
	categories map[types.RuleCategory]int
	hints      []types.TechniqueID
	removals   []types.TechniqueID
	modeHint   types.Mode
	modeRule   string
}

// Evaluate runs every enabled rule against ctx. There is no short-circuit:
// all matching rules fire.
//
// Aggregation per species:
//  1. Sum bonuses per category (water-mass rules scaled by strength).
//  2. Clamp each category total to its cap; absolute is uncapped.
//  3. Sum positive category totals and clamp to TotalCap.
//  4. Sum negative category totals and floor at NegativeFloor.
//  5. Final bonus = capped positive + floored negative.
//
// Rules are visited by priority descending then id ascending, so hint and
// removal unions come out in that order and the first mode hint seen wins.
// Removals are applied after the union.
func (e *Engine) Evaluate(ctx types.SituationalContext) Result {
	res := Result{Species: make(map[types.SpeciesID]SpeciesResult)}
	acc := make(map[types.SpeciesID]*speciesAcc)
	var order []types.SpeciesID

	for _, rule := range e.rules {
		if !rule.Enabled || !rule.Matches(ctx) {
			continue
		}

		fired := FiredRule{
			ID:       rule.ID,
			Priority: rule.Priority,
			Category: rule.Category,
			Message:  rule.Message,
		}

		for _, eff := range rule.Effects {
			bonus := eff.ScoreBonus
			if rule.waterMass {
				bonus = int(math.RoundToEven(float64(bonus) * ctx.WaterMassStrength))
			}

			for _, sp := range e.targets(eff) {
				a, ok := acc[sp]
				if !ok {
					a = &speciesAcc{categories: make(map[types.RuleCategory]int)}
					acc[sp] = a
					order = append(order, sp)
				}
				a.categories[rule.Category] += bonus
				a.hints = appendUnique(a.hints, eff.Hints...)
				a.removals = appendUnique(a.removals, eff.Removals...)
				if eff.ModeHint != "" && a.modeHint == "" {
					a.modeHint = eff.ModeHint
					a.modeRule = rule.ID
				}
				if !slices.Contains(fired.Species, sp) {
					fired.Species = append(fired.Species, sp)
				}
			}

			if eff.NoGo {
				fired.NoGo = true
				res.NoGo = true
				if rule.Message != "" && !slices.Contains(res.NoGoReasons, rule.Message) {
					res.NoGoReasons = append(res.NoGoReasons, rule.Message)
				}
			}
		}

		if rule.Message != "" && !slices.Contains(res.Messages, rule.Message) {
			res.Messages = append(res.Messages, rule.Message)
		}
		res.Fired = append(res.Fired, fired)
	}

	for _, sp := range order {
		res.Species[sp] = e.aggregate(acc[sp])
	}
	return res
}

func (e *Engine) targets(eff Effect) []types.SpeciesID {
	if eff.AllSpecies {
		out := slices.Clone(e.wildcard)
		for _, sp := range eff.Species {
			if !slices.Contains(out, sp) {
				out = append(out, sp)
			}
		}
		return out
	}
	return eff.Species
}

func (e *Engine) aggregate(a *speciesAcc) SpeciesResult {
	out := SpeciesResult{
		CategoryRaw:    make(map[types.RuleCategory]int, len(a.categories)),
		CategoryCapped: make(map[types.RuleCategory]int, len(a.categories)),
		Removals:       a.removals,
		ModeHint:       a.modeHint,
		ModeHintRule:   a.modeRule,
	}

	for cat, raw := range a.categories {
		out.CategoryRaw[cat] = raw
		capped := raw
		if limit, ok := e.caps.For(cat); ok {
			capped = min(raw, limit)
		}
		out.CategoryCapped[cat] = capped
		if capped > 0 {
			out.PositiveRaw += capped
		} else {
			out.NegativeRaw += capped
		}
	}

	out.PositiveCapped = min(out.PositiveRaw, e.caps.TotalCap)
	out.NegativeTotal = max(out.NegativeRaw, e.caps.NegativeFloor)
	out.FinalBonus = out.PositiveCapped + out.NegativeTotal

	for _, t := range a.hints {
		if !slices.Contains(a.removals, t) {
			out.Hints = append(out.Hints, t)
		}
	}
	return out
}

func appendUnique[T comparable](dst []T, items ...T) []T {
	for _, it := range items {
		if !slices.Contains(dst, it) {
			dst = append(dst, it)
		}
	}
	return dst
}

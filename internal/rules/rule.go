// Package rules implements the declarative rule layer: compiling catalogue
// rules into typed conditions, evaluating every enabled rule against a
// situational context, and resolving conflicts between the rules that fire.
package rules

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"fishcast/internal/types"
)

// Wildcard selects every species the engine evaluates.
const Wildcard = "*"

// Priority bounds accepted in the catalogue.
const (
	MinPriority = 1
	MaxPriority = 10
)

// RuleSpec is a rule as written in the catalogue document.
type RuleSpec struct {
	ID             string             `yaml:"id" json:"id"`
	Enabled        *bool              `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	DisabledReason string             `yaml:"disabledReason,omitempty" json:"disabledReason,omitempty"`
	Priority       int                `yaml:"priority" json:"priority"`
	Category       types.RuleCategory `yaml:"category,omitempty" json:"category,omitempty"`
	Condition      map[string]any     `yaml:"condition" json:"condition"`
	Effects        []EffectSpec       `yaml:"effects" json:"effects"`
	MessageTR      string             `yaml:"messageTR" json:"messageTR"`
}

// IsEnabled defaults to true when the catalogue omits the flag.
func (s RuleSpec) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// EffectSpec is one effect of a catalogue rule.
type EffectSpec struct {
	ApplyToSpecies       []string            `yaml:"applyToSpecies,omitempty" json:"applyToSpecies,omitempty"`
	ScoreBonus           int                 `yaml:"scoreBonus,omitempty" json:"scoreBonus,omitempty"`
	TechniqueHints       []types.TechniqueID `yaml:"techniqueHints,omitempty" json:"techniqueHints,omitempty"`
	RemoveFromTechniques []types.TechniqueID `yaml:"removeFromTechniques,omitempty" json:"removeFromTechniques,omitempty"`
	ModeHint             types.Mode          `yaml:"modeHint,omitempty" json:"modeHint,omitempty"`
	NoGo                 bool                `yaml:"noGo,omitempty" json:"noGo,omitempty"`
}

// Rule is a compiled, immutable catalogue rule.
type Rule struct {
	ID             string
	Enabled        bool
	DisabledReason string
	Priority       int
	Category       types.RuleCategory
	Conditions     []Condition
	Effects        []Effect
	Message        string

	// waterMass rules scale their score bonus by the proxy strength.
	waterMass bool
}

// Effect is a compiled rule effect.
type Effect struct {
	AllSpecies bool
	Species    []types.SpeciesID
	ScoreBonus int
	Hints      []types.TechniqueID
	Removals   []types.TechniqueID
	ModeHint   types.Mode
	NoGo       bool
}

// HasNoGo reports whether any effect of r carries the no-go flag.
func (r Rule) HasNoGo() bool {
	return slices.ContainsFunc(r.Effects, func(e Effect) bool { return e.NoGo })
}

// Matches reports whether every condition of r matches ctx. A rule with no
// conditions always matches.
func (r Rule) Matches(ctx types.SituationalContext) bool {
	for _, c := range r.Conditions {
		if !c.Matches(ctx) {
			return false
		}
	}
	return true
}

// UnknownFields lists condition fields that no context ever provides. Such
// conditions compile but never match.
func (r Rule) UnknownFields() []string {
	var out []string
	for _, c := range r.Conditions {
		if !KnownField(c.Field) {
			out = append(out, c.Field)
		}
	}
	return out
}

// InferCategory maps a priority to a category for rules that omit one.
func InferCategory(priority int) types.RuleCategory {
	switch priority {
	case 10:
		return types.CategoryAbsolute
	case 9:
		return types.CategoryWindCoast
	case 8, 7:
		return types.CategoryWeatherMode
	case 6:
		return types.CategoryIstanbul
	default:
		return types.CategoryTechniqueTime
	}
}

// Compile validates specs and returns the compiled rules ordered by priority
// descending then id ascending. Disabled rules are compiled and returned so
// they can be counted, but the engine never evaluates them.
//
// Any violation returns an *types.AppError with a config_* code:
//   - empty or duplicate ids
//   - priority outside [1, 10]
//   - unknown category
//   - a no-go effect outside the absolute category
//   - unparseable conditions, unknown species, techniques or mode hints
func Compile(specs []RuleSpec) ([]Rule, error) {
	seen := make(map[string]struct{}, len(specs))
	out := make([]Rule, 0, len(specs))

	for i, spec := range specs {
		if spec.ID == "" {
			return nil, ruleError(fmt.Sprintf("rule #%d", i), "missing id", nil)
		}
		if _, dup := seen[spec.ID]; dup {
			return nil, types.NewAppError(types.ErrCodeConfigDuplicateID,
				fmt.Sprintf("duplicate rule id %q", spec.ID), nil).
				WithDetails(map[string]any{"rule_id": spec.ID})
		}
		seen[spec.ID] = struct{}{}

		rule, err := compileRule(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}

	sortRules(out)
	return out, nil
}

func compileRule(spec RuleSpec) (Rule, error) {
	if spec.Priority < MinPriority || spec.Priority > MaxPriority {
		return Rule{}, ruleError(spec.ID, fmt.Sprintf("priority %d outside [%d, %d]", spec.Priority, MinPriority, MaxPriority), nil)
	}

	category := spec.Category
	if category == "" {
		category = InferCategory(spec.Priority)
	}
	if !category.Valid() {
		return Rule{}, ruleError(spec.ID, fmt.Sprintf("unknown category %q", category), nil)
	}

	if len(spec.Effects) == 0 {
		return Rule{}, ruleError(spec.ID, "at least one effect is required", nil)
	}

	rule := Rule{
		ID:             spec.ID,
		Enabled:        spec.IsEnabled(),
		DisabledReason: spec.DisabledReason,
		Priority:       spec.Priority,
		Category:       category,
		Message:        spec.MessageTR,
	}

	// Map iteration order is random; compile keys in sorted order so the
	// condition list and any error are stable.
	keys := make([]string, 0, len(spec.Condition))
	for k := range spec.Condition {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c, err := compileCondition(k, spec.Condition[k])
		if err != nil {
			return Rule{}, ruleError(spec.ID, "invalid condition", err)
		}
		if c.Field == "waterMassProxy" {
			rule.waterMass = true
		}
		rule.Conditions = append(rule.Conditions, c)
	}

	for i, es := range spec.Effects {
		e, err := compileEffect(es)
		if err != nil {
			return Rule{}, ruleError(spec.ID, fmt.Sprintf("effect #%d", i), err)
		}
		if e.NoGo && category != types.CategoryAbsolute {
			return Rule{}, types.NewAppError(types.ErrCodeConfigRule,
				fmt.Sprintf("rule %q: no-go effect outside the %s category", spec.ID, types.CategoryAbsolute), nil).
				WithDetails(map[string]any{"rule_id": spec.ID, "category": string(category)})
		}
		rule.Effects = append(rule.Effects, e)
	}

	return rule, nil
}

func compileEffect(es EffectSpec) (Effect, error) {
	e := Effect{
		ScoreBonus: es.ScoreBonus,
		Hints:      slices.Clone(es.TechniqueHints),
		Removals:   slices.Clone(es.RemoveFromTechniques),
		ModeHint:   es.ModeHint,
		NoGo:       es.NoGo,
	}

	selectors := es.ApplyToSpecies
	if len(selectors) == 0 {
		selectors = []string{Wildcard}
	}
	for _, s := range selectors {
		if s == Wildcard {
			e.AllSpecies = true
			continue
		}
		sp := types.SpeciesID(s)
		if !sp.Valid() {
			return Effect{}, fmt.Errorf("unknown species %q", s)
		}
		e.Species = append(e.Species, sp)
	}

	for _, t := range slices.Concat(e.Hints, e.Removals) {
		if !t.Valid() {
			return Effect{}, fmt.Errorf("unknown technique %q", t)
		}
	}
	if e.ModeHint != "" && !e.ModeHint.Valid() {
		return Effect{}, fmt.Errorf("unknown mode hint %q", e.ModeHint)
	}
	return e, nil
}

func ruleError(id, msg string, err error) *types.AppError {
	return types.NewAppError(types.ErrCodeConfigRule, fmt.Sprintf("rule %q: %s", id, msg), err).
		WithDetails(map[string]any{"rule_id": id})
}

// sortRules orders rules by priority descending, then id ascending.
func sortRules(rs []Rule) {
	slices.SortFunc(rs, func(a, b Rule) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

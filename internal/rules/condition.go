package rules

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fishcast/internal/timeofday"
	"fishcast/internal/types"
)

// ConditionKind tags the matching semantics of a single condition entry.
type ConditionKind int

const (
	KindCompare ConditionKind = iota
	KindRange
	KindTime
	KindMonth
	KindFeature
	KindFlag
	KindAnyOf
	KindEqual
)

func (k ConditionKind) String() string {
	switch k {
	case KindCompare:
		return "compare"
	case KindRange:
		return "range"
	case KindTime:
		return "time"
	case KindMonth:
		return "month"
	case KindFeature:
		return "feature"
	case KindFlag:
		return "flag"
	case KindAnyOf:
		return "any_of"
	case KindEqual:
		return "equal"
	}
	return "unknown"
}

// Operator is a numeric comparison operator used by KindCompare conditions.
type Operator string

const (
	OpGreaterThan   Operator = ">"
	OpGreaterThanEq Operator = ">="
	OpLessThan      Operator = "<"
	OpLessThanEq    Operator = "<="
)

// Reserved condition keys. Every other key names a context field.
const (
	keyTime     = "time"
	keyMonth    = "month"
	keyFeature  = "features_include"
	rangeSuffix = "_range"
)

// Condition is one compiled entry of a rule's AND-combined condition set.
// Only the fields relevant to Kind are populated.
type Condition struct {
	Field string
	Kind  ConditionKind

	Op     Operator
	Number float64
	Min    float64
	Max    float64
	Window timeofday.Window
	Months []int
	Flag   bool
	Text   string
	Any    []scalar
}

// scalar is a list element or exact-match operand from the catalogue.
type scalar struct {
	text    string
	num     float64
	numeric bool
}

func (s scalar) String() string {
	if s.numeric {
		return strconv.FormatFloat(s.num, 'f', -1, 64)
	}
	return s.text
}

// compileCondition turns one raw YAML key/value into a typed Condition.
//
// Decision logic (first match wins):
//  1. "time" → a "HH:MM-HH:MM" window; wraps midnight when end < start.
//  2. "month" → a single month or a month list.
//  3. "<field>_range" → an inclusive [min, max] pair on <field>.
//  4. "features_include" → membership of a tag in the location features.
//  5. Boolean value → flag equality.
//  6. String starting with >, <, >=, <= → numeric comparison.
//  7. List value → list-OR equality.
//  8. Anything else → exact equality.
func compileCondition(key string, raw any) (Condition, error) {
	switch {
	case key == keyTime:
		s, ok := raw.(string)
		if !ok {
			return Condition{}, fmt.Errorf("time: expected \"HH:MM-HH:MM\" string, got %T", raw)
		}
		w, err := timeofday.ParseWindow(s)
		if err != nil {
			return Condition{}, fmt.Errorf("time: %w", err)
		}
		return Condition{Field: key, Kind: KindTime, Window: w}, nil

	case key == keyMonth:
		months, err := monthList(raw)
		if err != nil {
			return Condition{}, fmt.Errorf("month: %w", err)
		}
		return Condition{Field: key, Kind: KindMonth, Months: months}, nil

	case strings.HasSuffix(key, rangeSuffix):
		field := strings.TrimSuffix(key, rangeSuffix)
		bounds, ok := raw.([]any)
		if !ok || len(bounds) != 2 {
			return Condition{}, fmt.Errorf("%s: expected [min, max]", key)
		}
		lo, okLo := toNumber(bounds[0])
		hi, okHi := toNumber(bounds[1])
		if !okLo || !okHi {
			return Condition{}, fmt.Errorf("%s: bounds must be numeric", key)
		}
		if lo > hi {
			return Condition{}, fmt.Errorf("%s: min %v greater than max %v", key, lo, hi)
		}
		return Condition{Field: field, Kind: KindRange, Min: lo, Max: hi}, nil

	case key == keyFeature:
		s, ok := raw.(string)
		if !ok || s == "" {
			return Condition{}, fmt.Errorf("features_include: expected a feature tag")
		}
		return Condition{Field: fieldFeatures, Kind: KindFeature, Text: s}, nil
	}

	switch v := raw.(type) {
	case bool:
		return Condition{Field: key, Kind: KindFlag, Flag: v}, nil

	case string:
		if v != "" && strings.ContainsRune("<>", rune(v[0])) {
			op, n, err := parseComparison(v)
			if err != nil {
				return Condition{}, fmt.Errorf("%s: %w", key, err)
			}
			return Condition{Field: key, Kind: KindCompare, Op: op, Number: n}, nil
		}
		return Condition{Field: key, Kind: KindEqual, Any: []scalar{{text: v}}}, nil

	case []any:
		if len(v) == 0 {
			return Condition{}, fmt.Errorf("%s: empty list never matches", key)
		}
		items := make([]scalar, 0, len(v))
		for _, item := range v {
			s, err := toScalar(item)
			if err != nil {
				return Condition{}, fmt.Errorf("%s: %w", key, err)
			}
			items = append(items, s)
		}
		return Condition{Field: key, Kind: KindAnyOf, Any: items}, nil

	default:
		s, err := toScalar(v)
		if err != nil {
			return Condition{}, fmt.Errorf("%s: %w", key, err)
		}
		return Condition{Field: key, Kind: KindEqual, Any: []scalar{s}}, nil
	}
}

// parseComparison splits ">=35" into its operator and operand.
func parseComparison(s string) (Operator, float64, error) {
	var op Operator
	switch {
	case strings.HasPrefix(s, ">="):
		op = OpGreaterThanEq
	case strings.HasPrefix(s, "<="):
		op = OpLessThanEq
	case strings.HasPrefix(s, ">"):
		op = OpGreaterThan
	case strings.HasPrefix(s, "<"):
		op = OpLessThan
	default:
		return "", 0, fmt.Errorf("unknown comparison %q", s)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s[len(op):]), 64)
	if err != nil {
		return "", 0, fmt.Errorf("comparison %q: %w", s, err)
	}
	return op, n, nil
}

func monthList(raw any) ([]int, error) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	default:
		items = []any{v}
	}
	months := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := toNumber(item)
		if !ok || n != float64(int(n)) || n < 1 || n > 12 {
			return nil, fmt.Errorf("invalid month %v", item)
		}
		months = append(months, int(n))
	}
	return months, nil
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toScalar(v any) (scalar, error) {
	if s, ok := v.(string); ok {
		return scalar{text: s}, nil
	}
	if n, ok := toNumber(v); ok {
		return scalar{num: n, numeric: true}, nil
	}
	return scalar{}, fmt.Errorf("unsupported value %v (%T)", v, v)
}

// Matches evaluates the condition against ctx. A field that is unknown or
// has no value in ctx never matches.
func (c Condition) Matches(ctx types.SituationalContext) bool {
	switch c.Kind {
	case KindTime:
		return c.Window.Contains(timeofday.Of(ctx.Hour, ctx.Minute))
	case KindMonth:
		return slices.Contains(c.Months, ctx.Month)
	case KindFeature:
		return slices.Contains(ctx.Features, c.Text)
	}

	v, ok := resolve(c.Field, ctx)
	if !ok {
		return false
	}

	switch c.Kind {
	case KindCompare:
		if v.kind != valueNumber {
			return false
		}
		switch c.Op {
		case OpGreaterThan:
			return v.num > c.Number
		case OpGreaterThanEq:
			return v.num >= c.Number
		case OpLessThan:
			return v.num < c.Number
		case OpLessThanEq:
			return v.num <= c.Number
		}
		return false

	case KindRange:
		return v.kind == valueNumber && v.num >= c.Min && v.num <= c.Max

	case KindFlag:
		return v.kind == valueFlag && v.flag == c.Flag

	case KindAnyOf, KindEqual:
		return slices.ContainsFunc(c.Any, v.equals)
	}
	return false
}

func (c Condition) String() string {
	switch c.Kind {
	case KindCompare:
		return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Number)
	case KindRange:
		return fmt.Sprintf("%s in [%v, %v]", c.Field, c.Min, c.Max)
	case KindTime:
		return fmt.Sprintf("time in %s-%s", c.Window.Start, c.Window.End)
	case KindMonth:
		return fmt.Sprintf("month in %v", c.Months)
	case KindFeature:
		return fmt.Sprintf("features include %s", c.Text)
	case KindFlag:
		return fmt.Sprintf("%s == %t", c.Field, c.Flag)
	}
	parts := make([]string, len(c.Any))
	for i, s := range c.Any {
		parts[i] = s.String()
	}
	return fmt.Sprintf("%s in [%s]", c.Field, strings.Join(parts, ", "))
}

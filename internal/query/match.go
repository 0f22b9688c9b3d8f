// Package query evaluates the attribute-level comparison operators CRUD
// query patterns use (spec.md §4.4 rule 2, §6): numeric comparison with a
// string fallback, set membership, substring/like, and range.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nucleus/agentlang/internal/model"
)

// Match reports whether value satisfies op against operand.
func Match(op model.QueryOp, value, operand any) bool {
	switch op {
	case model.OpEq:
		return compareEq(value, operand)
	case model.OpNeq:
		return !compareEq(value, operand)
	case model.OpLt:
		return compareOrdered(value, operand, func(a, b float64) bool { return a < b }, func(a, b string) bool { return a < b })
	case model.OpLte:
		return compareOrdered(value, operand, func(a, b float64) bool { return a <= b }, func(a, b string) bool { return a <= b })
	case model.OpGt:
		return compareOrdered(value, operand, func(a, b float64) bool { return a > b }, func(a, b string) bool { return a > b })
	case model.OpGte:
		return compareOrdered(value, operand, func(a, b float64) bool { return a >= b }, func(a, b string) bool { return a >= b })
	case model.OpIn:
		return in(operand, value)
	case model.OpLike:
		return like(value, operand)
	case model.OpBetween:
		return between(value, operand)
	default:
		return false
	}
}

func compareEq(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func compareOrdered(a, b any, numCmp func(float64, float64) bool, strCmp func(string, string) bool) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return numCmp(af, bf)
		}
	}
	return strCmp(fmt.Sprint(a), fmt.Sprint(b))
}

// in reports whether value appears in operand, which must be an []any (or a
// single scalar, matched as a one-element set).
func in(operand, value any) bool {
	switch set := operand.(type) {
	case []any:
		for _, item := range set {
			if compareEq(item, value) {
				return true
			}
		}
		return false
	default:
		return compareEq(operand, value)
	}
}

// like implements a SQL-style LIKE with '%' wildcards, matched as a
// case-insensitive substring test when the pattern has no wildcard.
func like(value, pattern any) bool {
	v := strings.ToLower(fmt.Sprint(value))
	p := fmt.Sprint(pattern)
	if !strings.Contains(p, "%") {
		return v == strings.ToLower(p)
	}
	parts := strings.Split(strings.ToLower(p), "%")
	pos := 0
	for idx, part := range parts {
		if part == "" {
			continue
		}
		i := strings.Index(v[pos:], part)
		if i < 0 {
			return false
		}
		if idx == 0 && !strings.HasPrefix(p, "%") && i != 0 {
			return false
		}
		pos += i + len(part)
	}
	if !strings.HasSuffix(p, "%") && parts[len(parts)-1] != "" && pos != len(v) {
		return false
	}
	return true
}

// between expects operand to be a two-element []any [lo, hi], inclusive.
func between(value, operand any) bool {
	bounds, ok := operand.([]any)
	if !ok || len(bounds) != 2 {
		return false
	}
	return compareOrdered(value, bounds[0], func(a, b float64) bool { return a >= b }, func(a, b string) bool { return a >= b }) &&
		compareOrdered(value, bounds[1], func(a, b float64) bool { return a <= b }, func(a, b string) bool { return a <= b })
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// MatchesAll reports whether inst's attributes satisfy every query
// attribute/operator pair in queryAttrs/ops.
func MatchesAll(attrs *model.Attrs, queryAttrs *model.Attrs, ops map[string]model.QueryOp) bool {
	for _, name := range queryAttrs.Keys() {
		operand, _ := queryAttrs.Get(name)
		op, ok := ops[name]
		if !ok {
			op = model.OpEq
		}
		value, present := attrs.Get(name)
		if !present {
			return false
		}
		if !Match(op, value, operand) {
			return false
		}
	}
	return true
}

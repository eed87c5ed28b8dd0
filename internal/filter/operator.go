package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jacoelho/rowmap/internal/number"
	"github.com/jacoelho/rowmap/internal/value"
)

// Operator names a comparison between a row value and a comparand.
type Operator string

const (
	OpEq         Operator = "eq"
	OpNeq        Operator = "neq"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpMatches    Operator = "matches"
)

var supportedOperators = []Operator{
	OpEq,
	OpNeq,
	OpGt,
	OpGte,
	OpLt,
	OpLte,
	OpContains,
	OpStartsWith,
	OpEndsWith,
	OpMatches,
}

// Operators lists every supported operator.
func Operators() []Operator {
	return slices.Clone(supportedOperators)
}

// ParseOperator returns the operator named by input.
func ParseOperator(input string) (Operator, error) {
	op := Operator(input)
	if slices.Contains(supportedOperators, op) {
		return op, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedOperator, input)
}

// operand is a value that may be absent: a missing column or an omitted comparand.
type operand struct {
	value   any
	defined bool
}

func (o operand) text() string {
	if !o.defined {
		return ""
	}
	return value.Text(o.value)
}

type comparison func(actual, expected operand) bool

var comparisons = map[Operator]comparison{
	OpEq:  equals,
	OpNeq: func(actual, expected operand) bool { return !equals(actual, expected) },
	OpGt:  ordered(func(c int) bool { return c > 0 }),
	OpGte: ordered(func(c int) bool { return c >= 0 }),
	OpLt:  ordered(func(c int) bool { return c < 0 }),
	OpLte: ordered(func(c int) bool { return c <= 0 }),

	OpContains:   textual(strings.Contains),
	OpStartsWith: textual(strings.HasPrefix),
	OpEndsWith:   textual(strings.HasSuffix),
}

func equals(actual, expected operand) bool {
	if !actual.defined || !expected.defined {
		return actual.defined == expected.defined
	}
	return value.Equal(actual.value, expected.value)
}

// ordered compares numerically when both sides are numbers, by text otherwise.
func ordered(accept func(int) bool) comparison {
	return func(actual, expected operand) bool {
		if actual.defined != expected.defined {
			return false
		}
		return accept(compareOperands(actual, expected))
	}
}

func compareOperands(actual, expected operand) int {
	if actual.defined {
		a, aIsNumber := number.ToFloat64(actual.value)
		b, bIsNumber := number.ToFloat64(expected.value)
		if aIsNumber && bIsNumber {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(actual.text(), expected.text())
}

func textual(test func(s, substr string) bool) comparison {
	return func(actual, expected operand) bool {
		if actual.defined != expected.defined {
			return false
		}
		return test(actual.text(), expected.text())
	}
}

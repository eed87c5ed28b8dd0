// Package filter keeps the rows satisfying every condition of a list.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jacoelho/rowmap/internal/projection"
	"github.com/jacoelho/rowmap/internal/value"
)

var (
	// ErrInvalidCondition is returned for a condition without a field or with an unusable comparand.
	ErrInvalidCondition = errors.New("invalid filter condition")
	// ErrUnsupportedOperator is returned for an operator outside Operators.
	ErrUnsupportedOperator = errors.New("unsupported filter operator")
)

// Condition compares the output column Field with Value. HasValue is false
// when the comparand was omitted, which is distinct from a null comparand.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
	HasValue bool
}

type conditionJSON struct {
	Field    string          `json:"field"`
	Operator Operator        `json:"operator"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// UnmarshalJSON records whether "value" was present.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw conditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Condition{Field: raw.Field, Operator: raw.Operator}
	if len(raw.Value) == 0 {
		return nil
	}

	v, err := value.DecodeBytes(raw.Value)
	if err != nil {
		return fmt.Errorf("condition %q: %w", raw.Field, err)
	}
	c.Value = v
	c.HasValue = true

	return nil
}

// MarshalJSON omits "value" when the comparand is absent.
func (c Condition) MarshalJSON() ([]byte, error) {
	out := conditionJSON{Field: c.Field, Operator: c.Operator}
	if c.HasValue {
		encoded, err := value.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		out.Value = encoded
	}
	return json.Marshal(out)
}

// Validate checks the condition shape without compiling it.
func (c Condition) Validate() error {
	_, err := compile(c, defaultRegexCompiler)
	return err
}

type compiledCondition struct {
	field    string
	expected operand
	compare  comparison
}

func compile(c Condition, compiler regexCompiler) (compiledCondition, error) {
	field := strings.TrimSpace(c.Field)
	if field == "" {
		return compiledCondition{}, fmt.Errorf("%w: field is required", ErrInvalidCondition)
	}

	if _, err := ParseOperator(string(c.Operator)); err != nil {
		return compiledCondition{}, fmt.Errorf("condition on %q: %w", field, err)
	}

	compiled := compiledCondition{
		field:    field,
		expected: operand{value: c.Value, defined: c.HasValue},
	}

	if c.Operator == OpMatches {
		pattern, ok := c.Value.(string)
		if !c.HasValue || !ok {
			return compiledCondition{}, fmt.Errorf("%w: %q on %q requires a string pattern", ErrInvalidCondition, OpMatches, field)
		}
		re, err := compiler.Compile(pattern)
		if err != nil {
			return compiledCondition{}, err
		}
		compiled.compare = matcher(re)
		return compiled, nil
	}

	compiled.compare = comparisons[c.Operator]
	return compiled, nil
}

func (c compiledCondition) match(row projection.Row) bool {
	actual, ok := row.Get(c.field)
	return c.compare(operand{value: actual, defined: ok}, c.expected)
}

// Filter is a compiled, immutable condition list combined with AND.
type Filter struct {
	conditions []compiledCondition
}

// New compiles conditions. An empty list yields a filter that keeps every row.
func New(conditions []Condition) (*Filter, error) {
	compiled := make([]compiledCondition, 0, len(conditions))
	for i, condition := range conditions {
		c, err := compile(condition, defaultRegexCompiler)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		compiled = append(compiled, c)
	}

	return &Filter{conditions: compiled}, nil
}

// Match reports whether row satisfies every condition.
func (f *Filter) Match(row projection.Row) bool {
	for _, condition := range f.conditions {
		if !condition.match(row) {
			return false
		}
	}
	return true
}

// Apply returns the matching rows in their original order.
func (f *Filter) Apply(rows []projection.Row) []projection.Row {
	if len(f.conditions) == 0 {
		return rows
	}

	out := make([]projection.Row, 0, len(rows))
	for _, row := range rows {
		if f.Match(row) {
			out = append(out, row)
		}
	}
	return out
}

// Apply compiles conditions and filters rows in one step.
func Apply(rows []projection.Row, conditions []Condition) ([]projection.Row, error) {
	f, err := New(conditions)
	if err != nil {
		return nil, err
	}
	return f.Apply(rows), nil
}

// Package sorting orders rows by a single output column.
package sorting

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jacoelho/rowmap/internal/number"
	"github.com/jacoelho/rowmap/internal/projection"
	"github.com/jacoelho/rowmap/internal/value"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ErrInvalidSpec is returned for a sort spec without a field or with an unknown order.
var ErrInvalidSpec = errors.New("invalid sort spec")

// Spec selects the column and direction. An empty Order means ascending.
type Spec struct {
	Field string `json:"field"`
	Order Order  `json:"order,omitempty"`
}

// Validate checks the spec.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Field) == "" {
		return fmt.Errorf("%w: field is required", ErrInvalidSpec)
	}

	switch s.Order {
	case "", Asc, Desc:
		return nil
	default:
		return fmt.Errorf("%w: order must be %q or %q, got %q", ErrInvalidSpec, Asc, Desc, s.Order)
	}
}

// Sort returns a stably sorted copy of rows. A nil spec returns rows unchanged.
//
// Two numbers compare numerically; anything else compares as text under the
// root-locale collation, with a missing column sorting as empty text.
func Sort(rows []projection.Row, spec *Spec) ([]projection.Row, error) {
	if spec == nil {
		return rows, nil
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	field := strings.TrimSpace(spec.Field)
	direction := 1
	if spec.Order == Desc {
		direction = -1
	}

	// Collators keep scratch buffers, so each call gets its own.
	collator := collate.New(language.Und)

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b projection.Row) int {
		return direction * compare(collator, a, b, field)
	})

	return sorted, nil
}

func compare(collator *collate.Collator, a, b projection.Row, field string) int {
	av, aok := a.Get(field)
	bv, bok := b.Get(field)

	if aok && bok {
		an, aIsNumber := number.ToFloat64(av)
		bn, bIsNumber := number.ToFloat64(bv)
		if aIsNumber && bIsNumber {
			return cmp.Compare(an, bn)
		}
	}

	at, bt := text(av, aok), text(bv, bok)
	if c := collator.CompareString(at, bt); c != 0 {
		return c
	}
	return strings.Compare(at, bt)
}

func text(v any, ok bool) string {
	if !ok {
		return ""
	}
	return value.Text(v)
}

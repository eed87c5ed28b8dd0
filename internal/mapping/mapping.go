// Package mapping composes projection, filtering, sorting and pagination into
// a single evaluation of mapping rules against a document.
package mapping

import (
	"errors"
	"fmt"

	"github.com/jacoelho/rowmap/internal/filter"
	"github.com/jacoelho/rowmap/internal/paginate"
	"github.com/jacoelho/rowmap/internal/projection"
	"github.com/jacoelho/rowmap/internal/sorting"
)

// ErrInvalidRules wraps every structural problem found in mapping or filter rules.
var ErrInvalidRules = errors.New("invalid mapping rules")

// Rules is the ordered field list producing the output columns.
type Rules struct {
	Fields []projection.Field `json:"fields"`
}

// Query narrows, orders and windows the projected rows. StartIndex and Limit
// hold decoded JSON values so that invalid input can be reported rather than coerced.
type Query struct {
	Conditions []filter.Condition `json:"conditions,omitempty"`
	Sort       *sorting.Spec      `json:"sort,omitempty"`
	StartIndex any                `json:"startIndex,omitempty"`
	Limit      any                `json:"limit,omitempty"`
}

// Plan is a validated, reusable evaluation. It holds no mutable state and can
// be applied concurrently to different documents.
type Plan struct {
	projector *projection.Projector
	filter    *filter.Filter
	sort      *sorting.Spec
	page      paginate.Page
}

// Compile validates rules and query. A nil query means no filtering, the
// original order and every row.
func Compile(rules Rules, query *Query) (*Plan, error) {
	projector, err := projection.New(rules.Fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}

	if query == nil {
		query = &Query{}
	}

	f, err := filter.New(query.Conditions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}

	if query.Sort != nil {
		if err := query.Sort.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
		}
	}

	page, err := paginate.FromValues(query.StartIndex, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}

	return &Plan{
		projector: projector,
		filter:    f,
		sort:      query.Sort,
		page:      page,
	}, nil
}

// Page returns the pagination of the plan.
func (p *Plan) Page() paginate.Page {
	return p.page
}

// WithPage returns a copy of the plan using page instead.
func (p *Plan) WithPage(page paginate.Page) (*Plan, error) {
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}

	out := *p
	out.page = page
	return &out, nil
}

// Apply runs project, filter, sort and paginate over document.
func (p *Plan) Apply(document any) ([]projection.Row, error) {
	rows, err := p.projector.Project(document)
	if err != nil {
		return nil, err
	}

	rows = p.filter.Apply(rows)

	rows, err = sorting.Sort(rows, p.sort)
	if err != nil {
		return nil, err
	}

	return paginate.Apply(rows, p.page)
}

// Apply compiles rules and query and evaluates them against document.
func Apply(document any, rules Rules, query *Query) ([]projection.Row, error) {
	plan, err := Compile(rules, query)
	if err != nil {
		return nil, err
	}
	return plan.Apply(document)
}

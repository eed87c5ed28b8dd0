// Package paginate slices an ordered row sequence by offset and count.
package paginate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacoelho/rowmap/internal/number"
)

// ErrInvalidPagination is returned for negative or non-integer offsets and limits.
var ErrInvalidPagination = errors.New("invalid pagination")

// Page selects at most Limit rows starting at Start. A nil Limit means every remaining row.
type Page struct {
	Start int
	Limit *int
}

// Validate rejects negative values.
func (p Page) Validate() error {
	if p.Start < 0 {
		return fmt.Errorf("%w: startIndex must be >= 0, got %d", ErrInvalidPagination, p.Start)
	}
	if p.Limit != nil && *p.Limit < 0 {
		return fmt.Errorf("%w: limit must be >= 0, got %d", ErrInvalidPagination, *p.Limit)
	}
	return nil
}

// FromValues builds a page from decoded JSON values. nil means absent.
func FromValues(start, limit any) (Page, error) {
	var page Page

	if start != nil {
		n, err := number.ToIndex(start)
		if err != nil {
			return Page{}, fmt.Errorf("%w: startIndex: %w", ErrInvalidPagination, err)
		}
		page.Start = n
	}

	if limit != nil {
		n, err := number.ToIndex(limit)
		if err != nil {
			return Page{}, fmt.Errorf("%w: limit: %w", ErrInvalidPagination, err)
		}
		page.Limit = &n
	}

	return page, nil
}

// Merge overrides p with text values such as query-string parameters.
// Empty text leaves the corresponding field of p untouched.
func (p Page) Merge(start, limit string) (Page, error) {
	out := p

	if strings.TrimSpace(start) != "" {
		n, err := number.ParseIndex(start)
		if err != nil {
			return Page{}, fmt.Errorf("%w: startIndex: %w", ErrInvalidPagination, err)
		}
		out.Start = n
	}

	if strings.TrimSpace(limit) != "" {
		n, err := number.ParseIndex(limit)
		if err != nil {
			return Page{}, fmt.Errorf("%w: limit: %w", ErrInvalidPagination, err)
		}
		out.Limit = &n
	}

	return out, nil
}

// Apply returns the window of rows selected by page. The result shares the backing array of rows.
func Apply[T any](rows []T, page Page) ([]T, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	if page.Start >= len(rows) {
		return rows[len(rows):], nil
	}

	end := len(rows)
	if page.Limit != nil && *page.Limit < end-page.Start {
		end = page.Start + *page.Limit
	}

	return rows[page.Start:end], nil
}

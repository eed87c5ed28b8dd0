package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jacoelho/rowmap/internal/filter"
	"github.com/jacoelho/rowmap/internal/mapping"
	"github.com/jacoelho/rowmap/internal/paginate"
	"github.com/jacoelho/rowmap/internal/source"
	"github.com/jacoelho/rowmap/internal/store"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid_rules", err: fmt.Errorf("%w: %w", mapping.ErrInvalidRules, filter.ErrUnsupportedOperator), want: http.StatusBadRequest},
		{name: "pagination", err: paginate.ErrInvalidPagination, want: http.StatusBadRequest},
		{name: "unsupported_source", err: source.ErrUnsupportedSource, want: http.StatusBadRequest},
		{name: "document_missing", err: fmt.Errorf("%w: key", source.ErrNotFound), want: http.StatusNotFound},
		{name: "config_missing", err: store.ErrNotFound, want: http.StatusNotFound},
		{name: "bad_config_id", err: store.ErrInvalidID, want: http.StatusNotFound},
		{name: "redis_down", err: source.ErrUnavailable, want: http.StatusServiceUnavailable},
		{name: "store_down", err: store.ErrUnavailable, want: http.StatusServiceUnavailable},
		{name: "id_taken", err: store.ErrConflict, want: http.StatusConflict},
		{name: "upstream_body", err: source.ErrInvalidDocument, want: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "explicit", err: fmt.Errorf("wrapped: %w", NotFound("nope")), want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Fatalf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Fatal("From(nil) should be nil")
	}

	cause := fmt.Errorf("%w: key orders", source.ErrNotFound)
	got := From(cause)
	if got.Code != http.StatusNotFound {
		t.Fatalf("From().Code = %d, want 404", got.Code)
	}
	if got.Message != cause.Error() {
		t.Fatalf("From().Message = %q, want %q", got.Message, cause.Error())
	}
	if !errors.Is(got, source.ErrNotFound) {
		t.Fatal("From() should unwrap to the cause")
	}

	explicit := BadRequest("bad")
	if From(explicit) != explicit {
		t.Fatal("From() should return an existing *Error unchanged")
	}
}

func TestIsInvalidInput(t *testing.T) {
	if !IsInvalidInput(mapping.ErrInvalidRules) {
		t.Fatal("ErrInvalidRules should be invalid input")
	}
	if IsInvalidInput(store.ErrUnavailable) {
		t.Fatal("ErrUnavailable should not be invalid input")
	}
}

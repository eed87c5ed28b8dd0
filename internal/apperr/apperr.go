// Package apperr classifies domain errors into HTTP statuses and exit codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jacoelho/rowmap/internal/filter"
	"github.com/jacoelho/rowmap/internal/mapping"
	"github.com/jacoelho/rowmap/internal/paginate"
	"github.com/jacoelho/rowmap/internal/path"
	"github.com/jacoelho/rowmap/internal/projection"
	"github.com/jacoelho/rowmap/internal/sorting"
	"github.com/jacoelho/rowmap/internal/source"
	"github.com/jacoelho/rowmap/internal/store"
	"github.com/jacoelho/rowmap/internal/value"
)

// Error is an error with the HTTP status it should be reported with.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message, nil)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message, nil)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, "internal server error", err)
}

var (
	invalidInput = []error{
		mapping.ErrInvalidRules,
		projection.ErrInvalidField,
		projection.ErrInvalidDocument,
		filter.ErrInvalidCondition,
		filter.ErrUnsupportedOperator,
		sorting.ErrInvalidSpec,
		paginate.ErrInvalidPagination,
		path.ErrInvalidExpression,
		value.ErrDecode,
		source.ErrInvalidSource,
		source.ErrUnsupportedSource,
	}
	notFound = []error{
		source.ErrNotFound,
		store.ErrNotFound,
		store.ErrInvalidID,
	}
	unavailable = []error{
		source.ErrUnavailable,
		store.ErrUnavailable,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Status returns the HTTP status for err.
func Status(err error) int {
	var appErr *Error
	switch {
	case errors.As(err, &appErr):
		return appErr.Code
	case isAny(err, invalidInput):
		return http.StatusBadRequest
	case isAny(err, notFound):
		return http.StatusNotFound
	case isAny(err, unavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// From wraps err as an *Error, keeping the message of an existing one.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	return New(Status(err), err.Error(), err)
}

// IsInvalidInput reports whether err was caused by the caller's input.
func IsInvalidInput(err error) bool {
	return Status(err) == http.StatusBadRequest
}

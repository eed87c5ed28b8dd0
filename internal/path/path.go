package path

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theory/jsonpath"
)

const (
	// Wildcard is the segment matching every element of an array.
	Wildcard = "*"
	// RootMarker prefixes expressions evaluated against the whole document.
	RootMarker = "$"

	separator = "."
)

// ErrInvalidExpression is returned when a $-rooted query cannot be parsed.
var ErrInvalidExpression = errors.New("invalid path expression")

type segmentKind uint8

const (
	segmentKey segmentKind = iota
	segmentIndex
	segmentWildcard
)

type segment struct {
	kind  segmentKind
	text  string
	index int
}

// Expr is a compiled path expression. The zero value has no segments and
// resolves to the value it is applied to.
type Expr struct {
	raw      string
	segments []segment
	query    *jsonpath.Path
}

// Compile parses expr. Dotted paths always compile; only $-rooted queries can fail.
func Compile(expr string) (Expr, error) {
	if strings.HasPrefix(expr, RootMarker) {
		query, err := jsonpath.Parse(expr)
		if err != nil {
			return Expr{}, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, expr, err)
		}
		return Expr{raw: expr, query: query}, nil
	}

	if expr == "" {
		return Expr{}, nil
	}

	parts := strings.Split(expr, separator)
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		segments = append(segments, parseSegment(part))
	}

	return Expr{raw: expr, segments: segments}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) Expr {
	compiled, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return compiled
}

func parseSegment(text string) segment {
	if text == Wildcard {
		return segment{kind: segmentWildcard, text: text}
	}

	if index, ok := parseIndex(text); ok {
		return segment{kind: segmentIndex, text: text, index: index}
	}

	return segment{kind: segmentKey, text: text}
}

// parseIndex accepts canonical non-negative decimals only, so "01" stays a key.
func parseIndex(text string) (int, bool) {
	if text == "" || (len(text) > 1 && text[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return 0, false
		}
	}

	index, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return index, true
}

// String returns the source text of the expression.
func (e Expr) String() string {
	return e.raw
}

// Rooted reports whether the expression addresses the whole document.
func (e Expr) Rooted() bool {
	return e.query != nil
}

// Wildcards returns the number of wildcard segments of a dotted expression.
func (e Expr) Wildcards() int {
	count := 0
	for _, seg := range e.segments {
		if seg.kind == segmentWildcard {
			count++
		}
	}
	return count
}

// ColumnName names the column holding one expanded value. For dotted paths the
// k-th wildcard segment is replaced by indexes[k]; rooted queries get the
// indexes appended.
func (e Expr) ColumnName(indexes []int) string {
	if e.query != nil || e.Wildcards() == 0 {
		return appendIndexes(e.raw, indexes)
	}

	parts := make([]string, len(e.segments))
	next := 0
	for i, seg := range e.segments {
		if seg.kind == segmentWildcard && next < len(indexes) {
			parts[i] = strconv.Itoa(indexes[next])
			next++
			continue
		}
		parts[i] = seg.text
	}

	return appendIndexes(strings.Join(parts, separator), indexes[next:])
}

func appendIndexes(name string, indexes []int) string {
	if len(indexes) == 0 {
		return name
	}

	var b strings.Builder
	b.WriteString(name)
	for _, index := range indexes {
		b.WriteString(separator)
		b.WriteString(strconv.Itoa(index))
	}
	return b.String()
}

// Package projection turns a JSON document into flat rows using an ordered list of fields.
package projection

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/jacoelho/rowmap/internal/number"
	"github.com/jacoelho/rowmap/internal/path"
)

// Spread is the field path that copies every key of the current item into the row.
const Spread = "*"

var (
	// ErrInvalidField is returned for a field that cannot be compiled.
	ErrInvalidField = errors.New("invalid mapping field")
	// ErrInvalidDocument is returned for documents that are neither an object nor an array.
	ErrInvalidDocument = errors.New("document must be a JSON object or array")
)

// Field describes one output column, or the spread marker.
type Field struct {
	Path  string `json:"path"`
	Alias string `json:"alias,omitempty"`
}

// Column returns the output column name: the alias when present, the path otherwise.
func (f Field) Column() string {
	if alias := strings.TrimSpace(f.Alias); alias != "" {
		return alias
	}
	return strings.TrimSpace(f.Path)
}

// Row is one flattened output record keyed by column name.
type Row map[string]any

// Get returns the value of column and whether the column is present.
func (r Row) Get(column string) (any, bool) {
	v, ok := r[column]
	return v, ok
}

type compiledField struct {
	spread bool
	alias  string
	column string
	expr   path.Expr
}

// Projector evaluates a fixed field list against documents. It holds no mutable
// state and is safe for concurrent use.
type Projector struct {
	fields []compiledField
}

// New compiles fields. Paths and aliases are trimmed; an empty alias means no alias.
func New(fields []Field) (*Projector, error) {
	compiled := make([]compiledField, 0, len(fields))

	for i, field := range fields {
		p := strings.TrimSpace(field.Path)
		if p == "" {
			return nil, fmt.Errorf("%w: field %d has an empty path", ErrInvalidField, i)
		}

		if p == Spread {
			compiled = append(compiled, compiledField{spread: true})
			continue
		}

		expr, err := path.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d: %w", ErrInvalidField, i, err)
		}

		alias := strings.TrimSpace(field.Alias)
		compiled = append(compiled, compiledField{
			alias:  alias,
			column: Field{Path: p, Alias: alias}.Column(),
			expr:   expr,
		})
	}

	return &Projector{fields: compiled}, nil
}

// Project compiles fields and projects document in one step.
func Project(document any, fields []Field) ([]Row, error) {
	p, err := New(fields)
	if err != nil {
		return nil, err
	}
	return p.Project(document)
}

// Project builds one row per array element, or a single row for an object document.
// Rows without any column are dropped.
func (p *Projector) Project(document any) ([]Row, error) {
	switch doc := document.(type) {
	case []any:
		rows := make([]Row, 0, len(doc))
		for _, item := range doc {
			if row, ok := p.row(document, item); ok {
				rows = append(rows, row)
			}
		}
		return rows, nil

	case map[string]any:
		rows := make([]Row, 0, 1)
		if row, ok := p.row(document, doc); ok {
			rows = append(rows, row)
		}
		return rows, nil

	default:
		return nil, fmt.Errorf("%w: got %s", ErrInvalidDocument, kindOf(document))
	}
}

func (p *Projector) row(document, item any) (Row, bool) {
	row := make(Row, len(p.fields))
	populated := false

	for _, field := range p.fields {
		if field.spread {
			if object, ok := item.(map[string]any); ok {
				maps.Copy(row, object)
				populated = true
			}
			continue
		}

		target := item
		if field.expr.Rooted() {
			target = document
		}

		result := field.expr.Resolve(target)
		switch result.Kind {
		case path.Defined:
			row[field.column] = result.Value
			populated = true
		case path.Sequence:
			if field.expand(row, result.Items, nil) {
				populated = true
			}
		}
	}

	return row, populated
}

// expand writes one column per defined element, skipping undefined ones.
func (f compiledField) expand(row Row, items []path.Result, indexes []int) bool {
	assigned := false

	for i, item := range items {
		current := append(indexes[:len(indexes):len(indexes)], i)

		switch item.Kind {
		case path.Defined:
			row[f.columnFor(current)] = item.Value
			assigned = true
		case path.Sequence:
			if f.expand(row, item.Items, current) {
				assigned = true
			}
		}
	}

	return assigned
}

func (f compiledField) columnFor(indexes []int) string {
	if f.alias == "" {
		return f.expr.ColumnName(indexes)
	}

	parts := make([]string, 0, len(indexes)+1)
	parts = append(parts, f.alias)
	for _, index := range indexes {
		parts = append(parts, strconv.Itoa(index))
	}
	return strings.Join(parts, ".")
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if number.IsNumber(v) {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

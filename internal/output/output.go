// Package output renders projected rows for the command line.
package output

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/jacoelho/rowmap/internal/projection"
	"github.com/jacoelho/rowmap/internal/value"
)

// Format represents the output format for rows.
type Format int

const (
	FormatJSON Format = iota
	FormatTable
)

var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts "json" and "table".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "table":
		return FormatTable, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func (f Format) String() string {
	if f == FormatTable {
		return "table"
	}
	return "json"
}

// Write renders rows to w in the given format.
func Write(w io.Writer, format Format, rows []projection.Row) error {
	switch format {
	case FormatTable:
		return writeTable(w, rows)
	case FormatJSON:
		fallthrough
	default:
		return writeJSON(w, rows)
	}
}

func writeJSON(w io.Writer, rows []projection.Row) error {
	if rows == nil {
		rows = []projection.Row{}
	}

	data, err := value.MarshalIndent(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// Columns returns the sorted union of the column names of rows.
func Columns(rows []projection.Row) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for column := range row {
			seen[column] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for column := range seen {
		columns = append(columns, column)
	}
	slices.Sort(columns)
	return columns
}

func writeTable(w io.Writer, rows []projection.Row) error {
	columns := Columns(rows)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(columns, "\t"))

	cells := make([]string, len(columns))
	for _, row := range rows {
		for i, column := range columns {
			cells[i] = cell(row, column)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	fmt.Fprintf(tw, "(%d rows)\n", len(rows))
	return tw.Flush()
}

// cell leaves missing columns blank, unlike an explicit null.
func cell(row projection.Row, column string) string {
	v, ok := row[column]
	if !ok {
		return ""
	}
	text := value.Text(v)
	return strings.NewReplacer("\t", " ", "\n", " ").Replace(text)
}

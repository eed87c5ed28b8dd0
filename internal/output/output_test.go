package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/rowmap/internal/projection"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatJSON},
		{input: "json", want: FormatJSON},
		{input: "TABLE", want: FormatTable},
		{input: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Fatalf("ParseFormat() error = %v, want ErrUnknownFormat", err)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("ParseFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	rows := []projection.Row{{"name": "B", "s": json.Number("90")}}

	require.NoError(t, Write(&buf, FormatJSON, rows))
	assert.JSONEq(t, `[{"name":"B","s":90}]`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, nil))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	rows := []projection.Row{
		{"name": "A", "s": json.Number("50")},
		{"name": "B", "tags": []any{"x"}, "s": nil},
	}

	require.NoError(t, Write(&buf, FormatTable, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"name", "s", "tags"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"A", "50"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"B", "null", `["x"]`}, strings.Fields(lines[2]))
	assert.Equal(t, "(2 rows)", lines[3])
}

func TestColumns(t *testing.T) {
	got := Columns([]projection.Row{{"b": 1}, {"a": 1, "b": 2}})
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Empty(t, Columns(nil))
}

package sorting

import (
	"encoding/json"
	"testing"

	"github.com/jacoelho/rowmap/internal/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func column(rows []projection.Row, name string) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row[name]
	}
	return out
}

func TestSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rows  []projection.Row
		spec  *Spec
		field string
		want  []any
	}{
		{
			name:  "numeric_ascending",
			rows:  []projection.Row{{"s": json.Number("10")}, {"s": json.Number("9")}, {"s": json.Number("100")}},
			spec:  &Spec{Field: "s"},
			field: "s",
			want:  []any{json.Number("9"), json.Number("10"), json.Number("100")},
		},
		{
			name:  "numeric_descending",
			rows:  []projection.Row{{"s": 50.0}, {"s": 90.0}, {"s": 75.0}},
			spec:  &Spec{Field: "s", Order: Desc},
			field: "s",
			want:  []any{90.0, 75.0, 50.0},
		},
		{
			name:  "numeric_strings_are_text",
			rows:  []projection.Row{{"s": "10"}, {"s": "9"}},
			spec:  &Spec{Field: "s", Order: Asc},
			field: "s",
			want:  []any{"10", "9"},
		},
		{
			name:  "collation_ignores_case_first",
			rows:  []projection.Row{{"n": "banana"}, {"n": "Apple"}, {"n": "cherry"}},
			spec:  &Spec{Field: "n"},
			field: "n",
			want:  []any{"Apple", "banana", "cherry"},
		},
		{
			name:  "accented_letters_sort_with_base_letter",
			rows:  []projection.Row{{"n": "zebra"}, {"n": "éclair"}, {"n": "apple"}},
			spec:  &Spec{Field: "n"},
			field: "n",
			want:  []any{"apple", "éclair", "zebra"},
		},
		{
			name:  "missing_sorts_as_empty_text",
			rows:  []projection.Row{{"n": "b"}, {}, {"n": "a"}},
			spec:  &Spec{Field: "n"},
			field: "n",
			want:  []any{nil, "a", "b"},
		},
		{
			name:  "nil_spec_is_identity",
			rows:  []projection.Row{{"n": "b"}, {"n": "a"}},
			field: "n",
			want:  []any{"b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sort(tt.rows, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, column(got, tt.field))
		})
	}
}

func TestSortStable(t *testing.T) {
	t.Parallel()

	rows := []projection.Row{
		{"k": 1.0, "id": "a"},
		{"k": 2.0, "id": "b"},
		{"k": 1.0, "id": "c"},
		{"k": 2.0, "id": "d"},
		{"k": 1.0, "id": "e"},
	}

	asc, err := Sort(rows, &Spec{Field: "k"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "c", "e", "b", "d"}, column(asc, "id"))

	desc, err := Sort(rows, &Spec{Field: "k", Order: Desc})
	require.NoError(t, err)
	assert.Equal(t, []any{"b", "d", "a", "c", "e"}, column(desc, "id"))

	assert.Equal(t, []any{"a", "b", "c", "d", "e"}, column(rows, "id"), "input must not be reordered")
}

func TestSpecValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{name: "asc", spec: Spec{Field: "a", Order: Asc}},
		{name: "desc", spec: Spec{Field: "a", Order: Desc}},
		{name: "default_order", spec: Spec{Field: "a"}},
		{name: "empty_field", spec: Spec{Order: Asc}, wantErr: true},
		{name: "unknown_order", spec: Spec{Field: "a", Order: "up"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSpec)
				_, sortErr := Sort(nil, &tt.spec)
				assert.ErrorIs(t, sortErr, ErrInvalidSpec)
				return
			}
			assert.NoError(t, err)
		})
	}
}

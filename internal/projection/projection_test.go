package projection

import (
	"errors"
	"testing"

	"github.com/jacoelho/rowmap/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, doc string) any {
	t.Helper()

	v, err := value.DecodeBytes([]byte(doc))
	require.NoError(t, err)
	return v
}

// rowsJSON renders rows so expectations can be written as JSON literals.
func rowsJSON(t *testing.T, rows []Row) string {
	t.Helper()

	encoded, err := value.Marshal(rows)
	require.NoError(t, err)
	return string(encoded)
}

func TestProject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		document string
		fields   []Field
		want     string
	}{
		{
			name:     "array_with_alias",
			document: `[{"id":1,"name":"A","score":50},{"id":2,"name":"B","score":90}]`,
			fields:   []Field{{Path: "name"}, {Path: "score", Alias: "s"}},
			want:     `[{"name":"A","s":50},{"name":"B","s":90}]`,
		},
		{
			name:     "single_object",
			document: `{"user":{"name":"Ada","age":36}}`,
			fields:   []Field{{Path: "user.name", Alias: "name"}, {Path: "user.age"}},
			want:     `[{"name":"Ada","user.age":36}]`,
		},
		{
			name:     "spread",
			document: `{"a":1,"b":2}`,
			fields:   []Field{{Path: "*"}},
			want:     `[{"a":1,"b":2}]`,
		},
		{
			name:     "spread_then_override",
			document: `[{"a":1,"b":{"c":3}}]`,
			fields:   []Field{{Path: "*"}, {Path: "b.c", Alias: "a"}},
			want:     `[{"a":3,"b":{"c":3}}]`,
		},
		{
			name:     "field_then_spread_overwrites",
			document: `[{"a":1,"b":2}]`,
			fields:   []Field{{Path: "b", Alias: "a"}, {Path: "*"}},
			want:     `[{"a":1,"b":2}]`,
		},
		{
			name:     "rows_without_columns_are_dropped",
			document: `[{"name":"A"},{"other":true},{"name":"C"}]`,
			fields:   []Field{{Path: "name"}},
			want:     `[{"name":"A"},{"name":"C"}]`,
		},
		{
			name:     "null_is_kept",
			document: `[{"name":null}]`,
			fields:   []Field{{Path: "name"}},
			want:     `[{"name":null}]`,
		},
		{
			name:     "wildcard_expansion",
			document: `{"items":[{"name":"x"},{"qty":1},{"name":"z"}]}`,
			fields:   []Field{{Path: "items.*.name"}},
			want:     `[{"items.0.name":"x","items.2.name":"z"}]`,
		},
		{
			name:     "wildcard_with_alias_is_index_qualified",
			document: `{"items":[{"name":"x"},{"name":"y"}]}`,
			fields:   []Field{{Path: "items.*.name", Alias: "n"}},
			want:     `[{"n.0":"x","n.1":"y"}]`,
		},
		{
			name:     "chained_wildcards",
			document: `{"a":[{"b":[{"c":1},{"c":2}]},{"b":[{"c":3}]}]}`,
			fields:   []Field{{Path: "a.*.b.*.c"}},
			want:     `[{"a.0.b.0.c":1,"a.0.b.1.c":2,"a.1.b.0.c":3}]`,
		},
		{
			name:     "wildcard_per_item",
			document: `[{"id":1,"tags":["a","b"]},{"id":2,"tags":[]}]`,
			fields:   []Field{{Path: "id"}, {Path: "tags.*"}},
			want:     `[{"id":1,"tags.0":"a","tags.1":"b"},{"id":2}]`,
		},
		{
			name:     "empty_expansion_alone_drops_row",
			document: `[{"tags":[]},{"tags":["x"]}]`,
			fields:   []Field{{Path: "tags.*"}},
			want:     `[{"tags.0":"x"}]`,
		},
		{
			name:     "rooted_field_reads_whole_document",
			document: `[{"id":1},{"id":2}]`,
			fields:   []Field{{Path: "id"}, {Path: "$[0].id", Alias: "first"}},
			want:     `[{"first":1,"id":1},{"first":1,"id":2}]`,
		},
		{
			name:     "trimmed_path_and_blank_alias",
			document: `[{"name":"A"}]`,
			fields:   []Field{{Path: "  name ", Alias: "   "}},
			want:     `[{"name":"A"}]`,
		},
		{
			name:     "spread_on_empty_object_keeps_row",
			document: `[{}]`,
			fields:   []Field{{Path: "*"}},
			want:     `[{}]`,
		},
		{
			name:     "spread_on_scalar_item_adds_nothing",
			document: `[1, {"a":1}]`,
			fields:   []Field{{Path: "*"}},
			want:     `[{"a":1}]`,
		},
		{
			name:     "empty_array",
			document: `[]`,
			fields:   []Field{{Path: "a"}},
			want:     `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Project(decode(t, tt.document), tt.fields)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, rowsJSON(t, rows))
		})
	}
}

func TestProjectOneRowPerItem(t *testing.T) {
	t.Parallel()

	document := decode(t, `[{"a":1,"b":{"c":2}},{"a":3,"b":{"c":4}},{"a":5,"b":{"c":6}}]`)
	fields := []Field{{Path: "a"}, {Path: "b.c"}, {Path: "missing"}}

	rows, err := Project(document, fields)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.LessOrEqual(t, len(row), len(fields))
	}
}

func TestProjectInvalidDocument(t *testing.T) {
	t.Parallel()

	for _, document := range []any{nil, "text", true, 1.5} {
		_, err := Project(document, []Field{{Path: "a"}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidDocument))
	}
}

func TestNewInvalidField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields []Field
	}{
		{name: "empty_path", fields: []Field{{Path: ""}}},
		{name: "blank_path", fields: []Field{{Path: "a"}, {Path: "   "}}},
		{name: "bad_query", fields: []Field{{Path: "$[?"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fields)
			assert.ErrorIs(t, err, ErrInvalidField)
		})
	}
}

func TestFieldColumn(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "s", Field{Path: "score", Alias: "s"}.Column())
	assert.Equal(t, "score", Field{Path: "score"}.Column())
	assert.Equal(t, "score", Field{Path: "score", Alias: " "}.Column())
}

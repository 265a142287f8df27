package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcatPreservesOrderAndUnionsColumns(t *testing.T) {
	a := New([]string{"id", "name"}, []any{int64(1), "a"}, []any{int64(2), "b"})
	b := New([]string{"name", "extra"}, []any{"c", true})

	out := Concat(a, nil, b)

	assert.Equal(t, []string{"id", "name", "extra"}, out.Columns)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, []any{int64(1), "a", nil}, out.Rows[0])
	assert.Equal(t, []any{int64(2), "b", nil}, out.Rows[1])
	assert.Equal(t, []any{nil, "c", true}, out.Rows[2])
}

func TestHead(t *testing.T) {
	tbl := New([]string{"n"}, []any{1}, []any{2}, []any{3})

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"fewer", 2, 2},
		{"all", 3, 3},
		{"more", 10, 3},
		{"negative", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tbl.Head(tt.n).Len())
		})
	}
	assert.Equal(t, 3, tbl.Len(), "head must not modify the source table")

	var empty *Table
	assert.True(t, empty.Empty())
	assert.Equal(t, 0, empty.Head(1).Len())
}

func TestProject(t *testing.T) {
	tbl := New([]string{"a", "b"}, []any{1, 2})
	out := tbl.Project([]string{"b", "missing"})

	assert.Equal(t, []string{"b", "missing"}, out.Columns)
	assert.Equal(t, []any{2, nil}, out.Rows[0])
}

func TestFlattenAndFromRecords(t *testing.T) {
	owner := NewRecord()
	owner.Set("Name", "Ada")
	rec := NewRecord()
	rec.Set("Id", "001")
	rec.Set("Owner", owner)
	rec.Set("Meta", map[string]any{"b": 2, "a": 1})

	flat := Flatten(rec)
	assert.Equal(t, []string{"Id", "Owner.Name", "Meta.a", "Meta.b"}, flat.Keys())

	tbl := FromRecords([]*Record{flat}, nil)
	assert.Equal(t, flat.Keys(), tbl.Columns)
	assert.Equal(t, []any{"001", "Ada", 1, 2}, tbl.Rows[0])
}

func TestReadCSV(t *testing.T) {
	data := "id|name|score;1|a|1.5;2|b|;"
	tbl, err := ReadCSV(strings.NewReader(data), CSVOptions{
		FieldDelimiter:  '|',
		RecordDelimiter: ";",
		InferTypes:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "score"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []any{int64(1), "a", 1.5}, tbl.Rows[0])
	assert.Equal(t, []any{int64(2), "b", nil}, tbl.Rows[1])
}

func TestReadCSVEmpty(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(""), CSVOptions{})
	require.NoError(t, err)
	assert.True(t, tbl.Empty())
}

func TestWriteCSV(t *testing.T) {
	tbl := New([]string{"id", "name"}, []any{int64(1), "x"}, []any{nil, []byte("y")})
	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))
	assert.Equal(t, "id,name\n1,x\n,y\n", buf.String())
}

func TestDecodeJSONRecordsKeepsKeyOrder(t *testing.T) {
	recs, err := DecodeJSONRecords([]byte(`[{"z":1,"a":{"k":"v"},"m":2.5},{"a":null}]`))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, []string{"z", "a", "m"}, recs[0].Keys())
	z, _ := recs[0].Get("z")
	assert.Equal(t, int64(1), z)
	m, _ := recs[0].Get("m")
	assert.Equal(t, 2.5, m)
	nested, _ := recs[0].Get("a")
	assert.IsType(t, &Record{}, nested)

	_, err = DecodeJSONRecords([]byte(`[1,2]`))
	assert.Error(t, err)
}

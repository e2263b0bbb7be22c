package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_AddColumn(t *testing.T) {
	tbl := NewTable("a", "b", "a")
	assert.Equal(t, []string{"a", "b"}, tbl.Columns)

	assert.True(t, tbl.AddColumn("c"))
	assert.False(t, tbl.AddColumn("b"))
	assert.Equal(t, 2, tbl.ColumnIndex("c"))
	assert.Equal(t, -1, tbl.ColumnIndex("z"))
	assert.True(t, tbl.HasColumn("a"))
}

func TestTable_AppendOrdered(t *testing.T) {
	tbl := NewTable()
	tbl.AppendOrdered([]string{"z", "missing", "a"}, Row{"a": 1, "z": 2, "m": 3})
	tbl.Append(Row{"b": 4, "a": 5})

	// Given keys first, then remaining keys sorted; unseen keys of later rows appended
	assert.Equal(t, []string{"z", "a", "m", "b"}, tbl.Columns)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 4, tbl.Cell(1, "b"))
	assert.Nil(t, tbl.Cell(1, "z"))
	assert.Nil(t, tbl.Cell(5, "a"))
}

func TestTable_Project(t *testing.T) {
	tbl := NewTable()
	tbl.Append(Row{"keep": "x", "drop": "y"})

	out := tbl.Project([]string{"keep", "absent"})
	assert.Equal(t, []string{"keep", "absent"}, out.Columns)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, Row{"keep": "x"}, out.Rows[0])

	// Source untouched
	assert.Equal(t, []string{"drop", "keep"}, tbl.Columns)
}

func TestTable_Clone(t *testing.T) {
	tbl := NewTable("a")
	tbl.Append(Row{"a": 1})

	cp := tbl.Clone()
	cp.Rows[0]["a"] = 2
	cp.AddColumn("b")

	assert.Equal(t, 1, tbl.Rows[0]["a"])
	assert.Equal(t, []string{"a"}, tbl.Columns)
}

func TestTable_ReplaceColumn(t *testing.T) {
	tbl := NewTable("id", "owner", "tags")
	tbl.ReplaceColumn("owner", false, []string{"owner.name", "owner.id", "tags"})

	assert.Equal(t, []string{"id", "owner.name", "owner.id", "tags"}, tbl.Columns)
	assert.Equal(t, 2, tbl.ColumnIndex("owner.id"))
	assert.False(t, tbl.HasColumn("owner"))

	tbl.ReplaceColumn("id", true, []string{"id.x"})
	assert.Equal(t, []string{"id", "id.x", "owner.name", "owner.id", "tags"}, tbl.Columns)

	// Unknown columns are ignored
	tbl.ReplaceColumn("nope", false, []string{"q"})
	assert.Len(t, tbl.Columns, 5)
}

func TestAsObjectAsArray(t *testing.T) {
	obj, ok := AsObject(map[string]interface{}{"a": 1})
	assert.True(t, ok)
	assert.Len(t, obj, 1)

	_, ok = AsObject("x")
	assert.False(t, ok)

	arr, ok := AsArray([]interface{}{1, 2})
	assert.True(t, ok)
	assert.Len(t, arr, 2)

	_, ok = AsArray(JSONObject{})
	assert.False(t, ok)
}

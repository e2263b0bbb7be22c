package converter

import (
	"github.com/mcncl/jsonsheet/internal/models"
)

// GenericSeparator joins nested keys for documents of unknown shape.
const GenericSeparator = "."

// ValueColumn holds scalar documents and non-object array elements.
const ValueColumn = "value"

// GenericConverter flattens any JSON document. Nested objects are expanded
// into "parent.child" columns until none remain; arrays stay as single cells.
type GenericConverter struct {
	Separator string
}

// Convert implements Converter.
func (c GenericConverter) Convert(doc models.JSONValue) (*models.Table, error) {
	sep := c.Separator
	if sep == "" {
		sep = GenericSeparator
	}
	t := recordTable(doc)
	Flatten(t, sep)
	return t, nil
}

// recordTable lays the document out one record per row, keeping only the
// top-level keys of each record as columns.
func recordTable(doc models.JSONValue) *models.Table {
	t := models.NewTable()

	appendRecord := func(v models.JSONValue) {
		if obj, ok := models.AsObject(v); ok {
			row := make(models.Row, len(obj))
			for k, cell := range obj {
				row[k] = cell
			}
			t.AppendOrdered(sortedKeys(obj), row)
			return
		}
		t.AppendOrdered([]string{ValueColumn}, models.Row{ValueColumn: v})
	}

	if arr, ok := models.AsArray(doc); ok {
		for _, el := range arr {
			appendRecord(el)
		}
		return t
	}
	appendRecord(doc)
	return t
}

// Flatten expands object-valued columns of t in place until no cell holds an
// object. Each pass removes one level of nesting, so the loop ends on any
// finite document. Running it on an already flat table changes nothing.
func Flatten(t *models.Table, sep string) {
	for {
		nested := objectColumns(t)
		if len(nested) == 0 {
			return
		}
		for _, col := range nested {
			expandColumn(t, col, sep)
		}
	}
}

// objectColumns lists, in column order, every column with at least one object cell.
func objectColumns(t *models.Table) []string {
	var cols []string
	for _, col := range t.Columns {
		for _, row := range t.Rows {
			if _, ok := models.AsObject(row[col]); ok {
				cols = append(cols, col)
				break
			}
		}
	}
	return cols
}

// expandColumn moves each object cell of col into "col<sep>child" cells.
// Null cells are dropped. Scalar and array cells stay in col, which is
// removed from the table only when no such cell remains.
func expandColumn(t *models.Table, col, sep string) {
	var children []string
	seen := make(map[string]bool)
	keep := false

	for _, row := range t.Rows {
		v, ok := row[col]
		if !ok {
			continue
		}
		obj, isObj := models.AsObject(v)
		if !isObj {
			if v == nil {
				delete(row, col)
			} else {
				keep = true
			}
			continue
		}
		for _, k := range sortedKeys(obj) {
			name := col + sep + k
			if !seen[name] {
				seen[name] = true
				children = append(children, name)
			}
			row[name] = obj[k]
		}
		delete(row, col)
	}

	t.ReplaceColumn(col, keep, children)
}

package converter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mcncl/jsonsheet/internal/errors"
	"github.com/mcncl/jsonsheet/internal/models"
)

// FlattenRecord joins nested object keys with sep, producing one flat row.
// Arrays and scalars are leaves; an empty nested object contributes no key.
// The returned keys list the row's columns depth-first, sorted within each object.
func FlattenRecord(obj models.JSONObject, sep string) (models.Row, []string) {
	row := make(models.Row, len(obj))
	keys := make([]string, 0, len(obj))

	var walk func(prefix []string, o models.JSONObject)
	walk = func(prefix []string, o models.JSONObject) {
		for _, k := range sortedKeys(o) {
			path := append(prefix[:len(prefix):len(prefix)], k)
			if child, ok := models.AsObject(o[k]); ok {
				walk(path, child)
				continue
			}
			name := strings.Join(path, sep)
			if _, dup := row[name]; !dup {
				keys = append(keys, name)
			}
			row[name] = o[k]
		}
	}
	walk(nil, obj)

	return row, keys
}

// NormalizeRecords flattens each record into a row. Columns are the union of
// row keys in first-seen order. Every record must be an object.
func NormalizeRecords(records models.JSONArray, sep string) (*models.Table, error) {
	t := models.NewTable()
	for i, rec := range records {
		obj, ok := models.AsObject(rec)
		if !ok {
			return nil, errors.NewConversionError(
				fmt.Sprintf("record %d is %s, expected an object", i, describe(rec)),
				errors.ErrUnexpectedShape,
			)
		}
		row, keys := FlattenRecord(obj, sep)
		t.AppendOrdered(keys, row)
	}
	return t, nil
}

func sortedKeys(obj models.JSONObject) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// describe names the JSON kind of v for error messages.
func describe(v models.JSONValue) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case string:
		return "a string"
	case json.Number, float64, int, int64:
		return "a number"
	case models.JSONObject, map[string]interface{}:
		return "an object"
	case models.JSONArray, []interface{}:
		return "an array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

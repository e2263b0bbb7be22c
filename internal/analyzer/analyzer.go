// Package analyzer profiles the columns of a converted table: which kind of
// value each column holds and how densely it is filled.
package analyzer

import (
	"encoding/json"
	"regexp"

	"github.com/mcncl/jsonsheet/internal/models"
	"github.com/mcncl/jsonsheet/internal/sheet"
)

// Kind is the inferred value kind of a cell or column.
type Kind string

const (
	KindEmpty    Kind = "empty"
	KindString   Kind = "string"
	KindDate     Kind = "date"
	KindDateTime Kind = "datetime"
	KindInteger  Kind = "integer"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindList     Kind = "list"
	KindMixed    Kind = "mixed"
)

// Time format patterns (ordered by specificity - most specific first)
var (
	rfc3339Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)            // 2006-01-02T15:04:05Z
	iso8601Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?([+-]\d{2}:\d{2}|Z|[+-]\d{4})?$`) // ISO8601 variants
	dateTimeRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`)                               // 2006-01-02 15:04:05
	dateOnlyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                                                         // 2006-01-02
)

// ColumnProfile summarizes one column.
type ColumnProfile struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Filled int    `json:"filled"`
	Empty  int    `json:"empty"`
	Sample string `json:"sample,omitempty"`
}

// Profile summarizes a converted table.
type Profile struct {
	Converter string          `json:"converter"`
	Rows      int             `json:"rows"`
	Columns   []ColumnProfile `json:"columns"`
}

// Analyze profiles every column of t, in column order.
func Analyze(converter string, t *models.Table) Profile {
	p := Profile{
		Converter: converter,
		Rows:      t.Len(),
		Columns:   make([]ColumnProfile, len(t.Columns)),
	}

	for i, col := range t.Columns {
		cp := ColumnProfile{Name: col, Kind: KindEmpty}
		for _, row := range t.Rows {
			v := row[col]
			k := ValueKind(v)
			if k == KindEmpty {
				cp.Empty++
				continue
			}
			cp.Filled++
			if cp.Sample == "" {
				cp.Sample = sheet.CellText(v)
			}
			cp.Kind = mergeKinds(cp.Kind, k)
		}
		p.Columns[i] = cp
	}
	return p
}

// ValueKind infers the kind of a single cell. Null, absent and "" cells are empty.
func ValueKind(v models.JSONValue) Kind {
	switch c := v.(type) {
	case nil:
		return KindEmpty
	case bool:
		return KindBoolean
	case json.Number:
		return analyzeNumber(c)
	case string:
		return analyzeString(c)
	case models.JSONArray, []interface{}:
		return KindList
	default:
		return KindMixed
	}
}

func analyzeString(s string) Kind {
	if s == "" {
		return KindEmpty
	}
	if rfc3339Regex.MatchString(s) || iso8601Regex.MatchString(s) || dateTimeRegex.MatchString(s) {
		return KindDateTime
	}
	if dateOnlyRegex.MatchString(s) {
		return KindDate
	}
	return KindString
}

func analyzeNumber(num json.Number) Kind {
	if _, err := num.Int64(); err == nil {
		return KindInteger
	}
	return KindNumber
}

// mergeKinds widens a column kind to admit another value kind.
func mergeKinds(a, b Kind) Kind {
	switch {
	case a == KindEmpty:
		return b
	case b == KindEmpty, a == b:
		return a
	case isNumeric(a) && isNumeric(b):
		return KindNumber
	case isTemporal(a) && isTemporal(b):
		return KindDateTime
	default:
		return KindMixed
	}
}

func isNumeric(k Kind) bool {
	return k == KindInteger || k == KindNumber
}

func isTemporal(k Kind) bool {
	return k == KindDate || k == KindDateTime
}

// Package sheet serializes converted tables as downloadable spreadsheets.
package sheet

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/jsonsheet/internal/errors"
	"github.com/mcncl/jsonsheet/internal/models"
)

// Format is an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DefaultSheetName matches the sheet name spreadsheet tools create by default.
const DefaultSheetName = "Sheet1"

// DefaultFilePattern names downloads; {converter} is replaced by the converter token.
const DefaultFilePattern = "converted_{converter}"

// HeaderStyle controls how column names are written to the header row.
type HeaderStyle string

const (
	HeadersOriginal   HeaderStyle = "original"
	HeadersSnake      HeaderStyle = "snake"
	HeadersCamel      HeaderStyle = "camel"
	HeadersLowerCamel HeaderStyle = "lower_camel"
	HeadersKebab      HeaderStyle = "kebab"
)

// Writer serializes a table to w.
type Writer interface {
	Write(w io.Writer, t *models.Table) error
	ContentType() string
	Extension() string
}

// Options configures a Writer.
type Options struct {
	SheetName string
	Headers   HeaderStyle
}

// NewWriter returns the writer for format. Unknown formats are a config error.
func NewWriter(format Format, opts Options) (Writer, error) {
	if !ValidHeaderStyle(opts.Headers) {
		return nil, errors.NewConfigError(fmt.Sprintf("unknown header style %q", opts.Headers), nil)
	}
	switch Format(strings.ToLower(string(format))) {
	case FormatXLSX, "":
		name := opts.SheetName
		if name == "" {
			name = DefaultSheetName
		}
		return &XLSXWriter{SheetName: name, Headers: opts.Headers}, nil
	case FormatCSV:
		return &CSVWriter{Headers: opts.Headers}, nil
	default:
		return nil, errors.NewConfigError(
			fmt.Sprintf("unknown output format %q (available: xlsx, csv)", format),
			nil,
		)
	}
}

// ValidFormat reports whether f names a supported output format.
func ValidFormat(f Format) bool {
	switch Format(strings.ToLower(string(f))) {
	case FormatXLSX, FormatCSV:
		return true
	}
	return false
}

// ValidHeaderStyle reports whether s is a supported header style. Empty means original.
func ValidHeaderStyle(s HeaderStyle) bool {
	switch s {
	case "", HeadersOriginal, HeadersSnake, HeadersCamel, HeadersLowerCamel, HeadersKebab:
		return true
	}
	return false
}

// FileName builds the download name for a converter, e.g. converted_generic.xlsx.
func FileName(pattern, converter, extension string) string {
	if pattern == "" {
		pattern = DefaultFilePattern
	}
	return strings.ReplaceAll(pattern, "{converter}", converter) + "." + extension
}

// HeaderRow renders the table's column names in the given style.
func HeaderRow(columns []string, style HeaderStyle) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		switch style {
		case HeadersSnake:
			out[i] = strcase.ToSnake(c)
		case HeadersCamel:
			out[i] = strcase.ToCamel(c)
		case HeadersLowerCamel:
			out[i] = strcase.ToLowerCamel(c)
		case HeadersKebab:
			out[i] = strcase.ToKebab(c)
		default:
			out[i] = c
		}
	}
	return out
}

// CellText renders a cell the way it appears in text formats.
// Absent and null cells are empty; arrays are written as JSON.
func CellText(v models.JSONValue) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case bool:
		return strconv.FormatBool(c)
	case json.Number:
		return c.String()
	default:
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Sprint(c)
		}
		return string(b)
	}
}

// maxExactInteger is the largest magnitude a spreadsheet number holds without rounding.
const maxExactInteger = 1e15

// cellValue converts a cell to the typed value stored in a workbook.
func cellValue(v models.JSONValue) interface{} {
	switch c := v.(type) {
	case nil:
		return nil
	case string, bool:
		return c
	case json.Number:
		if i, err := c.Int64(); err == nil {
			if i > -maxExactInteger && i < maxExactInteger {
				return i
			}
			return c.String()
		}
		if !strings.ContainsAny(c.String(), ".eE") {
			return c.String()
		}
		if f, err := c.Float64(); err == nil {
			return f
		}
		return c.String()
	default:
		return CellText(c)
	}
}

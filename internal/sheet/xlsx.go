package sheet

import (
	"io"

	"github.com/mcncl/jsonsheet/internal/models"
	"github.com/ubuntu/decorate"
	"github.com/xuri/excelize/v2"
)

// XLSXWriter writes a single-sheet Excel workbook.
type XLSXWriter struct {
	SheetName string
	Headers   HeaderStyle
}

// ContentType implements Writer.
func (x *XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension implements Writer.
func (x *XLSXWriter) Extension() string {
	return string(FormatXLSX)
}

// Write implements Writer. The header row holds the column names; numbers and
// booleans keep their cell types.
func (x *XLSXWriter) Write(w io.Writer, t *models.Table) (err error) {
	defer decorate.OnError(&err, "could not write xlsx workbook")

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	name := x.SheetName
	if name == "" {
		name = DefaultSheetName
	}
	if name != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, name); err != nil {
			return err
		}
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return err
	}

	header := HeaderRow(t.Columns, x.Headers)
	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := sw.SetRow("A1", values); err != nil {
		return err
	}

	for r, row := range t.Rows {
		values := make([]interface{}, len(t.Columns))
		for c, col := range t.Columns {
			values[c] = cellValue(row[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

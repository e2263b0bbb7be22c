package sheet

import (
	"encoding/csv"
	"io"

	"github.com/mcncl/jsonsheet/internal/models"
	"github.com/ubuntu/decorate"
)

// CSVWriter writes the table as comma-separated text with a header row.
type CSVWriter struct {
	Headers HeaderStyle
}

// ContentType implements Writer.
func (c *CSVWriter) ContentType() string {
	return "text/csv; charset=utf-8"
}

// Extension implements Writer.
func (c *CSVWriter) Extension() string {
	return string(FormatCSV)
}

// Write implements Writer.
func (c *CSVWriter) Write(w io.Writer, t *models.Table) (err error) {
	defer decorate.OnError(&err, "could not write csv")

	cw := csv.NewWriter(w)
	if err := cw.Write(HeaderRow(t.Columns, c.Headers)); err != nil {
		return err
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = CellText(row[col])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

package converter

import (
	"fmt"
	"log/slog"

	"github.com/mcncl/jsonsheet/internal/errors"
	"github.com/mcncl/jsonsheet/internal/models"
)

// TemplateSeparator joins nested keys for the vendor templates.
const TemplateSeparator = "|"

// broadcastTemplate is the column layout shared by the Globosat exports:
// schedule, program, title, then three rights-clause groups.
var broadcastTemplate = []string{
	"scheduledDate", "program|startTime", "firstExhibition", "duration",
	"title|duration", "program|duration", "showName", "name", "title|showName",
	"program|synopsis", "title|synopsis", "title|aka", "title|name",
	"title|season|number", "title|episodeNumber", "title|versionCertification",
	"title|versionCertificationConfirmed", "title|versionSubCertification",
	"title|countries", "title|yearOfProduction", "contentType",
	"title|genre|name", "title|subgenre|name", "category", "live",
	"title|resolution", "title|audios|language", "title|audios|type",
	"title|directors|name", "title|cast|name", "title|mainActors|name",
	"program|name", "composite", "title|nationalContent",
	"title|qualifiedContent", "title|independentProduction", "id", "txId",
	"title|id", "title|registrationNumber", "title|purchaseId",
	"title|versionId", "title|season|id", "title|season|name",
	"title|genre|id", "title|subgenre|id", "program|id",
	"program|weekDays|sunday", "program|weekDays|monday",
	"program|weekDays|tuesday", "program|weekDays|wednesday",
	"program|weekDays|thursday", "program|weekDays|friday",
	"program|weekDays|saturday", "clauses1|id", "clauses1|name",
	"clauses1|startDate", "clauses1|endDate", "clauses2|id",
	"clauses2|name", "clauses2|startDate", "clauses2|endDate",
	"clauses3|id", "clauses3|name", "clauses3|startDate", "clauses3|endDate",
}

// BroadcastColumns returns a copy of the Globosat template column list.
func BroadcastColumns() []string {
	out := make([]string, len(broadcastTemplate))
	copy(out, broadcastTemplate)
	return out
}

// RecordExtractor pulls the list of records to flatten out of a decoded document.
type RecordExtractor func(doc models.JSONValue) (models.JSONArray, error)

// TemplateConverter flattens records and projects them onto a fixed column list.
// Variants differ only in how records are extracted from the document.
type TemplateConverter struct {
	name    string
	columns []string
	extract RecordExtractor
}

// NewTemplateConverter creates a converter over the given columns. The column
// slice is not copied and must not be modified afterwards.
func NewTemplateConverter(name string, columns []string, extract RecordExtractor) *TemplateConverter {
	return &TemplateConverter{
		name:    name,
		columns: columns,
		extract: extract,
	}
}

// Convert implements Converter.
func (c *TemplateConverter) Convert(doc models.JSONValue) (*models.Table, error) {
	records, err := c.extract(doc)
	if err != nil {
		return nil, err
	}

	flat, err := NormalizeRecords(records, TemplateSeparator)
	if err != nil {
		return nil, err
	}

	dropped := 0
	for _, col := range flat.Columns {
		if !contains(c.columns, col) {
			dropped++
		}
	}
	slog.Debug("template projection",
		"converter", c.name,
		"records", len(records),
		"source_columns", len(flat.Columns),
		"dropped_columns", dropped,
	)

	return flat.Project(c.columns), nil
}

// TopLevelRecords treats an array document as the record list and a single
// object as a one-record list.
func TopLevelRecords(doc models.JSONValue) (models.JSONArray, error) {
	if arr, ok := models.AsArray(doc); ok {
		return arr, nil
	}
	if obj, ok := models.AsObject(doc); ok {
		return models.JSONArray{obj}, nil
	}
	return nil, errors.NewConversionError(
		fmt.Sprintf("document is %s, expected an array of records or a single record", describe(doc)),
		errors.ErrUnexpectedShape,
	)
}

// SlotRecords concatenates the "slots" arrays of every day wrapper in an array
// document. Wrappers that are not objects, or whose slots are missing or not an
// array, contribute nothing.
func SlotRecords(doc models.JSONValue) (models.JSONArray, error) {
	days, ok := models.AsArray(doc)
	if !ok {
		return nil, errors.NewConversionError(
			fmt.Sprintf("document is %s, expected an array of day schedules", describe(doc)),
			errors.ErrUnexpectedShape,
		)
	}

	all := make(models.JSONArray, 0)
	for _, day := range days {
		wrapper, ok := models.AsObject(day)
		if !ok {
			continue
		}
		slots, ok := models.AsArray(wrapper["slots"])
		if !ok {
			continue
		}
		all = append(all, slots...)
	}
	return all, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

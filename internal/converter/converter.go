// Package converter turns decoded JSON schedule exports into flat tables.
//
// Four converters are available, selected by Kind:
//
//   - globosat_composite: records flattened with "|" and projected onto the
//     broadcast template columns.
//   - globosat_planning: same template, records taken from every day's "slots".
//   - fuboln: rows built field by field from a station schedule, one row per airing.
//   - generic: any JSON, nested objects expanded into "a.b" columns.
//
// Converters are stateless; every call returns a freshly built table and the
// shared column lists are never modified.
package converter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/jsonsheet/internal/errors"
	"github.com/mcncl/jsonsheet/internal/models"
)

// Converter maps one decoded JSON document to a table.
type Converter interface {
	Convert(doc models.JSONValue) (*models.Table, error)
}

// Kind selects a converter.
type Kind int

const (
	GlobosatComposite Kind = iota + 1
	GlobosatPlanning
	Fuboln
	Generic
)

// Info describes a converter for listings and the upload form.
type Info struct {
	Kind        Kind   `json:"-"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var infos = []Info{
	{
		Kind:        GlobosatComposite,
		Name:        "globosat_composite",
		Label:       "Globosat (Composite)",
		Description: "Array of schedule records flattened onto the broadcast template",
	},
	{
		Kind:        GlobosatPlanning,
		Name:        "globosat_planning",
		Label:       "Globosat (Planning)",
		Description: "Day schedules whose 'slots' are flattened onto the broadcast template",
	},
	{
		Kind:        Fuboln,
		Name:        "fuboln",
		Label:       "FUBOLN",
		Description: "Station schedule with one row per program airing",
	},
	{
		Kind:        Generic,
		Name:        "generic",
		Label:       "Generic JSON",
		Description: "Any JSON document, nested objects expanded into dotted columns",
	},
}

var converters = map[Kind]Converter{
	GlobosatComposite: NewTemplateConverter("globosat_composite", broadcastTemplate, TopLevelRecords),
	GlobosatPlanning:  NewTemplateConverter("globosat_planning", broadcastTemplate, SlotRecords),
	Fuboln:            ScheduleConverter{},
	Generic:           GenericConverter{Separator: GenericSeparator},
}

// String returns the token that selects k.
func (k Kind) String() string {
	for _, info := range infos {
		if info.Kind == k {
			return info.Name
		}
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds lists every converter in display order.
func Kinds() []Info {
	out := make([]Info, len(infos))
	copy(out, infos)
	return out
}

// ParseKind resolves a converter token. Tokens are compared in snake case, so
// "globosat-composite" and "GlobosatComposite" select the same converter.
// Unknown tokens are a config error.
func ParseKind(token string) (Kind, error) {
	normalized := strcase.ToSnake(strings.TrimSpace(token))
	for _, info := range infos {
		if info.Name == normalized {
			return info.Kind, nil
		}
	}
	return 0, errors.NewConfigError(
		fmt.Sprintf("unknown converter %q (available: %s)", token, strings.Join(names(), ", ")),
		errors.ErrUnknownConverter,
	)
}

// Convert runs the converter selected by kind. On error no table is returned.
func Convert(kind Kind, doc models.JSONValue) (table *models.Table, err error) {
	c, ok := converters[kind]
	if !ok {
		return nil, errors.NewConfigError(
			fmt.Sprintf("unknown converter %s", kind),
			errors.ErrUnknownConverter,
		)
	}

	slog.Debug("running converter", "converter", kind.String())

	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = errors.NewConversionError(
				fmt.Sprintf("converter %s failed", kind),
				fmt.Errorf("%w: %v", errors.ErrUnexpectedShape, r),
			)
		}
	}()

	table, err = c.Convert(doc)
	if err != nil {
		if errors.TypeOf(err) == errors.ErrorTypeUnknown {
			err = errors.NewConversionError(fmt.Sprintf("converter %s failed", kind), err)
		}
		return nil, err
	}

	slog.Debug("converter finished",
		"converter", kind.String(),
		"rows", table.Len(),
		"columns", len(table.Columns),
	)
	return table, nil
}

// ConvertToken parses token and runs the selected converter.
func ConvertToken(token string, doc models.JSONValue) (*models.Table, Kind, error) {
	kind, err := ParseKind(token)
	if err != nil {
		return nil, 0, err
	}
	table, err := Convert(kind, doc)
	if err != nil {
		return nil, kind, err
	}
	return table, kind, nil
}

func names() []string {
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.Name
	}
	return out
}

package converter

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsonsheet/internal/errors"
	"github.com/mcncl/jsonsheet/internal/models"
)

// Output columns of the station schedule export, in order.
const (
	ColStationName      = "Station Name"
	ColStationID        = "Station ID"
	ColCallSign         = "Call Sign"
	ColLastUpdated      = "Last Updated"
	ColProgramID        = "Program ID"
	ColTitle            = "Title"
	ColEpisodeTitle     = "Episode Title"
	ColShortDescription = "Short Description"
	ColLongDescription  = "Long Description"
	ColSeason           = "Season"
	ColEpisode          = "Episode"
	ColReleaseYear      = "Release Year"
	ColOriginalAirDate  = "Original Air Date"
	ColGenre            = "Genre"
	ColSubGenre         = "Sub Genre"
	ColContentRating    = "Content Rating"
	ColCast             = "Cast"
	ColStartDate        = "Start Date"
	ColEndDate          = "End Date"
	ColDuration         = "Duration"
)

type fieldSource struct {
	column string
	key    string
	list   bool
}

var stationFields = []fieldSource{
	{column: ColStationName, key: "stationName"},
	{column: ColStationID, key: "stationId"},
	{column: ColCallSign, key: "callSign"},
}

var programFields = []fieldSource{
	{column: ColProgramID, key: "programId"},
	{column: ColTitle, key: "title"},
	{column: ColEpisodeTitle, key: "episodeTitle"},
	{column: ColShortDescription, key: "shortDescription"},
	{column: ColLongDescription, key: "longDescription"},
	{column: ColSeason, key: "seasonNum"},
	{column: ColEpisode, key: "episodeNum"},
	{column: ColReleaseYear, key: "releaseYear"},
	{column: ColOriginalAirDate, key: "originalAirDate"},
	{column: ColGenre, key: "genres", list: true},
	{column: ColSubGenre, key: "subGenres", list: true},
	{column: ColContentRating, key: "contentRating"},
	{column: ColCast, key: "cast", list: true},
}

var airingFields = []fieldSource{
	{column: ColStartDate, key: "startDate"},
	{column: ColEndDate, key: "endDate"},
	{column: ColDuration, key: "duration"},
}

// scheduleColumns is the first-insertion order of every row the builder emits.
var scheduleColumns = func() []string {
	cols := make([]string, 0, len(stationFields)+len(programFields)+len(airingFields)+1)
	for _, f := range stationFields {
		cols = append(cols, f.column)
	}
	cols = append(cols, ColLastUpdated)
	for _, f := range programFields {
		cols = append(cols, f.column)
	}
	for _, f := range airingFields {
		cols = append(cols, f.column)
	}
	return cols
}()

// ScheduleConverter builds rows from a station document: a "station" header,
// a "schedule" list of programs, and per-program "airings.repeats". Each repeat
// becomes its own row; a program without repeats yields one row with empty
// airing columns.
type ScheduleConverter struct{}

// Convert implements Converter.
func (ScheduleConverter) Convert(doc models.JSONValue) (*models.Table, error) {
	root, ok := models.AsObject(doc)
	if !ok {
		return nil, errors.NewConversionError(
			fmt.Sprintf("document is %s, expected an object with 'station' and 'schedule'", describe(doc)),
			errors.ErrUnexpectedShape,
		)
	}

	for _, key := range []string{"station", "schedule"} {
		if _, ok := root[key]; !ok {
			return nil, errors.NewSchemaError(
				fmt.Sprintf("required key '%s' not found in station schedule document", key),
				errors.ErrMissingKey,
			)
		}
	}

	station, ok := models.AsObject(root["station"])
	if !ok {
		return nil, shapeError("station", "an object", root["station"])
	}
	programs, ok := models.AsArray(root["schedule"])
	if !ok {
		return nil, shapeError("schedule", "an array", root["schedule"])
	}

	header := make(models.Row, len(stationFields)+1)
	for _, f := range stationFields {
		v, err := scalarField(station, f.key, "station."+f.key)
		if err != nil {
			return nil, err
		}
		header[f.column] = v
	}
	lastUpdated, err := scalarField(root, "lastUpdated", "lastUpdated")
	if err != nil {
		return nil, err
	}
	header[ColLastUpdated] = lastUpdated

	t := models.NewTable()
	for i, p := range programs {
		program, ok := models.AsObject(p)
		if !ok {
			return nil, shapeError(fmt.Sprintf("schedule[%d]", i), "an object", p)
		}
		if err := appendProgram(t, header, program, fmt.Sprintf("schedule[%d]", i)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func appendProgram(t *models.Table, header models.Row, program models.JSONObject, path string) error {
	base := make(models.Row, len(scheduleColumns))
	for k, v := range header {
		base[k] = v
	}
	for _, f := range programFields {
		var (
			v   models.JSONValue
			err error
		)
		if f.list {
			v, err = joinedField(program, f.key, path+"."+f.key)
		} else {
			v, err = scalarField(program, f.key, path+"."+f.key)
		}
		if err != nil {
			return err
		}
		base[f.column] = v
	}

	repeats, err := programRepeats(program, path)
	if err != nil {
		return err
	}

	if len(repeats) == 0 {
		for _, f := range airingFields {
			base[f.column] = ""
		}
		t.AppendOrdered(scheduleColumns, base)
		return nil
	}

	for j, r := range repeats {
		repeatPath := fmt.Sprintf("%s.airings.repeats[%d]", path, j)
		airing, ok := models.AsObject(r)
		if !ok {
			return shapeError(repeatPath, "an object", r)
		}
		row := make(models.Row, len(base)+len(airingFields))
		for k, v := range base {
			row[k] = v
		}
		for _, f := range airingFields {
			v, err := scalarField(airing, f.key, repeatPath+"."+f.key)
			if err != nil {
				return err
			}
			row[f.column] = v
		}
		t.AppendOrdered(scheduleColumns, row)
	}
	return nil
}

// programRepeats returns airings.repeats, or nil when either level is absent or null.
func programRepeats(program models.JSONObject, path string) (models.JSONArray, error) {
	raw, ok := program["airings"]
	if !ok || raw == nil {
		return nil, nil
	}
	airings, ok := models.AsObject(raw)
	if !ok {
		return nil, shapeError(path+".airings", "an object", raw)
	}
	rawRepeats, ok := airings["repeats"]
	if !ok || rawRepeats == nil {
		return nil, nil
	}
	repeats, ok := models.AsArray(rawRepeats)
	if !ok {
		return nil, shapeError(path+".airings.repeats", "an array", rawRepeats)
	}
	return repeats, nil
}

// scalarField returns obj[key], defaulting to "" when absent or null.
func scalarField(obj models.JSONObject, key, path string) (models.JSONValue, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	if _, isObj := models.AsObject(v); isObj {
		return nil, shapeError(path, "a scalar", v)
	}
	if _, isArr := models.AsArray(v); isArr {
		return nil, shapeError(path, "a scalar", v)
	}
	return v, nil
}

// joinedField joins a list of strings with ", ", defaulting to "" when absent or null.
func joinedField(obj models.JSONObject, key, path string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	items, ok := models.AsArray(v)
	if !ok {
		return "", shapeError(path, "a list of strings", v)
	}
	parts := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return "", shapeError(fmt.Sprintf("%s[%d]", path, i), "a string", item)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

func shapeError(path, want string, got models.JSONValue) error {
	return errors.NewConversionError(
		fmt.Sprintf("field '%s' must be %s, got %s", path, want, describe(got)),
		errors.ErrUnexpectedShape,
	)
}

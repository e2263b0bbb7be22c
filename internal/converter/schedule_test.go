package converter

import (
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/mcncl/jsonsheet/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stationInput = `{
	"station": {"stationName": "Fubo Latino", "stationId": "FL-1", "callSign": "FUBOL"},
	"lastUpdated": "2024-03-01T00:00:00Z",
	"schedule": [
		{
			"programId": "P1",
			"title": "Liga MX",
			"episodeTitle": "Jornada 9",
			"seasonNum": 2024,
			"episodeNum": 9,
			"genres": ["Sports", "Soccer"],
			"subGenres": [],
			"cast": ["A. Narrator"],
			"contentRating": "TV-G",
			"airings": {"repeats": [
				{"startDate": "2024-03-01T18:00:00Z", "endDate": "2024-03-01T20:00:00Z", "duration": 120},
				{"startDate": "2024-03-02T10:00:00Z", "endDate": "2024-03-02T12:00:00Z", "duration": 120}
			]}
		},
		{
			"programId": "P2",
			"title": "Noticias",
			"airings": {"repeats": []}
		},
		{
			"programId": "P3",
			"title": "Película"
		}
	]
}`

func TestScheduleConverter(t *testing.T) {
	table, err := Convert(Fuboln, mustParse(t, stationInput))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Station Name", "Station ID", "Call Sign", "Last Updated",
		"Program ID", "Title", "Episode Title", "Short Description", "Long Description",
		"Season", "Episode", "Release Year", "Original Air Date",
		"Genre", "Sub Genre", "Content Rating", "Cast",
		"Start Date", "End Date", "Duration",
	}, table.Columns)
	require.Equal(t, 4, table.Len())

	for i := range table.Rows {
		assert.Equal(t, "Fubo Latino", table.Cell(i, ColStationName))
		assert.Equal(t, "FL-1", table.Cell(i, ColStationID))
		assert.Equal(t, "FUBOL", table.Cell(i, ColCallSign))
		assert.Equal(t, "2024-03-01T00:00:00Z", table.Cell(i, ColLastUpdated))
		assert.Len(t, table.Rows[i], len(table.Columns))
	}

	// Program with two repeats: two rows sharing the program fields.
	for _, i := range []int{0, 1} {
		assert.Equal(t, "P1", table.Cell(i, ColProgramID))
		assert.Equal(t, "Liga MX", table.Cell(i, ColTitle))
		assert.Equal(t, json.Number("2024"), table.Cell(i, ColSeason))
		assert.Equal(t, "Sports, Soccer", table.Cell(i, ColGenre))
		assert.Equal(t, "", table.Cell(i, ColSubGenre))
		assert.Equal(t, "A. Narrator", table.Cell(i, ColCast))
		assert.Equal(t, "", table.Cell(i, ColShortDescription))
		assert.Equal(t, json.Number("120"), table.Cell(i, ColDuration))
	}
	assert.Equal(t, "2024-03-01T18:00:00Z", table.Cell(0, ColStartDate))
	assert.Equal(t, "2024-03-02T10:00:00Z", table.Cell(1, ColStartDate))

	// Empty and absent repeats: exactly one row with blank airing columns.
	for _, i := range []int{2, 3} {
		assert.Equal(t, "", table.Cell(i, ColStartDate))
		assert.Equal(t, "", table.Cell(i, ColEndDate))
		assert.Equal(t, "", table.Cell(i, ColDuration))
	}
	assert.Equal(t, "P2", table.Cell(2, ColProgramID))
	assert.Equal(t, "Película", table.Cell(3, ColTitle))
}

func TestScheduleConverter_OneRowPerRepeat(t *testing.T) {
	input := `{
		"station": {},
		"schedule": [{"title": "X", "airings": {"repeats": [{"startDate": "d1"}, {"startDate": "d2"}]}}]
	}`
	table, err := Convert(Fuboln, mustParse(t, input))
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, "X", table.Cell(0, ColTitle))
	assert.Equal(t, "X", table.Cell(1, ColTitle))
	assert.Equal(t, "d1", table.Cell(0, ColStartDate))
	assert.Equal(t, "d2", table.Cell(1, ColStartDate))
	assert.Equal(t, "", table.Cell(0, ColEndDate))
	assert.Equal(t, "", table.Cell(0, ColLastUpdated))
	assert.Equal(t, "", table.Cell(0, ColStationName))
}

func TestScheduleConverter_RowExpansionLaw(t *testing.T) {
	tests := []struct {
		name     string
		airings  string
		expected int
	}{
		{"absent airings", `{}`, 1},
		{"null airings", `{"airings": null}`, 1},
		{"absent repeats", `{"airings": {}}`, 1},
		{"empty repeats", `{"airings": {"repeats": []}}`, 1},
		{"one repeat", `{"airings": {"repeats": [{}]}}`, 1},
		{"three repeats", `{"airings": {"repeats": [{}, {}, {}]}}`, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `{"station": {}, "schedule": [` + tt.airings + `]}`
			table, err := Convert(Fuboln, mustParse(t, input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, table.Len())
		})
	}
}

func TestScheduleConverter_EmptySchedule(t *testing.T) {
	table, err := Convert(Fuboln, mustParse(t, `{"station": {"stationName": "S"}, "schedule": []}`))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Columns)
}

func TestScheduleConverter_MissingKeys(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		missing string
	}{
		{"missing station", `{"schedule": []}`, "station"},
		{"missing schedule", `{"station": {}}`, "schedule"},
		{"missing both", `{"lastUpdated": "x"}`, "station"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Convert(Fuboln, mustParse(t, tt.input))
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, errors.IsType(err, errors.ErrorTypeSchema), "got %v", err)
			assert.True(t, stderrors.Is(err, errors.ErrMissingKey))
			assert.Contains(t, err.Error(), "'"+tt.missing+"'")
		})
	}
}

func TestScheduleConverter_BadShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"document is array", `[]`, "document"},
		{"station not object", `{"station": "S", "schedule": []}`, "station"},
		{"schedule not array", `{"station": {}, "schedule": {}}`, "schedule"},
		{"program not object", `{"station": {}, "schedule": [1]}`, "schedule[0]"},
		{"genres not list", `{"station": {}, "schedule": [{"genres": "Drama"}]}`, "schedule[0].genres"},
		{"genre not string", `{"station": {}, "schedule": [{"genres": ["Drama", 3]}]}`, "schedule[0].genres[1]"},
		{"title is object", `{"station": {}, "schedule": [{"title": {"en": "X"}}]}`, "schedule[0].title"},
		{"airings not object", `{"station": {}, "schedule": [{"airings": []}]}`, "schedule[0].airings"},
		{"repeats not array", `{"station": {}, "schedule": [{"airings": {"repeats": 5}}]}`, "schedule[0].airings.repeats"},
		{"repeat not object", `{"station": {}, "schedule": [{"airings": {"repeats": ["d1"]}}]}`, "schedule[0].airings.repeats[0]"},
		{"station field nested", `{"station": {"callSign": ["A"]}, "schedule": []}`, "station.callSign"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Convert(Fuboln, mustParse(t, tt.input))
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConversion), "got %v", err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestScheduleConverter_NullFieldsDefaultToEmpty(t *testing.T) {
	input := `{"station": {"stationName": null}, "lastUpdated": null, "schedule": [{"title": null, "cast": null}]}`
	table, err := Convert(Fuboln, mustParse(t, input))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "", table.Cell(0, ColStationName))
	assert.Equal(t, "", table.Cell(0, ColLastUpdated))
	assert.Equal(t, "", table.Cell(0, ColTitle))
	assert.Equal(t, "", table.Cell(0, ColCast))
}

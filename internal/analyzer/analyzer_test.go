package analyzer

import (
	"encoding/json"
	"testing"

	"github.com/mcncl/jsonsheet/internal/converter"
	"github.com/mcncl/jsonsheet/internal/models"
	"github.com/mcncl/jsonsheet/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueKind(t *testing.T) {
	tests := []struct {
		name     string
		in       models.JSONValue
		expected Kind
	}{
		{"nil", nil, KindEmpty},
		{"empty string", "", KindEmpty},
		{"string", "Liga MX", KindString},
		{"rfc3339", "2024-03-01T20:00:00Z", KindDateTime},
		{"offset", "2024-03-01T20:00:00-03:00", KindDateTime},
		{"space separated", "2024-03-01 20:00:00", KindDateTime},
		{"date", "2024-03-01", KindDate},
		{"time only", "20:00", KindString},
		{"integer", json.Number("120"), KindInteger},
		{"float", json.Number("1.5"), KindNumber},
		{"huge integer", json.Number("123456789012345678901234"), KindNumber},
		{"bool", true, KindBoolean},
		{"array", models.JSONArray{"BR"}, KindList},
		{"object", models.JSONObject{"a": nil}, KindMixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValueKind(tt.in))
		})
	}
}

func TestMergeKinds(t *testing.T) {
	assert.Equal(t, KindInteger, mergeKinds(KindEmpty, KindInteger))
	assert.Equal(t, KindString, mergeKinds(KindString, KindString))
	assert.Equal(t, KindNumber, mergeKinds(KindInteger, KindNumber))
	assert.Equal(t, KindDateTime, mergeKinds(KindDate, KindDateTime))
	assert.Equal(t, KindMixed, mergeKinds(KindString, KindBoolean))
	assert.Equal(t, KindMixed, mergeKinds(KindMixed, KindInteger))
}

func TestAnalyze_Generic(t *testing.T) {
	doc, err := parser.ParseString(`[
		{"id": 1, "start": "2024-03-01", "score": 2, "tags": ["a"], "live": true},
		{"id": 2, "start": "2024-03-02T20:00:00Z", "score": 2.5, "live": "yes"},
		{"id": 3, "start": null}
	]`)
	require.NoError(t, err)

	table, err := converter.Convert(converter.Generic, doc)
	require.NoError(t, err)

	p := Analyze("generic", table)
	assert.Equal(t, "generic", p.Converter)
	assert.Equal(t, 3, p.Rows)

	byName := make(map[string]ColumnProfile)
	for _, c := range p.Columns {
		byName[c.Name] = c
	}
	require.Len(t, byName, 5)

	assert.Equal(t, ColumnProfile{Name: "id", Kind: KindInteger, Filled: 3, Sample: "1"}, byName["id"])
	assert.Equal(t, KindDateTime, byName["start"].Kind)
	assert.Equal(t, 1, byName["start"].Empty)
	assert.Equal(t, KindNumber, byName["score"].Kind)
	assert.Equal(t, ColumnProfile{Name: "tags", Kind: KindList, Filled: 1, Empty: 2, Sample: `["a"]`}, byName["tags"])
	assert.Equal(t, KindMixed, byName["live"].Kind)
}

func TestAnalyze_PreservesColumnOrder(t *testing.T) {
	table := models.NewTable("b", "a")
	p := Analyze("generic", table)

	require.Len(t, p.Columns, 2)
	assert.Equal(t, "b", p.Columns[0].Name)
	assert.Equal(t, KindEmpty, p.Columns[0].Kind)
	assert.Equal(t, 0, p.Rows)
}

func TestAnalyze_Template(t *testing.T) {
	doc, err := parser.ParseString(`[{"scheduledDate": "2024-03-01", "title": {"name": "Jornal"}}]`)
	require.NoError(t, err)

	table, err := converter.Convert(converter.GlobosatComposite, doc)
	require.NoError(t, err)

	p := Analyze(converter.GlobosatComposite.String(), table)
	require.Len(t, p.Columns, len(converter.BroadcastColumns()))
	assert.Equal(t, ColumnProfile{Name: "scheduledDate", Kind: KindDate, Filled: 1, Sample: "2024-03-01"}, p.Columns[0])

	empty := 0
	for _, c := range p.Columns {
		if c.Kind == KindEmpty {
			empty++
		}
	}
	assert.Equal(t, len(p.Columns)-2, empty)
}

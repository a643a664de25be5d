package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Column(t *testing.T) {
	tbl := NewTable("t.csv", []string{" Date", "POE", "country ", "Arrivals"}, nil)

	for _, name := range []string{"date", "DATE", "poe", "Country", "arrivals"} {
		_, ok := tbl.Column(name)
		assert.True(t, ok, name)
	}
	i, _ := tbl.Column("country")
	assert.Equal(t, 2, i)

	_, ok := tbl.Column("lat")
	assert.False(t, ok)
}

func TestTable_Require(t *testing.T) {
	tbl := NewTable("t.csv", []string{"date", "poe"}, nil)

	assert.NoError(t, tbl.Require("date", "POE"))

	err := tbl.Require("date", "country", "arrivals")
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "t.csv", schemaErr.Source)
	assert.Equal(t, []string{"country", "arrivals"}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "country, arrivals")
}

func TestTable_CellAndLine(t *testing.T) {
	tbl := NewTable("t.csv", []string{"a", "b"}, [][]string{{" x ", "y"}, {"z"}})

	assert.Equal(t, "x", tbl.Cell(tbl.Rows[0], 0))
	assert.Equal(t, "", tbl.Cell(tbl.Rows[1], 1), "short rows read as empty")
	assert.Equal(t, 2, tbl.Line(0))
	assert.Equal(t, 3, tbl.Line(1))

	tbl.Lines = []int{2, 5}
	assert.Equal(t, 5, tbl.Line(1))
}

func TestTable_OtherColumns(t *testing.T) {
	tbl := NewTable("t.csv", []string{"POE", "Lat", "Long", "State", "Type", ""}, nil)

	others := tbl.OtherColumns("poe", "lat", "long")
	assert.Equal(t, map[string]int{"state": 3, "type": 4}, others)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		path string
		want string
	}{
		{"data/arrivals.csv", "csv"},
		{"data/ARRIVALS.CSV", "csv"},
		{"data/arrivals.txt", "csv"},
		{"data/arrivals.xlsx", "xlsx"},
	}
	for _, tt := range tests {
		reader, err := r.FindReader(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, reader.Name(), tt.path)
	}

	_, err := r.FindReader("data/arrivals.parquet")
	assert.Error(t, err)

	reader, err := r.GetReaderByName("XLSX")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", reader.Name())
}

func TestPoeMetadata_InvalidCoordinate(t *testing.T) {
	tbl := NewTable("poe.csv", []string{"poe", "lat", "long"}, [][]string{
		{"KLIA", "2.75", "101.7"},
		{"Bad", "95", "101.7"},
	})

	_, err := ParsePoeMetadata(tbl, nil)
	var valueErr *ValueError
	require.ErrorAs(t, err, &valueErr)
	assert.Equal(t, ColLat, valueErr.Column)
	assert.Equal(t, 3, valueErr.Row)
}

func TestArrivals_InvalidCount(t *testing.T) {
	tbl := NewTable("a.csv", []string{"date", "poe", "country", "arrivals"}, [][]string{
		{"2020-01-01", "KLIA", "Japan", "lots"},
	})

	_, err := ParseArrivals(tbl, DefaultDateLayouts, nil)
	var valueErr *ValueError
	require.ErrorAs(t, err, &valueErr)
	assert.Equal(t, ColArrivals, valueErr.Column)
	assert.Equal(t, "lots", valueErr.Value)
}

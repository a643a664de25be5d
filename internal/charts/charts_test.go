package charts

import (
	"bytes"
	"testing"

	"github.com/foreign-arrivals/dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func kliaTrend() models.Pivot[int] {
	return models.Pivot[int]{
		Index:   "year",
		Columns: []string{"Japan"},
		Rows: []models.PivotRow[int]{
			{Key: 2020, Values: map[string]int64{"Japan": 100}},
			{Key: 2021, Values: map[string]int64{"Japan": 50}},
		},
	}
}

func TestTrendRendersPNG(t *testing.T) {
	data, err := Trend(kliaTrend(), Options{Title: "Trend"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestTrendSkipsAbsentCells(t *testing.T) {
	p := models.Pivot[int]{
		Index:   "year",
		Columns: []string{"Japan", "China"},
		Rows: []models.PivotRow[int]{
			{Key: 2020, Values: map[string]int64{"Japan": 100}},
			{Key: 2021, Values: map[string]int64{"Japan": 50, "China": 10}},
		},
	}
	data, err := Trend(p, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestMonthlyAndByPoeRenderPNG(t *testing.T) {
	monthly := models.Pivot[int]{
		Index:   "month",
		Columns: []string{"Japan", "China"},
		Rows: []models.PivotRow[int]{
			{Key: 1, Values: map[string]int64{"Japan": 30}},
			{Key: 7, Values: map[string]int64{"Japan": 20, "China": 5}},
		},
	}
	data, err := Monthly(monthly, Options{Width: DefaultWidth / 2, Height: DefaultHeight / 2})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))

	poe := models.Pivot[string]{
		Index:   "poe",
		Columns: []string{"Japan"},
		Rows:    []models.PivotRow[string]{{Key: "KLIA", Values: map[string]int64{"Japan": 150}}},
	}
	data, err = ByPoe(poe, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestEmptyPivotIsNoData(t *testing.T) {
	_, err := Trend(models.Pivot[int]{Index: "year"}, Options{})
	assert.ErrorIs(t, err, ErrNoData)
	_, err = Monthly(models.Pivot[int]{Index: "month"}, Options{})
	assert.ErrorIs(t, err, ErrNoData)
	_, err = ByPoe(models.Pivot[string]{Index: "poe"}, Options{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Jan", monthLabel(1))
	assert.Equal(t, "Dec", monthLabel(12))
	assert.Equal(t, "13", monthLabel(13))
}

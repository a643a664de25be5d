package parser

import (
	"testing"
	"time"

	"github.com/foreign-arrivals/dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coord(v float64) *float64 { return &v }

func TestJoin(t *testing.T) {
	arrivals := []models.ArrivalRecord{
		{Date: time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), Poe: "KLIA", Country: "Japan", Arrivals: 100},
		{Date: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), Poe: "Nowhere", Country: "Japan", Arrivals: 5},
		{Date: time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC), Poe: "KLIA", Country: "China", Arrivals: 0},
	}
	poes := []models.PoeMetadata{
		{Poe: "KLIA", Lat: coord(2.75), Long: coord(101.7), Attributes: map[string]string{"state": "Selangor"}},
		{Poe: "KLIA", Lat: coord(0), Long: coord(0)},
		{Poe: "Unused", Lat: coord(1), Long: coord(1)},
	}

	joined := Join(arrivals, poes)
	require.Len(t, joined, len(arrivals))

	for i, jr := range joined {
		assert.Equal(t, arrivals[i], jr.ArrivalRecord, "row %d keeps its arrival", i)
		assert.Equal(t, arrivals[i].Date.Year(), jr.Year)
		assert.Equal(t, int(arrivals[i].Date.Month()), jr.Month)
	}

	assert.Equal(t, 2.75, *joined[0].Lat)
	assert.Equal(t, "Selangor", joined[0].Attributes["state"])
	assert.False(t, joined[1].HasLocation())
	assert.Equal(t, 12, joined[2].Month)
	assert.Equal(t, 101.7, *joined[2].Long)
}

func TestJoin_Empty(t *testing.T) {
	assert.Empty(t, Join(nil, nil))
	assert.Empty(t, Join(nil, []models.PoeMetadata{{Poe: "KLIA"}}))
}

// Package aggregate computes the dashboard views from a filtered view.
// Every function is a pure reduction; none modifies its input.
package aggregate

import (
	"cmp"
	"slices"

	"github.com/foreign-arrivals/dashboard/internal/models"
)

// PivotBuilder accumulates (row key, country) sums. Only combinations that
// are added appear in the built pivot; nothing is zero-filled.
type PivotBuilder[K cmp.Ordered] struct {
	index   string
	cells   map[K]map[string]int64
	columns map[string]struct{}
}

// NewPivotBuilder creates a builder whose rows are labelled by index.
func NewPivotBuilder[K cmp.Ordered](index string) *PivotBuilder[K] {
	return &PivotBuilder[K]{
		index:   index,
		cells:   make(map[K]map[string]int64),
		columns: make(map[string]struct{}),
	}
}

// Add adds arrivals to the (key, country) cell.
func (b *PivotBuilder[K]) Add(key K, country string, arrivals int64) {
	row, ok := b.cells[key]
	if !ok {
		row = make(map[string]int64)
		b.cells[key] = row
	}
	row[country] += arrivals
	b.columns[country] = struct{}{}
}

// Build returns the pivot with rows sorted by key and columns by name.
func (b *PivotBuilder[K]) Build() models.Pivot[K] {
	p := models.Pivot[K]{
		Index:   b.index,
		Columns: make([]string, 0, len(b.columns)),
		Rows:    make([]models.PivotRow[K], 0, len(b.cells)),
	}
	for c := range b.columns {
		p.Columns = append(p.Columns, c)
	}
	slices.Sort(p.Columns)

	for k, values := range b.cells {
		p.Rows = append(p.Rows, models.PivotRow[K]{Key: k, Values: values})
	}
	slices.SortFunc(p.Rows, func(a, b models.PivotRow[K]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return p
}

func pivotByCountry[K cmp.Ordered](index string, view []models.JoinedRecord, key func(models.JoinedRecord) K) models.Pivot[K] {
	b := NewPivotBuilder[K](index)
	for _, r := range view {
		b.Add(key(r), r.Country, r.Arrivals)
	}
	return b.Build()
}

// ArrivalTrend sums arrivals per (year, country).
func ArrivalTrend(view []models.JoinedRecord) models.Pivot[int] {
	return pivotByCountry("year", view, func(r models.JoinedRecord) int { return r.Year })
}

// ByPoe sums arrivals per (poe, country).
func ByPoe(view []models.JoinedRecord) models.Pivot[string] {
	return pivotByCountry("poe", view, func(r models.JoinedRecord) string { return r.Poe })
}

// Monthly sums arrivals per (month, country) across every year in view.
func Monthly(view []models.JoinedRecord) models.Pivot[int] {
	return pivotByCountry("month", view, func(r models.JoinedRecord) int { return r.Month })
}

package models

import "cmp"

// YearRange is an inclusive pair of years.
type YearRange struct {
	From int `json:"from" msgpack:"from"`
	To   int `json:"to" msgpack:"to"`
}

// CountryTotal is the summed arrivals of one country.
type CountryTotal struct {
	Country  string `json:"country" msgpack:"country"`
	Arrivals int64  `json:"arrivals" msgpack:"arrivals"`
}

// YearlyTotals is the per-country metric strip for a single year.
// An empty Totals slice means "no data", which is not the same as a zero total.
type YearlyTotals struct {
	Year   int            `json:"year" msgpack:"year"`
	Totals []CountryTotal `json:"totals" msgpack:"totals"`
}

// Empty reports whether the view has no data.
func (y YearlyTotals) Empty() bool {
	return len(y.Totals) == 0
}

// Get returns the total for country and whether it is present.
func (y YearlyTotals) Get(country string) (int64, bool) {
	for _, t := range y.Totals {
		if t.Country == country {
			return t.Arrivals, true
		}
	}
	return 0, false
}

// Sum returns the total over all countries.
func (y YearlyTotals) Sum() int64 {
	var sum int64
	for _, t := range y.Totals {
		sum += t.Arrivals
	}
	return sum
}

// PivotRow is one row label of a pivot table. Values holds only the
// combinations that occur in the data; missing columns are absent, not zero.
type PivotRow[K cmp.Ordered] struct {
	Key    K                `json:"key" msgpack:"key"`
	Values map[string]int64 `json:"values" msgpack:"values"`
}

// Pivot is a table with one grouping key as rows (Index) and country as columns.
type Pivot[K cmp.Ordered] struct {
	Index   string        `json:"index" msgpack:"index"`
	Columns []string      `json:"columns" msgpack:"columns"`
	Rows    []PivotRow[K] `json:"rows" msgpack:"rows"`
}

// Empty reports whether the pivot has no rows.
func (p Pivot[K]) Empty() bool {
	return len(p.Rows) == 0
}

// Get returns the cell at (row, column) and whether it exists.
func (p Pivot[K]) Get(row K, column string) (int64, bool) {
	for _, r := range p.Rows {
		if r.Key == row {
			v, ok := r.Values[column]
			return v, ok
		}
	}
	return 0, false
}

// MapPoint is a distinct POE coordinate.
type MapPoint struct {
	Lat  float64 `json:"lat" msgpack:"lat"`
	Long float64 `json:"lon" msgpack:"lon"`
}

// MapBounds is the viewport enclosing every point.
type MapBounds struct {
	South float64 `json:"south" msgpack:"south"`
	West  float64 `json:"west" msgpack:"west"`
	North float64 `json:"north" msgpack:"north"`
	East  float64 `json:"east" msgpack:"east"`
}

// MapView is the deduplicated point list plus a suggested viewport.
// Center and Bounds are nil when there are no points.
type MapView struct {
	Points []MapPoint `json:"points" msgpack:"points"`
	Center *MapPoint  `json:"center,omitempty" msgpack:"center,omitempty"`
	Bounds *MapBounds `json:"bounds,omitempty" msgpack:"bounds,omitempty"`
}

// Empty reports whether the map has no points.
func (m MapView) Empty() bool {
	return len(m.Points) == 0
}

// Dashboard bundles every view computed from one selection.
type Dashboard struct {
	YearRange    YearRange     `json:"yearRange" msgpack:"yearRange"`
	Engine       string        `json:"engine" msgpack:"engine"`
	YearlyTotals YearlyTotals  `json:"yearlyTotals" msgpack:"yearlyTotals"`
	Trend        Pivot[int]    `json:"trend" msgpack:"trend"`
	Map          MapView       `json:"map" msgpack:"map"`
	ByPoe        Pivot[string] `json:"byPoe" msgpack:"byPoe"`
	Monthly      Pivot[int]    `json:"monthly" msgpack:"monthly"`
}

// Options describes the selectable values of the full, unfiltered dataset.
type Options struct {
	YearRange YearRange `json:"yearRange"`
	Countries []string  `json:"countries"`
	Poes      []string  `json:"poes"`
	Records   int       `json:"records"`
	LoadedAt  int64     `json:"loadedAt"` // Unix ms
}

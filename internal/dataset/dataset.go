// Package dataset owns the loaded, immutable arrivals dataset and the
// option lists derived from it.
package dataset

import (
	"sort"
	"time"

	"github.com/foreign-arrivals/dashboard/internal/models"
)

// Dataset is a read-only handle over the joined records. Distinct countries,
// POEs and year bounds are computed once from the unfiltered records.
type Dataset struct {
	records   []models.JoinedRecord
	countries []string
	poes      []string
	minYear   int
	maxYear   int
	loadedAt  time.Time
}

// New builds a Dataset. records must not be modified afterwards.
func New(records []models.JoinedRecord, loadedAt time.Time) *Dataset {
	ds := &Dataset{
		records:  records,
		loadedAt: loadedAt,
	}

	countries := make(map[string]struct{})
	poes := make(map[string]struct{})
	for i, r := range records {
		countries[r.Country] = struct{}{}
		poes[r.Poe] = struct{}{}
		if i == 0 || r.Year < ds.minYear {
			ds.minYear = r.Year
		}
		if i == 0 || r.Year > ds.maxYear {
			ds.maxYear = r.Year
		}
	}
	ds.countries = sortedKeys(countries)
	ds.poes = sortedKeys(poes)
	return ds
}

// Records returns the joined records. Callers must treat them as read-only.
func (ds *Dataset) Records() []models.JoinedRecord {
	return ds.records
}

// Len returns the number of records.
func (ds *Dataset) Len() int {
	return len(ds.records)
}

// Countries returns every distinct country, sorted.
func (ds *Dataset) Countries() []string {
	return append([]string(nil), ds.countries...)
}

// Poes returns every distinct POE, sorted.
func (ds *Dataset) Poes() []string {
	return append([]string(nil), ds.poes...)
}

// YearBounds returns the minimum and maximum year present. Both are zero for
// an empty dataset.
func (ds *Dataset) YearBounds() (int, int) {
	return ds.minYear, ds.maxYear
}

// ClampYears clamps each end of a requested range into [minYear, maxYear].
// A zero value means "use the bound". A range the user gave inverted inside
// the bounds stays inverted; validation is the filter's job.
func (ds *Dataset) ClampYears(from, to int) (int, int) {
	if from == 0 {
		from = ds.minYear
	}
	if to == 0 {
		to = ds.maxYear
	}
	return min(max(from, ds.minYear), ds.maxYear), min(max(to, ds.minYear), ds.maxYear)
}

// LoadedAt returns when the dataset was built.
func (ds *Dataset) LoadedAt() time.Time {
	return ds.loadedAt
}

// Options returns the selectable values the host draws its controls from.
func (ds *Dataset) Options() models.Options {
	return models.Options{
		YearRange: models.YearRange{From: ds.minYear, To: ds.maxYear},
		Countries: ds.Countries(),
		Poes:      ds.Poes(),
		Records:   len(ds.records),
		LoadedAt:  ds.loadedAt.UnixMilli(),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

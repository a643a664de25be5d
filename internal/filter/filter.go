// Package filter narrows the joined dataset to a user's selection.
package filter

import (
	"fmt"

	"github.com/foreign-arrivals/dashboard/internal/dataset"
	"github.com/foreign-arrivals/dashboard/internal/models"
)

// InvalidRangeError is returned when YearFrom is after YearTo.
type InvalidRangeError struct {
	From int
	To   int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid year range: from %d is after to %d", e.From, e.To)
}

// ResolveChoice expands a Choice against the full option list. An "all"
// choice yields every option; an explicit choice yields its values as given.
func ResolveChoice(c models.Choice, all []string) []string {
	if c.All {
		return append([]string(nil), all...)
	}
	return append([]string(nil), c.Values...)
}

// Resolve turns user input into a concrete FilterSelection. Years are
// clamped to the dataset's bounds and "all" choices are expanded from the
// unfiltered dataset.
func Resolve(in models.SelectionInput, ds *dataset.Dataset) models.FilterSelection {
	from, to := ds.ClampYears(in.YearFrom, in.YearTo)
	sel := models.NewFilterSelection(
		from,
		to,
		ResolveChoice(in.Countries, ds.Countries()),
		ResolveChoice(in.Poes, ds.Poes()),
	)
	sel.Views = in.Views
	return sel
}

// Filter returns the records with year in [YearFrom, YearTo] whose country
// and POE are both selected. It does not clamp; an inverted range is an
// InvalidRangeError. An empty country or POE set yields an empty result.
// records is never modified.
func Filter(records []models.JoinedRecord, sel models.FilterSelection) ([]models.JoinedRecord, error) {
	if sel.YearFrom > sel.YearTo {
		return nil, &InvalidRangeError{From: sel.YearFrom, To: sel.YearTo}
	}
	out := make([]models.JoinedRecord, 0)
	if sel.Empty() {
		return out, nil
	}
	for _, r := range records {
		if sel.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

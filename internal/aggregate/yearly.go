package aggregate

import (
	"slices"
	"strings"

	"github.com/foreign-arrivals/dashboard/internal/models"
)

// YearlyTotals sums arrivals per country for records of the given year.
// An empty Totals means there is no data for that year.
func YearlyTotals(view []models.JoinedRecord, year int) models.YearlyTotals {
	sums := make(map[string]int64)
	for _, r := range view {
		if r.Year != year {
			continue
		}
		sums[r.Country] += r.Arrivals
	}

	out := models.YearlyTotals{
		Year:   year,
		Totals: make([]models.CountryTotal, 0, len(sums)),
	}
	for country, total := range sums {
		out.Totals = append(out.Totals, models.CountryTotal{Country: country, Arrivals: total})
	}
	slices.SortFunc(out.Totals, func(a, b models.CountryTotal) int {
		return strings.Compare(a.Country, b.Country)
	})
	return out
}

package parser

import (
	"github.com/foreign-arrivals/dashboard/internal/models"
)

// Arrival table columns.
const (
	ColDate     = "date"
	ColPoe      = "poe"
	ColCountry  = "country"
	ColArrivals = "arrivals"
	ColLat      = "lat"
	ColLong     = "long"
)

// ParseArrivals converts a raw table into arrival records. Any unparseable
// date fails the whole table.
func ParseArrivals(t *Table, layouts []string, intern *StringIntern) ([]models.ArrivalRecord, error) {
	if err := t.Require(ColDate, ColPoe, ColCountry, ColArrivals); err != nil {
		return nil, err
	}
	if intern == nil {
		intern = NewStringIntern()
	}
	dateCol, _ := t.Column(ColDate)
	poeCol, _ := t.Column(ColPoe)
	countryCol, _ := t.Column(ColCountry)
	arrivalsCol, _ := t.Column(ColArrivals)

	records := make([]models.ArrivalRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		rawDate := t.Cell(row, dateCol)
		date, ok := ParseDate(rawDate, layouts, t.SerialDates)
		if !ok {
			return nil, &MalformedDateError{Source: t.Source, Row: t.Line(i), Value: rawDate}
		}

		rawCount := t.Cell(row, arrivalsCol)
		count, ok := ParseCount(rawCount)
		if !ok {
			return nil, &ValueError{
				Source: t.Source,
				Row:    t.Line(i),
				Column: ColArrivals,
				Value:  rawCount,
				Reason: "expected a non-negative integer",
			}
		}

		records = append(records, models.ArrivalRecord{
			Date:     date,
			Poe:      intern.Intern(t.Cell(row, poeCol)),
			Country:  intern.Intern(t.Cell(row, countryCol)),
			Arrivals: count,
		})
	}
	return records, nil
}

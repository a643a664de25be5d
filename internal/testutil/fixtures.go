// Package testutil holds fixtures and fakes shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/foreign-arrivals/dashboard/internal/models"
)

// Coord returns a pointer to v, for building records with coordinates.
func Coord(v float64) *float64 {
	return &v
}

// Record builds a joined record dated on the first of the month.
func Record(year, month int, poe, country string, arrivals int64, lat, long *float64) models.JoinedRecord {
	return models.JoinedRecord{
		ArrivalRecord: models.ArrivalRecord{
			Date:     time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
			Poe:      poe,
			Country:  country,
			Arrivals: arrivals,
		},
		Year:  year,
		Month: month,
		Lat:   lat,
		Long:  long,
	}
}

// KLIAJapan is the two-row dataset: KLIA/Japan with 100 arrivals in 2020
// and 50 in 2021, located at (2.75, 101.7).
func KLIAJapan() []models.JoinedRecord {
	return []models.JoinedRecord{
		Record(2020, 1, "KLIA", "Japan", 100, Coord(2.75), Coord(101.7)),
		Record(2021, 3, "KLIA", "Japan", 50, Coord(2.75), Coord(101.7)),
	}
}

// SampleRecords covers several POEs, countries and years, a POE without
// coordinates and a zero-arrival row.
func SampleRecords() []models.JoinedRecord {
	return []models.JoinedRecord{
		Record(2019, 5, "Penang Airport", "Thailand", 12, Coord(5.2971), Coord(100.277)),
		Record(2020, 1, "KLIA", "Japan", 100, Coord(2.75), Coord(101.7)),
		Record(2020, 1, "KLIA", "China", 40, Coord(2.75), Coord(101.7)),
		Record(2020, 2, "Penang Airport", "Japan", 5, Coord(5.2971), Coord(100.277)),
		Record(2020, 7, "Johor Bahru CIQ", "Singapore", 300, nil, nil),
		Record(2021, 3, "KLIA", "Japan", 50, Coord(2.75), Coord(101.7)),
		Record(2021, 3, "Johor Bahru CIQ", "Singapore", 70, nil, nil),
		Record(2021, 1, "Penang Airport", "Japan", 0, Coord(5.2971), Coord(100.277)),
		Record(2021, 11, "Kota Kinabalu Airport", "China", 25, Coord(5.9372), Coord(116.0515)),
		Record(2022, 6, "KLIA", "China", 80, Coord(2.75), Coord(101.7)),
	}
}

// KLIAJapanArrivalsCSV and KLIAJapanPoeCSV are the source files of KLIAJapan.
const (
	KLIAJapanArrivalsCSV = "date,poe,country,arrivals\n2020-01-15,KLIA,Japan,100\n2021-03-01,KLIA,Japan,50\n"
	KLIAJapanPoeCSV      = "poe,lat,long,state\nKLIA,2.75,101.7,Selangor\n"
)

// WriteSources writes the two source tables into dir and returns their paths.
func WriteSources(tb testing.TB, dir, arrivalsCSV, poeCSV string) (string, string) {
	tb.Helper()
	arrivalsPath := filepath.Join(dir, "arrivals.csv")
	poePath := filepath.Join(dir, "poe.csv")
	if err := os.WriteFile(arrivalsPath, []byte(arrivalsCSV), 0644); err != nil {
		tb.Fatalf("writing arrivals: %v", err)
	}
	if err := os.WriteFile(poePath, []byte(poeCSV), 0644); err != nil {
		tb.Fatalf("writing poe: %v", err)
	}
	return arrivalsPath, poePath
}

// Package models contains domain types for the Foreign Arrivals dashboard.
package models

import "time"

// ArrivalRecord is one row of the arrivals table.
type ArrivalRecord struct {
	Date     time.Time `json:"date"`
	Poe      string    `json:"poe"`
	Country  string    `json:"country"`
	Arrivals int64     `json:"arrivals"`
}

// PoeMetadata describes a point of entry. Lat and Long are nil when the
// source cell was empty.
type PoeMetadata struct {
	Poe        string            `json:"poe"`
	Lat        *float64          `json:"lat,omitempty"`
	Long       *float64          `json:"long,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// JoinedRecord is an ArrivalRecord with its derived calendar fields and the
// POE metadata attached by a left join. Lat/Long stay nil when no metadata
// row matched the record's POE.
type JoinedRecord struct {
	ArrivalRecord
	Year       int               `json:"year"`
	Month      int               `json:"month"`
	Lat        *float64          `json:"lat,omitempty"`
	Long       *float64          `json:"long,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// HasLocation reports whether both coordinates are present.
func (r JoinedRecord) HasLocation() bool {
	return r.Lat != nil && r.Long != nil
}

package parser

import "github.com/foreign-arrivals/dashboard/internal/models"

// Join left-joins arrivals against POE metadata on poe. Every arrival yields
// exactly one joined record; when several metadata rows share a POE the first
// one is used. Year and Month are derived from the arrival date.
func Join(arrivals []models.ArrivalRecord, poes []models.PoeMetadata) []models.JoinedRecord {
	byPoe := make(map[string]models.PoeMetadata, len(poes))
	for _, p := range poes {
		if _, seen := byPoe[p.Poe]; !seen {
			byPoe[p.Poe] = p
		}
	}

	joined := make([]models.JoinedRecord, len(arrivals))
	for i, a := range arrivals {
		jr := models.JoinedRecord{
			ArrivalRecord: a,
			Year:          a.Date.Year(),
			Month:         int(a.Date.Month()),
		}
		if meta, ok := byPoe[a.Poe]; ok {
			jr.Lat = meta.Lat
			jr.Long = meta.Long
			jr.Attributes = meta.Attributes
		}
		joined[i] = jr
	}
	return joined
}

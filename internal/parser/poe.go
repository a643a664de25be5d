package parser

import (
	"math"
	"strconv"

	"github.com/foreign-arrivals/dashboard/internal/models"
)

// ParsePoeMetadata converts a raw table into POE metadata. Columns other than
// poe/lat/long are kept as attributes. Empty coordinates stay nil.
func ParsePoeMetadata(t *Table, intern *StringIntern) ([]models.PoeMetadata, error) {
	if err := t.Require(ColPoe, ColLat, ColLong); err != nil {
		return nil, err
	}
	if intern == nil {
		intern = NewStringIntern()
	}
	poeCol, _ := t.Column(ColPoe)
	latCol, _ := t.Column(ColLat)
	longCol, _ := t.Column(ColLong)
	others := t.OtherColumns(ColPoe, ColLat, ColLong)

	out := make([]models.PoeMetadata, 0, len(t.Rows))
	for i, row := range t.Rows {
		lat, err := parseCoordinate(t, i, row, latCol, ColLat, 90)
		if err != nil {
			return nil, err
		}
		long, err := parseCoordinate(t, i, row, longCol, ColLong, 180)
		if err != nil {
			return nil, err
		}

		var attrs map[string]string
		for name, col := range others {
			v := t.Cell(row, col)
			if v == "" {
				continue
			}
			if attrs == nil {
				attrs = make(map[string]string, len(others))
			}
			attrs[name] = v
		}

		out = append(out, models.PoeMetadata{
			Poe:        intern.Intern(t.Cell(row, poeCol)),
			Lat:        lat,
			Long:       long,
			Attributes: attrs,
		})
	}
	return out, nil
}

func parseCoordinate(t *Table, i int, row []string, col int, name string, limit float64) (*float64, error) {
	raw := t.Cell(row, col)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < -limit || v > limit {
		return nil, &ValueError{
			Source: t.Source,
			Row:    t.Line(i),
			Column: name,
			Value:  raw,
			Reason: "expected a coordinate in degrees",
		}
	}
	return &v, nil
}

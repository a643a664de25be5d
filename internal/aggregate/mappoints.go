package aggregate

import (
	"github.com/foreign-arrivals/dashboard/internal/models"
	"github.com/golang/geo/s2"
)

// MapPoints returns the distinct (lat, long) pairs in view, in first-seen
// order. Records without coordinates are dropped. Equality is exact.
func MapPoints(view []models.JoinedRecord) models.MapView {
	seen := make(map[models.MapPoint]struct{})
	points := make([]models.MapPoint, 0)
	for _, r := range view {
		if !r.HasLocation() {
			continue
		}
		p := models.MapPoint{Lat: *r.Lat, Long: *r.Long}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		points = append(points, p)
	}
	return NewMapView(points)
}

// NewMapView wraps already-distinct points with the viewport enclosing them.
func NewMapView(points []models.MapPoint) models.MapView {
	out := models.MapView{Points: points}
	if out.Points == nil {
		out.Points = make([]models.MapPoint, 0)
	}
	rect := s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Long))
	}
	if rect.IsEmpty() {
		return out
	}

	// Bounds may wrap the antimeridian, in which case East < West.
	center := rect.Center()
	out.Center = &models.MapPoint{Lat: center.Lat.Degrees(), Long: center.Lng.Degrees()}
	out.Bounds = &models.MapBounds{
		South: rect.Lo().Lat.Degrees(),
		West:  rect.Lo().Lng.Degrees(),
		North: rect.Hi().Lat.Degrees(),
		East:  rect.Hi().Lng.Degrees(),
	}
	return out
}

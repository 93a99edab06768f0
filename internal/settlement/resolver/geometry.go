package resolver

import (
	"math"

	"github.com/convoy-settlement-engine/internal/domain/subsidy"
)

// pointInPolygon reports whether p lies inside the polygon using the even-odd
// ray casting rule. Points exactly on an edge may resolve either way; zone
// polygons are coarse map regions, so boundary ambiguity is acceptable.
func pointInPolygon(p subsidy.Coordinate, polygon []subsidy.Coordinate) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		a, b := polygon[i], polygon[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// withinRadius reports whether p lies within radius of center.
func withinRadius(p, center subsidy.Coordinate, radius float64) bool {
	dx := p.X - center.X
	dy := p.Y - center.Y
	return math.Hypot(dx, dy) <= radius
}

// zoneContains reports whether the zone matches position p: area zones by
// polygon containment, point zones within the tolerance radius.
func zoneContains(zone *subsidy.Zone, p subsidy.Coordinate, tolerance float64) bool {
	switch zone.Kind {
	case subsidy.ZoneArea:
		return pointInPolygon(p, zone.Polygon)
	case subsidy.ZonePoint:
		if zone.Point == nil {
			return false
		}
		return withinRadius(p, *zone.Point, tolerance)
	default:
		return false
	}
}

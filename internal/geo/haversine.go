package geo

import (
	"math"
	"stop-sequencing-service/internal/domain"
)

// Mean Earth radius used by the Haversine formula.
const EarthRadiusKm = 6371.0

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// Great-circle distance in kilometres between two coordinates.
// Inputs are not validated; callers validate stops before computing distances.
func DistanceKm(a, b domain.Coordinates) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Clamp guards asin/atan2 against rounding just past 1.
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Sum of consecutive leg distances along points.
func PathLengthKm(points []domain.Coordinates) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += DistanceKm(points[i-1], points[i])
	}
	return total
}

// Arithmetic mean of latitudes and longitudes. Returns the zero value for an
// empty input. Not a spherical centroid; adequate for city-scale sets.
func Centroid(points []domain.Coordinates) domain.Coordinates {
	if len(points) == 0 {
		return domain.Coordinates{}
	}
	var lat, lon float64
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(points))
	return domain.Coordinates{Lat: lat / n, Lon: lon / n}
}

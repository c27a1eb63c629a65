package services

import (
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/geo"
)

// Travel time assumed per straight-line km when no oracle duration exists.
const EstimatedMinutesPerKm = 2.0

// Points to draw for a tour: start (if any), the stops in order, and the
// start again when the route is a round trip.
func RoutePath(start *domain.StartLocation, stops []domain.Stop, roundTrip bool) []domain.Coordinates {
	path := make([]domain.Coordinates, 0, len(stops)+2)
	if start != nil {
		path = append(path, start.Coordinates)
	}
	for _, s := range stops {
		path = append(path, s.Coordinates)
	}
	if roundTrip && start != nil && len(stops) > 0 {
		path = append(path, start.Coordinates)
	}
	return path
}

// Summarize a tour. Oracle distance and duration are used when present;
// otherwise both are estimated from the straight-line path, including the
// leg back to the start on round trips.
func EstimateRouteStats(
	start *domain.StartLocation,
	stops []domain.Stop,
	settings domain.OptimizationSettings,
	distanceKm domain.Optional[float64],
	durationMin domain.Optional[float64],
) domain.RouteStats {
	stats := domain.RouteStats{TotalStops: len(stops)}

	for _, s := range stops {
		stats.ServiceMinutes += s.ServiceTime
	}

	d, haveDist := distanceKm.Get()
	if !haveDist {
		d = geo.PathLengthKm(RoutePath(start, stops, settings.RoundTrip))
		stats.Estimated = true
	}
	stats.TotalDistanceKm = d

	travel, haveDur := durationMin.Get()
	if !haveDur {
		travel = d * EstimatedMinutesPerKm
		stats.Estimated = true
	}
	stats.TravelMinutes = travel

	stats.TotalMinutes = travel + float64(stats.ServiceMinutes)
	if len(stops) > 0 {
		stats.AvgStopMinutes = stats.TotalMinutes / float64(len(stops))
	}
	return stats
}

package dto

import "stop-sequencing-service/internal/domain"

type OptimizeRequest struct {
	Stops    []StopRequest  `json:"stops"`
	Start    *StartLocation `json:"start"`
	Settings *SettingsPatch `json:"settings"`
}

type RouteStatsResponse struct {
	TotalDistanceKm float64 `json:"total_distance_km"`
	TravelMinutes   float64 `json:"travel_minutes"`
	ServiceMinutes  int     `json:"service_minutes"`
	TotalMinutes    float64 `json:"total_minutes"`
	TotalStops      int     `json:"total_stops"`
	AvgStopMinutes  float64 `json:"avg_stop_minutes"`
	Estimated       bool    `json:"estimated"`
}

func StatsFromDomain(s domain.RouteStats) RouteStatsResponse {
	return RouteStatsResponse{
		TotalDistanceKm: s.TotalDistanceKm,
		TravelMinutes:   s.TravelMinutes,
		ServiceMinutes:  s.ServiceMinutes,
		TotalMinutes:    s.TotalMinutes,
		TotalStops:      s.TotalStops,
		AvgStopMinutes:  s.AvgStopMinutes,
		Estimated:       s.Estimated,
	}
}

// OptimizationResponse reports one optimize call. Geometry points are
// [lng, lat] pairs, GeoJSON order.
type OptimizationResponse struct {
	State            string             `json:"state"`
	Stops            []StopResponse     `json:"stops"`
	TotalDistanceKm  *float64           `json:"total_distance_km"`
	TotalDurationMin *float64           `json:"total_duration_min"`
	Geometry         [][]float64        `json:"geometry,omitempty"`
	Warnings         []string           `json:"warnings,omitempty"`
	Stats            RouteStatsResponse `json:"stats"`
}

func OptimizationFromDomain(res *domain.OptimizationResult, stats domain.RouteStats) *OptimizationResponse {
	if res == nil {
		return nil
	}
	out := &OptimizationResponse{
		State:    string(res.State),
		Stops:    StopsFromDomain(res.Stops),
		Warnings: res.Warnings,
		Stats:    StatsFromDomain(stats),
	}
	if v, ok := res.TotalDistanceKm.Get(); ok {
		out.TotalDistanceKm = &v
	}
	if v, ok := res.TotalDurationMin.Get(); ok {
		out.TotalDurationMin = &v
	}
	for _, c := range res.Geometry {
		out.Geometry = append(out.Geometry, c.CoordsToList())
	}
	return out
}

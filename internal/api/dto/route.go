package dto

import "time"

type RouteRequest struct {
	Name          string         `json:"name"`
	Stops         []StopRequest  `json:"stops"`
	Start         *StartLocation `json:"start"`
	VehicleID     string         `json:"vehicle_id"`
	DriverID      string         `json:"driver_id"`
	ScheduledDate string         `json:"scheduled_date"`
}

// RoutePatch is a partial route update. A null vehicle_id or driver_id
// unassigns.
type RoutePatch struct {
	Name          Field[string]        `json:"name"`
	Stops         Field[[]StopRequest] `json:"stops"`
	Status        Field[string]        `json:"status"`
	VehicleID     Field[string]        `json:"vehicle_id"`
	DriverID      Field[string]        `json:"driver_id"`
	ScheduledDate Field[string]        `json:"scheduled_date"`
}

type RouteResponse struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Stops                []StopResponse `json:"stops"`
	Start                *StartLocation `json:"start"`
	Status               string         `json:"status"`
	TotalDistanceMeters  int            `json:"total_distance_meters"`
	TotalDurationSeconds int            `json:"total_duration_seconds"`
	VehicleID            string         `json:"vehicle_id,omitempty"`
	DriverID             string         `json:"driver_id,omitempty"`
	ScheduledDate        string         `json:"scheduled_date,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}

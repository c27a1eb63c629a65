package dto

import "time"

type SessionResponse struct {
	ID           string                `json:"id"`
	Stops        []StopResponse        `json:"stops"`
	Start        *StartLocation        `json:"start"`
	Settings     SettingsResponse      `json:"settings"`
	State        string                `json:"state"`
	IsOptimizing bool                  `json:"is_optimizing"`
	RouteID      string                `json:"route_id,omitempty"`
	RouteName    string                `json:"route_name,omitempty"`
	Stats        RouteStatsResponse    `json:"stats"`
	LastResult   *OptimizationResponse `json:"last_result,omitempty"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type SaveSessionRequest struct {
	Name string `json:"name"`
}

type LoadRouteRequest struct {
	SessionID string `json:"session_id"`
}

type ImportRowError struct {
	Line    int    `json:"line"`
	Address string `json:"address,omitempty"`
	Error   string `json:"error"`
}

type ImportResponse struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors"`
	Session  SessionResponse  `json:"session"`
}

package domain

import "time"

type RouteStatus string

const (
	RouteDraft      RouteStatus = "draft"
	RouteOptimized  RouteStatus = "optimized"
	RouteInProgress RouteStatus = "in_progress"
	RouteCompleted  RouteStatus = "completed"
)

func (s RouteStatus) Valid() bool {
	switch s {
	case RouteDraft, RouteOptimized, RouteInProgress, RouteCompleted:
		return true
	}
	return false
}

// Represents a saved tour.
// A Route is a snapshot of a planning session: its stops are stored in visiting
// order along with the aggregate distance and duration at the time it was saved.
type Route struct {
	ID                   string
	Name                 string
	Stops                []Stop
	Start                *StartLocation
	Status               RouteStatus
	TotalDistanceMeters  int
	TotalDurationSeconds int
	VehicleID            string
	DriverID             string
	ScheduledDate        string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

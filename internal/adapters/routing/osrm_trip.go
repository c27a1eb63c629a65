package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/platform/obs"
	"stop-sequencing-service/internal/ports"
	"strconv"
	"strings"
)

const (
	DefaultOSRMBaseURL = "https://router.project-osrm.org"
	defaultOSRMProfile = "driving"
)

// OSRMProvider implements ports.RouteOracle with the OSRM trip service.
// The trip service solves the ordering and returns distance, duration and
// geometry in a single request.
type OSRMProvider struct {
	transport
	baseURL string
	profile string
}

func NewOSRMProvider(baseURL string) *OSRMProvider {
	if baseURL == "" {
		baseURL = DefaultOSRMBaseURL
	}
	return &OSRMProvider{
		transport: newTransport(""),
		baseURL:   strings.TrimRight(baseURL, "/"),
		profile:   defaultOSRMProfile,
	}
}

type osrmTripResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Waypoints []struct {
		WaypointIndex int `json:"waypoint_index"`
		TripsIndex    int `json:"trips_index"`
	} `json:"waypoints"`
	Trips []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Legs []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"legs"`
	} `json:"trips"`
}

// Optimize asks OSRM for a trip starting at req.Start.
//
// An open tour without a locked destination is requested as a round trip and
// the closing leg is subtracted from distance and duration; the geometry still
// includes it. Lock-last combined with round trip cannot be expressed by the
// trip service and is reported as unsupported.
func (p *OSRMProvider) Optimize(ctx context.Context, req ports.OracleRequest) (_ ports.OracleResult, err error) {
	defer obs.Time(ctx, "osrm.Optimize")(&err)

	if len(req.Stops) == 0 {
		return ports.OracleResult{}, fmt.Errorf("osrm trip: %w", ports.ErrOracleEmptyResult)
	}
	if req.Options.LockLast && req.Options.RoundTrip {
		return ports.OracleResult{}, fmt.Errorf("osrm trip: lock-last with round trip: %w", errors.ErrUnsupported)
	}

	endpoint := p.tripURL(req)
	resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
		return p.newRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return ports.OracleResult{}, fmt.Errorf("osrm trip: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded osrmTripResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.OracleResult{}, fmt.Errorf("osrm trip: decode response: %w: %w", ports.ErrOracleEmptyResult, err)
	}
	if decoded.Code != "Ok" || len(decoded.Trips) != 1 || len(decoded.Waypoints) != len(req.Stops)+1 {
		return ports.OracleResult{}, fmt.Errorf("osrm trip: code=%q message=%q: %w", decoded.Code, decoded.Message, ports.ErrOracleEmptyResult)
	}

	// Waypoints come back in input order; waypoint_index is the trip position.
	// Input 0 is the start, so stop i is input i+1.
	n := len(decoded.Waypoints)
	byPosition := make([]int, n)
	for i := range byPosition {
		byPosition[i] = -1
	}
	for input, wp := range decoded.Waypoints {
		if wp.WaypointIndex < 0 || wp.WaypointIndex >= n || byPosition[wp.WaypointIndex] != -1 {
			return ports.OracleResult{}, fmt.Errorf("osrm trip: invalid waypoint index %d: %w", wp.WaypointIndex, ports.ErrOracleEmptyResult)
		}
		byPosition[wp.WaypointIndex] = input
	}
	if byPosition[0] != 0 {
		return ports.OracleResult{}, fmt.Errorf("osrm trip: trip does not begin at start: %w", ports.ErrOracleEmptyResult)
	}

	order := make([]int, 0, len(req.Stops))
	for _, input := range byPosition[1:] {
		order = append(order, input-1)
	}

	trip := decoded.Trips[0]
	distance, duration := trip.Distance, trip.Duration
	if closedForOpenTour(req.Options) && len(trip.Legs) > 0 {
		last := trip.Legs[len(trip.Legs)-1]
		distance -= last.Distance
		duration -= last.Duration
	}

	geometry := make([]domain.Coordinates, 0, len(trip.Geometry.Coordinates))
	for _, c := range trip.Geometry.Coordinates {
		if len(c) < 2 {
			return ports.OracleResult{}, fmt.Errorf("osrm trip: invalid coordinate format: %w", ports.ErrOracleEmptyResult)
		}
		geometry = append(geometry, domain.Coordinates{Lon: c[0], Lat: c[1]})
	}

	return ports.OracleResult{
		Order:            order,
		TotalDistanceKm:  distance / 1000,
		TotalDurationMin: duration / 60,
		Geometry:         geometry,
	}, nil
}

// The trip service only supports an open trip when both ends are fixed.
func closedForOpenTour(opts ports.OracleOptions) bool {
	return !opts.RoundTrip && !opts.LockLast
}

func (p *OSRMProvider) tripURL(req ports.OracleRequest) string {
	coords := make([]string, 0, len(req.Stops)+1)
	for _, c := range append([]domain.Coordinates{req.Start}, req.Stops...) {
		coords = append(coords,
			strconv.FormatFloat(c.Lon, 'f', 6, 64)+","+strconv.FormatFloat(c.Lat, 'f', 6, 64))
	}

	q := []string{"source=first", "geometries=geojson", "overview=full"}
	if req.Options.LockLast {
		q = append(q, "roundtrip=false", "destination=last")
	} else {
		q = append(q, "roundtrip=true")
	}

	var exclude []string
	if req.Options.AvoidHighways {
		exclude = append(exclude, "motorway")
	}
	if req.Options.AvoidTolls {
		exclude = append(exclude, "toll")
	}
	if len(exclude) > 0 {
		q = append(q, "exclude="+strings.Join(exclude, ","))
	}

	return fmt.Sprintf("%s/trip/v1/%s/%s?%s", p.baseURL, p.profile, strings.Join(coords, ";"), strings.Join(q, "&"))
}

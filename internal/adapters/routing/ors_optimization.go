package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/platform/obs"
	"stop-sequencing-service/internal/ports"
)

type orsJob struct {
	ID       int       `json:"id"`
	Location []float64 `json:"location"`
}

type orsVehicle struct {
	ID      int       `json:"id"`
	Profile string    `json:"profile"`
	Start   []float64 `json:"start"`
	End     []float64 `json:"end,omitempty"`
}

type orsOptimizationRequest struct {
	Jobs     []orsJob     `json:"jobs"`
	Vehicles []orsVehicle `json:"vehicles"`
}

type orsOptimizationResponse struct {
	Code   int `json:"code"`
	Routes []struct {
		Steps []struct {
			Type string `json:"type"`
			ID   int    `json:"id"`
			Job  int    `json:"job"`
		} `json:"steps"`
	} `json:"routes"`
	Unassigned []struct {
		ID int `json:"id"`
	} `json:"unassigned"`
}

type orsDirectionsOptions struct {
	AvoidFeatures []string `json:"avoid_features,omitempty"`
}

type orsDirectionsRequest struct {
	Coordinates [][]float64           `json:"coordinates"`
	Preference  string                `json:"preference,omitempty"`
	Options     *orsDirectionsOptions `json:"options,omitempty"`
}

type orsDirectionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// Optimize orders stops with the optimization endpoint, then fetches road
// distance, duration and geometry for that order from the directions endpoint.
//
// With LockLast the last stop is not offered as a job; it becomes the vehicle
// end so the solver cannot move it. With RoundTrip the vehicle ends at the start.
func (o *ORSProvider) Optimize(ctx context.Context, req ports.OracleRequest) (_ ports.OracleResult, err error) {
	defer obs.Time(ctx, "ors.Optimize")(&err)

	if len(req.Stops) == 0 {
		return ports.OracleResult{}, fmt.Errorf("ors optimize: %w", ports.ErrOracleEmptyResult)
	}

	order, err := o.solveOrder(ctx, req)
	if err != nil {
		return ports.OracleResult{}, fmt.Errorf("ors optimize: %w", err)
	}

	path := make([]domain.Coordinates, 0, len(order)+2)
	path = append(path, req.Start)
	for _, idx := range order {
		path = append(path, req.Stops[idx])
	}
	if req.Options.RoundTrip {
		path = append(path, req.Start)
	}

	result, err := o.directions(ctx, path, req.Options)
	if err != nil {
		return ports.OracleResult{}, fmt.Errorf("ors optimize: %w", err)
	}
	result.Order = order
	return result, nil
}

func (o *ORSProvider) solveOrder(ctx context.Context, req ports.OracleRequest) ([]int, error) {
	jobCount := len(req.Stops)
	vehicle := orsVehicle{ID: 1, Profile: o.profile, Start: req.Start.CoordsToList()}

	switch {
	case req.Options.LockLast:
		jobCount--
		vehicle.End = req.Stops[len(req.Stops)-1].CoordsToList()
	case req.Options.RoundTrip:
		vehicle.End = req.Start.CoordsToList()
	}

	body := orsOptimizationRequest{Vehicles: []orsVehicle{vehicle}}
	for i := 0; i < jobCount; i++ {
		// Job ids are 1-based; 0 is reserved by the solver for "no job".
		body.Jobs = append(body.Jobs, orsJob{ID: i + 1, Location: req.Stops[i].CoordsToList()})
	}

	order := make([]int, 0, len(req.Stops))
	if jobCount > 0 {
		var decoded orsOptimizationResponse
		if err := o.postJSON(ctx, o.baseURL+"/optimization", body, &decoded); err != nil {
			return nil, fmt.Errorf("optimization: %w", err)
		}
		if decoded.Code != 0 || len(decoded.Routes) == 0 || len(decoded.Unassigned) > 0 {
			return nil, fmt.Errorf("optimization: code=%d routes=%d unassigned=%d: %w",
				decoded.Code, len(decoded.Routes), len(decoded.Unassigned), ports.ErrOracleEmptyResult)
		}

		for _, step := range decoded.Routes[0].Steps {
			if step.Type != "job" {
				continue
			}
			id := step.ID
			if id == 0 {
				id = step.Job
			}
			if id < 1 || id > jobCount {
				return nil, fmt.Errorf("optimization: unknown job id %d: %w", id, ports.ErrOracleEmptyResult)
			}
			order = append(order, id-1)
		}
	}

	if req.Options.LockLast {
		order = append(order, len(req.Stops)-1)
	}
	if len(order) != len(req.Stops) {
		return nil, fmt.Errorf("optimization: %d of %d stops routed: %w", len(order), len(req.Stops), ports.ErrOracleEmptyResult)
	}
	return order, nil
}

func (o *ORSProvider) directions(ctx context.Context, path []domain.Coordinates, opts ports.OracleOptions) (ports.OracleResult, error) {
	body := orsDirectionsRequest{Preference: orsPreference(opts.OptimizationType)}
	for _, c := range path {
		body.Coordinates = append(body.Coordinates, c.CoordsToList())
	}

	var avoid []string
	if opts.AvoidHighways {
		avoid = append(avoid, "highways")
	}
	if opts.AvoidTolls {
		avoid = append(avoid, "tollways")
	}
	if len(avoid) > 0 {
		body.Options = &orsDirectionsOptions{AvoidFeatures: avoid}
	}

	var decoded orsDirectionsResponse
	url := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)
	if err := o.postJSON(ctx, url, body, &decoded); err != nil {
		return ports.OracleResult{}, fmt.Errorf("directions: %w", err)
	}
	if len(decoded.Features) == 0 {
		return ports.OracleResult{}, fmt.Errorf("directions: %w", ports.ErrOracleEmptyResult)
	}

	f := decoded.Features[0]
	geometry := make([]domain.Coordinates, 0, len(f.Geometry.Coordinates))
	for _, c := range f.Geometry.Coordinates {
		if len(c) < 2 {
			return ports.OracleResult{}, fmt.Errorf("directions: invalid coordinate format: %w", ports.ErrOracleEmptyResult)
		}
		geometry = append(geometry, domain.Coordinates{Lon: c[0], Lat: c[1]})
	}

	return ports.OracleResult{
		TotalDistanceKm:  f.Properties.Summary.Distance / 1000,
		TotalDurationMin: f.Properties.Summary.Duration / 60,
		Geometry:         geometry,
	}, nil
}

func orsPreference(t domain.OptimizationType) string {
	switch t {
	case domain.OptimizeShortestDistance:
		return "shortest"
	case domain.OptimizeBalanced:
		return "recommended"
	default:
		return "fastest"
	}
}

func (o *ORSProvider) postJSON(ctx context.Context, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, url, bytes.NewReader(payload))
	})
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w: %w", ports.ErrOracleEmptyResult, err)
	}
	return nil
}

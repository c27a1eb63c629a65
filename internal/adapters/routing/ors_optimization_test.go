package routing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/ports"
	"testing"
	"time"
)

func newTestORS(t *testing.T, handler http.Handler) *ORSProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewORSProvider("test-key", srv.URL, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	p.backoff = time.Millisecond
	return p
}

func testRequest() ports.OracleRequest {
	return ports.OracleRequest{
		Start: domain.Coordinates{Lat: 40.70, Lon: -73.95},
		Stops: []domain.Coordinates{
			{Lat: 40.730, Lon: -73.935},
			{Lat: 40.731, Lon: -73.990},
			{Lat: 40.758, Lon: -73.985},
		},
	}
}

func TestORSOptimize(t *testing.T) {
	var gotOpt orsOptimizationRequest
	var gotDir orsDirectionsRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/optimization", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotOpt); err != nil {
			t.Errorf("decode optimization body: %v", err)
		}
		w.Write([]byte(`{"code":0,"routes":[{"steps":[
			{"type":"start"},
			{"type":"job","id":3},
			{"type":"job","id":1},
			{"type":"job","job":2},
			{"type":"end"}]}],"unassigned":[]}`))
	})
	mux.HandleFunc("/v2/directions/driving-car/geojson", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotDir); err != nil {
			t.Errorf("decode directions body: %v", err)
		}
		w.Write([]byte(`{"features":[{"geometry":{"coordinates":[[-73.95,40.70],[-73.985,40.758]]},
			"properties":{"summary":{"distance":12500,"duration":1800}}}]}`))
	})

	p := newTestORS(t, mux)

	req := testRequest()
	req.Options = ports.OracleOptions{AvoidTolls: true, RoundTrip: true, OptimizationType: domain.OptimizeShortestDistance}

	res, err := p.Optimize(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{2, 0, 1}
	for i := range want {
		if res.Order[i] != want[i] {
			t.Fatalf("Order = %v, want %v", res.Order, want)
		}
	}
	if res.TotalDistanceKm != 12.5 || res.TotalDurationMin != 30 {
		t.Fatalf("distance/duration = %v/%v, want 12.5/30", res.TotalDistanceKm, res.TotalDurationMin)
	}
	if len(res.Geometry) != 2 || res.Geometry[1].Lat != 40.758 {
		t.Fatalf("geometry = %+v", res.Geometry)
	}

	if len(gotOpt.Jobs) != 3 || gotOpt.Jobs[0].ID != 1 {
		t.Fatalf("jobs = %+v", gotOpt.Jobs)
	}
	if len(gotOpt.Vehicles) != 1 || len(gotOpt.Vehicles[0].End) != 2 || gotOpt.Vehicles[0].End[1] != 40.70 {
		t.Fatalf("round trip vehicle should end at start: %+v", gotOpt.Vehicles)
	}

	// start + 3 stops + closing start
	if len(gotDir.Coordinates) != 5 {
		t.Fatalf("directions coordinates = %d, want 5", len(gotDir.Coordinates))
	}
	if gotDir.Preference != "shortest" {
		t.Fatalf("preference = %q, want shortest", gotDir.Preference)
	}
	if gotDir.Options == nil || len(gotDir.Options.AvoidFeatures) != 1 || gotDir.Options.AvoidFeatures[0] != "tollways" {
		t.Fatalf("avoid features = %+v", gotDir.Options)
	}
}

func TestORSOptimizeLockLastKeepsLastStopOutOfJobs(t *testing.T) {
	var gotOpt orsOptimizationRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/optimization", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotOpt)
		w.Write([]byte(`{"code":0,"routes":[{"steps":[{"type":"job","id":2},{"type":"job","id":1}]}]}`))
	})
	mux.HandleFunc("/v2/directions/driving-car/geojson", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[{"geometry":{"coordinates":[]},"properties":{"summary":{"distance":1000,"duration":60}}}]}`))
	})

	p := newTestORS(t, mux)
	req := testRequest()
	req.Options.LockLast = true

	res, err := p.Optimize(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotOpt.Jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(gotOpt.Jobs))
	}
	if gotOpt.Vehicles[0].End[1] != 40.758 {
		t.Fatalf("vehicle end = %v, want last stop", gotOpt.Vehicles[0].End)
	}
	want := []int{1, 0, 2}
	for i := range want {
		if res.Order[i] != want[i] {
			t.Fatalf("Order = %v, want %v", res.Order, want)
		}
	}
}

func TestORSOptimizeErrors(t *testing.T) {
	t.Run("upstream 500 after retries", func(t *testing.T) {
		calls := 0
		p := newTestORS(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			http.Error(w, "boom", http.StatusInternalServerError)
		}))

		_, err := p.Optimize(context.Background(), testRequest())
		var ue *ports.UpstreamError
		if !errors.As(err, &ue) || ue.Status != 500 {
			t.Fatalf("expected UpstreamError 500, got %v", err)
		}
		if calls != 4 {
			t.Fatalf("calls = %d, want 4", calls)
		}
	})

	t.Run("client error is not retried", func(t *testing.T) {
		calls := 0
		p := newTestORS(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			http.Error(w, "bad key", http.StatusForbidden)
		}))

		_, err := p.Optimize(context.Background(), testRequest())
		var ue *ports.UpstreamError
		if !errors.As(err, &ue) || ue.Status != http.StatusForbidden {
			t.Fatalf("expected UpstreamError 403, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("calls = %d, want 1", calls)
		}
	})

	t.Run("unassigned jobs", func(t *testing.T) {
		p := newTestORS(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code":0,"routes":[{"steps":[{"type":"job","id":1}]}],"unassigned":[{"id":2},{"id":3}]}`))
		}))

		_, err := p.Optimize(context.Background(), testRequest())
		if !errors.Is(err, ports.ErrOracleEmptyResult) {
			t.Fatalf("expected ErrOracleEmptyResult, got %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		p := newTestORS(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))

		_, err := p.Optimize(context.Background(), testRequest())
		if !errors.Is(err, ports.ErrOracleEmptyResult) {
			t.Fatalf("expected ErrOracleEmptyResult, got %v", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		p, _ := NewORSProvider("k", url, nil)
		p.backoff = time.Millisecond
		_, err := p.Optimize(context.Background(), testRequest())
		if !errors.Is(err, ports.ErrOracleNetwork) {
			t.Fatalf("expected ErrOracleNetwork, got %v", err)
		}
	})
}

func TestNewORSProviderRequiresKey(t *testing.T) {
	if _, err := NewORSProvider("  ", "", nil); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

package dto

import (
	"encoding/json"
	"errors"
	"stop-sequencing-service/internal/domain"
	"testing"
)

func TestSettingsPatchDistinguishesAbsentFromNull(t *testing.T) {
	var p SettingsPatch
	body := `{"round_trip": true, "max_stops": null, "max_distance_km": 40}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	u, err := p.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	if v, ok := u.RoundTrip.Get(); !ok || !v {
		t.Fatalf("round_trip = %v, %v", v, ok)
	}
	if u.LockLastDestination.IsSet() {
		t.Fatalf("absent field reported as set")
	}
	if !u.ClearMaxStops || u.MaxStops.IsSet() {
		t.Fatalf("null max_stops should clear: %+v", u)
	}
	if v, ok := u.MaxDistanceKm.Get(); !ok || v != 40 {
		t.Fatalf("max_distance_km = %v, %v", v, ok)
	}
	if u.ClearMaxDistance {
		t.Fatalf("max distance should not be cleared")
	}
}

func TestSettingsPatchRejectsNullFlags(t *testing.T) {
	var p SettingsPatch
	if err := json.Unmarshal([]byte(`{"avoid_tolls": null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := p.ToDomain(); !errors.Is(err, domain.ErrMalformedInput) {
		t.Fatalf("err = %v, want ErrMalformedInput", err)
	}
}

func TestStopPatch(t *testing.T) {
	var p StopPatch
	body := `{"name": null, "notes": "ring twice", "coordinates": {"lat": 40.7, "lng": -73.9}}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	u, err := p.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}

	got := u.Apply(domain.Stop{ID: "s", Address: "a", Name: "old"})
	if got.Name != "" || got.Notes != "ring twice" || got.Coordinates.Lon != -73.9 || got.Address != "a" {
		t.Fatalf("applied = %+v", got)
	}

	p = StopPatch{}
	if err := json.Unmarshal([]byte(`{"coordinates": null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := p.ToDomain(); !errors.Is(err, domain.ErrMalformedInput) {
		t.Fatalf("null coordinates: err = %v", err)
	}
}

func TestOptimizationFromDomainGeometryIsLngLat(t *testing.T) {
	res := &domain.OptimizationResult{
		State:           domain.StateSuccess,
		TotalDistanceKm: domain.Some(3.5),
		Geometry:        []domain.Coordinates{{Lat: 40.1, Lon: -73.2}},
	}
	out := OptimizationFromDomain(res, domain.RouteStats{})
	if out.TotalDistanceKm == nil || *out.TotalDistanceKm != 3.5 || out.TotalDurationMin != nil {
		t.Fatalf("out = %+v", out)
	}
	if len(out.Geometry) != 1 || out.Geometry[0][0] != -73.2 || out.Geometry[0][1] != 40.1 {
		t.Fatalf("geometry = %v", out.Geometry)
	}
	if OptimizationFromDomain(nil, domain.RouteStats{}) != nil {
		t.Fatalf("nil result should map to nil")
	}
}

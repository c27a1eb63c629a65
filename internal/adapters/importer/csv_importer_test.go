package importer

import (
	"context"
	"errors"
	"stop-sequencing-service/internal/domain"
	"strings"
	"sync"
	"testing"
)

type fakeGeocoder struct {
	mu    sync.Mutex
	known map[string]domain.Coordinates
	calls int
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	c, ok := f.known[address]
	if !ok {
		return domain.Coordinates{}, domain.ErrNotFound
	}
	return c, nil
}

const sampleCSV = `Address,Name,Latitude,Longitude,start_time,end_time,Priority,Notes,Service Minutes
1 Main St,Bakery,40.730,-73.935,09:00,12:00,High,side door,10
2 Oak Ave,,,,,,,,
,,,,,,,,
3 Pine Rd,Florist,abc,-73.9,,,,,
4 Elm St,Deli,40.75,-73.98,,,urgent,,
5 Birch Ln,,,,,,low,,
`

func TestCSVImporter(t *testing.T) {
	geo := &fakeGeocoder{known: map[string]domain.Coordinates{
		"2 Oak Ave": {Lat: 40.74, Lon: -73.99},
	}}
	im := NewCSVImporter(geo)

	res, err := im.Import(context.Background(), strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Imported != 2 || res.Failed != 3 {
		t.Fatalf("imported=%d failed=%d errors=%+v", res.Imported, res.Failed, res.Errors)
	}

	first := res.Stops[0]
	if first.Address != "1 Main St" || first.Name != "Bakery" || first.Notes != "side door" {
		t.Fatalf("first = %+v", first)
	}
	if first.Coordinates != (domain.Coordinates{Lat: 40.730, Lon: -73.935}) {
		t.Fatalf("coords = %+v", first.Coordinates)
	}
	if first.TimeWindowStart != "09:00" || first.TimeWindowEnd != "12:00" || first.Priority != domain.PriorityHigh {
		t.Fatalf("window/priority = %+v", first)
	}
	if v, ok := first.ServiceTime.Get(); !ok || v != 10 {
		t.Fatalf("service time = %v,%v", v, ok)
	}

	second := res.Stops[1]
	if second.Address != "2 Oak Ave" || second.Coordinates.Lat != 40.74 {
		t.Fatalf("geocoded row = %+v", second)
	}
	if second.ServiceTime.IsSet() {
		t.Fatalf("blank service time should stay unset")
	}

	// Only rows without coordinates hit the geocoder.
	if geo.calls != 2 {
		t.Fatalf("geocoder calls = %d, want 2", geo.calls)
	}

	lines := map[int]bool{}
	for _, e := range res.Errors {
		lines[e.Line] = true
	}
	for _, want := range []int{5, 6, 7} {
		if !lines[want] {
			t.Fatalf("missing error for line %d: %+v", want, res.Errors)
		}
	}
}

func TestCSVImporterWithoutGeocoder(t *testing.T) {
	im := NewCSVImporter(nil)
	res, err := im.Import(context.Background(), strings.NewReader("address,lat,lng\n1 Main St,,\n2 Oak,40.7,-73.9\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Imported != 1 || res.Failed != 1 {
		t.Fatalf("imported=%d failed=%d", res.Imported, res.Failed)
	}
	if !strings.Contains(res.Errors[0].Err, "no geocoder") {
		t.Fatalf("error = %q", res.Errors[0].Err)
	}
}

func TestCSVImporterRejectsBadHeader(t *testing.T) {
	im := NewCSVImporter(nil)
	for _, body := range []string{"", "name,lat,lng\nx,1,2\n"} {
		if _, err := im.Import(context.Background(), strings.NewReader(body)); !errors.Is(err, domain.ErrMalformedInput) {
			t.Fatalf("body %q: expected ErrMalformedInput, got %v", body, err)
		}
	}
}

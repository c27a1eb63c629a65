package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/platform/obs"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves an address using OpenRouteService (/geocode/search).
// Results are read from and written to the geocode cache when one is set.
func (o *ORSProvider) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, fmt.Errorf("geocode: %w: address must be non-empty", domain.ErrMalformedInput)
	}

	// Check persistent geocode cache before issuing external API calls.
	if o.geocodeCache != nil {
		c, ok, err := o.geocodeCache.Get(ctx, norm)
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("geocode: read cache: %w", err)
		}
		if ok {
			return c, nil
		}
	}

	endpoint := o.baseURL + "/geocode/search"
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode: decode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode: no results for %q: %w", norm, domain.ErrNotFound)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, errors.New("geocode: invalid coordinate format for " + norm)
	}

	c := domain.Coordinates{Lon: coords[0], Lat: coords[1]}

	if o.geocodeCache != nil {
		if err := o.geocodeCache.Set(ctx, norm, c); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	return c, nil
}

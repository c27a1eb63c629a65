package routing

import (
	"errors"
	"stop-sequencing-service/internal/ports"
	"strings"
)

const (
	DefaultORSBaseURL = "https://api.openrouteservice.org"
	defaultORSProfile = "driving-car"
)

// ORSProvider implements ports.RouteOracle and ports.Geocoder using
// OpenRouteService.
//
// It coordinates:
//   - Stop ordering through the optimization (VROOM) endpoint
//   - Road distance, duration and geometry through the directions endpoint
//   - Address geocoding with a persistent geocode cache
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSProvider struct {
	transport
	baseURL      string
	profile      string
	geocodeCache ports.GeocodeCache
}

// geocodeCache may be nil.
func NewORSProvider(apiKey, baseURL string, geocodeCache ports.GeocodeCache) (*ORSProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = DefaultORSBaseURL
	}

	return &ORSProvider{
		transport:    newTransport(apiKey),
		baseURL:      strings.TrimRight(baseURL, "/"),
		profile:      defaultORSProfile,
		geocodeCache: geocodeCache,
	}, nil
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"stop-sequencing-service/internal/api/dto"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/ports"
	"strings"
)

// StopResolver turns stop requests into inputs, geocoding addresses that
// arrive without coordinates.
type StopResolver struct {
	Geocoder ports.Geocoder // may be nil
}

func (sr *StopResolver) Resolve(ctx context.Context, reqs []dto.StopRequest) ([]domain.StopInput, error) {
	out := make([]domain.StopInput, 0, len(reqs))
	for i, req := range reqs {
		in := req.ToInput()
		if req.Coordinates == nil {
			if sr == nil || sr.Geocoder == nil {
				return nil, fmt.Errorf("%w: stop %d: coordinates are required", domain.ErrMalformedInput, i)
			}
			if strings.TrimSpace(req.Address) == "" {
				return nil, fmt.Errorf("%w: stop %d: address must be non-empty", domain.ErrMalformedInput, i)
			}
			c, err := sr.Geocoder.Geocode(ctx, req.Address)
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: stop %d: address %q not found", domain.ErrMalformedInput, i, req.Address)
			}
			if err != nil {
				return nil, fmt.Errorf("stop %d: geocode %q: %w", i, req.Address, err)
			}
			in.Coordinates = c
		}
		out = append(out, in)
	}
	return out, nil
}

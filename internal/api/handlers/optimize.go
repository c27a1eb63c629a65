package handlers

import (
	"net/http"
	"stop-sequencing-service/internal/api/dto"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/services"

	"github.com/google/uuid"
)

// OptimizeHandler orders a list of stops without keeping any state.
type OptimizeHandler struct {
	Sessions *services.SessionService
	Resolver *StopResolver
}

func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req dto.OptimizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings := domain.DefaultOptimizationSettings()
	if req.Settings != nil {
		u, err := req.Settings.ToDomain()
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		settings = u.Apply(settings)
	}

	inputs, err := h.Resolver.Resolve(r.Context(), req.Stops)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	stops := make([]domain.Stop, 0, len(inputs))
	for _, in := range inputs {
		s := in.ToStop(settings.DefaultServiceTime)
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		stops = append(stops, s)
	}

	var start *domain.StartLocation
	if req.Start != nil {
		l := req.Start.ToDomain()
		start = &l
	}

	res, err := h.Sessions.OptimizeOnce(r.Context(), services.OptimizeRequest{
		Stops:    stops,
		Start:    start,
		Settings: settings,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	stats := services.EstimateRouteStats(start, res.Stops, settings, res.TotalDistanceKm, res.TotalDurationMin)
	writeJSON(w, r, http.StatusOK, dto.OptimizationFromDomain(res, stats))
}

package handlers

import (
	"io"
	"net/http"
	"stop-sequencing-service/internal/adapters/importer"
	"stop-sequencing-service/internal/api/dto"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/services"
	"strings"

	"github.com/gorilla/mux"
)

// SessionHandler exposes planning sessions: editing a tour and optimizing it.
type SessionHandler struct {
	Sessions *services.SessionService
	Resolver *StopResolver
	Importer *importer.CSVImporter
}

func sessionResponse(snap services.SessionSnapshot) dto.SessionResponse {
	var dist, dur domain.Optional[float64]
	if snap.LastResult != nil {
		dist, dur = snap.LastResult.TotalDistanceKm, snap.LastResult.TotalDurationMin
	}
	stats := services.EstimateRouteStats(snap.Start, snap.Stops, snap.Settings, dist, dur)

	return dto.SessionResponse{
		ID:           snap.ID,
		Stops:        dto.StopsFromDomain(snap.Stops),
		Start:        dto.StartFromDomain(snap.Start),
		Settings:     dto.SettingsFromDomain(snap.Settings),
		State:        string(snap.State),
		IsOptimizing: snap.IsOptimizing,
		RouteID:      snap.RouteID,
		RouteName:    snap.RouteName,
		Stats:        dto.StatsFromDomain(stats),
		LastResult:   dto.OptimizationFromDomain(snap.LastResult, stats),
		UpdatedAt:    snap.UpdatedAt,
	}
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	s, err := h.Sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	return s, true
}

// respond writes the session after an edit, or the edit's error.
func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, s *services.Session, status int, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, status, sessionResponse(s.Snapshot()))
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Create()
	writeJSON(w, r, http.StatusCreated, sessionResponse(s.Snapshot()))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.session(w, r); ok {
		writeJSON(w, r, http.StatusOK, sessionResponse(s.Snapshot()))
	}
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Delete(mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) AddStops(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req dto.AddStopsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	inputs, err := h.Resolver.Resolve(r.Context(), req.Stops)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_, err = s.AddStops(inputs...)
	h.respond(w, r, s, http.StatusCreated, err)
}

func (h *SessionHandler) UpdateStop(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req dto.StopPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := req.ToDomain()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_, err = s.UpdateStop(mux.Vars(r)["stopId"], u)
	h.respond(w, r, s, http.StatusOK, err)
}

func (h *SessionHandler) RemoveStop(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.session(w, r); ok {
		h.respond(w, r, s, http.StatusOK, s.RemoveStop(mux.Vars(r)["stopId"]))
	}
}

func (h *SessionHandler) ClearStops(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.session(w, r); ok {
		h.respond(w, r, s, http.StatusOK, s.ClearStops())
	}
}

func (h *SessionHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req dto.ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, r, s, http.StatusOK, s.Reorder(req.StopIDs))
}

func (h *SessionHandler) SetStart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req dto.StartLocation
	if !decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, r, s, http.StatusOK, s.SetStart(req.ToDomain()))
}

func (h *SessionHandler) ClearStart(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.session(w, r); ok {
		h.respond(w, r, s, http.StatusOK, s.ClearStart())
	}
}

func (h *SessionHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req dto.SettingsPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := req.ToDomain()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_, err = s.UpdateSettings(u)
	h.respond(w, r, s, http.StatusOK, err)
}

func (h *SessionHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, err := h.Sessions.Optimize(r.Context(), s.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(s.Snapshot()))
}

// Import appends the stops of a CSV file to the session. The file is the raw
// request body or the "file" field of a multipart form.
func (h *SessionHandler) Import(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "multipart body must contain a file field")
			return
		}
		defer f.Close()
		body = f
	}

	res, err := h.Importer.Import(r.Context(), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(res.Stops) > 0 {
		if _, err := s.AddStops(res.Stops...); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	out := dto.ImportResponse{
		Imported: res.Imported,
		Failed:   res.Failed,
		Errors:   make([]dto.ImportRowError, 0, len(res.Errors)),
		Session:  sessionResponse(s.Snapshot()),
	}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, dto.ImportRowError{Line: e.Line, Address: e.Address, Error: e.Err})
	}
	writeJSON(w, r, http.StatusOK, out)
}

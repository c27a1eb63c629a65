package handlers

import (
	"net/http"
	"stop-sequencing-service/internal/api/dto"
	"stop-sequencing-service/internal/domain"
	"stop-sequencing-service/internal/services"

	"github.com/gorilla/mux"
)

// RouteHandler exposes saved routes and moves tours between routes and
// sessions.
type RouteHandler struct {
	Routes   *services.RouteService
	Sessions *services.SessionService
	Resolver *StopResolver
}

func routeResponse(rt *domain.Route) dto.RouteResponse {
	return dto.RouteResponse{
		ID:                   rt.ID,
		Name:                 rt.Name,
		Stops:                dto.StopsFromDomain(rt.Stops),
		Start:                dto.StartFromDomain(rt.Start),
		Status:               string(rt.Status),
		TotalDistanceMeters:  rt.TotalDistanceMeters,
		TotalDurationSeconds: rt.TotalDurationSeconds,
		VehicleID:            rt.VehicleID,
		DriverID:             rt.DriverID,
		ScheduledDate:        rt.ScheduledDate,
		CreatedAt:            rt.CreatedAt,
		UpdatedAt:            rt.UpdatedAt,
	}
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Routes.ListRoutes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
	for _, rt := range routes {
		res.Routes = append(res.Routes, routeResponse(rt))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	stops, err := h.Resolver.Resolve(r.Context(), req.Stops)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	in := services.RouteInput{
		Name:          req.Name,
		Stops:         stops,
		VehicleID:     req.VehicleID,
		DriverID:      req.DriverID,
		ScheduledDate: req.ScheduledDate,
	}
	if req.Start != nil {
		l := req.Start.ToDomain()
		in.Start = &l
	}

	rt, err := h.Routes.CreateRoute(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, routeResponse(rt))
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	rt, err := h.Routes.GetRoute(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, routeResponse(rt))
}

func (h *RouteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.RoutePatch
	if !decodeJSON(w, r, &req) {
		return
	}

	u := services.RouteUpdate{
		Name:          req.Name.Optional(),
		VehicleID:     req.VehicleID.Optional(),
		DriverID:      req.DriverID.Optional(),
		ScheduledDate: req.ScheduledDate.Optional(),
	}
	if req.Status.Set {
		u.Status = domain.Some(domain.RouteStatus(req.Status.Value))
	}
	if req.Stops.Set {
		stops, err := h.Resolver.Resolve(r.Context(), req.Stops.Value)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		u.Stops = domain.Some(stops)
	}

	rt, err := h.Routes.UpdateRoute(r.Context(), mux.Vars(r)["id"], u)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, routeResponse(rt))
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Routes.DeleteRoute(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveSession stores a session's tour as a route.
func (h *RouteHandler) SaveSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req dto.SaveSessionRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	rt, err := h.Routes.SaveSession(r.Context(), s, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, routeResponse(rt))
}

// Load copies a route into a session. Without a session_id a new session is
// created.
func (h *RouteHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req dto.LoadRouteRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	var (
		s   *services.Session
		err error
	)
	if req.SessionID != "" {
		if s, err = h.Sessions.Get(req.SessionID); err != nil {
			writeServiceError(w, r, err)
			return
		}
	} else {
		// Check the route exists before creating a session for it.
		if _, err := h.Routes.GetRoute(r.Context(), mux.Vars(r)["id"]); err != nil {
			writeServiceError(w, r, err)
			return
		}
		s = h.Sessions.Create()
	}

	if _, err := h.Routes.LoadIntoSession(r.Context(), mux.Vars(r)["id"], s); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(s.Snapshot()))
}

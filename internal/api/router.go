package api

import (
	"net/http"
	"stop-sequencing-service/internal/adapters/importer"
	"stop-sequencing-service/internal/api/handlers"
	"stop-sequencing-service/internal/ports"
	"stop-sequencing-service/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Deps are the services the HTTP API is built on.
type Deps struct {
	Sessions *services.SessionService
	Routes   *services.RouteService
	Fleet    *services.FleetService
	Importer *importer.CSVImporter
	Geocoder ports.Geocoder // may be nil

	// Name of the configured route oracle, reported by /health.
	OracleName     string
	AllowedOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()

	resolver := &handlers.StopResolver{Geocoder: d.Geocoder}
	health := handlers.NewHealthHandler(d.OracleName)
	optimize := &handlers.OptimizeHandler{Sessions: d.Sessions, Resolver: resolver}
	sessions := &handlers.SessionHandler{Sessions: d.Sessions, Resolver: resolver, Importer: d.Importer}
	routes := &handlers.RouteHandler{Routes: d.Routes, Sessions: d.Sessions, Resolver: resolver}
	fleet := &handlers.FleetHandler{Fleet: d.Fleet}

	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	r.HandleFunc("/optimize", optimize.Optimize).Methods(http.MethodPost)

	r.HandleFunc("/sessions", sessions.Create).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", sessions.Get).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}", sessions.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/sessions/{id}/stops", sessions.AddStops).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/stops", sessions.ClearStops).Methods(http.MethodDelete)
	r.HandleFunc("/sessions/{id}/stops/{stopId}", sessions.UpdateStop).Methods(http.MethodPatch)
	r.HandleFunc("/sessions/{id}/stops/{stopId}", sessions.RemoveStop).Methods(http.MethodDelete)
	r.HandleFunc("/sessions/{id}/order", sessions.Reorder).Methods(http.MethodPut)
	r.HandleFunc("/sessions/{id}/start", sessions.SetStart).Methods(http.MethodPut)
	r.HandleFunc("/sessions/{id}/start", sessions.ClearStart).Methods(http.MethodDelete)
	r.HandleFunc("/sessions/{id}/settings", sessions.UpdateSettings).Methods(http.MethodPatch)
	r.HandleFunc("/sessions/{id}/optimize", sessions.Optimize).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/import", sessions.Import).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/save", routes.SaveSession).Methods(http.MethodPost)

	r.HandleFunc("/routes", routes.List).Methods(http.MethodGet)
	r.HandleFunc("/routes", routes.Create).Methods(http.MethodPost)
	r.HandleFunc("/routes/{id}", routes.Get).Methods(http.MethodGet)
	r.HandleFunc("/routes/{id}", routes.Update).Methods(http.MethodPut)
	r.HandleFunc("/routes/{id}", routes.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/routes/{id}/load", routes.Load).Methods(http.MethodPost)

	r.HandleFunc("/vehicles", fleet.ListVehicles).Methods(http.MethodGet)
	r.HandleFunc("/vehicles", fleet.CreateVehicle).Methods(http.MethodPost)
	r.HandleFunc("/vehicles/{id}", fleet.GetVehicle).Methods(http.MethodGet)
	r.HandleFunc("/vehicles/{id}", fleet.UpdateVehicle).Methods(http.MethodPut)
	r.HandleFunc("/vehicles/{id}", fleet.DeleteVehicle).Methods(http.MethodDelete)

	r.HandleFunc("/drivers", fleet.ListDrivers).Methods(http.MethodGet)
	r.HandleFunc("/drivers", fleet.CreateDriver).Methods(http.MethodPost)
	r.HandleFunc("/drivers/{id}", fleet.GetDriver).Methods(http.MethodGet)
	r.HandleFunc("/drivers/{id}", fleet.UpdateDriver).Methods(http.MethodPut)
	r.HandleFunc("/drivers/{id}", fleet.DeleteDriver).Methods(http.MethodDelete)

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         86400,
	})

	return c.Handler(requestIDMiddleware(loggingMiddleware(recoverMiddleware(r))))
}

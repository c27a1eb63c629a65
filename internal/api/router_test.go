package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"stop-sequencing-service/internal/adapters/importer"
	"stop-sequencing-service/internal/adapters/repositories"
	"stop-sequencing-service/internal/adapters/routing"
	"stop-sequencing-service/internal/adapters/sessions"
	"stop-sequencing-service/internal/api/dto"
	"stop-sequencing-service/internal/platform/db"
	"stop-sequencing-service/internal/ports"
	"stop-sequencing-service/internal/services"
	"strings"
	"testing"
	"time"
)

func newTestRouter(t *testing.T, oracle ports.RouteOracle) http.Handler {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := repositories.InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	routeRepo := repositories.NewSqliteRouteRepository(conn)
	fleetRepo := repositories.NewSqliteFleetRepository(conn)
	optimizer := services.NewOptimizer(oracle, time.Second)

	return NewRouter(Deps{
		Sessions:   services.NewSessionService(sessions.NewMemoryStore(time.Hour), optimizer),
		Routes:     services.NewRouteService(routeRepo, fleetRepo, fleetRepo),
		Fleet:      services.NewFleetService(fleetRepo, fleetRepo),
		Importer:   importer.NewCSVImporter(nil),
		OracleName: "mock",
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

func stopIDs(stops []dto.StopResponse) string {
	ids := make([]string, len(stops))
	for i, s := range stops {
		ids[i] = s.ID
	}
	return strings.Join(ids, ",")
}

const scenarioStops = `[
	{"id": "1", "address": "1 A St", "coordinates": {"lat": 40.730, "lng": -73.935}},
	{"id": "2", "address": "2 B St", "coordinates": {"lat": 40.731, "lng": -73.990}},
	{"id": "3", "address": "3 C St", "coordinates": {"lat": 40.758, "lng": -73.985}},
	{"id": "4", "address": "4 D St", "coordinates": {"lat": 40.729, "lng": -73.936}}
]`

func TestHealth(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/health", "")
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" || body["oracle"] != "mock" {
		t.Fatalf("body = %v", body)
	}

	expectStatus(t, do(t, h, http.MethodPost, "/health", ""), http.StatusMethodNotAllowed)
}

func TestOptimizeEndpoint(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/optimize", `{"stops": `+scenarioStops+`}`)
	expectStatus(t, rec, http.StatusOK)

	res := decode[dto.OptimizationResponse](t, rec)
	if res.State != "fallback" {
		t.Fatalf("state = %s", res.State)
	}
	if got := stopIDs(res.Stops); got != "3,2,4,1" {
		t.Fatalf("order = %s", got)
	}
	if res.TotalDistanceKm != nil || !res.Stats.Estimated || res.Stats.TotalStops != 4 {
		t.Fatalf("res = %+v", res)
	}
	if res.Stops[0].ServiceTime != 5 {
		t.Fatalf("default service time not applied: %+v", res.Stops[0])
	}
}

func TestOptimizeEndpointRejectsBadInput(t *testing.T) {
	h := newTestRouter(t, nil)

	cases := map[string]string{
		"bad latitude":    `{"stops": [{"id": "a", "address": "x", "coordinates": {"lat": 91, "lng": 0}}]}`,
		"no coordinates":  `{"stops": [{"id": "a", "address": "x"}]}`,
		"unknown field":   `{"stops": [], "colour": "red"}`,
		"two objects":     `{"stops": []}{}`,
		"bad settings":    `{"stops": [], "settings": {"optimization_type": "fastest"}}`,
		"null round trip": `{"stops": [], "settings": {"round_trip": null}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			expectStatus(t, do(t, h, http.MethodPost, "/optimize", body), http.StatusBadRequest)
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/sessions", "")
	expectStatus(t, rec, http.StatusCreated)
	session := decode[dto.SessionResponse](t, rec)
	base := "/sessions/" + session.ID

	rec = do(t, h, http.MethodPost, base+"/stops", `{"stops": `+scenarioStops+`}`)
	expectStatus(t, rec, http.StatusCreated)
	session = decode[dto.SessionResponse](t, rec)
	if got := stopIDs(session.Stops); got != "1,2,3,4" {
		t.Fatalf("stops = %s", got)
	}

	rec = do(t, h, http.MethodPatch, base+"/settings", `{"lock_last_destination": true, "max_distance_km": 100}`)
	expectStatus(t, rec, http.StatusOK)
	session = decode[dto.SessionResponse](t, rec)
	if !session.Settings.LockLastDestination || session.Settings.MaxDistanceKm == nil {
		t.Fatalf("settings = %+v", session.Settings)
	}

	rec = do(t, h, http.MethodPatch, base+"/settings", `{"max_distance_km": null}`)
	expectStatus(t, rec, http.StatusOK)
	if decode[dto.SessionResponse](t, rec).Settings.MaxDistanceKm != nil {
		t.Fatalf("max distance not cleared")
	}

	rec = do(t, h, http.MethodPost, base+"/optimize", "")
	expectStatus(t, rec, http.StatusOK)
	session = decode[dto.SessionResponse](t, rec)
	if got := stopIDs(session.Stops); got != "3,2,1,4" {
		t.Fatalf("optimized = %s", got)
	}
	if session.State != "fallback" || session.LastResult == nil {
		t.Fatalf("session = %+v", session)
	}

	rec = do(t, h, http.MethodPatch, base+"/stops/2", `{"name": "Bakery"}`)
	expectStatus(t, rec, http.StatusOK)
	session = decode[dto.SessionResponse](t, rec)
	if session.Stops[1].Name != "Bakery" || session.State != "idle" || session.LastResult != nil {
		t.Fatalf("after edit = %+v", session)
	}

	expectStatus(t, do(t, h, http.MethodPut, base+"/order", `{"stop_ids": ["1", "2"]}`), http.StatusBadRequest)
	rec = do(t, h, http.MethodPut, base+"/order", `{"stop_ids": ["4", "3", "2", "1"]}`)
	expectStatus(t, rec, http.StatusOK)
	if got := stopIDs(decode[dto.SessionResponse](t, rec).Stops); got != "4,3,2,1" {
		t.Fatalf("reordered = %s", got)
	}

	rec = do(t, h, http.MethodPut, base+"/start", `{"address": "depot", "coordinates": {"lat": 40.7484, "lng": -73.9857}}`)
	expectStatus(t, rec, http.StatusOK)
	if decode[dto.SessionResponse](t, rec).Start == nil {
		t.Fatalf("start not set")
	}
	expectStatus(t, do(t, h, http.MethodDelete, base+"/start", ""), http.StatusOK)

	expectStatus(t, do(t, h, http.MethodDelete, base+"/stops/9", ""), http.StatusNotFound)
	rec = do(t, h, http.MethodDelete, base+"/stops/4", "")
	expectStatus(t, rec, http.StatusOK)
	if got := stopIDs(decode[dto.SessionResponse](t, rec).Stops); got != "3,2,1" {
		t.Fatalf("after remove = %s", got)
	}

	rec = do(t, h, http.MethodDelete, base+"/stops", "")
	expectStatus(t, rec, http.StatusOK)
	if n := len(decode[dto.SessionResponse](t, rec).Stops); n != 0 {
		t.Fatalf("stops after clear = %d", n)
	}

	expectStatus(t, do(t, h, http.MethodDelete, base, ""), http.StatusNoContent)
	expectStatus(t, do(t, h, http.MethodGet, base, ""), http.StatusNotFound)
}

func TestSessionImportCSV(t *testing.T) {
	h := newTestRouter(t, nil)
	session := decode[dto.SessionResponse](t, do(t, h, http.MethodPost, "/sessions", ""))

	csv := "address,name,lat,lng\n" +
		"1 A St,Alpha,40.730,-73.935\n" +
		"2 B St,Beta,40.731,-73.990\n" +
		"3 C St,Gamma,,\n"
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID+"/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)

	res := decode[dto.ImportResponse](t, rec)
	if res.Imported != 2 || res.Failed != 1 || len(res.Errors) != 1 || res.Errors[0].Line != 4 {
		t.Fatalf("import = %+v", res)
	}
	if len(res.Session.Stops) != 2 || res.Session.Stops[0].Name != "Alpha" {
		t.Fatalf("session stops = %+v", res.Session.Stops)
	}
}

func TestSessionRejectsEditsWhileOptimizing(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	oracle := &routing.MockRouteOracle{
		Func: func(ctx context.Context, req ports.OracleRequest) (ports.OracleResult, error) {
			close(entered)
			select {
			case <-release:
			case <-ctx.Done():
			}
			return ports.OracleResult{}, ports.ErrOracleNetwork
		},
	}
	h := newTestRouter(t, oracle)

	session := decode[dto.SessionResponse](t, do(t, h, http.MethodPost, "/sessions", ""))
	base := "/sessions/" + session.ID
	expectStatus(t, do(t, h, http.MethodPost, base+"/stops", `{"stops": `+scenarioStops+`}`), http.StatusCreated)
	expectStatus(t, do(t, h, http.MethodPut, base+"/start", `{"address": "depot", "coordinates": {"lat": 40.7484, "lng": -73.9857}}`), http.StatusOK)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, base+"/optimize", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		done <- rec
	}()
	<-entered

	if !decode[dto.SessionResponse](t, do(t, h, http.MethodGet, base, "")).IsOptimizing {
		t.Errorf("is_optimizing = false")
	}
	expectStatus(t, do(t, h, http.MethodPost, base+"/optimize", ""), http.StatusConflict)
	expectStatus(t, do(t, h, http.MethodDelete, base+"/stops/1", ""), http.StatusConflict)
	close(release)

	rec := <-done
	expectStatus(t, rec, http.StatusOK)
	if s := decode[dto.SessionResponse](t, rec); s.State != "fallback" || stopIDs(s.Stops) != "3,2,4,1" {
		t.Fatalf("session = %+v", s)
	}
}

func TestSaveAndLoadRoute(t *testing.T) {
	h := newTestRouter(t, nil)

	session := decode[dto.SessionResponse](t, do(t, h, http.MethodPost, "/sessions", ""))
	base := "/sessions/" + session.ID
	expectStatus(t, do(t, h, http.MethodPost, base+"/stops", `{"stops": `+scenarioStops+`}`), http.StatusCreated)
	expectStatus(t, do(t, h, http.MethodPost, base+"/optimize", ""), http.StatusOK)

	expectStatus(t, do(t, h, http.MethodPost, base+"/save", ""), http.StatusBadRequest)
	rec := do(t, h, http.MethodPost, base+"/save", `{"name": "Friday"}`)
	expectStatus(t, rec, http.StatusOK)
	route := decode[dto.RouteResponse](t, rec)
	if route.Status != "optimized" || route.TotalDistanceMeters == 0 {
		t.Fatalf("route = %+v", route)
	}

	list := decode[dto.ListRoutesResponse](t, do(t, h, http.MethodGet, "/routes", ""))
	if len(list.Routes) != 1 || list.Routes[0].ID != route.ID {
		t.Fatalf("routes = %+v", list)
	}

	rec = do(t, h, http.MethodPost, "/routes/"+route.ID+"/load", "")
	expectStatus(t, rec, http.StatusOK)
	loaded := decode[dto.SessionResponse](t, rec)
	if loaded.ID == session.ID || loaded.RouteID != route.ID || stopIDs(loaded.Stops) != "3,2,4,1" {
		t.Fatalf("loaded = %+v", loaded)
	}

	rec = do(t, h, http.MethodPut, "/routes/"+route.ID, `{"status": "in_progress", "scheduled_date": "2026-10-20"}`)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[dto.RouteResponse](t, rec); got.Status != "in_progress" || got.ScheduledDate != "2026-10-20" {
		t.Fatalf("updated = %+v", got)
	}

	expectStatus(t, do(t, h, http.MethodPost, "/routes/missing/load", ""), http.StatusNotFound)
	expectStatus(t, do(t, h, http.MethodDelete, "/routes/"+route.ID, ""), http.StatusNoContent)
	expectStatus(t, do(t, h, http.MethodGet, "/routes/"+route.ID, ""), http.StatusNotFound)
}

func TestRoutesAndFleet(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/vehicles", `{"name": "Scooter", "type": "motorcycle", "max_stops": 2}`)
	expectStatus(t, rec, http.StatusCreated)
	scooter := decode[dto.Vehicle](t, rec)

	expectStatus(t, do(t, h, http.MethodPost, "/vehicles", `{"name": "Boat", "type": "boat"}`), http.StatusBadRequest)
	expectStatus(t, do(t, h, http.MethodPost, "/drivers", `{"name": "Sam", "status": "asleep"}`), http.StatusBadRequest)

	rec = do(t, h, http.MethodPost, "/drivers", `{"name": "Sam", "vehicle_id": "`+scooter.ID+`"}`)
	expectStatus(t, rec, http.StatusCreated)
	driver := decode[dto.Driver](t, rec)
	if driver.Status != "available" {
		t.Fatalf("driver = %+v", driver)
	}

	rec = do(t, h, http.MethodPost, "/routes", `{"name": "Saturday", "stops": `+scenarioStops+`}`)
	expectStatus(t, rec, http.StatusCreated)
	route := decode[dto.RouteResponse](t, rec)
	if route.Status != "draft" || len(route.Stops) != 4 {
		t.Fatalf("route = %+v", route)
	}

	// Four stops do not fit a two-stop vehicle.
	expectStatus(t, do(t, h, http.MethodPut, "/routes/"+route.ID, `{"vehicle_id": "`+scooter.ID+`"}`), http.StatusBadRequest)
	rec = do(t, h, http.MethodPut, "/routes/"+route.ID, `{"driver_id": "`+driver.ID+`"}`)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[dto.RouteResponse](t, rec); got.DriverID != driver.ID {
		t.Fatalf("route = %+v", got)
	}
	rec = do(t, h, http.MethodPut, "/routes/"+route.ID, `{"driver_id": null}`)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[dto.RouteResponse](t, rec); got.DriverID != "" {
		t.Fatalf("driver not cleared: %+v", got)
	}

	rec = do(t, h, http.MethodPut, "/vehicles/"+scooter.ID, `{"name": "Scooter", "type": "motorcycle", "max_stops": 10}`)
	expectStatus(t, rec, http.StatusOK)
	expectStatus(t, do(t, h, http.MethodPut, "/routes/"+route.ID, `{"vehicle_id": "`+scooter.ID+`"}`), http.StatusOK)

	vehicles := decode[dto.ListVehiclesResponse](t, do(t, h, http.MethodGet, "/vehicles", ""))
	drivers := decode[dto.ListDriversResponse](t, do(t, h, http.MethodGet, "/drivers", ""))
	if len(vehicles.Vehicles) != 1 || len(drivers.Drivers) != 1 {
		t.Fatalf("vehicles = %+v, drivers = %+v", vehicles, drivers)
	}

	expectStatus(t, do(t, h, http.MethodDelete, "/vehicles/"+scooter.ID, ""), http.StatusNoContent)
	expectStatus(t, do(t, h, http.MethodGet, "/vehicles/"+scooter.ID, ""), http.StatusNotFound)
	if got := decode[dto.RouteResponse](t, do(t, h, http.MethodGet, "/routes/"+route.ID, "")); got.VehicleID != "" {
		t.Fatalf("deleted vehicle still assigned: %+v", got)
	}
	expectStatus(t, do(t, h, http.MethodDelete, "/drivers/"+driver.ID, ""), http.StatusNoContent)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin = %q", got)
	}
}

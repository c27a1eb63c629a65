package handlers

import (
	"net/http"
	"stop-sequencing-service/internal/api/dto"
	"stop-sequencing-service/internal/services"

	"github.com/gorilla/mux"
)

// FleetHandler exposes vehicle and driver CRUD.
type FleetHandler struct {
	Fleet *services.FleetService
}

func (h *FleetHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Fleet.ListVehicles(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res := dto.ListVehiclesResponse{Vehicles: make([]dto.Vehicle, 0, len(vehicles))}
	for _, v := range vehicles {
		res.Vehicles = append(res.Vehicles, dto.VehicleFromDomain(v))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *FleetHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req dto.Vehicle
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.Fleet.CreateVehicle(r.Context(), req.ToDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.VehicleFromDomain(v))
}

func (h *FleetHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.Fleet.GetVehicle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.VehicleFromDomain(v))
}

func (h *FleetHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var req dto.Vehicle
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = mux.Vars(r)["id"]
	v, err := h.Fleet.UpdateVehicle(r.Context(), req.ToDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.VehicleFromDomain(v))
}

func (h *FleetHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := h.Fleet.DeleteVehicle(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FleetHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.Fleet.ListDrivers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res := dto.ListDriversResponse{Drivers: make([]dto.Driver, 0, len(drivers))}
	for _, d := range drivers {
		res.Drivers = append(res.Drivers, dto.DriverFromDomain(d))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *FleetHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req dto.Driver
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.Fleet.CreateDriver(r.Context(), req.ToDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.DriverFromDomain(d))
}

func (h *FleetHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	d, err := h.Fleet.GetDriver(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.DriverFromDomain(d))
}

func (h *FleetHandler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	var req dto.Driver
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = mux.Vars(r)["id"]
	d, err := h.Fleet.UpdateDriver(r.Context(), req.ToDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.DriverFromDomain(d))
}

func (h *FleetHandler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	if err := h.Fleet.DeleteDriver(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

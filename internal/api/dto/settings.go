package dto

import "stop-sequencing-service/internal/domain"

type SettingsResponse struct {
	OptimizationType    string   `json:"optimization_type"`
	RoundTrip           bool     `json:"round_trip"`
	LockLastDestination bool     `json:"lock_last_destination"`
	AvoidHighways       bool     `json:"avoid_highways"`
	AvoidTolls          bool     `json:"avoid_tolls"`
	MaxStops            *int     `json:"max_stops"`
	MaxDistanceKm       *float64 `json:"max_distance_km"`
	DefaultServiceTime  int      `json:"default_service_time"`
}

func SettingsFromDomain(s domain.OptimizationSettings) SettingsResponse {
	out := SettingsResponse{
		OptimizationType:    string(s.OptimizationType),
		RoundTrip:           s.RoundTrip,
		LockLastDestination: s.LockLastDestination,
		AvoidHighways:       s.AvoidHighways,
		AvoidTolls:          s.AvoidTolls,
		DefaultServiceTime:  s.DefaultServiceTime,
	}
	if v, ok := s.MaxStops.Get(); ok {
		out.MaxStops = &v
	}
	if v, ok := s.MaxDistanceKm.Get(); ok {
		out.MaxDistanceKm = &v
	}
	return out
}

// SettingsPatch is a partial settings update. A null max_stops or
// max_distance_km removes that limit.
type SettingsPatch struct {
	OptimizationType    Field[string]  `json:"optimization_type"`
	RoundTrip           Field[bool]    `json:"round_trip"`
	LockLastDestination Field[bool]    `json:"lock_last_destination"`
	AvoidHighways       Field[bool]    `json:"avoid_highways"`
	AvoidTolls          Field[bool]    `json:"avoid_tolls"`
	MaxStops            Field[int]     `json:"max_stops"`
	MaxDistanceKm       Field[float64] `json:"max_distance_km"`
	DefaultServiceTime  Field[int]     `json:"default_service_time"`
}

func (p SettingsPatch) ToDomain() (domain.SettingsUpdate, error) {
	var u domain.SettingsUpdate

	typ, err := required("optimization_type", p.OptimizationType)
	if err != nil {
		return u, err
	}
	if v, ok := typ.Get(); ok {
		u.OptimizationType = domain.Some(domain.OptimizationType(v))
	}
	if u.RoundTrip, err = required("round_trip", p.RoundTrip); err != nil {
		return u, err
	}
	if u.LockLastDestination, err = required("lock_last_destination", p.LockLastDestination); err != nil {
		return u, err
	}
	if u.AvoidHighways, err = required("avoid_highways", p.AvoidHighways); err != nil {
		return u, err
	}
	if u.AvoidTolls, err = required("avoid_tolls", p.AvoidTolls); err != nil {
		return u, err
	}
	if u.DefaultServiceTime, err = required("default_service_time", p.DefaultServiceTime); err != nil {
		return u, err
	}

	if p.MaxStops.Null {
		u.ClearMaxStops = true
	} else {
		u.MaxStops = p.MaxStops.Optional()
	}
	if p.MaxDistanceKm.Null {
		u.ClearMaxDistance = true
	} else {
		u.MaxDistanceKm = p.MaxDistanceKm.Optional()
	}
	return u, nil
}

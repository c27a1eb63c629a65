package dto

import (
	"fmt"
	"stop-sequencing-service/internal/domain"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) ToDomain() domain.Coordinates {
	return domain.Coordinates{Lat: c.Lat, Lon: c.Lng}
}

func CoordinatesFromDomain(c domain.Coordinates) Coordinates {
	return Coordinates{Lat: c.Lat, Lng: c.Lon}
}

// StopRequest is a new stop. Coordinates may be omitted when the server can
// geocode the address.
type StopRequest struct {
	ID              string       `json:"id"`
	Address         string       `json:"address"`
	Coordinates     *Coordinates `json:"coordinates"`
	Name            string       `json:"name"`
	Notes           string       `json:"notes"`
	ServiceTime     *int         `json:"service_time"`
	TimeWindowStart string       `json:"time_window_start"`
	TimeWindowEnd   string       `json:"time_window_end"`
	Priority        string       `json:"priority"`
}

// ToInput converts the request. Callers fill Coordinates when the request
// has none.
func (s StopRequest) ToInput() domain.StopInput {
	in := domain.StopInput{
		ID:              s.ID,
		Address:         s.Address,
		Name:            s.Name,
		Notes:           s.Notes,
		TimeWindowStart: s.TimeWindowStart,
		TimeWindowEnd:   s.TimeWindowEnd,
		Priority:        domain.Priority(s.Priority),
	}
	if s.Coordinates != nil {
		in.Coordinates = s.Coordinates.ToDomain()
	}
	if s.ServiceTime != nil {
		in.ServiceTime = domain.Some(*s.ServiceTime)
	}
	return in
}

type StopResponse struct {
	ID              string      `json:"id"`
	Address         string      `json:"address"`
	Coordinates     Coordinates `json:"coordinates"`
	Sequence        int         `json:"sequence"`
	Name            string      `json:"name,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	ServiceTime     int         `json:"service_time"`
	TimeWindowStart string      `json:"time_window_start,omitempty"`
	TimeWindowEnd   string      `json:"time_window_end,omitempty"`
	Priority        string      `json:"priority,omitempty"`
}

func StopFromDomain(s domain.Stop) StopResponse {
	return StopResponse{
		ID:              s.ID,
		Address:         s.Address,
		Coordinates:     CoordinatesFromDomain(s.Coordinates),
		Sequence:        s.Sequence,
		Name:            s.Name,
		Notes:           s.Notes,
		ServiceTime:     s.ServiceTime,
		TimeWindowStart: s.TimeWindowStart,
		TimeWindowEnd:   s.TimeWindowEnd,
		Priority:        string(s.Priority),
	}
}

func StopsFromDomain(stops []domain.Stop) []StopResponse {
	out := make([]StopResponse, 0, len(stops))
	for _, s := range stops {
		out = append(out, StopFromDomain(s))
	}
	return out
}

// StopPatch is a partial stop update. Null clears the optional text fields.
type StopPatch struct {
	Address         Field[string]      `json:"address"`
	Coordinates     Field[Coordinates] `json:"coordinates"`
	Name            Field[string]      `json:"name"`
	Notes           Field[string]      `json:"notes"`
	ServiceTime     Field[int]         `json:"service_time"`
	TimeWindowStart Field[string]      `json:"time_window_start"`
	TimeWindowEnd   Field[string]      `json:"time_window_end"`
	Priority        Field[string]      `json:"priority"`
}

func (p StopPatch) ToDomain() (domain.StopUpdate, error) {
	u := domain.StopUpdate{
		Name:            p.Name.Optional(),
		Notes:           p.Notes.Optional(),
		TimeWindowStart: p.TimeWindowStart.Optional(),
		TimeWindowEnd:   p.TimeWindowEnd.Optional(),
	}

	var err error
	if u.Address, err = required("address", p.Address); err != nil {
		return u, err
	}
	if u.ServiceTime, err = required("service_time", p.ServiceTime); err != nil {
		return u, err
	}
	coords, err := required("coordinates", p.Coordinates)
	if err != nil {
		return u, err
	}
	if c, ok := coords.Get(); ok {
		u.Coordinates = domain.Some(c.ToDomain())
	}
	if p.Priority.Set {
		u.Priority = domain.Some(domain.Priority(p.Priority.Value))
	}
	return u, nil
}

type StartLocation struct {
	Address     string      `json:"address"`
	Name        string      `json:"name,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

func (l StartLocation) ToDomain() domain.StartLocation {
	return domain.StartLocation{Address: l.Address, Name: l.Name, Coordinates: l.Coordinates.ToDomain()}
}

func StartFromDomain(l *domain.StartLocation) *StartLocation {
	if l == nil {
		return nil
	}
	return &StartLocation{Address: l.Address, Name: l.Name, Coordinates: CoordinatesFromDomain(l.Coordinates)}
}

type AddStopsRequest struct {
	Stops []StopRequest `json:"stops"`
}

func (r AddStopsRequest) Validate() error {
	if len(r.Stops) == 0 {
		return fmt.Errorf("%w: stops must be non-empty", domain.ErrMalformedInput)
	}
	return nil
}

type ReorderRequest struct {
	StopIDs []string `json:"stop_ids"`
}

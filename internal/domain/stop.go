package domain

import (
	"fmt"
	"strings"
	"time"
)

// Priority is display-only metadata; the optimizer never reads it.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is a known priority. The empty priority is allowed.
func (p Priority) Valid() bool {
	switch p {
	case "", PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Represents a single delivery or visit stop in a tour.
// Sequence is the 1-based position in the current tour order. It is derived
// data and is rewritten on every reorder.
// Time windows and priority are stored but never enforced by the optimizer.
type Stop struct {
	ID              string
	Address         string
	Coordinates     Coordinates
	Sequence        int
	Name            string
	Notes           string
	ServiceTime     int // minutes spent at the stop
	TimeWindowStart string
	TimeWindowEnd   string
	Priority        Priority
}

// Validate checks the fields the optimizer and storage layers rely on.
func (s Stop) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: stop id must be non-empty", ErrMalformedInput)
	}
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("%w: stop %q: address must be non-empty", ErrMalformedInput, s.ID)
	}
	if err := s.Coordinates.Validate(); err != nil {
		return fmt.Errorf("stop %q: %w", s.ID, err)
	}
	if s.ServiceTime < 0 {
		return fmt.Errorf("%w: stop %q: service time must be non-negative", ErrMalformedInput, s.ID)
	}
	if !s.Priority.Valid() {
		return fmt.Errorf("%w: stop %q: unknown priority %q", ErrMalformedInput, s.ID, s.Priority)
	}
	for _, tw := range []string{s.TimeWindowStart, s.TimeWindowEnd} {
		if tw == "" {
			continue
		}
		if _, err := time.Parse("15:04", tw); err != nil {
			return fmt.Errorf("%w: stop %q: time window %q must be HH:MM", ErrMalformedInput, s.ID, tw)
		}
	}
	return nil
}

// ValidateStops validates every stop and rejects duplicate ids.
func ValidateStops(stops []Stop) error {
	seen := make(map[string]struct{}, len(stops))
	for i, s := range stops {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("stop at index %d: %w", i, err)
		}
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("%w: duplicate stop id %q", ErrMalformedInput, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// CloneStops returns a shallow copy of stops. Stop has no reference fields,
// so the copy shares nothing with the input.
func CloneStops(stops []Stop) []Stop {
	out := make([]Stop, len(stops))
	copy(out, stops)
	return out
}

// Resequence returns a copy of stops with Sequence rewritten to 1..N.
func Resequence(stops []Stop) []Stop {
	out := CloneStops(stops)
	for i := range out {
		out[i].Sequence = i + 1
	}
	return out
}

// StartLocation is the fixed origin of a planning session.
type StartLocation struct {
	Address     string
	Name        string
	Coordinates Coordinates
}

func (l StartLocation) Validate() error {
	if err := l.Coordinates.Validate(); err != nil {
		return fmt.Errorf("start location: %w", err)
	}
	return nil
}

// StopUpdate describes a partial change to a stop. Only fields that are set
// are applied. Identity and sequence are not updatable.
type StopUpdate struct {
	Address         Optional[string]
	Coordinates     Optional[Coordinates]
	Name            Optional[string]
	Notes           Optional[string]
	ServiceTime     Optional[int]
	TimeWindowStart Optional[string]
	TimeWindowEnd   Optional[string]
	Priority        Optional[Priority]
}

// Apply returns a copy of s with the update applied.
func (u StopUpdate) Apply(s Stop) Stop {
	if v, ok := u.Address.Get(); ok {
		s.Address = v
	}
	if v, ok := u.Coordinates.Get(); ok {
		s.Coordinates = v
	}
	if v, ok := u.Name.Get(); ok {
		s.Name = v
	}
	if v, ok := u.Notes.Get(); ok {
		s.Notes = v
	}
	if v, ok := u.ServiceTime.Get(); ok {
		s.ServiceTime = v
	}
	if v, ok := u.TimeWindowStart.Get(); ok {
		s.TimeWindowStart = v
	}
	if v, ok := u.TimeWindowEnd.Get(); ok {
		s.TimeWindowEnd = v
	}
	if v, ok := u.Priority.Get(); ok {
		s.Priority = v
	}
	return s
}

// StopInput is a stop before it joins a tour. An empty ID is generated by the
// session and an unset ServiceTime takes the session default.
type StopInput struct {
	ID              string
	Address         string
	Coordinates     Coordinates
	Name            string
	Notes           string
	ServiceTime     Optional[int]
	TimeWindowStart string
	TimeWindowEnd   string
	Priority        Priority
}

func (in StopInput) ToStop(defaultServiceTime int) Stop {
	return Stop{
		ID:              in.ID,
		Address:         in.Address,
		Coordinates:     in.Coordinates,
		Name:            in.Name,
		Notes:           in.Notes,
		ServiceTime:     in.ServiceTime.OrElse(defaultServiceTime),
		TimeWindowStart: in.TimeWindowStart,
		TimeWindowEnd:   in.TimeWindowEnd,
		Priority:        in.Priority,
	}
}

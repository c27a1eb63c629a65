package services

import (
	"context"
	"errors"
	"fmt"
	"stop-sequencing-service/internal/domain"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrOptimizationInFlight is returned for any optimize or edit attempted while
// an optimization of the same session is still running.
var ErrOptimizationInFlight = errors.New("optimization already in flight")

// Session is one planning workspace: a tour, an optional start and settings.
//
// At most one optimization runs at a time. While it runs every other mutation
// is rejected, so the result can be published without merging edits.
type Session struct {
	ID string

	mu         sync.Mutex
	stops      []domain.Stop
	start      *domain.StartLocation
	settings   domain.OptimizationSettings
	state      domain.OptimizationState
	optimizing bool
	lastResult *domain.OptimizationResult
	routeID    string
	routeName  string
	updatedAt  time.Time
}

// Read-only copy of a session.
type SessionSnapshot struct {
	ID           string
	Stops        []domain.Stop
	Start        *domain.StartLocation
	Settings     domain.OptimizationSettings
	State        domain.OptimizationState
	IsOptimizing bool
	LastResult   *domain.OptimizationResult
	RouteID      string
	RouteName    string
	UpdatedAt    time.Time
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		stops:     []domain.Stop{},
		settings:  domain.DefaultOptimizationSettings(),
		state:     domain.StateIdle,
		updatedAt: time.Now().UTC(),
	}
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		ID:           s.ID,
		Stops:        domain.CloneStops(s.stops),
		Settings:     s.settings,
		State:        s.state,
		IsOptimizing: s.optimizing,
		LastResult:   s.lastResult,
		RouteID:      s.routeID,
		RouteName:    s.routeName,
		UpdatedAt:    s.updatedAt,
	}
	if s.start != nil {
		start := *s.start
		snap.Start = &start
	}
	return snap
}

func (s *Session) IsOptimizing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.optimizing
}

// edit runs fn under the lock unless an optimization is in flight.
// Any successful edit invalidates the last optimization result.
func (s *Session) edit(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.optimizing {
		return ErrOptimizationInFlight
	}
	if err := fn(); err != nil {
		return err
	}
	s.state = domain.StateIdle
	s.lastResult = nil
	s.updatedAt = time.Now().UTC()
	return nil
}

// AddStops appends stops to the end of the tour. Either all inputs are added
// or none are.
func (s *Session) AddStops(inputs ...domain.StopInput) ([]domain.Stop, error) {
	var added []domain.Stop
	err := s.edit(func() error {
		next := domain.CloneStops(s.stops)
		for _, in := range inputs {
			stop := in.ToStop(s.settings.DefaultServiceTime)
			if stop.ID == "" {
				stop.ID = uuid.NewString()
			}
			next = append(next, stop)
		}
		if err := domain.ValidateStops(next); err != nil {
			return fmt.Errorf("add stops: %w", err)
		}
		next = domain.Resequence(next)
		added = domain.CloneStops(next[len(s.stops):])
		s.stops = next
		return nil
	})
	return added, err
}

func (s *Session) UpdateStop(id string, u domain.StopUpdate) (domain.Stop, error) {
	var updated domain.Stop
	err := s.edit(func() error {
		i := indexOfStop(s.stops, id)
		if i < 0 {
			return fmt.Errorf("update stop: %q: %w", id, domain.ErrNotFound)
		}
		candidate := u.Apply(s.stops[i])
		if err := candidate.Validate(); err != nil {
			return fmt.Errorf("update stop: %w", err)
		}
		next := domain.CloneStops(s.stops)
		next[i] = candidate
		s.stops = next
		updated = candidate
		return nil
	})
	return updated, err
}

func (s *Session) RemoveStop(id string) error {
	return s.edit(func() error {
		i := indexOfStop(s.stops, id)
		if i < 0 {
			return fmt.Errorf("remove stop: %q: %w", id, domain.ErrNotFound)
		}
		next := make([]domain.Stop, 0, len(s.stops)-1)
		next = append(next, s.stops[:i]...)
		next = append(next, s.stops[i+1:]...)
		s.stops = domain.Resequence(next)
		return nil
	})
}

// Reorder replaces the tour order. ids must name every stop exactly once.
func (s *Session) Reorder(ids []string) error {
	return s.edit(func() error {
		if len(ids) != len(s.stops) {
			return fmt.Errorf("reorder: %w: got %d ids for %d stops", domain.ErrMalformedInput, len(ids), len(s.stops))
		}
		next := make([]domain.Stop, 0, len(ids))
		used := make(map[string]bool, len(ids))
		for _, id := range ids {
			i := indexOfStop(s.stops, id)
			if i < 0 || used[id] {
				return fmt.Errorf("reorder: %w: unknown or repeated stop id %q", domain.ErrMalformedInput, id)
			}
			used[id] = true
			next = append(next, s.stops[i])
		}
		s.stops = domain.Resequence(next)
		return nil
	})
}

func (s *Session) ClearStops() error {
	return s.edit(func() error {
		s.stops = []domain.Stop{}
		return nil
	})
}

func (s *Session) SetStart(l domain.StartLocation) error {
	return s.edit(func() error {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("set start: %w", err)
		}
		s.start = &l
		return nil
	})
}

func (s *Session) ClearStart() error {
	return s.edit(func() error {
		s.start = nil
		return nil
	})
}

func (s *Session) UpdateSettings(u domain.SettingsUpdate) (domain.OptimizationSettings, error) {
	var out domain.OptimizationSettings
	err := s.edit(func() error {
		next := u.Apply(s.settings)
		if err := next.Validate(); err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		s.settings = next
		out = next
		return nil
	})
	return out, err
}

// Load replaces the session contents with a saved route.
func (s *Session) Load(r *domain.Route) error {
	return s.edit(func() error {
		s.stops = domain.Resequence(r.Stops)
		s.start = nil
		if r.Start != nil {
			start := *r.Start
			s.start = &start
		}
		s.routeID = r.ID
		s.routeName = r.Name
		return nil
	})
}

func (s *Session) setRoute(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routeID = id
	s.routeName = name
}

// Optimize reorders the session's tour with opt. The tour is replaced only
// when opt returns a result; on error the tour is left untouched and the
// session state becomes Failed.
func (s *Session) Optimize(ctx context.Context, opt *Optimizer) (*domain.OptimizationResult, error) {
	s.mu.Lock()
	if s.optimizing {
		s.mu.Unlock()
		return nil, ErrOptimizationInFlight
	}
	s.optimizing = true
	s.state = domain.StateOptimizing
	req := OptimizeRequest{
		Stops:    domain.CloneStops(s.stops),
		Start:    s.start,
		Settings: s.settings,
	}
	s.mu.Unlock()

	res, err := opt.Optimize(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.optimizing = false
	if err != nil {
		s.state = domain.StateFailed
		return nil, err
	}
	s.stops = domain.CloneStops(res.Stops)
	s.state = res.State
	s.lastResult = res
	s.updatedAt = time.Now().UTC()
	return res, nil
}

func indexOfStop(stops []domain.Stop, id string) int {
	for i, s := range stops {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// SessionStore keeps live sessions.
type SessionStore interface {
	Get(id string) (*Session, bool)
	Put(s *Session)
	Delete(id string)
}

type SessionService struct {
	store     SessionStore
	optimizer *Optimizer
}

func NewSessionService(store SessionStore, optimizer *Optimizer) *SessionService {
	return &SessionService{store: store, optimizer: optimizer}
}

func (svc *SessionService) Create() *Session {
	s := NewSession()
	svc.store.Put(s)
	return s
}

func (svc *SessionService) Get(id string) (*Session, error) {
	s, ok := svc.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("get session %q: %w", id, domain.ErrNotFound)
	}
	// Refresh expiry on access.
	svc.store.Put(s)
	return s, nil
}

func (svc *SessionService) Delete(id string) error {
	if _, ok := svc.store.Get(id); !ok {
		return fmt.Errorf("delete session %q: %w", id, domain.ErrNotFound)
	}
	svc.store.Delete(id)
	return nil
}

func (svc *SessionService) Optimize(ctx context.Context, id string) (*domain.OptimizationResult, error) {
	s, err := svc.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Optimize(ctx, svc.optimizer)
}

// Optimize a request without a session.
func (svc *SessionService) OptimizeOnce(ctx context.Context, req OptimizeRequest) (*domain.OptimizationResult, error) {
	return svc.optimizer.Optimize(ctx, req)
}

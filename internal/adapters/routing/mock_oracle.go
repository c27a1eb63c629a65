package routing

import (
	"context"
	"stop-sequencing-service/internal/ports"
	"sync"
)

// MockRouteOracle is a scripted ports.RouteOracle for tests and offline runs.
// When Func is nil it returns the stops in input order with Err, if set.
type MockRouteOracle struct {
	Func func(ctx context.Context, req ports.OracleRequest) (ports.OracleResult, error)
	Err  error

	mu    sync.Mutex
	calls int
}

func (m *MockRouteOracle) Optimize(ctx context.Context, req ports.OracleRequest) (ports.OracleResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Func != nil {
		return m.Func(ctx, req)
	}
	if m.Err != nil {
		return ports.OracleResult{}, m.Err
	}

	order := make([]int, len(req.Stops))
	for i := range order {
		order[i] = i
	}
	return ports.OracleResult{Order: order}, nil
}

func (m *MockRouteOracle) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

package routing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"stop-sequencing-service/internal/ports"
	"strings"
	"time"
)

// transport wraps an http.Client with retry/backoff shared by the routing
// backends. Failures come back as *ports.UpstreamError for non-2xx answers
// and wrap ports.ErrOracleNetwork otherwise.
type transport struct {
	session     *http.Client
	authHeader  string
	maxAttempts int
	backoff     time.Duration
}

func newTransport(authHeader string) transport {
	return transport{
		session:     &http.Client{Timeout: 10 * time.Second},
		authHeader:  authHeader,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
}

func (t *transport) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if t.authHeader != "" {
		req.Header.Set("Authorization", t.authHeader)
	}
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (t *transport) do(req *http.Request) (*http.Response, error) {
	resp, err := t.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &ports.UpstreamError{
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) using exponential backoff while respecting context cancellation.
func (t *transport) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	attempts := t.maxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := t.backoff

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ports.ErrOracleNetwork, err)
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := t.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var ue *ports.UpstreamError
		if errors.As(err, &ue) {
			switch ue.Status {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		} else {
			// Anything that is not an HTTP status is a transport failure.
			lastErr = fmt.Errorf("%w: %w", ports.ErrOracleNetwork, err)
			var netErr net.Error
			retry = errors.As(err, &netErr)
		}

		if !retry || attempt == attempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ports.ErrOracleNetwork, ctx.Err())
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

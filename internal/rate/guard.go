// Package rate enforces a call budget for upstream HTTP APIs.
package rate

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Declaration defines the budget for one provider.
type Declaration struct {
	Provider  string
	PerMinute int
}

// RateLimitError is returned when calls are blocked.
type RateLimitError struct {
	Provider string
	Reason   string
	RetryAt  time.Time
}

func (e RateLimitError) Error() string {
	if e.RetryAt.IsZero() {
		return fmt.Sprintf("%s rate limited: %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s rate limited: %s (retry at %s)", e.Provider, e.Reason, e.RetryAt.UTC().Format(time.RFC3339))
}

// Guard tracks the token bucket and cooldown state for a provider.
type Guard struct {
	decl Declaration

	mu       sync.Mutex
	tokens   float64
	last     time.Time
	cooldown time.Time
}

// WrapHTTP wraps an http.Client with rate-limit enforcement.
func WrapHTTP(decl Declaration, base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	client := *base
	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client.Transport = &roundTripper{
		base:  transport,
		guard: NewGuard(decl),
	}
	return &client
}

func NewGuard(decl Declaration) *Guard {
	return &Guard{
		decl:   decl,
		tokens: float64(decl.PerMinute),
		last:   time.Now(),
	}
}

type roundTripper struct {
	base  http.RoundTripper
	guard *Guard
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := rt.guard.Take(time.Now()); err != nil {
		blockedCounter.WithLabelValues(rt.guard.decl.Provider).Inc()
		return nil, err
	}

	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	rt.guard.RecordResponse(resp.StatusCode, resp.Header)
	return resp, nil
}

// Take consumes one call from the budget, or returns a RateLimitError.
func (g *Guard) Take(now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.cooldown.IsZero() && now.Before(g.cooldown) {
		return RateLimitError{Provider: g.decl.Provider, Reason: "cooldown", RetryAt: g.cooldown}
	}

	if g.decl.PerMinute <= 0 {
		return nil
	}

	elapsed := now.Sub(g.last)
	if elapsed > 0 {
		g.tokens += elapsed.Minutes() * float64(g.decl.PerMinute)
		if g.tokens > float64(g.decl.PerMinute) {
			g.tokens = float64(g.decl.PerMinute)
		}
		g.last = now
	}

	if g.tokens < 1 {
		retryAt := now.Add(time.Minute / time.Duration(g.decl.PerMinute))
		return RateLimitError{Provider: g.decl.Provider, Reason: "budget", RetryAt: retryAt}
	}
	g.tokens--
	return nil
}

// RecordResponse feeds response status back into the guard. A 429 with
// Retry-After starts a cooldown.
func (g *Guard) RecordResponse(status int, headers http.Header) {
	g.mu.Lock()
	defer g.mu.Unlock()

	lastStatusGauge.WithLabelValues(g.decl.Provider).Set(float64(status))

	if status != http.StatusTooManyRequests {
		return
	}

	retryAfter := 60
	if raw := headers.Get("Retry-After"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			retryAfter = parsed
		}
	}
	g.cooldown = time.Now().Add(time.Duration(retryAfter) * time.Second)
	cooldownGauge.WithLabelValues(g.decl.Provider).Set(float64(g.cooldown.Unix()))
}

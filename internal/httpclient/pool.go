// Package httpclient provides the shared HTTP client pool, per-provider
// concurrency limiting, and retry-once-with-backoff behavior that every
// outbound provider client in this system builds on (spec 4.2).
package httpclient

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Pool is a small set of long-lived *http.Client instances, one per logical
// provider, each with its own timeout and connection-pool limits. Clients
// are safe for concurrent use and are meant to be constructed once at
// startup and reused (spec 5 singletons).
type Pool struct {
	clients map[string]*http.Client
}

// NewPool creates an empty pool; register clients with Register.
func NewPool() *Pool {
	return &Pool{clients: make(map[string]*http.Client)}
}

// ClientConfig configures one named client in the pool.
type ClientConfig struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	UserAgent           string
}

// DefaultClientConfig matches the teacher's "~8s for image/auxiliary APIs"
// default (spec 4.2).
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:             8 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		UserAgent:           "itinerary-engine/1.0",
	}
}

// Register builds and stores a named client.
func (p *Pool) Register(name string, cfg ClientConfig) {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
	}

	p.clients[name] = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgentTransport{base: transport, userAgent: cfg.UserAgent},
		// Follow redirects (the default policy) per spec 4.2.
	}
}

// Client returns the named client, or a zero-value *http.Client (the Go
// default) if it was never registered — callers should always Register
// up-front, this is just a safe fallback.
func (p *Pool) Client(name string) *http.Client {
	if c, ok := p.clients[name]; ok {
		return c
	}
	log.Printf("httpclient: client %q was never registered, using default", name)
	return http.DefaultClient
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// Limiter bounds concurrency to a rate-limited external provider: a
// semaphore caps in-flight calls, and an optional inter-release sleep
// enforces a minimum gap between calls (the free geocoder's ~350ms gap in
// spec 4.2/5).
type Limiter struct {
	sem          chan struct{}
	releaseSleep time.Duration
	limiter      *rate.Limiter
}

// NewLimiter builds a bounded-concurrency semaphore with an optional
// post-release sleep and an optional token-bucket rate limit.
func NewLimiter(concurrency int, releaseSleep time.Duration, rps float64) *Limiter {
	var rl *rate.Limiter
	if rps > 0 {
		rl = rate.NewLimiter(rate.Limit(rps), concurrency)
	}
	return &Limiter{
		sem:          make(chan struct{}, concurrency),
		releaseSleep: releaseSleep,
		limiter:      rl,
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			<-l.sem
			return err
		}
	}
	return nil
}

// Release frees the slot, sleeping first if a release delay is configured
// (used by the free geocoder to respect its rate limit between requests).
func (l *Limiter) Release() {
	if l.releaseSleep > 0 {
		time.Sleep(l.releaseSleep)
	}
	<-l.sem
}

// IsTransient reports whether err (or an HTTP status) represents a
// transient failure worth one retry: connection errors, timeouts, 429, or
// 5xx (spec 4.2).
func IsTransient(err error, statusCode int) bool {
	if statusCode == http.StatusTooManyRequests || statusCode >= 500 {
		return true
	}
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// DoWithRetry executes do, retrying at most once with a linear backoff
// (spec 4.2: "at most one retry with linear backoff"). do must return the
// HTTP status code it observed (0 if the request never got a response) and
// the attempt's error.
func DoWithRetry(ctx context.Context, backoff time.Duration, do func() (statusCode int, err error)) error {
	statusCode, err := do()
	if err == nil && !IsTransient(nil, statusCode) {
		return nil
	}
	if !IsTransient(err, statusCode) {
		return err
	}

	select {
	case <-time.After(backoff):
	case <-ctx.Done():
		return ctx.Err()
	}

	_, err = do()
	return err
}

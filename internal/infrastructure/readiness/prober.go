// Package readiness HTTP-polls a service URL with exponential backoff,
// grounded on the teacher's internal/executor/health.go and
// internal/infrastructure/docker/health_checker.go (merged into one
// implementation here, since both were near-duplicates of the same
// poll-with-backoff loop), generalized per spec.md §4.6.
package readiness

import (
	"context"
	"net/http"
	"time"

	"github.com/vivekkundariya/lo1/internal/application/ports"
)

const (
	defaultTimeoutMs         = 60000
	defaultIntervalMs        = 1000
	defaultBackoffMultiplier = 1.5
	defaultMaxIntervalMs     = 5000
	perAttemptTimeout        = 5 * time.Second
)

// Prober implements ports.ReadinessProber via plain net/http GET polling.
type Prober struct {
	Client *http.Client
}

func New() *Prober {
	return &Prober{Client: &http.Client{Timeout: perAttemptTimeout}}
}

// WaitForReady issues a GET with a 5-second inner timeout per attempt;
// success iff the response status is 2xx. On failure it sleeps, then
// multiplies the interval by backoffMultiplier (clamped to maxIntervalMs),
// bounded in total by timeoutMs.
func (p *Prober) WaitForReady(ctx context.Context, opts ports.ReadinessProbeOptions) error {
	timeoutMs := opts.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = defaultTimeoutMs
	}
	intervalMs := opts.IntervalMs
	if intervalMs <= 0 {
		intervalMs = defaultIntervalMs
	}
	backoff := opts.BackoffMultiplier
	if backoff <= 0 {
		backoff = defaultBackoffMultiplier
	}
	maxIntervalMs := opts.MaxIntervalMs
	if maxIntervalMs <= 0 {
		maxIntervalMs = defaultMaxIntervalMs
	}

	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	interval := time.Duration(intervalMs) * time.Millisecond

	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: perAttemptTimeout}
	}

	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return &ports.ReadinessProbeError{Service: opts.ServiceName, URL: opts.URL}
		default:
		}

		attempt++
		if opts.OnAttempt != nil {
			opts.OnAttempt(attempt)
		}

		if probe(ctx, client, opts.URL) {
			return nil
		}

		if time.Now().After(deadline) {
			return &ports.ReadinessProbeError{Service: opts.ServiceName, URL: opts.URL}
		}

		select {
		case <-ctx.Done():
			return &ports.ReadinessProbeError{Service: opts.ServiceName, URL: opts.URL}
		case <-time.After(interval):
		}

		nextMs := float64(interval/time.Millisecond) * backoff
		if nextMs > float64(maxIntervalMs) {
			nextMs = float64(maxIntervalMs)
		}
		interval = time.Duration(nextMs) * time.Millisecond
	}
}

func probe(ctx context.Context, client *http.Client, url string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, perAttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

/*
Package probe answers the liveness question for a single hostname: does
anything answer HTTP(S) there right now?

The verdict is transport-level, not content-level. Any HTTP response — a
404, a 500, a redirect — proves something is listening and answering, which
is exactly what a reconnaissance pass wants to know. Response bodies are
never read and status codes are never filtered.
*/
package probe

/*
subscope — subdomain discovery over Certificate Transparency logs, in Go
Copyright (C) 2026  subscope contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"context"
	"net/http"
	"time"

	"github.com/x-stp/subscope/internal/client"
	"github.com/x-stp/subscope/internal/metrics"
	"github.com/x-stp/subscope/internal/scope"
)

// DefaultTimeout bounds each connection attempt.
const DefaultTimeout = 5 * time.Second

const userAgent = "subscope/0.1 (+https://github.com/x-stp/subscope)"

// Result associates a hostname with a liveness verdict. A Result is produced
// once per probed hostname and never mutated.
type Result struct {
	Host  scope.Hostname
	Alive bool
	// Scheme is the URL scheme of the first successful attempt, empty when
	// no attempt succeeded.
	Scheme string
}

// Attempt is one (scheme, timeout) connection strategy.
type Attempt struct {
	Scheme  string
	Timeout time.Duration
}

// DefaultAttempts is the HTTPS-then-HTTP fallback chain with a uniform
// per-attempt timeout.
func DefaultAttempts(timeout time.Duration) []Attempt {
	return []Attempt{
		{Scheme: "https", Timeout: timeout},
		{Scheme: "http", Timeout: timeout},
	}
}

// Prober performs bounded-time reachability checks against single hostnames.
// Attempts run in order; the first one that draws any HTTP response wins.
type Prober struct {
	attempts   []Attempt
	httpClient *http.Client
}

// New returns a Prober with the default HTTPS-then-HTTP chain.
func New(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewWithAttempts(DefaultAttempts(timeout))
}

// NewWithAttempts returns a Prober with a custom attempt chain.
func NewWithAttempts(attempts []Attempt) *Prober {
	maxTimeout := time.Duration(0)
	for _, a := range attempts {
		if a.Timeout > maxTimeout {
			maxTimeout = a.Timeout
		}
	}
	if maxTimeout == 0 {
		maxTimeout = DefaultTimeout
	}
	return &Prober{
		attempts:   attempts,
		httpClient: client.NewProbeClient(maxTimeout),
	}
}

// Check probes host and returns its verdict. Every transport failure — DNS,
// connection refused, TLS error, timeout — is folded into a negative result:
// probing arbitrary third-party hosts is best-effort, so nothing is raised
// to the caller and nothing is logged per host. Worst-case duration is the
// sum of the attempt timeouts.
func (p *Prober) Check(ctx context.Context, host scope.Hostname) Result {
	for _, a := range p.attempts {
		if p.attempt(ctx, a, host) {
			countVerdict("alive")
			return Result{Host: host, Alive: true, Scheme: a.Scheme}
		}
	}
	countVerdict("dead")
	return Result{Host: host}
}

func countVerdict(verdict string) {
	if metrics.IsMetricsEnabled() {
		metrics.GetMetrics().ProbesTotal.WithLabelValues(verdict).Inc()
	}
}

func (p *Prober) attempt(ctx context.Context, a Attempt, host scope.Hostname) bool {
	attemptCtx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, a.Scheme+"://"+string(host), nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if metrics.IsMetricsEnabled() {
		metrics.GetMetrics().ProbeDuration.WithLabelValues(a.Scheme).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return false
	}
	// The verdict is transport-level; the body is never read.
	resp.Body.Close()
	return true
}

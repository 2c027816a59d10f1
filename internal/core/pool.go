/*
Package core provides the bounded-concurrency engine of subscope: a pool of
workers that fans liveness probes out over a discovery set and funnels every
verdict back through a single collector.
*/
package core

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
	"log"
	"sync"

	"github.com/zeebo/xxh3"
	"golang.org/x/time/rate"

	"github.com/x-stp/subscope/internal/metrics"
	"github.com/x-stp/subscope/internal/probe"
	"github.com/x-stp/subscope/internal/scope"
)

// Pool constants.
const (
	// DefaultWorkers matches the CLI default for --threads.
	DefaultWorkers = 10
	// WorkerQueueSize bounds each worker's queue. Dispatch blocks on a full
	// queue instead of dropping: every hostname must be probed exactly once.
	WorkerQueueSize = 64
	// DefaultDispatchRate paces probe starts across the whole pool.
	DefaultDispatchRate = rate.Limit(100)
)

// Prober is the single dependency the pool needs from the probing layer.
type Prober interface {
	Check(ctx context.Context, host scope.Hostname) probe.Result
}

// Pool schedules liveness probes for a discovery set across a fixed number
// of concurrently executing workers.
//
// Work is routed to per-worker queues by hashing the hostname (xxh3), so a
// given hostname always lands on the same worker. Workers block only inside
// their own network call; no worker blocks on another. Every verdict is sent
// into a results channel drained by a single collector goroutine, which owns
// the active-set accumulator outright — there is no shared mutable state
// between workers and therefore nothing to lock.
type Pool struct {
	workers int
	prober  Prober
	limiter *rate.Limiter
}

// NewPool creates a pool of the given size. Non-positive values select the
// defaults. probesPerSecond paces dispatch across all workers.
func NewPool(workers int, prober Prober, probesPerSecond float64) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	limit := rate.Limit(probesPerSecond)
	if limit <= 0 {
		limit = DefaultDispatchRate
	}
	return &Pool{
		workers: workers,
		prober:  prober,
		limiter: rate.NewLimiter(limit, workers),
	}
}

// Run probes every member of discovered and returns the set of hostnames
// that answered. It blocks until every dispatched probe has completed. An
// empty discovery set performs zero work and returns immediately.
//
// On context cancellation, undispatched hostnames are abandoned and the
// verdicts recorded so far are returned intact — each positive result is
// committed atomically by the collector as it arrives.
func (p *Pool) Run(ctx context.Context, discovered *scope.Set) *scope.Set {
	active := scope.NewSet()
	hosts := discovered.Sorted()
	if len(hosts) == 0 {
		return active
	}

	m := metrics.GetMetrics()
	if metrics.IsMetricsEnabled() {
		m.PoolWorkers.Set(float64(p.workers))
	}

	queues := make([]chan scope.Hostname, p.workers)
	for i := range queues {
		queues[i] = make(chan scope.Hostname, WorkerQueueSize)
	}
	results := make(chan probe.Result, p.workers)

	var workerWg sync.WaitGroup
	for i := range queues {
		workerWg.Add(1)
		go p.worker(ctx, i, queues[i], results, &workerWg)
	}

	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for res := range results {
			if res.Alive {
				active.Add(res.Host)
			}
		}
	}()

	// Dispatch. Blocking sends provide backpressure against a full queue;
	// cancellation abandons whatever was not yet dispatched.
dispatch:
	for _, host := range hosts {
		if err := p.limiter.Wait(ctx); err != nil {
			break dispatch
		}
		q := queues[int(xxh3.HashString(string(host))%uint64(p.workers))]
		select {
		case q <- host:
			if metrics.IsMetricsEnabled() {
				m.PoolDispatched.Inc()
			}
		case <-ctx.Done():
			break dispatch
		}
	}
	for _, q := range queues {
		close(q)
	}

	workerWg.Wait()
	close(results)
	collectorWg.Wait()
	return active
}

// worker drains its queue, probing each hostname exactly once and reporting
// every verdict. Workers keep draining after cancellation — the queued tail
// is small and each probe fails fast under a cancelled context — so no
// hostname is ever silently half-processed.
func (p *Pool) worker(ctx context.Context, id int, queue <-chan scope.Hostname, results chan<- probe.Result, wg *sync.WaitGroup) {
	defer wg.Done()
	setWorkerAffinity(id)
	for host := range queue {
		results <- p.checkSafely(ctx, host)
	}
}

// checkSafely recovers a panicking probe into a negative verdict so one bad
// host cannot take the pool down.
func (p *Pool) checkSafely(ctx context.Context, host scope.Hostname) (res probe.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic recovered while probing %s: %v", host, r)
			if metrics.IsMetricsEnabled() {
				metrics.GetMetrics().ProbePanics.Inc()
			}
			res = probe.Result{Host: host}
		}
	}()
	return p.prober.Check(ctx, host)
}

package metrics

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

/*
Package metrics exposes Prometheus metrics for a subscope run: source fetch
latency, probe verdicts and durations, and pool dispatch activity.

Metrics are registered against a private registry so tests and library use
never pollute the default one. The optional HTTP server serves /metrics and
a trivial /healthz; a run never fails because observability does.
*/

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry          = prometheus.NewRegistry()
	defaultRegisterer = promauto.With(registry)
	metricsEnabled    bool
	metricsServer     *http.Server
)

// Metrics contains all the Prometheus metrics for the application.
type Metrics struct {
	// Candidate-source metrics
	SourceFetchDuration prometheus.Histogram
	SourceFetchErrors   prometheus.Counter
	CandidatesReturned  prometheus.Counter

	// Probe metrics
	ProbeDuration *prometheus.HistogramVec // by scheme
	ProbesTotal   *prometheus.CounterVec   // by verdict (alive/dead)
	ProbePanics   prometheus.Counter

	// Pool metrics
	PoolDispatched prometheus.Counter
	PoolWorkers    prometheus.Gauge
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance, creating it on first use.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = newMetrics()
	})
	return globalMetrics
}

// EnableMetrics enables metrics collection.
func EnableMetrics() {
	metricsEnabled = true
}

// IsMetricsEnabled returns whether metrics collection is enabled.
func IsMetricsEnabled() bool {
	return metricsEnabled
}

// newMetrics creates and registers all metric families.
func newMetrics() *Metrics {
	buckets := []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

	return &Metrics{
		SourceFetchDuration: defaultRegisterer.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "subscope_source_fetch_duration_seconds",
				Help:    "Time spent fetching candidate names from the certificate transparency source",
				Buckets: buckets,
			},
		),
		SourceFetchErrors: defaultRegisterer.NewCounter(
			prometheus.CounterOpts{
				Name: "subscope_source_fetch_errors_total",
				Help: "Failed candidate-source queries",
			},
		),
		CandidatesReturned: defaultRegisterer.NewCounter(
			prometheus.CounterOpts{
				Name: "subscope_source_candidates_total",
				Help: "Raw candidate entries returned by the source",
			},
		),
		ProbeDuration: defaultRegisterer.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "subscope_probe_duration_seconds",
				Help:    "Time spent on a single liveness probe",
				Buckets: buckets,
			},
			[]string{"scheme"},
		),
		ProbesTotal: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subscope_probes_total",
				Help: "Completed liveness probes by verdict",
			},
			[]string{"verdict"},
		),
		ProbePanics: defaultRegisterer.NewCounter(
			prometheus.CounterOpts{
				Name: "subscope_probe_panics_total",
				Help: "Panics recovered inside probe workers",
			},
		),
		PoolDispatched: defaultRegisterer.NewCounter(
			prometheus.CounterOpts{
				Name: "subscope_pool_dispatched_total",
				Help: "Hostnames dispatched to the worker pool",
			},
		),
		PoolWorkers: defaultRegisterer.NewGauge(
			prometheus.GaugeOpts{
				Name: "subscope_pool_workers",
				Help: "Configured worker count for the current run",
			},
		),
	}
}

// StartMetricsServer starts the metrics/health HTTP server on addr.
// The listen happens synchronously so a bad address is reported to the
// caller; serving then continues in the background.
func StartMetricsServer(addr string) error {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	metricsServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = metricsServer.Serve(ln)
	}()
	return nil
}

// StopMetricsServer shuts the metrics server down, if one was started.
func StopMetricsServer(ctx context.Context) error {
	if metricsServer == nil {
		return nil
	}
	return metricsServer.Shutdown(ctx)
}

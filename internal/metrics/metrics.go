// Package metrics holds the Prometheus collectors for the search path and
// the HTTP server that exposes them.
package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ingressearch"

// Search kinds used as the "kind" label.
const (
	KindAdHoc = "adhoc"
	KindSaved = "saved"
)

type Metrics struct {
	Searches         *prometheus.CounterVec
	SearchDuration   prometheus.Histogram
	DocumentsScanned prometheus.Counter
	DocumentsMatched prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches run, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time spent executing a compiled query.",
			Buckets:   prometheus.DefBuckets,
		}),
		DocumentsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_scanned_total",
			Help:      "Documents evaluated against a predicate.",
		}),
		DocumentsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_matched_total",
			Help:      "Documents that satisfied a predicate.",
		}),
	}
	reg.MustRegister(m.Searches, m.SearchDuration, m.DocumentsScanned, m.DocumentsMatched)
	return m
}

// ObserveScan records one executor run. A nil receiver is a no-op.
func (m *Metrics) ObserveScan(scanned, matched int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.DocumentsScanned.Add(float64(scanned))
	m.DocumentsMatched.Add(float64(matched))
	m.SearchDuration.Observe(elapsed.Seconds())
}

// CountSearch increments the search counter for kind. A nil receiver is a
// no-op.
func (m *Metrics) CountSearch(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Searches.WithLabelValues(kind, outcome).Inc()
}

// Serve exposes gatherer on addr under /metrics in a new goroutine. The
// returned server is stopped with Shutdown.
func Serve(addr string, gatherer prometheus.Gatherer, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return server
}

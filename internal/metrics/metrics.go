// Package metrics exposes Prometheus collectors for scroll coordinators, the
// search loader and the result store, plus an optional /metrics endpoint.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devnullvoid/insightview/internal/scroll"
	"github.com/devnullvoid/insightview/internal/store"
	"github.com/devnullvoid/insightview/pkg/api"
)

const namespace = "insightview"

// Metrics implements scroll.Recorder and store.Observer.
type Metrics struct {
	registry *prometheus.Registry

	recomputations *prometheus.CounterVec
	intents        *prometheus.CounterVec
	searches       *prometheus.CounterVec
	searchDuration prometheus.Histogram
	cacheHits      prometheus.Counter
	storeWrites    prometheus.Counter
	matches        prometheus.Gauge
}

var (
	_ scroll.Recorder = (*Metrics)(nil)
	_ store.Observer  = (*Metrics)(nil)
)

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		recomputations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scroll",
			Name:      "recomputations_total",
			Help:      "Scroll capability recomputations.",
		}, []string{"direction"}),
		intents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scroll",
			Name:      "intents_total",
			Help:      "Scroll intents by outcome (applied, dropped).",
		}, []string{"direction", "intent", "outcome"}),
		searches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Searches sent to the backend by result.",
		}, []string{"result"}),
		searchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search round-trip latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "hits_total",
			Help:      "Loads served from the result store.",
		}),
		storeWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Records written to the result store.",
		}),
		matches: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "last_match_count",
			Help:      "Match count of the most recently stored result.",
		}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Recomputed(dir scroll.Direction) {
	m.recomputations.WithLabelValues(dir.String()).Inc()
}

func (m *Metrics) IntentApplied(dir scroll.Direction, intent scroll.Intent) {
	m.intents.WithLabelValues(dir.String(), intent.String(), "applied").Inc()
}

func (m *Metrics) IntentDropped(dir scroll.Direction, intent scroll.Intent) {
	m.intents.WithLabelValues(dir.String(), intent.String(), "dropped").Inc()
}

// SearchCompleted records one backend search. Failures are labeled with the
// SearchError kind when available.
func (m *Metrics) SearchCompleted(d time.Duration, err error) {
	m.searchDuration.Observe(d.Seconds())

	result := "ok"
	if err != nil {
		result = "error"
		var se *api.SearchError
		if errors.As(err, &se) {
			result = string(se.Kind)
		}
	}
	m.searches.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheHit() {
	m.cacheHits.Inc()
}

// ObserveStore counts writes to s until the returned function is called.
func (m *Metrics) ObserveStore(s *store.Store) func() {
	return s.Subscribe(func(rec store.Record) {
		m.storeWrites.Inc()
		m.matches.Set(float64(rec.Results.MatchCount))
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server serves /metrics on a listener until its context is cancelled.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// Listen binds addr and returns a server ready to Serve.
func (m *Metrics) Listen(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	return &Server{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve blocks until ctx is done, then shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(s.ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

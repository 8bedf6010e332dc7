package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/any-hub/fsprovider/internal/cache"
	"github.com/any-hub/fsprovider/internal/monitor"
)

// Default histogram buckets for resource request duration (in seconds)
var defaultBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics wraps the prometheus registry and collectors of one fsprovider process.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	fileEventsTotal *prometheus.CounterVec
}

// New builds the metrics registry. Cache counters are read from caches on
// every scrape, so caches registered later are picked up automatically.
func New(namespace string, caches *cache.Registry) *Metrics {
	registry := prometheus.NewRegistry()
	// Register default Go and process collectors
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resource_requests_total",
				Help:      "Total number of resource requests",
			},
			[]string{"provider", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resource_request_duration_seconds",
				Help:      "Resource request duration in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"provider"},
		),

		fileEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "file_events_total",
				Help:      "Total number of file changes detected by the monitor",
			},
			[]string{"provider", "kind"},
		),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.fileEventsTotal,
		newCacheCollector(namespace, caches),
	)
	return m
}

// ObserveRequest records one resource request.
func (m *Metrics) ObserveRequest(provider string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(provider, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// FileEventListener returns a monitor listener counting events for provider.
func (m *Metrics) FileEventListener(provider string) monitor.Listener {
	return func(ev monitor.Event) {
		if m == nil {
			return
		}
		m.fileEventsTotal.WithLabelValues(provider, string(ev.Kind)).Inc()
	}
}

// Handler returns an HTTP handler for Prometheus metrics scraping
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("prometheus metrics not initialized"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the prometheus registry (for custom collectors)
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

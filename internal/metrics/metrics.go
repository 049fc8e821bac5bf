// Package metrics exposes Prometheus metrics for open documents and their
// load, save and edit activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/pubsub"
	"github.com/zjrosen/schematic/internal/schematic"
)

// Namespace prefixes every metric name.
const Namespace = "schematic"

// Collector holds the metrics on a private registry, so several collectors
// can coexist in one process (and in tests).
type Collector struct {
	registry *prometheus.Registry

	ItemsAdded   *prometheus.CounterVec
	Loads        *prometheus.CounterVec
	Saves        *prometheus.CounterVec
	LoadDuration prometheus.Histogram
	HTTPRequests *prometheus.CounterVec
}

// NewCollector creates a collector. The open_documents gauge reads reg on
// every scrape; a nil reg leaves it out.
func NewCollector(reg *schematic.Registry) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ItemsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "items_added_total",
			Help:      "Items attached to observed documents",
		}, []string{"kind"}),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "document_loads_total",
			Help:      "Document loads by outcome",
		}, []string{"status"}),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "document_saves_total",
			Help:      "Document saves by outcome",
		}, []string{"status"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "document_load_duration_seconds",
			Help:      "Time spent loading documents",
			Buckets:   prometheus.DefBuckets,
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served",
		}, []string{"method", "route", "status"}),
	}

	c.registry.MustRegister(c.ItemsAdded, c.Loads, c.Saves, c.LoadDuration, c.HTTPRequests)
	if reg != nil {
		c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "open_documents",
			Help:      "Documents currently registered",
		}, func() float64 { return float64(reg.Count()) }))
	}
	return c
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Observe counts items attached to doc from now on. Unsubscribe the result
// to stop, or let it go with the document.
func (c *Collector) Observe(doc *schematic.Document) pubsub.Subscription {
	return doc.ItemAdded().Subscribe(func(e pubsub.Event[item.Item]) {
		c.ItemsAdded.WithLabelValues(e.Payload.Kind().String()).Inc()
	})
}

// ObserveLoad records the outcome and duration of a load started at start.
func (c *Collector) ObserveLoad(start time.Time, err error) {
	c.LoadDuration.Observe(time.Since(start).Seconds())
	c.Loads.WithLabelValues(status(err)).Inc()
}

func (c *Collector) ObserveSave(err error) {
	c.Saves.WithLabelValues(status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Middleware counts requests by chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

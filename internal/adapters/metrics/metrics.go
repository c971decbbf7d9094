// Package metrics exports cache activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
)

const (
	metricsNamespace = "qcache"
	cacheSubsystem   = "cache"
)

var _ ports.CacheObserver = (*Collector)(nil)

// Collector implements ports.CacheObserver on its own Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	HitsTotal      *prometheus.CounterVec
	MissesTotal    *prometheus.CounterVec
	EvictionsTotal *prometheus.CounterVec
	Entries        *prometheus.GaugeVec
	SizeBytes      *prometheus.GaugeVec
}

// NewCollector registers the cache metrics on a fresh registry, together with
// the Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		HitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: cacheSubsystem,
				Name:      "hits_total",
				Help:      "Cache lookups served from memory",
			},
			[]string{"namespace"},
		),

		MissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: cacheSubsystem,
				Name:      "misses_total",
				Help:      "Cache lookups that found no entry",
			},
			[]string{"namespace"},
		),

		EvictionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: cacheSubsystem,
				Name:      "evictions_total",
				Help:      "Entries dropped to stay within the size limit",
			},
			[]string{"namespace"},
		),

		Entries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: cacheSubsystem,
				Name:      "entries",
				Help:      "Number of entries currently cached",
			},
			[]string{"namespace"},
		),

		SizeBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: cacheSubsystem,
				Name:      "size",
				Help:      "Total charged size of the cached entries, in the namespace's policy units",
			},
			[]string{"namespace"},
		),
	}
}

// Hit implements ports.CacheObserver.
func (c *Collector) Hit(ns domain.Namespace) {
	c.HitsTotal.WithLabelValues(string(ns)).Inc()
}

// Miss implements ports.CacheObserver.
func (c *Collector) Miss(ns domain.Namespace) {
	c.MissesTotal.WithLabelValues(string(ns)).Inc()
}

// Evict implements ports.CacheObserver.
func (c *Collector) Evict(ns domain.Namespace) {
	c.EvictionsTotal.WithLabelValues(string(ns)).Inc()
}

// Resize implements ports.CacheObserver.
func (c *Collector) Resize(ns domain.Namespace, entries int, size int64) {
	c.Entries.WithLabelValues(string(ns)).Set(float64(entries))
	c.SizeBytes.WithLabelValues(string(ns)).Set(float64(size))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Gatherer exposes the registry for tests and custom exporters.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

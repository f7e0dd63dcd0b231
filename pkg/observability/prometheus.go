package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	loadTotal        *prometheus.CounterVec
	loadDuration     prometheus.Histogram
	resolveTotal     *prometheus.CounterVec
	resolveDuration  *prometheus.HistogramVec
	resolvedAssets   *prometheus.CounterVec
	unresolvedTotal  *prometheus.CounterVec
	fallbackRIDTotal prometheus.Counter
	cacheEvents      *prometheus.CounterVec
	cacheBytes       *prometheus.CounterVec
	apiRequests      *prometheus.CounterVec
	apiDuration      *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loadTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ridasset_manifest_load_total",
				Help: "Number of manifest loads by outcome.",
			},
			[]string{"outcome"},
		),
		loadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ridasset_manifest_load_duration_seconds",
				Help:    "Time taken to read, decode and validate a manifest.",
				Buckets: prometheus.DefBuckets,
			},
		),
		resolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ridasset_resolve_total",
				Help: "Number of resolution passes by pass type and chain source.",
			},
			[]string{"pass", "source"},
		),
		resolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ridasset_resolve_duration_seconds",
				Help:    "Time taken by one resolution pass.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"pass"},
		),
		resolvedAssets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ridasset_resolved_assets_total",
				Help: "Number of resolved asset paths by kind.",
			},
			[]string{"kind"},
		),
		unresolvedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ridasset_unresolved_total",
				Help: "Number of (library, kind) pairs that declared groups but matched none.",
			},
			[]string{"pass"},
		),
		fallbackRIDTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ridasset_fallback_rid_total",
				Help: "Number of application passes that used the compiled-in default chain.",
			},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ridasset_cache_events_total",
				Help: "Cache hits, misses and writes by key type.",
			},
			[]string{"key_type", "event"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ridasset_cache_written_bytes_total",
				Help: "Bytes written to the cache by key type.",
			},
			[]string{"key_type"},
		),
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ridasset_http_requests_total",
				Help: "HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "code"},
		),
		apiDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ridasset_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
	reg.MustRegister(
		m.loadTotal,
		m.loadDuration,
		m.resolveTotal,
		m.resolveDuration,
		m.resolvedAssets,
		m.unresolvedTotal,
		m.fallbackRIDTotal,
		m.cacheEvents,
		m.cacheBytes,
		m.apiRequests,
		m.apiDuration,
	)
	return m
}

// OnLoad implements ResolveHooks.
func (m *Metrics) OnLoad(_ context.Context, _ string, _ int, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.loadTotal.WithLabelValues(outcome).Inc()
	m.loadDuration.Observe(d.Seconds())
}

// OnResolve implements ResolveHooks.
func (m *Metrics) OnResolve(_ context.Context, pass Pass, s PassStats, d time.Duration) {
	m.resolveTotal.WithLabelValues(string(pass), s.Source).Inc()
	m.resolveDuration.WithLabelValues(string(pass)).Observe(d.Seconds())
	m.resolvedAssets.WithLabelValues("assembly").Add(float64(s.Assemblies))
	m.resolvedAssets.WithLabelValues("native").Add(float64(s.Natives))
	m.unresolvedTotal.WithLabelValues(string(pass)).Add(float64(s.Unresolved))
	if pass == PassApplication && s.UsedDefault {
		m.fallbackRIDTotal.Inc()
	}
}

// OnCacheHit implements CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements APIHooks.
func (m *Metrics) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiDuration.WithLabelValues(route).Observe(d.Seconds())
}

var (
	_ ResolveHooks = (*Metrics)(nil)
	_ CacheHooks   = (*Metrics)(nil)
	_ APIHooks     = (*Metrics)(nil)
)

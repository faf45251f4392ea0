// Package prom implements the observability hooks with Prometheus metrics.
//
//	m := prom.New()
//	m.Install()
//	mux.Handle("/metrics", m.Handler())
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/graphilizer/pkg/observability"
)

const namespace = "graphilizer"

// Metrics holds every collector on its own registry, so several instances
// can coexist in one test binary.
type Metrics struct {
	reg *prometheus.Registry

	loads       *prometheus.CounterVec
	layouts     *prometheus.HistogramVec
	renders     *prometheus.HistogramVec
	cache       *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec
	transitions *prometheus.HistogramVec
	memo        *prometheus.CounterVec
	requests    *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_loads_total",
			Help:      "Graph documents loaded, by outcome.",
		}, []string{"outcome"}),
		layouts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time spent computing layouts.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"kind", "outcome"}),
		renders: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering exports.",
		}, []string{"format", "outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Layout cache lookups.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the layout cache.",
		}, []string{"key_type"}),
		transitions: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_transition_duration_seconds",
			Help:      "Time spent deriving a view snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14),
		}, []string{"action"}),
		memo: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_memo_lookups_total",
			Help:      "In-memory layout memo lookups.",
		}, []string{"kind", "result"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "code"}),
	}
	m.reg.MustRegister(m.loads, m.layouts, m.renders, m.cache, m.cacheBytes, m.transitions, m.memo, m.requests)
	return m
}

// Install registers m as the process-wide hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetViewHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func result(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, _, _ int, _ time.Duration, err error) {
	m.loads.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, kind string, d time.Duration, err error) {
	m.layouts.WithLabelValues(kind, outcome(err)).Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	m.renders.WithLabelValues(format, outcome(err)).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cache.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cache.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnTransition(action string, d time.Duration) {
	m.transitions.WithLabelValues(action).Observe(d.Seconds())
}

func (m *Metrics) OnMemo(kind string, hit bool) {
	m.memo.WithLabelValues(kind, result(hit)).Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.ViewHooks     = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

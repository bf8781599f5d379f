package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus records hook events as Prometheus metrics. It implements
// PipelineHooks, CacheHooks and HTTPHooks.
type Prometheus struct {
	StagesTotal     *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	ZonesDetected   prometheus.Histogram
	SignalsPlaced   *prometheus.CounterVec
	CacheEvents     *prometheus.CounterVec
	CacheWriteBytes *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	HTTPInFlight    prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewPrometheus registers the railcdl metrics on reg.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		StagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "railcdl_pipeline_stages_total",
				Help: "Pipeline stages executed, by stage and outcome",
			},
			[]string{"stage", "status"},
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "railcdl_pipeline_stage_duration_seconds",
				Help:    "Pipeline stage latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		ZonesDetected: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "railcdl_zones_per_station",
				Help:    "CDL zones detected per analysed station",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
		),
		SignalsPlaced: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "railcdl_signals_placed_total",
				Help: "Protective signals placed, by whether the threshold was reached",
			},
			[]string{"coverage"},
		),
		CacheEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "railcdl_cache_events_total",
				Help: "Cache lookups and writes, by key type and event",
			},
			[]string{"key_type", "event"},
		),
		CacheWriteBytes: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "railcdl_cache_write_bytes",
				Help:    "Size of cache entries written",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"key_type"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "railcdl_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "railcdl_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "railcdl_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

func (p *Prometheus) stage(stage string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.StagesTotal.WithLabelValues(stage, status).Inc()
	p.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *Prometheus) OnLoadStart(context.Context, string) {}

func (p *Prometheus) OnLoadComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	p.stage("load", d, err)
}

func (p *Prometheus) OnAnalyzeStart(context.Context, string, int) {}

func (p *Prometheus) OnAnalyzeComplete(_ context.Context, _ string, s AnalysisStats, d time.Duration, err error) {
	p.stage("analyze", d, err)
	if err != nil {
		return
	}
	p.ZonesDetected.Observe(float64(s.Zones))
	p.SignalsPlaced.WithLabelValues("full").Add(float64(s.Signals - s.PartialSignals))
	p.SignalsPlaced.WithLabelValues("partial").Add(float64(s.PartialSignals))
}

func (p *Prometheus) OnRenderStart(context.Context, string) {}

func (p *Prometheus) OnRenderComplete(_ context.Context, _ string, d time.Duration, err error) {
	p.stage("render", d, err)
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.CacheEvents.WithLabelValues(keyType, "set").Inc()
	p.CacheWriteBytes.WithLabelValues(keyType).Observe(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {
	p.HTTPInFlight.Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.HTTPInFlight.Dec()
	p.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)

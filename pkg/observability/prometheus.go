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

// PrometheusHooks implements every hook interface by recording Prometheus
// metrics in its own registry.
type PrometheusHooks struct {
	registry *prometheus.Registry

	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	merges        *prometheus.CounterVec
	mergeDuration prometheus.Histogram
	dagNodes      prometheus.Gauge
	dagEdges      prometheus.Gauge
	cacheEvents   *prometheus.CounterVec
	cacheBytes    prometheus.Counter
	requests      *prometheus.CounterVec
	reqDuration   *prometheus.HistogramVec
}

// NewPrometheusHooks registers the hdag metrics with reg. A nil reg gets a
// fresh registry.
func NewPrometheusHooks(reg *prometheus.Registry) *PrometheusHooks {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &PrometheusHooks{
		registry: reg,
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hdag_builds_total",
			Help: "Trees converted to history DAGs, by outcome",
		}, []string{"outcome"}),
		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hdag_build_duration_seconds",
			Help:    "Time to convert one tree",
			Buckets: prometheus.DefBuckets,
		}),
		merges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hdag_merges_total",
			Help: "Merge steps, by outcome",
		}, []string{"outcome"}),
		mergeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hdag_merge_duration_seconds",
			Help:    "Time of one merge step",
			Buckets: prometheus.DefBuckets,
		}),
		dagNodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "hdag_dag_nodes",
			Help: "Node count after the last successful merge",
		}),
		dagEdges: f.NewGauge(prometheus.GaugeOpts{
			Name: "hdag_dag_edges",
			Help: "Edge count after the last successful merge",
		}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hdag_cache_events_total",
			Help: "Cache lookups and writes, by key type and event",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "hdag_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hdag_http_requests_total",
			Help: "Served HTTP requests",
		}, []string{"method", "route", "status"}),
		reqDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hdag_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the registry the metrics are recorded in.
func (p *PrometheusHooks) Registry() *prometheus.Registry { return p.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (p *PrometheusHooks) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *PrometheusHooks) OnBuildStart(context.Context, string) {}

func (p *PrometheusHooks) OnBuildComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	p.builds.WithLabelValues(outcome(err)).Inc()
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusHooks) OnMergeComplete(_ context.Context, nodes, edges int, d time.Duration, err error) {
	p.merges.WithLabelValues(outcome(err)).Inc()
	p.mergeDuration.Observe(d.Seconds())
	if err == nil {
		p.dagNodes.Set(float64(nodes))
		p.dagEdges.Set(float64(edges))
	}
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.Add(float64(size))
}

func (p *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.reqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ ServerHooks   = (*PrometheusHooks)(nil)
)

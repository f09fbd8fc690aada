package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements every hook interface on top of Prometheus
// collectors registered with a caller-supplied registry.
type PrometheusHooks struct {
	NormalizedNodes prometheus.Gauge
	Diagnostics     prometheus.Counter
	LayoutsTotal    *prometheus.CounterVec
	LayoutDuration  *prometheus.HistogramVec
	LayoutTicks     *prometheus.HistogramVec
	RendersTotal    *prometheus.CounterVec
	RenderDuration  prometheus.Histogram
	SimulationsLive prometheus.Gauge
	Ticks           *prometheus.CounterVec
	Alpha           prometheus.Gauge
	Drags           *prometheus.CounterVec
	CacheRequests   *prometheus.CounterVec
	CacheBytes      *prometheus.CounterVec
	SourceFetches   *prometheus.CounterVec
	SourceFetchTime *prometheus.HistogramVec
	SourceChanges   *prometheus.CounterVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		NormalizedNodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "familygraph_graph_nodes",
			Help: "Nodes in the most recently normalized graph",
		}),
		Diagnostics: f.NewCounter(prometheus.CounterOpts{
			Name: "familygraph_diagnostics_total",
			Help: "Configuration diagnostics reported by normalization",
		}),
		LayoutsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familygraph_layouts_total",
			Help: "Settled layouts computed",
		}, []string{"layout", "status"}),
		LayoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "familygraph_layout_duration_seconds",
			Help:    "Time to settle a layout",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"layout"}),
		LayoutTicks: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "familygraph_layout_ticks",
			Help:    "Ticks taken to settle a layout",
			Buckets: []float64{50, 100, 200, 300, 500, 1000},
		}, []string{"layout"}),
		RendersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familygraph_renders_total",
			Help: "Render calls by status",
		}, []string{"status"}),
		RenderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "familygraph_render_duration_seconds",
			Help:    "Time to render all requested formats",
			Buckets: prometheus.DefBuckets,
		}),
		SimulationsLive: f.NewGauge(prometheus.GaugeOpts{
			Name: "familygraph_simulations_running",
			Help: "Simulations whose frame loop is running",
		}),
		Ticks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familygraph_simulation_ticks_total",
			Help: "Simulation steps taken",
		}, []string{"layout"}),
		Alpha: f.NewGauge(prometheus.GaugeOpts{
			Name: "familygraph_simulation_alpha",
			Help: "Alpha of the most recent simulation step",
		}),
		Drags: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familygraph_drag_events_total",
			Help: "Drag interactions by phase",
		}, []string{"phase"}),
		CacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familygraph_cache_requests_total",
			Help: "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),
		CacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familygraph_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}, []string{"key_type"}),
		SourceFetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familygraph_source_fetches_total",
			Help: "Data source snapshot fetches",
		}, []string{"backend", "status"}),
		SourceFetchTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "familygraph_source_fetch_duration_seconds",
			Help:    "Data source snapshot fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend"}),
		SourceChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familygraph_source_changes_total",
			Help: "Change notifications received from data sources",
		}, []string{"backend"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnNormalize(_ context.Context, nodes, _, diagnostics int) {
	h.NormalizedNodes.Set(float64(nodes))
	h.Diagnostics.Add(float64(diagnostics))
}

func (h *PrometheusHooks) OnLayoutStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnLayoutComplete(_ context.Context, layout string, ticks int, d time.Duration, err error) {
	h.LayoutsTotal.WithLabelValues(layout, status(err)).Inc()
	if err == nil {
		h.LayoutDuration.WithLabelValues(layout).Observe(d.Seconds())
		h.LayoutTicks.WithLabelValues(layout).Observe(float64(ticks))
	}
}

func (h *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	h.RendersTotal.WithLabelValues(status(err)).Inc()
	h.RenderDuration.Observe(d.Seconds())
}

func (h *PrometheusHooks) OnSimulationStart(string, int, int) { h.SimulationsLive.Inc() }

func (h *PrometheusHooks) OnTick(layout string, alpha float64) {
	h.Ticks.WithLabelValues(layout).Inc()
	h.Alpha.Set(alpha)
}

func (h *PrometheusHooks) OnSimulationStop(string, int) { h.SimulationsLive.Dec() }

func (h *PrometheusHooks) OnDrag(phase string) { h.Drags.WithLabelValues(phase).Inc() }

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnFetch(_ context.Context, backend string, _, _ int, d time.Duration, err error) {
	h.SourceFetches.WithLabelValues(backend, status(err)).Inc()
	h.SourceFetchTime.WithLabelValues(backend).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnChange(backend string) {
	h.SourceChanges.WithLabelValues(backend).Inc()
}

// Install registers h for every hook category.
func (h *PrometheusHooks) Install() {
	SetPipelineHooks(h)
	SetSimulationHooks(h)
	SetCacheHooks(h)
	SetSourceHooks(h)
}

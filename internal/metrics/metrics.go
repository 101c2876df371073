package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Update outcomes.
const (
	UpdateApplied  = "applied"
	UpdateUnknown  = "unknown"
	UpdateRejected = "rejected"
)

// Metrics holds all Prometheus collectors for a screener.
type Metrics struct {
	gatherer prometheus.Gatherer

	// Feed
	FeedTicks     prometheus.Counter
	FeedUpdates   *prometheus.CounterVec
	FeedListeners prometheus.Gauge

	// View
	ViewRecomputes prometheus.Counter
	ViewDuration   prometheus.Histogram
	ViewRows       prometheus.Gauge

	// Fetch
	FetchTotal    *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	Tokens        prometheus.Gauge

	// Stream
	StreamClients prometheus.Gauge
	StreamDropped prometheus.Counter

	// Archive
	ArchiveQueued  prometheus.Gauge
	ArchiveFlushes prometheus.Counter
	ArchiveRows    prometheus.Counter
	ArchiveErrors  prometheus.Counter
}

// New creates and registers collectors on reg. A nil reg uses a fresh
// private registry.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "tokenscope"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		FeedTicks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "ticks_total",
			Help:      "Total number of feed ticks that dispatched updates",
		}),
		FeedUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "updates_total",
			Help:      "Price updates received by outcome",
		}, []string{"result"}),
		FeedListeners: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "listeners",
			Help:      "Current number of feed listeners",
		}),

		ViewRecomputes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "recomputes_total",
			Help:      "Total number of derived view recomputations",
		}),
		ViewDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "recompute_seconds",
			Help:      "Derived view recomputation latency in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}),
		ViewRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "rows",
			Help:      "Number of rows in the current derived view",
		}),

		FetchTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "total",
			Help:      "Batch fetches by outcome",
		}, []string{"result"}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Batch fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		Tokens: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "tokens",
			Help:      "Number of tokens in the entity store",
		}),

		StreamClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Connected websocket clients",
		}),
		StreamDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "dropped_total",
			Help:      "Frames dropped because a client send queue was full",
		}),

		ArchiveQueued: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "queued",
			Help:      "Price ticks waiting to be archived",
		}),
		ArchiveFlushes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "flushes_total",
			Help:      "Archive batch flushes",
		}),
		ArchiveRows: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "rows_total",
			Help:      "Price ticks inserted into the archive",
		}),
		ArchiveErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "errors_total",
			Help:      "Failed archive batch inserts",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// FeedTick records a tick that dispatched n updates.
func (m *Metrics) FeedTick(n int) {
	if m == nil {
		return
	}
	m.FeedTicks.Inc()
}

// Update records the outcome of one price update.
func (m *Metrics) Update(result string) {
	if m == nil {
		return
	}
	m.FeedUpdates.WithLabelValues(result).Inc()
}

// SetListeners records the feed listener count.
func (m *Metrics) SetListeners(n int) {
	if m == nil {
		return
	}
	m.FeedListeners.Set(float64(n))
}

// Recompute records one derived view recomputation.
func (m *Metrics) Recompute(d time.Duration, rows int) {
	if m == nil {
		return
	}
	m.ViewRecomputes.Inc()
	m.ViewDuration.Observe(d.Seconds())
	m.ViewRows.Set(float64(rows))
}

// FetchStarted is part of the poller observer contract.
func (m *Metrics) FetchStarted() {}

// FetchFinished records a batch fetch outcome.
func (m *Metrics) FetchFinished(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.FetchTotal.WithLabelValues(result).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

// SetTokens records the entity store size.
func (m *Metrics) SetTokens(n int) {
	if m == nil {
		return
	}
	m.Tokens.Set(float64(n))
}

// ClientConnected and ClientDisconnected track stream clients.
func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.StreamClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.StreamClients.Dec()
}

// FrameDropped records a frame dropped for a slow client.
func (m *Metrics) FrameDropped() {
	if m == nil {
		return
	}
	m.StreamDropped.Inc()
}

// ArchiveFlush records an archive flush of rows ticks.
func (m *Metrics) ArchiveFlush(rows int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ArchiveErrors.Inc()
		return
	}
	m.ArchiveFlushes.Inc()
	m.ArchiveRows.Add(float64(rows))
}

// SetArchiveQueued records the archive queue depth.
func (m *Metrics) SetArchiveQueued(n int) {
	if m == nil {
		return
	}
	m.ArchiveQueued.Set(float64(n))
}

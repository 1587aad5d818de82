package reactive

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics for an engine.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reflow").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the metrics set.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the flush duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reflow",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus metrics for one engine. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	effectRuns           prometheus.Counter
	triggers             prometheus.Counter
	flushPasses          prometheus.Counter
	flushAborts          *prometheus.CounterVec
	flushDuration        prometheus.Histogram
	queueDepth           prometheus.Gauge
	activeEffects        prometheus.Gauge
	deepWatchTruncations prometheus.Counter
}

// NewMetrics creates and registers the engine metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		effectRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect executions",
			ConstLabels: config.ConstLabels,
		}),
		triggers: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "triggers_total",
			Help:        "Total number of key triggers",
			ConstLabels: config.ConstLabels,
		}),
		flushPasses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_passes_total",
			Help:        "Total number of scheduler flush passes",
			ConstLabels: config.ConstLabels,
		}),
		flushAborts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_aborts_total",
			Help:        "Fatal flush aborts by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),
		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush duration in seconds",
			Buckets:     config.Buckets,
			ConstLabels: config.ConstLabels,
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "queue_depth",
			Help:        "Effects currently queued for execution",
			ConstLabels: config.ConstLabels,
		}),
		activeEffects: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_effects",
			Help:        "Effects created and not yet killed",
			ConstLabels: config.ConstLabels,
		}),
		deepWatchTruncations: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "deep_watch_truncations_total",
			Help:        "Deep watch traversals truncated by depth or node limits",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) incEffectRuns() {
	if m != nil {
		m.effectRuns.Inc()
	}
}

func (m *Metrics) incTriggers() {
	if m != nil {
		m.triggers.Inc()
	}
}

func (m *Metrics) incFlushPasses() {
	if m != nil {
		m.flushPasses.Inc()
	}
}

func (m *Metrics) incFlushAborts(reason string) {
	if m != nil {
		m.flushAborts.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) observeFlushDuration(seconds float64) {
	if m != nil {
		m.flushDuration.Observe(seconds)
	}
}

func (m *Metrics) setQueueDepth(depth int64) {
	if m != nil {
		m.queueDepth.Set(float64(depth))
	}
}

func (m *Metrics) setActiveEffects(n int64) {
	if m != nil {
		m.activeEffects.Set(float64(n))
	}
}

func (m *Metrics) incDeepWatchTruncations() {
	if m != nil {
		m.deepWatchTruncations.Inc()
	}
}

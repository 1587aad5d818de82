package reactive

import (
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Engine owns all mutable reactive state: the tracking context, batch
// depth, pending triggers, the job queue, the identity table for raw
// values, and the error handler chain. Independent engines share nothing.
//
// An Engine is confined to a single logical thread; see the package
// documentation for the threading model.
type Engine struct {
	logger   *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	sink     func(Event)
	onError  func(error) bool
	idSource atomic.Uint64

	// listener is the effect currently tracking dependencies.
	// nil means reads don't create subscriptions.
	listener *Effect

	// scope is the Scope that will own newly created effects.
	scope *Scope
	root  *Scope

	// batchDepth tracks nested Batch() calls. When > 0, triggers are
	// recorded in pending instead of firing.
	batchDepth int

	// pending holds deferred triggers keyed by meta, with pendingOrder
	// preserving first-recorded order for a deterministic flush.
	pending      map[*Meta]map[Key]struct{}
	pendingOrder []pendingTrigger

	// identity maps a raw container's pointer identity to its meta so one
	// raw value is never wrapped twice.
	identity map[identityKey]*Meta

	sched *scheduler

	// atomic counters readable from other goroutines via Stats.
	statEffectRuns    atomic.Uint64
	statTriggers      atomic.Uint64
	statFlushPasses   atomic.Uint64
	statFlushAborts   atomic.Uint64
	statQueueDepth    atomic.Int64
	statActiveEffects atomic.Int64
}

type pendingTrigger struct {
	meta *Meta
	key  Key
}

type identityKey struct {
	ptr  uintptr
	kind Kind
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for diagnostics. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics attaches Prometheus metrics to the engine.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer enables OpenTelemetry spans around batches and flushes.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithErrorHandler sets the engine-global error handler, consulted after
// scope handlers. Return true to mark the error handled.
func WithErrorHandler(fn func(error) bool) Option {
	return func(e *Engine) { e.onError = fn }
}

// WithEventSink registers a callback receiving engine lifecycle events
// (flush completion, fatal aborts). Used by the devtools server.
func WithEventSink(fn func(Event)) Option {
	return func(e *Engine) { e.sink = fn }
}

// WithDeferral sets how time-sliced flush continuations are posted.
// The default runs continuations as loop continuations drained by the
// engine itself (see NextTick).
func WithDeferral(d Deferral) Option {
	return func(e *Engine) { e.sched.deferral = d }
}

// WithFlushBudget sets the cooperative time-slice budget per flush pass.
func WithFlushBudget(d time.Duration) Option {
	return func(e *Engine) { e.sched.sliceBudget = d }
}

// WithFlushDeadline sets the wall-clock limit spanning one logical batch,
// including all yields. Exceeding it aborts the flush fatally.
func WithFlushDeadline(d time.Duration) Option {
	return func(e *Engine) { e.sched.deadline = d }
}

// WithMaxFlushPasses sets how many flush passes may occur without the
// queue draining before the flush aborts with ErrCircularUpdate.
func WithMaxFlushPasses(n int) Option {
	return func(e *Engine) { e.sched.maxPasses = n }
}

// New creates an Engine with its own scheduler, identity table, and root
// scope.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   slog.Default().With("component", "reactive"),
		pending:  make(map[*Meta]map[Key]struct{}),
		identity: make(map[identityKey]*Meta),
	}
	e.sched = newScheduler(e)
	for _, opt := range opts {
		opt(e)
	}
	e.root = newScope(e, nil)
	e.scope = e.root
	return e
}

// Root returns the engine's root scope.
func (e *Engine) Root() *Scope { return e.root }

// Logger returns the engine's diagnostic logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

func (e *Engine) nextID() uint64 {
	return e.idSource.Add(1)
}

// reportError routes err through the handler chain: the given scope's
// CatchError handlers walking up to the root, then the engine-global
// handler, then the default diagnostic log.
func (e *Engine) reportError(s *Scope, err error) {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.handle(err) {
			return
		}
	}
	if e.onError != nil && e.onError(err) {
		return
	}
	e.logger.Error("unhandled reactive error", "error", err)
}

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	EffectRuns    uint64 `json:"effect_runs"`
	Triggers      uint64 `json:"triggers"`
	FlushPasses   uint64 `json:"flush_passes"`
	FlushAborts   uint64 `json:"flush_aborts"`
	QueueDepth    int64  `json:"queue_depth"`
	ActiveEffects int64  `json:"active_effects"`
}

// Stats returns current counter values. Safe to call from any goroutine.
func (e *Engine) Stats() Stats {
	return Stats{
		EffectRuns:    e.statEffectRuns.Load(),
		Triggers:      e.statTriggers.Load(),
		FlushPasses:   e.statFlushPasses.Load(),
		FlushAborts:   e.statFlushAborts.Load(),
		QueueDepth:    e.statQueueDepth.Load(),
		ActiveEffects: e.statActiveEffects.Load(),
	}
}

// EventKind classifies engine lifecycle events.
type EventKind string

const (
	EventFlush EventKind = "flush"
	EventFatal EventKind = "fatal"
	EventBatch EventKind = "batch"
)

// Event is published to the configured event sink.
type Event struct {
	Time   time.Time `json:"time"`
	Kind   EventKind `json:"kind"`
	Jobs   int       `json:"jobs,omitempty"`
	Passes int       `json:"passes,omitempty"`
	Error  string    `json:"error,omitempty"`
}

func (e *Engine) publish(ev Event) {
	if e.sink == nil {
		return
	}
	ev.Time = time.Now()
	e.sink(ev)
}

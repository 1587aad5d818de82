package reactive

import (
	"fmt"
	"sync/atomic"
)

// Effect is a re-runnable unit of work. While it runs, container reads
// subscribe it to the keys they touch; when any of those keys changes the
// effect is re-run (through its custom scheduler callback if one is set,
// otherwise via the engine's job queue).
//
// Lifecycle: created active and, unless lazy, run immediately; re-run on
// trigger; inactive after Kill (terminal).
type Effect struct {
	id     uint64
	engine *Engine
	scope  *Scope
	fn     func()

	// deps are back-references into every dependency set this effect is
	// subscribed to, in subscription order. Rebuilt on every run.
	deps []depRef

	// schedule, when set, replaces default job-queue scheduling on trigger.
	// Computed and Watch use it to defer work instead of auto re-running.
	schedule func(*Effect)

	active  atomic.Bool
	running atomic.Bool
	queued  atomic.Bool
}

// EffectOption configures an Effect at creation.
type EffectOption func(*effectConfig)

type effectConfig struct {
	lazy     bool
	schedule func(*Effect)
}

// Lazy prevents the initial immediate run. The effect only runs when Run
// is called or a trigger schedules it.
func Lazy() EffectOption {
	return func(c *effectConfig) { c.lazy = true }
}

// WithScheduler replaces default scheduling: on trigger the callback is
// invoked instead of enqueueing the effect on the job queue.
func WithScheduler(fn func(*Effect)) EffectOption {
	return func(c *effectConfig) { c.schedule = fn }
}

// CreateEffect creates an effect owned by the current scope. Unless Lazy
// is given it runs immediately, establishing its initial dependencies.
func (e *Engine) CreateEffect(fn func(), opts ...EffectOption) *Effect {
	var cfg effectConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ef := &Effect{
		id:       e.nextID(),
		engine:   e,
		scope:    e.scope,
		fn:       fn,
		schedule: cfg.schedule,
	}
	ef.active.Store(true)
	e.statActiveEffects.Add(1)
	e.metrics.setActiveEffects(e.statActiveEffects.Load())

	if ef.scope != nil {
		ef.scope.registerEffect(ef)
	}
	if !cfg.lazy {
		ef.Run()
	}
	return ef
}

// ID returns the unique identifier for this effect.
func (ef *Effect) ID() uint64 { return ef.id }

// Active reports whether the effect has not been killed.
func (ef *Effect) Active() bool { return ef.active.Load() }

// Run executes the effect body under tracking. Previous subscriptions are
// cleared first so paths no longer read stop notifying (conditional reads),
// and dependency sets that become empty are pruned from their metas.
//
// A panic in the body is recovered, routed through the error handler chain,
// and recorded against the current drain for NextTick.
func (ef *Effect) Run() {
	if !ef.active.Load() {
		return
	}
	ef.queued.Store(false)
	ef.clearDeps()

	prev := ef.engine.listener
	ef.engine.listener = ef
	ef.running.Store(true)
	defer func() {
		ef.running.Store(false)
		ef.engine.listener = prev
		if r := recover(); r != nil {
			err := fmt.Errorf("reflow: effect %d panicked: %v", ef.id, r)
			ef.engine.sched.noteJobError(err)
			ef.engine.reportError(ef.scope, err)
		}
	}()

	ef.engine.statEffectRuns.Add(1)
	ef.engine.metrics.incEffectRuns()
	ef.fn()
}

// Kill detaches the effect from all dependencies and marks it inactive.
// Synchronous and immediate: no future trigger can reach the effect, and
// the active check at execution time filters it even if already queued.
func (ef *Effect) Kill() {
	if ef.active.Swap(false) {
		ef.clearDeps()
		ef.queued.Store(false)
		ef.engine.statActiveEffects.Add(-1)
		ef.engine.metrics.setActiveEffects(ef.engine.statActiveEffects.Load())
	}
}

// clearDeps unsubscribes from all dependency sets, pruning sets that end
// up empty so long-dead subscriptions can't grow meta.deps without bound.
func (ef *Effect) clearDeps() {
	for _, ref := range ef.deps {
		ref.set.remove(ef)
		if len(ref.set.effects) == 0 {
			delete(ref.meta.deps, ref.key)
		}
	}
	ef.deps = ef.deps[:0]
}

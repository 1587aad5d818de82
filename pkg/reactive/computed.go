package reactive

// Computed is a lazy, memoized derived value. The computation runs on
// first access, not at construction; an upstream change marks the value
// dirty and notifies subscribers, but recomputation is deferred until
// Value is next read.
//
// Reading Value inside another effect's run subscribes that effect, so
// computeds chain like containers do.
type Computed[T any] struct {
	engine  *Engine
	meta    *Meta
	effect  *Effect
	compute func() T

	value T
	dirty bool
}

// NewComputed creates a computed owned by the engine's current scope.
func NewComputed[T any](e *Engine, compute func() T) *Computed[T] {
	c := &Computed[T]{
		engine:  e,
		meta:    newMeta(e, KindDerived),
		compute: compute,
		dirty:   true,
	}
	c.meta.handle = c
	c.effect = e.CreateEffect(func() {
		c.value = c.compute()
	}, Lazy(), WithScheduler(func(*Effect) {
		c.invalidate()
	}))
	return c
}

// invalidate marks the value stale and pushes the invalidation downstream.
// Recomputation does not happen here; it waits for the next read.
func (c *Computed[T]) invalidate() {
	if c.dirty {
		return
	}
	c.dirty = true
	c.engine.trigger(c.meta, keyDerived)
}

// Value returns the computed value, recomputing if dirty, and subscribes
// the current listener.
func (c *Computed[T]) Value() T {
	c.engine.track(c.meta, keyDerived)
	c.refresh()
	return c.value
}

// Peek returns the value without subscribing. Still recomputes if dirty.
func (c *Computed[T]) Peek() T {
	c.refresh()
	return c.value
}

func (c *Computed[T]) refresh() {
	if !c.dirty || !c.effect.Active() {
		return
	}
	// Run re-tracks upstream dependencies; the running flag on the effect
	// makes a computation that writes its own inputs a no-op trigger
	// instead of unbounded recursion.
	c.effect.Run()
	c.dirty = false
}

// Stop kills the underlying effect. The last computed value stays readable
// but no longer updates.
func (c *Computed[T]) Stop() {
	c.effect.Kill()
}

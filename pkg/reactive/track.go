package reactive

import "fmt"

// track records a dependency of the currently-running effect on (m, key).
// No-op when no tracking context is active. Subscribing twice to the same
// key within one run is a single subscription.
func (e *Engine) track(m *Meta, key Key) {
	l := e.listener
	if l == nil {
		return
	}
	set := m.deps[key]
	if set == nil {
		set = &depSet{}
		m.deps[key] = set
	}
	if set.contains(l) {
		return
	}
	set.add(l)
	l.deps = append(l.deps, depRef{meta: m, key: key, set: set})
	if _, isIndex := key.(int); isIndex && m.kind == KindArray {
		m.arrayIndexSeen = true
	}
}

// trigger notifies the effects subscribed to (m, key). Inside a batch the
// pair is recorded and deferred until the outermost batch exits. Re-entrant
// self-triggers (an effect writing a key it reads) are ignored rather than
// recursing.
func (e *Engine) trigger(m *Meta, key Key) {
	e.statTriggers.Add(1)
	e.metrics.incTriggers()

	if e.batchDepth > 0 {
		keys := e.pending[m]
		if keys == nil {
			keys = make(map[Key]struct{})
			e.pending[m] = keys
		}
		if _, dup := keys[key]; !dup {
			keys[key] = struct{}{}
			e.pendingOrder = append(e.pendingOrder, pendingTrigger{meta: m, key: key})
		}
		return
	}

	set := m.deps[key]
	if set == nil {
		return
	}
	// Snapshot: effect runs triggered here may resubscribe and grow the set.
	subs := make([]*Effect, len(set.effects))
	copy(subs, set.effects)

	for _, ef := range subs {
		if !ef.active.Load() || ef.running.Load() {
			continue
		}
		if ef.schedule != nil {
			ef.schedule(ef)
			continue
		}
		e.sched.enqueue(ef)
	}
	e.sched.kick()
}

// flushPendingTriggers drains triggers deferred by batching, key by key.
// A panic from one key's trigger is reported and does not abort the rest.
func (e *Engine) flushPendingTriggers() {
	if len(e.pendingOrder) == 0 {
		return
	}
	order := e.pendingOrder
	e.pendingOrder = nil
	e.pending = make(map[*Meta]map[Key]struct{})

	e.sched.suspendKick = true
	for _, pt := range order {
		e.safeTrigger(pt.meta, pt.key)
	}
	e.sched.suspendKick = false
	e.sched.kick()
}

func (e *Engine) safeTrigger(m *Meta, key Key) {
	defer func() {
		if r := recover(); r != nil {
			e.reportError(nil, fmt.Errorf("reflow: panic while flushing trigger for %v key %v: %v", m.kind, key, r))
		}
	}()
	e.trigger(m, key)
}

// clearPending discards all deferred triggers. Called on fatal scheduler
// aborts so a corrupted batch cannot cascade.
func (e *Engine) clearPending() {
	e.pendingOrder = nil
	e.pending = make(map[*Meta]map[Key]struct{})
}

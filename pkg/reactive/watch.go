package reactive

import "reflect"

const (
	// maxWatchDepth bounds deep traversal nesting.
	maxWatchDepth = 100

	// maxWatchNodes bounds how many values one deep traversal may visit.
	maxWatchNodes = 10000
)

// WatchCallback receives the new and old values on change. Cleanup
// functions registered through onCleanup run before the next callback
// invocation and when the watcher stops.
type WatchCallback func(newValue, oldValue any, onCleanup func(func()))

// WatchOption configures a watcher.
type WatchOption func(*watcher)

// Deep makes the watcher traverse every reachable nested value of the
// source, registering dependencies on all nested keys. Traversal is
// bounded by maxWatchDepth and maxWatchNodes; exceeding either truncates
// the affected subtree and logs a diagnostic instead of failing.
func Deep() WatchOption {
	return func(w *watcher) { w.deep = true }
}

// Immediate fires the callback once right after the initial evaluation,
// with a nil old value.
func Immediate() WatchOption {
	return func(w *watcher) { w.immediate = true }
}

type watcher struct {
	engine *Engine
	effect *Effect
	source func() any
	cb     WatchCallback

	deep      bool
	immediate bool

	first   bool
	old     any
	cleanup func()
}

// Watch subscribes a callback to changes of source. The getter is
// evaluated immediately under tracking to establish dependencies; the
// callback fires on change only (deep-clone snapshot comparison in deep
// mode, identity comparison otherwise). Returns the stop function.
func (e *Engine) Watch(source func() any, cb WatchCallback, opts ...WatchOption) (stop func()) {
	w := &watcher{
		engine: e,
		source: source,
		cb:     cb,
		first:  true,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.effect = e.CreateEffect(w.check)
	return w.stop
}

func (w *watcher) check() {
	v := w.source()
	if w.deep {
		w.traverse(v)
	}

	var snap any
	if w.deep {
		snap = deepClone(v)
	} else {
		snap = v
	}

	if w.first {
		w.first = false
		w.old = snap
		if w.immediate {
			w.invoke(v, nil)
		}
		return
	}

	var changed bool
	if w.deep {
		changed = !reflect.DeepEqual(w.old, snap)
	} else {
		changed = !identityEqual(w.old, snap)
	}
	if changed {
		old := w.old
		w.old = snap
		w.invoke(v, old)
	}
}

// invoke runs the previous cleanup, then the callback, both untracked so
// reads inside the callback don't subscribe the watcher.
func (w *watcher) invoke(newV, oldV any) {
	w.engine.Untracked(func() {
		if w.cleanup != nil {
			w.cleanup()
			w.cleanup = nil
		}
		w.cb(newV, oldV, func(fn func()) { w.cleanup = fn })
	})
}

func (w *watcher) stop() {
	if w.cleanup != nil {
		w.cleanup()
		w.cleanup = nil
	}
	w.effect.Kill()
}

// traverse visits every reachable wrapped value under v so the watcher
// subscribes to all nested keys. Cycles are cut via meta identity. When a
// bound is hit the remaining subtree is skipped; changes inside the
// visited prefix still fire.
func (w *watcher) traverse(v any) {
	visited := make(map[*Meta]bool)
	nodes := 0
	truncated := false

	var walk func(v any, depth int)
	walk = func(v any, depth int) {
		if nodes > maxWatchNodes {
			return
		}
		if depth > maxWatchDepth {
			truncated = true
			return
		}
		switch h := v.(type) {
		case *Object:
			if visited[h.meta] {
				return
			}
			visited[h.meta] = true
			for _, k := range h.Keys() {
				nodes++
				if nodes > maxWatchNodes {
					truncated = true
					return
				}
				walk(h.Get(k), depth+1)
			}
		case *Array:
			if visited[h.meta] {
				return
			}
			visited[h.meta] = true
			n := h.Len()
			for i := 0; i < n; i++ {
				nodes++
				if nodes > maxWatchNodes {
					truncated = true
					return
				}
				walk(h.Get(i), depth+1)
			}
		case *Map:
			if visited[h.meta] {
				return
			}
			visited[h.meta] = true
			for _, k := range h.Keys() {
				nodes++
				if nodes > maxWatchNodes {
					truncated = true
					return
				}
				walk(h.Get(k), depth+1)
			}
		case *Set:
			if visited[h.meta] {
				return
			}
			visited[h.meta] = true
			// Membership changes trigger KeyIterate, which Len tracks.
			// Elements are leaves, so the subscription is complete either
			// way; the budget check only drives the diagnostic.
			nodes += h.Len()
			if nodes > maxWatchNodes {
				truncated = true
			}
		}
	}
	walk(v, 0)

	if truncated {
		w.engine.metrics.incDeepWatchTruncations()
		w.engine.logger.Warn("deep watch traversal truncated",
			"max_depth", maxWatchDepth,
			"max_nodes", maxWatchNodes,
			"visited", nodes,
		)
	}
}

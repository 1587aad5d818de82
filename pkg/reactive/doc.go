// Package reactive provides Reflow's fine-grained reactive state engine.
//
// State lives in container wrappers (Object, Array, Map, Set) that record
// per-key read dependencies and notify only the effects that actually read
// a changed key. Writes are coalesced by a batching layer and executed by a
// double-buffered, time-sliced scheduler with circular-dependency guards.
//
// # Core Types
//
// Engine owns all mutable engine state. Every reactive primitive belongs to
// exactly one Engine:
//
//	eng := reactive.New()
//	obj := eng.Wrap(map[string]any{"count": 0}).(*reactive.Object)
//
// Effects re-run when a key they read changes:
//
//	eng.CreateEffect(func() {
//	    fmt.Println("count is", obj.Get("count"))
//	})
//	obj.Set("count", 1) // effect re-runs
//
// Computed values are lazy and memoized:
//
//	doubled := reactive.NewComputed(eng, func() int {
//	    return obj.Get("count").(int) * 2
//	})
//
// Watchers observe a source and fire a callback on change:
//
//	stop := eng.Watch(func() any { return obj.Get("count") },
//	    func(newV, oldV any, onCleanup func(func())) {
//	        fmt.Println(oldV, "->", newV)
//	    })
//
// # Batching
//
// Multiple writes can be grouped so subscribers are notified once:
//
//	eng.Batch(func() {
//	    obj.Set("a", 1)
//	    obj.Set("b", 2)
//	})
//
// # Threading Model
//
// An Engine is confined to a single logical thread: all wrapping, reads,
// writes, and effect execution must happen on one goroutine (or be
// externally serialized). Counters exposed through Stats use atomics so
// monitoring code may read them from other goroutines.
package reactive

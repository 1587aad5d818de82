package reactive

import "sort"

// Array is the reactive wrapper for ordered sequences. Index reads track
// the specific index, Len tracks KeyLength, and iteration tracks
// KeyIterate. Writing an existing index triggers only that index, keeping
// per-element updates O(1) in invalidation cost; structural mutations run
// inside an implicit batch and trigger KeyIterate plus KeyLength.
//
// Reordering methods (Sort, Reverse, Shift, Unshift, Splice) additionally
// re-trigger every live index dependency, but only if an index was ever
// tracked on this array.
type Array struct {
	meta  *Meta
	items []any
}

// Meta returns the reactive bookkeeping record.
func (a *Array) Meta() *Meta { return a.meta }

// Get reads index i, tracking it. Out-of-range reads return nil (and still
// track, so a later growth re-runs the reader).
func (a *Array) Get(i int) any {
	e := a.meta.engine
	e.track(a.meta, i)
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return e.Wrap(a.items[i])
}

// Len returns the length, tracking KeyLength.
func (a *Array) Len() int {
	a.meta.engine.track(a.meta, KeyLength)
	return len(a.items)
}

// Set writes index i. Existing indices trigger only i. Writing at or past
// the end grows the array (nil-filling any gap) and triggers KeyIterate
// and KeyLength instead. Negative indices are ignored.
func (a *Array) Set(i int, v any) {
	if i < 0 {
		return
	}
	e := a.meta.engine
	raw := Unwrap(v)
	if i < len(a.items) {
		if identityEqual(a.items[i], raw) {
			return
		}
		a.items[i] = raw
		a.meta.bump()
		e.trigger(a.meta, i)
		return
	}
	for len(a.items) < i {
		a.items = append(a.items, nil)
	}
	a.items = append(a.items, raw)
	a.meta.bump()
	e.Batch(func() {
		e.trigger(a.meta, KeyIterate)
		e.trigger(a.meta, KeyLength)
	})
}

// SetLen resizes the array. Truncation triggers every removed index;
// either direction triggers KeyIterate and KeyLength.
func (a *Array) SetLen(n int) {
	if n < 0 || n == len(a.items) {
		return
	}
	old := len(a.items)
	if n < old {
		removed := make([]Key, 0, old-n)
		for i := n; i < old; i++ {
			removed = append(removed, i)
		}
		for i := n; i < old; i++ {
			a.items[i] = nil
		}
		a.items = a.items[:n]
		a.mutate(false, removed, func() {})
		return
	}
	a.mutate(false, nil, func() {
		for len(a.items) < n {
			a.items = append(a.items, nil)
		}
	})
}

// Push appends values.
func (a *Array) Push(vs ...any) {
	if len(vs) == 0 {
		return
	}
	a.mutate(false, nil, func() {
		for _, v := range vs {
			a.items = append(a.items, Unwrap(v))
		}
	})
}

// Pop removes and returns the last element (nil when empty).
func (a *Array) Pop() any {
	if len(a.items) == 0 {
		return nil
	}
	last := a.items[len(a.items)-1]
	a.mutate(false, []Key{len(a.items) - 1}, func() {
		a.items[len(a.items)-1] = nil
		a.items = a.items[:len(a.items)-1]
	})
	return last
}

// Shift removes and returns the first element (nil when empty).
func (a *Array) Shift() any {
	if len(a.items) == 0 {
		return nil
	}
	first := a.items[0]
	a.mutate(true, nil, func() {
		copy(a.items, a.items[1:])
		a.items[len(a.items)-1] = nil
		a.items = a.items[:len(a.items)-1]
	})
	return first
}

// Unshift prepends values.
func (a *Array) Unshift(vs ...any) {
	if len(vs) == 0 {
		return
	}
	a.mutate(true, nil, func() {
		raws := make([]any, 0, len(vs)+len(a.items))
		for _, v := range vs {
			raws = append(raws, Unwrap(v))
		}
		a.items = append(raws, a.items...)
	})
}

// Splice removes deleteCount elements starting at start, inserts vs in
// their place, and returns the removed elements. Start is clamped to the
// valid range.
func (a *Array) Splice(start, deleteCount int, vs ...any) []any {
	if start < 0 {
		start = 0
	}
	if start > len(a.items) {
		start = len(a.items)
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if deleteCount > len(a.items)-start {
		deleteCount = len(a.items) - start
	}
	removed := make([]any, deleteCount)
	copy(removed, a.items[start:start+deleteCount])
	if deleteCount == 0 && len(vs) == 0 {
		return removed
	}
	a.mutate(true, nil, func() {
		raws := make([]any, 0, len(vs))
		for _, v := range vs {
			raws = append(raws, Unwrap(v))
		}
		tail := make([]any, len(a.items)-start-deleteCount)
		copy(tail, a.items[start+deleteCount:])
		a.items = append(a.items[:start], raws...)
		a.items = append(a.items, tail...)
	})
	return removed
}

// Sort sorts the array stably by less.
func (a *Array) Sort(less func(x, y any) bool) {
	a.mutate(true, nil, func() {
		sort.SliceStable(a.items, func(i, j int) bool {
			return less(a.items[i], a.items[j])
		})
	})
}

// Reverse reverses the array in place.
func (a *Array) Reverse() {
	a.mutate(true, nil, func() {
		for i, j := 0, len(a.items)-1; i < j; i, j = i+1, j-1 {
			a.items[i], a.items[j] = a.items[j], a.items[i]
		}
	})
}

// Values returns a wrapped snapshot of the elements, tracking KeyIterate.
func (a *Array) Values() []any {
	e := a.meta.engine
	e.track(a.meta, KeyIterate)
	out := make([]any, len(a.items))
	for i, v := range a.items {
		out[i] = e.Wrap(v)
	}
	return out
}

// ForEach visits elements in order, tracking KeyIterate.
func (a *Array) ForEach(fn func(i int, v any)) {
	e := a.meta.engine
	e.track(a.meta, KeyIterate)
	for i, v := range a.items {
		fn(i, e.Wrap(v))
	}
}

// mutate runs a structural mutation inside an implicit batch, triggering
// KeyIterate, KeyLength, any extra keys, and, for reordering mutations on
// arrays with live index dependencies, every tracked index.
func (a *Array) mutate(reorders bool, extra []Key, fn func()) {
	e := a.meta.engine
	e.Batch(func() {
		fn()
		a.meta.bump()
		for _, k := range extra {
			e.trigger(a.meta, k)
		}
		e.trigger(a.meta, KeyIterate)
		e.trigger(a.meta, KeyLength)
		if reorders && a.meta.arrayIndexSeen {
			for k := range a.meta.deps {
				if _, isIndex := k.(int); isIndex {
					e.trigger(a.meta, k)
				}
			}
		}
	})
}

package reactive

import "sort"

// Object is the reactive wrapper for string-keyed records. Reads track the
// accessed key; key enumeration tracks KeyIterate. Writes compare old and
// new by identity and trigger only the written key, plus KeyIterate when
// the key set changes.
type Object struct {
	meta *Meta
	raw  map[string]any
}

// Meta returns the reactive bookkeeping record.
func (o *Object) Meta() *Meta { return o.meta }

// Get reads key, tracking it as a dependency. Container values are
// returned wrapped so nested reads keep tracking.
func (o *Object) Get(key string) any {
	e := o.meta.engine
	e.track(o.meta, key)
	v, ok := o.raw[key]
	if !ok {
		return nil
	}
	return e.Wrap(v)
}

// Has reports key presence, tracking the key.
func (o *Object) Has(key string) bool {
	o.meta.engine.track(o.meta, key)
	_, ok := o.raw[key]
	return ok
}

// Set writes key. Identity-equal writes are no-ops. New keys additionally
// trigger KeyIterate so enumeration readers re-run.
func (o *Object) Set(key string, v any) {
	e := o.meta.engine
	raw := Unwrap(v)
	old, existed := o.raw[key]
	if existed && identityEqual(old, raw) {
		return
	}
	o.raw[key] = raw
	o.meta.bump()
	if existed {
		e.trigger(o.meta, key)
		return
	}
	e.Batch(func() {
		e.trigger(o.meta, key)
		e.trigger(o.meta, KeyIterate)
	})
}

// Delete removes key, triggering it and KeyIterate. Absent keys are no-ops.
func (o *Object) Delete(key string) {
	e := o.meta.engine
	if _, ok := o.raw[key]; !ok {
		return
	}
	delete(o.raw, key)
	o.meta.bump()
	e.Batch(func() {
		e.trigger(o.meta, key)
		e.trigger(o.meta, KeyIterate)
	})
}

// Len returns the number of keys, tracking KeyIterate.
func (o *Object) Len() int {
	o.meta.engine.track(o.meta, KeyIterate)
	return len(o.raw)
}

// Keys returns the keys in sorted order, tracking KeyIterate.
func (o *Object) Keys() []string {
	o.meta.engine.track(o.meta, KeyIterate)
	keys := make([]string, 0, len(o.raw))
	for k := range o.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ForEach visits entries in sorted key order, tracking KeyIterate. Values
// are passed wrapped.
func (o *Object) ForEach(fn func(key string, v any)) {
	e := o.meta.engine
	e.track(o.meta, KeyIterate)
	keys := make([]string, 0, len(o.raw))
	for k := range o.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn(k, e.Wrap(o.raw[k]))
	}
}

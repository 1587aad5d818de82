package reactive

// Map is the reactive wrapper for arbitrary-keyed maps. Get and Has track
// the specific raw (unwrapped) key; size and iteration track KeyIterate.
// Mutations trigger only when membership or the stored value actually
// changes; no-op writes are silent.
//
// Keys must be comparable Go values. Wrapped handles used as keys are
// unwrapped first so the same logical key always hits the same slot.
type Map struct {
	meta *Meta
	raw  map[any]any
}

// Meta returns the reactive bookkeeping record.
func (m *Map) Meta() *Meta { return m.meta }

// Get reads the entry for key, tracking the key.
func (m *Map) Get(key any) any {
	e := m.meta.engine
	rk := Unwrap(key)
	e.track(m.meta, rk)
	v, ok := m.raw[rk]
	if !ok {
		return nil
	}
	return e.Wrap(v)
}

// Has reports membership, tracking the key.
func (m *Map) Has(key any) bool {
	rk := Unwrap(key)
	m.meta.engine.track(m.meta, rk)
	_, ok := m.raw[rk]
	return ok
}

// Len returns the entry count, tracking KeyIterate.
func (m *Map) Len() int {
	m.meta.engine.track(m.meta, KeyIterate)
	return len(m.raw)
}

// Keys returns the raw keys, tracking KeyIterate. Order is unspecified.
func (m *Map) Keys() []any {
	m.meta.engine.track(m.meta, KeyIterate)
	keys := make([]any, 0, len(m.raw))
	for k := range m.raw {
		keys = append(keys, k)
	}
	return keys
}

// ForEach visits entries, tracking KeyIterate. Values are passed wrapped.
func (m *Map) ForEach(fn func(key, v any)) {
	e := m.meta.engine
	e.track(m.meta, KeyIterate)
	for k, v := range m.raw {
		fn(k, e.Wrap(v))
	}
}

// Set stores key -> v. Writing an identity-equal value is a no-op. New
// keys additionally trigger KeyIterate.
func (m *Map) Set(key, v any) {
	e := m.meta.engine
	rk := Unwrap(key)
	rv := Unwrap(v)
	old, existed := m.raw[rk]
	if existed && identityEqual(old, rv) {
		return
	}
	m.raw[rk] = rv
	m.meta.bump()
	if existed {
		e.trigger(m.meta, rk)
		return
	}
	e.Batch(func() {
		e.trigger(m.meta, rk)
		e.trigger(m.meta, KeyIterate)
	})
}

// Delete removes key. Absent keys are no-ops.
func (m *Map) Delete(key any) {
	e := m.meta.engine
	rk := Unwrap(key)
	if _, ok := m.raw[rk]; !ok {
		return
	}
	delete(m.raw, rk)
	m.meta.bump()
	e.Batch(func() {
		e.trigger(m.meta, rk)
		e.trigger(m.meta, KeyIterate)
	})
}

// Clear removes all entries, triggering every present key and KeyIterate.
// Empty maps are no-ops.
func (m *Map) Clear() {
	e := m.meta.engine
	if len(m.raw) == 0 {
		return
	}
	keys := make([]any, 0, len(m.raw))
	for k := range m.raw {
		keys = append(keys, k)
	}
	for _, k := range keys {
		delete(m.raw, k)
	}
	m.meta.bump()
	e.Batch(func() {
		for _, k := range keys {
			e.trigger(m.meta, k)
		}
		e.trigger(m.meta, KeyIterate)
	})
}

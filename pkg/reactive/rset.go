package reactive

// Set is the reactive wrapper for membership sets. Has tracks the element
// as a key; size and iteration track KeyIterate. Add and Delete trigger
// only when membership actually changes.
type Set struct {
	meta *Meta
	raw  RawSet
}

// Meta returns the reactive bookkeeping record.
func (s *Set) Meta() *Meta { return s.meta }

// Has reports membership, tracking the element.
func (s *Set) Has(v any) bool {
	rv := Unwrap(v)
	s.meta.engine.track(s.meta, rv)
	_, ok := s.raw[rv]
	return ok
}

// Len returns the element count, tracking KeyIterate.
func (s *Set) Len() int {
	s.meta.engine.track(s.meta, KeyIterate)
	return len(s.raw)
}

// Values returns the elements, tracking KeyIterate. Order is unspecified.
func (s *Set) Values() []any {
	s.meta.engine.track(s.meta, KeyIterate)
	out := make([]any, 0, len(s.raw))
	for v := range s.raw {
		out = append(out, v)
	}
	return out
}

// ForEach visits elements, tracking KeyIterate.
func (s *Set) ForEach(fn func(v any)) {
	s.meta.engine.track(s.meta, KeyIterate)
	for v := range s.raw {
		fn(v)
	}
}

// Add inserts v. Already-present elements are no-ops.
func (s *Set) Add(v any) {
	e := s.meta.engine
	rv := Unwrap(v)
	if _, ok := s.raw[rv]; ok {
		return
	}
	s.raw[rv] = struct{}{}
	s.meta.bump()
	e.Batch(func() {
		e.trigger(s.meta, rv)
		e.trigger(s.meta, KeyIterate)
	})
}

// Delete removes v. Absent elements are no-ops.
func (s *Set) Delete(v any) {
	e := s.meta.engine
	rv := Unwrap(v)
	if _, ok := s.raw[rv]; !ok {
		return
	}
	delete(s.raw, rv)
	s.meta.bump()
	e.Batch(func() {
		e.trigger(s.meta, rv)
		e.trigger(s.meta, KeyIterate)
	})
}

// Clear removes all elements, triggering each and KeyIterate.
func (s *Set) Clear() {
	e := s.meta.engine
	if len(s.raw) == 0 {
		return
	}
	elems := make([]any, 0, len(s.raw))
	for v := range s.raw {
		elems = append(elems, v)
	}
	for _, v := range elems {
		delete(s.raw, v)
	}
	s.meta.bump()
	e.Batch(func() {
		for _, v := range elems {
			e.trigger(s.meta, v)
		}
		e.trigger(s.meta, KeyIterate)
	})
}

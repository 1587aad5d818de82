package reactive

import "reflect"

// Skipper marks a value as excluded from reactivity. Wrap returns such
// values unchanged instead of building container wrappers around them.
type Skipper interface {
	SkipReactivity()
}

// RawSet is the raw representation backing a reactive Set.
type RawSet = map[any]struct{}

// Wrap returns a reactive handle for v. Container values (map[string]any,
// []any, map[any]any, RawSet) are wrapped; non-container values, values
// implementing Skipper, and already-wrapped values pass through unchanged.
//
// Exactly one wrapper exists per raw value: wrapping the same raw
// container twice returns the existing handle.
func (e *Engine) Wrap(v any) any {
	if v == nil {
		return nil
	}
	switch h := v.(type) {
	case *Object, *Array, *Map, *Set:
		return h
	case Skipper:
		return h
	case map[string]any:
		return e.wrapObject(h)
	case []any:
		return e.wrapArray(h)
	case RawSet:
		return e.wrapSet(h)
	case map[any]any:
		return e.wrapMap(h)
	}
	return v
}

// Unwrap returns the raw value behind a reactive handle, or v itself when
// it is not a handle. The raw value is exclusively owned by the wrapper;
// mutating it directly bypasses change notification.
func Unwrap(v any) any {
	switch h := v.(type) {
	case *Object:
		return h.raw
	case *Array:
		return h.items
	case *Map:
		return h.raw
	case *Set:
		return h.raw
	}
	return v
}

// rawPointer gives the identity key for a raw container. Zero (nil map,
// zero-length slice) means no usable identity; such values always get a
// fresh wrapper. Zero-length slices are excluded because Go backs every
// zero-size allocation with one shared address, so their data pointers
// collide across distinct values.
func rawPointer(v any) uintptr {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return rv.Pointer()
	case reflect.Slice:
		if rv.Len() == 0 {
			return 0
		}
		return rv.Pointer()
	}
	return 0
}

func (e *Engine) lookupMeta(kind Kind, ptr uintptr) *Meta {
	if ptr == 0 {
		return nil
	}
	return e.identity[identityKey{ptr: ptr, kind: kind}]
}

func (e *Engine) storeMeta(kind Kind, ptr uintptr, m *Meta) {
	if ptr != 0 {
		e.identity[identityKey{ptr: ptr, kind: kind}] = m
	}
}

func (e *Engine) wrapObject(raw map[string]any) *Object {
	ptr := rawPointer(raw)
	if m := e.lookupMeta(KindObject, ptr); m != nil {
		return m.handle.(*Object)
	}
	m := newMeta(e, KindObject)
	o := &Object{meta: m, raw: raw}
	m.handle = o
	e.storeMeta(KindObject, ptr, m)
	return o
}

// wrapArray registers identity for the slice as provided. The wrapper owns
// the elements afterwards; growth may reallocate the backing array, so the
// identity entry only serves double-wrapping of the original value.
func (e *Engine) wrapArray(raw []any) *Array {
	ptr := rawPointer(raw)
	if m := e.lookupMeta(KindArray, ptr); m != nil {
		return m.handle.(*Array)
	}
	m := newMeta(e, KindArray)
	a := &Array{meta: m, items: raw}
	m.handle = a
	e.storeMeta(KindArray, ptr, m)
	return a
}

func (e *Engine) wrapMap(raw map[any]any) *Map {
	ptr := rawPointer(raw)
	if m := e.lookupMeta(KindMap, ptr); m != nil {
		return m.handle.(*Map)
	}
	m := newMeta(e, KindMap)
	w := &Map{meta: m, raw: raw}
	m.handle = w
	e.storeMeta(KindMap, ptr, m)
	return w
}

func (e *Engine) wrapSet(raw RawSet) *Set {
	ptr := rawPointer(raw)
	if m := e.lookupMeta(KindSet, ptr); m != nil {
		return m.handle.(*Set)
	}
	m := newMeta(e, KindSet)
	w := &Set{meta: m, raw: raw}
	m.handle = w
	e.storeMeta(KindSet, ptr, m)
	return w
}

// identityEqual implements the write comparison: pointer identity for
// containers/funcs/channels, == for comparable scalars. Never deep
// equality; replacing a map with an equal-but-distinct map is a change.
func identityEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if ra.Kind() != rb.Kind() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		// Zero-length slices have no distinguishable identity (shared
		// zero-size allocation); treat them as always distinct so a
		// replacement is never swallowed as a no-op.
		if ra.Len() == 0 && rb.Len() == 0 {
			return false
		}
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if ra.Type() != rb.Type() || !ra.Type().Comparable() {
		return false
	}
	return a == b
}

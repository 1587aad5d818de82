package reactive

// Kind is the closed set of container kinds the engine understands.
// Dispatch on container behavior is by wrapper type; Kind is carried for
// identity-table bookkeeping and diagnostics.
type Kind uint8

const (
	KindObject Kind = iota + 1
	KindArray
	KindMap
	KindSet
	KindDerived
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	case KindDerived:
		return "derived"
	default:
		return "unknown"
	}
}

// Meta is the out-of-band record pairing a wrapped value with its reactive
// bookkeeping. Exactly one Meta exists per raw value for the lifetime of
// that value; re-wrapping returns the existing handle.
type Meta struct {
	id     uint64
	engine *Engine
	kind   Kind

	// handle is the wrapper returned to callers.
	handle any

	// deps maps tracked keys to their subscribed effects.
	deps map[Key]*depSet

	// arrayIndexSeen records whether any numeric-index dependency was ever
	// tracked. Reordering array methods only re-trigger index keys when an
	// index was actually read at some point.
	arrayIndexSeen bool

	// version is bumped on every structural mutation. Deep-watch snapshots
	// could use it to skip clone work; see DESIGN.md for why structural
	// sharing is currently not implemented.
	version uint64
}

func newMeta(e *Engine, kind Kind) *Meta {
	return &Meta{
		id:     e.nextID(),
		engine: e,
		kind:   kind,
		deps:   make(map[Key]*depSet),
	}
}

// ID returns the unique identifier for this meta.
func (m *Meta) ID() uint64 { return m.id }

// Kind returns the container kind.
func (m *Meta) Kind() Kind { return m.kind }

// Version returns the structural mutation counter.
func (m *Meta) Version() uint64 { return m.version }

// bump records a structural mutation.
func (m *Meta) bump() { m.version++ }

// depSet holds the effects subscribed to one key, in subscription order.
// Subscriber counts per key are small, so membership checks are linear.
type depSet struct {
	effects []*Effect
}

// contains reports whether e is already subscribed.
func (d *depSet) contains(e *Effect) bool {
	for _, x := range d.effects {
		if x == e {
			return true
		}
	}
	return false
}

// add appends e. Callers check contains first.
func (d *depSet) add(e *Effect) {
	d.effects = append(d.effects, e)
}

// remove deletes e preserving subscription order.
func (d *depSet) remove(e *Effect) {
	for i, x := range d.effects {
		if x == e {
			d.effects = append(d.effects[:i], d.effects[i+1:]...)
			return
		}
	}
}

// depRef is an effect's back-reference into one dependency set. The triple
// is needed (not just the set) so cleanup can prune empty sets from the
// owning meta's deps map.
type depRef struct {
	meta *Meta
	key  Key
	set  *depSet
}

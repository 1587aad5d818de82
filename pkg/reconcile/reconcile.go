package reconcile

import "log/slog"

// Key identifies one row of a keyed list. Keys must be comparable and
// unique within one pass; duplicates are remapped to synthetic keys (see
// SyntheticKey).
type Key any

// SyntheticKey replaces the second and later occurrences of a duplicated
// key. It is deterministic per (original, occurrence), so the same
// duplicate occurrence keeps the same identity across renders and its node
// is reused instead of recreated.
type SyntheticKey struct {
	Original   Key
	Occurrence int
}

// Row pairs a rendered node with its position in the previous pass.
type Row struct {
	Node  any
	Index int
}

// State is the keyed-list bookkeeping carried between passes. It is
// replaced wholesale by each Reconcile call.
type State struct {
	Rows map[Key]Row
	Keys []Key
}

// Callbacks connects the reconciler to the caller's node representation.
// Move places node immediately before the given sibling; a nil before
// means "at the end of the list". Move is also how freshly created nodes
// are inserted.
type Callbacks struct {
	Key    func(item any, index int) Key
	Create func(item any, index int) any
	Update func(node any, item any, index int)
	Remove func(node any)
	Move   func(node any, before any)

	// ShouldKeep, when set, re-evaluates a filter per item. Items that no
	// longer pass are treated as absent from the new sequence; their old
	// rows are removed.
	ShouldKeep func(item any, index int) bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// WithDuplicateCacheSize bounds the duplicate-key diagnostic cache.
func WithDuplicateCacheSize(n int) Option {
	return func(r *Reconciler) { r.dupSeen.max = n }
}

// Reconciler reconciles keyed lists. One Reconciler may serve many lists;
// it carries only diagnostics state, never per-list state.
type Reconciler struct {
	logger  *slog.Logger
	dupSeen dupCache
}

// New creates a Reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		logger:  slog.Default().With("component", "reconcile"),
		dupSeen: dupCache{max: defaultDupCacheSize},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile transforms the rendered list described by prev into the order
// given by items, invoking the callbacks for creations, updates, removals,
// and moves. Nodes on a longest increasing subsequence of previous
// positions are never moved.
func (r *Reconciler) Reconcile(prev State, items []any, cb Callbacks) State {
	if cb.ShouldKeep != nil {
		kept := make([]any, 0, len(items))
		for i, item := range items {
			if cb.ShouldKeep(item, i) {
				kept = append(kept, item)
			}
		}
		items = kept
	}

	n := len(items)
	newKeys := make([]Key, n)
	nodes := make([]any, n)
	oldIdx := make([]int, n)
	used := make(map[Key]bool, n)
	occurrences := make(map[Key]int, n)

	for i, item := range items {
		k := cb.Key(item, i)
		occ := occurrences[k]
		occurrences[k] = occ + 1
		if occ > 0 {
			if r.dupSeen.firstSighting(k) {
				r.logger.Warn("duplicate key in keyed list; remapping to synthetic key", "key", k)
			}
			k = SyntheticKey{Original: k, Occurrence: occ}
		}
		newKeys[i] = k

		if row, ok := prev.Rows[k]; ok {
			nodes[i] = row.Node
			oldIdx[i] = row.Index
			used[k] = true
			if cb.Update != nil {
				cb.Update(row.Node, item, i)
			}
		} else {
			nodes[i] = cb.Create(item, i)
			oldIdx[i] = -1
		}
	}

	// Old rows not matched by any new item are removed, in old order.
	for _, k := range prev.Keys {
		if used[k] {
			continue
		}
		if row, ok := prev.Rows[k]; ok && cb.Remove != nil {
			cb.Remove(row.Node)
		}
	}

	// Nodes on the LIS of old positions are already in correct relative
	// order. Walk the new sequence backward, inserting every other node
	// before the nearest already-positioned sibling.
	stable := lisPositions(oldIdx)
	var next any
	for i := n - 1; i >= 0; i-- {
		if oldIdx[i] != -1 && stable[i] {
			next = nodes[i]
			continue
		}
		cb.Move(nodes[i], next)
		next = nodes[i]
	}

	rows := make(map[Key]Row, n)
	for i, k := range newKeys {
		rows[k] = Row{Node: nodes[i], Index: i}
	}
	return State{Rows: rows, Keys: newKeys}
}

const defaultDupCacheSize = 1024

// dupCache remembers which duplicated keys were already reported so a
// duplicate-key list doesn't warn on every render. FIFO-bounded.
type dupCache struct {
	max     int
	entries map[Key]struct{}
	order   []Key
}

// firstSighting records k and reports whether it was previously unknown.
func (c *dupCache) firstSighting(k Key) bool {
	if c.entries == nil {
		c.entries = make(map[Key]struct{})
	}
	if _, ok := c.entries[k]; ok {
		return false
	}
	c.entries[k] = struct{}{}
	c.order = append(c.order, k)
	if c.max > 0 && len(c.order) > c.max {
		evict := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, evict)
	}
	return true
}

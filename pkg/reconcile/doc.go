// Package reconcile updates an ordered, keyed sequence of rendered nodes
// to match a new data sequence with minimal structural changes.
//
// Matching is by caller-supplied key. Nodes whose relative order is
// already correct are identified via a longest increasing subsequence of
// their previous positions and left untouched; only the remaining nodes
// are moved, and only unmatched nodes are created or removed.
//
//	state = reconcile.State{}
//	state = r.Reconcile(state, items, reconcile.Callbacks{
//	    Key:    func(item any, i int) reconcile.Key { return item.(Todo).ID },
//	    Create: func(item any, i int) any { return newNode(item) },
//	    Update: func(node, item any, i int) { node.(*Node).Apply(item) },
//	    Remove: func(node any) { node.(*Node).Detach() },
//	    Move:   func(node, before any) { insertBefore(node, before) },
//	})
//
// The returned State must be passed to the next call for the same list.
package reconcile

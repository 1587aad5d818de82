package reactive

// deepClone snapshots a value graph for deep-watch comparison. It is an
// iterative two-pass clone: pass one discovers every reachable container
// and allocates an empty shell for it, pass two back-fills shell contents,
// substituting child containers with their shells. Identity memoization
// makes cycles terminate and preserves aliasing, and the absence of
// recursion keeps depth unbounded by the call stack.
func deepClone(root any) any {
	root = Unwrap(root)
	if !isRawContainer(root) {
		return root
	}

	shells := make(map[uintptr]any)
	var rawOrder []any
	var shellOrder []any

	// Pass 1: discover containers, allocate shells.
	stack := []any{root}
	for len(stack) > 0 {
		raw := Unwrap(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		if !isRawContainer(raw) {
			continue
		}
		ptr := rawPointer(raw)
		if ptr != 0 {
			if _, seen := shells[ptr]; seen {
				continue
			}
		}
		shell := newShell(raw)
		if ptr != 0 {
			shells[ptr] = shell
		}
		rawOrder = append(rawOrder, raw)
		shellOrder = append(shellOrder, shell)

		switch c := raw.(type) {
		case map[string]any:
			for _, v := range c {
				stack = append(stack, v)
			}
		case []any:
			for _, v := range c {
				stack = append(stack, v)
			}
		case map[any]any:
			for _, v := range c {
				stack = append(stack, v)
			}
		}
	}

	resolve := func(v any) any {
		v = Unwrap(v)
		if !isRawContainer(v) {
			return v
		}
		ptr := rawPointer(v)
		if ptr != 0 {
			if shell, ok := shells[ptr]; ok {
				return shell
			}
		}
		// Identity-less containers are empty; a fresh shell is complete.
		return newShell(v)
	}

	// Pass 2: fill shells.
	for i, raw := range rawOrder {
		switch c := raw.(type) {
		case map[string]any:
			shell := shellOrder[i].(map[string]any)
			for k, v := range c {
				shell[k] = resolve(v)
			}
		case []any:
			shell := shellOrder[i].([]any)
			for j, v := range c {
				shell[j] = resolve(v)
			}
		case map[any]any:
			shell := shellOrder[i].(map[any]any)
			for k, v := range c {
				shell[k] = resolve(v)
			}
		case RawSet:
			shell := shellOrder[i].(RawSet)
			for v := range c {
				shell[v] = struct{}{}
			}
		}
	}

	return resolve(root)
}

func isRawContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any, map[any]any, RawSet:
		return true
	}
	return false
}

func newShell(raw any) any {
	switch c := raw.(type) {
	case map[string]any:
		return make(map[string]any, len(c))
	case []any:
		return make([]any, len(c))
	case RawSet:
		return make(RawSet, len(c))
	case map[any]any:
		return make(map[any]any, len(c))
	}
	return nil
}

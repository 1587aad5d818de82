package reactive

import "sync/atomic"

// Scope is an ownership boundary for reactive primitives. Effects created
// while a scope is current belong to it and are killed when the scope is
// disposed. Scopes form a hierarchy mirroring the component tree, and each
// scope may carry CatchError handlers consulted nearest-first when an
// effect in the subtree fails.
type Scope struct {
	id     uint64
	engine *Engine
	parent *Scope

	children []*Scope
	effects  []*Effect
	cleanups []func()
	handlers []func(error) bool

	disposed atomic.Bool
}

func newScope(e *Engine, parent *Scope) *Scope {
	s := &Scope{
		id:     e.nextID(),
		engine: e,
		parent: parent,
	}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

// NewScope creates a child scope. A nil parent attaches to the root scope.
func (e *Engine) NewScope(parent *Scope) *Scope {
	if parent == nil {
		parent = e.root
	}
	return newScope(e, parent)
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 { return s.id }

// Parent returns the parent scope, or nil for the root.
func (s *Scope) Parent() *Scope { return s.parent }

// IsDisposed reports whether Dispose has run.
func (s *Scope) IsDisposed() bool { return s.disposed.Load() }

// Run invokes fn with this scope installed as the engine's current scope,
// so effects created inside belong to it.
func (s *Scope) Run(fn func()) {
	prev := s.engine.scope
	s.engine.scope = s
	defer func() { s.engine.scope = prev }()
	fn()
}

// CatchError registers an error handler for failures raised by effects in
// this scope's subtree. Returning true stops propagation; false passes the
// error to the next enclosing scope, then the engine handler, then the
// default diagnostic log.
func (s *Scope) CatchError(fn func(error) bool) {
	s.handlers = append(s.handlers, fn)
}

// OnCleanup registers fn to run when the scope is disposed. If the scope
// is already disposed, fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed.Load() {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

func (s *Scope) registerEffect(ef *Effect) {
	if s.disposed.Load() {
		return
	}
	s.effects = append(s.effects, ef)
}

// handle runs this scope's handlers in registration order.
func (s *Scope) handle(err error) bool {
	for _, h := range s.handlers {
		if h(err) {
			return true
		}
	}
	return false
}

// Dispose tears down the scope: children first (in reverse creation
// order), then effects, then cleanups in reverse order. Idempotent.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}
	if s.parent != nil {
		s.parent.removeChild(s)
	}

	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	effects := s.effects
	s.effects = nil
	for _, ef := range effects {
		ef.Kill()
	}

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func (s *Scope) removeChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

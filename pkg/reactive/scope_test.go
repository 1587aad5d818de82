package reactive

import (
	"errors"
	"testing"
)

func TestScopeDisposeKillsEffects(t *testing.T) {
	e := New()
	o := e.Wrap(map[string]any{"n": 0}).(*Object)

	runs := 0
	scope := e.NewScope(nil)
	scope.Run(func() {
		e.CreateEffect(func() {
			runs++
			_ = o.Get("n")
		})
	})

	scope.Dispose()
	o.Set("n", 1)
	if runs != 1 {
		t.Errorf("effects of a disposed scope must not re-run, got %d", runs)
	}
	if !scope.IsDisposed() {
		t.Error("expected scope to report disposed")
	}
}

func TestScopeDisposeIsIdempotent(t *testing.T) {
	e := New()
	cleanups := 0
	scope := e.NewScope(nil)
	scope.OnCleanup(func() { cleanups++ })

	scope.Dispose()
	scope.Dispose()
	if cleanups != 1 {
		t.Errorf("expected cleanups to run once, got %d", cleanups)
	}
}

func TestScopeCleanupOrder(t *testing.T) {
	e := New()
	var log []string

	parent := e.NewScope(nil)
	parent.OnCleanup(func() { log = append(log, "parent-1") })
	parent.OnCleanup(func() { log = append(log, "parent-2") })

	child := e.NewScope(parent)
	child.OnCleanup(func() { log = append(log, "child") })

	parent.Dispose()

	// Children dispose before the parent's own cleanups; cleanups run in
	// reverse registration order.
	want := []string{"child", "parent-2", "parent-1"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, log)
		}
	}
}

func TestScopeOnCleanupAfterDisposeRunsImmediately(t *testing.T) {
	e := New()
	scope := e.NewScope(nil)
	scope.Dispose()

	ran := false
	scope.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("cleanup registered after dispose must run immediately")
	}
}

func TestScopeErrorHandlerChain(t *testing.T) {
	e := New()
	errBoom := errors.New("boom")

	var order []string
	parent := e.NewScope(nil)
	parent.CatchError(func(err error) bool {
		order = append(order, "parent")
		return true
	})
	child := e.NewScope(parent)
	child.CatchError(func(err error) bool {
		order = append(order, "child")
		return false // pass upward
	})

	var inner *Scope
	parent.Run(func() {
		child.Run(func() {
			inner = child
		})
	})
	e.reportError(inner, errBoom)

	want := []string{"child", "parent"}
	if len(order) != len(want) || order[0] != "child" || order[1] != "parent" {
		t.Errorf("expected nearest-first handler order %v, got %v", want, order)
	}
}

func TestScopeHandlerStopsPropagation(t *testing.T) {
	globalCalled := false
	e := New(WithErrorHandler(func(err error) bool {
		globalCalled = true
		return true
	}))

	scope := e.NewScope(nil)
	scope.CatchError(func(err error) bool { return true })

	scope.Run(func() {
		e.CreateEffect(func() { panic("contained") })
	})

	if globalCalled {
		t.Error("a handled error must not reach the engine handler")
	}
}

func TestEngineHandlerAsFallback(t *testing.T) {
	var caught error
	e := New(WithErrorHandler(func(err error) bool {
		caught = err
		return true
	}))

	e.CreateEffect(func() { panic("uncontained") })
	if caught == nil {
		t.Error("expected the engine handler to receive the error")
	}
}

func TestNestedScopeOwnership(t *testing.T) {
	e := New()
	o := e.Wrap(map[string]any{"n": 0}).(*Object)

	outerRuns, innerRuns := 0, 0
	outer := e.NewScope(nil)
	var inner *Scope
	outer.Run(func() {
		e.CreateEffect(func() {
			outerRuns++
			_ = o.Get("n")
		})
		inner = e.NewScope(outer)
		inner.Run(func() {
			e.CreateEffect(func() {
				innerRuns++
				_ = o.Get("n")
			})
		})
	})

	// Disposing the inner scope leaves the outer effect alive.
	inner.Dispose()
	o.Set("n", 1)
	if innerRuns != 1 {
		t.Errorf("inner effect should be dead, got %d runs", innerRuns)
	}
	if outerRuns != 2 {
		t.Errorf("outer effect should survive, got %d runs", outerRuns)
	}
}

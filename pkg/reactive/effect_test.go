package reactive

import "testing"

func TestEffectRunsImmediately(t *testing.T) {
	e := New()
	runs := 0
	e.CreateEffect(func() { runs++ })
	if runs != 1 {
		t.Errorf("expected immediate run, got %d", runs)
	}
}

func TestEffectLazy(t *testing.T) {
	e := New()
	runs := 0
	ef := e.CreateEffect(func() { runs++ }, Lazy())
	if runs != 0 {
		t.Errorf("lazy effect should not run at creation, got %d runs", runs)
	}
	ef.Run()
	if runs != 1 {
		t.Errorf("expected 1 run after explicit Run, got %d", runs)
	}
}

func TestEffectConditionalReadCleanup(t *testing.T) {
	e := New()
	o := e.Wrap(map[string]any{"useA": true, "a": 1, "b": 2}).(*Object)

	runs := 0
	e.CreateEffect(func() {
		runs++
		if o.Get("useA") == true {
			_ = o.Get("a")
		} else {
			_ = o.Get("b")
		}
	})
	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	// While the a-branch is live, b is not a dependency.
	o.Set("b", 20)
	if runs != 1 {
		t.Errorf("untaken branch should not notify, got %d runs", runs)
	}

	// Switch branches; now a must stop notifying and b must start.
	o.Set("useA", false)
	if runs != 2 {
		t.Fatalf("expected re-run on branch switch, got %d", runs)
	}
	o.Set("a", 10)
	if runs != 2 {
		t.Errorf("stale branch should not notify after switch, got %d runs", runs)
	}
	o.Set("b", 30)
	if runs != 3 {
		t.Errorf("live branch should notify, got %d runs", runs)
	}
}

func TestEffectKill(t *testing.T) {
	e := New()
	o := e.Wrap(map[string]any{"n": 1}).(*Object)

	runs := 0
	ef := e.CreateEffect(func() {
		runs++
		_ = o.Get("n")
	})

	ef.Kill()
	if ef.Active() {
		t.Error("expected effect inactive after Kill")
	}
	o.Set("n", 2)
	if runs != 1 {
		t.Errorf("killed effect should not re-run, got %d runs", runs)
	}

	// Kill is idempotent and Run on a dead effect is a no-op.
	ef.Kill()
	ef.Run()
	if runs != 1 {
		t.Errorf("dead effect should not run, got %d runs", runs)
	}
}

func TestEffectKillPrunesDependencySets(t *testing.T) {
	e := New()
	o := e.Wrap(map[string]any{"n": 1}).(*Object)

	ef := e.CreateEffect(func() {
		_ = o.Get("n")
	})
	if len(o.meta.deps) == 0 {
		t.Fatal("expected a dependency set after tracking")
	}

	ef.Kill()
	if len(o.meta.deps) != 0 {
		t.Errorf("expected empty dependency sets to be pruned, got %d", len(o.meta.deps))
	}
}

func TestEffectSelfWriteDoesNotRecurse(t *testing.T) {
	e := New()
	o := e.Wrap(map[string]any{"n": 0}).(*Object)

	runs := 0
	e.CreateEffect(func() {
		runs++
		n := o.Get("n").(int)
		o.Set("n", n+1)
	})

	// The effect writes its own dependency; the running flag suppresses the
	// self-trigger instead of recursing.
	if runs != 1 {
		t.Errorf("expected exactly 1 run, got %d", runs)
	}
	if got := o.Get("n"); got != 1 {
		t.Errorf("expected n=1, got %v", got)
	}
}

func TestUntrackedReadDoesNotSubscribe(t *testing.T) {
	e := New()
	o := e.Wrap(map[string]any{"n": 1}).(*Object)

	runs := 0
	e.CreateEffect(func() {
		runs++
		e.Untracked(func() {
			_ = o.Get("n")
		})
	})

	o.Set("n", 2)
	if runs != 1 {
		t.Errorf("untracked read should not subscribe, got %d runs", runs)
	}
}

func TestEffectPanicReported(t *testing.T) {
	e := New()
	var caught error
	scope := e.NewScope(nil)
	scope.CatchError(func(err error) bool {
		caught = err
		return true
	})

	scope.Run(func() {
		e.CreateEffect(func() {
			panic("boom")
		})
	})

	if caught == nil {
		t.Fatal("expected panic to reach the scope handler")
	}
}

func TestActiveEffectsStat(t *testing.T) {
	e := New()
	ef1 := e.CreateEffect(func() {})
	ef2 := e.CreateEffect(func() {})
	if got := e.Stats().ActiveEffects; got != 2 {
		t.Errorf("expected 2 active effects, got %d", got)
	}
	ef1.Kill()
	ef2.Kill()
	if got := e.Stats().ActiveEffects; got != 0 {
		t.Errorf("expected 0 active effects, got %d", got)
	}
}

package reactive

import "testing"

func TestMapKeyIsolation(t *testing.T) {
	e := New()
	m := e.Wrap(map[any]any{1: "one", 2: "two"}).(*Map)

	runs1, runs2 := 0, 0
	e.CreateEffect(func() {
		runs1++
		_ = m.Get(1)
	})
	e.CreateEffect(func() {
		runs2++
		_ = m.Get(2)
	})

	m.Set(1, "uno")
	if runs1 != 2 {
		t.Errorf("expected key-1 reader to re-run, got %d", runs1)
	}
	if runs2 != 1 {
		t.Errorf("key-2 reader should not re-run, got %d", runs2)
	}
}

func TestMapNewKeyNotifiesIteration(t *testing.T) {
	e := New()
	m := e.Wrap(map[any]any{"a": 1}).(*Map)

	lenRuns := 0
	e.CreateEffect(func() {
		lenRuns++
		_ = m.Len()
	})

	m.Set("a", 2)
	if lenRuns != 1 {
		t.Errorf("overwrite should not notify iteration readers, got %d runs", lenRuns)
	}
	m.Set("b", 3)
	if lenRuns != 2 {
		t.Errorf("new key should notify iteration readers, got %d runs", lenRuns)
	}
	m.Delete("a")
	if lenRuns != 3 {
		t.Errorf("delete should notify iteration readers, got %d runs", lenRuns)
	}
	m.Delete("a")
	if lenRuns != 3 {
		t.Errorf("deleting absent key should not notify, got %d runs", lenRuns)
	}
}

func TestMapClearNotifiesEveryKey(t *testing.T) {
	e := New()
	m := e.Wrap(map[any]any{"a": 1, "b": 2}).(*Map)

	aRuns, bRuns := 0, 0
	e.CreateEffect(func() {
		aRuns++
		_ = m.Get("a")
	})
	e.CreateEffect(func() {
		bRuns++
		_ = m.Get("b")
	})

	m.Clear()
	if aRuns != 2 || bRuns != 2 {
		t.Errorf("clear should re-run every key reader, got %d and %d", aRuns, bRuns)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty map, got %d entries", m.Len())
	}

	// Clearing an empty map is a no-op.
	m.Clear()
	if aRuns != 2 || bRuns != 2 {
		t.Errorf("clearing empty map should not notify, got %d and %d", aRuns, bRuns)
	}
}

func TestMapStructKeys(t *testing.T) {
	type point struct{ X, Y int }
	e := New()
	m := e.Wrap(map[any]any{}).(*Map)

	runs := 0
	var v any
	e.CreateEffect(func() {
		runs++
		v = m.Get(point{1, 2})
	})
	if v != nil {
		t.Errorf("expected nil before write, got %v", v)
	}

	m.Set(point{1, 2}, "origin-ish")
	if runs != 2 {
		t.Errorf("expected reader to re-run for its struct key, got %d runs", runs)
	}
	if v != "origin-ish" {
		t.Errorf("expected value after write, got %v", v)
	}

	// A different struct key is a different slot; this reader only tracks
	// its own key, not iteration.
	m.Set(point{3, 4}, "elsewhere")
	if runs != 2 {
		t.Errorf("unrelated struct key should not re-run the reader, got %d runs", runs)
	}
}

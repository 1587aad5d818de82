package reactive

import "testing"

func TestBatchCoalescesWrites(t *testing.T) {
	e := New()
	o := e.Wrap(map[string]any{"first": "", "last": ""}).(*Object)

	runs := 0
	var full string
	e.CreateEffect(func() {
		runs++
		full = o.Get("first").(string) + " " + o.Get("last").(string)
	})

	e.Batch(func() {
		o.Set("first", "Ada")
		o.Set("last", "Lovelace")
	})

	// One re-run for both writes, observing the final state.
	if runs != 2 {
		t.Errorf("expected a single re-run for the batch, got %d total runs", runs)
	}
	if full != "Ada Lovelace" {
		t.Errorf("expected final state, got %q", full)
	}
}

func TestBatchNesting(t *testing.T) {
	e := New()
	o := e.Wrap(map[string]any{"n": 0}).(*Object)

	runs := 0
	e.CreateEffect(func() {
		runs++
		_ = o.Get("n")
	})

	e.Batch(func() {
		o.Set("n", 1)
		e.Batch(func() {
			o.Set("n", 2)
		})
		// The inner batch exit must not flush; only the outermost does.
		if runs != 1 {
			t.Errorf("inner batch exit flushed early, got %d runs", runs)
		}
		o.Set("n", 3)
	})

	if runs != 2 {
		t.Errorf("expected one re-run after outermost exit, got %d", runs)
	}
	if got := o.Get("n"); got != 3 {
		t.Errorf("expected n=3, got %v", got)
	}
}

func TestBatchDeduplicatesKeyTriggers(t *testing.T) {
	e := New()
	o := e.Wrap(map[string]any{"n": 0}).(*Object)

	runs := 0
	e.CreateEffect(func() {
		runs++
		_ = o.Get("n")
	})

	e.Batch(func() {
		for i := 1; i <= 10; i++ {
			o.Set("n", i)
		}
	})
	if runs != 2 {
		t.Errorf("ten writes to one key should coalesce to one re-run, got %d total", runs)
	}
}

func TestBatchWriteThenReadSeesNewValue(t *testing.T) {
	e := New()
	o := e.Wrap(map[string]any{"n": 1}).(*Object)

	e.Batch(func() {
		o.Set("n", 2)
		// Reads inside the batch see the written value immediately even
		// though notification is deferred.
		if got := o.Get("n"); got != 2 {
			t.Errorf("expected in-batch read to see 2, got %v", got)
		}
	})
}

func TestBatchPanicInTriggerIsolated(t *testing.T) {
	e := New()
	o := e.Wrap(map[string]any{"a": 0, "b": 0}).(*Object)

	var handled error
	scope := e.NewScope(nil)
	scope.CatchError(func(err error) bool {
		handled = err
		return true
	})

	bRuns := 0
	scope.Run(func() {
		e.CreateEffect(func() {
			if o.Get("a").(int) > 0 {
				panic("a reader exploded")
			}
		})
		e.CreateEffect(func() {
			bRuns++
			_ = o.Get("b")
		})
	})

	e.Batch(func() {
		o.Set("a", 1)
		o.Set("b", 1)
	})

	// The panicking reader must not prevent the b reader from running.
	if bRuns != 2 {
		t.Errorf("expected b reader to survive sibling panic, got %d runs", bRuns)
	}
	if handled == nil {
		t.Error("expected the panic to reach the scope handler")
	}
}

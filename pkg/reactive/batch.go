package reactive

import "context"

// Batch groups writes so triggers are deferred, deduplicated, and flushed
// once when the outermost batch exits. Batches nest via a depth counter: a
// write inside a batch never synchronously re-runs a reader inside the
// same batch.
//
//	eng.Batch(func() {
//	    profile.Set("first", "Ada")
//	    profile.Set("last", "Lovelace")
//	})
//	// subscribers notified once
func (e *Engine) Batch(fn func()) {
	outermost := e.batchDepth == 0
	if outermost && e.tracer != nil {
		_, span := e.tracer.Start(context.Background(), "reflow.batch")
		defer span.End()
	}

	e.batchDepth++
	defer func() {
		e.batchDepth--
		if e.batchDepth == 0 {
			e.flushPendingTriggers()
			e.publish(Event{Kind: EventBatch})
		}
	}()
	fn()
}

// Untracked runs fn with dependency tracking suppressed: container reads
// inside do not subscribe the current effect.
func (e *Engine) Untracked(fn func()) {
	prev := e.listener
	e.listener = nil
	defer func() { e.listener = prev }()
	fn()
}

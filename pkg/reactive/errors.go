package reactive

import "errors"

// ErrCircularUpdate is the fatal scheduler error raised when the job queue
// fails to drain within the configured number of flush passes. It almost
// always means a cycle: an effect (directly or through a computed chain)
// re-triggers a key it depends on.
//
// The flush is aborted, all queues are cleared, and the next NextTick
// surfaces this error.
var ErrCircularUpdate = errors.New("reflow: update queue did not settle; circular effect dependency suspected")

// ErrFlushDeadline is the fatal scheduler error raised when one logical
// batch, spanning all cooperative yields, exceeds the flush deadline. It
// catches slow infinite loops that reset the pass counter on every yield.
var ErrFlushDeadline = errors.New("reflow: flush deadline exceeded")

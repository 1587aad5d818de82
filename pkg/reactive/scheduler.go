package reactive

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultSliceBudget = 5 * time.Millisecond
	defaultDeadline    = 10 * time.Second
	defaultMaxPasses   = 100
)

// Deferral decides where time-sliced flush continuations run. The default
// parks them on an engine-owned queue drained by NextTick (a simple loop
// continuation). Integrations with a host event loop can post to their own
// scheduler instead; the continuation must then execute on the engine's
// goroutine.
type Deferral interface {
	PostDeferred(fn func())
}

// loopDeferral is the default Deferral: a FIFO of continuations the engine
// drains itself.
type loopDeferral struct {
	mu  sync.Mutex
	fns []func()
}

func (d *loopDeferral) PostDeferred(fn func()) {
	d.mu.Lock()
	d.fns = append(d.fns, fn)
	d.mu.Unlock()
}

func (d *loopDeferral) pop() func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.fns) == 0 {
		return nil
	}
	fn := d.fns[0]
	d.fns = d.fns[1:]
	return fn
}

func (d *loopDeferral) pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.fns) > 0
}

// scheduler runs queued effects. Two buffers alternate per flush pass so a
// trigger landing mid-pass goes to the other buffer and runs in a later
// pass, never interleaved with the pass in progress.
type scheduler struct {
	engine   *Engine
	deferral Deferral

	sliceBudget time.Duration
	deadline    time.Duration
	maxPasses   int

	bufs   [2][]*Effect
	active int

	flushing    bool
	suspendKick bool

	// passes counts flush passes since the last drain (or yield; legitimate
	// large batches that yield must not trip the circular guard).
	passes int

	// started anchors the wall-clock deadline for one logical batch,
	// spanning all cooperative yields.
	started        time.Time
	deadlineActive bool

	// drainErr is the first job or fatal error since the last NextTick.
	drainErr error

	mu       sync.Mutex
	cond     *sync.Cond
	inFlight int
}

func newScheduler(e *Engine) *scheduler {
	s := &scheduler{
		engine:      e,
		deferral:    &loopDeferral{},
		sliceBudget: defaultSliceBudget,
		deadline:    defaultDeadline,
		maxPasses:   defaultMaxPasses,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// enqueue adds ef to the active buffer. The queued flag dedupes repeated
// triggers within one tick to a single entry.
func (s *scheduler) enqueue(ef *Effect) {
	if !ef.queued.CompareAndSwap(false, true) {
		return
	}
	s.bufs[s.active] = append(s.bufs[s.active], ef)
	depth := s.engine.statQueueDepth.Add(1)
	s.engine.metrics.setQueueDepth(depth)
}

// kick starts a flush unless one is running, a batch is open, or kicks are
// suspended while pending triggers drain.
func (s *scheduler) kick() {
	if s.suspendKick || s.flushing || s.engine.batchDepth > 0 {
		return
	}
	if len(s.bufs[s.active]) == 0 {
		return
	}
	s.flush()
}

// flush drains the job queue. Guards: maxPasses flush passes without the
// queue draining aborts with ErrCircularUpdate; exceeding the wall-clock
// deadline for the logical batch aborts with ErrFlushDeadline. Jobs past
// the slice budget are deferred so the host thread can breathe.
func (s *scheduler) flush() {
	if s.flushing {
		return
	}
	s.flushing = true
	defer func() { s.flushing = false }()

	if !s.deadlineActive {
		s.deadlineActive = true
		s.started = time.Now()
		s.passes = 0
	}

	var span trace.Span
	if s.engine.tracer != nil {
		_, span = s.engine.tracer.Start(context.Background(), "reflow.flush")
		defer span.End()
	}

	flushStart := time.Now()
	jobsRun := 0
	yielded := false
	aborted := false

	for {
		buf := s.bufs[s.active]
		if len(buf) == 0 {
			break
		}
		if s.passes >= s.maxPasses {
			s.fatal(ErrCircularUpdate, span)
			aborted = true
			break
		}
		if time.Since(s.started) > s.deadline {
			s.fatal(ErrFlushDeadline, span)
			aborted = true
			break
		}

		s.passes++
		s.engine.statFlushPasses.Add(1)
		s.engine.metrics.incFlushPasses()

		// Swap buffers before executing so mid-pass triggers land in the
		// other buffer.
		s.active ^= 1

		sliceStart := time.Now()
		for i := 0; i < len(buf); i++ {
			job := buf[i]
			depth := s.engine.statQueueDepth.Add(-1)
			s.engine.metrics.setQueueDepth(depth)
			// Killed effects are filtered here even if still queued.
			if job.active.Load() && job.queued.Load() {
				job.Run()
				jobsRun++
			}
			if s.sliceBudget > 0 && i+1 < len(buf) && time.Since(sliceStart) > s.sliceBudget {
				rest := make([]*Effect, len(buf)-i-1)
				copy(rest, buf[i+1:])
				s.yieldRemainder(rest)
				yielded = true
				break
			}
		}

		consumed := s.active ^ 1
		for i := range s.bufs[consumed] {
			s.bufs[consumed][i] = nil
		}
		s.bufs[consumed] = s.bufs[consumed][:0]

		if yielded {
			break
		}
	}

	if span != nil {
		span.SetAttributes(
			attribute.Int("reflow.jobs", jobsRun),
			attribute.Int("reflow.passes", s.passes),
			attribute.Bool("reflow.yielded", yielded),
		)
	}

	if aborted {
		// fatal already published the event and cleared state; a success
		// flush event here would mask the abort for sinks.
		s.notifyIdle()
		return
	}
	if yielded {
		// Deadline stays anchored: the logical batch is not finished.
		return
	}

	s.deadlineActive = false
	s.engine.metrics.observeFlushDuration(time.Since(flushStart).Seconds())
	s.engine.publish(Event{Kind: EventFlush, Jobs: jobsRun, Passes: s.passes})
	s.notifyIdle()
}

// yieldRemainder defers the unprocessed tail of the current pass. The pass
// counter resets per yield so cooperative slicing of a large batch is not
// mistaken for a circular dependency.
func (s *scheduler) yieldRemainder(rest []*Effect) {
	s.passes = 0
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()

	s.deferral.PostDeferred(func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
		s.bufs[s.active] = append(rest, s.bufs[s.active]...)
		s.kick()
		s.notifyIdle()
	})
}

// fatal aborts the flush: all queues and pending triggers are cleared so
// corrupted state cannot cascade, the error is reported through the
// handler chain, and NextTick will surface it.
func (s *scheduler) fatal(err error, span trace.Span) {
	for b := range s.bufs {
		for i, ef := range s.bufs[b] {
			if ef != nil {
				ef.queued.Store(false)
			}
			s.bufs[b][i] = nil
		}
		s.bufs[b] = s.bufs[b][:0]
	}
	s.engine.statQueueDepth.Store(0)
	s.engine.metrics.setQueueDepth(0)
	s.engine.clearPending()
	s.deadlineActive = false

	if s.drainErr == nil {
		s.drainErr = err
	}
	s.engine.statFlushAborts.Add(1)
	reason := "circular"
	if errors.Is(err, ErrFlushDeadline) {
		reason = "deadline"
	}
	s.engine.metrics.incFlushAborts(reason)
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.engine.publish(Event{Kind: EventFatal, Error: err.Error()})
	s.engine.reportError(nil, err)
}

// noteJobError records the first failing job of the current drain.
func (s *scheduler) noteJobError(err error) {
	if s.flushing && s.drainErr == nil {
		s.drainErr = err
	}
}

func (s *scheduler) idle() bool {
	s.mu.Lock()
	inFlight := s.inFlight
	s.mu.Unlock()
	if inFlight > 0 {
		return false
	}
	if len(s.bufs[0]) > 0 || len(s.bufs[1]) > 0 {
		return false
	}
	if ld, ok := s.deferral.(*loopDeferral); ok && ld.pending() {
		return false
	}
	return true
}

func (s *scheduler) waitInFlight() {
	s.mu.Lock()
	for s.inFlight > 0 {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

func (s *scheduler) notifyIdle() {
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}

// drain runs all queued work, including deferred time-sliced
// continuations, to completion. Returns the first error recorded since the
// previous drain and clears it.
func (s *scheduler) drain() error {
	for {
		if ld, ok := s.deferral.(*loopDeferral); ok {
			for {
				fn := ld.pop()
				if fn == nil {
					break
				}
				fn()
			}
		} else {
			s.waitInFlight()
		}
		s.kick()
		if s.idle() {
			break
		}
	}
	err := s.drainErr
	s.drainErr = nil
	return err
}

// NextTick completes once all queued work, including deferred time-sliced
// continuations, has fully drained.
//
// With no callback it returns the first error any job raised during the
// drain (including errors from flushes since the previous NextTick), so
// callers cannot proceed against state left inconsistent by a failed
// update. With a callback it always returns nil and passes that error (or
// nil) to the callback instead.
func (e *Engine) NextTick(cbs ...func(error)) error {
	err := e.sched.drain()
	if len(cbs) > 0 && cbs[0] != nil {
		cbs[0](err)
		return nil
	}
	return err
}

package kernel

// Semaphore is a counting semaphore bounded by Max, with a strictly FIFO
// wait queue (ref §3.4, §4.5.1). All operations run in thread context.
//
// This rewrite fixes two defects flagged in the design notes (§9) against
// the source it is grounded on: release always clamps count to Max, never
// leaving it unclamped; and a release with a queued waiter hands that unit
// directly to the waiter (mirroring Mutex.Unlock's ownership handoff)
// rather than adding it to count and trusting the resumed Acquire call to
// decrement it. Acquire's blocking path has no way to recheck availability
// on resume — SuspendThread is pure scheduler bookkeeping here, not a real
// park/wake, so "resume" and "the unit I was queued for exists" happen in
// the same call on the host — so the decrement has to live on the release
// side, where a unit genuinely changing hands is actually observed.
type Semaphore struct {
	sched   *Scheduler
	port    Port
	count   uint32
	max     uint32
	waiters tcbQueue
}

// NewSemaphore constructs a counting semaphore with the given initial
// count and maximum. initial must not exceed max (ref §6.1).
func NewSemaphore(sched *Scheduler, port Port, initial, max uint32) (*Semaphore, error) {
	if initial > max {
		return nil, InvalidConfigurationError{Reason: "initial count exceeds max"}
	}
	return &Semaphore{sched: sched, port: port, count: initial, max: max}, nil
}

// NewBinarySemaphore constructs a semaphore with Max = 1 (ref §4.5.1
// "Binary specialization").
func NewBinarySemaphore(sched *Scheduler, port Port, initial uint32) (*Semaphore, error) {
	return NewSemaphore(sched, port, initial, 1)
}

// Count returns the current count, for diagnostics and tests.
func (s *Semaphore) Count() uint32 { return s.count }

// Acquire blocks until the semaphore can be decremented (ref §4.5.1).
func (s *Semaphore) Acquire() {
	cs := Enter(s.port)
	if s.count > 0 {
		s.count--
		cs.Exit()
		return
	}

	active := s.sched.ActiveTCB()
	// The wait queue's capacity equals MaxThreads, and at most one TCB per
	// registered thread can ever be enqueued at a time, so this enqueue
	// cannot fail in practice; the error is still surfaced rather than
	// ignored, per §7's "enqueue on a full wait queue is a hard error."
	if err := s.waiters.push(active); err != nil {
		cs.Exit()
		panic(err)
	}
	cs.Exit() // re-enable before yielding, per §4.5.1 step 2

	s.sched.SuspendThread()
	// Resumes here with the unit already consumed on its behalf by Release
	// or ReleaseN's handoff — see the type doc comment.
}

// TryAcquire attempts to decrement the count without blocking (ref §4.5.1).
func (s *Semaphore) TryAcquire() bool {
	cs := Enter(s.port)
	defer cs.Exit()
	if s.count > 0 {
		s.count--
		return true
	}
	return false
}

// TryAcquireFor attempts to acquire the semaphore, sleeping for the ticks
// that remain of timeoutTicks until it succeeds or the timeout elapses (ref
// §4.5.1). A
// spurious wake — the resource still unavailable, time still remaining —
// is handled by sleeping again, not by returning false early.
func (s *Semaphore) TryAcquireFor(timeoutTicks uint32) bool {
	start := s.sched.clock.GetTicks()
	for {
		cs := Enter(s.port)
		if s.count > 0 {
			s.count--
			cs.Exit()
			return true
		}
		cs.Exit()

		elapsed := s.sched.clock.GetTicks() - start
		if elapsed >= timeoutTicks {
			return false
		}
		s.sched.SleepThread(timeoutTicks - elapsed)
	}
}

// Release increments the count by 1 and wakes one waiter, if any (ref
// §4.5.1, the default delta=1 case).
func (s *Semaphore) Release() {
	s.ReleaseN(1)
}

// ReleaseN increments the count by delta, clamped at Max, and wakes one
// waiter, if any (ref §4.5.1). When a waiter is queued, one unit of delta
// is hand-delivered straight to it instead of being added to count: the
// waiter's blocked Acquire call resumes having already "received" that
// unit, so count only ever reflects units nobody is yet waiting for.
func (s *Semaphore) ReleaseN(delta uint32) {
	cs := Enter(s.port)
	defer cs.Exit()

	if delta == 0 {
		return
	}
	if tcb := s.waiters.pop(); tcb != nil {
		tcb.thread.state = StatePending
		delta--
		if delta == 0 {
			return
		}
	}

	s.count += delta
	if s.count > s.max {
		s.count = s.max
	}
}

package kernel

// Scheduler holds the TCB table and the first-fit round-robin policy that
// chooses which thread runs next (ref §3.3, §4.3). It is constructed with
// a Port and a SystemClock and never allocates after NewScheduler returns.
type Scheduler struct {
	port  Port
	clock *SystemClock

	table [MaxThreads]TCB
	count uint8

	active  *TCB
	pending *TCB
	idle    *TCB

	lastTick uint32
	locked   bool
	started  bool
}

// NewScheduler constructs an empty scheduler bound to port and clock. No
// threads are registered yet; NewThread (which registers each thread),
// SetIdleThread, and eventually Kernel.Setup complete initialization (ref
// §4.3.1).
func NewScheduler(port Port, clock *SystemClock) *Scheduler {
	return &Scheduler{port: port, clock: clock}
}

// registerThread appends thread's TCB to the table. The first registered
// thread becomes active immediately so that a scheduler with only one
// thread is already well-formed before Kernel.Setup runs (ref §4.3.1:
// "The first registered thread becomes active."). Not callable once the
// kernel has started dispatching (ref §4.3.1, §4.3.5).
func (s *Scheduler) registerThread(thread *Thread) error {
	if s.started {
		return InvalidConfigurationError{Reason: "cannot register a thread after the kernel has started dispatching"}
	}
	if int(s.count) >= len(s.table) {
		return CapacityExceededError{Resource: "TCB table", Capacity: len(s.table)}
	}

	tcb := &s.table[s.count]
	tcb.thread = thread
	tcb.savedSP = thread.savedSP
	tcb.next = nil
	if s.count > 0 {
		s.table[s.count-1].next = tcb
	}
	s.count++
	if s.count == 1 {
		s.active = tcb
	}
	return nil
}

// SetIdleThread installs the distinguished idle TCB, selected whenever no
// registered thread is runnable (ref §3.3, §4.3.2 step 4). It is kept
// outside the main table, exactly as the original keeps internal_task
// separate from task_control_blocks.
func (s *Scheduler) SetIdleThread(thread *Thread) {
	s.idle = &TCB{thread: thread, savedSP: thread.savedSP}
}

// ThreadCount returns the number of registered threads (excluding idle).
func (s *Scheduler) ThreadCount() uint8 { return s.count }

// ActiveTCB returns the currently active TCB (ref §4.3.1 get_active_tcb).
func (s *Scheduler) ActiveTCB() *TCB { return s.active }

// PendingTCB returns the TCB chosen as the next to run, read by the port's
// switch handler (ref §4.3.1 get_pending_tcb, §3.5).
func (s *Scheduler) PendingTCB() *TCB { return s.pending }

// Lock suppresses Run for the duration of a critical section wider than an
// interrupts-disabled scope permits. Ticks still accumulate; no switch
// decision is made until Unlock (ref §3.3, §4.3.1, §5).
func (s *Scheduler) Lock() {
	cs := Enter(s.port)
	defer cs.Exit()
	s.locked = true
}

// Unlock re-enables Run.
func (s *Scheduler) Unlock() {
	cs := Enter(s.port)
	defer cs.Exit()
	s.locked = false
}

// Run is the tick-driven scheduling pass (ref §4.3.2). It must be cheap:
// proportional to the number of registered threads, with no allocation.
func (s *Scheduler) Run() {
	if s.locked {
		return
	}

	now := s.clock.GetTicks()
	delta := now - s.lastTick // unsigned; correct across a single wrap (ref §4.2)
	s.lastTick = now

	for i := uint8(0); i < s.count; i++ {
		tcb := &s.table[i]
		if tcb.thread.state != StateSleeping {
			continue
		}
		tcb.remainingSleepTicks -= int32(delta)
		if tcb.remainingSleepTicks <= 0 {
			tcb.thread.state = StatePending
		}
	}

	if s.port.SwitchPending() {
		return
	}

	for i := uint8(0); i < s.count; i++ {
		tcb := &s.table[i]
		if tcb.thread.state != StatePending {
			continue
		}
		if s.active != nil && s.active != tcb {
			s.active.thread.state = StatePending
		}
		s.contextSwitchTo(tcb)
		return
	}

	if s.active == nil || s.active.thread.state != StateActive {
		s.contextSwitchTo(s.idle)
	}
}

// SleepThread puts the calling thread to sleep for ticks and yields to the
// next runnable thread (ref §4.3.1 sleep_thread, §4.3.4). A zero-tick sleep
// is a pure yield: it marks the caller Pending rather than Sleeping, since
// sleep_for(0) must not block on the clock at all (ref §8.2).
func (s *Scheduler) SleepThread(ticks uint32) {
	if ticks == 0 {
		s.active.thread.state = StatePending
		s.jumpToNextPending()
		return
	}
	s.active.remainingSleepTicks = int32(ticks)
	s.active.thread.state = StateSleeping
	s.jumpToNextPending()
}

// SuspendThread marks the calling thread Suspended and yields. Called by a
// synchronization primitive on behalf of the active thread, after the
// primitive has already enqueued its TCB on its own wait queue (ref §4.3.1
// suspend_thread, §4.5.1).
func (s *Scheduler) SuspendThread() {
	s.active.thread.state = StateSuspended
	s.jumpToNextPending()
}

// contextSwitchTo marks tcb as both pending and (immediately, in this
// rewrite's synchronous bookkeeping model) active, and asks the port to
// raise the context-switch exception (ref §4.3.3). On real hardware the
// register save/restore happens later, inside that exception; the state
// transition recorded here is what the rest of the scheduler observes.
func (s *Scheduler) contextSwitchTo(tcb *TCB) {
	s.pending = tcb
	tcb.thread.state = StateActive
	s.active = tcb
	s.port.RequestSwitch(tcb)
}

// jumpToNextPending implements the yield path shared by SleepThread and
// SuspendThread (ref §4.3.4): if a switch is already pending, the pending
// switch will pick the right successor once it runs, since the caller's
// state was just updated; otherwise scan for the first Pending TCB other
// than the caller and switch to it; failing that, switch to idle.
func (s *Scheduler) jumpToNextPending() {
	if s.port.SwitchPending() {
		return
	}
	for i := uint8(0); i < s.count; i++ {
		tcb := &s.table[i]
		if tcb.thread.state == StatePending && tcb != s.active {
			s.contextSwitchTo(tcb)
			return
		}
	}
	s.contextSwitchTo(s.idle)
}

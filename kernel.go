package kernel

// Kernel ties the scheduler, system clock, and port together and exposes
// the top-level boot sequence named in §4.4.4-§4.4.5 and §6.1.
type Kernel struct {
	Scheduler *Scheduler
	Clock     *SystemClock
	port      Port
}

// New constructs a Kernel bound to port. Threads are then built with
// NewThread against k.Scheduler and k.port before Setup is called.
func New(port Port) *Kernel {
	clock := &SystemClock{}
	return &Kernel{
		Scheduler: NewScheduler(port, clock),
		Clock:     clock,
		port:      port,
	}
}

// SetTickFrequency configures the periodic timer driving the system tick.
// Must be called before Enter (ref §6.1 kernel::set_tick_frequency).
func (k *Kernel) SetTickFrequency(cyclesPerTick uint32) {
	k.port.ConfigureTick(cyclesPerTick)
}

// Setup selects the active TCB, starts the clock bookkeeping, and marks the
// scheduler as having begun dispatching (ref §4.4.4 step 3, §6.1
// kernel::setup). All threads, including the idle thread, must already be
// registered.
func (k *Kernel) Setup() error {
	if k.Scheduler.count == 0 {
		return InvalidConfigurationError{Reason: "no threads registered before Setup"}
	}
	if k.Scheduler.idle == nil {
		return InvalidConfigurationError{Reason: "idle thread not set before Setup"}
	}

	cs := Enter(k.port)
	defer cs.Exit()

	k.Scheduler.active = &k.Scheduler.table[0]
	k.Scheduler.active.thread.state = StateActive
	k.Scheduler.lastTick = k.Clock.GetTicks()
	k.Scheduler.started = true
	return nil
}

// Enter performs the first dispatch and, on real hardware, never returns
// (ref §4.4.5). With interrupts disabled it identifies the active thread's
// entry function; the host-testable port then runs that entry function
// directly in place of the bit-exact "pop the synthetic context and jump"
// sequence a real port performs (see enterFirstTask in the //go:build arm
// package port/cm4 for that sequence).
func (k *Kernel) Enter() {
	cs := Enter(k.port)
	active := k.Scheduler.active
	cs.Exit()
	active.thread.entry()
}

// ThisThread groups the operations a thread performs on itself, mirroring
// the original's this_thread namespace (ref §6.1).
type ThisThread struct {
	k *Kernel
}

// ThisThread returns the operations table for the calling thread.
func (k *Kernel) ThisThread() ThisThread { return ThisThread{k: k} }

// SleepFor suspends the calling thread for at least ticks ticks (ref §6.1
// this_thread::sleep_for, §4.3.1 sleep_thread).
func (t ThisThread) SleepFor(ticks uint32) {
	cs := Enter(t.k.port)
	t.k.Scheduler.SleepThread(ticks)
	cs.Exit()
}

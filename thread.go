package kernel

// ThreadState is the lifecycle state of a Thread (ref §4.1). The four
// states and their transitions mirror the goroutine-status style used
// elsewhere in the Go ecosystem for scheduler state (an iota enum over a
// small fixed state space, e.g. runtime's _Gidle/_Grunnable/_Grunning/...)
// rather than a set of booleans.
type ThreadState uint8

const (
	// StatePending marks a thread ready to run but not currently active.
	StatePending ThreadState = iota
	// StateActive marks the one thread currently executing.
	StateActive
	// StateSleeping marks a thread waiting out a tick deadline.
	StateSleeping
	// StateSuspended marks a thread blocked on a synchronization
	// primitive's wait queue.
	StateSuspended
)

func (s ThreadState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateSleeping:
		return "sleeping"
	case StateSuspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Thread owns a flow of control: its identity, its caller-supplied stack
// region, and its lifecycle state (ref §3.1). The Thread does not own the
// backing storage of its stack, only the use of it for its lifetime.
type Thread struct {
	id       uint32
	entry    Entry
	stack    []uint32
	savedSP  uint32
	state    ThreadState
	priority uint8
}

// NewThread synthesizes a thread's initial register context at the top of
// stack, registers it with sched, and returns it in state Pending (ref
// §3.1, §6.1). priority is carried but not consulted by the scheduling
// policy (ref §9 "Priority model").
func NewThread(sched *Scheduler, port Port, entry Entry, id uint32, stack []uint32, priority uint8) (*Thread, error) {
	if entry == nil {
		return nil, InvalidConfigurationError{Reason: "nil entry function"}
	}
	if len(stack) < MinStackWords {
		return nil, InvalidConfigurationError{Reason: "stack smaller than MinStackWords"}
	}

	t := &Thread{
		id:       id,
		entry:    entry,
		stack:    stack,
		state:    StatePending,
		priority: priority,
	}
	t.savedSP = port.BuildInitialContext(stack, entry)

	if err := sched.registerThread(t); err != nil {
		return nil, err
	}
	return t, nil
}

// newUnregisteredThread builds a synthesized thread without registering it,
// for the idle thread (set via SetIdleThread, not registerThread) and for
// tests that want to exercise Thread construction in isolation.
func newUnregisteredThread(port Port, entry Entry, id uint32, stack []uint32, priority uint8) (*Thread, error) {
	if entry == nil {
		return nil, InvalidConfigurationError{Reason: "nil entry function"}
	}
	if len(stack) < MinStackWords {
		return nil, InvalidConfigurationError{Reason: "stack smaller than MinStackWords"}
	}
	t := &Thread{id: id, entry: entry, stack: stack, state: StatePending, priority: priority}
	t.savedSP = port.BuildInitialContext(stack, entry)
	return t, nil
}

// ID returns the thread's identifier.
func (t *Thread) ID() uint32 { return t.id }

// State returns the thread's current lifecycle state.
func (t *Thread) State() ThreadState { return t.state }

// Priority returns the thread's carried, unconsulted priority value.
func (t *Thread) Priority() uint8 { return t.priority }

// StackContains reports whether the saved stack pointer lies within the
// thread's stack region, the "stack containment" invariant (ref §8.1).
func (t *Thread) StackContains() bool {
	return t.savedSP <= uint32(len(t.stack))
}

// NewIdleThread builds the distinguished idle thread: a reserved id, a
// small stack, and a body that spins forever (ref scheduler.cpp's
// internal_thread, supplemented per SPEC_FULL.md since the distilled
// specification names the idle TCB but not how one is constructed). It is
// never registered in the main TCB table; SetIdleThread installs it
// separately (ref §3.3).
func NewIdleThread(port Port) *Thread {
	stack := make([]uint32, idleStackWords)
	spin := func() {
		for {
		}
	}
	t, err := newUnregisteredThread(port, spin, idleThreadID, stack, 0)
	if err != nil {
		// idleStackWords and spin are both fixed and valid by
		// construction; a failure here is a programming error in this
		// package, not a caller mistake.
		panic(err)
	}
	return t
}

package kernel

// Mutex is semantically a binary semaphore initialized to unlocked, with
// direct ownership handoff on Unlock rather than a release-then-reacquire
// race: when a waiter exists, Unlock leaves locked true and hands it
// straight to that waiter, so Lock's "resuming with the lock held"
// guarantee (ref §4.5.2) is literally true rather than merely likely.
//
// unlock is expected to be called only by the thread that last locked it;
// this is the caller's responsibility and is not checked here (ref
// §4.5.2).
type Mutex struct {
	sched   *Scheduler
	port    Port
	locked  bool
	waiters tcbQueue
}

// NewMutex constructs an unlocked mutex.
func NewMutex(sched *Scheduler, port Port) *Mutex {
	return &Mutex{sched: sched, port: port}
}

// Locked reports whether the mutex is currently held, for diagnostics and
// tests.
func (m *Mutex) Locked() bool { return m.locked }

// Lock blocks until the mutex can be acquired (ref §4.5.2).
func (m *Mutex) Lock() {
	cs := Enter(m.port)
	if !m.locked {
		m.locked = true
		cs.Exit()
		return
	}

	active := m.sched.ActiveTCB()
	if err := m.waiters.push(active); err != nil {
		cs.Exit()
		panic(err)
	}
	cs.Exit()

	m.sched.SuspendThread()
	// Resumes here with m.locked already true, handed off by Unlock.
}

// TryLock attempts to acquire the mutex without blocking (ref §4.5.2).
func (m *Mutex) TryLock() bool {
	cs := Enter(m.port)
	defer cs.Exit()
	if m.locked {
		return false
	}
	m.locked = true
	return true
}

// Unlock releases the mutex. If a waiter is queued, ownership transfers
// directly to it (locked stays true); otherwise the mutex becomes unlocked
// (ref §4.5.2).
func (m *Mutex) Unlock() {
	cs := Enter(m.port)
	defer cs.Exit()

	if tcb := m.waiters.pop(); tcb != nil {
		tcb.thread.state = StatePending
		return
	}
	m.locked = false
}

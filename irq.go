package kernel

// CriticalSection is the Go stand-in for the original's RAII interrupt
// guard (interrupt_lock_guard.hpp): constructing it disables interrupts,
// and Exit restores whatever state was in effect before construction. Go
// has no destructors, so every call site pairs Enter with a deferred Exit
// instead of relying on scope exit:
//
//	cs := kernel.Enter(port)
//	defer cs.Exit()
//
// A handful of call sites (semaphore.Acquire) exit the section explicitly,
// mid-function, before yielding — ref §4.5.1 — so Exit is a plain method,
// not solely a defer target.
type CriticalSection struct {
	port Port
	prev bool
	open bool
}

// Enter disables interrupts and returns a CriticalSection that will restore
// the previous state when Exit is called.
func Enter(port Port) CriticalSection {
	return CriticalSection{port: port, prev: port.DisableInterrupts(), open: true}
}

// Exit restores the interrupt-enable state captured by Enter. Calling Exit
// more than once is a no-op.
func (c *CriticalSection) Exit() {
	if !c.open {
		return
	}
	c.open = false
	c.port.EnableInterrupts(c.prev)
}

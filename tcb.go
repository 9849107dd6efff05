package kernel

// TCB is the scheduler's per-thread bookkeeping record (ref §3.2). TCBs
// live in a fixed-capacity table populated at registration time and never
// move or get reallocated afterward — their addresses are stable for the
// kernel's lifetime, which is what lets the port layer's exception handler
// hold a raw pointer to one (ref §9 "TCB identity is stable").
type TCB struct {
	thread              *Thread
	savedSP             uint32
	next                *TCB
	remainingSleepTicks int32
}

// Thread returns the TCB's owning thread.
func (t *TCB) Thread() *Thread { return t.thread }

// SavedSP returns the TCB's saved stack pointer, kept in sync with the
// thread's own savedSP (ref §3.2).
func (t *TCB) SavedSP() uint32 { return t.savedSP }

// SPPointer returns the address of the TCB's saved stack pointer slot.
// A real hardware port needs this to give its assembly context-switch
// handler the well-known symbol it dereferences (ref §3.5,
// system_active_task / system_pending_task); internal/simport never calls
// it, since it has no assembly counterpart to hand the address to.
func (t *TCB) SPPointer() *uint32 { return &t.savedSP }

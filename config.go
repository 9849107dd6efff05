package kernel

// Compile-time kernel sizing. The kernel allocates nothing after these
// tables are built, so capacity is fixed here rather than taken as a
// runtime parameter (ref §1 non-goals, §3.2, §9 "Wait queues").
const (
	// MaxThreads bounds the TCB table and, by construction, every
	// synchronization primitive's wait queue (ref §3.2 MAX_THREADS).
	MaxThreads = 32

	// MinStackWords is the smallest stack region Thread construction will
	// accept (ref §6.1, Thread::new precondition stack_words >= 32).
	MinStackWords = 32

	// contextWords is the size, in machine words, of the synthetic
	// register frame Thread construction seeds at the top of a new
	// thread's stack: r4-r11, r0-r3, r12, lr, pc, xpsr — the Cortex-M4F
	// integer context (ref §4.4.2 steps 2-3; layout grounded in
	// threading.cpp's RegisterContext, FPU lazy-stacked words excluded
	// since this rewrite does not model FPU state).
	contextWords = 16

	// pcOffset and psrOffset locate the saved program counter and program
	// status register within the contextWords frame (ref threading.cpp
	// field order: r4..r11, r0..r3, r12, lr, pc, psr).
	pcOffset  = 14
	psrOffset = 15

	// thumbBit is PSR_THUMB_MODE: Cortex-M cores only execute Thumb code,
	// so every synthetic frame's psr must carry it (ref thread.cpp).
	thumbBit = 1 << 24

	// idleThreadID is reserved for the distinguished idle thread (ref
	// scheduler.cpp's internal_thread, id 0xFFFF).
	idleThreadID = 0xFFFF

	// idleStackWords is the stack size given to the idle thread
	// (ref scheduler.cpp, 128-word internal_thread stack).
	idleStackWords = 128
)

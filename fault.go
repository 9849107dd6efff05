package kernel

import "log"

// FaultFrame is the register state captured from the exception stack frame
// when a hard, memory, bus, or usage fault is taken (ref §7 "Fault";
// supplemented per SPEC_FULL.md from port_stm32f407.cpp's HANDLE_FAULT
// macro, which captures the same eight words before halting).
type FaultFrame struct {
	R0, R1, R2, R3 uint32
	R12            uint32
	LR             uint32
	ReturnAddress  uint32
	XPSR           uint32
}

// FaultHandler logs a captured FaultFrame and then halts. Faults are fatal
// in this kernel: there is no crash-to-restart path (ref §7). Halt
// defaults to spinning forever and is overridable, primarily so tests can
// observe that a fault was handled without actually hanging the test
// binary — mirroring the reference codebase's habit of logging
// diagnostics via the standard log package rather than an abstraction over
// it.
type FaultHandler struct {
	Logger *log.Logger
	Halt   func()
}

// NewFaultHandler returns a FaultHandler that logs to logger (or a default
// logger if nil) and spins forever on Handle unless Halt is overridden.
func NewFaultHandler(logger *log.Logger) *FaultHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &FaultHandler{
		Logger: logger,
		Halt: func() {
			for {
			}
		},
	}
}

// Handle logs kind and frame, then calls Halt. It never returns control to
// the caller in the sense that matters: the default Halt spins forever, and
// when a debugger is attached the fault vectors in the //go:build arm
// package port/cm4 execute a breakpoint instead of calling Handle.
func (h *FaultHandler) Handle(kind string, frame FaultFrame) {
	h.Logger.Printf("kernel: %s fault: r0=%#08x r1=%#08x r2=%#08x r3=%#08x r12=%#08x lr=%#08x pc=%#08x xpsr=%#08x",
		kind, frame.R0, frame.R1, frame.R2, frame.R3, frame.R12, frame.LR, frame.ReturnAddress, frame.XPSR)
	h.Halt()
}

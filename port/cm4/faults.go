//go:build arm

package cm4

import (
	"github.com/coreproc/cm4rtos"
	"github.com/coreproc/cm4rtos/port/cm4/mmio"
)

// coreDebugDHCSR is CoreDebug->DHCSR; bit 0 (C_DEBUGEN) is set when a
// debugger has enabled halting debug (ref port_stm32f407.cpp's
// HALT_IF_DEBUGGING macro).
var coreDebugDHCSR = mmio.Register32At(0xE000EDF0)

// DebuggerAttached reports whether a debugger has halting debug enabled.
func DebuggerAttached() bool {
	return coreDebugDHCSR.Get()&(1<<0) != 0
}

// handler is shared by the hard, memory-management, bus, and usage fault
// vectors, installed by the linker-script vector table this package's
// consumer provides. Logging goes through kernel.FaultHandler, matching
// the AMBIENT STACK decision to keep fault diagnostics on the standard
// logger rather than a bespoke abstraction.
var handler = kernel.NewFaultHandler(nil)

// reportFault is called from handleFaultFrame with the exception stack
// frame captured by captureFaultFrame (switch_arm.s's HANDLE_FAULT
// counterpart). If a debugger is
// attached it breaks in rather than spinning, matching HALT_IF_DEBUGGING's
// bkpt.
func reportFault(kind string, frame kernel.FaultFrame) {
	if DebuggerAttached() {
		breakpoint()
		return
	}
	handler.Handle(kind, frame)
}

// hardFaultHandler, memManageFaultHandler, busFaultHandler, and
// usageFaultHandler are the four vector-table entries named in §7's Fault
// row. Each reads the appropriate stack pointer (MSP or PSP, selected by
// bit 2 of the exception LR — ref HANDLE_FAULT's "tst lr, #4") and hands
// the frame to reportFault. The stack-pointer selection and frame load are
// naked assembly (switch_arm.s); only the Go-side dispatch lives here.
func hardFaultHandler()       { handleFaultFrame("hard") }
func memManageFaultHandler()  { handleFaultFrame("mem-manage") }
func busFaultHandler()        { handleFaultFrame("bus") }
func usageFaultHandler()      { handleFaultFrame("usage") }

func handleFaultFrame(kind string) {
	frame := captureFaultFrame()
	reportFault(kind, frame)
}

// captureFaultFrame and breakpoint are implemented in switch_arm.s.
func captureFaultFrame() kernel.FaultFrame
func breakpoint()

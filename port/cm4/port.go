//go:build arm

// Package cm4 is the bit-exact Cortex-M4F binding of kernel.Port. It is
// gated to GOARCH=arm so it never compiles as part of a host build or `go
// test ./...` run; host tooling and every kernel test instead use
// internal/simport.
//
// Grounded on port_stm32f407.cpp: the PendSV context-switch sequence
// (switch_arm.s), the SCB->ICSR set-pending/is-pending primitives, the
// SysTick/PendSV priority configuration (nvic.go, boot.go), and the fault
// vectors (faults.go). Register access goes through the mmio package, a
// thin Register32 wrapper over TinyGo's runtime/volatile, rather than raw
// pointer casts, following the volatile-register-over-unsafe.Pointer idiom
// used by TinyGo's target runtimes (e.g. runtime_tinygoriscv_qemu.go's
// riscv.MTVEC.Set / volatile.RegisterN pattern).
package cm4

import (
	"device/arm"
	"reflect"

	"github.com/coreproc/cm4rtos"
	"github.com/coreproc/cm4rtos/port/cm4/mmio"
)

const (
	contextWords = 16
	pcOffset     = 14
	psrOffset    = 15
	thumbBit     = 1 << 24
)

var (
	scbICSR     = mmio.Register32At(0xE000ED04)
	sysTickCtrl = mmio.Register32At(0xE000E010)
	sysTickLoad = mmio.Register32At(0xE000E014)
	sysTickVal  = mmio.Register32At(0xE000E018)
)

const icsrPendSVSet uint32 = 1 << 28

// systemActiveTask and systemPendingTask are the two word-sized globals
// the original specifies (ref §3.5): read and written only with interrupts
// disabled by the Go side, read by the PendSV assembly in switch_arm.s.
// They live in this package, not the portable kernel package, so the
// scheduler itself never holds a raw pointer (ref SPEC_FULL.md "Port layer
// binding").
var (
	systemActiveTask  *uint32 // address of the active TCB's saved-SP slot
	systemPendingTask *uint32 // address of the pending TCB's saved-SP slot
)

// Port is the real hardware implementation of kernel.Port.
type Port struct{}

// New returns a Port bound to real Cortex-M4F peripherals.
func New() *Port { return &Port{} }

// BuildInitialContext synthesizes the integer register frame described in
// §4.4.2 steps 2-3 at the top of stack and returns its word offset.
func (p *Port) BuildInitialContext(stack []uint32, entry kernel.Entry) uint32 {
	sp := uint32(len(stack)) - contextWords
	frame := stack[sp:]
	for i := range frame {
		frame[i] = 0
	}
	for i := uint32(0); i < 12; i++ {
		frame[i] = i
	}
	frame[pcOffset] = uint32(reflect.ValueOf(entry).Pointer())
	frame[psrOffset] = thumbBit
	return sp
}

// RequestSwitch implements set_pending_context_switch: it records tcb's
// saved-SP slot address as systemPendingTask and asks the NVIC to pend
// PendSV (ref §4.4.3, port_stm32f407.cpp's set_pending_context_switch).
func (p *Port) RequestSwitch(tcb *kernel.TCB) {
	systemPendingTask = tcb.SPPointer()
	scbICSR.SetBits(icsrPendSVSet)
}

// SwitchPending implements is_context_switch_pending (ref §4.4.3).
func (p *Port) SwitchPending() bool {
	return scbICSR.Get()&icsrPendSVSet != 0
}

// DisableInterrupts masks interrupts (CPSID I) and reports whether they
// were enabled beforehand, via device/arm — the same package TinyGo's own
// Cortex-M runtime support uses for PRIMASK manipulation, analogous to
// device/riscv's MIE/MTVEC access on the RISC-V side (ref
// runtime_tinygoriscv_qemu.go).
func (p *Port) DisableInterrupts() bool {
	mask := arm.DisableInterrupts()
	return mask == 0
}

// EnableInterrupts restores the PRIMASK state captured by
// DisableInterrupts.
func (p *Port) EnableInterrupts(prev bool) {
	var mask uintptr
	if !prev {
		mask = 1
	}
	arm.EnableInterrupts(mask)
}

// ConfigureTick programs SysTick for a period of cyclesPerTick core clock
// cycles (ref §4.4.1, kernel::set_tick_frequency).
func (p *Port) ConfigureTick(cyclesPerTick uint32) {
	const (
		enableBit    = 1 << 0
		tickIntBit   = 1 << 1
		clkSourceBit = 1 << 2
	)
	sysTickCtrl.Set(0)
	sysTickLoad.Set(cyclesPerTick - 1)
	sysTickVal.Set(0)
	sysTickCtrl.Set(enableBit | tickIntBit | clkSourceBit)
}

// BindInitialTask records tcb's saved-SP slot as systemActiveTask, the
// value enterFirstTask reads (ref §4.4.5 step 1). Nothing in this package
// calls it; Boot only sets exception priorities.
func BindInitialTask(tcb *kernel.TCB) {
	systemActiveTask = tcb.SPPointer()
}

// switchHandler is installed into the vector table at the PendSV slot. It
// is never called as an ordinary Go function; its body is naked assembly
// in switch_arm.s implementing the seven-step sequence of §4.4.2.
func switchHandler()

// enterFirstTask is installed as kernel::enter's hardware counterpart: it
// loads systemActiveTask's saved_sp, pops the synthetic register context
// thread construction prepared, re-enables interrupts, and jumps to the
// entry function (ref §4.4.5). Implemented in switch_arm.s.
func enterFirstTask()

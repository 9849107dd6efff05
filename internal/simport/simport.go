// Package simport is a host-only implementation of kernel.Port. Its only
// allocation is the switch log RequestSwitch appends to. It has no real
// interrupt controller: RequestSwitch and
// SwitchPending model the PendSV "set-pending/read-pending" pair with a
// plain boolean, and DisableInterrupts/EnableInterrupts model CPSID/CPSIE
// with a depth counter so nested critical sections behave the way the real
// instructions do — idempotent, with the outermost EnableInterrupts
// actually re-enabling.
//
// It is grounded in the reference codebase's testBus/spyBus pattern
// (testutil_test.go): a small, deterministic fake standing in for the
// hardware dependency so every kernel test runs without a target.
package simport

import (
	"reflect"

	"github.com/coreproc/cm4rtos"
)

const (
	contextWords = 16
	pcOffset     = 14
	psrOffset    = 15
	thumbBit     = 1 << 24
)

// Port is a simulated kernel.Port for host tests and cmd/ksim.
type Port struct {
	pendingSwitch bool
	pendingTCB    *kernel.TCB
	irqDepth      int
	tickCycles    uint32

	// switchLog records every RequestSwitch call's target thread id, for
	// tests that assert on scheduling order without reaching into
	// scheduler internals.
	switchLog []uint32
}

// New returns a ready-to-use simulated port.
func New() *Port {
	return &Port{}
}

// BuildInitialContext synthesizes the Cortex-M4F integer register frame at
// the top of stack and records entry's code pointer as the saved PC, the
// same way a real port would place the thread's resume address (ref spec
// §4.4.2 steps 2-3, §9 "Thread entry as a value"). reflect.Value.Pointer
// is the standard way to obtain a Go func value's code pointer; it mirrors
// the underlying funcval{fn uintptr} layout the Go runtime itself uses
// internally for closures.
func (p *Port) BuildInitialContext(stack []uint32, entry kernel.Entry) uint32 {
	sp := uint32(len(stack)) - contextWords
	frame := stack[sp:]
	for i := range frame {
		frame[i] = 0
	}
	for i := uint32(0); i < 12; i++ {
		frame[i] = i // r4..r11, r0..r3 debug pattern (ref thread.cpp); r12 and lr stay 0
	}
	frame[pcOffset] = uint32(reflect.ValueOf(entry).Pointer())
	frame[psrOffset] = thumbBit
	return sp
}

// RequestSwitch records tcb as pending and marks a switch as outstanding.
func (p *Port) RequestSwitch(tcb *kernel.TCB) {
	p.pendingTCB = tcb
	p.pendingSwitch = true
	p.switchLog = append(p.switchLog, tcb.Thread().ID())
}

// SwitchPending reports, and then clears, the outstanding switch flag —
// modeling a single-shot pending-interrupt bit that the "handler" (here,
// the test or cmd/ksim driving loop) is considered to have serviced once
// observed.
func (p *Port) SwitchPending() bool {
	if !p.pendingSwitch {
		return false
	}
	p.pendingSwitch = false
	return true
}

// DisableInterrupts increments the nesting depth and returns whether
// interrupts were enabled before this call.
func (p *Port) DisableInterrupts() bool {
	wasEnabled := p.irqDepth == 0
	p.irqDepth++
	return wasEnabled
}

// EnableInterrupts decrements the nesting depth. prev is accepted for
// interface symmetry with a real CPSID/CPSIE pair but this simulated port
// tracks nesting by depth rather than by restoring prev directly, since
// host tests call DisableInterrupts/EnableInterrupts from a single
// goroutine with strictly nested lifetimes.
func (p *Port) EnableInterrupts(prev bool) {
	if p.irqDepth > 0 {
		p.irqDepth--
	}
	_ = prev
}

// ConfigureTick records the configured cycles-per-tick for inspection by
// tests; it drives nothing, since simport has no real timer.
func (p *Port) ConfigureTick(cyclesPerTick uint32) {
	p.tickCycles = cyclesPerTick
}

// TickCycles returns the most recently configured cycles-per-tick.
func (p *Port) TickCycles() uint32 { return p.tickCycles }

// SwitchLog returns the thread ids passed to RequestSwitch, in order, for
// tests asserting on scheduling sequence.
func (p *Port) SwitchLog() []uint32 { return p.switchLog }

// PendingTCB returns the last TCB passed to RequestSwitch, regardless of
// whether SwitchPending has since cleared the flag.
func (p *Port) PendingTCB() *kernel.TCB { return p.pendingTCB }

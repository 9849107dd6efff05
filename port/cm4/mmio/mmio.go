//go:build arm

// Package mmio provides volatile, word-sized access to memory-mapped
// registers. It is a thin Register32 wrapper around TinyGo's
// runtime/volatile.Register32, bound to an absolute address via
// unsafe.Pointer, scoped to what the Cortex-M4F SCB/SysTick/CoreDebug
// blocks need.
//
// Grounded on TinyGo's target-runtime idiom of wrapping
// unsafe.Pointer(uintptr(addr)) in a volatile register type (see
// runtime_tinygoriscv_qemu.go's riscv.MTVEC.Set / riscv.MIE.SetBits and
// the volatile.Register32 type those calls resolve to).
package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// Register32 is a single 32-bit memory-mapped register.
type Register32 struct {
	reg *volatile.Register32
}

// Register32At returns a Register32 bound to the given absolute address.
func Register32At(addr uintptr) Register32 {
	return Register32{reg: (*volatile.Register32)(unsafe.Pointer(addr))}
}

// Get performs a volatile read.
func (r Register32) Get() uint32 { return r.reg.Get() }

// Set performs a volatile write.
func (r Register32) Set(v uint32) { r.reg.Set(v) }

// SetBits performs a volatile read-modify-write, OR-ing mask into the
// register's current value.
func (r Register32) SetBits(mask uint32) { r.reg.SetBits(mask) }

// ClearBits performs a volatile read-modify-write, AND-ing out mask from
// the register's current value.
func (r Register32) ClearBits(mask uint32) { r.reg.ClearBits(mask) }

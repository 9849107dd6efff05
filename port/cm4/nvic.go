//go:build arm

package cm4

import "github.com/coreproc/cm4rtos/port/cm4/mmio"

// IRQn values for the two exceptions this port cares about, matching
// CMSIS's IRQn_Type numbering (negative: core exceptions).
const (
	pendSVIRQn  = -2
	sysTickIRQn = -1
)

var scbSHPR3 = mmio.Register32At(0xE000ED20) // system handler priority 3: PendSV, SysTick

// setExceptionPriority sets the 8-bit priority field for a core exception
// IRQn within SHPR3 (PendSV occupies bits 16-23, SysTick bits 24-31 on
// Cortex-M4F).
func setExceptionPriority(irqn int32, priority uint32) {
	reg := scbSHPR3.Get()
	switch irqn {
	case pendSVIRQn:
		reg = (reg &^ (0xFF << 16)) | (priority&0xFF)<<16
	case sysTickIRQn:
		reg = (reg &^ (0xFF << 24)) | (priority&0xFF)<<24
	}
	scbSHPR3.Set(reg)
}

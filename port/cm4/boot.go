//go:build arm

package cm4

// Boot performs the processor-specific half of startup (ref §4.4.4): it
// sets the tick and context-switch exceptions to the lowest preemption
// priority in the same group, mirroring port_stm32f407.cpp's
// bootstrap_device_port (NVIC_EncodePriority(0, 15, 1) applied to both
// SysTick and PendSV). RAM initialization (BSS zero, data copy from flash)
// and clock-tree bring-up are out of scope for this kernel (ref §1
// non-goals) and are assumed to have already run by the time Boot is
// called, exactly as the distilled specification assumes for §4.4.4 steps
// 1-2.
func Boot() {
	const lowestPriority = 0xF0 // NVIC_EncodePriority(0, 15, 1) for a single priority-group bit split
	setExceptionPriority(sysTickIRQn, lowestPriority)
	setExceptionPriority(pendSVIRQn, lowestPriority)
}

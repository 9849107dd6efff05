package kernel

// SystemClock is a monotonic, free-running tick counter, advanced only from
// the periodic timer ISR (ref §4.2). It is allowed to wrap; every consumer
// in this package computes deltas as unsigned subtraction, which is correct
// across a single wrap.
type SystemClock struct {
	ticks uint32
}

// GetTicks reads the current tick count.
func (c *SystemClock) GetTicks() uint32 {
	return c.ticks
}

// Update advances the counter by delta. Called exclusively from the
// periodic tick ISR (ref §4.4.1 step 2).
func (c *SystemClock) Update(delta uint32) {
	c.ticks += delta
}

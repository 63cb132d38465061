package sim

import "time"

// Clock converts elapsed wall time into whole fixed ticks.
type Clock struct {
	interval   time.Duration
	maxCatchUp int
	acc        time.Duration
}

// NewClock ticks rate times per second and releases at most maxCatchUp ticks
// per Advance. A non-positive maxCatchUp means no cap.
func NewClock(rate, maxCatchUp int) *Clock {
	if rate <= 0 {
		rate = 60
	}
	return &Clock{interval: time.Second / time.Duration(rate), maxCatchUp: maxCatchUp}
}

// Interval is the length of one tick.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// Pending is the accumulated time not yet released as a tick.
func (c *Clock) Pending() time.Duration {
	return c.acc
}

// Advance adds elapsed and returns how many ticks are due. Time beyond the
// catch-up cap is dropped, keeping only the partial tick.
func (c *Clock) Advance(elapsed time.Duration) int {
	if elapsed > 0 {
		c.acc += elapsed
	}
	n := int(c.acc / c.interval)
	c.acc -= time.Duration(n) * c.interval
	if c.maxCatchUp > 0 && n > c.maxCatchUp {
		n = c.maxCatchUp
	}
	return n
}

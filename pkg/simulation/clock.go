package simulation

import "time"

// FixedStep turns variable frame deltas into a whole number of fixed ticks.
// Leftover time carries to the next frame. After a stall the burst is capped
// at maxTicks and the backlog is dropped, so a slow frame never snowballs.
type FixedStep struct {
	tick        time.Duration
	maxTicks    int
	accumulator time.Duration
	count       uint64
}

// NewFixedStep panics on a non-positive tick; maxTicks < 1 means uncapped.
func NewFixedStep(tick time.Duration, maxTicks int) *FixedStep {
	if tick <= 0 {
		panic("simulation: fixed step tick must be positive")
	}
	return &FixedStep{tick: tick, maxTicks: maxTicks}
}

// TickDuration returns the duration for a rate in Hz.
func TickDuration(rate int) time.Duration {
	if rate < 1 {
		rate = 1
	}
	return time.Second / time.Duration(rate)
}

// Advance adds dt and returns how many ticks are due. The tick counter moves
// forward by the same amount.
func (f *FixedStep) Advance(dt time.Duration) int {
	if dt > 0 {
		f.accumulator += dt
	}
	n := int(f.accumulator / f.tick)
	if f.maxTicks > 0 && n > f.maxTicks {
		n = f.maxTicks
		f.accumulator = 0
	} else {
		f.accumulator -= time.Duration(n) * f.tick
	}
	f.count += uint64(n)
	return n
}

// Tick returns the number of ticks issued so far.
func (f *FixedStep) Tick() uint64 {
	return f.count
}

// Pending is the time carried over to the next Advance.
func (f *FixedStep) Pending() time.Duration {
	return f.accumulator
}

// Reset drops carried time and restarts the counter.
func (f *FixedStep) Reset() {
	f.accumulator = 0
	f.count = 0
}

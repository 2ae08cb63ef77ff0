package pyroengine

import "time"

// clock is the Director's per-tick time source. Grounded on the teacher's mod_time.go
// Time resource, generalized from a package-global App resource into a field the
// Director owns directly.
type clock struct {
	wall       time.Time
	globalTime float64 // seconds, scaled by timeScale, monotonically increasing unless reset
	frameCount uint64
	dt         float64 // last tick's scaled delta, for introspection/tests
}

func newClock() *clock {
	return &clock{wall: time.Now()}
}

// maxDt is a belt-and-braces ceiling beyond the host's typical 0.05s clamp (spec §5);
// it exists only so a host that forgets to clamp dt cannot blow up integration.
const maxDt = 0.25

// advance validates dt per spec §7 (dt <= 0 is a no-op) and returns the scaled delta to
// apply this tick, or false if the tick should be skipped entirely.
func (c *clock) advance(dt, timeScale float64) (float64, bool) {
	if dt <= 0 {
		return 0, false
	}
	if dt > maxDt {
		dt = maxDt
	}
	scaled := dt * timeScale
	c.globalTime += scaled
	c.frameCount++
	c.dt = scaled
	c.wall = c.wall.Add(time.Duration(scaled * float64(time.Second)))
	return scaled, true
}

func (c *clock) reset() {
	c.wall = time.Now()
	c.globalTime = 0
	c.frameCount = 0
	c.dt = 0
}

package pyroengine

// defaultPoolCapacity is a particle stream's default fixed capacity (spec §4.4).
const defaultPoolCapacity = 5000

// pool is a fixed-capacity free list. Acquire pops a reusable particle or allocates a
// fresh one up to capacity; Release marks a particle dead and returns it to the free
// list. The invariant |pool| + |live| <= capacity always holds because a new object is
// only allocated while liveCount < capacity and the free list is empty (spec §8
// property 2, spec §9 Pooling design note: the body is not freed on release, only
// overwritten on reuse).
type pool struct {
	capacity  int
	free      []*StreamParticle
	liveCount int
}

func newPool(capacity int) *pool {
	if capacity <= 0 {
		capacity = defaultPoolCapacity
	}
	return &pool{capacity: capacity}
}

// acquire returns a particle ready to be populated by the caller, or nil if the pool
// is at capacity (spec §7: capacity exhaustion clamps spawn count silently, it is
// never an error).
func (p *pool) acquire() *StreamParticle {
	if p.liveCount >= p.capacity {
		return nil
	}
	var sp *StreamParticle
	if n := len(p.free); n > 0 {
		sp = p.free[n-1]
		p.free = p.free[:n-1]
		*sp = StreamParticle{}
	} else {
		sp = &StreamParticle{}
	}
	p.liveCount++
	return sp
}

func (p *pool) release(sp *StreamParticle) {
	sp.IsDead = true
	p.free = append(p.free, sp)
	p.liveCount--
}

func (p *pool) capacityRemaining() int {
	return p.capacity - p.liveCount
}

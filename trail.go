package pyroengine

// TrailParticle is owned exclusively by the carrier subsystem (spec §3).
type TrailParticle struct {
	Position Vector3
	Velocity Vector3
	Age      float32
	LifeTime float32
	Hue      float32
	Saturation float32
	Lightness  float32
	Alpha      float32
	Size       float32
	IsDead     bool

	startLightness float32
}

// trailGravity is the carrier subsystem's constant downward acceleration for trail
// particles (spec §4.3: "-30 units/s^2").
const trailGravity = -30

// trailDampingPerSecond is the per-axis damping factor per second of simulated time
// (spec §4.3: "0.98 per second"), applied every tick as trailDampingPerSecond^dt.
const trailDampingPerSecond = 0.98

func (p *TrailParticle) tick(dt float32) {
	if p.IsDead {
		return
	}
	p.Age += dt
	if p.Age >= p.LifeTime {
		p.IsDead = true
		p.Alpha = 0
		return
	}

	p.Velocity[1] += trailGravity * dt
	damp := powf(trailDampingPerSecond, dt)
	p.Velocity = p.Velocity.Mul(damp)
	p.Position = p.Position.Add(p.Velocity.Mul(dt))

	t := p.Age / p.LifeTime
	p.Alpha = clampf(1-t, 0, 1)
	p.Lightness = lerpf(p.startLightness, 0, t)
}

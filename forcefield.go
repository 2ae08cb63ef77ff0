package pyroengine

import "math"

// ForceFieldKind tags which variant a ForceField is. Dispatch is a single switch per
// spec §9 ("inheritance-free polymorphism").
type ForceFieldKind int

const (
	ForceGravity ForceFieldKind = iota
	ForceWind
	ForceDrag
	ForceAttraction
	ForceRepulsion
	ForceVortex
	ForceTurbulence
	ForceCurlNoise
	ForceBreathe
	ForceWingFlap
	ForceNoise
)

// ForceField is the tagged-variant force description from spec §3. Shared optional
// fields are zero-valued when a variant doesn't use them.
type ForceField struct {
	Kind    ForceFieldKind
	Enabled bool

	Strength  float32
	Direction Vector3
	Center    Vector3
	Radius    float32
	Falloff   *Curve // nil means a linear falloff

	NoiseFrequency float32
	NoiseAmplitude float32
}

func (f ForceField) falloff(t float32) float32 {
	if f.Falloff != nil {
		return f.Falloff.Eval(t)
	}
	return clampf(1-t, 0, 1)
}

// ForceFieldSystem holds an ordered catalogue of fields and a monotonically
// increasing global clock (spec §4.1). It is read-only during a particle stream's
// parallel physics pass (spec §5).
type ForceFieldSystem struct {
	fields     []ForceField
	globalTime float64
	noise      *perlinNoise
}

// NewForceFieldSystem constructs a system with a deterministic noise seed (spec §6:
// "the Perlin seed is stable").
func NewForceFieldSystem(seed int64) *ForceFieldSystem {
	return &ForceFieldSystem{noise: newPerlinNoise(seed)}
}

func (s *ForceFieldSystem) SetForceFields(fields []ForceField) {
	s.fields = fields
}

func (s *ForceFieldSystem) Add(f ForceField) {
	s.fields = append(s.fields, f)
}

func (s *ForceFieldSystem) Clear() {
	s.fields = nil
}

func (s *ForceFieldSystem) UpdateTime(dt float64) {
	s.globalTime += dt
}

func (s *ForceFieldSystem) GlobalTime() float64 {
	return s.globalTime
}

// TotalForce sums every enabled field's contribution at the given state. No field ever
// panics; a disabled field or one with invalid parameters contributes zero or an
// inverted-but-finite force (spec §4.1 failure semantics).
func (s *ForceFieldSystem) TotalForce(position, velocity Vector3, mass float32) Vector3 {
	var total Vector3
	for _, f := range s.fields {
		if !f.Enabled {
			continue
		}
		total = total.Add(s.evaluate(f, position, velocity, mass))
	}
	return total
}

// Acceleration divides TotalForce by mass, guarding against non-positive mass.
func (s *ForceFieldSystem) Acceleration(position, velocity Vector3, mass float32) Vector3 {
	if mass <= 0 {
		mass = 1
	}
	return s.TotalForce(position, velocity, mass).Mul(1 / mass)
}

func (s *ForceFieldSystem) evaluate(f ForceField, position, velocity Vector3, mass float32) Vector3 {
	t := s.globalTime
	switch f.Kind {
	case ForceGravity:
		return f.Direction.Mul(mass * f.Strength)

	case ForceWind:
		mod := float32(1 + 0.3*math.Sin(2*t))
		return f.Direction.Mul(f.Strength * mod)

	case ForceDrag:
		speed := velocity.Len()
		if speed < 1e-8 {
			return Vector3{}
		}
		return safeNormalize(velocity).Mul(-f.Strength * speed * speed)

	case ForceAttraction, ForceRepulsion:
		toCenter := f.Center.Sub(position)
		r := toCenter.Len()
		if f.Radius > 0 && r > f.Radius {
			return Vector3{}
		}
		if r < 1e-8 {
			return Vector3{}
		}
		normT := float32(0)
		if f.Radius > 0 {
			normT = r / f.Radius
		}
		denom := r
		if denom < 1 {
			denom = 1
		}
		mag := f.Strength * f.falloff(normT) / (denom * denom)
		dir := toCenter.Mul(1 / r)
		if f.Kind == ForceRepulsion {
			dir = dir.Mul(-1)
		}
		return dir.Mul(mag)

	case ForceVortex:
		dx := position[0] - f.Center[0]
		dz := position[2] - f.Center[2]
		r := float32(math.Hypot(float64(dx), float64(dz)))
		if r < 1e-8 {
			return Vector3{}
		}
		var decay float32
		if f.Radius > 0 {
			decay = clampf(1-r/f.Radius, 0, 1)
		} else {
			decay = 1 / (1 + 0.1*r)
		}
		// Tangential direction in the XZ plane.
		tangent := Vector3{-dz / r, 0, dx / r}
		return tangent.Mul(f.Strength * decay)

	case ForceTurbulence:
		freq := f.NoiseFrequency
		if freq == 0 {
			freq = 1
		}
		amp := f.NoiseAmplitude
		if amp == 0 {
			amp = f.Strength
		}
		x := float64(position[0] * freq)
		y := float64(position[1] * freq)
		z := float64(position[2]*freq) + t
		v := Vector3{
			float32(s.noise.Fractal4Octaves(x, y, z)),
			float32(s.noise.Fractal4Octaves(x+37.2, y+17.1, z+91.7)),
			float32(s.noise.Fractal4Octaves(x-53.9, y+29.4, z-11.3)),
		}
		return v.Mul(amp)

	case ForceCurlNoise:
		freq := f.NoiseFrequency
		if freq == 0 {
			freq = 1
		}
		amp := f.NoiseAmplitude
		if amp == 0 {
			amp = f.Strength
		}
		c := s.noise.Curl(
			float64(position[0]*freq),
			float64(position[1]*freq),
			float64(position[2]*freq)+t,
		)
		return c.Mul(amp)

	case ForceBreathe:
		freq := f.NoiseFrequency
		if freq == 0 {
			freq = 1
		}
		amp := f.NoiseAmplitude
		if amp == 0 {
			amp = f.Strength
		}
		toCenter := position.Sub(f.Center)
		r := toCenter.Len()
		dir := safeNormalize(toCenter)
		mag := float32(math.Sin(2*math.Pi*float64(freq)*t)) * amp * clampf(r/50, 0, 1)
		force := dir.Mul(mag)
		force[1] *= 0.5
		return force

	case ForceWingFlap:
		freq := f.NoiseFrequency
		if freq == 0 {
			freq = 1
		}
		amp := f.NoiseAmplitude
		if amp == 0 {
			amp = 1
		}
		dx := position[0] - f.Center[0]
		sign := float32(1)
		if dx < 0 {
			sign = -1
		}
		fy := sign * float32(math.Sin(2*math.Pi*float64(freq)*t)) * amp * (float32(math.Abs(float64(dx))) / 30) * f.Strength
		return Vector3{0, fy, 0}

	case ForceNoise:
		freq := f.NoiseFrequency
		if freq == 0 {
			freq = 1
		}
		amp := f.NoiseAmplitude
		if amp == 0 {
			amp = f.Strength
		}
		v := s.noise.Vec3(
			float64(position[0]*freq)+t,
			float64(position[1]*freq)+t,
			float64(position[2]*freq)+t,
		)
		return v.Mul(amp)
	}
	return Vector3{}
}

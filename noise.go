package pyroengine

import "math"

// perlinNoise is a standard seeded-permutation Perlin field. Grounded on
// other_examples' PerlinNoise/Noise3D shape (flowfield.go), with the fade function
// and gradient table spec §4.1 calls out explicitly (t^3(t(6t-15)+10)).
type perlinNoise struct {
	perm [512]int
}

func newPerlinNoise(seed int64) *perlinNoise {
	p := &perlinNoise{}
	var source [256]int
	for i := range source {
		source[i] = i
	}
	// Deterministic seeded shuffle (xorshift64*), so the same seed always produces
	// the same permutation regardless of global rand state (spec §6 determinism).
	s := uint64(seed)
	if s == 0 {
		s = 0x9e3779b97f4a7c15
	}
	nextRand := func() uint64 {
		s ^= s << 13
		s ^= s >> 7
		s ^= s << 17
		return s
	}
	for i := 255; i > 0; i-- {
		j := int(nextRand() % uint64(i+1))
		source[i], source[j] = source[j], source[i]
	}
	for i := 0; i < 256; i++ {
		p.perm[i] = source[i]
		p.perm[i+256] = source[i]
	}
	return p
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func gradDot(hash int, x, y, z float64) float64 {
	switch hash & 15 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x + z
	case 5:
		return -x + z
	case 6:
		return x - z
	case 7:
		return -x - z
	case 8:
		return y + z
	case 9:
		return -y + z
	case 10:
		return y - z
	case 11:
		return -y - z
	case 12:
		return y + x
	case 13:
		return -y + z
	case 14:
		return y - x
	default:
		return -y - z
	}
}

// Noise3D returns a value in roughly [-1,1] at the given point.
func (p *perlinNoise) Noise3D(x, y, z float64) float64 {
	xi := int(math.Floor(x)) & 255
	yi := int(math.Floor(y)) & 255
	zi := int(math.Floor(z)) & 255
	xf := x - math.Floor(x)
	yf := y - math.Floor(y)
	zf := z - math.Floor(z)

	u := fade(xf)
	v := fade(yf)
	w := fade(zf)

	a := p.perm[xi] + yi
	aa := p.perm[a] + zi
	ab := p.perm[a+1] + zi
	b := p.perm[xi+1] + yi
	ba := p.perm[b] + zi
	bb := p.perm[b+1] + zi

	x1 := lerp64(gradDot(p.perm[aa], xf, yf, zf), gradDot(p.perm[ba], xf-1, yf, zf), u)
	x2 := lerp64(gradDot(p.perm[ab], xf, yf-1, zf), gradDot(p.perm[bb], xf-1, yf-1, zf), u)
	y1 := lerp64(x1, x2, v)

	x3 := lerp64(gradDot(p.perm[aa+1], xf, yf, zf-1), gradDot(p.perm[ba+1], xf-1, yf, zf-1), u)
	x4 := lerp64(gradDot(p.perm[ab+1], xf, yf-1, zf-1), gradDot(p.perm[bb+1], xf-1, yf-1, zf-1), u)
	y2 := lerp64(x3, x4, v)

	return lerp64(y1, y2, w)
}

func lerp64(a, b, t float64) float64 { return a + (b-a)*t }

// Fractal4Octaves sums 4 octaves of noise, amplitude halving and frequency doubling
// per octave (spec §4.1 turbulence contract).
func (p *perlinNoise) Fractal4Octaves(x, y, z float64) float64 {
	amp := 1.0
	freq := 1.0
	sum := 0.0
	norm := 0.0
	for o := 0; o < 4; o++ {
		sum += p.Noise3D(x*freq, y*freq, z*freq) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// curlNoiseEps is the finite-difference step used to numerically curl the noise
// field (spec §4.1: "eps = 0.01").
const curlNoiseEps = 0.01

// Vec3 returns a 3-channel noise vector sampled at three offset origins, used directly
// by the `noise` force field.
func (p *perlinNoise) Vec3(x, y, z float64) Vector3 {
	return Vector3{
		float32(p.Noise3D(x, y, z)),
		float32(p.Noise3D(x+37.2, y+17.1, z+91.7)),
		float32(p.Noise3D(x-53.9, y+29.4, z-11.3)),
	}
}

// Curl computes the numerical curl of a 3-channel Perlin noise field at (x,y,z),
// sampling each channel at an offset origin per spec §4.1.
func (p *perlinNoise) Curl(x, y, z float64) Vector3 {
	e := curlNoiseEps
	// Channel x is Noise3D itself; channels y and z use Vec3's offset origins.
	fy := func(x, y, z float64) float64 { return p.Noise3D(x+37.2, y+17.1, z+91.7) }
	fz := func(x, y, z float64) float64 { return p.Noise3D(x-53.9, y+29.4, z-11.3) }

	n1 := fz(x, y+e, z) - fz(x, y-e, z)
	n2 := fy(x, y, z+e) - fy(x, y, z-e)
	dx := (n1 - n2) / (2 * e)

	n3 := p.Noise3D(x, y, z+e) - p.Noise3D(x, y, z-e)
	n4 := fz(x+e, y, z) - fz(x-e, y, z)
	dy := (n3 - n4) / (2 * e)

	n5 := fy(x+e, y, z) - fy(x-e, y, z)
	n6 := p.Noise3D(x, y+e, z) - p.Noise3D(x, y-e, z)
	dz := (n5 - n6) / (2 * e)

	return Vector3{float32(dx), float32(dy), float32(dz)}
}

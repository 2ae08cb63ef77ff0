package pyroengine

import "math"

// evaluatePath evaluates a carrier's parametric path at progress t in [0,1] (spec §4.3
// property: at t=0 position is start, at t=1 position is target, exactly).
func evaluatePath(cfg PathConfig, start, target Vector3, t float32) Vector3 {
	switch cfg.Type {
	case PathBezier3D:
		return evaluateBezier3D(cfg, start, target, t)
	case PathSpiral:
		return evaluateSpiral(cfg, start, target, t)
	case PathHelix:
		return evaluateHelix(start, target, t)
	case PathArc:
		return evaluateArc(start, target, t)
	default: // PathLinear and any unrecognized type fall back to linear.
		return lerpVec3(start, target, t)
	}
}

func evaluateBezier3D(cfg PathConfig, start, target Vector3, t float32) Vector3 {
	switch len(cfg.ControlPoints) {
	case 0:
		mid := lerpVec3(start, target, 0.5)
		mid[1] += 20
		return quadraticBezier(start, mid, target, t)
	case 1:
		return quadraticBezier(start, cfg.ControlPoints[0], target, t)
	default:
		return cubicBezier(start, cfg.ControlPoints[0], cfg.ControlPoints[1], target, t)
	}
}

func quadraticBezier(p0, p1, p2 Vector3, t float32) Vector3 {
	u := 1 - t
	a := p0.Mul(u * u)
	b := p1.Mul(2 * u * t)
	c := p2.Mul(t * t)
	return a.Add(b).Add(c)
}

func cubicBezier(p0, p1, p2, p3 Vector3, t float32) Vector3 {
	u := 1 - t
	a := p0.Mul(u * u * u)
	b := p1.Mul(3 * u * u * t)
	c := p2.Mul(3 * u * t * t)
	d := p3.Mul(t * t * t)
	return a.Add(b).Add(c).Add(d)
}

func evaluateSpiral(cfg PathConfig, start, target Vector3, t float32) Vector3 {
	base := lerpVec3(start, target, t)
	radius := cfg.SpiralRadius
	freq := cfg.SpiralFrequency
	if freq == 0 {
		freq = 1
	}
	offsetMag := float32(math.Sin(math.Pi*float64(t))) * radius
	angle := float64(t) * float64(freq) * 2 * math.Pi
	base[0] += offsetMag * float32(math.Cos(angle))
	base[2] += offsetMag * float32(math.Sin(angle))
	return base
}

func evaluateHelix(start, target Vector3, t float32) Vector3 {
	base := lerpVec3(start, target, t)
	const amplitude = 10
	envelope := float32(math.Sin(math.Pi * float64(t)))
	angle := float64(t) * 2 * math.Pi
	base[0] += float32(math.Sin(angle)) * amplitude * envelope
	base[2] += float32(math.Cos(angle)) * amplitude * 0.3 * envelope
	return base
}

func evaluateArc(start, target Vector3, t float32) Vector3 {
	base := lerpVec3(start, target, t)
	const height = 30
	base[1] += height * 4 * t * (1 - t)
	return base
}

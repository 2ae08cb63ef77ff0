package pyroengine

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vector3 is the common spatial type threaded through every subsystem.
type Vector3 = mgl32.Vec3

func lerpVec3(a, b Vector3, t float32) Vector3 {
	return Vector3{
		lerpf(a[0], b[0], t),
		lerpf(a[1], b[1], t),
		lerpf(a[2], b[2], t),
	}
}

func lerpf(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampVec3Len scales v down to maxLen if it exceeds it; zero vectors pass through.
func clampVec3Len(v Vector3, maxLen float32) Vector3 {
	l := v.Len()
	if l <= maxLen || l == 0 {
		return v
	}
	return v.Mul(maxLen / l)
}

func powf(base, exp float32) float32 {
	return float32(math.Pow(float64(base), float64(exp)))
}

func sqrt32(v float32) float32 { return float32(math.Sqrt(float64(v))) }
func sin32(v float32) float32  { return float32(math.Sin(float64(v))) }
func cos32(v float32) float32  { return float32(math.Cos(float64(v))) }

// safeNormalize returns v normalized, or the zero vector if v is degenerate.
// Grounded on spec §7: degenerate geometry substitutes a zero contribution rather than panicking.
func safeNormalize(v Vector3) Vector3 {
	l := v.Len()
	if l < 1e-8 {
		return Vector3{}
	}
	return v.Mul(1 / l)
}

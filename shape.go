package pyroengine

import "math"

// ShapeGenerator maps a shape name + resolution + scale to a point cloud. It is
// treated as a pure function per spec §1/§6: the director never caches across calls.
// Real deployments plug in the full shape library (sphere, heart_3d, custom meshes,
// ...); this module ships a small default so the engine is runnable standalone.
type ShapeGenerator interface {
	// Generate returns resolution points and whether name was recognized. An
	// unrecognized name returns an empty slice and false — the caller (the particle
	// stream or the carrier subsystem) is responsible for logging the spec §6/§7
	// "unknown shape" warning.
	Generate(name string, resolution int, scale float32) ([]Vector3, bool)
}

// DefaultShapeGenerator implements a minimal built-in catalogue.
type DefaultShapeGenerator struct{}

func (DefaultShapeGenerator) Generate(name string, resolution int, scale float32) ([]Vector3, bool) {
	if resolution <= 0 {
		return nil, true
	}
	switch name {
	case "sphere":
		return generateSpherePoints(resolution, scale), true
	case "ring":
		return generateRingPoints(resolution, scale), true
	case "point":
		return generatePointCluster(resolution, scale), true
	case "cube":
		return generateCubePoints(resolution, scale), true
	default:
		return nil, false
	}
}

// generateSpherePoints distributes points roughly uniformly over a sphere surface
// using a Fibonacci spiral, a standard deterministic approximation.
func generateSpherePoints(n int, scale float32) []Vector3 {
	pts := make([]Vector3, n)
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		y := 1 - (float64(i)/float64(max(n-1, 1)))*2
		radiusAtY := math.Sqrt(max(0, 1-y*y))
		theta := goldenAngle * float64(i)
		x := math.Cos(theta) * radiusAtY
		z := math.Sin(theta) * radiusAtY
		pts[i] = Vector3{float32(x) * scale, float32(y) * scale, float32(z) * scale}
	}
	return pts
}

func generateRingPoints(n int, scale float32) []Vector3 {
	pts := make([]Vector3, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Vector3{float32(math.Cos(theta)) * scale, 0, float32(math.Sin(theta)) * scale}
	}
	return pts
}

func generatePointCluster(n int, scale float32) []Vector3 {
	pts := make([]Vector3, n)
	for i := range pts {
		pts[i] = Vector3{0, 0, 0}
	}
	_ = scale
	return pts
}

func generateCubePoints(n int, scale float32) []Vector3 {
	pts := make([]Vector3, n)
	side := int(math.Ceil(math.Cbrt(float64(n))))
	if side < 1 {
		side = 1
	}
	i := 0
	for ix := 0; ix < side && i < n; ix++ {
		for iy := 0; iy < side && i < n; iy++ {
			for iz := 0; iz < side && i < n; iz++ {
				fx := float32(ix)/float32(max(side-1, 1))*2 - 1
				fy := float32(iy)/float32(max(side-1, 1))*2 - 1
				fz := float32(iz)/float32(max(side-1, 1))*2 - 1
				pts[i] = Vector3{fx * scale, fy * scale, fz * scale}
				i++
			}
		}
	}
	return pts
}


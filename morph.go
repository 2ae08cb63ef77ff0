package pyroengine

import (
	"math/rand"
	"sort"
)

// MorphMode selects the per-particle convergence behavior (spec §4.2).
type MorphMode int

const (
	MorphPhysics MorphMode = iota
	MorphSmooth
	MorphSnap
)

// MorphConfig carries the morphing engine's tunables; DefaultMorphConfig matches the
// defaults spec §4.2 lists.
type MorphConfig struct {
	Mode                MorphMode
	Duration            float32
	Easing              Curve
	AttractionStrength  float32
	Damping             float32
	MaxSpeed            float32
	ArrivalThreshold    float32
}

func DefaultMorphConfig() MorphConfig {
	return MorphConfig{
		Mode:               MorphPhysics,
		Duration:           1.5,
		Easing:             NewEaseInOutCurve(),
		AttractionStrength: 6000,
		Damping:            0.95,
		MaxSpeed:           8000,
		ArrivalThreshold:   1.0,
	}
}

// MorphParticle is the morphing engine's view of a particle — a mirror of the fields
// the particle stream overwrites from each tick (spec §4.4: "positions and velocities
// in the particle stream are overwritten each tick from the morphing engine's mirror
// structure").
type MorphParticle struct {
	ID            ParticleID
	Position      Vector3
	Velocity      Vector3
	Target        Vector3
	Origin        Vector3
	MorphProgress float32
	IsMorphing    bool
	IsExcess      bool
}

// MorphingEngine performs assignment followed by convergence for a batch of
// particles against a batch of target points (spec §4.2).
type MorphingEngine struct {
	rng *rand.Rand
}

func NewMorphingEngine(seed int64) *MorphingEngine {
	return &MorphingEngine{rng: rand.New(rand.NewSource(seed))}
}

// Start assigns origins/targets/excess flags for a fresh morph. Particles keep their
// current Position as Origin.
func (e *MorphingEngine) Start(particles []*MorphParticle, targets []Vector3) {
	for _, p := range particles {
		p.Origin = p.Position
		p.IsMorphing = true
		p.IsExcess = false
		p.MorphProgress = 0
	}
	e.assign(particles, targets)
}

// greedyIndexThreshold bounds greedy nearest-distance matching cost (spec §4.2:
// "where |particles|·|targets| ≤ 10^6, otherwise index-order").
const greedyIndexThreshold = 1_000_000

func (e *MorphingEngine) assign(particles []*MorphParticle, targets []Vector3) {
	n := len(particles)
	m := len(targets)
	if m == 0 {
		for _, p := range particles {
			p.IsExcess = true
			p.Target = p.Position
			p.MorphProgress = 1
		}
		return
	}

	if n <= m {
		if int64(n)*int64(m) <= greedyIndexThreshold {
			e.greedyAssign(particles, targets)
		} else {
			for i, p := range particles {
				p.Target = targets[i%m]
			}
		}
		return
	}

	// n > m: mark the n-m farthest-from-centroid particles as excess, greedy-match
	// the remainder one-to-one.
	var centroid Vector3
	for _, p := range particles {
		centroid = centroid.Add(p.Position)
	}
	centroid = centroid.Mul(1 / float32(n))

	type ranked struct {
		idx int
		d   float32
	}
	dists := make([]ranked, n)
	for i, p := range particles {
		dists[i] = ranked{i, p.Position.Sub(centroid).LenSqr()}
	}
	sort.SliceStable(dists, func(i, j int) bool { return dists[i].d > dists[j].d })

	excessCount := n - m
	excess := make([]bool, n)
	for i := 0; i < excessCount; i++ {
		excess[dists[i].idx] = true
	}

	remaining := make([]*MorphParticle, 0, m)
	for i, p := range particles {
		if excess[i] {
			p.IsExcess = true
			p.Target = p.Position
			p.MorphProgress = 1
		} else {
			remaining = append(remaining, p)
		}
	}
	e.greedyAssign(remaining, targets)
}

// greedyAssign computes all pairwise squared distances, sorts ascending, and assigns
// each particle/target pair in that order if both ends are still unassigned — the
// tie-break for equal distances falls back to encounter order (construction order)
// since sort.SliceStable is used, matching spec §6's determinism requirement.
func (e *MorphingEngine) greedyAssign(particles []*MorphParticle, targets []Vector3) {
	n := len(particles)
	m := len(targets)
	if n == 0 || m == 0 {
		return
	}
	type pairDist struct {
		pi, ti int
		d      float32
	}
	pairs := make([]pairDist, 0, n*m)
	for i, p := range particles {
		for j, t := range targets {
			pairs = append(pairs, pairDist{i, j, p.Position.Sub(t).LenSqr()})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].d < pairs[j].d })

	assignedP := make([]bool, n)
	assignedT := make([]bool, m)
	count := 0
	for _, pr := range pairs {
		if assignedP[pr.pi] || assignedT[pr.ti] {
			continue
		}
		particles[pr.pi].Target = targets[pr.ti]
		assignedP[pr.pi] = true
		assignedT[pr.ti] = true
		count++
		if count == n {
			break
		}
	}
}

// Tick advances every particle one step of convergence. elapsed/duration together
// form the shared timer "progress" spec §4.2 uses for smooth/snap modes and for
// overall morph completion.
func (e *MorphingEngine) Tick(particles []*MorphParticle, dt float32, elapsed, duration float32, cfg MorphConfig) {
	progress := float32(1)
	if duration > 1e-8 {
		progress = elapsed / duration
	}

	for _, p := range particles {
		if !p.IsMorphing {
			continue
		}
		if p.IsExcess {
			e.tickExcess(p, dt)
			continue
		}
		switch cfg.Mode {
		case MorphSmooth:
			e.tickSmooth(p, progress, cfg)
		case MorphSnap:
			e.tickSnap(p, progress)
		default:
			e.tickPhysics(p, dt, cfg)
		}
	}

	if progress >= 1 {
		for _, p := range particles {
			p.IsMorphing = false
			p.MorphProgress = 1
		}
	}
}

func (e *MorphingEngine) tickSmooth(p *MorphParticle, progress float32, cfg MorphConfig) {
	eased := cfg.Easing.Eval(clampf(progress, 0, 1))
	p.Position = lerpVec3(p.Origin, p.Target, eased)
	p.MorphProgress = clampf(progress, 0, 1)
}

func (e *MorphingEngine) tickSnap(p *MorphParticle, progress float32) {
	if progress >= 0.5 {
		p.Position = p.Target
	}
	p.MorphProgress = clampf(progress, 0, 1)
}

func (e *MorphingEngine) tickPhysics(p *MorphParticle, dt float32, cfg MorphConfig) {
	toTarget := p.Target.Sub(p.Position)
	dir := safeNormalize(toTarget)
	p.Velocity = p.Velocity.Add(dir.Mul(cfg.AttractionStrength * dt))
	p.Velocity = p.Velocity.Mul(cfg.Damping)
	p.Velocity = clampVec3Len(p.Velocity, cfg.MaxSpeed)
	p.Position = p.Position.Add(p.Velocity.Mul(dt))

	distSq := p.Target.Sub(p.Position).LenSqr()
	if distSq < cfg.ArrivalThreshold {
		p.Position = p.Target
		p.Velocity = p.Velocity.Mul(0.1)
	}

	originDist := p.Target.Sub(p.Origin).Len()
	if originDist < 1e-6 {
		p.MorphProgress = 1
		return
	}
	targetDist := p.Target.Sub(p.Position).Len()
	p.MorphProgress = clampf(1-targetDist/originDist, 0, 1)
}

// excessDriftSigma bounds the standard deviation of the excess particles' random
// drift impulse (spec §4.2: "bounded standard deviation").
const excessDriftSigma = 40

func (e *MorphingEngine) tickExcess(p *MorphParticle, dt float32) {
	impulse := Vector3{
		float32(e.rng.NormFloat64()) * excessDriftSigma,
		float32(e.rng.NormFloat64()) * excessDriftSigma,
		float32(e.rng.NormFloat64()) * excessDriftSigma,
	}
	p.Velocity = p.Velocity.Add(impulse.Mul(dt)).Mul(0.98)
	p.Position = p.Position.Add(p.Velocity.Mul(dt))
	p.MorphProgress = 1
}

package pyroengine

import (
	"math/rand"
	"runtime"
	"sync"
)

// streamState models the particle stream's state machine (spec §4.4):
// idle -> spawning -> active -> (morphing <-> active) -> fading -> extinct.
type streamState int

const (
	streamIdle streamState = iota
	streamSpawning
	streamActive
	streamMorphing
	streamFading
	streamExtinct
)

// StreamParticle is owned exclusively by a ParticleStream (spec §3).
type StreamParticle struct {
	ID           ParticleID
	Position     Vector3
	Velocity     Vector3
	Acceleration Vector3
	Mass         float32

	Hue        float32
	Saturation float32
	Lightness  float32
	Alpha      float32
	Size       float32

	Temperature float32

	Age      float32
	LifeTime float32
	StageAge float32
	IsDead   bool

	TargetPosition Vector3
	OriginPosition Vector3
	MorphProgress  float32
	IsMorphing     bool

	UserData any

	// colorIndex is the i/count fraction used to sample color_map at spawn and, on a
	// subsequent morph, to resample the new color_map at the same position in the
	// gradient — so currentColor/targetColor snapshot the cross-fade endpoints that
	// updateAppearance interpolates between (spec §4.4.4 item 5).
	colorIndex   float32
	currentColor HSLA
	targetColor  HSLA

	// fadeScalar is the accumulated extinction-fade multiplier (spec §4.4.4 item 6:
	// "while fading, alpha *= max(0, 1-2*dt) each tick"). It must live outside
	// updateAppearance's gradient cross-fade, which recomputes Alpha from scratch every
	// tick — without a separately accumulated scalar the fade multiply would apply to a
	// freshly reset value and never compound toward zero.
	fadeScalar float32
}

// ExtinctionConfig parameterizes start_extinction (spec §4.4.3). Zero-valued optional
// fields fall back to the documented defaults.
type ExtinctionConfig struct {
	Mode            ExtinctionMode
	GravityStrength float32 // fall: default 15
	Wind            *ForceField
}

// ParticleStream is a single firework's payload: pool, force fields, morphing engine,
// and the live particle list (spec §4.4). It is owned by exactly one FireworkInstance.
type ParticleStream struct {
	pool   *pool
	active []*StreamParticle
	ids    particleIDCounter
	rng    *rand.Rand

	forces *ForceFieldSystem
	morph  *MorphingEngine
	shapes ShapeGenerator
	logger Logger

	state       streamState
	spawnCenter Vector3

	isInitialStage      bool
	bloomFactor         float32
	bloomDuration       float32
	stageClockAge       float32
	sizeGrowthCompleted bool
	growDuration        float32
	baseSize            float32
	sizeCurve           Curve
	useBlackbody        bool
	coolingRate         float32

	morphCfg       MorphConfig
	morphElapsed   float32
	morphDuration  float32
	morphMirror    []*MorphParticle

	// velocityProfile scales each non-morphing particle's speed over stage_age/life_time
	// (spec §3 DynamicsConfig.velocity_profile; the per-tick formula is this module's
	// own, since §4.4.4 does not give one — see DESIGN.md).
	velocityProfile Curve
}

// NewParticleStream constructs an empty stream with a fixed-capacity pool and
// deterministic seeds for its force-field noise and morphing engine (spec §6).
func NewParticleStream(capacity int, seed int64, shapes ShapeGenerator, logger Logger) *ParticleStream {
	if shapes == nil {
		shapes = DefaultShapeGenerator{}
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &ParticleStream{
		pool:    newPool(capacity),
		rng:     rand.New(rand.NewSource(seed)),
		forces:  NewForceFieldSystem(seed),
		morph:   NewMorphingEngine(seed + 1),
		shapes:  shapes,
		logger:  logger,
		state:   streamIdle,
		sizeCurve: NewLinearCurve(),
	}
}

// SetSpawnCenter is set once by the director at carrier arrival (spec §4.5
// on_carrier_arrive).
func (s *ParticleStream) SetSpawnCenter(center Vector3) {
	s.spawnCenter = center
}

func (s *ParticleStream) resolveTargetPoints(topology TopologyConfig) []Vector3 {
	pts, ok := s.shapes.Generate(topology.Source, topology.Resolution, topology.Scale)
	if !ok {
		s.logger.Warnf("particlestream: unknown shape %q, spawning at spawn center only", topology.Source)
	}
	out := make([]Vector3, len(pts))
	for i, p := range pts {
		out[i] = p.Add(topology.Offset)
	}
	return out
}

// Spawn implements spec §4.4.1. lifeTime is the owning stage's duration and becomes
// every spawned particle's LifeTime; a particle dies once its Age exceeds it.
func (s *ParticleStream) Spawn(count int, topology TopologyConfig, dynamics DynamicsConfig, rendering RenderingConfig, lifeTime float32) {
	s.state = streamSpawning
	targets := s.resolveTargetPoints(topology)
	n := len(targets)
	if n == 0 {
		n = count
	}
	if count > n && n > 0 {
		count = n
	}

	structurePreserve := dynamics.InitialVelocity.Mode == VelocityStructurePreserve

	for i := 0; i < count; i++ {
		sp := s.pool.acquire()
		if sp == nil {
			s.logger.Debugf("particlestream: pool exhausted, clamping spawn at %d of %d", i, count)
			break
		}
		sp.ID = s.ids.nextID()
		sp.Mass = 1
		sp.LifeTime = lifeTime
		sp.Age = 0
		sp.StageAge = 0
		sp.IsDead = false
		sp.IsMorphing = false
		sp.MorphProgress = 0
		sp.fadeScalar = 1

		var targetPoint Vector3
		if n > 0 {
			targetPoint = targets[i%n]
		}

		if structurePreserve {
			sp.Position = s.spawnCenter.Add(targetPoint)
			sp.TargetPosition = sp.Position
			sp.Velocity = Vector3{
				(s.rng.Float32()*2 - 1) * 0.5,
				(s.rng.Float32()*2 - 1) * 0.5,
				(s.rng.Float32()*2 - 1) * 0.5,
			}
		} else {
			sp.Position = s.spawnCenter
			sp.TargetPosition = s.spawnCenter.Add(targetPoint)
			sp.Velocity = s.seedVelocity(dynamics.InitialVelocity, targetPoint)
		}
		sp.OriginPosition = sp.Position

		frac := float32(0)
		if count > 0 {
			frac = float32(i) / float32(count)
		}
		sp.colorIndex = frac
		color := rendering.ColorMap.Sample(frac)
		sp.currentColor = color
		sp.targetColor = color
		sp.Hue, sp.Saturation, sp.Lightness, sp.Alpha = color.Hue, color.Saturation, color.Lightness, color.Alpha
		sp.Size = rendering.BaseSize
		if rendering.UseBlackbody {
			sp.Temperature = rendering.InitialTemperature
		}

		s.active = append(s.active, sp)
	}

	s.forces.SetForceFields(dynamics.ForceFields)
	s.velocityProfile = dynamics.VelocityProfile

	s.baseSize = rendering.BaseSize
	s.sizeCurve = rendering.SizeCurve
	s.useBlackbody = rendering.UseBlackbody
	s.coolingRate = rendering.CoolingRate
	s.growDuration = rendering.GrowDuration
	if s.growDuration <= 0 {
		s.growDuration = 1
	}

	if rendering.bloomEnabled() {
		s.bloomFactor = 0
	} else {
		s.bloomFactor = 1
	}
	s.bloomDuration = rendering.BloomDuration
	if s.bloomDuration <= 0 {
		s.bloomDuration = 1
	}
	s.isInitialStage = true
	s.sizeGrowthCompleted = false
	s.stageClockAge = 0

	s.state = streamActive
}

func (s *ParticleStream) seedVelocity(cfg InitialVelocityConfig, targetPoint Vector3) Vector3 {
	speed := cfg.Speed.sample(s.rng.Float32)
	switch cfg.Mode {
	case VelocityDirectional:
		return safeNormalize(cfg.Direction).Mul(speed)
	case VelocityRandom:
		return Vector3{
			(s.rng.Float32()*2 - 1) * speed,
			(s.rng.Float32()*2 - 1) * speed,
			(s.rng.Float32()*2 - 1) * speed,
		}
	case VelocityTargetSeeking:
		return safeNormalize(targetPoint).Mul(speed)
	default: // VelocityRadial and any unrecognized mode.
		z := s.rng.Float32()*2 - 1
		phi := s.rng.Float32() * 2 * 3.14159265
		r := float32(0)
		if sq := 1 - z*z; sq > 0 {
			r = sqrt32(sq)
		}
		dir := Vector3{r * cos32(phi), z, r * sin32(phi)}
		return dir.Mul(speed)
	}
}

// StartMorph implements spec §4.4.2.
func (s *ParticleStream) StartMorph(topology TopologyConfig, rendering *RenderingConfig, cfg MorphConfig) {
	if len(s.active) == 0 {
		s.logger.Debugf("particlestream: start_morph called with no live particles, deferring")
		return
	}
	targets := s.resolveTargetPoints(topology)
	translated := make([]Vector3, len(targets))
	for i, t := range targets {
		translated[i] = t.Add(s.spawnCenter)
	}

	s.morphMirror = make([]*MorphParticle, len(s.active))
	for i, p := range s.active {
		p.StageAge = 0
		s.morphMirror[i] = &MorphParticle{
			ID:       p.ID,
			Position: p.Position,
			Velocity: p.Velocity,
		}
	}
	s.morph.Start(s.morphMirror, translated)
	for i, p := range s.active {
		p.IsMorphing = true
		p.MorphProgress = 0
		p.OriginPosition = s.morphMirror[i].Origin
		p.TargetPosition = s.morphMirror[i].Target
	}

	s.morphCfg = cfg
	s.morphElapsed = 0
	s.morphDuration = cfg.Duration
	if s.morphDuration <= 0 {
		s.morphDuration = 1.5
	}

	if rendering != nil {
		for _, p := range s.active {
			p.currentColor = HSLA{p.Hue, p.Saturation, p.Lightness, p.Alpha}
			p.targetColor = rendering.ColorMap.Sample(p.colorIndex)
		}
		s.baseSize = rendering.BaseSize
		s.sizeCurve = rendering.SizeCurve
		s.useBlackbody = rendering.UseBlackbody
		s.coolingRate = rendering.CoolingRate
	}

	s.bloomFactor = 1
	s.isInitialStage = false
	s.state = streamMorphing
}

// StartExtinction implements spec §4.4.3.
func (s *ParticleStream) StartExtinction(cfg ExtinctionConfig) {
	s.forces.Clear()
	for _, p := range s.active {
		p.fadeScalar = 1
	}
	switch cfg.Mode {
	case ExtinctionFall:
		gravity := cfg.GravityStrength
		if gravity == 0 {
			gravity = 15
		}
		s.forces.Add(ForceField{Kind: ForceGravity, Enabled: true, Strength: gravity, Direction: Vector3{0, -1, 0}})
		s.forces.Add(ForceField{Kind: ForceDrag, Enabled: true, Strength: 0.02})
		if cfg.Wind != nil {
			s.forces.Add(*cfg.Wind)
		}
	case ExtinctionFloat:
		s.forces.Add(ForceField{Kind: ForceDrag, Enabled: true, Strength: 0.1})
		s.forces.Add(ForceField{Kind: ForceTurbulence, Enabled: true, Strength: 1})
	case ExtinctionDissolve:
		s.forces.Add(ForceField{Kind: ForceDrag, Enabled: true, Strength: 0.5})
	case ExtinctionExplode:
		for _, p := range s.active {
			speed := 20 + s.rng.Float32()*30
			p.Velocity = s.seedVelocity(InitialVelocityConfig{Mode: VelocityRadial, Speed: Fixed(speed)}, Vector3{})
		}
		s.forces.Add(ForceField{Kind: ForceDrag, Enabled: true, Strength: 0.05})
	case ExtinctionImplode:
		s.forces.Add(ForceField{Kind: ForceAttraction, Enabled: true, Strength: 30, Center: s.spawnCenter, Radius: 200})
	}
	s.state = streamFading
}

// Tick advances every live particle by dt (spec §4.4.4). If a morph is in flight, the
// morphing engine's mirror drives position/velocity instead of direct force
// integration; the stream still applies appearance/size/death to every particle.
func (s *ParticleStream) Tick(dt float32) {
	s.forces.UpdateTime(float64(dt))

	if s.morphMirror != nil {
		s.morphElapsed += dt
		s.morph.Tick(s.morphMirror, dt, s.morphElapsed, s.morphDuration, s.morphCfg)
		for i, p := range s.active {
			m := s.morphMirror[i]
			p.Position = m.Position
			p.Velocity = m.Velocity
			p.MorphProgress = m.MorphProgress
			p.IsMorphing = m.IsMorphing
		}
		if s.morphElapsed/s.morphDuration >= 1 {
			s.morphMirror = nil
			s.state = streamActive
		}
	}

	if s.isInitialStage && s.bloomFactor < 1 {
		s.bloomFactor = clampf(s.bloomFactor+dt/s.bloomDuration, 0, 1)
	}
	if s.isInitialStage && !s.sizeGrowthCompleted {
		s.stageClockAge += dt
		if s.stageClockAge >= s.growDuration {
			s.sizeGrowthCompleted = true
		}
	}

	s.tickParticles(dt)
	s.compact()

	if len(s.active) == 0 && s.state != streamIdle && s.state != streamSpawning {
		s.state = streamExtinct
	}
}

// parallelTickThreshold is the live-particle count at or above which Tick fans the
// per-particle loop out across worker goroutines (spec §5/§8: below this, the
// single-threaded path avoids goroutine overhead for the common small-stream case).
const parallelTickThreshold = 2000

// maxTickWorkers caps the worker pool regardless of GOMAXPROCS, matching the
// teacher's own cap in its emitter simulation worker pool.
const maxTickWorkers = 8

func (s *ParticleStream) tickParticles(dt float32) {
	n := len(s.active)
	if n < parallelTickThreshold {
		for _, p := range s.active {
			s.tickParticle(p, dt)
		}
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > maxTickWorkers {
		workers = maxTickWorkers
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= n {
			break
		}
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				s.tickParticle(s.active[i], dt)
			}
		}(start, end)
	}
	wg.Wait()
}

func (s *ParticleStream) tickParticle(p *StreamParticle, dt float32) {
	p.Age += dt
	p.StageAge += dt

	if !p.IsMorphing {
		p.Acceleration = s.forces.Acceleration(p.Position, p.Velocity, p.Mass)

		if s.isInitialStage && s.bloomFactor < 1 {
			t := s.bloomFactor
			easeT := 1 - (1-t)*(1-t)*(1-t)
			virtualTarget := lerpVec3(s.spawnCenter, p.TargetPosition, easeT)
			nudge := virtualTarget.Sub(p.Position).Mul((1 - easeT) * 5 * dt)
			p.Velocity = p.Velocity.Add(nudge)
		}

		p.Velocity = p.Velocity.Add(p.Acceleration.Mul(dt))
		// An explicitly configured velocity_profile damps/boosts speed over the stage's
		// lifetime; an unconfigured (empty) curve is neutral so plain force integration
		// is the default (see DESIGN.md: spec §3 declares the field but not its tick
		// formula).
		if len(s.velocityProfile.Points) > 0 && p.LifeTime > 1e-8 {
			scale := s.velocityProfile.Eval(clampf(p.StageAge/p.LifeTime, 0, 1))
			p.Velocity = p.Velocity.Mul(powf(scale, dt))
		}
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
	}

	s.updateAppearance(p, dt)

	if s.state == streamFading {
		p.fadeScalar *= clampf(1-2*dt, 0, 1)
		p.Alpha *= p.fadeScalar
	}

	s.updateSize(p)

	if p.Age > p.LifeTime || p.Alpha <= 0 || p.Position[1] < -200 || p.Position.Len() > 50000 {
		p.IsDead = true
	}
}

func (s *ParticleStream) updateAppearance(p *StreamParticle, dt float32) {
	t := float32(1)
	if p.StageAge < 1.5 {
		t = p.StageAge / 1.5
	}
	c := lerpHSLA(p.currentColor, p.targetColor, clampf(t, 0, 1))
	p.Hue, p.Saturation, p.Lightness, p.Alpha = c.Hue, c.Saturation, c.Lightness, c.Alpha

	if p.LifeTime > 1e-8 {
		p.Alpha *= clampf(1-0.5*p.Age/p.LifeTime, 0, 1)
	}

	if s.useBlackbody {
		p.Temperature = clampf(p.Temperature-s.coolingRate*dt, 500, 100000)
		hue, lightness := blackbodyHSLA(p.Temperature)
		p.Hue = hue
		p.Lightness = lightness
	}
}

func (s *ParticleStream) updateSize(p *StreamParticle) {
	if s.isInitialStage && !s.sizeGrowthCompleted {
		t := clampf(p.StageAge/s.growDuration, 0, 1)
		p.Size = lerpf(0.1, s.baseSize, t)
	} else {
		p.Size = s.baseSize
	}
	// An explicitly configured size_curve additionally shapes size over the particle's
	// full lifetime; unconfigured, it is neutral (see DESIGN.md, same gap as
	// velocity_profile: spec §3 declares the field without a §4.4.4 tick formula).
	if len(s.sizeCurve.Points) > 0 && p.LifeTime > 1e-8 {
		p.Size *= s.sizeCurve.Eval(clampf(p.Age/p.LifeTime, 0, 1))
	}
	if p.LifeTime > 1e-8 && p.Age/p.LifeTime > 0.8 {
		p.Size *= 0.98
	}
}

// compact removes dead particles back-to-front, releasing them to the pool, and
// preserves the live particles' relative order (spec §4.4.4: "removed in a
// back-to-front pass to preserve remaining indices").
func (s *ParticleStream) compact() {
	for i := len(s.active) - 1; i >= 0; i-- {
		if s.active[i].IsDead {
			s.pool.release(s.active[i])
			s.active = append(s.active[:i], s.active[i+1:]...)
		}
	}
}

// LiveParticles returns every particle currently in the active list (all are live;
// dead ones are removed at the end of each Tick).
func (s *ParticleStream) LiveParticles() []*StreamParticle {
	return s.active
}

func (s *ParticleStream) IsExtinct() bool {
	return s.state == streamExtinct
}

func (s *ParticleStream) State() streamState {
	return s.state
}

package pyroengine

import "math/rand"

// fireworkState tracks a FireworkInstance's coarse lifecycle (spec §3).
type fireworkState int

const (
	fireworkCarrier fireworkState = iota
	fireworkPayload
	fireworkExtinct
)

// FireworkInstance is owned exclusively by the Director (spec §3).
type FireworkInstance struct {
	ID       FireworkID
	Manifest *FireworkManifest
	Launch   Vector3
	Target   Vector3

	CarrierID      CarrierID
	hasCarrier     bool
	ParticleStream *ParticleStream

	CurrentStageIndex int
	StageStartTime    float64
	Elapsed           float64
	State             fireworkState
	HueOverride       float32

	invisibleArriveAt float64

	// hasPendingMorph is spec §9's "spawn then morph is deferred to next dispatch"
	// policy: a morph-mode stage with zero live particles spawns a neutral point
	// cluster first, then retries start_stage on the next Update tick once particles
	// exist to morph from (see DESIGN.md Open Question 3).
	hasPendingMorph bool
}

// EngineStats is the concrete shape of spec §4.5's get_stats().
type EngineStats struct {
	ActiveFireworks int
	TotalParticles  int
	TrailParticles  int
	TotalLaunched   int
	TotalExtinct    int
	PeakParticles   int
}

// defaultStreamCapacity is the per-stream particle pool size a Director hands to each
// ParticleStream it creates (spec §4.4: "fixed-capacity pool (default 5000)").
const defaultStreamCapacity = 5000

// Director owns the manifest registry, the firework instance map, the carrier
// subsystem, and the simulation clock (spec §4.5). It is the root of the simulation
// ownership graph below Engine.
type Director struct {
	manifests map[ManifestID]*FireworkManifest
	fireworks map[FireworkID]*FireworkInstance
	order     []FireworkID

	carriers *CarrierSubsystem
	shapes   ShapeGenerator
	logger   Logger

	clock     *clock
	timeScale float64
	paused    bool

	streamSeed int64
	hueRng     *rand.Rand

	stats EngineStats
}

// NewDirector constructs a Director. A nil logger installs the nop logger (spec §7).
func NewDirector(logger Logger) *Director {
	if logger == nil {
		logger = NewNopLogger()
	}
	shapes := DefaultShapeGenerator{}
	return &Director{
		manifests: make(map[ManifestID]*FireworkManifest),
		fireworks: make(map[FireworkID]*FireworkInstance),
		carriers:  NewCarrierSubsystem(shapes, logger),
		shapes:    shapes,
		logger:    logger,
		clock:     newClock(),
		timeScale: 1,
		hueRng:    rand.New(rand.NewSource(1)),
	}
}

// SetLogger swaps the logger used by the director and its carrier subsystem.
func (d *Director) SetLogger(logger Logger) {
	if logger == nil {
		logger = NewNopLogger()
	}
	d.logger = logger
	d.carriers.logger = logger
}

// SetShapeGenerator overrides the default built-in shape catalogue (spec §6: the
// shape generator is an external, pluggable, pure function).
func (d *Director) SetShapeGenerator(shapes ShapeGenerator) {
	if shapes == nil {
		shapes = DefaultShapeGenerator{}
	}
	d.shapes = shapes
	d.carriers.shapes = shapes
}

// RegisterManifest validates and stores a manifest, returning ErrMissingStages if it
// has no payload stages (spec §6).
func (d *Director) RegisterManifest(m *FireworkManifest) error {
	if err := validateManifest(m); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = newManifestID()
	}
	d.manifests[m.ID] = m
	return nil
}

// Launch implements spec §4.5 launch(). It returns ("", false) if the manifest is not
// registered — launch failure is a logged warning, not a Go error (spec §7).
func (d *Director) Launch(manifestID ManifestID, launchPos, targetPos Vector3, hue *float32) (FireworkID, bool) {
	m, ok := d.manifests[manifestID]
	if !ok {
		d.logger.Warnf("director: launch requested unknown manifest %q", manifestID)
		return "", false
	}

	id := newFireworkID()

	inst := &FireworkInstance{
		ID:       id,
		Manifest: m,
		Launch:   launchPos,
		Target:   targetPos,
		State:    fireworkCarrier,
	}
	if hue != nil {
		inst.HueOverride = *hue
	} else {
		inst.HueOverride = d.randomHue()
	}

	d.fireworks[id] = inst
	d.order = append(d.order, id)
	d.stats.TotalLaunched++

	if m.Carrier.Type == CarrierInvisible {
		inst.invisibleArriveAt = d.clock.globalTime + float64(m.Carrier.Duration)
	} else {
		firework := inst
		cid := d.carriers.CreateCarrier(m.Carrier, launchPos, targetPos, inst.HueOverride, func(CarrierID) {
			d.onCarrierArrive(firework)
		})
		inst.CarrierID = cid
		inst.hasCarrier = true
	}

	return id, true
}

func (d *Director) randomHue() float32 {
	return d.hueRng.Float32() * 360
}

// onCarrierArrive implements spec §4.5 on_carrier_arrive.
func (d *Director) onCarrierArrive(f *FireworkInstance) {
	f.State = fireworkPayload
	f.ParticleStream = NewParticleStream(defaultStreamCapacity, d.streamSeed, d.shapes, d.logger)
	d.streamSeed++
	f.ParticleStream.SetSpawnCenter(f.Target)
	f.CurrentStageIndex = 0
	f.StageStartTime = d.clock.globalTime
	d.startStage(f, 0)
}

// startStage implements spec §4.5 start_stage, dispatching by transition_mode.
func (d *Director) startStage(f *FireworkInstance, stageIndex int) {
	stages := f.Manifest.Payload.Stages
	if stageIndex < 0 || stageIndex >= len(stages) {
		return
	}
	stage := stages[stageIndex]
	stream := f.ParticleStream

	switch stage.Dynamics.TransitionMode {
	case TransitionMorph:
		if len(stream.LiveParticles()) == 0 {
			seedTopology := TopologyConfig{Source: "point", Resolution: stage.Topology.Resolution, Scale: 0}
			stream.Spawn(seedTopology.Resolution, seedTopology, stage.Dynamics, stage.Rendering, stage.Duration)
			f.hasPendingMorph = true
		} else {
			rendering := stage.Rendering
			morphCfg := DefaultMorphConfig()
			if stage.Dynamics.MorphAttractionStrength != 0 {
				morphCfg.AttractionStrength = stage.Dynamics.MorphAttractionStrength
			}
			if stage.Dynamics.MorphDamping != 0 {
				morphCfg.Damping = stage.Dynamics.MorphDamping
			}
			stream.StartMorph(stage.Topology, &rendering, morphCfg)
		}
	case TransitionMaintain:
		stream.forces.SetForceFields(stage.Dynamics.ForceFields)
	default: // explode, accumulate, scatter
		stream.Spawn(stage.Topology.Resolution, stage.Topology, stage.Dynamics, stage.Rendering, stage.Duration)
	}
}

// Update implements spec §4.5 update(dt), the frame entry point.
func (d *Director) Update(dt float64) {
	if d.paused {
		return
	}
	scaled, ok := d.clock.advance(dt, d.timeScale)
	if !ok {
		return
	}

	d.carriers.Tick(float32(scaled))
	d.checkInvisibleArrivals()

	peak := 0
	for _, id := range d.order {
		f, ok := d.fireworks[id]
		if !ok {
			continue
		}
		d.tickFirework(f, scaled)
		if f.ParticleStream != nil {
			peak += len(f.ParticleStream.LiveParticles())
		}
	}
	if peak > d.stats.PeakParticles {
		d.stats.PeakParticles = peak
	}

	d.purgeExtinct()
}

func (d *Director) checkInvisibleArrivals() {
	for _, f := range d.fireworks {
		if f.State != fireworkCarrier || f.hasCarrier {
			continue
		}
		if d.clock.globalTime >= f.invisibleArriveAt {
			d.onCarrierArrive(f)
		}
	}
}

func (d *Director) tickFirework(f *FireworkInstance, dt float64) {
	f.Elapsed += dt
	if f.State != fireworkPayload || f.ParticleStream == nil {
		return
	}

	// A deferred morph dispatches on the first Update after the one that spawned its
	// seed cluster (StageStartTime is that Update's global time).
	if f.hasPendingMorph && d.clock.globalTime > f.StageStartTime {
		f.hasPendingMorph = false
		d.startStage(f, f.CurrentStageIndex)
	}

	f.ParticleStream.Tick(float32(dt))

	stages := f.Manifest.Payload.Stages
	if f.CurrentStageIndex < len(stages) {
		stage := stages[f.CurrentStageIndex]
		if d.clock.globalTime-f.StageStartTime >= float64(stage.Duration) {
			next := f.CurrentStageIndex + 1
			if next < len(stages) {
				f.CurrentStageIndex = next
				f.StageStartTime = d.clock.globalTime
				d.startStage(f, next)
			} else {
				f.ParticleStream.StartExtinction(d.defaultExtinctionFor(f))
			}
		}
	}

	if f.ParticleStream.IsExtinct() {
		f.State = fireworkExtinct
	}
}

// defaultExtinctionFor returns the extinction every firework gets once its last stage
// ends: fall with gravity 15. StartExtinction replaces the stream's force fields, so a
// final maintain-mode stage does not change it, and the manifest has no field that
// selects another mode (spec §4.4.3 lists the catalogue).
func (d *Director) defaultExtinctionFor(f *FireworkInstance) ExtinctionConfig {
	return ExtinctionConfig{Mode: ExtinctionFall, GravityStrength: 15}
}

func (d *Director) purgeExtinct() {
	for i := 0; i < len(d.order); {
		id := d.order[i]
		f := d.fireworks[id]
		if f != nil && f.State == fireworkExtinct {
			delete(d.fireworks, id)
			d.order = append(d.order[:i], d.order[i+1:]...)
			d.stats.TotalExtinct++
			continue
		}
		i++
	}
}

// GetAllParticles implements spec §4.5 get_all_particles (live only, across every
// active firework).
func (d *Director) GetAllParticles() []*StreamParticle {
	var out []*StreamParticle
	for _, id := range d.order {
		f := d.fireworks[id]
		if f == nil || f.ParticleStream == nil {
			continue
		}
		out = append(out, f.ParticleStream.LiveParticles()...)
	}
	return out
}

// GetAllTrailParticles implements spec §4.5 get_all_trail_particles.
func (d *Director) GetAllTrailParticles() []TrailParticle {
	return d.carriers.TrailParticles()
}

// GetAllCarriers implements spec §4.5 get_all_carriers.
func (d *Director) GetAllCarriers() []*CarrierInstance {
	return d.carriers.ActiveCarriers()
}

// GetStats implements spec §4.5 get_stats.
func (d *Director) GetStats() EngineStats {
	s := d.stats
	s.ActiveFireworks = len(d.order)
	totalParticles := 0
	for _, id := range d.order {
		f := d.fireworks[id]
		if f != nil && f.ParticleStream != nil {
			totalParticles += len(f.ParticleStream.LiveParticles())
		}
	}
	s.TotalParticles = totalParticles
	s.TrailParticles = len(d.carriers.TrailParticles())
	return s
}

func (d *Director) Pause()  { d.paused = true }
func (d *Director) Resume() { d.paused = false }

func (d *Director) TogglePause() bool {
	d.paused = !d.paused
	return d.paused
}

// SetTimeScale clamps to [0.1, 5] per spec §6.
func (d *Director) SetTimeScale(scale float64) {
	d.timeScale = clampf64(scale, 0.1, 5)
}

func (d *Director) GlobalTime() float64 { return d.clock.globalTime }

// Reset tears down every instance and resets the clock and stats (spec §4.5).
func (d *Director) Reset() {
	d.fireworks = make(map[FireworkID]*FireworkInstance)
	d.order = nil
	d.carriers = NewCarrierSubsystem(d.shapes, d.logger)
	d.clock.reset()
	d.paused = false
	d.timeScale = 1
	d.stats = EngineStats{}
	d.streamSeed = 0
	d.hueRng = rand.New(rand.NewSource(1))
}

func clampf64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

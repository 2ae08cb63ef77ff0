package pyroengine

import "io"

// Engine is the single owned-object aggregate the ownership graph starts from:
// Engine -> Director -> {CarrierSubsystem, FireworkInstance -> ParticleStream ->
// {Pool, ForceFieldSystem, MorphingEngine}}. No package-level state, no singletons —
// every subsystem is reachable only through a field of its owner (spec §9 "No hidden
// global state").
type Engine struct {
	director *Director
	logger   Logger
}

// NewEngine constructs an Engine with its own Director. A nil logger installs the nop
// logger, matching Director's own construction rule.
func NewEngine(logger Logger) *Engine {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Engine{
		director: NewDirector(logger),
		logger:   logger,
	}
}

// SetShapeGenerator overrides the built-in shape catalogue (spec §6: external pure
// function, real deployments plug in their own).
func (e *Engine) SetShapeGenerator(shapes ShapeGenerator) {
	e.director.SetShapeGenerator(shapes)
}

// LoadManifestJSON reads, validates, and registers a manifest in one step.
func (e *Engine) LoadManifestJSON(r io.Reader) (ManifestID, error) {
	m, err := LoadManifestJSON(r)
	if err != nil {
		return "", err
	}
	if err := e.director.RegisterManifest(m); err != nil {
		return "", err
	}
	return m.ID, nil
}

// LoadManifestYAML reads, validates, and registers a manifest in one step.
func (e *Engine) LoadManifestYAML(r io.Reader) (ManifestID, error) {
	m, err := LoadManifestYAML(r)
	if err != nil {
		return "", err
	}
	if err := e.director.RegisterManifest(m); err != nil {
		return "", err
	}
	return m.ID, nil
}

// RegisterManifest registers an already-parsed manifest (spec §6 construction-time
// validation applies here too).
func (e *Engine) RegisterManifest(m *FireworkManifest) error {
	return e.director.RegisterManifest(m)
}

// Launch starts a new firework from a registered manifest. hue, if non-nil,
// overrides the random default (spec §4.5 launch).
func (e *Engine) Launch(manifestID ManifestID, launchPos, targetPos Vector3, hue *float32) (FireworkID, bool) {
	return e.director.Launch(manifestID, launchPos, targetPos, hue)
}

// Update advances the whole simulation by dt seconds (spec §4.5 update, the single
// per-frame entry point). It never returns an error or panics on bad input — every
// failure mode documented in spec §7 degrades to a logged warning or a silent clamp.
func (e *Engine) Update(dt float64) {
	e.director.Update(dt)
}

func (e *Engine) GetAllParticles() []*StreamParticle      { return e.director.GetAllParticles() }
func (e *Engine) GetAllTrailParticles() []TrailParticle   { return e.director.GetAllTrailParticles() }
func (e *Engine) GetAllCarriers() []*CarrierInstance       { return e.director.GetAllCarriers() }
func (e *Engine) GetStats() EngineStats                    { return e.director.GetStats() }

func (e *Engine) Pause()                        { e.director.Pause() }
func (e *Engine) Resume()                       { e.director.Resume() }
func (e *Engine) TogglePause() bool             { return e.director.TogglePause() }
func (e *Engine) SetTimeScale(scale float64)    { e.director.SetTimeScale(scale) }
func (e *Engine) GlobalTime() float64           { return e.director.GlobalTime() }
func (e *Engine) Reset()                        { e.director.Reset() }

// SetLogger swaps the logger used by the engine's director (and, transitively, its
// carrier subsystem).
func (e *Engine) SetLogger(logger Logger) {
	if logger == nil {
		logger = NewNopLogger()
	}
	e.logger = logger
	e.director.SetLogger(logger)
}

package pyroengine

import (
	"math"
	"math/rand"
)

// maxTrailParticlesPerCarrier caps live trail particles per carrier (spec §4.3).
const maxTrailParticlesPerCarrier = 1000

// CarrierState is the carrier's mutable per-tick state (spec §3).
type CarrierState struct {
	Position Vector3
	Velocity Vector3
	Progress float32
	Elapsed  float32
	Arrived  bool
	Active   bool
}

// OnArriveFunc is invoked exactly once when a carrier reaches its target.
type OnArriveFunc func(carrierID CarrierID)

// CarrierInstance is owned exclusively by the carrier subsystem (spec §3).
type CarrierInstance struct {
	ID     CarrierID
	Config CarrierConfig
	State  CarrierState
	Start  Vector3
	Target Vector3
	Trail  []TrailParticle
	Hue    float32

	emissionAccumulator float32
	shapePoints         []Vector3

	onArrive        OnArriveFunc
	rng             *rand.Rand
	ticksSinceLastPurge float32
}

// ShapePoints exposes the optional 400-point cloud generated once at creation if
// Config.Shape is set (spec §4.3, for the renderer to draw the in-flight shape).
func (c *CarrierInstance) ShapePoints() []Vector3 { return c.shapePoints }

// CarrierSubsystem holds a map of carriers by ID (spec §4.3).
type CarrierSubsystem struct {
	carriers map[CarrierID]*CarrierInstance
	order    []CarrierID

	shapes ShapeGenerator
	logger Logger

	// MaxTotalTrailParticles bounds the process-wide trail particle aggregate;
	// 0 means unbounded (spec §9 open question: "consider a director-level
	// aggregate cap" — default kept unbounded to match the source's behavior,
	// opt-in via this field).
	MaxTotalTrailParticles int
	totalTrailParticles     int
}

func NewCarrierSubsystem(shapes ShapeGenerator, logger Logger) *CarrierSubsystem {
	if shapes == nil {
		shapes = DefaultShapeGenerator{}
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &CarrierSubsystem{
		carriers: make(map[CarrierID]*CarrierInstance),
		shapes:   shapes,
		logger:   logger,
	}
}

const carrierShapeResolution = 400
const carrierShapeScale = 1.5

// CreateCarrier instantiates a new carrier and returns its ID (spec §4.3).
func (s *CarrierSubsystem) CreateCarrier(cfg CarrierConfig, start, target Vector3, hue float32, onArrive OnArriveFunc) CarrierID {
	id := newCarrierID()
	c := &CarrierInstance{
		ID:     id,
		Config: cfg,
		Start:  start,
		Target: target,
		Hue:    hue,
		State: CarrierState{
			Position: start,
			Active:   true,
		},
		onArrive: onArrive,
		rng:      rand.New(rand.NewSource(int64(len(s.carriers)) + 1)),
	}
	if cfg.Shape != "" {
		pts, ok := s.shapes.Generate(cfg.Shape, carrierShapeResolution, carrierShapeScale)
		if !ok {
			s.logger.Warnf("carrier: unknown shape %q, using empty point cloud", cfg.Shape)
		}
		c.shapePoints = pts
	}
	s.carriers[id] = c
	s.order = append(s.order, id)
	return id
}

// Get returns the carrier by ID, or nil if it has been purged or never existed.
func (s *CarrierSubsystem) Get(id CarrierID) *CarrierInstance {
	return s.carriers[id]
}

// Tick advances every active carrier by dt (spec §4.3 per-tick update) and purges
// carriers that have arrived with no live trail remaining.
func (s *CarrierSubsystem) Tick(dt float32) {
	for _, id := range s.order {
		c, ok := s.carriers[id]
		if !ok || !c.State.Active {
			continue
		}
		s.tickCarrier(c, dt)
	}
	s.purgeDone()
}

func (s *CarrierSubsystem) tickCarrier(c *CarrierInstance, dt float32) {
	oldPos := c.State.Position

	c.State.Elapsed += dt
	duration := c.Config.Duration
	if duration <= 0 {
		duration = 1e-6
	}
	rawProgress := clampf(c.State.Elapsed/duration, 0, 1)
	progress := c.Config.Path.SpeedCurve.Eval(rawProgress)

	c.State.Position = evaluatePath(c.Config.Path, c.Start, c.Target, progress)
	c.State.Progress = progress

	if dt > 1e-8 {
		c.State.Velocity = c.State.Position.Sub(oldPos).Mul(1 / dt)
	}

	s.emitTrail(c, dt)
	s.updateTrail(c, dt)

	if c.State.Elapsed/duration >= 1 && !c.State.Arrived {
		c.State.Position = c.Target
		c.State.Arrived = true
		if c.onArrive != nil {
			c.onArrive(c.ID)
		}
	}
}

func (s *CarrierSubsystem) emitTrail(c *CarrierInstance, dt float32) {
	if c.Config.Trail == nil || c.State.Arrived {
		return
	}
	trail := c.Config.Trail
	c.emissionAccumulator += trail.EmissionRate * dt
	toEmit := int(math.Floor(float64(c.emissionAccumulator)))
	if toEmit <= 0 {
		return
	}
	c.emissionAccumulator -= float32(toEmit)

	room := maxTrailParticlesPerCarrier - len(c.Trail)
	if s.MaxTotalTrailParticles > 0 {
		globalRoom := s.MaxTotalTrailParticles - s.totalTrailParticles
		if globalRoom < room {
			room = globalRoom
		}
	}
	if toEmit > room {
		toEmit = room
	}
	for i := 0; i < toEmit; i++ {
		s.spawnTrailParticle(c, trail)
	}
}

func (s *CarrierSubsystem) spawnTrailParticle(c *CarrierInstance, trail *TrailConfig) {
	dir := safeNormalize(c.State.Velocity)
	spread := Vector3{
		(c.rng.Float32()*2 - 1) * 5,
		(c.rng.Float32()*2 - 1) * 5,
		(c.rng.Float32()*2 - 1) * 5,
	}
	vel := dir.Mul(-1 * (2 + c.rng.Float32()*3)).Add(spread)

	color := trail.ColorGradient.Sample(c.rng.Float32())
	c.Trail = append(c.Trail, TrailParticle{
		Position:       c.State.Position,
		Velocity:       vel,
		LifeTime:       trail.LifeTime,
		Hue:            color.Hue,
		Saturation:     color.Saturation,
		Lightness:      color.Lightness,
		Alpha:          1,
		Size:           trail.Size,
		startLightness: color.Lightness,
	})
	s.totalTrailParticles++
}

func (s *CarrierSubsystem) updateTrail(c *CarrierInstance, dt float32) {
	for i := range c.Trail {
		c.Trail[i].tick(dt)
	}
	// Lazily purge dead trail particles roughly once per simulated second (spec §4.3)
	// rather than compacting every tick.
	c.ticksSinceLastPurge += dt
	if c.ticksSinceLastPurge < 1.0 {
		return
	}
	c.ticksSinceLastPurge = 0
	live := c.Trail[:0]
	removed := 0
	for _, p := range c.Trail {
		if p.IsDead {
			removed++
			continue
		}
		live = append(live, p)
	}
	c.Trail = live
	s.totalTrailParticles -= removed
}

func (s *CarrierSubsystem) purgeDone() {
	for i := 0; i < len(s.order); {
		id := s.order[i]
		c := s.carriers[id]
		if c != nil && c.State.Arrived && len(c.Trail) == 0 {
			delete(s.carriers, id)
			s.order = append(s.order[:i], s.order[i+1:]...)
			continue
		}
		i++
	}
}

// ActiveCarriers returns all active carriers (spec §4.5 get_all_carriers).
func (s *CarrierSubsystem) ActiveCarriers() []*CarrierInstance {
	out := make([]*CarrierInstance, 0, len(s.order))
	for _, id := range s.order {
		if c, ok := s.carriers[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// TrailParticles returns every live trail particle across every carrier (spec §4.5
// get_all_trail_particles).
func (s *CarrierSubsystem) TrailParticles() []TrailParticle {
	var out []TrailParticle
	for _, id := range s.order {
		c, ok := s.carriers[id]
		if !ok {
			continue
		}
		for _, p := range c.Trail {
			if !p.IsDead {
				out = append(out, p)
			}
		}
	}
	return out
}

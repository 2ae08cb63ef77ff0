package pyroengine

import "testing"

func TestCreateCarrierStartsAtStartPosition(t *testing.T) {
	s := NewCarrierSubsystem(nil, nil)
	cfg := CarrierConfig{Type: CarrierVisible, Path: PathConfig{Type: PathLinear}, Duration: 2}
	id := s.CreateCarrier(cfg, Vector3{0, 0, 0}, Vector3{100, 0, 0}, 30, nil)
	c := s.Get(id)
	if c.State.Position != (Vector3{0, 0, 0}) {
		t.Errorf("initial position = %v, want origin", c.State.Position)
	}
}

func TestCarrierArrivesAndFiresCallbackExactlyOnce(t *testing.T) {
	s := NewCarrierSubsystem(nil, nil)
	cfg := CarrierConfig{Type: CarrierVisible, Path: PathConfig{Type: PathLinear}, Duration: 1}
	callCount := 0
	// A carrier without a trail is purged in the same Tick it arrives, so the
	// instance is captured from inside the arrival callback.
	var c *CarrierInstance
	s.CreateCarrier(cfg, Vector3{0, 0, 0}, Vector3{10, 0, 0}, 0, func(id CarrierID) {
		callCount++
		c = s.Get(id)
	})
	for i := 0; i < 30; i++ {
		s.Tick(0.1)
	}
	if c == nil {
		t.Fatalf("carrier not found when its arrival callback fired")
	}
	if !c.State.Arrived {
		t.Errorf("expected carrier to have arrived")
	}
	if callCount != 1 {
		t.Errorf("onArrive called %d times, want exactly 1", callCount)
	}
}

func TestCarrierPurgedAfterArrivalWithNoTrail(t *testing.T) {
	s := NewCarrierSubsystem(nil, nil)
	cfg := CarrierConfig{Type: CarrierVisible, Path: PathConfig{Type: PathLinear}, Duration: 1}
	id := s.CreateCarrier(cfg, Vector3{}, Vector3{10, 0, 0}, 0, nil)
	for i := 0; i < 20; i++ {
		s.Tick(0.1)
	}
	if s.Get(id) != nil {
		t.Errorf("expected carrier with no trail to be purged after arrival")
	}
}

func TestCarrierEmitsTrailParticlesWhenConfigured(t *testing.T) {
	s := NewCarrierSubsystem(nil, nil)
	cfg := CarrierConfig{
		Type:     CarrierVisible,
		Path:     PathConfig{Type: PathLinear},
		Duration: 5,
		Trail: &TrailConfig{
			EmissionRate:  20,
			LifeTime:      2,
			ColorGradient: NewSolidGradient(HSLA{Hue: 30, Saturation: 1, Lightness: 0.5, Alpha: 1}),
			Size:          1,
		},
	}
	id := s.CreateCarrier(cfg, Vector3{}, Vector3{50, 0, 0}, 0, nil)
	for i := 0; i < 10; i++ {
		s.Tick(0.1)
	}
	c := s.Get(id)
	if len(c.Trail) == 0 {
		t.Errorf("expected trail particles to have been emitted")
	}
}

func TestTrailParticleEmissionRespectsPerCarrierCap(t *testing.T) {
	s := NewCarrierSubsystem(nil, nil)
	cfg := CarrierConfig{
		Type:     CarrierVisible,
		Path:     PathConfig{Type: PathLinear},
		Duration: 100,
		Trail: &TrailConfig{
			EmissionRate:  10000,
			LifeTime:      1000,
			ColorGradient: NewSolidGradient(HSLA{Hue: 0, Saturation: 1, Lightness: 0.5, Alpha: 1}),
			Size:          1,
		},
	}
	id := s.CreateCarrier(cfg, Vector3{}, Vector3{1000, 0, 0}, 0, nil)
	for i := 0; i < 50; i++ {
		s.Tick(0.1)
	}
	c := s.Get(id)
	if len(c.Trail) > maxTrailParticlesPerCarrier {
		t.Errorf("trail length = %d, want <= %d", len(c.Trail), maxTrailParticlesPerCarrier)
	}
}

func TestGlobalTrailCapStopsNewEmission(t *testing.T) {
	s := NewCarrierSubsystem(nil, nil)
	s.MaxTotalTrailParticles = 5
	cfg := CarrierConfig{
		Type:     CarrierVisible,
		Path:     PathConfig{Type: PathLinear},
		Duration: 100,
		Trail: &TrailConfig{
			EmissionRate:  10000,
			LifeTime:      1000,
			ColorGradient: NewSolidGradient(HSLA{Hue: 0, Saturation: 1, Lightness: 0.5, Alpha: 1}),
			Size:          1,
		},
	}
	s.CreateCarrier(cfg, Vector3{}, Vector3{1000, 0, 0}, 0, nil)
	for i := 0; i < 20; i++ {
		s.Tick(0.1)
	}
	total := len(s.TrailParticles())
	if total > 5 {
		t.Errorf("total trail particles = %d, want <= global cap of 5", total)
	}
}

func TestUnknownCarrierShapeLogsWarningAndYieldsEmptyPoints(t *testing.T) {
	logger := &recordingLogger{}
	s := NewCarrierSubsystem(nil, logger)
	cfg := CarrierConfig{Type: CarrierVisible, Path: PathConfig{Type: PathLinear}, Duration: 1, Shape: "nonexistent-shape"}
	id := s.CreateCarrier(cfg, Vector3{}, Vector3{10, 0, 0}, 0, nil)
	c := s.Get(id)
	if len(c.ShapePoints()) != 0 {
		t.Errorf("expected empty shape points for unknown shape, got %d", len(c.ShapePoints()))
	}
	if len(logger.warnings) == 0 {
		t.Errorf("expected a warning to be logged for unknown shape")
	}
}

// recordingLogger captures warnings for assertions without printing anything.
type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) DebugEnabled() bool               { return false }
func (l *recordingLogger) SetDebug(enabled bool)             {}
func (l *recordingLogger) Debugf(format string, args ...any) {}
func (l *recordingLogger) Infof(format string, args ...any)  {}
func (l *recordingLogger) Warnf(format string, args ...any) {
	l.warnings = append(l.warnings, format)
}
func (l *recordingLogger) Errorf(format string, args ...any) {}

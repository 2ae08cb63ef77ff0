package pyroengine

import "testing"

func TestEngineLaunchUpdateAndReadBack(t *testing.T) {
	e := NewEngine(nil)
	m := singleStageManifest(TransitionExplode, 3)
	m.Carrier.Type = CarrierInvisible
	m.Carrier.Duration = 0.1
	if err := e.RegisterManifest(m); err != nil {
		t.Fatalf("RegisterManifest failed: %v", err)
	}

	id, ok := e.Launch(m.ID, Vector3{0, 0, 0}, Vector3{20, 30, 20}, nil)
	if !ok {
		t.Fatalf("Launch failed")
	}
	_ = id

	for i := 0; i < 10; i++ {
		e.Update(0.05)
	}

	particles := e.GetAllParticles()
	if len(particles) == 0 {
		t.Errorf("expected live particles after launch and update")
	}

	stats := e.GetStats()
	if stats.TotalLaunched != 1 {
		t.Errorf("TotalLaunched = %d, want 1", stats.TotalLaunched)
	}
	if stats.ActiveFireworks != 1 {
		t.Errorf("ActiveFireworks = %d, want 1", stats.ActiveFireworks)
	}
}

func TestEnginePauseProducesByteIdenticalStateAcrossUpdates(t *testing.T) {
	e := NewEngine(nil)
	m := singleStageManifest(TransitionExplode, 5)
	m.Carrier.Type = CarrierInvisible
	m.Carrier.Duration = 0.1
	e.RegisterManifest(m)
	e.Launch(m.ID, Vector3{}, Vector3{10, 10, 10}, nil)
	for i := 0; i < 5; i++ {
		e.Update(0.05)
	}

	before := snapshotPositions(e.GetAllParticles())
	e.Pause()
	for i := 0; i < 10; i++ {
		e.Update(0.05)
	}
	after := snapshotPositions(e.GetAllParticles())

	if len(before) != len(after) {
		t.Fatalf("particle count changed while paused: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("particle %d position changed while paused: %v -> %v", i, before[i], after[i])
		}
	}
}

func snapshotPositions(particles []*StreamParticle) []Vector3 {
	out := make([]Vector3, len(particles))
	for i, p := range particles {
		out[i] = p.Position
	}
	return out
}

func TestEngineGetAllCarriersAndTrailParticles(t *testing.T) {
	e := NewEngine(nil)
	m := singleStageManifest(TransitionExplode, 3)
	m.Carrier.Duration = 2
	m.Carrier.Trail = &TrailConfig{
		EmissionRate:  20,
		LifeTime:      2,
		ColorGradient: NewSolidGradient(HSLA{Hue: 20, Saturation: 1, Lightness: 0.5, Alpha: 1}),
		Size:          1,
	}
	e.RegisterManifest(m)
	e.Launch(m.ID, Vector3{}, Vector3{30, 30, 30}, nil)

	for i := 0; i < 10; i++ {
		e.Update(0.1)
	}

	carriers := e.GetAllCarriers()
	if len(carriers) == 0 {
		t.Errorf("expected an active carrier before arrival")
	}
	trails := e.GetAllTrailParticles()
	if len(trails) == 0 {
		t.Errorf("expected trail particles to have been emitted")
	}
}

func TestEngineResetClearsEverything(t *testing.T) {
	e := NewEngine(nil)
	m := singleStageManifest(TransitionExplode, 3)
	m.Carrier.Type = CarrierInvisible
	m.Carrier.Duration = 0.01
	e.RegisterManifest(m)
	e.Launch(m.ID, Vector3{}, Vector3{5, 5, 5}, nil)
	e.Update(0.1)

	e.Reset()

	if len(e.GetAllParticles()) != 0 {
		t.Errorf("expected no particles after Reset")
	}
	stats := e.GetStats()
	if stats.TotalLaunched != 0 {
		t.Errorf("TotalLaunched = %d after Reset, want 0", stats.TotalLaunched)
	}
}

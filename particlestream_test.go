package pyroengine

import "testing"

func basicTopology(n int) TopologyConfig {
	return TopologyConfig{Source: "sphere", Resolution: n, Scale: 10}
}

func basicDynamics() DynamicsConfig {
	return DynamicsConfig{
		TransitionMode:  TransitionExplode,
		InitialVelocity: InitialVelocityConfig{Mode: VelocityRadial, Speed: Fixed(20)},
	}
}

func basicRendering() RenderingConfig {
	return RenderingConfig{
		ColorMap: NewSolidGradient(HSLA{Hue: 0, Saturation: 1, Lightness: 0.5, Alpha: 1}),
		BaseSize: 2,
	}
}

func TestSpawnPopulatesActiveListUpToCount(t *testing.T) {
	s := NewParticleStream(500, 1, nil, nil)
	s.SetSpawnCenter(Vector3{0, 0, 0})
	s.Spawn(100, basicTopology(100), basicDynamics(), basicRendering(), 5)
	if got := len(s.LiveParticles()); got != 100 {
		t.Errorf("live particle count = %d, want 100", got)
	}
}

func TestSpawnClampsToPoolCapacity(t *testing.T) {
	s := NewParticleStream(20, 1, nil, nil)
	s.SetSpawnCenter(Vector3{})
	s.Spawn(100, basicTopology(100), basicDynamics(), basicRendering(), 5)
	if got := len(s.LiveParticles()); got != 20 {
		t.Errorf("live particle count = %d, want clamped to pool capacity 20", got)
	}
}

func TestSpawnAssignsUniqueIncreasingIDs(t *testing.T) {
	s := NewParticleStream(50, 1, nil, nil)
	s.SetSpawnCenter(Vector3{})
	s.Spawn(10, basicTopology(10), basicDynamics(), basicRendering(), 5)
	seen := map[ParticleID]bool{}
	for _, p := range s.LiveParticles() {
		if seen[p.ID] {
			t.Errorf("duplicate particle ID %v", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestParticlesDieAfterLifeTimeElapses(t *testing.T) {
	s := NewParticleStream(50, 1, nil, nil)
	s.SetSpawnCenter(Vector3{})
	s.Spawn(10, basicTopology(10), basicDynamics(), basicRendering(), 0.5)
	for i := 0; i < 200; i++ {
		s.Tick(0.01)
	}
	if got := len(s.LiveParticles()); got != 0 {
		t.Errorf("live particle count after life_time elapsed = %d, want 0", got)
	}
	if !s.IsExtinct() {
		t.Errorf("expected stream to report extinct once all particles died")
	}
}

func TestStructurePreserveSpawnsAtTargetWithNoBloomDrift(t *testing.T) {
	s := NewParticleStream(50, 1, nil, nil)
	s.SetSpawnCenter(Vector3{5, 5, 5})
	dyn := basicDynamics()
	dyn.InitialVelocity.Mode = VelocityStructurePreserve
	rendering := basicRendering()
	rendering.EnableBloom = boolPtr(true)
	rendering.BloomDuration = 1
	s.Spawn(20, basicTopology(20), dyn, rendering, 5)
	before := make([]Vector3, len(s.LiveParticles()))
	for i, p := range s.LiveParticles() {
		before[i] = p.Position
	}
	for i := 0; i < 5; i++ {
		s.Tick(0.05)
	}
	maxDrift := float32(0)
	for i, p := range s.LiveParticles() {
		if i >= len(before) {
			break
		}
		d := p.Position.Sub(before[i]).Len()
		if d > maxDrift {
			maxDrift = d
		}
	}
	if maxDrift > 5 {
		t.Errorf("structure_preserve drift after a few ticks = %f, want small", maxDrift)
	}
}

func TestStartMorphWithNoParticlesDefersInsteadOfPanicking(t *testing.T) {
	s := NewParticleStream(50, 1, nil, nil)
	s.SetSpawnCenter(Vector3{})
	rendering := basicRendering()
	s.StartMorph(basicTopology(10), &rendering, DefaultMorphConfig())
	if len(s.LiveParticles()) != 0 {
		t.Errorf("expected no particles to appear from a deferred morph with none live")
	}
}

func TestStartMorphRetargetsLiveParticles(t *testing.T) {
	s := NewParticleStream(50, 1, nil, nil)
	s.SetSpawnCenter(Vector3{})
	s.Spawn(10, basicTopology(10), basicDynamics(), basicRendering(), 5)
	rendering := basicRendering()
	s.StartMorph(TopologyConfig{Source: "ring", Resolution: 10, Scale: 20}, &rendering, DefaultMorphConfig())
	for _, p := range s.LiveParticles() {
		if !p.IsMorphing {
			t.Errorf("expected particle to be marked morphing")
		}
	}
}

func TestFadingAlphaAccumulatesTowardZero(t *testing.T) {
	s := NewParticleStream(50, 1, nil, nil)
	s.SetSpawnCenter(Vector3{})
	s.Spawn(5, basicTopology(5), basicDynamics(), basicRendering(), 1000)
	s.StartExtinction(ExtinctionConfig{Mode: ExtinctionFloat})

	var alphas []float32
	for i := 0; i < 10; i++ {
		s.Tick(0.1)
		live := s.LiveParticles()
		if len(live) == 0 {
			break
		}
		alphas = append(alphas, live[0].Alpha)
	}

	if len(alphas) < 5 {
		t.Fatalf("expected particles to survive several fading ticks, got %d alpha samples", len(alphas))
	}
	for i := 1; i < len(alphas); i++ {
		if alphas[i] >= alphas[i-1] {
			t.Errorf("alpha did not strictly decrease while fading: tick %d alpha %f >= tick %d alpha %f", i, alphas[i], i-1, alphas[i-1])
		}
	}
}

func TestStartExtinctionFallAppliesDownwardGravity(t *testing.T) {
	s := NewParticleStream(50, 1, nil, nil)
	s.SetSpawnCenter(Vector3{})
	s.Spawn(5, basicTopology(5), basicDynamics(), basicRendering(), 100)
	startY := s.LiveParticles()[0].Position[1]
	s.StartExtinction(ExtinctionConfig{Mode: ExtinctionFall})
	for i := 0; i < 60; i++ {
		s.Tick(0.05)
	}
	live := s.LiveParticles()
	if len(live) > 0 && live[0].Position[1] >= startY {
		t.Errorf("expected fall extinction to pull particles downward over time")
	}
}

func TestTickParticlesParallelPathProducesFinitePositions(t *testing.T) {
	buildAndRun := func(count int) []Vector3 {
		s := NewParticleStream(count+10, 1, nil, nil)
		s.SetSpawnCenter(Vector3{})
		dyn := basicDynamics()
		dyn.InitialVelocity.Mode = VelocityDirectional
		dyn.InitialVelocity.Direction = Vector3{0, 1, 0}
		s.Spawn(count, basicTopology(count), dyn, basicRendering(), 30)
		for i := 0; i < 5; i++ {
			s.Tick(0.016)
		}
		out := make([]Vector3, len(s.LiveParticles()))
		for i, p := range s.LiveParticles() {
			out[i] = p.Position
		}
		return out
	}

	small := buildAndRun(100)    // serial path
	large := buildAndRun(3000)   // parallel path

	if len(small) == 0 || len(large) == 0 {
		t.Fatalf("expected live particles in both runs")
	}
	// Both paths share the same per-particle physics function; spot check that the
	// parallel run produced no NaN/garbage positions (a common symptom of a data race).
	for _, p := range large {
		if p.Len() != p.Len() { // NaN check
			t.Errorf("parallel tick produced NaN position %v", p)
		}
	}
}

func boolPtr(b bool) *bool { return &b }

package pyroengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func singleStageManifest(transition TransitionMode, duration float32) *FireworkManifest {
	m := &FireworkManifest{
		Name:     "test-shell",
		Duration: duration,
		Carrier: CarrierConfig{
			Type:     CarrierVisible,
			Path:     PathConfig{Type: PathLinear},
			Duration: 1,
		},
	}
	m.Payload.Stages = []PayloadStage{
		{
			ID:         "burst",
			Duration:   duration,
			Topology:   basicTopology(30),
			Dynamics:   basicDynamics(),
			Rendering:  basicRendering(),
		},
	}
	m.Payload.Stages[0].Dynamics.TransitionMode = transition
	return m
}

func TestRegisterManifestAssignsIDWhenMissing(t *testing.T) {
	d := NewDirector(nil)
	m := singleStageManifest(TransitionExplode, 2)
	if err := d.RegisterManifest(m); err != nil {
		t.Fatalf("RegisterManifest failed: %v", err)
	}
	if m.ID == "" {
		t.Errorf("expected RegisterManifest to assign a non-empty ID")
	}
}

func TestRegisterManifestRejectsEmptyStages(t *testing.T) {
	d := NewDirector(nil)
	m := &FireworkManifest{Name: "empty"}
	if err := d.RegisterManifest(m); err != ErrMissingStages {
		t.Errorf("RegisterManifest error = %v, want ErrMissingStages", err)
	}
}

func TestLaunchUnknownManifestReturnsFalse(t *testing.T) {
	d := NewDirector(nil)
	_, ok := d.Launch(ManifestID("no-such-id"), Vector3{}, Vector3{}, nil)
	if ok {
		t.Errorf("expected Launch of unknown manifest to return ok=false")
	}
}

func TestLaunchWithInvisibleCarrierSpawnsParticlesAfterDuration(t *testing.T) {
	d := NewDirector(nil)
	m := singleStageManifest(TransitionExplode, 3)
	m.Carrier.Type = CarrierInvisible
	m.Carrier.Duration = 1
	if err := d.RegisterManifest(m); err != nil {
		t.Fatalf("RegisterManifest failed: %v", err)
	}
	id, ok := d.Launch(m.ID, Vector3{0, 0, 0}, Vector3{10, 20, 10}, nil)
	if !ok {
		t.Fatalf("Launch failed")
	}
	for i := 0; i < 20; i++ {
		d.Update(0.1)
	}
	f := d.fireworks[id]
	if f == nil {
		t.Fatalf("firework not found after invisible carrier should have arrived")
	}
	if f.ParticleStream == nil || len(f.ParticleStream.LiveParticles()) == 0 {
		t.Errorf("expected particles to be spawned once invisible carrier arrives")
	}
}

func TestLaunchWithVisibleCarrierWaitsForArrival(t *testing.T) {
	d := NewDirector(nil)
	m := singleStageManifest(TransitionExplode, 3)
	m.Carrier.Duration = 2
	if err := d.RegisterManifest(m); err != nil {
		t.Fatalf("RegisterManifest failed: %v", err)
	}
	id, ok := d.Launch(m.ID, Vector3{}, Vector3{50, 50, 50}, nil)
	if !ok {
		t.Fatalf("Launch failed")
	}
	d.Update(0.1)
	f := d.fireworks[id]
	if f.ParticleStream != nil {
		t.Errorf("expected no particle stream before carrier arrival")
	}
	for i := 0; i < 30; i++ {
		d.Update(0.1)
	}
	f = d.fireworks[id]
	if f == nil || f.ParticleStream == nil {
		t.Errorf("expected particle stream to exist after carrier arrival")
	}
}

func TestMorphAsFirstStageDefersSpawnThenMorphs(t *testing.T) {
	d := NewDirector(nil)
	m := singleStageManifest(TransitionMorph, 5)
	m.Carrier.Type = CarrierInvisible
	m.Carrier.Duration = 0.1
	if err := d.RegisterManifest(m); err != nil {
		t.Fatalf("RegisterManifest failed: %v", err)
	}
	id, ok := d.Launch(m.ID, Vector3{}, Vector3{0, 10, 0}, nil)
	if !ok {
		t.Fatalf("Launch failed")
	}
	d.Update(0.2) // carrier arrives, morph stage deferred-spawns a seed cluster
	f := d.fireworks[id]
	if f == nil || f.ParticleStream == nil {
		t.Fatalf("expected particle stream to exist after arrival")
	}
	if len(f.ParticleStream.LiveParticles()) == 0 {
		t.Fatalf("expected a seed cluster to have spawned for the deferred morph")
	}
	d.Update(0.1) // deferred morph now dispatches against the live seed cluster
	for _, p := range f.ParticleStream.LiveParticles() {
		if !p.IsMorphing {
			t.Errorf("expected particles to be morphing once the deferred morph dispatches")
		}
	}
}

func TestPauseStopsUpdateAdvancing(t *testing.T) {
	d := NewDirector(nil)
	d.Pause()
	before := d.GlobalTime()
	d.Update(1.0)
	if d.GlobalTime() != before {
		t.Errorf("GlobalTime advanced while paused: %f -> %f", before, d.GlobalTime())
	}
}

func TestSetTimeScaleClampsToRange(t *testing.T) {
	d := NewDirector(nil)
	d.SetTimeScale(100)
	if d.timeScale != 5 {
		t.Errorf("timeScale = %f, want clamped to 5", d.timeScale)
	}
	d.SetTimeScale(-10)
	if d.timeScale != 0.1 {
		t.Errorf("timeScale = %f, want clamped to 0.1", d.timeScale)
	}
}

func TestResetClearsFireworksAndStats(t *testing.T) {
	d := NewDirector(nil)
	m := singleStageManifest(TransitionExplode, 2)
	m.Carrier.Type = CarrierInvisible
	m.Carrier.Duration = 0.01
	d.RegisterManifest(m)
	d.Launch(m.ID, Vector3{}, Vector3{1, 1, 1}, nil)
	d.Update(0.1)
	d.Reset()
	if len(d.fireworks) != 0 {
		t.Errorf("expected fireworks map to be empty after Reset")
	}
	stats := d.GetStats()
	if stats.TotalLaunched != 0 || stats.ActiveFireworks != 0 {
		t.Errorf("expected stats to be zeroed after Reset, got %+v", stats)
	}
}

func TestGetStatsAggregatesAcrossFireworks(t *testing.T) {
	d := NewDirector(nil)
	m := singleStageManifest(TransitionExplode, 5)
	m.Carrier.Type = CarrierInvisible
	m.Carrier.Duration = 0.01
	require.NoError(t, d.RegisterManifest(m))

	_, ok := d.Launch(m.ID, Vector3{}, Vector3{1, 1, 1}, nil)
	require.True(t, ok)
	_, ok = d.Launch(m.ID, Vector3{}, Vector3{2, 2, 2}, nil)
	require.True(t, ok)

	for i := 0; i < 5; i++ {
		d.Update(0.05)
	}

	stats := d.GetStats()
	require.Equal(t, 2, stats.ActiveFireworks)
	require.Equal(t, 2, stats.TotalLaunched)
	require.Greater(t, stats.TotalParticles, 0)
}

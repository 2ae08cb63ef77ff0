package pyroengine

import (
	"encoding/json"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// TransitionMode is how a stage's particles come to be (spec §3 DynamicsConfig).
type TransitionMode string

const (
	TransitionExplode    TransitionMode = "explode"
	TransitionMorph      TransitionMode = "morph"
	TransitionAccumulate TransitionMode = "accumulate"
	TransitionScatter    TransitionMode = "scatter"
	TransitionMaintain   TransitionMode = "maintain"
)

// InitialVelocityMode (spec §3 DynamicsConfig.initial_velocity.mode).
type InitialVelocityMode string

const (
	VelocityRadial             InitialVelocityMode = "radial"
	VelocityDirectional        InitialVelocityMode = "directional"
	VelocityRandom             InitialVelocityMode = "random"
	VelocityTargetSeeking      InitialVelocityMode = "target_seeking"
	VelocityStructurePreserve  InitialVelocityMode = "structure_preserve"
)

// Blending (spec §3 RenderingConfig.blending).
type Blending string

const (
	BlendAdditive Blending = "additive"
	BlendNormal   Blending = "normal"
	BlendScreen   Blending = "screen"
)

// PathType (spec §3 PathConfig.type).
type PathType string

const (
	PathLinear  PathType = "linear"
	PathBezier3D PathType = "bezier_3d"
	PathSpiral  PathType = "spiral"
	PathHelix   PathType = "helix"
	PathArc     PathType = "arc"
)

// CarrierType. "invisible" schedules a one-shot timer rather than animating a carrier
// (spec §4.5 launch).
type CarrierType string

const (
	CarrierVisible   CarrierType = "visible"
	CarrierInvisible CarrierType = "invisible"
)

// ExtinctionMode (spec §4.4.3).
type ExtinctionMode string

const (
	ExtinctionFall     ExtinctionMode = "fall"
	ExtinctionFloat    ExtinctionMode = "float"
	ExtinctionDissolve ExtinctionMode = "dissolve"
	ExtinctionExplode  ExtinctionMode = "explode"
	ExtinctionImplode  ExtinctionMode = "implode"
)

// SpeedRange represents "scalar or range" fields like initial_velocity.speed.
type SpeedRange struct {
	Min float32
	Max float32
}

// Fixed returns a SpeedRange that always evaluates to v.
func Fixed(v float32) SpeedRange { return SpeedRange{Min: v, Max: v} }

func (r SpeedRange) sample(rngFloat32 func() float32) float32 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rngFloat32()*(r.Max-r.Min)
}

// TopologyConfig is the input to the shape generator (spec §3).
type TopologyConfig struct {
	Source     string  `json:"source" yaml:"source"`
	Resolution int     `json:"resolution" yaml:"resolution"`
	Scale      float32 `json:"scale" yaml:"scale"`
	Offset     Vector3 `json:"offset,omitempty" yaml:"offset,omitempty"`
	Rotation   Vector3 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
}

// InitialVelocityConfig (spec §3 DynamicsConfig.initial_velocity).
type InitialVelocityConfig struct {
	Mode      InitialVelocityMode `json:"mode" yaml:"mode"`
	Speed     SpeedRange          `json:"speed" yaml:"speed"`
	Direction Vector3             `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// DynamicsConfig (spec §3).
type DynamicsConfig struct {
	TransitionMode        TransitionMode        `json:"transition_mode" yaml:"transition_mode"`
	InitialVelocity       InitialVelocityConfig `json:"initial_velocity" yaml:"initial_velocity"`
	ForceFields           []ForceField          `json:"force_fields" yaml:"force_fields"`
	VelocityProfile       Curve                 `json:"velocity_profile" yaml:"velocity_profile"`
	MorphAttractionStrength float32             `json:"morph_attraction_strength,omitempty" yaml:"morph_attraction_strength,omitempty"`
	MorphDamping          float32               `json:"morph_damping,omitempty" yaml:"morph_damping,omitempty"`
}

// RenderingConfig (spec §3).
type RenderingConfig struct {
	ColorMap           Gradient `json:"color_map" yaml:"color_map"`
	BaseSize           float32  `json:"base_size" yaml:"base_size"`
	SizeCurve          Curve    `json:"size_curve" yaml:"size_curve"`
	Blending           Blending `json:"blending" yaml:"blending"`
	UseBlackbody       bool     `json:"use_blackbody,omitempty" yaml:"use_blackbody,omitempty"`
	InitialTemperature float32  `json:"initial_temperature,omitempty" yaml:"initial_temperature,omitempty"`
	CoolingRate        float32  `json:"cooling_rate,omitempty" yaml:"cooling_rate,omitempty"`
	GlowIntensity      float32  `json:"glow_intensity,omitempty" yaml:"glow_intensity,omitempty"`
	EnableBloom        *bool    `json:"enable_bloom,omitempty" yaml:"enable_bloom,omitempty"`
	BloomDuration      float32  `json:"bloom_duration,omitempty" yaml:"bloom_duration,omitempty"`
	GrowDuration        float32 `json:"grow_duration,omitempty" yaml:"grow_duration,omitempty"`
}

func (r RenderingConfig) bloomEnabled() bool {
	return r.EnableBloom == nil || *r.EnableBloom
}

// PayloadStage (spec §3).
type PayloadStage struct {
	ID             string         `json:"id" yaml:"id"`
	TimeOffset     float32        `json:"time_offset" yaml:"time_offset"`
	Duration       float32        `json:"duration" yaml:"duration"`
	Topology       TopologyConfig `json:"topology" yaml:"topology"`
	Dynamics       DynamicsConfig `json:"dynamics" yaml:"dynamics"`
	Rendering      RenderingConfig `json:"rendering" yaml:"rendering"`
	ReuseParticles bool           `json:"reuse_particles,omitempty" yaml:"reuse_particles,omitempty"`
}

// TrailConfig (spec §3 CarrierConfig.trail).
type TrailConfig struct {
	EmissionRate  float32  `json:"emission_rate" yaml:"emission_rate"`
	LifeTime      float32  `json:"life_time" yaml:"life_time"`
	ColorGradient Gradient `json:"color_gradient" yaml:"color_gradient"`
	Size          float32  `json:"size" yaml:"size"`
}

// PathConfig (spec §3).
type PathConfig struct {
	Type            PathType `json:"type" yaml:"type"`
	ControlPoints   []Vector3 `json:"control_points,omitempty" yaml:"control_points,omitempty"`
	SpeedCurve      Curve    `json:"speed_curve" yaml:"speed_curve"`
	SpiralRadius    float32  `json:"spiral_radius,omitempty" yaml:"spiral_radius,omitempty"`
	SpiralFrequency float32  `json:"spiral_frequency,omitempty" yaml:"spiral_frequency,omitempty"`
}

// CarrierConfig (spec §3).
type CarrierConfig struct {
	Type     CarrierType  `json:"type" yaml:"type"`
	Path     PathConfig   `json:"path" yaml:"path"`
	Duration float32      `json:"duration" yaml:"duration"`
	Trail    *TrailConfig `json:"trail,omitempty" yaml:"trail,omitempty"`
	Shape    string       `json:"shape,omitempty" yaml:"shape,omitempty"`
}

// FireworkManifest (spec §3).
type FireworkManifest struct {
	ID       ManifestID `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Duration float32    `json:"duration" yaml:"duration"`
	Carrier  CarrierConfig `json:"carrier" yaml:"carrier"`
	Payload  struct {
		Stages []PayloadStage `json:"stages" yaml:"stages"`
	} `json:"payload" yaml:"payload"`
	// Tags is additive: free-form UI categorization, not read by the simulation core.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ErrMissingStages is returned by the loaders and by Director.RegisterManifest when
// payload.stages is empty — spec §6: "A manifest with missing payload.stages is a
// configuration error."
var ErrMissingStages = errors.New("pyroengine: manifest has no payload stages")

func validateManifest(m *FireworkManifest) error {
	if len(m.Payload.Stages) == 0 {
		return ErrMissingStages
	}
	return nil
}

// LoadManifestJSON decodes and validates a manifest from its canonical JSON form.
func LoadManifestJSON(r io.Reader) (*FireworkManifest, error) {
	var m FireworkManifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	if err := validateManifest(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifestYAML decodes and validates a manifest from the YAML form preset authoring
// tools in this domain commonly emit (see SPEC_FULL.md §2 Configuration).
func LoadManifestYAML(r io.Reader) (*FireworkManifest, error) {
	var m FireworkManifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	if err := validateManifest(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

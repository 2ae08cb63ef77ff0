package pyroengine

import "math"

// HSLA is the particle-native color representation: hue in degrees [0,360),
// saturation/lightness/alpha in [0,1]. Converting to RGB is a renderer concern and
// stays out of scope (spec §1/§6).
type HSLA struct {
	Hue        float32
	Saturation float32
	Lightness  float32
	Alpha      float32
}

// GradientStop is one control point of a Gradient.
type GradientStop struct {
	Position   float32 // in [0,1]
	Hue        float32 // degrees
	Saturation float32
	Lightness  float32
	Alpha      float32
}

// Gradient is an ordered sequence of stops, interpolated along the shorter hue arc
// modulo 360 (spec §3).
type Gradient struct {
	Stops []GradientStop
}

// NewSolidGradient is a convenience single-stop gradient for stages that don't vary
// color over the index range.
func NewSolidGradient(c HSLA) Gradient {
	return Gradient{Stops: []GradientStop{{Position: 0, Hue: c.Hue, Saturation: c.Saturation, Lightness: c.Lightness, Alpha: c.Alpha}}}
}

// Sample evaluates the gradient at t in [0,1].
func (g Gradient) Sample(t float32) HSLA {
	if len(g.Stops) == 0 {
		return HSLA{Lightness: 0.5, Saturation: 1, Alpha: 1}
	}
	t = clampf(t, 0, 1)
	stops := g.Stops
	if len(stops) == 1 || t <= stops[0].Position {
		s := stops[0]
		return HSLA{s.Hue, s.Saturation, s.Lightness, s.Alpha}
	}
	last := stops[len(stops)-1]
	if t >= last.Position {
		return HSLA{last.Hue, last.Saturation, last.Lightness, last.Alpha}
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t <= b.Position {
			span := b.Position - a.Position
			localT := float32(0)
			if span > 1e-8 {
				localT = (t - a.Position) / span
			}
			return HSLA{
				Hue:        lerpHueShortArc(a.Hue, b.Hue, localT),
				Saturation: lerpf(a.Saturation, b.Saturation, localT),
				Lightness:  lerpf(a.Lightness, b.Lightness, localT),
				Alpha:      lerpf(a.Alpha, b.Alpha, localT),
			}
		}
	}
	l := stops[len(stops)-1]
	return HSLA{l.Hue, l.Saturation, l.Lightness, l.Alpha}
}

// lerpHueShortArc interpolates hue along the shorter of the two arcs between a and b,
// e.g. 350deg -> 10deg passes through 0deg, never through 180deg (spec §8 property 8).
func lerpHueShortArc(a, b, t float32) float32 {
	diff := mod360(b - a)
	if diff > 180 {
		diff -= 360
	}
	return mod360(a + diff*t)
}

func mod360(deg float32) float32 {
	d := float64(deg)
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return float32(d)
}

// lerpHSLA linearly interpolates two colors, short-arc on hue. Used to cross-fade
// current_rendering -> target_rendering during a particle stream's appearance update
// (spec §4.4.4).
func lerpHSLA(a, b HSLA, t float32) HSLA {
	return HSLA{
		Hue:        lerpHueShortArc(a.Hue, b.Hue, t),
		Saturation: lerpf(a.Saturation, b.Saturation, t),
		Lightness:  lerpf(a.Lightness, b.Lightness, t),
		Alpha:      lerpf(a.Alpha, b.Alpha, t),
	}
}

// blackbodyHSLA maps a temperature in Kelvin to an HSL color per the piecewise ramp in
// spec §4.4.4 (blue-white >= 7000K; yellow 5500-7000; orange 4000-5500; red 2500-4000;
// dark red < 2500). Saturation/alpha are left to the caller to preserve.
func blackbodyHSLA(kelvin float32) (hue, lightness float32) {
	switch {
	case kelvin >= 7000:
		return 210, 0.85
	case kelvin >= 5500:
		t := (kelvin - 5500) / 1500
		return lerpf(50, 210, t), lerpf(0.7, 0.85, t)
	case kelvin >= 4000:
		t := (kelvin - 4000) / 1500
		return lerpf(30, 50, t), lerpf(0.6, 0.7, t)
	case kelvin >= 2500:
		t := (kelvin - 2500) / 1500
		return lerpf(5, 30, t), lerpf(0.45, 0.6, t)
	default:
		t := clampf(kelvin/2500, 0, 1)
		return lerpf(0, 5, t), lerpf(0.2, 0.45, t)
	}
}

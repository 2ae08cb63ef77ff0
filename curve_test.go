package pyroengine

import "testing"

func TestCurveLinearIdentity(t *testing.T) {
	c := NewLinearCurve()
	for _, x := range []float32{0, 0.25, 0.5, 0.75, 1} {
		if got := c.Eval(x); abs32(got-x) > 1e-5 {
			t.Errorf("Eval(%f) = %f, want %f", x, got, x)
		}
	}
}

func TestCurveClampsOutsideDomain(t *testing.T) {
	c := NewLinearCurve()
	if got := c.Eval(-1); got != 0 {
		t.Errorf("Eval(-1) = %f, want 0", got)
	}
	if got := c.Eval(2); got != 1 {
		t.Errorf("Eval(2) = %f, want 1", got)
	}
}

func TestEaseInOutCurveEndpoints(t *testing.T) {
	c := NewEaseInOutCurve()
	if got := c.Eval(0); abs32(got) > 1e-5 {
		t.Errorf("Eval(0) = %f, want ~0", got)
	}
	if got := c.Eval(1); abs32(got-1) > 1e-5 {
		t.Errorf("Eval(1) = %f, want ~1", got)
	}
}

func TestEmptyCurveEvalIsClampedIdentity(t *testing.T) {
	var c Curve
	if got := c.Eval(0.5); got != 0.5 {
		t.Errorf("Eval(0.5) on empty curve = %f, want 0.5", got)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

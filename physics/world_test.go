package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

const eps = 1e-9

func satellite() Properties {
	return Properties{Mass: 1000, Width: 141, Height: 48}
}

func mustRegister(t *testing.T, w *World, p Properties) *Controller {
	t.Helper()
	h, err := w.Register(p)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	c, ok := w.Controller(h)
	if !ok {
		t.Fatalf("controller for fresh handle %d missing", h)
	}
	return c
}

func TestRotate(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		in    cp.Vector
		want  cp.Vector
	}{
		{name: "zero", angle: 0, in: cp.Vector{X: 1, Y: 2}, want: cp.Vector{X: 1, Y: 2}},
		{name: "quarter_up", angle: math.Pi / 2, in: cp.Vector{X: 0, Y: 1}, want: cp.Vector{X: -1, Y: 0}},
		{name: "quarter_right", angle: math.Pi / 2, in: cp.Vector{X: 1, Y: 0}, want: cp.Vector{X: 0, Y: 1}},
		{name: "half", angle: math.Pi, in: cp.Vector{X: 1, Y: 0}, want: cp.Vector{X: -1, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotate(tt.angle, tt.in)
			if math.Abs(got.X-tt.want.X) > eps || math.Abs(got.Y-tt.want.Y) > eps {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSymmetricPairTranslates(t *testing.T) {
	w := NewWorld(DefaultStep)
	c := mustRegister(t, w, satellite())

	c.ResetForces()
	c.ApplyForceLocally(cp.Vector{X: -60, Y: 0}, cp.Vector{X: 0, Y: 250000})
	c.ApplyForceLocally(cp.Vector{X: 60, Y: 0}, cp.Vector{X: 0, Y: 250000})
	w.Step()

	if v := c.Velocity(); v.Y <= 0 {
		t.Fatalf("expected upward velocity, got %v", v)
	}
	if av := c.AngularVelocity(); math.Abs(av) > 1e-6 {
		t.Fatalf("expected no rotation, got angular velocity %v", av)
	}
}

func TestSingleSideRotates(t *testing.T) {
	tests := []struct {
		name   string
		offset float64
		sign   float64
	}{
		{name: "right_side_counter_clockwise", offset: 60, sign: 1},
		{name: "left_side_clockwise", offset: -60, sign: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld(DefaultStep)
			c := mustRegister(t, w, satellite())

			c.ResetForces()
			c.ApplyForceLocally(cp.Vector{X: tt.offset, Y: 0}, cp.Vector{X: 0, Y: 250000})
			w.Step()

			if av := c.AngularVelocity(); av*tt.sign <= 0 {
				t.Fatalf("expected angular velocity with sign %v, got %v", tt.sign, av)
			}
		})
	}
}

func TestApplyForceLocallyFollowsAngle(t *testing.T) {
	w := NewWorld(DefaultStep)
	p := satellite()
	p.Initial = Transform{Angle: math.Pi / 2}
	c := mustRegister(t, w, p)

	c.ResetForces()
	c.ApplyForceLocally(cp.Vector{}, cp.Vector{X: 0, Y: 100000})
	w.Step()

	v := c.Velocity()
	if v.X >= 0 || math.Abs(v.Y) > 1e-6 {
		t.Fatalf("expected motion along -X, got %v", v)
	}
}

func TestResetForcesClearsAccumulation(t *testing.T) {
	w := NewWorld(DefaultStep)
	c := mustRegister(t, w, satellite())

	c.ApplyForce(nil, cp.Vector{X: 0, Y: 100000})
	c.ResetForces()
	w.Step()

	if v := c.Velocity(); v.X != 0 || v.Y != 0 {
		t.Fatalf("expected no motion after reset, got %v", v)
	}
	if tr := c.Transform(); tr.X != 0 || tr.Y != 0 || tr.Angle != 0 {
		t.Fatalf("expected body at rest at origin, got %+v", tr)
	}
}

func TestWorldHandles(t *testing.T) {
	w := NewWorld(0)
	if w.Dt() != DefaultStep {
		t.Fatalf("expected default step, got %v", w.Dt())
	}

	h1, err := w.Register(satellite())
	if err != nil {
		t.Fatal(err)
	}
	w.Remove(h1)
	if _, ok := w.Controller(h1); ok {
		t.Fatalf("expected removed handle to be unknown")
	}
	h2, err := w.Register(satellite())
	if err != nil {
		t.Fatal(err)
	}
	if h2 == h1 || !h2.Valid() {
		t.Fatalf("expected a fresh handle, got %d after %d", h2, h1)
	}
	if w.Len() != 1 {
		t.Fatalf("expected one body, got %d", w.Len())
	}
	if _, ok := w.Controller(0); ok {
		t.Fatalf("zero handle must be invalid")
	}
	w.Remove(99)
}

func TestRegisterRejectsInvalid(t *testing.T) {
	tests := map[string]Properties{
		"zero_mass":   {Mass: 0, Width: 1, Height: 1},
		"negative_w":  {Mass: 1, Width: -1, Height: 1},
		"zero_height": {Mass: 1, Width: 1, Height: 0},
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			w := NewWorld(DefaultStep)
			if _, err := w.Register(p); !errors.Is(err, ErrInvalidProperties) {
				t.Fatalf("expected invalid properties, got %v", err)
			}
			if w.Len() != 0 {
				t.Fatalf("expected nothing registered")
			}
		})
	}
}

func TestInitialTransform(t *testing.T) {
	w := NewWorld(DefaultStep)
	p := satellite()
	p.Initial = Transform{X: 10, Y: -5, Angle: 0.3}
	c := mustRegister(t, w, p)
	tr := c.Transform()
	if tr.X != 10 || tr.Y != -5 || math.Abs(tr.Angle-0.3) > eps {
		t.Fatalf("unexpected transform %+v", tr)
	}
}

// Package physics wraps the Chipmunk space that integrates the craft bodies.
package physics

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
)

// DefaultStep is one tick at 60 Hz.
const DefaultStep = 1.0 / 60.0

var ErrInvalidProperties = errors.New("physics: mass and size must be positive")

// Handle identifies a registered body. Handles are never reused; zero is
// invalid.
type Handle uint64

func (h Handle) Valid() bool {
	return h != 0
}

// Transform is a body's pose in world units, y-up, angle in radians.
type Transform struct {
	X     float64
	Y     float64
	Angle float64
}

// Position returns the translation part as a vector.
func (t Transform) Position() cp.Vector {
	return cp.Vector{X: t.X, Y: t.Y}
}

// Properties describes a dynamic box body.
type Properties struct {
	Mass    float64
	Width   float64
	Height  float64
	Initial Transform
}

type bodyInfo struct {
	body  *cp.Body
	shape *cp.Shape
}

// World owns the space and every body in it.
type World struct {
	space  *cp.Space
	dt     float64
	next   Handle
	bodies map[Handle]*bodyInfo
}

// NewWorld creates a gravity-free space stepped by dt seconds. A non-positive
// dt selects DefaultStep.
func NewWorld(dt float64) *World {
	if dt <= 0 {
		dt = DefaultStep
	}
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})
	return &World{
		space:  space,
		dt:     dt,
		bodies: make(map[Handle]*bodyInfo),
	}
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// Dt is the fixed step length in seconds.
func (w *World) Dt() float64 {
	return w.dt
}

// Register adds a dynamic box body and returns its handle.
func (w *World) Register(p Properties) (Handle, error) {
	if p.Mass <= 0 || p.Width <= 0 || p.Height <= 0 {
		return 0, fmt.Errorf("%w: mass=%v size=%vx%v", ErrInvalidProperties, p.Mass, p.Width, p.Height)
	}

	body := cp.NewBody(p.Mass, cp.MomentForBox(p.Mass, p.Width, p.Height))
	body.SetPosition(p.Initial.Position())
	body.SetAngle(p.Initial.Angle)
	shape := cp.NewBox(body, p.Width, p.Height, 0)
	shape.SetFriction(0.8)

	w.space.AddBody(body)
	w.space.AddShape(shape)

	w.next++
	w.bodies[w.next] = &bodyInfo{body: body, shape: shape}
	return w.next, nil
}

// Remove drops a body. Unknown handles are ignored.
func (w *World) Remove(h Handle) {
	info, ok := w.bodies[h]
	if !ok {
		return
	}
	w.space.RemoveShape(info.shape)
	w.space.RemoveBody(info.body)
	delete(w.bodies, h)
}

// Controller gives access to one body until the next Step.
func (w *World) Controller(h Handle) (*Controller, bool) {
	info, ok := w.bodies[h]
	if !ok {
		return nil, false
	}
	return &Controller{body: info.body}, true
}

// Step advances the whole space by one fixed step.
func (w *World) Step() {
	w.space.Step(w.dt)
}

// Len is the number of registered bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

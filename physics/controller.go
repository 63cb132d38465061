package physics

import "github.com/jakecoffman/cp"

// Controller applies forces to a single body and reads its state back.
type Controller struct {
	body *cp.Body
}

// ResetForces clears the force and torque accumulated since the last step.
func (c *Controller) ResetForces() {
	c.body.SetForce(cp.Vector{})
	c.body.SetTorque(0)
}

// ApplyForce applies a world-frame force at a world point, or at the centre
// of gravity when at is nil.
func (c *Controller) ApplyForce(at *cp.Vector, force cp.Vector) {
	point := c.body.Position()
	if at != nil {
		point = *at
	}
	c.body.ApplyForceAtWorldPoint(force, point)
}

// ApplyForceLocally takes a body-frame offset and force, rotates both by
// the current angle and applies the result at the matching world point.
func (c *Controller) ApplyForceLocally(offset, force cp.Vector) {
	angle := c.body.Angle()
	point := c.body.Position().Add(Rotate(angle, offset))
	c.ApplyForce(&point, Rotate(angle, force))
}

func (c *Controller) Transform() Transform {
	p := c.body.Position()
	return Transform{X: p.X, Y: p.Y, Angle: c.body.Angle()}
}

func (c *Controller) Velocity() cp.Vector {
	return c.body.Velocity()
}

func (c *Controller) AngularVelocity() float64 {
	return c.body.AngularVelocity()
}

// Rotate turns v counter-clockwise by angle radians.
func Rotate(angle float64, v cp.Vector) cp.Vector {
	return v.Rotate(cp.ForAngle(angle))
}

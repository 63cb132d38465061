package system

import (
	"fmt"

	"github.com/milk9111/orbiter/ecs"
	"github.com/milk9111/orbiter/ecs/component"
	"github.com/milk9111/orbiter/physics"
)

// PhysicsSystem turns actuator levels into forces, steps the space once and
// copies the resulting poses back into Transform components.
type PhysicsSystem struct {
	world *physics.World
}

func NewPhysicsSystem(world *physics.World) *PhysicsSystem {
	return &PhysicsSystem{world: world}
}

// World returns the physics world this system steps.
func (ps *PhysicsSystem) World() *physics.World {
	if ps == nil {
		return nil
	}
	return ps.world
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || ps.world == nil || w == nil {
		return
	}

	ps.checkRegistrations(w)
	ps.applyActuators(w)

	ps.world.Step()

	ps.syncTransforms(w)
	ps.runBehaviors(w)
}

// checkRegistrations fails loudly for a craft that never got a body.
func (ps *PhysicsSystem) checkRegistrations(w *ecs.World) {
	ecs.ForEach(w, component.KindComponent.Kind(), func(e ecs.Entity, k *component.Kind) {
		if k.Kind != component.KindCraft {
			return
		}
		rb, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind())
		if !ok {
			panic(fmt.Sprintf("physics system: craft %s (%s) has no rigid body", e, k.Name))
		}
		ps.controller(e, rb)
	})
}

func (ps *PhysicsSystem) applyActuators(w *ecs.World) {
	ecs.ForEach2(w, component.ActuatorsComponent.Kind(), component.RigidBodyComponent.Kind(), func(e ecs.Entity, act *component.Actuators, rb *component.RigidBody) {
		ctrl := ps.controller(e, rb)
		ctrl.ResetForces()
		act.Model.Compose(act.State, ctrl)
	})
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.RigidBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, rb *component.RigidBody, tr *component.Transform) {
		pose := ps.controller(e, rb).Transform()
		tr.X, tr.Y, tr.Angle = pose.X, pose.Y, pose.Angle
	})
}

func (ps *PhysicsSystem) runBehaviors(w *ecs.World) {
	dt := ps.world.Dt()
	ecs.ForEach2(w, component.BehaviorComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, b *component.Behavior, tr *component.Transform) {
		if b.Update == nil || ecs.Has(w, e, component.RigidBodyComponent.Kind()) {
			return
		}
		b.Update(tr, dt)
	})
}

func (ps *PhysicsSystem) controller(e ecs.Entity, rb *component.RigidBody) *physics.Controller {
	if !rb.Handle.Valid() {
		panic(fmt.Sprintf("physics system: entity %s has no registered handle", e))
	}
	ctrl, ok := ps.world.Controller(rb.Handle)
	if !ok {
		panic(fmt.Sprintf("physics system: entity %s handle %d unknown to the physics world", e, rb.Handle))
	}
	return ctrl
}

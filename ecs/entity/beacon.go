package entity

import (
	"fmt"

	"github.com/milk9111/orbiter/ecs"
	"github.com/milk9111/orbiter/ecs/component"
	"github.com/milk9111/orbiter/prefabs"
)

// NewBeacon spawns a non-physical marker that spins in place.
func NewBeacon(w *ecs.World, spec prefabs.BeaconSpec) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	fail := func(what string, err error) (ecs.Entity, error) {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("beacon: add %s: %w", what, err)
	}

	if err := ecs.Add(w, e, component.KindComponent.Kind(), &component.Kind{Kind: component.KindBeacon, Name: spec.Name}); err != nil {
		return fail("kind", err)
	}
	tr := &component.Transform{X: spec.Transform.X, Y: spec.Transform.Y, Angle: spec.Transform.Angle}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), tr); err != nil {
		return fail("transform", err)
	}
	if err := ecs.Add(w, e, component.BeaconComponent.Kind(), &component.Beacon{Radius: spec.Radius, Spin: spec.Spin}); err != nil {
		return fail("beacon", err)
	}
	spin := spec.Spin
	behavior := &component.Behavior{Update: func(t *component.Transform, dt float64) {
		t.Angle += spin * dt
	}}
	if err := ecs.Add(w, e, component.BehaviorComponent.Kind(), behavior); err != nil {
		return fail("behavior", err)
	}
	return e, nil
}

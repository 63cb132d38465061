// Package entity builds the simulation's entity variants from prefabs and
// extracts typed views of them.
package entity

import (
	"errors"
	"fmt"

	"github.com/milk9111/orbiter/craft"
	"github.com/milk9111/orbiter/ecs"
	"github.com/milk9111/orbiter/ecs/component"
	"github.com/milk9111/orbiter/physics"
	"github.com/milk9111/orbiter/prefabs"
)

var (
	ErrNoScriptedCraft       = errors.New("entity: no script-controlled craft")
	ErrMultipleScriptedCraft = errors.New("entity: more than one script-controlled craft")
)

// Craft is the concrete view of a craft entity.
type Craft struct {
	Entity    ecs.Entity
	Name      string
	Transform *component.Transform
	Body      *component.RigidBody
	Actuators *component.Actuators
}

// NewCraft spawns a script-controlled craft and registers its body once.
func NewCraft(w *ecs.World, pw *physics.World, spec prefabs.CraftSpec) (ecs.Entity, error) {
	model, err := craft.ModelFromSpec(spec)
	if err != nil {
		return 0, fmt.Errorf("craft: build model: %w", err)
	}

	props := physics.Properties{
		Mass:   spec.Mass,
		Width:  spec.Width,
		Height: spec.Height,
		Initial: physics.Transform{
			X:     spec.Transform.X,
			Y:     spec.Transform.Y,
			Angle: spec.Transform.Angle,
		},
	}
	handle, err := pw.Register(props)
	if err != nil {
		return 0, fmt.Errorf("craft: register body: %w", err)
	}

	e := ecs.CreateEntity(w)
	fail := func(what string, err error) (ecs.Entity, error) {
		pw.Remove(handle)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("craft: add %s: %w", what, err)
	}

	if err := ecs.Add(w, e, component.KindComponent.Kind(), &component.Kind{Kind: component.KindCraft, Name: spec.Name}); err != nil {
		return fail("kind", err)
	}
	tr := &component.Transform{X: props.Initial.X, Y: props.Initial.Y, Angle: props.Initial.Angle}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), tr); err != nil {
		return fail("transform", err)
	}
	if err := ecs.Add(w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{Handle: handle, Properties: props}); err != nil {
		return fail("rigid body", err)
	}
	act := &component.Actuators{State: model.NewState(), Model: model}
	if err := ecs.Add(w, e, component.ActuatorsComponent.Kind(), act); err != nil {
		return fail("actuators", err)
	}
	if err := ecs.Add(w, e, component.ScriptControlledComponent.Kind(), &component.ScriptControlled{}); err != nil {
		return fail("script tag", err)
	}
	return e, nil
}

// AsCraft returns the craft view of e, or false when e is another kind.
func AsCraft(w *ecs.World, e ecs.Entity) (*Craft, bool) {
	kind, ok := ecs.Get(w, e, component.KindComponent.Kind())
	if !ok || kind.Kind != component.KindCraft {
		return nil, false
	}
	tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return nil, false
	}
	act, ok := ecs.Get(w, e, component.ActuatorsComponent.Kind())
	if !ok {
		return nil, false
	}
	body, _ := ecs.Get(w, e, component.RigidBodyComponent.Kind())
	return &Craft{Entity: e, Name: kind.Name, Transform: tr, Body: body, Actuators: act}, true
}

// ScriptedCraft locates the single script-controlled craft.
func ScriptedCraft(w *ecs.World) (*Craft, error) {
	kind := component.ScriptControlledComponent.Kind()
	switch n := ecs.Count(w, kind); {
	case n == 0:
		return nil, ErrNoScriptedCraft
	case n > 1:
		return nil, fmt.Errorf("%w: found %d", ErrMultipleScriptedCraft, n)
	}
	e, _, _ := ecs.First(w, kind)
	c, ok := AsCraft(w, e)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a craft", ErrNoScriptedCraft, e)
	}
	return c, nil
}

// Destroy removes e and releases its body, if it has one.
func Destroy(w *ecs.World, pw *physics.World, e ecs.Entity) bool {
	if !ecs.IsAlive(w, e) {
		return false
	}
	if body, ok := ecs.Get(w, e, component.RigidBodyComponent.Kind()); ok && pw != nil {
		pw.Remove(body.Handle)
	}
	return ecs.DestroyEntity(w, e)
}

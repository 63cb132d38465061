package craft

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/orbiter/prefabs"
)

// DefaultScale converts a normalized power of 1 into newtons.
const DefaultScale = 250000.0

// Mount is an actuator's body-local offset from the centre of mass and the
// body-local direction it pushes in.
type Mount struct {
	Offset    cp.Vector
	Direction cp.Vector
}

// ForceApplier receives body-local force applications.
type ForceApplier interface {
	ApplyForceLocally(offset, force cp.Vector)
}

// Model is a craft's fixed mount table.
type Model struct {
	Mounts map[ActuatorID]Mount
	Scale  float64
}

// DefaultModel is the satellite layout: back and front pairs near the centre,
// wing pair near the tips. Back and wing boosters push +Y, front boosters
// push -Y.
func DefaultModel(width, height float64) Model {
	at := func(k float64) cp.Vector {
		return cp.Vector{X: width / 2 * k, Y: 0}
	}
	up := cp.Vector{X: 0, Y: 1}
	down := cp.Vector{X: 0, Y: -1}
	return Model{
		Scale: DefaultScale,
		Mounts: map[ActuatorID]Mount{
			BL: {Offset: at(-0.25), Direction: up},
			BR: {Offset: at(0.25), Direction: up},
			FL: {Offset: at(-0.25), Direction: down},
			FR: {Offset: at(0.25), Direction: down},
			WL: {Offset: at(-0.85), Direction: up},
			WR: {Offset: at(0.85), Direction: up},
		},
	}
}

// ModelFromSpec builds the mount table described by a craft prefab.
func ModelFromSpec(spec prefabs.CraftSpec) (Model, error) {
	if len(spec.Mounts) == 0 {
		m := DefaultModel(spec.Width, spec.Height)
		if spec.Scale > 0 {
			m.Scale = spec.Scale
		}
		return m, nil
	}

	m := Model{Scale: spec.Scale, Mounts: make(map[ActuatorID]Mount, len(spec.Mounts))}
	if m.Scale == 0 {
		m.Scale = DefaultScale
	}
	for _, ms := range spec.Mounts {
		id, ok := ParseActuator(ms.Actuator)
		if !ok {
			return Model{}, fmt.Errorf("craft: mount %q: unknown actuator", ms.Actuator)
		}
		if _, dup := m.Mounts[id]; dup {
			return Model{}, fmt.Errorf("craft: mount %q: declared twice", ms.Actuator)
		}
		if len(ms.Offset) != 2 || len(ms.Direction) != 2 {
			return Model{}, fmt.Errorf("craft: mount %q: offset and direction need two components", ms.Actuator)
		}
		m.Mounts[id] = Mount{
			Offset:    cp.Vector{X: ms.Offset[0], Y: ms.Offset[1]},
			Direction: cp.Vector{X: ms.Direction[0], Y: ms.Direction[1]},
		}
	}
	return m, nil
}

// Actuators lists the mounted actuators in stable order.
func (m Model) Actuators() []ActuatorID {
	ids := make([]ActuatorID, 0, len(m.Mounts))
	for _, id := range AllActuators() {
		if _, ok := m.Mounts[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// NewState returns a zeroed state covering exactly the mounted actuators.
func (m Model) NewState() State {
	return NewState(m.Actuators()...)
}

// Compose turns the current power levels into local forces, one per mounted
// actuator present in state. It keeps nothing between calls.
func (m Model) Compose(state State, fa ForceApplier) {
	for _, id := range m.Actuators() {
		power, ok := state[id]
		if !ok {
			continue
		}
		mount := m.Mounts[id]
		fa.ApplyForceLocally(mount.Offset, mount.Direction.Mult(power*m.Scale))
	}
}

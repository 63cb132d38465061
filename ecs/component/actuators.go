package component

import "github.com/milk9111/orbiter/craft"

// Actuators holds the commanded booster powers and the mount table that
// turns them into forces.
type Actuators struct {
	State craft.State
	Model craft.Model
}

var ActuatorsComponent = NewComponent[Actuators]()

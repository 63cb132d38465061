package craft

import (
	"fmt"
	"math"

	"github.com/milk9111/orbiter/program"
)

const performingBoost = "boosting"

// State is the last commanded power per actuator. It implements
// program.ActuatorClient.
type State map[ActuatorID]float64

// NewState starts every listed actuator at zero. With no ids it covers the
// full actuator set.
func NewState(ids ...ActuatorID) State {
	if len(ids) == 0 {
		ids = AllActuators()
	}
	s := make(State, len(ids))
	for _, id := range ids {
		s[id] = 0
	}
	return s
}

// ApplyActuator validates name and power and stores the power. A rejected
// command leaves the state untouched.
func (s State) ApplyActuator(name string, power float64) error {
	id, ok := ParseActuator(name)
	if !ok {
		return program.NewValidationFailure(performingBoost, "location", fmt.Sprintf("Unknown booster (%s)", name))
	}
	if _, mounted := s[id]; !mounted {
		return program.NewValidationFailure(performingBoost, "location", fmt.Sprintf("Booster %s is not mounted", name))
	}
	if math.IsNaN(power) || power < 0 || power > 1 {
		return program.NewValidationFailure(performingBoost, "power", "power should be in between 0 - 1")
	}
	s[id] = power
	return nil
}

// Power returns the stored level for id, zero if it was never set.
func (s State) Power(id ActuatorID) float64 {
	return s[id]
}

// Levels returns the stored levels keyed by actuator name.
func (s State) Levels() map[string]float64 {
	out := make(map[string]float64, len(s))
	for id, p := range s {
		out[id.String()] = p
	}
	return out
}

var _ program.ActuatorClient = State(nil)

// Package program loads and runs the craft firmware: a tengo script whose
// main function is called once per simulation tick and which talks to the
// host only through the actuator and environment capabilities.
package program

// ModKey is a bitmask of keyboard modifiers passed to input queries.
type ModKey uint8

const (
	ModShift ModKey = 1 << iota
	ModControl
	ModAlt
	ModSuper

	modKeyMask = ModShift | ModControl | ModAlt | ModSuper
)

// ModKeyFromBits keeps the known modifier bits and drops the rest.
func ModKeyFromBits(bits int64) ModKey {
	if bits <= 0 {
		return 0
	}
	return ModKey(bits) & modKeyMask
}

// Has reports whether every modifier in other is also set in m.
func (m ModKey) Has(other ModKey) bool {
	return m&other == other
}

// ActuatorClient validates and applies a bounded-power actuator command.
// Rejections are returned as *CapabilityError.
type ActuatorClient interface {
	ApplyActuator(name string, power float64) error
}

// Environment answers read-only input predicates for the script.
// Rejections are returned as *CapabilityError.
type Environment interface {
	IsActive(identifier string, mods ModKey) (bool, error)
}

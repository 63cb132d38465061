// Package craft holds the actuator set of the scripted craft: which boosters
// exist, what power each one is set to, and how powers become local forces.
package craft

// ActuatorID names one booster mount on the craft.
type ActuatorID uint8

const (
	BL ActuatorID = iota + 1
	BR
	FL
	FR
	WL
	WR
)

var actuatorNames = map[ActuatorID]string{
	BL: "BL",
	BR: "BR",
	FL: "FL",
	FR: "FR",
	WL: "WL",
	WR: "WR",
}

var actuatorsByName = func() map[string]ActuatorID {
	m := make(map[string]ActuatorID, len(actuatorNames))
	for id, name := range actuatorNames {
		m[name] = id
	}
	return m
}()

func (a ActuatorID) String() string {
	if name, ok := actuatorNames[a]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether a is one of the known actuators.
func (a ActuatorID) Valid() bool {
	_, ok := actuatorNames[a]
	return ok
}

// ParseActuator matches the exact upper-case actuator name.
func ParseActuator(name string) (ActuatorID, bool) {
	id, ok := actuatorsByName[name]
	return id, ok
}

// AllActuators returns every actuator in declaration order.
func AllActuators() []ActuatorID {
	return []ActuatorID{BL, BR, FL, FR, WL, WR}
}

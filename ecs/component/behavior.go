package component

// Behavior is the per-tick update for entities without a rigid body. dt is
// the tick length in seconds.
type Behavior struct {
	Update func(t *Transform, dt float64)
}

var BehaviorComponent = NewComponent[Behavior]()

// Beacon is a fixed marker that spins at Spin radians per second.
type Beacon struct {
	Radius float64
	Spin   float64
}

var BeaconComponent = NewComponent[Beacon]()

package component

import "github.com/milk9111/orbiter/physics"

// RigidBody links an entity to its body in the physics world. Handle is
// zero until the body is registered.
type RigidBody struct {
	Handle     physics.Handle
	Properties physics.Properties
}

var RigidBodyComponent = NewComponent[RigidBody]()

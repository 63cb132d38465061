package component

// ScriptControlled marks the one entity whose actuators the program drives.
type ScriptControlled struct{}

var ScriptControlledComponent = NewComponent[ScriptControlled]()

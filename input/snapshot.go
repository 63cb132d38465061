package input

import "github.com/milk9111/orbiter/program"

// Snapshot is a fixed KeyState.
type Snapshot struct {
	Pressed map[Key]bool
	Mods    program.ModKey
}

// NewSnapshot marks the given keys as held.
func NewSnapshot(mods program.ModKey, keys ...Key) Snapshot {
	s := Snapshot{Pressed: make(map[Key]bool, len(keys)), Mods: mods}
	for _, k := range keys {
		s.Pressed[k] = true
	}
	return s
}

func (s Snapshot) KeyPressed(k Key) bool {
	return s.Pressed[k]
}

func (s Snapshot) Modifiers() program.ModKey {
	return s.Mods
}

// Switchable is a KeyState whose snapshot the host replaces between ticks.
type Switchable struct {
	Current KeyState
}

func (s *Switchable) KeyPressed(k Key) bool {
	return s.Current != nil && s.Current.KeyPressed(k)
}

func (s *Switchable) Modifiers() program.ModKey {
	if s.Current == nil {
		return 0
	}
	return s.Current.Modifiers()
}

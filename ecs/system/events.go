package system

import "github.com/milk9111/orbiter/program"

// LoadEvent is the payload of program_loaded and program_load_failed.
type LoadEvent struct {
	Revision string
	Err      error
}

// TickFailure is the payload of tick_failed.
type TickFailure struct {
	Revision string
	Err      error
}

// Kind is the failure's error kind name.
func (f TickFailure) Kind() string {
	return kindName(f.Err)
}

func kindName(err error) string {
	if k := program.KindOf(err); k != 0 {
		return k.String()
	}
	return "HostError"
}

package input

import (
	"fmt"

	"github.com/milk9111/orbiter/program"
)

// KeyState is the host's view of the keyboard for the current tick.
type KeyState interface {
	KeyPressed(k Key) bool
	Modifiers() program.ModKey
}

// ModifierPolicy decides how the modifier argument of a query is used.
type ModifierPolicy uint8

const (
	// ModifiersIgnore answers on the key alone.
	ModifiersIgnore ModifierPolicy = iota
	// ModifiersRequire also needs every requested modifier held.
	ModifiersRequire
)

// ParseModifierPolicy maps the config spelling to a policy.
func ParseModifierPolicy(s string) (ModifierPolicy, error) {
	switch s {
	case "", "ignore":
		return ModifiersIgnore, nil
	case "require":
		return ModifiersRequire, nil
	default:
		return 0, fmt.Errorf("input: unknown modifier policy %q", s)
	}
}

func (p ModifierPolicy) String() string {
	if p == ModifiersRequire {
		return "require"
	}
	return "ignore"
}

// Environment implements program.Environment over a KeyState.
type Environment struct {
	Keys   KeyState
	Policy ModifierPolicy
}

func (e *Environment) IsActive(identifier string, mods program.ModKey) (bool, error) {
	key, err := ParseKey(identifier)
	if err != nil {
		return false, err
	}
	if e.Keys == nil || !e.Keys.KeyPressed(key) {
		return false, nil
	}
	if e.Policy == ModifiersRequire && !e.Keys.Modifiers().Has(mods) {
		return false, nil
	}
	return true, nil
}

var _ program.Environment = (*Environment)(nil)

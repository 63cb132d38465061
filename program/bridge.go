package program

import (
	"errors"

	"github.com/d5/tengo/v2"
)

const (
	fnActuatorSet   = "actuator_set"
	fnInputIsActive = "input_is_active"
)

// bridge exposes the capability surface to the script. It is bound to a
// client and an environment for exactly one Execute call.
type bridge struct {
	client ActuatorClient
	env    Environment
	bound  bool
	active bool

	// fault is the first VM-aborting error raised by a host function during
	// the current run; it keeps its type even when the VM rewraps it.
	fault error

	fns map[string]*tengo.UserFunction
}

func newBridge() *bridge {
	b := &bridge{}
	b.fns = map[string]*tengo.UserFunction{
		fnActuatorSet:   {Name: fnActuatorSet, Value: b.guard(b.actuatorSet)},
		fnInputIsActive: {Name: fnInputIsActive, Value: b.guard(b.inputIsActive)},
	}
	return b
}

func (b *bridge) bind(client ActuatorClient, env Environment) {
	b.client = client
	b.env = env
	b.bound = true
	b.active = false
	b.fault = nil
}

func (b *bridge) unbind() {
	b.client = nil
	b.env = nil
	b.bound = false
	b.active = false
}

// takeFault returns and clears the recorded fault.
func (b *bridge) takeFault() error {
	err := b.fault
	b.fault = nil
	return err
}

// guard rejects calls outside a binding and nested calls, and turns host
// panics into faults.
func (b *bridge) guard(fn tengo.CallableFunc) tengo.CallableFunc {
	return func(args ...tengo.Object) (ret tengo.Object, err error) {
		if !b.bound {
			return nil, b.raise(ErrUnboundCall)
		}
		if b.active {
			return nil, b.raise(ErrReentrantCall)
		}
		b.active = true
		defer func() {
			b.active = false
			if r := recover(); r != nil {
				ret, err = nil, b.raise(&hostFault{value: r})
			}
		}()
		return fn(args...)
	}
}

func (b *bridge) raise(err error) error {
	if b.fault == nil {
		b.fault = err
	}
	return err
}

func (b *bridge) actuatorSet(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 {
		return nil, b.raise(&ArgumentError{Func: fnActuatorSet, Expected: "want 2 arguments (name, power)"})
	}
	name, ok := args[0].(*tengo.String)
	if !ok {
		return nil, b.raise(&ArgumentError{Func: fnActuatorSet, Arg: "name", Expected: "string", Found: args[0].TypeName()})
	}
	var power float64
	switch v := args[1].(type) {
	case *tengo.Float:
		power = v.Value
	case *tengo.Int:
		power = float64(v.Value)
	default:
		return nil, b.raise(&ArgumentError{Func: fnActuatorSet, Arg: "power", Expected: "float", Found: args[1].TypeName()})
	}

	if err := b.client.ApplyActuator(name.Value, power); err != nil {
		return b.capability(err)
	}
	return tengo.UndefinedValue, nil
}

func (b *bridge) inputIsActive(args ...tengo.Object) (tengo.Object, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, b.raise(&ArgumentError{Func: fnInputIsActive, Expected: "want 1 or 2 arguments (name, modifiers)"})
	}
	name, ok := args[0].(*tengo.String)
	if !ok {
		return nil, b.raise(&ArgumentError{Func: fnInputIsActive, Arg: "name", Expected: "string", Found: args[0].TypeName()})
	}
	var mods ModKey
	if len(args) == 2 {
		bits, ok := args[1].(*tengo.Int)
		if !ok {
			return nil, b.raise(&ArgumentError{Func: fnInputIsActive, Arg: "modifiers", Expected: "int", Found: args[1].TypeName()})
		}
		mods = ModKeyFromBits(bits.Value)
	}

	active, err := b.env.IsActive(name.Value, mods)
	if err != nil {
		return b.capability(err)
	}
	if active {
		return tengo.TrueValue, nil
	}
	return tengo.FalseValue, nil
}

// capability converts a contract rejection into a script-visible error value.
// Anything that is not a CapabilityError propagates as a fault.
func (b *bridge) capability(err error) (tengo.Object, error) {
	var capErr *CapabilityError
	if !errors.As(err, &capErr) {
		return nil, b.raise(err)
	}
	return &tengo.Error{Value: &tengo.String{Value: capErr.Error()}}, nil
}

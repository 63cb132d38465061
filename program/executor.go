package program

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/parser"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/google/uuid"
)

const (
	entrypointName = "main"
	entryGlobal    = "__entry"
	reportGlobal   = "__report"
	stateGlobal    = "__state"
)

// DefaultModules is the side-effect-free stdlib subset scripts may import.
var DefaultModules = []string{"math", "text", "times", "rand", "fmt", "json", "enum", "base64", "hex"}

var forbiddenModules = map[string]bool{"os": true}

// Options bounds what a loaded program may do per tick.
type Options struct {
	// MaxAllocs caps VM object allocations per run. Zero means unlimited.
	MaxAllocs int64
	// TickBudget caps the wall-clock time of one run. Zero means no budget.
	TickBudget time.Duration
	// Modules lists importable stdlib modules. Nil selects DefaultModules.
	Modules []string
}

// DefaultOptions returns the limits used by the simulation.
func DefaultOptions() Options {
	return Options{
		MaxAllocs:  200000,
		TickBudget: 50 * time.Millisecond,
		Modules:    append([]string(nil), DefaultModules...),
	}
}

// loaded is a compiled program with its own symbol table, constant pool and
// globals. The tick bytecode calls the entrypoint and is compiled against
// the same pool so top-level statements run only once.
type loaded struct {
	source   string
	revision string
	globals  []tengo.Object
	tick     *tengo.Bytecode
	report   int
}

// Executor owns one compiled program and runs its entrypoint once per tick.
// It is not safe for concurrent use; a nested Execute is rejected.
type Executor struct {
	opts    Options
	modules *tengo.ModuleMap
	bridge  *bridge
	prog    *loaded
	running atomic.Bool
}

// NewExecutor creates an executor in the unloaded state.
func NewExecutor(opts Options) (*Executor, error) {
	names := opts.Modules
	if names == nil {
		names = DefaultModules
	}
	for _, name := range names {
		if forbiddenModules[name] {
			return nil, fmt.Errorf("program: module %q is not allowed", name)
		}
		_, builtin := stdlib.BuiltinModules[name]
		_, source := stdlib.SourceModules[name]
		if !builtin && !source {
			return nil, fmt.Errorf("program: unknown module %q", name)
		}
	}
	if opts.MaxAllocs <= 0 {
		opts.MaxAllocs = -1
	}
	return &Executor{
		opts:    opts,
		modules: stdlib.GetModuleMap(names...),
		bridge:  newBridge(),
	}, nil
}

// Loaded reports whether a program has been loaded successfully.
func (e *Executor) Loaded() bool {
	return e.prog != nil
}

// Revision identifies the current program. It changes on every successful
// Load, even for identical source.
func (e *Executor) Revision() string {
	if e.prog == nil {
		return ""
	}
	return e.prog.revision
}

// Source returns the text of the current program.
func (e *Executor) Source() string {
	if e.prog == nil {
		return ""
	}
	return e.prog.source
}

// Load compiles source, runs its top-level body once and resolves main.
// On failure the previously loaded program, if any, stays in place.
func (e *Executor) Load(source string) error {
	if e.running.Load() {
		return &ExecutionError{Kind: KindProgrammatic, Message: ErrExecuteReentered.Error(), Err: ErrExecuteReentered}
	}

	symbols := tengo.NewSymbolTable()
	for idx, fn := range tengo.GetAllBuiltinFunctions() {
		symbols.DefineBuiltin(idx, fn.Name)
	}
	globals := make([]tengo.Object, tengo.GlobalsSize)
	for name, fn := range e.bridge.fns {
		globals[symbols.Define(name).Index] = fn
	}
	entry := symbols.Define(entryGlobal).Index
	report := symbols.Define(reportGlobal).Index
	state := symbols.Define(stateGlobal).Index
	globals[entry] = tengo.UndefinedValue
	globals[report] = tengo.UndefinedValue
	globals[state] = newState()

	fileSet := parser.NewFileSet()
	var constants []tengo.Object

	body, err := e.compile(fileSet, "firmware", source, symbols, constants)
	if err != nil {
		return syntaxError(err)
	}
	constants = body.Constants
	if err := e.run(context.Background(), body, globals, nil); err != nil {
		return err
	}

	resolve, err := e.compile(fileSet, "(entry)", entryGlobal+" = "+entrypointName, symbols, constants)
	if err != nil {
		return &ExecutionError{Kind: KindEntrypointNotFound, Err: err}
	}
	constants = resolve.Constants
	if err := e.run(context.Background(), resolve, globals, nil); err != nil {
		return err
	}

	fn, ok := globals[entry].(*tengo.CompiledFunction)
	if !ok {
		return &ExecutionError{Kind: KindEntrypointNotFound, Message: "'main' is " + globals[entry].TypeName() + ", not a function"}
	}
	call := entryGlobal + "()"
	switch {
	case fn.VarArgs, fn.NumParameters == 0:
	case fn.NumParameters == 1:
		call = entryGlobal + "(" + stateGlobal + ")"
	default:
		return &ExecutionError{Kind: KindEntrypointNotFound, Message: fmt.Sprintf("'main' takes %d parameters, want 0 or 1", fn.NumParameters)}
	}

	tick, err := e.compile(fileSet, "(tick)", reportGlobal+" = "+call, symbols, constants)
	if err != nil {
		return syntaxError(err)
	}

	e.prog = &loaded{
		source:   source,
		revision: uuid.New().String(),
		globals:  globals,
		tick:     tick,
		report:   report,
	}
	return nil
}

// Execute calls main once with the bridge bound to client and env. It
// panics if nothing has been loaded.
func (e *Executor) Execute(ctx context.Context, client ActuatorClient, env Environment) error {
	if e.prog == nil {
		panic("program: execute called before a program was loaded")
	}
	if !e.running.CompareAndSwap(false, true) {
		return &ExecutionError{Kind: KindProgrammatic, Message: ErrExecuteReentered.Error(), Err: ErrExecuteReentered}
	}
	defer e.running.Store(false)

	prog := e.prog
	prog.globals[prog.report] = tengo.UndefinedValue

	e.bridge.bind(client, env)
	err := e.run(ctx, prog.tick, prog.globals, func() bool {
		return prog.globals[prog.report] != tengo.UndefinedValue
	})
	e.bridge.unbind()
	if err != nil {
		return err
	}

	ret, ok := prog.globals[prog.report].(*tengo.String)
	if !ok {
		found := "undefined"
		if obj := prog.globals[prog.report]; obj != nil {
			found = obj.TypeName()
		}
		return &ExecutionError{Kind: KindInvalidEntrypointReturnType, Message: "got " + found}
	}
	if ret.Value != "" {
		return Reported(ret.Value)
	}
	return nil
}

func (e *Executor) compile(fileSet *parser.SourceFileSet, name, src string, symbols *tengo.SymbolTable, constants []tengo.Object) (*tengo.Bytecode, error) {
	input := []byte(src)
	srcFile := fileSet.AddFile(name, -1, len(input))
	file, err := parser.NewParser(srcFile, input, nil).ParseFile()
	if err != nil {
		return nil, err
	}
	c := tengo.NewCompiler(srcFile, symbols, constants, e.modules, nil)
	if err := c.Compile(file); err != nil {
		return nil, err
	}
	return c.Bytecode(), nil
}

// run executes bc on a fresh VM under the tick budget and maps any failure.
// finished, when set, tells whether an aborted run had already completed.
func (e *Executor) run(ctx context.Context, bc *tengo.Bytecode, globals []tengo.Object, finished func() bool) error {
	if e.opts.TickBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.TickBudget)
		defer cancel()
	}

	vm := tengo.NewVM(bc, globals, e.opts.MaxAllocs)
	ch := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- &hostFault{value: r}
			}
		}()
		ch <- vm.Run()
	}()

	var err error
	select {
	case err = <-ch:
		err = e.withFault(err)
	case <-ctx.Done():
		select {
		case err = <-ch:
			err = e.withFault(err)
		default:
			vm.Abort()
			// An aborted VM also returns nil, so completion is read from
			// the program's own result.
			if err = <-ch; err != nil {
				err = e.withFault(err)
			} else if finished == nil || !finished() {
				e.bridge.takeFault()
				err = ctx.Err()
			}
		}
	}
	if err == nil {
		return nil
	}
	return mapRuntimeError(err)
}

// withFault puts the recorded host fault in front of the VM's position
// trailer so the fault keeps its type.
func (e *Executor) withFault(err error) error {
	fault := e.bridge.takeFault()
	if fault == nil || err == nil {
		return err
	}
	msg := strings.TrimPrefix(err.Error(), "Runtime Error: ")
	msg = strings.TrimPrefix(msg, fault.Error())
	return fmt.Errorf("%w%s", fault, msg)
}

func newState() *tengo.Map {
	return &tengo.Map{Value: map[string]tengo.Object{}}
}

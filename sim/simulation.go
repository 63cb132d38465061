// Package sim wires the entity world, the physics space and the program
// executor into a fixed-step simulation.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/milk9111/orbiter/config"
	"github.com/milk9111/orbiter/ecs"
	"github.com/milk9111/orbiter/ecs/entity"
	"github.com/milk9111/orbiter/ecs/system"
	"github.com/milk9111/orbiter/input"
	"github.com/milk9111/orbiter/physics"
	"github.com/milk9111/orbiter/prefabs"
	"github.com/milk9111/orbiter/program"
	"github.com/milk9111/orbiter/telemetry"
	"github.com/rs/zerolog"
)

// Options carries the host dependencies of a Simulation. The zero value logs
// nowhere, records no metrics and sees no keys.
type Options struct {
	Logger  *zerolog.Logger
	Metrics *telemetry.Metrics
	Keys    input.KeyState
}

type Simulation struct {
	log     zerolog.Logger
	world   *ecs.World
	physics *physics.World
	exec    *program.Executor
	inbox   *Inbox
	keys    *input.Switchable
	clock   *Clock
	sched   *ecs.Scheduler
	prog    *system.ProgramSystem
	diag    *system.DiagnosticsSystem
	craft   ecs.Entity
}

// New builds a simulation from cfg and spawns the craft and beacons named by
// its prefabs. No program is loaded yet.
func New(cfg config.Config, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	policy, err := input.ParseModifierPolicy(cfg.Input.ModifierPolicy)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	exec, err := program.NewExecutor(program.Options{
		MaxAllocs:  cfg.Script.MaxAllocs,
		TickBudget: cfg.Script.TickBudget,
		Modules:    cfg.Script.Modules,
	})
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	s := &Simulation{
		log:     log.With().Str("component", "sim").Logger(),
		world:   ecs.NewWorld(),
		physics: physics.NewWorld(cfg.TickInterval().Seconds()),
		exec:    exec,
		inbox:   &Inbox{},
		keys:    &input.Switchable{Current: opts.Keys},
		clock:   NewClock(cfg.Simulation.TickRate, cfg.Simulation.MaxCatchUp),
	}

	craftSpec, err := prefabs.LoadCraftSpec(cfg.Craft.Prefab)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	if s.craft, err = entity.NewCraft(s.world, s.physics, craftSpec); err != nil {
		return nil, fmt.Errorf("sim: spawn %s: %w", craftSpec.Name, err)
	}
	for _, name := range cfg.Beacons {
		spec, err := prefabs.LoadBeaconSpec(name)
		if err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
		if _, err := entity.NewBeacon(s.world, spec); err != nil {
			return nil, fmt.Errorf("sim: spawn %s: %w", spec.Name, err)
		}
	}

	env := &input.Environment{Keys: s.keys, Policy: policy}
	s.prog = system.NewProgramSystem(exec, s.inbox, env, log, opts.Metrics)
	s.diag = system.NewDiagnosticsSystem(log, opts.Metrics)
	s.sched = ecs.NewScheduler(s.prog, system.NewPhysicsSystem(s.physics), s.diag)

	s.log.Debug().
		Str("craft", craftSpec.Name).
		Int("beacons", len(cfg.Beacons)).
		Dur("tick", cfg.TickInterval()).
		Msg("simulation ready")
	return s, nil
}

// Step runs exactly one tick.
func (s *Simulation) Step() {
	s.sched.Update(s.world)
}

// Advance runs every tick due after elapsed wall time and returns how many ran.
func (s *Simulation) Advance(elapsed time.Duration) int {
	n := s.clock.Advance(elapsed)
	for i := 0; i < n; i++ {
		s.Step()
	}
	return n
}

// RequestLoad queues src to be loaded at the start of the next tick. Safe to
// call from any goroutine.
func (s *Simulation) RequestLoad(src string) {
	s.inbox.Put(src)
}

// SetKeys replaces the keyboard state seen by the program from the next tick on.
func (s *Simulation) SetKeys(keys input.KeyState) {
	s.keys.Current = keys
}

// SetContext bounds every program tick by ctx.
func (s *Simulation) SetContext(ctx context.Context) {
	s.prog.SetContext(ctx)
}

// Craft returns the script-controlled craft.
func (s *Simulation) Craft() (*entity.Craft, error) {
	return entity.ScriptedCraft(s.world)
}

func (s *Simulation) Executor() *program.Executor {
	return s.exec
}

func (s *Simulation) World() *ecs.World {
	return s.world
}

func (s *Simulation) Physics() *physics.World {
	return s.physics
}

func (s *Simulation) Clock() *Clock {
	return s.clock
}

// Tick is the number of ticks run so far.
func (s *Simulation) Tick() uint64 {
	return s.prog.Tick()
}

// Stats returns what diagnostics has recorded so far.
func (s *Simulation) Stats() system.Stats {
	return s.diag.Stats()
}

package system

import (
	"context"
	"time"

	"github.com/milk9111/orbiter/ecs"
	"github.com/milk9111/orbiter/ecs/entity"
	"github.com/milk9111/orbiter/program"
	"github.com/milk9111/orbiter/telemetry"
	"github.com/rs/zerolog"
)

// ProgramSource hands over at most one pending program per call.
type ProgramSource interface {
	Take() (string, bool)
}

// ProgramSystem loads pending programs at the tick boundary and runs the
// loaded program once per tick against the scripted craft.
type ProgramSystem struct {
	exec    *program.Executor
	source  ProgramSource
	env     program.Environment
	log     zerolog.Logger
	metrics *telemetry.Metrics
	ctx     context.Context

	tick          uint64
	missingLogged bool
}

func NewProgramSystem(exec *program.Executor, source ProgramSource, env program.Environment, log zerolog.Logger, metrics *telemetry.Metrics) *ProgramSystem {
	return &ProgramSystem{
		exec:    exec,
		source:  source,
		env:     env,
		log:     log.With().Str("system", "program").Logger(),
		metrics: metrics,
		ctx:     context.Background(),
	}
}

// SetContext sets the context passed to every Execute.
func (s *ProgramSystem) SetContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx = ctx
}

// Tick is the number of completed updates.
func (s *ProgramSystem) Tick() uint64 {
	return s.tick
}

func (s *ProgramSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	s.tick++
	s.metrics.RecordTick()

	if src, ok := s.source.Take(); ok {
		s.load(w, src)
	}

	if !s.exec.Loaded() {
		return
	}

	craft, err := entity.ScriptedCraft(w)
	if err != nil {
		if !s.missingLogged {
			s.log.Error().Err(err).Msg("no craft to run the program against")
			s.missingLogged = true
		}
		return
	}
	s.missingLogged = false

	start := time.Now()
	err = s.exec.Execute(s.ctx, craft.Actuators.State, s.env)
	s.metrics.ObserveExecute(time.Since(start))
	if err != nil {
		w.Events().Push(ecs.Event{
			Type: ecs.EventTickFailed,
			Tick: s.tick,
			Data: TickFailure{Revision: s.exec.Revision(), Err: err},
		})
	}
}

func (s *ProgramSystem) load(w *ecs.World, src string) {
	if err := s.exec.Load(src); err != nil {
		w.Events().Push(ecs.Event{
			Type: ecs.EventProgramLoadFailed,
			Tick: s.tick,
			Data: LoadEvent{Revision: s.exec.Revision(), Err: err},
		})
		return
	}
	w.Events().Push(ecs.Event{
		Type: ecs.EventProgramLoaded,
		Tick: s.tick,
		Data: LoadEvent{Revision: s.exec.Revision()},
	})
}

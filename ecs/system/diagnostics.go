package system

import (
	"github.com/milk9111/orbiter/ecs"
	"github.com/milk9111/orbiter/telemetry"
	"github.com/rs/zerolog"
)

// Stats accumulates what the diagnostics system has seen.
type Stats struct {
	Loads        int
	LoadFailures int
	Failures     map[string]int
	LastFailure  string
	LastLoadErr  string
	Revision     string
}

// DiagnosticsSystem drains the event queue into logs, metrics and Stats.
type DiagnosticsSystem struct {
	log     zerolog.Logger
	metrics *telemetry.Metrics
	stats   Stats
}

func NewDiagnosticsSystem(log zerolog.Logger, metrics *telemetry.Metrics) *DiagnosticsSystem {
	return &DiagnosticsSystem{
		log:     log.With().Str("system", "diagnostics").Logger(),
		metrics: metrics,
		stats:   Stats{Failures: map[string]int{}},
	}
}

// Stats returns a copy of the accumulated counters.
func (d *DiagnosticsSystem) Stats() Stats {
	out := d.stats
	out.Failures = make(map[string]int, len(d.stats.Failures))
	for k, v := range d.stats.Failures {
		out.Failures[k] = v
	}
	return out
}

func (d *DiagnosticsSystem) Update(w *ecs.World) {
	if d == nil || w == nil {
		return
	}
	for _, evt := range w.Events().Drain() {
		switch evt.Type {
		case ecs.EventProgramLoaded:
			data, _ := evt.Data.(LoadEvent)
			d.stats.Loads++
			d.stats.Revision = data.Revision
			d.metrics.RecordLoad("ok")
			d.log.Info().Uint64("tick", evt.Tick).Str("revision", data.Revision).Msg("program loaded")
		case ecs.EventProgramLoadFailed:
			data, _ := evt.Data.(LoadEvent)
			kind := kindName(data.Err)
			d.stats.LoadFailures++
			if data.Err != nil {
				d.stats.LastLoadErr = data.Err.Error()
			}
			d.metrics.RecordLoad(kind)
			d.log.Warn().Err(data.Err).Uint64("tick", evt.Tick).Str("kind", kind).Str("revision", data.Revision).Msg("program load failed, keeping previous program")
		case ecs.EventTickFailed:
			data, _ := evt.Data.(TickFailure)
			kind := data.Kind()
			d.stats.Failures[kind]++
			if data.Err != nil {
				d.stats.LastFailure = data.Err.Error()
			}
			d.metrics.RecordTickFailure(kind)
			d.log.Warn().Err(data.Err).Uint64("tick", evt.Tick).Str("kind", kind).Str("revision", data.Revision).Msg("program tick failed")
		default:
			d.log.Debug().Str("type", string(evt.Type)).Msg("unhandled event")
		}
	}
}

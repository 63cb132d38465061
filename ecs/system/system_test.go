package system

import (
	"strings"
	"testing"

	"github.com/milk9111/orbiter/craft"
	"github.com/milk9111/orbiter/ecs"
	"github.com/milk9111/orbiter/ecs/component"
	"github.com/milk9111/orbiter/ecs/entity"
	"github.com/milk9111/orbiter/input"
	"github.com/milk9111/orbiter/physics"
	"github.com/milk9111/orbiter/prefabs"
	"github.com/milk9111/orbiter/program"
	"github.com/milk9111/orbiter/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

const thrustOnW = `
main := func() {
	if input_is_active("w") {
		actuator_set("WL", 1.0)
		actuator_set("WR", 1.0)
	} else {
		actuator_set("WL", 0)
		actuator_set("WR", 0)
	}
	return ""
}
`

type pending struct {
	src []string
}

func (p *pending) Take() (string, bool) {
	if len(p.src) == 0 {
		return "", false
	}
	s := p.src[0]
	p.src = p.src[1:]
	return s, true
}

type harness struct {
	w       *ecs.World
	pw      *physics.World
	craft   ecs.Entity
	source  *pending
	keys    *input.Switchable
	program *ProgramSystem
	diag    *DiagnosticsSystem
	sched   *ecs.Scheduler
	metrics *telemetry.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	w := ecs.NewWorld()
	pw := physics.NewWorld(physics.DefaultStep)
	e, err := entity.NewCraft(w, pw, prefabs.CraftSpec{Name: "sat", Mass: 1000, Width: 141, Height: 48})
	if err != nil {
		t.Fatalf("new craft: %v", err)
	}
	exec, err := program.NewExecutor(program.DefaultOptions())
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}

	h := &harness{w: w, pw: pw, craft: e, source: &pending{}, keys: &input.Switchable{Current: input.NewSnapshot(0)}, metrics: telemetry.NewMetrics()}
	env := &input.Environment{Keys: h.keys}
	h.program = NewProgramSystem(exec, h.source, env, zerolog.Nop(), h.metrics)
	h.diag = NewDiagnosticsSystem(zerolog.Nop(), h.metrics)
	h.sched = ecs.NewScheduler(h.program, NewPhysicsSystem(pw), h.diag)
	return h
}

func (h *harness) velocity(t *testing.T) (float64, float64) {
	t.Helper()
	rb, ok := ecs.Get(h.w, h.craft, component.RigidBodyComponent.Kind())
	if !ok {
		t.Fatalf("craft lost its rigid body")
	}
	ctrl, ok := h.pw.Controller(rb.Handle)
	if !ok {
		t.Fatalf("unknown handle %d", rb.Handle)
	}
	v := ctrl.Velocity()
	return v.X, v.Y
}

func (h *harness) state(t *testing.T) craft.State {
	t.Helper()
	act, ok := ecs.Get(h.w, h.craft, component.ActuatorsComponent.Kind())
	if !ok {
		t.Fatalf("craft lost its actuators")
	}
	return act.State
}

func TestThrustFollowsKey(t *testing.T) {
	h := newHarness(t)
	h.source.src = append(h.source.src, thrustOnW)

	h.keys.Current = input.NewSnapshot(0, 'w')
	h.sched.Update(h.w)

	state := h.state(t)
	if state.Power(craft.WL) != 1 || state.Power(craft.WR) != 1 {
		t.Fatalf("expected WL/WR at 1, got %v", state.Levels())
	}
	_, vy1 := h.velocity(t)
	if vy1 <= 0 {
		t.Fatalf("expected upward velocity, got %v", vy1)
	}

	h.sched.Update(h.w)
	_, vy2 := h.velocity(t)
	if vy2 <= vy1 {
		t.Fatalf("expected velocity to keep growing, got %v then %v", vy1, vy2)
	}

	h.keys.Current = input.NewSnapshot(0)
	h.sched.Update(h.w)
	if state.Power(craft.WL) != 0 || state.Power(craft.WR) != 0 {
		t.Fatalf("expected WL/WR at 0, got %v", state.Levels())
	}
	_, vy3 := h.velocity(t)
	if vy3 != vy2 {
		t.Fatalf("expected coasting at %v, got %v", vy2, vy3)
	}

	if got := h.diag.Stats().Loads; got != 1 {
		t.Fatalf("expected one load, got %d", got)
	}
}

func TestTransformReadBack(t *testing.T) {
	h := newHarness(t)
	h.source.src = append(h.source.src, `main := func() { actuator_set("BL", 1.0); return "" }`)

	for i := 0; i < 30; i++ {
		h.sched.Update(h.w)
	}
	tr, _ := ecs.Get(h.w, h.craft, component.TransformComponent.Kind())
	if tr.Y <= 0 {
		t.Fatalf("expected craft to move up, got y=%v", tr.Y)
	}
	if tr.Angle == 0 {
		t.Fatalf("expected an off-center booster to rotate the craft")
	}
}

func TestNoProgramLeavesStateUntouched(t *testing.T) {
	h := newHarness(t)
	h.sched.Update(h.w)

	if h.program.Tick() != 1 {
		t.Fatalf("expected tick 1, got %d", h.program.Tick())
	}
	vx, vy := h.velocity(t)
	if vx != 0 || vy != 0 {
		t.Fatalf("expected craft at rest, got (%v, %v)", vx, vy)
	}
}

func TestFailedLoadKeepsRunningProgram(t *testing.T) {
	h := newHarness(t)
	h.source.src = append(h.source.src, thrustOnW)
	h.keys.Current = input.NewSnapshot(0, 'w')
	h.sched.Update(h.w)

	h.source.src = append(h.source.src, "main := func( {")
	h.sched.Update(h.w)

	stats := h.diag.Stats()
	if stats.Loads != 1 || stats.LoadFailures != 1 {
		t.Fatalf("expected 1 load and 1 failure, got %+v", stats)
	}
	if !strings.Contains(stats.LastLoadErr, "SyntaxError") {
		t.Fatalf("expected syntax error, got %q", stats.LastLoadErr)
	}
	if h.state(t).Power(craft.WL) != 1 {
		t.Fatalf("expected previous program to keep running")
	}
	n, err := testutil.GatherAndCount(h.metrics.Registry(), "orbiter_program_loads_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected ok and SyntaxError load series, got %d", n)
	}
}

func TestTickFailuresAreCounted(t *testing.T) {
	h := newHarness(t)
	h.source.src = append(h.source.src, `main := func() { return "low battery" }`)

	for i := 0; i < 3; i++ {
		h.sched.Update(h.w)
	}

	stats := h.diag.Stats()
	if stats.Failures[program.KindReported.String()] != 3 {
		t.Fatalf("expected 3 reported failures, got %v", stats.Failures)
	}
	if !strings.Contains(stats.LastFailure, "low battery") {
		t.Fatalf("unexpected last failure %q", stats.LastFailure)
	}
	if h.w.Events().Len() != 0 {
		t.Fatalf("expected events to be drained")
	}
}

func TestMissingCraftSkipsExecution(t *testing.T) {
	h := newHarness(t)
	h.source.src = append(h.source.src, thrustOnW)
	entity.Destroy(h.w, h.pw, h.craft)

	h.sched.Update(h.w)

	stats := h.diag.Stats()
	if stats.Loads != 1 {
		t.Fatalf("expected the load to happen without a craft")
	}
	if len(stats.Failures) != 0 {
		t.Fatalf("expected no tick failures, got %v", stats.Failures)
	}
}

func TestBehaviorRunsForNonPhysicalEntities(t *testing.T) {
	w := ecs.NewWorld()
	pw := physics.NewWorld(physics.DefaultStep)
	e, err := entity.NewBeacon(w, prefabs.BeaconSpec{Name: "b", Radius: 4, Spin: 6})
	if err != nil {
		t.Fatalf("new beacon: %v", err)
	}

	NewPhysicsSystem(pw).Update(w)

	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	want := 6 * physics.DefaultStep
	if diff := tr.Angle - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("expected angle %v, got %v", want, tr.Angle)
	}
}

func TestPhysicsPanicsOnUnregisteredCraft(t *testing.T) {
	tests := []struct {
		name  string
		setup func(w *ecs.World, pw *physics.World, e ecs.Entity)
	}{
		{
			name: "missing rigid body",
			setup: func(w *ecs.World, _ *physics.World, e ecs.Entity) {
				ecs.Remove(w, e, component.RigidBodyComponent.Kind())
			},
		},
		{
			name: "zero handle",
			setup: func(w *ecs.World, _ *physics.World, e ecs.Entity) {
				rb, _ := ecs.Get(w, e, component.RigidBodyComponent.Kind())
				rb.Handle = 0
			},
		},
		{
			name: "removed body",
			setup: func(w *ecs.World, pw *physics.World, e ecs.Entity) {
				rb, _ := ecs.Get(w, e, component.RigidBodyComponent.Kind())
				pw.Remove(rb.Handle)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ecs.NewWorld()
			pw := physics.NewWorld(physics.DefaultStep)
			e, err := entity.NewCraft(w, pw, prefabs.CraftSpec{Name: "sat", Mass: 10, Width: 2, Height: 1})
			if err != nil {
				t.Fatalf("new craft: %v", err)
			}
			tt.setup(w, pw, e)

			defer func() {
				r := recover()
				if r == nil {
					t.Fatalf("expected panic")
				}
				if msg, _ := r.(string); !strings.HasPrefix(msg, "physics system: ") {
					t.Fatalf("unexpected panic %v", r)
				}
			}()
			NewPhysicsSystem(pw).Update(w)
		})
	}
}

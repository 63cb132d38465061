package ecs

import (
	"errors"
	"testing"

	"github.com/milk9111/orbiter/ecs/component"
)

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestCreateAndDestroy(t *testing.T) {
	tests := []struct {
		name    string
		create  int
		destroy []int
		alive   []int
	}{
		{name: "none destroyed", create: 2, alive: []int{0, 1}},
		{name: "middle destroyed", create: 3, destroy: []int{1}, alive: []int{0, 2}},
		{name: "all destroyed", create: 2, destroy: []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, tt.create)
			for i := range ents {
				ents[i] = CreateEntity(w)
				if !ents[i].Valid() {
					t.Fatalf("entity %d has a zero slot", i)
				}
			}
			for _, i := range tt.destroy {
				if !DestroyEntity(w, ents[i]) {
					t.Fatalf("destroy %d reported false", i)
				}
			}

			want := map[int]bool{}
			for _, i := range tt.alive {
				want[i] = true
			}
			for i, e := range ents {
				if IsAlive(w, e) != want[i] {
					t.Fatalf("entity %d: expected alive=%v", i, want[i])
				}
			}
		})
	}
}

func TestDestroyDropsComponents(t *testing.T) {
	w := NewWorld()
	num := component.NewComponentKind[int]()
	txt := component.NewComponentKind[string]()

	e := CreateEntity(w)
	other := CreateEntity(w)
	_ = Add(w, e, num, intPtr(1))
	_ = Add(w, e, txt, stringPtr("a"))
	_ = Add(w, other, num, intPtr(2))

	DestroyEntity(w, e)

	if Count(w, num) != 1 || Count(w, txt) != 0 {
		t.Fatalf("expected only the survivor's component, got num=%d txt=%d", Count(w, num), Count(w, txt))
	}
	if v, ok := Get(w, other, num); !ok || *v != 2 {
		t.Fatalf("expected survivor untouched, got %v %v", v, ok)
	}
}

func TestAddReplacesAndRemove(t *testing.T) {
	w := NewWorld()
	k := component.NewComponentKind[int]()
	e := CreateEntity(w)

	if err := Add(w, e, k, intPtr(1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := Add(w, e, k, intPtr(5)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if v, ok := Get(w, e, k); !ok || *v != 5 {
		t.Fatalf("expected replaced value 5, got %v", v)
	}
	if Count(w, k) != 1 {
		t.Fatalf("replace must not duplicate, got %d", Count(w, k))
	}
	if !Remove(w, e, k) || Remove(w, e, k) {
		t.Fatalf("expected the first remove to succeed and the second to fail")
	}
	if Has(w, e, k) {
		t.Fatalf("expected component gone")
	}
}

func TestGetPanicsOnTypeMismatch(t *testing.T) {
	w := NewWorld()
	k := component.NewComponentKind[int]()
	e := CreateEntity(w)
	w.store(k.ID(), true).Set(e.id(), stringPtr("wrong"))

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get(w, e, k)
}

func TestForEachToleratesDestroyDuringIteration(t *testing.T) {
	w := NewWorld()
	k := component.NewComponentKind[int]()
	var ents []Entity
	for i := 0; i < 4; i++ {
		e := CreateEntity(w)
		_ = Add(w, e, k, intPtr(i))
		ents = append(ents, e)
	}

	seen := 0
	ForEach(w, k, func(e Entity, v *int) {
		seen++
		if *v == 0 {
			DestroyEntity(w, ents[3])
		}
	})
	if seen != 3 {
		t.Fatalf("expected the destroyed entity to be skipped, saw %d", seen)
	}
}

func TestForEach3(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[string]()
	kc := component.NewComponentKind[float64]()

	all := CreateEntity(w)
	two := CreateEntity(w)
	f := 1.5
	_ = Add(w, all, ka, intPtr(1))
	_ = Add(w, all, kb, stringPtr("a"))
	_ = Add(w, all, kc, &f)
	_ = Add(w, two, ka, intPtr(2))
	_ = Add(w, two, kb, stringPtr("b"))

	var got []Entity
	ForEach3(w, ka, kb, kc, func(e Entity, a *int, b *string, c *float64) {
		got = append(got, e)
	})
	if len(got) != 1 || got[0] != all {
		t.Fatalf("expected only the entity with all three, got %v", got)
	}
}

func TestForEach2(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)
	for _, e := range []Entity{e1, e2} {
		if err := Add(w, e, ka, intPtr(1)); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []Entity{e2, e3} {
		if err := Add(w, e, kb, stringPtr("x")); err != nil {
			t.Fatal(err)
		}
	}

	var res []Entity
	ForEach2(w, ka, kb, func(e Entity, a *int, b *string) {
		*a = 7
		res = append(res, e)
	})
	if len(res) != 1 || res[0] != e2 {
		t.Fatalf("expected only e2, got %v", res)
	}
	if v, _ := Get(w, e2, ka); *v != 7 {
		t.Fatalf("expected mutation through pointer, got %d", *v)
	}
}

func TestFirstAndCount(t *testing.T) {
	w := NewWorld()
	k := component.NewComponentKind[int]()
	if _, _, ok := First(w, k); ok {
		t.Fatalf("expected no entity in empty world")
	}

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	_ = Add(w, e1, k, intPtr(1))
	_ = Add(w, e2, k, intPtr(2))

	e, v, ok := First(w, k)
	if !ok || e != e1 || *v != 1 {
		t.Fatalf("expected e1=1, got %v=%v ok=%v", e, v, ok)
	}
	if Count(w, k) != 2 {
		t.Fatalf("expected 2, got %d", Count(w, k))
	}

	DestroyEntity(w, e1)
	e, _, ok = First(w, k)
	if !ok || e != e2 {
		t.Fatalf("expected e2 after destroying e1, got %v", e)
	}
}

func TestGenerationsRejectStaleHandles(t *testing.T) {
	w := NewWorld()
	k := component.NewComponentKind[int]()

	old := CreateEntity(w)
	_ = Add(w, old, k, intPtr(1))
	if !DestroyEntity(w, old) {
		t.Fatalf("destroy failed")
	}
	if DestroyEntity(w, old) {
		t.Fatalf("second destroy should report false")
	}

	fresh := CreateEntity(w)
	if fresh.id() != old.id() || fresh == old {
		t.Fatalf("expected slot reuse with a new generation, got %v after %v", fresh, old)
	}
	if Has(w, fresh, k) {
		t.Fatalf("reused slot must not inherit components")
	}
	if err := Add(w, old, k, intPtr(2)); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected not alive error, got %v", err)
	}
	if _, ok := Get(w, old, k); ok {
		t.Fatalf("stale handle must not read components")
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)
	if err := Add(w, e, component.ComponentKind[int]{}, intPtr(1)); !errors.Is(err, component.ErrInvalidComponentKind) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
	if err := Add[int](w, e, component.NewComponentKind[int](), nil); !errors.Is(err, component.ErrNilComponent) {
		t.Fatalf("expected nil component, got %v", err)
	}
	if IsAlive(w, 0) {
		t.Fatalf("zero entity must never be alive")
	}
}

func TestSchedulerOrder(t *testing.T) {
	w := NewWorld()
	var order []string
	s := NewScheduler(
		SystemFunc(func(*World) { order = append(order, "a") }),
		nil,
		SystemFunc(func(*World) { order = append(order, "b") }),
	)
	s.Add(SystemFunc(func(*World) { order = append(order, "c") }))
	s.Update(w)

	if got := order; len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestEventQueue(t *testing.T) {
	w := NewWorld()
	q := w.Events()
	if q.Drain() != nil {
		t.Fatalf("expected empty drain")
	}
	q.Push(Event{Type: EventProgramLoaded, Tick: 1})
	q.Push(Event{Type: EventTickFailed, Tick: 2})
	if q.Len() != 2 {
		t.Fatalf("expected 2 queued, got %d", q.Len())
	}
	got := q.Drain()
	if len(got) != 2 || got[0].Type != EventProgramLoaded || got[1].Tick != 2 {
		t.Fatalf("unexpected events %v", got)
	}
	if q.Len() != 0 {
		t.Fatalf("expected drained queue")
	}
}

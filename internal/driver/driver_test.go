package driver

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"keel/internal/decl"
	"keel/internal/testkit"
	"keel/internal/trace"
	"keel/internal/types"
)

const program = `
[[modules]]
name = "lib"

[[modules]]
name = "app"

[[classes]]
module = "lib"
name = "Box"
params = [{ name = "T" }]
fields = [{ name = "value", type = "T" }]

[[classes]]
module = "app"
name = "Point"
stack = true
fields = [{ name = "x", type = "Int" }, { name = "y", type = "Int" }]

[[bindings]]
module = "lib"
name = "boxed"
declared = "Box[?]"
value = "Box[Float]"

[[bindings]]
module = "app"
name = "ints"
declared = "Array[?]"
value = "Array[Int]"

[[bindings]]
module = "app"
name = "point"
declared = "?"
value = "Point"

[[bindings]]
module = "app"
name = "wrong"
declared = "Int"
value = "String"

[[bindings]]
module = "app"
name = "unknown"
declared = "Array[?]"
value = "Array[?]"
`

func declare(t *testing.T) (*types.Database, *decl.Declared) {
	t.Helper()
	p, err := decl.Decode([]byte(program))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	db := types.New()
	d, err := decl.Declare(db, p)
	if err != nil {
		t.Fatalf("Declare: %v", err)
	}
	return db, d
}

func binding(t *testing.T, res *Result, name string) Binding {
	t.Helper()
	for _, b := range res.Bindings {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("no binding named %q", name)
	return Binding{}
}

func TestRun(t *testing.T) {
	for _, jobs := range []int{0, 1, 4} {
		db, d := declare(t)
		box := db.ClassInModule("lib", "Box")
		point := db.ClassInModule("app", "Point")

		res, err := Run(context.Background(), db, d, Options{Jobs: jobs})
		if err != nil {
			t.Fatalf("jobs=%d: Run: %v", jobs, err)
		}
		if db.Phase() != types.PhaseFinalized {
			t.Fatalf("jobs=%d: database is %s after Run", jobs, db.Phase())
		}
		if err := testkit.CheckSpecializations(db); err != nil {
			t.Fatalf("jobs=%d: %v", jobs, err)
		}

		var names []string
		for _, b := range res.Bindings {
			names = append(names, b.Module+"."+b.Name)
		}
		want := []string{"lib.boxed", "app.ints", "app.point", "app.wrong", "app.unknown"}
		if !slices.Equal(names, want) {
			t.Fatalf("jobs=%d: bindings %v, want %v", jobs, names, want)
		}

		boxed := binding(t, res, "boxed")
		if !boxed.Resolved || boxed.Type != "Box[Float]" || boxed.Shape != types.OwnedShape() {
			t.Fatalf("boxed: %+v", boxed)
		}
		if len(boxed.Classes) != 2 || boxed.Classes[1] != types.FloatClassID {
			t.Fatalf("boxed classes %v", boxed.Classes)
		}
		if src, ok := boxed.Classes[0].SpecializationSource(db); !ok || src != box {
			t.Fatalf("Box[Float] was not specialized from Box")
		}

		ints := binding(t, res, "ints")
		if !ints.Resolved || ints.Type != "Array[Int]" {
			t.Fatalf("ints: %+v", ints)
		}

		pt := binding(t, res, "point")
		if !pt.Resolved || pt.Type != "Point" || pt.Shape.Kind != types.ShapeStack {
			t.Fatalf("point: %+v", pt)
		}
		if len(pt.Classes) != 1 || pt.Classes[0] != point {
			t.Fatalf("point classes %v", pt.Classes)
		}

		wrong := binding(t, res, "wrong")
		if wrong.Resolved || wrong.Problem != "expected Int, found String" {
			t.Fatalf("wrong: %+v", wrong)
		}
		unknown := binding(t, res, "unknown")
		if unknown.Resolved || unknown.Problem != "type can't be inferred" || unknown.Type != "Array[?]" {
			t.Fatalf("unknown: %+v", unknown)
		}
		if len(unknown.Classes) != 0 {
			t.Fatalf("unresolved bindings must not be specialized")
		}

		if res.OK() || len(res.Unresolved()) != 2 {
			t.Fatalf("jobs=%d: %d unresolved bindings", jobs, len(res.Unresolved()))
		}
		if len(res.Specialized) != 2 || res.Specialized[0] != boxed.Classes[0] || res.Specialized[1] != ints.Classes[0] {
			t.Fatalf("jobs=%d: specialized %v", jobs, res.Specialized)
		}

		var phases []string
		for _, p := range res.Timings.Phases {
			phases = append(phases, p.Name)
		}
		if !slices.Equal(phases, []string{"declare", "check", "specialize", "finalize"}) {
			t.Fatalf("jobs=%d: timed phases %v", jobs, phases)
		}
	}
}

func TestRunTwice(t *testing.T) {
	db, d := declare(t)
	if _, err := Run(context.Background(), db, d, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := Run(context.Background(), db, d, Options{}); !errors.Is(err, ErrPhase) {
		t.Fatalf("second Run error = %v, want ErrPhase", err)
	}
}

func TestRunCancelled(t *testing.T) {
	db, d := declare(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, db, d, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if db.Phase() != types.PhaseDeclared {
		t.Fatalf("cancelled run moved the database to %s", db.Phase())
	}
}

func TestRunProgress(t *testing.T) {
	db, d := declare(t)

	var (
		mu     sync.Mutex
		events []Event
	)
	sink := SinkFunc(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})

	if _, err := Run(context.Background(), db, d, Options{Jobs: 2, Sink: sink}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var stages []string
	final := make(map[string]Event)
	for _, ev := range events {
		if ev.Module == "" {
			stages = append(stages, string(ev.Stage)+":"+string(ev.Status))
			continue
		}
		final[ev.Module] = ev
	}
	want := []string{
		"declare:working", "declare:done",
		"check:working", "check:done",
		"specialize:working", "specialize:done",
		"finalize:working", "finalize:done",
	}
	if !slices.Equal(stages, want) {
		t.Fatalf("stage events %v", stages)
	}

	if ev := final["lib"]; ev.Status != StatusDone {
		t.Fatalf("lib finished with %+v", ev)
	}
	if ev := final["app"]; ev.Status != StatusError || ev.Err == nil || !strings.Contains(ev.Err.Error(), "2 unresolved") {
		t.Fatalf("app finished with %+v", ev)
	}
}

func TestRunTraces(t *testing.T) {
	db, d := declare(t)
	ring := trace.NewRingTracer(256, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)

	if _, err := Run(ctx, db, d, Options{Jobs: 2}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	begun := make(map[trace.Scope][]string)
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin {
			begun[ev.Scope] = append(begun[ev.Scope], ev.Name)
		}
	}
	if got := begun[trace.ScopePass]; !slices.Equal(got, []string{"declare", "check", "specialize", "finalize"}) {
		t.Fatalf("pass spans %v", got)
	}
	modules := begun[trace.ScopeModule]
	slices.Sort(modules)
	if !slices.Equal(modules, []string{"app", "lib"}) {
		t.Fatalf("module spans %v", modules)
	}
	if got := begun[trace.ScopeDriver]; !slices.Equal(got, []string{"run"}) {
		t.Fatalf("driver spans %v", got)
	}
}

func TestChannelSink(t *testing.T) {
	ChannelSink{}.OnEvent(Event{Stage: StageCheck})

	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{Stage: StageCheck, Status: StatusDone})
	if ev := <-ch; ev.Stage != StageCheck || ev.Status != StatusDone {
		t.Fatalf("forwarded %+v", ev)
	}
}

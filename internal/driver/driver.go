// Package driver moves a declared database through checking, specialization
// and finalization.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"keel/internal/decl"
	"keel/internal/observ"
	"keel/internal/trace"
	"keel/internal/types"
)

// ErrPhase is returned when the database is past the declaration phase.
var ErrPhase = errors.New("database already checked")

type Options struct {
	// Jobs limits the number of modules checked at once. Values below one
	// mean one job per CPU.
	Jobs  int
	Sink  ProgressSink
	Timer *observ.Timer
}

// Binding is the outcome of checking one binding.
type Binding struct {
	Module string
	Name   string
	// Source is the declared type as written.
	Source string
	// Declared is the declared type with its placeholders bound by checking.
	Declared types.TypeRef
	// Type is Declared rendered right after checking.
	Type     string
	Resolved bool
	// Problem explains why an unresolved binding failed.
	Problem string
	// Shape is only set for resolved bindings.
	Shape types.Shape
	// Classes lists the classes used by the type after specialization,
	// outermost first.
	Classes []types.ClassID
}

type Result struct {
	// Bindings are ordered by module, then by declaration.
	Bindings []Binding
	// Specialized lists the classes created by specialization.
	Specialized []types.ClassID
	Timings     observ.Report
}

// Unresolved returns the bindings that failed to check.
func (r *Result) Unresolved() []Binding {
	var out []Binding
	for _, b := range r.Bindings {
		if !b.Resolved {
			out = append(out, b)
		}
	}
	return out
}

// OK reports whether every binding resolved.
func (r *Result) OK() bool { return len(r.Unresolved()) == 0 }

// Run checks the bindings of declared, specializes the classes their types
// use and finalizes db. Unresolved bindings are reported in the result; the
// error is only set for cancellation or misuse.
func Run(ctx context.Context, db *types.Database, declared *decl.Declared, opts Options) (*Result, error) {
	if db.Phase() != types.PhaseDeclared {
		return nil, fmt.Errorf("%w: phase is %s", ErrPhase, db.Phase())
	}
	timer := opts.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "run")
	r := &runner{db: db, declared: declared, opts: opts, timer: timer, result: &Result{}}
	err := r.run(ctx)
	r.result.Timings = timer.Report()

	detail := "ok"
	if err != nil {
		detail = err.Error()
	}
	span.WithExtra("bindings", fmt.Sprint(len(r.result.Bindings))).End(detail)
	if err != nil {
		return nil, err
	}
	return r.result, nil
}

type runner struct {
	db       *types.Database
	declared *decl.Declared
	opts     Options
	timer    *observ.Timer
	result   *Result
}

func (r *runner) run(ctx context.Context) error {
	phases := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{StageDeclare, r.declare},
		{StageCheck, r.check},
		{StageSpecialize, r.specialize},
		{StageFinalize, r.finalize},
	}
	for _, p := range phases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.phase(ctx, p.stage, p.fn); err != nil {
			return err
		}
	}
	return nil
}

// phase runs fn as a traced, timed stage.
func (r *runner) phase(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	ctx, span := trace.Start(ctx, trace.ScopePass, string(stage))
	emit(r.opts.Sink, Event{Stage: stage, Status: StatusWorking})
	start := time.Now()

	err := r.timer.Time(string(stage), func() error { return fn(ctx) })

	elapsed := time.Since(start)
	if err != nil {
		span.End(err.Error())
		emit(r.opts.Sink, Event{Stage: stage, Status: StatusError, Err: err, Elapsed: elapsed})
		return err
	}
	span.End("")
	emit(r.opts.Sink, Event{Stage: stage, Status: StatusDone, Elapsed: elapsed})
	return nil
}

// declare only reports what Declare allocated.
func (r *runner) declare(ctx context.Context) error {
	span := trace.CurrentSpan(ctx)
	span.WithExtra("modules", fmt.Sprint(len(r.declared.Modules)))
	span.WithExtra("classes", fmt.Sprint(len(r.declared.Classes)))
	span.WithExtra("methods", fmt.Sprint(len(r.declared.Methods)))
	return nil
}

func (r *runner) finalize(context.Context) error {
	r.db.Compact()
	return nil
}

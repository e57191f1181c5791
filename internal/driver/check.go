package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"keel/internal/decl"
	"keel/internal/trace"
	"keel/internal/types"
)

// check unifies every binding with its value, one module per job. Workers
// share the database through Read, so they can only bind placeholders.
func (r *runner) check(ctx context.Context) error {
	modules := r.declared.Modules
	for _, mod := range modules {
		emit(r.opts.Sink, Event{Module: mod.Name(r.db).String(), Stage: StageCheck, Status: StatusQueued})
	}

	jobs := r.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// One slot per module, so workers never write to the same element.
	results := make([][]Binding, len(modules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(modules))))

	for i, mod := range modules {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			out, err := r.checkModule(gctx, mod)
			results[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, out := range results {
		r.result.Bindings = append(r.result.Bindings, out...)
	}
	r.db.Advance(types.PhaseChecked)
	return nil
}

func (r *runner) checkModule(ctx context.Context, mod types.ModuleID) ([]Binding, error) {
	name := mod.Name(r.db).String()
	ctx, span := trace.Start(ctx, trace.ScopeModule, name)
	emit(r.opts.Sink, Event{Module: name, Stage: StageCheck, Status: StatusWorking})
	start := time.Now()

	bound := r.declared.BindingsOf(mod)
	out := make([]Binding, len(bound))
	unresolved := 0

	err := r.db.Read(func(db *types.Database) error {
		checker := types.NewChecker(db)
		for i, b := range bound {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = checkBinding(db, checker, b)
			if !out[i].Resolved {
				unresolved++
				span.Point(b.Name, out[i].Problem)
			}
		}
		return nil
	})

	span.WithExtra("bindings", fmt.Sprint(len(bound))).
		WithExtra("unresolved", fmt.Sprint(unresolved))
	elapsed := time.Since(start)

	switch {
	case err != nil:
		span.End(err.Error())
		emit(r.opts.Sink, Event{Module: name, Stage: StageCheck, Status: StatusError, Err: err, Elapsed: elapsed})
		return nil, err
	case unresolved > 0:
		span.End("")
		emit(r.opts.Sink, Event{
			Module:  name,
			Stage:   StageCheck,
			Status:  StatusError,
			Err:     fmt.Errorf("%d unresolved bindings", unresolved),
			Elapsed: elapsed,
		})
	default:
		span.End("")
		emit(r.opts.Sink, Event{Module: name, Stage: StageCheck, Status: StatusDone, Elapsed: elapsed})
	}
	return out, nil
}

func checkBinding(db *types.Database, checker *types.Checker, b decl.Bound) Binding {
	res := Binding{
		Module:   b.ModuleName,
		Name:     b.Name,
		Source:   b.Source,
		Declared: b.Declared,
	}
	switch {
	case !checker.Check(b.Value, b.Declared):
		res.Problem = fmt.Sprintf("expected %s, found %s", types.Format(db, b.Declared), types.Format(db, b.Value))
	case !b.Declared.IsInferred(db):
		res.Problem = "type can't be inferred"
	default:
		res.Resolved = true
	}
	res.Type = types.Format(db, b.Declared)
	return res
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"keel/internal/config"
	"keel/internal/decl"
	"keel/internal/driver"
	"keel/internal/observ"
	"keel/internal/prof"
	"keel/internal/trace"
	"keel/internal/types"
	"keel/internal/ui"
)

// outcome is everything a command may report about a finished run.
type outcome struct {
	path     string
	cfg      config.Config
	program  *decl.Program
	db       *types.Database
	declared *decl.Declared
	result   *driver.Result
	timer    *observ.Timer
	tracer   trace.Tracer
	cleanup  func()
	profile  *prof.Session
	errOut   io.Writer
}

func (o *outcome) close() {
	if o.cleanup != nil {
		o.cleanup()
	}
	if err := o.profile.Stop(); err != nil {
		fmt.Fprintf(o.errOut, "profile: %v\n", err)
	}
}

// runPipeline loads the manifest at path and runs it through the driver.
// The caller must close the outcome.
func runPipeline(cmd *cobra.Command, path string, interactive bool) (*outcome, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	profile, err := setupProfiling(cmd)
	if err != nil {
		return nil, err
	}
	tracer, cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		_ = profile.Stop()
		return nil, err
	}
	out := &outcome{
		path:    path,
		cfg:     cfg,
		timer:   observ.NewTimer(),
		tracer:  tracer,
		cleanup: cleanup,
		profile: profile,
		errOut:  cmd.ErrOrStderr(),
	}

	if err := out.timer.Time("load", func() (err error) {
		out.program, err = decl.Load(path)
		return err
	}); err != nil {
		out.close()
		return nil, err
	}

	out.db = types.New()
	if err := out.timer.Time("allocate", func() (err error) {
		out.declared, err = decl.Declare(out.db, out.program)
		return err
	}); err != nil {
		out.close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	opts := driver.Options{Jobs: cfg.Jobs(), Timer: out.timer}
	if interactive {
		out.result, err = runWithUI(cmd.Context(), "check "+path, out.program.ModuleNames(), out.db, out.declared, opts)
	} else {
		out.result, err = driver.Run(cmd.Context(), out.db, out.declared, opts)
	}
	if err != nil {
		dumpTrace(cmd, tracer)
		out.close()
		return nil, err
	}
	return out, nil
}

func runWithUI(ctx context.Context, title string, modules []string, db *types.Database, declared *decl.Declared, opts driver.Options) (*driver.Result, error) {
	type runOutcome struct {
		result *driver.Result
		err    error
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		opts.Sink = driver.ChannelSink{Ch: events}
		res, err := driver.Run(ctx, db, declared, opts)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, modules, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()

	// The program may quit before the run does; keep the sink flowing.
	go func() {
		for range events {
		}
	}()

	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

func printTimings(cmd *cobra.Command, timer *observ.Timer) {
	show, _ := cmd.Root().PersistentFlags().GetBool("timings")
	if show {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
}

package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"keel/internal/snapshot"
)

var errUnresolved = errors.New("unresolved bindings")

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] manifest.toml",
		Short: "Check the bindings of a program manifest",
		Long: `Check declares every entity of the manifest, unifies each binding with its
value and specializes the generic classes the bindings use.`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().Bool("snapshot", false, "store the layout snapshot in the snapshot directory")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	interactive, err := useTUI(cmd)
	if err != nil {
		return err
	}
	writeSnapshot, err := cmd.Flags().GetBool("snapshot")
	if err != nil {
		return fmt.Errorf("failed to get snapshot flag: %w", err)
	}

	run, err := runPipeline(cmd, args[0], interactive)
	if err != nil {
		return err
	}
	defer run.close()

	res := run.result
	unresolved := res.Unresolved()
	for _, b := range unresolved {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s.%s: %s\n", errorLabel("error:"), b.Module, b.Name, b.Problem)
	}

	if writeSnapshot {
		store, err := snapshot.Open(run.cfg.SnapshotDir())
		if err != nil {
			return err
		}
		name := snapshot.NameFor(run.path)
		if err := store.Put(name, snapshot.Build(run.db, res)); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		if !quiet(cmd) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", dimLabel("snapshot:"), filepath.Join(store.Dir(), name+".mp"))
		}
	}

	printTimings(cmd, run.timer)

	if len(unresolved) > 0 {
		dumpTrace(cmd, run.tracer)
		if !quiet(cmd) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d of %d bindings unresolved\n", errorLabel("failed:"), len(unresolved), len(res.Bindings))
		}
		return fmt.Errorf("%s: %w", args[0], errUnresolved)
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s checked %d bindings in %d modules, specialized %d classes\n",
			okLabel("ok:"), len(res.Bindings), len(run.declared.Modules), len(res.Specialized))
	}
	return nil
}

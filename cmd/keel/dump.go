package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"keel/internal/snapshot"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump manifest.toml name",
		Short: "Dump the layout of a class or binding",
		Long: `Dump runs the manifest and prints the recorded layout of an entity. The
name is either module.binding or a class name; classes are printed with
their specializations.`,
		Args: cobra.ExactArgs(2),
		RunE: runDump,
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	run, err := runPipeline(cmd, args[0], false)
	if err != nil {
		return err
	}
	defer run.close()

	snap := snapshot.Build(run.db, run.result)
	name := args[1]
	out := cmd.OutOrStdout()

	for _, b := range snap.Bindings {
		if b.Module+"."+b.Name == name {
			dumpConfig.Fdump(out, b)
			return nil
		}
	}
	if cls, ok := snap.Class(name); ok {
		dumpConfig.Fdump(out, cls)
		for _, spec := range snap.Specializations(cls.ID) {
			dumpConfig.Fdump(out, spec)
		}
		return nil
	}
	return fmt.Errorf("%s: no class or binding named %q", args[0], name)
}

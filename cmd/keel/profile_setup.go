package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"keel/internal/prof"
)

// setupProfiling starts the profilers requested on the command line. The
// session is nil when none was requested.
func setupProfiling(cmd *cobra.Command) (*prof.Session, error) {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	for _, f := range []struct {
		name   string
		target *string
	}{
		{"cpu-profile", &opts.CPU},
		{"mem-profile", &opts.Mem},
		{"runtime-trace", &opts.RuntimeTrace},
	} {
		v, err := flags.GetString(f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
		*f.target = v
	}
	if !opts.Enabled() {
		return nil, nil
	}
	return prof.Start(opts)
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"keel/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "keel",
		Short: "Type database tooling for ownership-aware programs",
		Long: `keel declares the entities of a program manifest, checks its bindings,
specializes the generic classes they use and reports the resulting layout.`,
		Version:           version.Version,
		SilenceUsage:      true,
		PersistentPreRunE: applyColor,
	}

	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.String("config", "", "path to keel.toml (default: nearest keel.toml)")
	flags.String("ui", "auto", "progress display (auto|live|plain)")
	flags.Int("jobs", 0, "modules checked in parallel (0 = one per CPU)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 0, "events kept by the ring tracer")
	flags.Duration("trace-heartbeat", 0, "interval of heartbeat events (0 disables them)")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")

	root.AddCommand(newCheckCmd(), newShapesCmd(), newDumpCmd(), newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func applyColor(cmd *cobra.Command, _ []string) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}

var (
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	okLabel    = color.New(color.FgGreen, color.Bold).SprintFunc()
	dimLabel   = color.New(color.Faint).SprintFunc()
)

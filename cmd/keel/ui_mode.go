package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// display selects how check reports pipeline progress.
type display string

const (
	// displayAuto shows the live view on an interactive stdout unless the
	// run is quiet.
	displayAuto display = "auto"
	// displayLive always shows the Bubble Tea view.
	displayLive display = "live"
	// displayPlain prints only the final report.
	displayPlain display = "plain"
)

func parseDisplay(value string) (display, error) {
	switch d := display(strings.TrimSpace(strings.ToLower(value))); d {
	case "":
		return displayAuto, nil
	case displayAuto, displayLive, displayPlain:
		return d, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|live|plain)", value)
	}
}

func (d display) live(quiet, terminal bool) bool {
	switch d {
	case displayLive:
		return true
	case displayPlain:
		return false
	default:
		return terminal && !quiet
	}
}

func useTUI(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return false, fmt.Errorf("failed to get ui flag: %w", err)
	}
	d, err := parseDisplay(value)
	if err != nil {
		return false, err
	}
	return d.live(quiet(cmd), isTerminal(os.Stdout)), nil
}

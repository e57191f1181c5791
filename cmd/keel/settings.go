package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"keel/internal/config"
)

// loadSettings reads keel.toml and applies the flags the user set
// explicitly on top of it.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()

	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return config.Config{}, err
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"trace", &cfg.Trace.Output},
		{"trace-level", &cfg.Trace.Level},
		{"trace-mode", &cfg.Trace.Mode},
	}
	for _, s := range overrides {
		if !flags.Changed(s.flag) {
			continue
		}
		if *s.target, err = flags.GetString(s.flag); err != nil {
			return config.Config{}, fmt.Errorf("failed to get %s flag: %w", s.flag, err)
		}
	}
	// An output without a level means the user wants to see something.
	if flags.Changed("trace") && !flags.Changed("trace-level") && cfg.Trace.Level == "off" {
		cfg.Trace.Level = "phase"
		if !flags.Changed("trace-mode") {
			cfg.Trace.Mode = "stream"
		}
	}

	if flags.Changed("trace-ring-size") {
		if cfg.Trace.RingSize, err = flags.GetInt("trace-ring-size"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
		}
	}
	if flags.Changed("trace-heartbeat") {
		d, err := flags.GetDuration("trace-heartbeat")
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
		}
		cfg.Trace.Heartbeat = d.String()
	}
	if flags.Changed("jobs") {
		if cfg.Check.Jobs, err = flags.GetInt("jobs"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

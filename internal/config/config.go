// Package config loads keel.toml, the tool configuration shared by all
// commands. Command-line flags override the values read here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"keel/internal/trace"
)

// FileName is the name looked up by Find.
const FileName = "keel.toml"

type Config struct {
	// Path is the file the configuration was read from, empty for defaults.
	Path     string         `toml:"-"`
	Trace    TraceConfig    `toml:"trace"`
	Check    CheckConfig    `toml:"check"`
	Snapshot SnapshotConfig `toml:"snapshot"`
}

type TraceConfig struct {
	Level     string `toml:"level"`
	Mode      string `toml:"mode"`
	Format    string `toml:"format"`
	Output    string `toml:"output"`
	RingSize  int    `toml:"ring_size"`
	Heartbeat string `toml:"heartbeat"`
}

type CheckConfig struct {
	// Jobs limits the number of modules checked at once. Zero means one job
	// per CPU.
	Jobs int `toml:"jobs"`
}

type SnapshotConfig struct {
	Dir string `toml:"dir"`
}

// Default returns the configuration used when no keel.toml exists.
func Default() Config {
	return Config{
		Trace: TraceConfig{
			Level:    "off",
			Mode:     "ring",
			Format:   "auto",
			RingSize: 4096,
		},
		Snapshot: SnapshotConfig{Dir: ".keel"},
	}
}

// Load reads the configuration at path. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := rejectUndecoded(path, meta); err != nil {
		return Config{}, err
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find walks from dir towards the file system root and returns the first
// keel.toml it encounters.
func Find(dir string) (string, bool, error) {
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Discover loads the nearest keel.toml above dir, or the defaults when there
// is none.
func Discover(dir string) (Config, error) {
	path, ok, err := Find(dir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func rejectUndecoded(path string, meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
}

func (c *Config) Validate() error {
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return err
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return err
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		return err
	}
	if c.Trace.RingSize < 0 {
		return fmt.Errorf("trace.ring_size must not be negative, got %d", c.Trace.RingSize)
	}
	if c.Trace.Heartbeat != "" {
		if _, err := time.ParseDuration(c.Trace.Heartbeat); err != nil {
			return fmt.Errorf("trace.heartbeat: %w", err)
		}
	}
	if c.Check.Jobs < 0 {
		return fmt.Errorf("check.jobs must not be negative, got %d", c.Check.Jobs)
	}
	return nil
}

// Jobs returns the effective number of parallel check jobs.
func (c *Config) Jobs() int {
	if c.Check.Jobs > 0 {
		return c.Check.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// Tracer converts the trace section into a tracer configuration. The
// section must have passed Validate.
func (c *Config) Tracer() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, err
	}
	var heartbeat time.Duration
	if c.Trace.Heartbeat != "" {
		if heartbeat, err = time.ParseDuration(c.Trace.Heartbeat); err != nil {
			return trace.Config{}, err
		}
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: c.Trace.Output,
		RingSize:   c.Trace.RingSize,
		Heartbeat:  heartbeat,
	}, nil
}

// SnapshotDir returns the snapshot directory, relative paths being resolved
// against the directory of the configuration file.
func (c *Config) SnapshotDir() string {
	dir := c.Snapshot.Dir
	if dir == "" || filepath.IsAbs(dir) || c.Path == "" {
		return dir
	}
	return filepath.Join(filepath.Dir(c.Path), dir)
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"keel/internal/snapshot"
)

const manifest = `
main = "app"

[[modules]]
name = "app"

[[classes]]
module = "app"
name = "Box"
params = [{ name = "T" }]
fields = [{ name = "value", type = "T" }]

[[classes]]
module = "app"
name = "Point"
stack = true
fields = [{ name = "x", type = "Int" }]

[[bindings]]
module = "app"
name = "box"
declared = "Box[?]"
value = "Box[Int]"

[[bindings]]
module = "app"
name = "point"
declared = "?"
value = "Point"
`

const broken = `
[[modules]]
name = "app"

[[bindings]]
module = "app"
name = "n"
declared = "Int"
value = "String"
`

type workspace struct {
	dir      string
	config   string
	manifest string
}

func newWorkspace(t *testing.T, program string) workspace {
	t.Helper()
	dir := t.TempDir()
	ws := workspace{
		dir:      dir,
		config:   filepath.Join(dir, "keel.toml"),
		manifest: filepath.Join(dir, "prog.toml"),
	}
	cfg := "[snapshot]\ndir = \"snapshots\"\n\n[check]\njobs = 2\n"
	if err := os.WriteFile(ws.config, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(ws.manifest, []byte(program), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return ws
}

func execute(t *testing.T, ws workspace, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--ui", "plain", "--color", "off", "--config", ws.config}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCheckCommand(t *testing.T) {
	ws := newWorkspace(t, manifest)

	stdout, stderr, err := execute(t, ws, "check", "--snapshot", ws.manifest)
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "ok: checked 2 bindings in 1 modules, specialized 1 classes") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}

	store, err := snapshot.Open(filepath.Join(ws.dir, "snapshots"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	snap, ok, err := store.Get("prog")
	if err != nil || !ok {
		t.Fatalf("snapshot missing: %v, %v", ok, err)
	}
	if box, ok := snap.Class("Box"); !ok || len(snap.Specializations(box.ID)) != 1 {
		t.Fatalf("snapshot lacks the Box specialization")
	}
}

func TestCheckCommandReportsUnresolved(t *testing.T) {
	ws := newWorkspace(t, broken)

	stdout, stderr, err := execute(t, ws, "check", ws.manifest)
	if !errors.Is(err, errUnresolved) {
		t.Fatalf("check error = %v, want errUnresolved", err)
	}
	if !strings.Contains(stderr, "error: app.n: expected Int, found String") {
		t.Fatalf("stderr lacks the problem:\n%s", stderr)
	}
	if !strings.Contains(stdout, "failed: 1 of 1 bindings unresolved") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
}

func TestCheckCommandQuiet(t *testing.T) {
	ws := newWorkspace(t, manifest)
	stdout, _, err := execute(t, ws, "--quiet", "check", ws.manifest)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if stdout != "" {
		t.Fatalf("quiet check printed:\n%s", stdout)
	}
}

func TestShapesCommand(t *testing.T) {
	ws := newWorkspace(t, manifest)

	stdout, _, err := execute(t, ws, "shapes", "--classes", ws.manifest)
	if err != nil {
		t.Fatalf("shapes failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) < 6 {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
	if lines[0] != "BINDING    TYPE      SHAPE" {
		t.Fatalf("header %q", lines[0])
	}
	if lines[1] != "app.box    Box[Int]  o" {
		t.Fatalf("box row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "app.point  Point     S") {
		t.Fatalf("point row %q", lines[2])
	}
	if !strings.HasPrefix(lines[4], "CLASS") || !strings.HasPrefix(lines[5], "Box") || !strings.HasSuffix(lines[5], "i64") {
		t.Fatalf("class rows %q", lines[4:])
	}
}

func TestDumpCommand(t *testing.T) {
	ws := newWorkspace(t, manifest)

	stdout, _, err := execute(t, ws, "dump", ws.manifest, "app.box")
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	if !strings.Contains(stdout, `"Box[Int]"`) || !strings.Contains(stdout, "Resolved: (bool) true") {
		t.Fatalf("unexpected binding dump:\n%s", stdout)
	}

	stdout, _, err = execute(t, ws, "dump", ws.manifest, "Box")
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	if strings.Count(stdout, "(snapshot.Class)") != 2 {
		t.Fatalf("class dump should include the specialization:\n%s", stdout)
	}

	if _, _, err := execute(t, ws, "dump", ws.manifest, "Nope"); err == nil {
		t.Fatalf("dump of an unknown name succeeded")
	}
}

func TestVersionCommand(t *testing.T) {
	ws := newWorkspace(t, manifest)

	stdout, _, err := execute(t, ws, "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if payload.Tool != "keel" || payload.GitCommit == "" || payload.BuildDate != "" {
		t.Fatalf("payload %+v", payload)
	}

	stdout, _, err = execute(t, ws, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "keel ") || !strings.Contains(stdout, versionTagline) {
		t.Fatalf("pretty version %q", stdout)
	}

	if _, _, err := execute(t, ws, "version", "--format", "xml"); err == nil {
		t.Fatalf("unsupported format accepted")
	}
}

func TestInvalidFlags(t *testing.T) {
	ws := newWorkspace(t, manifest)
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--color", "loud", "version"}, "invalid --color value"},
		{[]string{"--ui", "maybe", "check", ws.manifest}, "invalid --ui value"},
		{[]string{"--trace-level", "chatty", "check", ws.manifest}, "invalid trace level"},
		{[]string{"--jobs", "-1", "check", ws.manifest}, "jobs must not be negative"},
		{[]string{"check", filepath.Join(ws.dir, "missing.toml")}, "missing.toml"},
	}
	for _, tt := range tests {
		_, _, err := execute(t, ws, tt.args...)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%v: error = %v, want %q", tt.args, err, tt.want)
		}
	}
}

func TestTraceFlagWritesEvents(t *testing.T) {
	ws := newWorkspace(t, manifest)
	out := filepath.Join(ws.dir, "trace.ndjson")

	if _, _, err := execute(t, ws, "--trace", out, "check", ws.manifest); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	if !strings.Contains(string(data), `"name":"check"`) {
		t.Fatalf("trace lacks the check pass:\n%s", data)
	}
}

func TestParseDisplay(t *testing.T) {
	for _, in := range []string{"", "auto", "LIVE", " plain "} {
		if _, err := parseDisplay(in); err != nil {
			t.Errorf("parseDisplay(%q): %v", in, err)
		}
	}
	if _, err := parseDisplay("on"); err == nil {
		t.Fatalf("parseDisplay accepted an unknown mode")
	}

	tests := []struct {
		mode     display
		quiet    bool
		terminal bool
		want     bool
	}{
		{displayLive, true, false, true},
		{displayPlain, false, true, false},
		{displayAuto, false, true, true},
		{displayAuto, true, true, false},
		{displayAuto, false, false, false},
	}
	for _, tt := range tests {
		if got := tt.mode.live(tt.quiet, tt.terminal); got != tt.want {
			t.Errorf("%s.live(quiet=%v, terminal=%v) = %v", tt.mode, tt.quiet, tt.terminal, got)
		}
	}
}

func TestProfileFlags(t *testing.T) {
	ws := newWorkspace(t, manifest)
	mem := filepath.Join(ws.dir, "mem.pprof")

	if _, _, err := execute(t, ws, "--mem-profile", mem, "shapes", ws.manifest); err != nil {
		t.Fatalf("shapes failed: %v", err)
	}
	if info, err := os.Stat(mem); err != nil || info.Size() == 0 {
		t.Fatalf("heap profile not written: %v", err)
	}
}

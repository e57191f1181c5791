package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"off", LevelOff, false},
		{"PHASE", LevelPhase, false},
		{" detail ", LevelDetail, false},
		{"debug", LevelDebug, false},
		{"loud", LevelOff, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeBinding, false},
		{LevelDebug, ScopeBinding, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Fatalf("%v.ShouldEmit(%v) = %v", tt.level, tt.scope, got)
		}
	}
}

func TestStartNestsSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)

	ctx, pass := Start(ctx, ScopePass, "check")
	mctx, mod := Start(ctx, ScopeModule, "module:std.int")
	_, bind := Start(mctx, ScopeBinding, "x")
	bind.End("")
	mod.WithExtra("bindings", "1").End("")
	pass.End("ok")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if events[1].ParentID != pass.ID() || events[1].Depth != 1 {
		t.Fatalf("module span parent = %d depth = %d", events[1].ParentID, events[1].Depth)
	}
	if events[2].Kind != KindSpanEnd || events[2].Extra["bindings"] != "1" {
		t.Fatalf("unexpected module end event %+v", events[2])
	}
	if events[3].Detail != "ok" {
		t.Fatalf("pass end detail = %q", events[3].Detail)
	}
}

func TestErrorLevelRingKeepsAllSpans(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	ctx := WithTracer(context.Background(), ring)

	_, span := Start(ctx, ScopeBinding, "x")
	span.End("")

	if got := len(ring.Snapshot()); got != 2 {
		t.Fatalf("error-level ring kept %d events, want 2", got)
	}
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for i := range 5 {
		ring.Emit(&Event{Scope: ScopePass, Seq: uint64(i)})
	}

	got := ring.Snapshot()
	if len(got) != 3 || got[0].Seq != 2 || got[2].Seq != 4 {
		t.Fatalf("Snapshot() = %+v", got)
	}
}

func TestStreamTextFormat(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatText)

	s := Begin(st, ScopePass, "specialize", nil)
	s.WithExtra("b", "2").WithExtra("a", "1").End("done")
	Begin(st, ScopeModule, "hidden", s).End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "→ specialize") {
		t.Fatalf("begin line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "← specialize (done)") || !strings.HasSuffix(lines[1], "{a=1, b=2}") {
		t.Fatalf("end line = %q", lines[1])
	}
}

func TestNDJSONFormat(t *testing.T) {
	ev := &Event{
		Time:   time.Unix(0, 0).UTC(),
		Seq:    7,
		Kind:   KindPoint,
		Scope:  ScopeModule,
		Name:   "bind",
		Detail: "x",
	}

	var got map[string]any
	if err := json.Unmarshal(ev.Encode(FormatNDJSON, time.Time{}), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["kind"] != "point" || got["scope"] != "module" || got["name"] != "bind" {
		t.Fatalf("unexpected event %v", got)
	}
}

func TestNewTracer(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("LevelOff must give a disabled tracer")
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Begin(tr, ScopeDriver, "run", nil).End("")
	if buf.Len() == 0 {
		t.Fatalf("stream side wrote nothing")
	}
	ring, ok := Ring(tr)
	if !ok || len(ring.Snapshot()) != 2 {
		t.Fatalf("ring side missing events")
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("expected an error for an unknown mode")
	}
	if f := formatFor(FormatAuto, "out.ndjson"); f != FormatNDJSON {
		t.Fatalf("formatFor(.ndjson) = %v", f)
	}
}

func TestHeartbeat(t *testing.T) {
	ring := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()

	events := ring.Snapshot()
	if len(events) == 0 || events[0].Kind != KindHeartbeat {
		t.Fatalf("expected heartbeat events, got %+v", events)
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("Nop tracer must not start a heartbeat")
	}
}

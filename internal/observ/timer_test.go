package observ

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	a := tm.Begin("declare")
	tm.End(a, "")
	b := tm.Begin("check")
	tm.End(b, "3 modules")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("got %d phases", len(r.Phases))
	}
	if r.Phases[1].Name != "check" || r.Phases[1].Note != "3 modules" {
		t.Fatalf("unexpected phase %+v", r.Phases[1])
	}
	if r.TotalMS < r.Phases[0].DurationMS {
		t.Fatalf("total %.3f smaller than a phase", r.TotalMS)
	}

	s := tm.Summary()
	for _, want := range []string{"declare", "check", "// 3 modules", "total"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary misses %q:\n%s", want, s)
		}
	}
}

func TestTimerTime(t *testing.T) {
	tm := NewTimer()
	boom := errors.New("boom")
	if err := tm.Time("specialize", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Time returned %v", err)
	}
	if got := tm.Report().Phases[0].Note; got != "failed" {
		t.Fatalf("note = %q", got)
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("module"), "")
		}()
	}
	wg.Wait()
	if n := len(tm.Report().Phases); n != 8 {
		t.Fatalf("got %d phases", n)
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("empty timer report = %+v", r)
	}
}

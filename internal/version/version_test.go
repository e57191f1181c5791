package version

import (
	"os"
	"testing"

	"github.com/fatih/color"
)

func TestColoredWithoutColor(t *testing.T) {
	saved, savedVersion := color.NoColor, Version
	t.Cleanup(func() { color.NoColor, Version = saved, savedVersion })
	color.NoColor = true

	tests := []string{"0.1.0-dev", "1.2.3", "2.0", "1.0.0-rc.1+build"}
	for _, v := range tests {
		Version = v
		if got := Colored(); got != v {
			t.Fatalf("Colored() = %q, want %q", got, v)
		}
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	if os.Getenv("NO_COLOR") != "" {
		t.Skip("NO_COLOR is set")
	}
	saved := color.NoColor
	t.Cleanup(func() { color.NoColor = saved })
	color.NoColor = false

	if got := Colored(); got == Version {
		t.Fatalf("expected escape sequences in %q", got)
	}
}

func TestDefaults(t *testing.T) {
	if Version == "" {
		t.Fatalf("Version must have a default")
	}
}

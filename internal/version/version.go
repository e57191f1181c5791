// Package version holds build metadata for the keel CLI. The variables are
// set at link time with -ldflags "-X keel/internal/version.Version=...".
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	Version    = "0.1.0-dev"
	GitCommit  = ""
	GitMessage = ""
	BuildDate  = ""
)

var partColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Colored renders Version with the major, minor and patch numbers in their
// own colors. Pre-release suffixes are left uncolored. color.NoColor turns
// the colors off.
func Colored() string {
	core, suffix, hasSuffix := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", len(partColors))

	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(partColors[i].Sprint(p))
	}
	if hasSuffix {
		b.WriteByte('-')
		b.WriteString(suffix)
	}
	return b.String()
}

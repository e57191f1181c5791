// Package modname implements dotted module names such as "std.string".
package modname

import (
	"path/filepath"
	"strings"
)

const (
	// Separator splits module name segments.
	Separator = "."

	// StdNamespace is the root namespace of the standard library.
	StdNamespace = "std"

	// SourceExtension is the file extension of source files.
	SourceExtension = ".kl"
)

// Name is a fully qualified module name.
type Name struct {
	value string
}

// New wraps a dotted module name.
func New(value string) Name {
	return Name{value: value}
}

// FromSegments joins path segments into a module name.
func FromSegments(segments ...string) Name {
	return Name{value: strings.Join(segments, Separator)}
}

// FromRelativePath derives a module name from a path like "std/foo.kl".
func FromRelativePath(path string) Name {
	path = filepath.ToSlash(strings.TrimSuffix(path, SourceExtension))
	return Name{value: strings.ReplaceAll(path, "/", Separator)}
}

// String returns the dotted form.
func (n Name) String() string { return n.value }

// IsZero reports whether the name is empty.
func (n Name) IsZero() bool { return n.value == "" }

// Head returns the root namespace segment.
func (n Name) Head() string {
	if i := strings.Index(n.value, Separator); i >= 0 {
		return n.value[:i]
	}
	return n.value
}

// Tail returns the last segment.
func (n Name) Tail() string {
	if i := strings.LastIndex(n.value, Separator); i >= 0 {
		return n.value[i+len(Separator):]
	}
	return n.value
}

// Segments splits the name into its parts.
func (n Name) Segments() []string {
	if n.value == "" {
		return nil
	}
	return strings.Split(n.value, Separator)
}

// IsRoot reports whether the name has a single segment.
func (n Name) IsRoot() bool {
	return !strings.Contains(n.value, Separator)
}

// IsStd reports whether the module lives in the standard library.
func (n Name) IsStd() bool {
	return n.Head() == StdNamespace
}

// RelativePath returns the source path for the module, e.g. std/foo.kl.
func (n Name) RelativePath() string {
	return filepath.Join(n.Segments()...) + SourceExtension
}

package modname

import (
	"path/filepath"
	"testing"
)

func TestNameParts(t *testing.T) {
	tests := []struct {
		name   string
		head   string
		tail   string
		isRoot bool
		isStd  bool
	}{
		{"std.string", "std", "string", false, true},
		{"std", "std", "std", true, true},
		{"foo.bar.baz", "foo", "baz", false, false},
		{"test_foo", "test_foo", "test_foo", true, false},
	}
	for _, tt := range tests {
		n := New(tt.name)
		if got := n.Head(); got != tt.head {
			t.Errorf("%s: Head()=%q want %q", tt.name, got, tt.head)
		}
		if got := n.Tail(); got != tt.tail {
			t.Errorf("%s: Tail()=%q want %q", tt.name, got, tt.tail)
		}
		if got := n.IsRoot(); got != tt.isRoot {
			t.Errorf("%s: IsRoot()=%v want %v", tt.name, got, tt.isRoot)
		}
		if got := n.IsStd(); got != tt.isStd {
			t.Errorf("%s: IsStd()=%v want %v", tt.name, got, tt.isStd)
		}
	}
}

func TestNamePaths(t *testing.T) {
	n := FromRelativePath("std/foo/bar.kl")
	if n.String() != "std.foo.bar" {
		t.Fatalf("unexpected name %q", n)
	}
	if got, want := n.RelativePath(), filepath.Join("std", "foo", "bar.kl"); got != want {
		t.Fatalf("RelativePath()=%q want %q", got, want)
	}
	if FromSegments("a", "b").String() != "a.b" {
		t.Fatalf("FromSegments mismatch")
	}
}

package location

import "fmt"

// Range is an inclusive range of lines or columns, starting at 1.
type Range struct {
	Start uint32
	End   uint32
}

// Location points at a region of a source file.
type Location struct {
	Lines   Range
	Columns Range
}

// New returns a location covering the given line and column ranges.
func New(lineStart, lineEnd, colStart, colEnd uint32) Location {
	return Location{
		Lines:   Range{Start: lineStart, End: lineEnd},
		Columns: Range{Start: colStart, End: colEnd},
	}
}

// At returns a single-position location.
func At(line, column uint32) Location {
	return New(line, line, column, column)
}

// IsZero reports whether the location was never set.
func (l Location) IsZero() bool {
	return l == Location{}
}

// Cover returns the smallest location containing both l and other.
func (l Location) Cover(other Location) Location {
	if other.IsZero() {
		return l
	}
	if l.IsZero() {
		return other
	}
	out := l
	if other.Lines.Start < out.Lines.Start ||
		(other.Lines.Start == out.Lines.Start && other.Columns.Start < out.Columns.Start) {
		out.Lines.Start = other.Lines.Start
		out.Columns.Start = other.Columns.Start
	}
	if other.Lines.End > out.Lines.End ||
		(other.Lines.End == out.Lines.End && other.Columns.End > out.Columns.End) {
		out.Lines.End = other.Lines.End
		out.Columns.End = other.Columns.End
	}
	return out
}

func (l Location) String() string {
	if l.Lines.Start == l.Lines.End {
		return fmt.Sprintf("%d:%d", l.Lines.Start, l.Columns.Start)
	}
	return fmt.Sprintf("%d:%d-%d:%d", l.Lines.Start, l.Columns.Start, l.Lines.End, l.Columns.End)
}

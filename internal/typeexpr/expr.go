// Package typeexpr parses the textual type notation used in declaration
// manifests, for example "uni ref Array[Int]", "(Int, ?)" or
// "fn move (String) -> Bool".
package typeexpr

import "strings"

type Kind uint8

const (
	// KindNamed is a class, trait or type parameter name with optional
	// arguments.
	KindNamed Kind = iota
	// KindInfer is "?", a type left to inference.
	KindInfer
	KindNever
	KindTuple
	KindClosure
)

// Qualifier is the ownership written in front of a type.
type Qualifier uint8

const (
	QualOwned Qualifier = iota
	QualRef
	QualMut
	QualUni
	QualUniRef
	QualUniMut
)

var qualifierNames = [...]string{"", "ref", "mut", "uni", "uni ref", "uni mut"}

func (q Qualifier) String() string { return qualifierNames[q] }

// Expr is a parsed type.
type Expr struct {
	Kind Kind
	Qual Qualifier
	// Name is dotted for module-qualified names: "std.option.Option".
	Name string
	// Args are the type arguments of a named type, the members of a tuple or
	// the arguments of a closure.
	Args   []*Expr
	Moving bool
	// Return is the closure return type, nil when omitted.
	Return *Expr
	// Pos is the byte offset of the expression in the input.
	Pos int
}

// String renders e in the notation Parse accepts.
func (e *Expr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	if e.Qual != QualOwned {
		b.WriteString(e.Qual.String())
		b.WriteByte(' ')
	}
	switch e.Kind {
	case KindInfer:
		b.WriteByte('?')
	case KindNever:
		b.WriteString("Never")
	case KindTuple:
		writeList(b, e.Args, "(", ")")
	case KindClosure:
		b.WriteString("fn ")
		if e.Moving {
			b.WriteString("move ")
		}
		writeList(b, e.Args, "(", ")")
		if e.Return != nil {
			b.WriteString(" -> ")
			e.Return.write(b)
		}
	default:
		b.WriteString(e.Name)
		if len(e.Args) > 0 {
			writeList(b, e.Args, "[", "]")
		}
	}
}

func writeList(b *strings.Builder, list []*Expr, open, end string) {
	b.WriteString(open)
	for i, a := range list {
		if i > 0 {
			b.WriteString(", ")
		}
		a.write(b)
	}
	b.WriteString(end)
}

// Walk calls fn for e and every nested expression, parents first.
func (e *Expr) Walk(fn func(*Expr)) {
	fn(e)
	for _, a := range e.Args {
		a.Walk(fn)
	}
	if e.Return != nil {
		e.Return.Walk(fn)
	}
}

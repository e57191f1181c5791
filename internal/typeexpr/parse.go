package typeexpr

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// SyntaxError is a parse error at a byte offset of the input.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("type %q: column %d: %s", e.Input, e.Pos+1, e.Msg)
}

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokQuestion
	tokComma
	tokDot
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokArrow
)

var tokenNames = [...]string{
	tokEOF:      "end of input",
	tokIdent:    "name",
	tokQuestion: "'?'",
	tokComma:    "','",
	tokDot:      "'.'",
	tokLBracket: "'['",
	tokRBracket: "']'",
	tokLParen:   "'('",
	tokRParen:   "')'",
	tokArrow:    "'->'",
}

var punctuation = map[byte]tokenKind{
	'?': tokQuestion, ',': tokComma, '.': tokDot,
	'[': tokLBracket, ']': tokRBracket, '(': tokLParen, ')': tokRParen,
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	input string
	off   int
	tok   token
	err   *SyntaxError
}

// Parse parses a single type expression.
func Parse(input string) (*Expr, error) {
	p := &parser{input: input}
	p.next()
	e := p.parseType()
	if p.err == nil && p.tok.kind != tokEOF {
		p.fail(p.tok.pos, "unexpected %s after type", p.describe())
	}
	if p.err != nil {
		return nil, p.err
	}
	return e, nil
}

// MustParse is Parse for inputs known to be valid. It panics on errors.
func MustParse(input string) *Expr {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) fail(pos int, format string, args ...any) {
	if p.err == nil {
		p.err = &SyntaxError{Input: p.input, Pos: pos, Msg: fmt.Sprintf(format, args...)}
	}
	p.tok = token{kind: tokEOF, pos: len(p.input)}
	p.off = len(p.input)
}

func (p *parser) describe() string {
	if p.tok.kind == tokIdent {
		return fmt.Sprintf("%q", p.tok.text)
	}
	return tokenNames[p.tok.kind]
}

func (p *parser) next() {
	for p.off < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.off:])
		if !unicode.IsSpace(r) {
			break
		}
		p.off += size
	}
	start := p.off
	if start >= len(p.input) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	c := p.input[start]
	if k, ok := punctuation[c]; ok {
		p.off++
		p.tok = token{kind: k, text: string(c), pos: start}
		return
	}
	if c == '-' && start+1 < len(p.input) && p.input[start+1] == '>' {
		p.off += 2
		p.tok = token{kind: tokArrow, text: "->", pos: start}
		return
	}

	r, size := utf8.DecodeRuneInString(p.input[start:])
	if !isIdentStart(r) {
		p.fail(start, "unexpected character %q", r)
		return
	}
	p.off += size
	for p.off < len(p.input) {
		r, size := utf8.DecodeRuneInString(p.input[p.off:])
		if !isIdentPart(r) {
			break
		}
		p.off += size
	}
	p.tok = token{kind: tokIdent, text: p.input[start:p.off], pos: start}
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return isIdentStart(r) || unicode.IsDigit(r) }

func (p *parser) expect(kind tokenKind) bool {
	if p.tok.kind != kind {
		p.fail(p.tok.pos, "expected %s, found %s", tokenNames[kind], p.describe())
		return false
	}
	p.next()
	return true
}

func (p *parser) keyword(word string) bool {
	if p.tok.kind == tokIdent && p.tok.text == word {
		p.next()
		return true
	}
	return false
}

func (p *parser) parseType() *Expr {
	pos := p.tok.pos
	qual := p.parseQualifier()
	e := p.parseBase()
	if e == nil {
		return nil
	}
	if qual != QualOwned {
		if e.Kind == KindNever {
			p.fail(pos, "Never can't be qualified")
			return nil
		}
		e.Qual = qual
		e.Pos = pos
	}
	return e
}

func (p *parser) parseQualifier() Qualifier {
	switch {
	case p.keyword("ref"):
		return QualRef
	case p.keyword("mut"):
		return QualMut
	case p.keyword("uni"):
		switch {
		case p.keyword("ref"):
			return QualUniRef
		case p.keyword("mut"):
			return QualUniMut
		}
		return QualUni
	}
	return QualOwned
}

func (p *parser) parseBase() *Expr {
	pos := p.tok.pos
	switch p.tok.kind {
	case tokQuestion:
		p.next()
		return &Expr{Kind: KindInfer, Pos: pos}
	case tokLParen:
		args := p.parseList(tokLParen, tokRParen)
		if p.err != nil {
			return nil
		}
		if len(args) == 0 {
			p.fail(pos, "tuples need at least one member")
			return nil
		}
		return &Expr{Kind: KindTuple, Args: args, Pos: pos}
	case tokIdent:
	default:
		p.fail(pos, "expected a type, found %s", p.describe())
		return nil
	}

	switch p.tok.text {
	case "Never":
		p.next()
		return &Expr{Kind: KindNever, Pos: pos}
	case "fn":
		p.next()
		return p.parseClosure(pos)
	}

	name := p.tok.text
	p.next()
	for p.tok.kind == tokDot {
		p.next()
		if p.tok.kind != tokIdent {
			p.fail(p.tok.pos, "expected a name after '.', found %s", p.describe())
			return nil
		}
		name += "." + p.tok.text
		p.next()
	}

	e := &Expr{Kind: KindNamed, Name: name, Pos: pos}
	if p.tok.kind == tokLBracket {
		open := p.tok.pos
		e.Args = p.parseList(tokLBracket, tokRBracket)
		if p.err == nil && len(e.Args) == 0 {
			p.fail(open, "empty type argument list")
		}
	}
	if p.err != nil {
		return nil
	}
	return e
}

func (p *parser) parseClosure(pos int) *Expr {
	e := &Expr{Kind: KindClosure, Pos: pos}
	e.Moving = p.keyword("move")
	if p.tok.kind == tokLParen {
		e.Args = p.parseList(tokLParen, tokRParen)
	}
	if p.err == nil && p.tok.kind == tokArrow {
		p.next()
		e.Return = p.parseType()
	}
	if p.err != nil {
		return nil
	}
	return e
}

// parseList parses "open (type (',' type)*)? end".
func (p *parser) parseList(open, end tokenKind) []*Expr {
	if !p.expect(open) {
		return nil
	}
	var out []*Expr
	for p.tok.kind != end {
		t := p.parseType()
		if p.err != nil {
			return nil
		}
		out = append(out, t)
		if p.tok.kind != tokComma {
			break
		}
		p.next()
	}
	if !p.expect(end) {
		return nil
	}
	return out
}

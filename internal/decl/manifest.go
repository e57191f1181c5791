// Package decl loads declaration manifests and populates a type database
// from them.
//
// A manifest is a TOML file listing modules, classes, traits, methods and
// bindings. Types are written in the notation of package typeexpr:
//
//	[[modules]]
//	name = "app"
//
//	[[classes]]
//	module = "app"
//	name = "Box"
//	params = [{ name = "T" }]
//	fields = [{ name = "value", type = "T" }]
//
//	[[bindings]]
//	module = "app"
//	name = "boxes"
//	declared = "Array[Box[?]]"
//	value = "Array[Box[Int]]"
package decl

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"
)

type Program struct {
	// Path is the file the program was loaded from, empty when decoded from
	// memory.
	Path     string    `toml:"-"`
	Main     string    `toml:"main"`
	Modules  []Module  `toml:"modules"`
	Classes  []Class   `toml:"classes"`
	Traits   []Trait   `toml:"traits"`
	Methods  []Method  `toml:"methods"`
	Bindings []Binding `toml:"bindings"`
}

type Module struct {
	Name string `toml:"name"`
	// File defaults to the path derived from the name.
	File    string   `toml:"file"`
	Doc     string   `toml:"doc"`
	Imports []string `toml:"imports"`
}

type Param struct {
	Name     string   `toml:"name"`
	Requires []string `toml:"requires"`
	Mutable  bool     `toml:"mutable"`
	Stack    bool     `toml:"stack"`
}

type Field struct {
	Name       string `toml:"name"`
	Type       string `toml:"type"`
	Visibility string `toml:"visibility"`
}

type Constructor struct {
	Name    string   `toml:"name"`
	Members []string `toml:"members"`
}

type Class struct {
	Module string `toml:"module"`
	Name   string `toml:"name"`
	// Kind is one of regular, enum, extern, async or atomic.
	Kind         string        `toml:"kind"`
	Stack        bool          `toml:"stack"`
	Visibility   string        `toml:"visibility"`
	Doc          string        `toml:"doc"`
	Params       []Param       `toml:"params"`
	Fields       []Field       `toml:"fields"`
	Constructors []Constructor `toml:"constructors"`
	Implements   []string      `toml:"implements"`
}

type TraitMethod struct {
	Name    string `toml:"name"`
	Kind    string `toml:"kind"`
	Default bool   `toml:"default"`
}

type Trait struct {
	Module     string        `toml:"module"`
	Name       string        `toml:"name"`
	Visibility string        `toml:"visibility"`
	Doc        string        `toml:"doc"`
	Params     []Param       `toml:"params"`
	Requires   []string      `toml:"requires"`
	Methods    []TraitMethod `toml:"methods"`
}

type Argument struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type Method struct {
	Module string `toml:"module"`
	Name   string `toml:"name"`
	// Receiver names the class the method is defined on. Module methods
	// leave it empty.
	Receiver   string     `toml:"receiver"`
	Kind       string     `toml:"kind"`
	Visibility string     `toml:"visibility"`
	Inline     string     `toml:"inline"`
	Params     []Param    `toml:"params"`
	Arguments  []Argument `toml:"arguments"`
	Returns    string     `toml:"returns"`
	Main       bool       `toml:"main"`
}

// Binding is a value whose declared type may contain "?" placeholders. The
// driver infers them by checking the value type against the declared one.
type Binding struct {
	Module   string `toml:"module"`
	Name     string `toml:"name"`
	Declared string `toml:"declared"`
	Value    string `toml:"value"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Program, error) {
	var p Program
	meta, err := toml.DecodeFile(path, &p)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := finish(&p, meta); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Path = path
	return &p, nil
}

// Decode parses a manifest held in memory.
func Decode(data []byte) (*Program, error) {
	var p Program
	meta, err := toml.Decode(string(data), &p)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := finish(&p, meta); err != nil {
		return nil, err
	}
	return &p, nil
}

// ErrUnknownKeys is returned for manifests with keys decl doesn't know.
var ErrUnknownKeys = errors.New("unknown keys")

func finish(p *Program, meta toml.MetaData) error {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
	}
	p.normalize()
	return p.validate()
}

func nfc(s string) string { return norm.NFC.String(strings.TrimSpace(s)) }

func nfcAll(list []string) {
	for i := range list {
		list[i] = nfc(list[i])
	}
}

func normalizeParams(params []Param) {
	for i := range params {
		params[i].Name = nfc(params[i].Name)
		nfcAll(params[i].Requires)
	}
}

// normalize puts every identifier and type in NFC so names typed with
// different Unicode compositions refer to the same entity.
func (p *Program) normalize() {
	p.Main = nfc(p.Main)
	for i := range p.Modules {
		m := &p.Modules[i]
		m.Name = nfc(m.Name)
		nfcAll(m.Imports)
	}
	for i := range p.Classes {
		c := &p.Classes[i]
		c.Module, c.Name = nfc(c.Module), nfc(c.Name)
		normalizeParams(c.Params)
		for j := range c.Fields {
			c.Fields[j].Name = nfc(c.Fields[j].Name)
			c.Fields[j].Type = nfc(c.Fields[j].Type)
		}
		for j := range c.Constructors {
			c.Constructors[j].Name = nfc(c.Constructors[j].Name)
			nfcAll(c.Constructors[j].Members)
		}
		nfcAll(c.Implements)
	}
	for i := range p.Traits {
		t := &p.Traits[i]
		t.Module, t.Name = nfc(t.Module), nfc(t.Name)
		normalizeParams(t.Params)
		nfcAll(t.Requires)
		for j := range t.Methods {
			t.Methods[j].Name = nfc(t.Methods[j].Name)
		}
	}
	for i := range p.Methods {
		m := &p.Methods[i]
		m.Module, m.Name, m.Receiver = nfc(m.Module), nfc(m.Name), nfc(m.Receiver)
		m.Returns = nfc(m.Returns)
		normalizeParams(m.Params)
		for j := range m.Arguments {
			m.Arguments[j].Name = nfc(m.Arguments[j].Name)
			m.Arguments[j].Type = nfc(m.Arguments[j].Type)
		}
	}
	for i := range p.Bindings {
		b := &p.Bindings[i]
		b.Module, b.Name = nfc(b.Module), nfc(b.Name)
		b.Declared, b.Value = nfc(b.Declared), nfc(b.Value)
	}
}

// validate checks what can be checked without a database: required keys,
// references to undeclared modules and duplicate names.
func (p *Program) validate() error {
	modules := make(map[string]bool, len(p.Modules))
	for i, m := range p.Modules {
		if m.Name == "" {
			return fmt.Errorf("modules[%d]: missing name", i)
		}
		if modules[m.Name] {
			return fmt.Errorf("module %q is declared more than once", m.Name)
		}
		modules[m.Name] = true
	}
	for _, m := range p.Modules {
		for _, imp := range m.Imports {
			if !modules[imp] {
				return fmt.Errorf("module %q imports undeclared module %q", m.Name, imp)
			}
		}
	}
	if p.Main != "" && !modules[p.Main] {
		return fmt.Errorf("main module %q is not declared", p.Main)
	}

	check := func(kind string, i int, module, name string) error {
		switch {
		case name == "":
			return fmt.Errorf("%s[%d]: missing name", kind, i)
		case module == "":
			return fmt.Errorf("%s %q: missing module", kind, name)
		case !modules[module]:
			return fmt.Errorf("%s %q: undeclared module %q", kind, name, module)
		}
		return nil
	}

	named := make(map[string]string)
	for i, c := range p.Classes {
		if err := check("classes", i, c.Module, c.Name); err != nil {
			return err
		}
		key := c.Module + "." + c.Name
		if named[key] != "" {
			return fmt.Errorf("%s %q is declared more than once in module %q", named[key], c.Name, c.Module)
		}
		named[key] = "class"
	}
	for i, t := range p.Traits {
		if err := check("traits", i, t.Module, t.Name); err != nil {
			return err
		}
		key := t.Module + "." + t.Name
		if named[key] != "" {
			return fmt.Errorf("%s %q is declared more than once in module %q", named[key], t.Name, t.Module)
		}
		named[key] = "trait"
	}
	for i, m := range p.Methods {
		if err := check("methods", i, m.Module, m.Name); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(p.Bindings))
	for i, b := range p.Bindings {
		if err := check("bindings", i, b.Module, b.Name); err != nil {
			return err
		}
		if b.Declared == "" || b.Value == "" {
			return fmt.Errorf("binding %q: both declared and value are required", b.Name)
		}
		key := b.Module + "." + b.Name
		if seen[key] {
			return fmt.Errorf("binding %q is declared more than once in module %q", b.Name, b.Module)
		}
		seen[key] = true
	}
	return nil
}

// ModuleNames returns the declared module names in declaration order.
func (p *Program) ModuleNames() []string {
	out := make([]string, len(p.Modules))
	for i, m := range p.Modules {
		out[i] = m.Name
	}
	return out
}

// BindingsOf returns the bindings declared in module, in order.
func (p *Program) BindingsOf(module string) []Binding {
	return slices.DeleteFunc(slices.Clone(p.Bindings), func(b Binding) bool {
		return b.Module != module
	})
}

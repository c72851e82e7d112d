package eval

import (
	"sort"

	"github.com/deepnoodle-ai/hexraw/ast"
)

// Expansion is a value bound to a name in a Scope. It is either an *Inline
// or a *Macro.
type Expansion interface {
	expansion()
}

// Inline is a constant byte sequence, such as a macro argument. It accepts
// no arguments.
type Inline struct {
	Name  string
	Value []byte
}

func (x *Inline) expansion() {}

// Macro is a named block body declared with @define. It captures the scope
// it was declared in; its body is evaluated in a child of that scope with
// the parameters bound to the call arguments.
type Macro struct {
	Name   string
	Params []string
	Body   []ast.Block
	Scope  *Scope
	Line   int
}

func (x *Macro) expansion() {}

// Scope is one level of name bindings. Lookups fall through to the parent
// scope. Bindings are never removed, and a binding in a child shadows the
// same name in its ancestors.
type Scope struct {
	parent *Scope
	table  map[string]Expansion
}

// NewScope returns an empty root scope.
func NewScope() *Scope {
	return &Scope{table: map[string]Expansion{}}
}

// Child returns a new empty scope whose parent is s.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, table: map[string]Expansion{}}
}

// Set binds name in this scope, replacing any existing local binding.
func (s *Scope) Set(name string, value Expansion) {
	s.table[name] = value
}

// Get resolves name in this scope or the nearest ancestor that binds it.
func (s *Scope) Get(name string) (Expansion, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if value, ok := scope.table[name]; ok {
			return value, true
		}
	}
	return nil, false
}

// Names returns the names bound locally in this scope, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.table))
	for name := range s.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

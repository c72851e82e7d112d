package ast

import "strings"

// Item is one node of a byte expression.
type Item interface {
	// Pos returns the 1-based column of the first character of the item,
	// relative to the start of the expression text.
	Pos() int

	// String returns the item as it would appear in source.
	String() string

	itemNode()
}

// Literal holds bytes decoded at parse time from a number or string token.
type Literal struct {
	ValuePos int    // column of the literal
	Text     string // the literal text (e.g., "[4]0x1", "\"hi\\n\"")
	Value    []byte // the decoded bytes
}

func (x *Literal) itemNode() {}

func (x *Literal) Pos() int { return x.ValuePos }

func (x *Literal) String() string { return x.Text }

// Expansion is a call of a named expansion: $name(arg)(arg)...
// Each argument is itself an item list that is evaluated to bytes before
// the call.
type Expansion struct {
	ValuePos int // column of the "$"
	Name     string
	Args     [][]Item
}

func (x *Expansion) itemNode() {}

func (x *Expansion) Pos() int { return x.ValuePos }

func (x *Expansion) String() string {
	var b strings.Builder
	b.WriteByte('$')
	b.WriteString(x.Name)
	for _, arg := range x.Args {
		b.WriteByte('(')
		b.WriteString(FormatItems(arg))
		b.WriteByte(')')
	}
	return b.String()
}

// Left opens a flip region: "<".
type Left struct {
	ValuePos int
}

func (x *Left) itemNode() {}

func (x *Left) Pos() int { return x.ValuePos }

func (x *Left) String() string { return "<" }

// Right closes a flip region: ">".
type Right struct {
	ValuePos int
}

func (x *Right) itemNode() {}

func (x *Right) Pos() int { return x.ValuePos }

func (x *Right) String() string { return ">" }

// FormatItems renders items as a single space-separated line.
func FormatItems(items []Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.String())
	}
	return strings.Join(parts, " ")
}

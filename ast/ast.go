// Package ast defines the block tree produced by parsing a script.
//
// The tree is built once by the parser and never modified afterwards. The
// body of a Define block is shared by every invocation of the macro it
// declares, so evaluators must treat all nodes as read-only.
package ast

import (
	"strconv"
	"strings"
)

// Block is one statement of a script: a line of bytes or a macro header
// together with its indented body.
type Block interface {
	// LineNumber returns the 1-based line the block starts on.
	LineNumber() int

	// String returns the block as script source, indented with tabs.
	String() string

	blockNode()
}

// Pos is the source line of a block.
type Pos struct {
	Line int // 1-based line number
}

// LineNumber returns the 1-based line number.
func (p Pos) LineNumber() int { return p.Line }

// Script is the root of the tree: the ordered blocks at indentation level 0.
type Script struct {
	Filename string
	Blocks   []Block
}

func (s *Script) String() string {
	return formatBlocks(s.Blocks, 0)
}

// Bytes is a line of byte expressions.
type Bytes struct {
	Pos
	Source string // the line as written, used for error reporting
	Items  []Item
}

func (b *Bytes) blockNode() {}

func (b *Bytes) String() string { return FormatItems(b.Items) }

// Define declares a macro. Evaluating it binds Name in the current scope
// and produces no bytes.
type Define struct {
	Pos
	Name   string
	Params []string
	Body   []Block
}

func (d *Define) blockNode() {}

func (d *Define) String() string {
	var b strings.Builder
	b.WriteString("@define ")
	b.WriteString(d.Name)
	for _, p := range d.Params {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	b.WriteByte('\n')
	b.WriteString(formatBlocks(d.Body, 1))
	return strings.TrimSuffix(b.String(), "\n")
}

// Repeat evaluates its body once and emits the result Count times.
type Repeat struct {
	Pos
	Count int
	Body  []Block
}

func (r *Repeat) blockNode() {}

func (r *Repeat) String() string {
	var b strings.Builder
	b.WriteString("@repeat ")
	b.WriteString(strconv.Itoa(r.Count))
	b.WriteByte('\n')
	b.WriteString(formatBlocks(r.Body, 1))
	return strings.TrimSuffix(b.String(), "\n")
}

// Assembly holds machine code produced from its source text at parse time.
type Assembly struct {
	Pos
	Source string
	Code   []byte
}

func (a *Assembly) blockNode() {}

func (a *Assembly) String() string {
	var b strings.Builder
	b.WriteString("@assembly")
	for _, line := range strings.Split(strings.TrimSuffix(a.Source, "\n"), "\n") {
		b.WriteByte('\n')
		if line != "" {
			b.WriteByte('\t')
			b.WriteString(line)
		}
	}
	return b.String()
}

func formatBlocks(blocks []Block, depth int) string {
	var b strings.Builder
	indent := strings.Repeat("\t", depth)
	for _, block := range blocks {
		for _, line := range strings.Split(block.String(), "\n") {
			if line != "" {
				b.WriteString(indent)
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

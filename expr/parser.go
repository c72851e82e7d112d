// Package expr parses the byte-expression grammar used on every line of a
// script that is not a macro header.
//
// A line is a sequence of whitespace-separated items:
//
//	number     = [ "[" size "]" ] value | value "[" size "]" .
//	value      = [ "0x" | "0d" | "0b" ] digits .
//	string     = '"' { char | escape } '"' .
//	escape     = "\\" ( "\\" | "n" | "r" | "t" | '"' ) .
//	left       = "<" .
//	right      = ">" .
//	expansion  = "$" name { "(" items ")" } .
//
// A "#" outside of a string starts a comment that runs to the end of the
// line. Numbers and strings are decoded to bytes at parse time; expansions
// and flip markers are resolved by the evaluator.
package expr

import (
	"unicode"

	"github.com/deepnoodle-ai/hexraw/ast"
	"github.com/deepnoodle-ai/hexraw/errors"
)

// MaxNesting is the maximum depth of nested expansion arguments.
const MaxNesting = 256

type parser struct {
	src   []rune
	pos   int
	depth int
}

// Parse parses a single line into items. Columns recorded on the items and
// on returned errors are 1-based positions within line.
func Parse(line string) ([]ast.Item, error) {
	p := &parser{src: []rune(line)}
	items, err := p.parseItems(0)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

// column returns the 1-based column of the current position.
func (p *parser) column() int {
	return p.pos + 1
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

// isDelimiter reports whether r ends a number or name token.
func isDelimiter(r rune) bool {
	switch r {
	case '#', '<', '>', '"', '$', '(', ')':
		return true
	}
	return unicode.IsSpace(r)
}

// IsName reports whether s can be referenced as "$s" in a byte expression.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if isDelimiter(r) {
			return false
		}
	}
	return true
}

// parseItems parses items until the end of the line. When open is non-zero
// the items are an argument group opened at column open, and parsing stops
// before the matching ")".
func (p *parser) parseItems(open int) ([]ast.Item, error) {
	var items []ast.Item
	for {
		p.skipSpace()
		if p.eof() || p.peek() == '#' {
			if open > 0 {
				return nil, errors.Structuralf("unterminated argument list").AtColumn(open)
			}
			p.pos = len(p.src)
			return items, nil
		}
		switch p.peek() {
		case ')':
			if open > 0 {
				return items, nil
			}
			return nil, errors.Structuralf("unexpected ')'").AtColumn(p.column())
		case '(':
			return nil, errors.Structuralf("unexpected '(' without a preceding expansion name").AtColumn(p.column())
		case '<':
			items = append(items, &ast.Left{ValuePos: p.column()})
			p.pos++
		case '>':
			items = append(items, &ast.Right{ValuePos: p.column()})
			p.pos++
		case '"':
			item, err := p.parseString()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		case '$':
			item, err := p.parseExpansion()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		default:
			item, err := p.parseNumber()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
}

func (p *parser) parseNumber() (ast.Item, error) {
	start := p.pos
	for !p.eof() && !isDelimiter(p.peek()) {
		p.pos++
	}
	text := string(p.src[start:p.pos])
	value, err := DecodeNumber(text)
	if err != nil {
		return nil, withColumn(err, start+1)
	}
	return &ast.Literal{ValuePos: start + 1, Text: text, Value: value}, nil
}

func (p *parser) parseString() (ast.Item, error) {
	start := p.pos
	p.pos++ // opening quote
	var value []byte
	for {
		if p.eof() {
			return nil, errors.Structuralf("unterminated string").AtColumn(start + 1)
		}
		ch := p.src[p.pos]
		switch ch {
		case '"':
			p.pos++
			return &ast.Literal{
				ValuePos: start + 1,
				Text:     string(p.src[start:p.pos]),
				Value:    value,
			}, nil
		case '\\':
			escapePos := p.pos
			p.pos++
			if p.eof() {
				return nil, errors.Structuralf("unterminated string").AtColumn(start + 1)
			}
			switch esc := p.src[p.pos]; esc {
			case '\\':
				value = append(value, '\\')
			case 'n':
				value = append(value, '\n')
			case 'r':
				value = append(value, '\r')
			case 't':
				value = append(value, '\t')
			case '"':
				value = append(value, '"')
			default:
				return nil, errors.Encodingf("invalid escape sequence \\%c", esc).AtColumn(escapePos + 1)
			}
		default:
			if ch > 0xFF {
				return nil, errors.Encodingf("encountered invalid character in column %d", p.column()).AtColumn(p.column())
			}
			value = append(value, byte(ch))
		}
		p.pos++
	}
}

func (p *parser) parseExpansion() (ast.Item, error) {
	start := p.pos
	p.pos++ // "$"
	nameStart := p.pos
	for !p.eof() && !isDelimiter(p.peek()) {
		p.pos++
	}
	name := string(p.src[nameStart:p.pos])
	if name == "" {
		return nil, errors.Structuralf("expected a name after '$'").AtColumn(start + 1)
	}
	item := &ast.Expansion{ValuePos: start + 1, Name: name}
	for p.peek() == '(' {
		open := p.column()
		if p.depth >= MaxNesting {
			return nil, errors.Structuralf("expansion arguments nested deeper than %d", MaxNesting).AtColumn(open)
		}
		p.pos++
		p.depth++
		arg, err := p.parseItems(open)
		p.depth--
		if err != nil {
			return nil, err
		}
		p.pos++ // ")"
		item.Args = append(item.Args, arg)
	}
	return item, nil
}

func withColumn(err error, column int) error {
	var e *errors.Error
	if errors.As(err, &e) {
		e.AtColumn(column)
	}
	return err
}

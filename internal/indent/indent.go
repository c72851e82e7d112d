// Package indent measures the indentation level of script lines.
//
// The indentation unit of a script is not declared. It is fixed by the first
// indented line the Tracker sees: a run of N spaces makes N spaces the unit
// for the rest of the script, a tab makes a single tab the unit. Every later
// line must be indented by a whole number of units of that same kind.
package indent

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/hexraw/errors"
)

type unitKind int

const (
	undetermined unitKind = iota
	spaces
	tabs
)

// Tracker measures indentation levels and remembers the unit once it has
// been determined. The zero value is ready to use.
type Tracker struct {
	kind  unitKind
	width int
}

// New returns a Tracker with an undetermined unit.
func New() *Tracker {
	return &Tracker{}
}

// IsBlank reports whether line contains only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// unit describes the indentation unit, or "undetermined" if no indented
// line has been seen yet.
func (t *Tracker) unit() string {
	switch t.kind {
	case spaces:
		if t.width == 1 {
			return "1 space"
		}
		return fmt.Sprintf("%d spaces", t.width)
	case tabs:
		return "tab"
	}
	return "undetermined"
}

// Width returns the number of characters occupied by level units.
func (t *Tracker) Width(level int) int {
	if t.kind == spaces {
		return level * t.width
	}
	return level
}

// Level returns the indentation level of line. The first line indented with
// spaces determines the unit and has level 1. Blank lines have level 0 and
// never determine the unit.
func (t *Tracker) Level(line string) (int, error) {
	if IsBlank(line) {
		return 0, nil
	}
	switch t.kind {
	case spaces:
		n, err := countLeading(line, ' ', '\t')
		if err != nil {
			return 0, err
		}
		if n%t.width != 0 {
			return 0, errors.Structuralf("uneven indentation: expected a multiple of %s", t.unit())
		}
		return n / t.width, nil
	case tabs:
		return countLeading(line, '\t', ' ')
	}

	switch line[0] {
	case ' ':
		n, err := countLeading(line, ' ', '\t')
		if err != nil {
			return 0, err
		}
		t.kind, t.width = spaces, n
		return 1, nil
	case '\t':
		n, err := countLeading(line, '\t', ' ')
		if err != nil {
			return 0, err
		}
		t.kind, t.width = tabs, 1
		return n, nil
	}
	return 0, nil
}

// Eq reports whether line is indented exactly at level.
func (t *Tracker) Eq(line string, level int) (bool, error) {
	n, err := t.Level(line)
	if err != nil {
		return false, err
	}
	if n > level {
		return false, errors.Structuralf("unexpected indentation")
	}
	return n == level, nil
}

// Ge reports whether line is indented at level or deeper. Blank lines
// always qualify.
func (t *Tracker) Ge(line string, level int) (bool, error) {
	if IsBlank(line) {
		return true, nil
	}
	n, err := t.Level(line)
	if err != nil {
		return false, err
	}
	return n >= level, nil
}

// Trim removes up to level units of indentation from the front of line.
func (t *Tracker) Trim(line string, level int) string {
	var ch byte = ' '
	if t.kind == tabs {
		ch = '\t'
	}
	n := t.Width(level)
	i := 0
	for i < n && i < len(line) && line[i] == ch {
		i++
	}
	return line[i:]
}

// countLeading counts the run of expected characters at the start of line.
// Meeting a disallowed character inside the indentation is an error.
func countLeading(line string, expected, disallowed byte) (int, error) {
	n := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case expected:
			n++
		case disallowed:
			return 0, errors.Structuralf("encountered mixed tabs and spaces")
		default:
			return n, nil
		}
	}
	return n, nil
}

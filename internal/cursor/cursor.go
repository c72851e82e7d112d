// Package cursor provides a line-at-a-time view over script source.
package cursor

import (
	"bufio"
	"io"
	"strings"

	"github.com/deepnoodle-ai/hexraw/errors"
)

// MaxLineLength is the longest line the cursor accepts.
const MaxLineLength = 1 << 20

// Cursor holds the current line of a script. The current line stays
// available until Advance is called, so a caller that looks at a line and
// decides it belongs to an enclosing block can leave it for that block.
type Cursor struct {
	scanner *bufio.Scanner
	line    string
	number  int
	valid   bool
}

// New returns a cursor positioned on the first line of r.
func New(r io.Reader) (*Cursor, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxLineLength)
	c := &Cursor{scanner: scanner}
	if err := c.Advance(); err != nil {
		return nil, err
	}
	return c, nil
}

// Valid reports whether the cursor is positioned on a line.
func (c *Cursor) Valid() bool {
	return c.valid
}

// Line returns the current line without its line terminator.
func (c *Cursor) Line() string {
	return c.line
}

// Number returns the 1-based number of the current line. At the end of
// input it is the number of the last line read.
func (c *Cursor) Number() int {
	return c.number
}

// Advance moves to the next line. Read errors are reported against the line
// that could not be read.
func (c *Cursor) Advance() error {
	if c.scanner.Scan() {
		c.number++
		c.line = strings.TrimSuffix(c.scanner.Text(), "\r")
		c.valid = true
		return nil
	}
	c.line, c.valid = "", false
	if err := c.scanner.Err(); err != nil {
		return errors.At(errors.Wrap(errors.Structural, err, "failed to read line"), c.number+1)
	}
	return nil
}

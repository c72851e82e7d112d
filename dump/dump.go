// Package dump formats bytes as a readable hexadecimal listing.
package dump

import (
	"strings"
)

const (
	// ColumnWidth is the number of bytes in one column.
	ColumnWidth = 8

	// ColumnCount is the number of columns in one row.
	ColumnCount = 2
)

const digits = "0123456789ABCDEF"

// Hex renders each byte as two uppercase hex digits. Bytes are separated by
// a space, columns by two spaces, and rows by a newline. Every byte,
// including the last, is followed by its separator.
func Hex(data []byte) string {
	var b strings.Builder
	b.Grow(len(data) * 3)
	for i, c := range data {
		b.WriteByte(digits[c>>4])
		b.WriteByte(digits[c&0x0F])
		switch n := i + 1; {
		case n%(ColumnWidth*ColumnCount) == 0:
			b.WriteByte('\n')
		case n%ColumnWidth == 0:
			b.WriteString("  ")
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

package dump

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"empty", nil, ""},
		{"one byte", []byte{0xAB}, "AB "},
		{"lowercase input", []byte{0x0f, 0xa0}, "0F A0 "},
		{
			"one column",
			[]byte{0, 1, 2, 3, 4, 5, 6, 7},
			"00 01 02 03 04 05 06 07  ",
		},
		{
			"one row",
			[]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
			"00 01 02 03 04 05 06 07  08 09 0A 0B 0C 0D 0E 0F\n",
		},
		{
			"second row",
			[]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 0xFF},
			"00 01 02 03 04 05 06 07  08 09 0A 0B 0C 0D 0E 0F\nFF ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Hex(tt.input))
		})
	}
}

package expr

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/hexraw/errors"
)

// MaxPadding is the largest size accepted in a [size] padding suffix or
// prefix.
const MaxPadding = 1 << 20

// DecodeNumber decodes a number token, including an optional [size]VALUE
// or VALUE[size] padding.
//
// Unpadded values are strict: hexadecimal words must have an even number of
// digits and binary words a multiple of eight. Padded values are lenient and
// are zero-extended on the left before resizing, so "[4]0x1" is 00 00 00 01.
func DecodeNumber(text string) ([]byte, error) {
	switch {
	case strings.HasPrefix(text, "["):
		end := strings.IndexByte(text, ']')
		if end < 0 {
			return nil, errors.Encodingf("invalid padding format in %q", text)
		}
		size, err := decodeSize(text[1:end])
		if err != nil {
			return nil, err
		}
		value, err := BytesFromNumber(text[end+1:], false)
		if err != nil {
			return nil, err
		}
		return resizeAnchoredRight(value, size), nil
	case strings.HasSuffix(text, "]"):
		start := strings.IndexByte(text, '[')
		if start < 0 {
			return nil, errors.Encodingf("invalid padding format in %q", text)
		}
		size, err := decodeSize(text[start+1 : len(text)-1])
		if err != nil {
			return nil, err
		}
		value, err := BytesFromNumber(text[:start], false)
		if err != nil {
			return nil, err
		}
		return resizeAnchoredLeft(value, size), nil
	default:
		return BytesFromNumber(text, true)
	}
}

// resizeAnchoredRight keeps the trailing bytes of value, padding or
// truncating at the front.
func resizeAnchoredRight(value []byte, size int) []byte {
	result := make([]byte, size)
	if len(value) >= size {
		copy(result, value[len(value)-size:])
	} else {
		copy(result[size-len(value):], value)
	}
	return result
}

// resizeAnchoredLeft keeps the leading bytes of value, padding or
// truncating at the back.
func resizeAnchoredLeft(value []byte, size int) []byte {
	result := make([]byte, size)
	copy(result, value)
	return result
}

func decodeSize(text string) (int, error) {
	if text == "" {
		return 0, errors.Encodingf("malformed padding size: empty size")
	}
	size, err := IntegerFromNumber(text)
	if err != nil {
		return 0, err
	}
	if size > MaxPadding {
		return 0, errors.Encodingf("padding size %d exceeds maximum of %d", size, MaxPadding)
	}
	return int(size), nil
}

// BytesFromNumber decodes a value by prefix: 0x hexadecimal, 0d decimal,
// 0b binary, and hexadecimal when there is no prefix.
func BytesFromNumber(text string, strict bool) ([]byte, error) {
	switch {
	case strings.HasPrefix(text, "0x"):
		return BytesFromHexadecimal(text, text[2:], strict)
	case strings.HasPrefix(text, "0d"):
		return BytesFromDecimal(text, text[2:])
	case strings.HasPrefix(text, "0b"):
		return BytesFromBinary(text, text[2:], strict)
	default:
		return BytesFromHexadecimal(text, text, strict)
	}
}

// IntegerFromNumber decodes a size using the same prefixes as
// BytesFromNumber.
func IntegerFromNumber(text string) (uint64, error) {
	digits, base := text, 16
	switch {
	case strings.HasPrefix(text, "0x"):
		digits = text[2:]
	case strings.HasPrefix(text, "0d"):
		digits, base = text[2:], 10
	case strings.HasPrefix(text, "0b"):
		digits, base = text[2:], 2
	}
	if digits == "" || strings.ContainsAny(digits, "+-_") {
		return 0, errors.Encodingf("malformed padding size %q", text)
	}
	value, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, errors.Encodingf("malformed padding size %q", text)
	}
	return value, nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// BytesFromHexadecimal decodes digits as a big-endian hexadecimal word.
// token is the full source token, used in error messages.
func BytesFromHexadecimal(token, digits string, strict bool) ([]byte, error) {
	if len(digits)%2 != 0 {
		if strict {
			return nil, errors.Encodingf("hexadecimal word %q has odd length %d", token, len(digits))
		}
		digits = "0" + digits
	}
	result := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		high, ok := hexDigit(digits[i])
		if !ok {
			return nil, errors.Encodingf("invalid hexadecimal digit %q in %q", digits[i], token)
		}
		low, ok := hexDigit(digits[i+1])
		if !ok {
			return nil, errors.Encodingf("invalid hexadecimal digit %q in %q", digits[i+1], token)
		}
		result = append(result, high<<4|low)
	}
	return result, nil
}

// BytesFromDecimal decodes digits to the minimal big-endian byte sequence.
// Zero decodes to no bytes.
func BytesFromDecimal(token, digits string) ([]byte, error) {
	if digits == "" {
		return nil, errors.Encodingf("invalid decimal format %q: no digits", token)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return nil, errors.Encodingf("invalid decimal digit %q in %q", digits[i], token)
		}
	}
	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, errors.Encodingf("invalid decimal format %q", token)
	}
	return value.Bytes(), nil
}

// BytesFromBinary decodes digits as a big-endian binary word.
func BytesFromBinary(token, digits string, strict bool) ([]byte, error) {
	if rem := len(digits) % 8; rem != 0 {
		if strict {
			return nil, errors.Encodingf("binary word %q has length %d, not a multiple of eight", token, len(digits))
		}
		digits = strings.Repeat("0", 8-rem) + digits
	}
	result := make([]byte, 0, len(digits)/8)
	for i := 0; i < len(digits); i += 8 {
		var b byte
		for j := 0; j < 8; j++ {
			c := digits[i+j]
			if c != '0' && c != '1' {
				return nil, errors.Encodingf("invalid binary digit %q in %q", c, token)
			}
			b = b<<1 | (c - '0')
		}
		result = append(result, b)
	}
	return result, nil
}

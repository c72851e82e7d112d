package hexraw

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/hexraw/asm"
	"github.com/deepnoodle-ai/hexraw/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, source string, opts ...Option) []byte {
	t.Helper()
	out, err := Compile(context.Background(), source, opts...)
	require.NoError(t, err)
	return out
}

func compileError(t *testing.T, source string, opts ...Option) *errors.Error {
	t.Helper()
	out, err := Compile(context.Background(), source, opts...)
	require.Error(t, err)
	require.Nil(t, out)
	var e *errors.Error
	require.True(t, errors.As(err, &e), "expected *errors.Error, got %T", err)
	return e
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected []byte
	}{
		{"plain bytes", "00 01 FF", []byte{0x00, 0x01, 0xFF}},
		{"decimal", "0d255", []byte{0xFF}},
		{"binary", "0b00000011", []byte{0x03}},
		{"right anchored padding", "[4]0x1", []byte{0x00, 0x00, 0x00, 0x01}},
		{"left anchored padding", "0x1[4]", []byte{0x01, 0x00, 0x00, 0x00}},
		{"flip", "< 01 02 03 >", []byte{0x03, 0x02, 0x01}},
		{"define", "@define greet\n\t48 65 6C 6C 6F\n$greet", []byte("Hello")},
		{"repeat", "@repeat 3\n    AA\n", []byte{0xAA, 0xAA, 0xAA}},
		{"empty script", "", []byte{}},
		{"comments only", "# nothing\n\n# here\n", []byte{}},
		{
			"little endian immediate",
			"@define mov_eax v\n  B8 < $v >\n$mov_eax([4]0x3C)",
			[]byte{0xB8, 0x3C, 0x00, 0x00, 0x00},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, compile(t, tt.source))
		})
	}
}

func TestArityMismatch(t *testing.T) {
	e := compileError(t, "@define add x y\n  $x $y\n$add(01)\n")
	require.Equal(t, errors.Scope, e.Kind)
	require.Contains(t, e.Error(), "expected 2 args, got 1")
	require.Equal(t, "Runtime error on line 3: expansion $add expected 2 args, got 1", e.Error())
}

func TestSingleParameterWithoutArguments(t *testing.T) {
	source := "@define f x\n  AA $x\n$f\n"
	require.Equal(t, []byte{0xAA}, compile(t, source))

	e := compileError(t, source, WithStrictArity(true))
	require.Equal(t, "expansion $f expected 1 args, got 0", e.Msg())
}

func TestMixedIndentation(t *testing.T) {
	for _, source := range []string{
		"@repeat 2\n \tAA\n",
		"@repeat 2\n\t AA\n",
	} {
		e := compileError(t, source)
		require.Equal(t, errors.Structural, e.Kind)
		require.Equal(t, "Runtime error on line 2: encountered mixed tabs and spaces", e.Error())
	}
}

func TestOddLengthHex(t *testing.T) {
	e := compileError(t, "0x1")
	require.Equal(t, errors.Encoding, e.Kind)
	require.Equal(t, `Runtime error on line 1: hexadecimal word "0x1" has odd length 1`, e.Error())
}

func TestDeterministic(t *testing.T) {
	source := "@define p a b\n" +
		"\t< $a $b >\n" +
		"@repeat 3\n" +
		"\t$p(0d1000)(\"xyz\")\n" +
		"\t@define q\n" +
		"\t\t[8]0xFF\n" +
		"\t$q\n"
	first := compile(t, source)
	second := compile(t, source)
	require.True(t, bytes.Equal(first, second))
	require.NotEmpty(t, first)
}

func TestScriptIsReusable(t *testing.T) {
	script, err := Parse(context.Background(), "@define x\n  01\n$x $x\n")
	require.NoError(t, err)

	first, err := Evaluate(context.Background(), script)
	require.NoError(t, err)
	second, err := Evaluate(context.Background(), script)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x01}, first)
	require.Equal(t, first, second)
}

func TestCompileReader(t *testing.T) {
	out, err := CompileReader(context.Background(), strings.NewReader("AA\r\nBB\r\n"))
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB}, out)
}

func TestAssemblyOption(t *testing.T) {
	var sources []string
	fake := asm.Func(func(ctx context.Context, source string) ([]byte, error) {
		sources = append(sources, source)
		return []byte{0x90, 0xC3}, nil
	})
	source := "@define body\n" +
		"  @assembly\n" +
		"    nop\n" +
		"    ret\n" +
		"CC\n" +
		"$body $body\n"
	out := compile(t, source, WithAssembler(fake))
	require.Equal(t, []byte{0xCC, 0x90, 0xC3, 0x90, 0xC3}, out)
	require.Equal(t, []string{"nop\nret\n"}, sources)
}

func TestOptions(t *testing.T) {
	e := compileError(t, "@repeat 1\n  @repeat 1\n    AA\n", WithMaxDepth(1))
	require.Equal(t, "maximum nesting depth of 1 exceeded", e.Msg())

	e = compileError(t, "@define r\n  $r\n$r\n", WithMaxExpansionDepth(10))
	require.Equal(t, "maximum expansion depth of 10 exceeded", e.Msg())

	e = compileError(t, "$nope", WithFilename("payload.hex"))
	require.Equal(t, "payload.hex", e.Filename)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	compile(t, "@repeat 2\n  AA\n", WithLogger(logger))
	require.Contains(t, buf.String(), `"message":"parsed repeat"`)
}

package eval

import (
	"bytes"
	"context"
	"testing"

	"github.com/deepnoodle-ai/hexraw/ast"
	"github.com/deepnoodle-ai/hexraw/errors"
	"github.com/deepnoodle-ai/hexraw/parser"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, input string, opts ...Option) ([]byte, error) {
	t.Helper()
	script, err := parser.Parse(context.Background(), input)
	require.NoError(t, err)
	return Evaluate(context.Background(), script, opts...)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
	}{
		{"literals", "00 01 FF", []byte{0x00, 0x01, 0xFF}},
		{"padding right anchored", "[4]0x1", []byte{0x00, 0x00, 0x00, 0x01}},
		{"padding left anchored", "0x1[4]", []byte{0x01, 0x00, 0x00, 0x00}},
		{"decimal", "0d255", []byte{0xFF}},
		{"binary", "0b00000011", []byte{0x03}},
		{"string", `"AB\n"`, []byte{'A', 'B', '\n'}},
		{"flip", "< 01 02 03 >", []byte{0x03, 0x02, 0x01}},
		{"flip open at end of line", "AA < 01 02", []byte{0xAA, 0x02, 0x01}},
		{"flip reopened", "< 01 02 < 03 04 >", []byte{0x02, 0x01, 0x04, 0x03}},
		{"unmatched right", "01 > 02", []byte{0x01, 0x02}},
		{"flip word", "<0x01020304>", []byte{0x04, 0x03, 0x02, 0x01}},
		{"repeat", "@repeat 3\n  AA", []byte{0xAA, 0xAA, 0xAA}},
		{"repeat zero", "@repeat 0\n  AA\nBB", []byte{0xBB}},
		{"nested repeat", "@repeat 2\n  @repeat 2\n    AA\n  BB", []byte{0xAA, 0xAA, 0xBB, 0xAA, 0xAA, 0xBB}},
		{"define with args", "@define add a b\n  $a $b\n$add(01)(02 03)", []byte{0x01, 0x02, 0x03}},
		{"define without params", "@define nop\n  90\n$nop $nop", []byte{0x90, 0x90}},
		{"define emits nothing", "@define x\n  AA", []byte{}},
		{"omitted single argument", "@define f x\n  AA $x BB\n$f", []byte{0xAA, 0xBB}},
		{"argument expressions", "@define f x\n  $x\n$f(<0102> \"z\")", []byte{0x02, 0x01, 'z'}},
		{"nested calls", "@define inc x\n  $x 01\n$inc($inc(00))", []byte{0x00, 0x01, 0x01}},
		{"flip around expansion", "@define w\n  01 02\n< $w >", []byte{0x02, 0x01}},
		{"redefinition shadows", "@define v\n  01\n@define v\n  02\n$v", []byte{0x02}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestLexicalScope(t *testing.T) {
	// $show resolves $v where it was defined, not where it is called.
	input := "@define v\n" +
		"  01\n" +
		"@define show\n" +
		"  $v\n" +
		"@define caller v\n" +
		"  $show\n" +
		"$caller(FF)\n"
	got, err := run(t, input)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, got)
}

func TestDefinitionsInsideBodyAreLocal(t *testing.T) {
	input := "@define outer\n" +
		"  @define inner\n" +
		"    AA\n" +
		"  $inner\n" +
		"$outer\n" +
		"$inner\n"
	_, err := run(t, input)
	require.Error(t, err)
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, errors.Scope, e.Kind)
	require.Equal(t, "undefined variable inner", e.Msg())
	require.Equal(t, 6, e.Line)
	require.Equal(t, 1, e.Column)
}

func TestParametersShadowOuterNames(t *testing.T) {
	input := "@define x\n" +
		"  EE\n" +
		"@define f x\n" +
		"  $x\n" +
		"$f(01) $x\n"
	got, err := run(t, input)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0xEE}, got)
}

func TestRepeatEvaluatesBodyOnce(t *testing.T) {
	input := "@repeat 3\n" +
		"  @define d\n" +
		"    AB\n" +
		"  $d\n" +
		"$d\n"
	got, err := run(t, input)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAB, 0xAB, 0xAB, 0xAB}, got)
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
		line   int
		column int
	}{
		{"undefined", "AA $missing", "undefined variable missing", 1, 4},
		{"inline with args", "@define f x\n  $x(01)\n$f(02)", "expansion $x expected 0 args, got 1", 2, 3},
		{"too many args", "@define f x\n  $x\n$f(01)(02)", "expansion $f expected 1 args, got 2", 3, 1},
		{"too few args", "@define f a b\n  $a\n$f(01)", "expansion $f expected 2 args, got 1", 3, 1},
		{"no params with args", "@define f\n  AA\nBB $f(01)", "expansion $f expected 0 args, got 1", 3, 4},
		{"undefined in argument", "@define f x\n  $x\n$f($nope)", "undefined variable nope", 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.input)
			require.Error(t, err)
			var e *errors.Error
			require.True(t, errors.As(err, &e))
			require.Equal(t, errors.Scope, e.Kind)
			require.Equal(t, tt.errMsg, e.Msg())
			require.Equal(t, tt.line, e.Line)
			require.Equal(t, tt.column, e.Column)
		})
	}
}

func TestStrictArity(t *testing.T) {
	input := "@define f x\n  AA $x\n$f"
	got, err := run(t, input)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA}, got)

	_, err = run(t, input, WithStrictArity(true))
	require.Error(t, err)
	require.Equal(t, "Runtime error on line 3: expansion $f expected 1 args, got 0", err.Error())
}

func TestErrorInsideMacroReportsFrames(t *testing.T) {
	input := "@define inner\n" +
		"  $undefined\n" +
		"@define outer\n" +
		"  $inner\n" +
		"AA\n" +
		"$outer\n"
	_, err := run(t, input)
	require.Error(t, err)
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, 2, e.Line)
	require.Equal(t, "  $undefined", e.Source)
	require.Equal(t, []errors.StackFrame{
		{Function: "inner", Line: 4},
		{Function: "outer", Line: 6},
	}, e.Stack)
}

func TestRecursionLimit(t *testing.T) {
	input := "@define loop\n  $loop\n$loop\n"
	_, err := run(t, input, WithMaxExpansionDepth(50))
	require.Error(t, err)
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, "maximum expansion depth of 50 exceeded", e.Msg())
	require.Len(t, e.Stack, 50)
}

func TestMacroBodyIsReusable(t *testing.T) {
	input := "@define w x\n  < $x 00 >\n$w(01) $w(02)"
	got, err := run(t, input)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x01, 0x00, 0x02}, got)
}

func TestDeterministic(t *testing.T) {
	input := "@define p a\n  < $a 0d1000 >\n@repeat 4\n  $p(\"x\")\n"
	first, err := run(t, input)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := run(t, input)
		require.NoError(t, err)
		require.True(t, bytes.Equal(first, again))
	}
}

func TestAssemblyBlock(t *testing.T) {
	script := &ast.Script{Blocks: []ast.Block{
		&ast.Bytes{Pos: ast.Pos{Line: 1}, Items: []ast.Item{&ast.Literal{Value: []byte{0xAA}}}},
		&ast.Assembly{Pos: ast.Pos{Line: 2}, Source: "nop\nret\n", Code: []byte{0x90, 0xC3}},
	}}
	got, err := Evaluate(context.Background(), script)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0x90, 0xC3}, got)
}

func TestEvaluateBlocksBindsInScope(t *testing.T) {
	script, err := parser.Parse(context.Background(), "@define k\n  42\n")
	require.NoError(t, err)
	scope := NewScope()
	_, err = EvaluateBlocks(context.Background(), script.Blocks, scope)
	require.NoError(t, err)
	require.Equal(t, []string{"k"}, scope.Names())
}

func TestEvaluateCanceled(t *testing.T) {
	script, err := parser.Parse(context.Background(), "AA\n")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Evaluate(ctx, script)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTraceLogging(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(prev)

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)
	_, err := run(t, "@define f\n  AA\n$f", WithLogger(logger))
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"message":"expanding macro"`)
	require.Contains(t, buf.String(), `"name":"f"`)
}

func TestEvaluateFilename(t *testing.T) {
	script, err := parser.Parse(context.Background(), "$x", parser.WithFilename("a.hex"))
	require.NoError(t, err)
	_, err = Evaluate(context.Background(), script)
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, "a.hex", e.Filename)
}

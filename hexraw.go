// Package hexraw compiles indentation-structured macro scripts into raw bytes.
//
// A script is a sequence of lines. Plain lines hold byte expressions such as
// hexadecimal words, padded numbers, quoted strings and macro expansions.
// Lines starting with "@" are macro headers that own the more deeply indented
// lines below them:
//
//	@define syscall nr
//		B8 < $nr > 0F 05
//	@repeat 2
//		90
//	$syscall([4]0x3C)
//
// Compile parses and evaluates a script in one step:
//
//	payload, err := hexraw.Compile(ctx, source)
package hexraw

import (
	"context"
	"io"

	"github.com/deepnoodle-ai/hexraw/asm"
	"github.com/deepnoodle-ai/hexraw/ast"
	"github.com/deepnoodle-ai/hexraw/eval"
	"github.com/deepnoodle-ai/hexraw/parser"
	"github.com/rs/zerolog"
)

// Option configures parsing and evaluation.
type Option func(*options)

type options struct {
	filename          string
	assembler         asm.Assembler
	maxDepth          int
	maxExpansionDepth int
	strictArity       bool
	logger            *zerolog.Logger
}

func collectOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) parserOpts() []parser.Option {
	var opts []parser.Option
	if o.filename != "" {
		opts = append(opts, parser.WithFilename(o.filename))
	}
	if o.maxDepth > 0 {
		opts = append(opts, parser.WithMaxDepth(o.maxDepth))
	}
	if o.logger != nil {
		opts = append(opts, parser.WithLogger(*o.logger))
	}
	if o.assembler != nil {
		opts = append(opts, parser.WithAssembler(o.assembler))
	} else if o.logger != nil {
		opts = append(opts, parser.WithAssembler(asm.NewGCC(asm.WithLogger(*o.logger))))
	}
	return opts
}

func (o *options) evalOpts() []eval.Option {
	var opts []eval.Option
	if o.maxExpansionDepth > 0 {
		opts = append(opts, eval.WithMaxExpansionDepth(o.maxExpansionDepth))
	}
	if o.strictArity {
		opts = append(opts, eval.WithStrictArity(true))
	}
	if o.logger != nil {
		opts = append(opts, eval.WithLogger(*o.logger))
	}
	return opts
}

// WithFilename sets the filename reported in errors.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithAssembler sets the assembler used for @assembly blocks. By default
// blocks are assembled with gcc.
func WithAssembler(assembler asm.Assembler) Option {
	return func(o *options) {
		o.assembler = assembler
	}
}

// WithMaxDepth limits how deeply macro bodies may be nested.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithMaxExpansionDepth limits how deeply macro expansions may recurse.
func WithMaxExpansionDepth(depth int) Option {
	return func(o *options) {
		o.maxExpansionDepth = depth
	}
}

// WithStrictArity requires every macro expansion to pass exactly as many
// arguments as the macro declares.
func WithStrictArity(enabled bool) Option {
	return func(o *options) {
		o.strictArity = enabled
	}
}

// WithLogger sets the logger used by the parser, evaluator and assembler.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// Parse parses source into a block tree without evaluating it. Assembly
// blocks are assembled during parsing.
func Parse(ctx context.Context, source string, opts ...Option) (*ast.Script, error) {
	o := collectOptions(opts...)
	return parser.Parse(ctx, source, o.parserOpts()...)
}

// ParseReader is like Parse but reads the script from r.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*ast.Script, error) {
	o := collectOptions(opts...)
	return parser.ParseReader(ctx, r, o.parserOpts()...)
}

// Evaluate evaluates a parsed script and returns its bytes. Each call uses a
// fresh scope, so a Script may be evaluated any number of times.
func Evaluate(ctx context.Context, script *ast.Script, opts ...Option) ([]byte, error) {
	o := collectOptions(opts...)
	return eval.Evaluate(ctx, script, o.evalOpts()...)
}

// Compile parses and evaluates source.
func Compile(ctx context.Context, source string, opts ...Option) ([]byte, error) {
	script, err := Parse(ctx, source, opts...)
	if err != nil {
		return nil, err
	}
	return Evaluate(ctx, script, opts...)
}

// CompileReader parses and evaluates a script read from r.
func CompileReader(ctx context.Context, r io.Reader, opts ...Option) ([]byte, error) {
	script, err := ParseReader(ctx, r, opts...)
	if err != nil {
		return nil, err
	}
	return Evaluate(ctx, script, opts...)
}

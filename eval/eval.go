// Package eval turns a parsed script into bytes.
//
// Evaluation walks the block tree in order. Define blocks bind macros in the
// current scope and emit nothing, Repeat blocks evaluate their body once and
// duplicate the result, and Bytes blocks concatenate the values of their
// items. A macro body is evaluated in a child of the scope the macro was
// declared in, so definitions made inside a body are not visible outside of
// it.
package eval

import (
	"bytes"
	"context"
	"math"

	"github.com/deepnoodle-ai/hexraw/ast"
	"github.com/deepnoodle-ai/hexraw/errors"
	"github.com/rs/zerolog"
)

// DefaultMaxExpansionDepth is the default limit on nested macro expansions.
const DefaultMaxExpansionDepth = 1000

// Option is a configuration function for evaluation.
type Option func(*config)

type config struct {
	maxDepth    int
	strictArity bool
	logger      zerolog.Logger
}

// WithMaxExpansionDepth sets the maximum number of nested macro expansions.
// The default is 1000.
func WithMaxExpansionDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithStrictArity disables the special case that lets a one-parameter macro
// be expanded without arguments. When enabled, every expansion must pass
// exactly as many arguments as the macro declares.
func WithStrictArity(enabled bool) Option {
	return func(c *config) {
		c.strictArity = enabled
	}
}

// WithLogger sets the logger that receives expansion trace events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Evaluate evaluates script in a fresh root scope and returns its bytes.
func Evaluate(ctx context.Context, script *ast.Script, options ...Option) ([]byte, error) {
	out, err := EvaluateBlocks(ctx, script.Blocks, NewScope(), options...)
	if err != nil {
		return nil, errors.WithFilename(err, script.Filename)
	}
	return out, nil
}

// EvaluateBlocks evaluates blocks in scope. Definitions made by the blocks
// are bound in scope.
func EvaluateBlocks(ctx context.Context, blocks []ast.Block, scope *Scope, options ...Option) ([]byte, error) {
	cfg := &config{
		maxDepth: DefaultMaxExpansionDepth,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(cfg)
	}
	e := &evaluator{ctx: ctx, cfg: cfg}
	return e.blocks(blocks, scope)
}

type evaluator struct {
	ctx   context.Context
	cfg   *config
	depth int
}

func (e *evaluator) blocks(blocks []ast.Block, scope *Scope) ([]byte, error) {
	out := []byte{}
	for _, block := range blocks {
		if err := e.ctx.Err(); err != nil {
			return nil, err
		}
		value, err := e.block(block, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, value...)
	}
	return out, nil
}

func (e *evaluator) block(block ast.Block, scope *Scope) ([]byte, error) {
	switch b := block.(type) {
	case *ast.Bytes:
		out, err := e.items(b.Items, scope, b.Line)
		if err != nil {
			return nil, errors.Locate(err, b.Line, b.Source, 0)
		}
		return out, nil
	case *ast.Define:
		scope.Set(b.Name, &Macro{
			Name:   b.Name,
			Params: b.Params,
			Body:   b.Body,
			Scope:  scope,
			Line:   b.Line,
		})
		return nil, nil
	case *ast.Repeat:
		body, err := e.blocks(b.Body, scope)
		if err != nil {
			return nil, err
		}
		if b.Count > 0 && len(body) > math.MaxInt32/b.Count {
			return nil, errors.At(errors.Structuralf("repeated output of %d x %d bytes is too large", b.Count, len(body)), b.Line)
		}
		return bytes.Repeat(body, b.Count), nil
	case *ast.Assembly:
		return b.Code, nil
	default:
		return nil, errors.At(errors.Structuralf("unknown block type %T", block), block.LineNumber())
	}
}

// items evaluates the items of one line. A "<" marks the start of a flip
// region and a ">" ends it; the bytes emitted inside a region are reversed.
// A "<" inside an open region closes it and opens a new one, a ">" with no
// open region is ignored, and a region left open at the end of the line is
// closed there.
func (e *evaluator) items(items []ast.Item, scope *Scope, line int) ([]byte, error) {
	out := []byte{}
	flip := -1
	for _, item := range items {
		switch x := item.(type) {
		case *ast.Literal:
			out = append(out, x.Value...)
		case *ast.Left:
			if flip >= 0 {
				reverseTail(out, flip)
			}
			flip = len(out)
		case *ast.Right:
			if flip >= 0 {
				reverseTail(out, flip)
				flip = -1
			}
		case *ast.Expansion:
			value, err := e.expand(x, scope, line)
			if err != nil {
				return nil, err
			}
			out = append(out, value...)
		default:
			return nil, errors.Structuralf("unknown item type %T", item).AtColumn(item.Pos())
		}
	}
	if flip >= 0 {
		reverseTail(out, flip)
	}
	return out, nil
}

// reverseTail reverses b[start:] in place.
func reverseTail(b []byte, start int) {
	for i, j := start, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func (e *evaluator) expand(x *ast.Expansion, scope *Scope, line int) ([]byte, error) {
	args := make([][]byte, 0, len(x.Args))
	for _, arg := range x.Args {
		value, err := e.items(arg, scope, line)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}

	value, ok := scope.Get(x.Name)
	if !ok {
		return nil, errors.Scopef("undefined variable %s", x.Name).AtColumn(x.Pos())
	}
	switch v := value.(type) {
	case *Inline:
		if len(args) != 0 {
			return nil, errors.Scopef("expansion $%s expected 0 args, got %d", x.Name, len(args)).AtColumn(x.Pos())
		}
		return v.Value, nil
	case *Macro:
		return e.call(v, x, args, line)
	default:
		return nil, errors.Scopef("cannot expand %s", x.Name).AtColumn(x.Pos())
	}
}

func (e *evaluator) call(m *Macro, x *ast.Expansion, args [][]byte, line int) ([]byte, error) {
	if e.depth >= e.cfg.maxDepth {
		return nil, errors.Scopef("maximum expansion depth of %d exceeded", e.cfg.maxDepth).AtColumn(x.Pos())
	}

	inner := m.Scope.Child()
	switch {
	case len(m.Params) == 1 && len(args) == 0 && !e.cfg.strictArity:
		// A single parameter may be omitted; it expands to nothing.
		inner.Set(m.Params[0], &Inline{Name: m.Params[0], Value: []byte{}})
	case len(args) != len(m.Params):
		return nil, errors.Scopef("expansion $%s expected %d args, got %d", x.Name, len(m.Params), len(args)).AtColumn(x.Pos())
	default:
		for i, param := range m.Params {
			inner.Set(param, &Inline{Name: param, Value: args[i]})
		}
	}

	e.depth++
	defer func() { e.depth-- }()
	e.cfg.logger.Trace().
		Str("name", m.Name).
		Int("line", line).
		Int("args", len(args)).
		Int("depth", e.depth).
		Msg("expanding macro")

	out, err := e.blocks(m.Body, inner)
	if err != nil {
		return nil, errors.WithFrame(err, errors.StackFrame{Function: m.Name, Line: line})
	}
	return out, nil
}

// Package parser builds the block tree of a script from its source lines.
//
// Every line is either a byte expression or a macro header. A macro header
// starts with "@" and owns the lines indented one level deeper that follow
// it. The Parser reads lines through a cursor that does not consume a line
// until it has been claimed, so a nested body ends at the first line that is
// indented less than the body.
package parser

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/hexraw/asm"
	"github.com/deepnoodle-ai/hexraw/ast"
	"github.com/deepnoodle-ai/hexraw/errors"
	"github.com/deepnoodle-ai/hexraw/expr"
	"github.com/deepnoodle-ai/hexraw/internal/cursor"
	"github.com/deepnoodle-ai/hexraw/internal/indent"
	"github.com/rs/zerolog"
)

// Parse parses the provided input as a script and returns its block tree.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Script, error) {
	return ParseReader(ctx, strings.NewReader(input), options...)
}

// ParseReader parses a script read from r.
func ParseReader(ctx context.Context, r io.Reader, options ...Option) (*ast.Script, error) {
	p := New(options...)
	script, err := p.Parse(ctx, r)
	if err != nil {
		return nil, errors.WithFilename(err, p.filename)
	}
	return script, nil
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in errors and on the script.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth of macro bodies.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// WithAssembler sets the assembler used for @assembly blocks.
func WithAssembler(assembler asm.Assembler) Option {
	return func(p *Parser) {
		p.assembler = assembler
	}
}

// WithLogger sets the logger that receives debug events while parsing.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// Parser builds a block tree. A Parser should be used for a single script.
type Parser struct {
	// the Context supplied in the Parse() call
	ctx context.Context

	cursor *cursor.Cursor
	indent *indent.Tracker

	assembler asm.Assembler
	logger    zerolog.Logger

	// The filename of the input
	filename string

	// Current and maximum nesting depth
	depth    int
	maxDepth int
}

// New returns a Parser configured with the given options.
func New(options ...Option) *Parser {
	p := &Parser{
		indent:   indent.New(),
		logger:   zerolog.Nop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.assembler == nil {
		p.assembler = asm.NewGCC(asm.WithLogger(p.logger))
	}
	return p
}

// Parse reads the script from r and returns its blocks.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*ast.Script, error) {
	p.ctx = ctx
	c, err := cursor.New(r)
	if err != nil {
		return nil, err
	}
	p.cursor = c

	blocks, err := p.parseBlocks(0)
	if err != nil {
		return nil, err
	}
	return &ast.Script{Filename: p.filename, Blocks: blocks}, nil
}

// skippable reports whether a line produces no block: blank lines and lines
// holding only a comment.
func skippable(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// parseBlocks collects consecutive blocks at exactly level. It stops at the
// end of input or at the first line indented less than level.
func (p *Parser) parseBlocks(level int) ([]ast.Block, error) {
	var blocks []ast.Block
	for p.cursor.Valid() {
		select {
		case <-p.ctx.Done():
			return nil, p.ctx.Err()
		default:
		}
		line := p.cursor.Line()
		if skippable(line) {
			if err := p.cursor.Advance(); err != nil {
				return nil, err
			}
			continue
		}
		ok, err := p.indent.Eq(line, level)
		if err != nil {
			return nil, errors.Locate(err, p.cursor.Number(), line, 0)
		}
		if !ok {
			break
		}
		block, err := p.parseBlock(level)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// parseBlock parses the block starting on the current line, including any
// body it owns.
func (p *Parser) parseBlock(level int) (ast.Block, error) {
	line := p.cursor.Line()
	number := p.cursor.Number()
	content := strings.TrimSpace(line)

	if strings.HasPrefix(content, "@") {
		block, err := p.parseMacro(level, line, number)
		if err != nil {
			return nil, errors.Locate(err, number, line, 0)
		}
		return block, nil
	}

	items, err := expr.Parse(line)
	if err != nil {
		return nil, errors.Locate(err, number, line, 0)
	}
	if err := p.cursor.Advance(); err != nil {
		return nil, err
	}
	return &ast.Bytes{Pos: ast.Pos{Line: number}, Source: line, Items: items}, nil
}

// tokenizeMacro splits a header into its macro name and arguments. A "#"
// starts a comment.
func tokenizeMacro(content string) (string, []string) {
	if i := strings.IndexByte(content, '#'); i >= 0 {
		content = content[:i]
	}
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func (p *Parser) parseMacro(level int, line string, number int) (ast.Block, error) {
	name, args := tokenizeMacro(strings.TrimSpace(line))
	switch name {
	case "@repeat":
		return p.parseRepeat(level, number, args)
	case "@define":
		return p.parseDefine(level, number, args)
	case "@assembly":
		return p.parseAssembly(level, number, args)
	default:
		return nil, errors.Structuralf("unknown macro: %s", name)
	}
}

func (p *Parser) parseRepeat(level, number int, args []string) (ast.Block, error) {
	if len(args) != 1 {
		return nil, errors.Structuralf("expected exactly one argument indicating repetition count")
	}
	count, err := strconv.Atoi(args[0])
	if err != nil || count < 0 || strings.HasPrefix(args[0], "+") {
		return nil, errors.Structuralf("invalid repetition count %s", args[0])
	}
	body, err := p.parseBody(level, number)
	if err != nil {
		return nil, err
	}
	p.logger.Debug().
		Int("line", number).
		Int("count", count).
		Int("blocks", len(body)).
		Msg("parsed repeat")
	return &ast.Repeat{Pos: ast.Pos{Line: number}, Count: count, Body: body}, nil
}

func (p *Parser) parseDefine(level, number int, args []string) (ast.Block, error) {
	if len(args) == 0 {
		return nil, errors.Structuralf("expected at least one argument indicating definition name")
	}
	seen := make(map[string]bool, len(args))
	for i, arg := range args {
		if !expr.IsName(arg) {
			if i == 0 {
				return nil, errors.Structuralf("invalid definition name %q", arg)
			}
			return nil, errors.Structuralf("invalid parameter name %q", arg)
		}
		if i > 0 && seen[arg] {
			return nil, errors.Structuralf("duplicate parameter name %q", arg)
		}
		if i > 0 {
			seen[arg] = true
		}
	}
	body, err := p.parseBody(level, number)
	if err != nil {
		return nil, err
	}
	p.logger.Debug().
		Int("line", number).
		Str("name", args[0]).
		Strs("params", args[1:]).
		Int("blocks", len(body)).
		Msg("parsed define")
	return &ast.Define{
		Pos:    ast.Pos{Line: number},
		Name:   args[0],
		Params: args[1:],
		Body:   body,
	}, nil
}

func (p *Parser) parseAssembly(level, number int, args []string) (ast.Block, error) {
	if len(args) != 0 {
		return nil, errors.Structuralf("@assembly takes no arguments")
	}
	if err := p.cursor.Advance(); err != nil {
		return nil, err
	}
	lines, err := p.parseRaw(level + 1)
	if err != nil {
		return nil, err
	}
	var source strings.Builder
	for _, l := range lines {
		source.WriteString(l)
		source.WriteByte('\n')
	}

	p.logger.Debug().
		Int("line", number).
		Int("lines", len(lines)).
		Msg("assembling")
	code, err := p.assembler.Assemble(p.ctx, source.String())
	if err != nil {
		if _, ok := errors.KindOf(err); !ok {
			err = errors.Wrap(errors.Tooling, err, "assembly failed")
		}
		return nil, errors.At(err, number)
	}
	return &ast.Assembly{Pos: ast.Pos{Line: number}, Source: source.String(), Code: code}, nil
}

// parseBody advances past a macro header and parses the blocks indented
// one level deeper than it.
func (p *Parser) parseBody(level, number int) ([]ast.Block, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return nil, errors.At(errors.Structuralf("maximum nesting depth of %d exceeded", p.maxDepth), number)
	}
	if err := p.cursor.Advance(); err != nil {
		return nil, err
	}
	return p.parseBlocks(level + 1)
}

// parseRaw collects the lines indented at level or deeper, with level units
// of indentation removed. Blank lines inside the region are kept, trailing
// blank lines are dropped.
func (p *Parser) parseRaw(level int) ([]string, error) {
	var lines []string
	kept := 0
	for p.cursor.Valid() {
		line := p.cursor.Line()
		ok, err := p.indent.Ge(line, level)
		if err != nil {
			return nil, errors.Locate(err, p.cursor.Number(), line, 0)
		}
		if !ok {
			break
		}
		if indent.IsBlank(line) {
			lines = append(lines, "")
		} else {
			lines = append(lines, p.indent.Trim(line, level))
			kept = len(lines)
		}
		if err := p.cursor.Advance(); err != nil {
			return nil, err
		}
	}
	return lines[:kept], nil
}

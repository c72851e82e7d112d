package asm

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/deepnoodle-ai/hexraw/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

const (
	// DefaultCommand is the assembler driver used when none is configured.
	DefaultCommand = "gcc"

	// DefaultSection is the ELF section extracted from the object file.
	DefaultSection = ".text"
)

// GCC assembles source by piping it to a GCC-compatible driver and reading
// one section back out of the resulting ELF object file.
type GCC struct {
	Command string
	Section string
	Logger  zerolog.Logger
}

// GCCOption configures a GCC assembler.
type GCCOption func(*GCC)

// WithCommand sets the driver executable.
func WithCommand(command string) GCCOption {
	return func(g *GCC) {
		g.Command = command
	}
}

// WithSection sets the name of the section to extract.
func WithSection(section string) GCCOption {
	return func(g *GCC) {
		g.Section = section
	}
}

// WithLogger sets the logger used to report assembler invocations.
func WithLogger(logger zerolog.Logger) GCCOption {
	return func(g *GCC) {
		g.Logger = logger
	}
}

// NewGCC returns an assembler that runs gcc and extracts .text.
func NewGCC(opts ...GCCOption) *GCC {
	g := &GCC{
		Command: DefaultCommand,
		Section: DefaultSection,
		Logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Assemble writes an object file to a temporary path, extracts the
// configured section and removes the file again.
func (g *GCC) Assemble(ctx context.Context, source string) ([]byte, error) {
	f, err := os.CreateTemp("", "hexraw-*.o")
	if err != nil {
		return nil, errors.Wrap(errors.Tooling, err, "error creating temporary file")
	}
	path := f.Name()

	var result *multierror.Error
	if err := f.Close(); err != nil {
		result = multierror.Append(result, errors.Wrap(errors.Tooling, err, "error creating temporary file"))
	}

	var code []byte
	if result == nil {
		code, err = g.run(ctx, path, source)
		if err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		result = multierror.Append(result, errors.Wrap(errors.Tooling, err, "error removing temporary file"))
	}

	switch {
	case result == nil:
		return code, nil
	case result.Len() == 1:
		return nil, result.Errors[0]
	default:
		return nil, errors.Wrap(errors.Tooling, result, "assembly failed")
	}
}

func (g *GCC) run(ctx context.Context, path, source string) ([]byte, error) {
	command := g.Command
	if command == "" {
		command = DefaultCommand
	}
	section := g.Section
	if section == "" {
		section = DefaultSection
	}

	args := []string{"-c", "-o", path, "-x", "assembler", "-"}
	g.Logger.Debug().
		Str("command", command).
		Strs("args", args).
		Int("source_bytes", len(source)).
		Msg("invoking assembler")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdin = strings.NewReader(source)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(errors.Tooling, ctxErr, "error while awaiting %s", command)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				return nil, errors.Toolingf("compilation of assembly failed (%s)", exitErr)
			}
			return nil, errors.Toolingf("compilation of assembly failed (%s):\n%s", exitErr, msg)
		}
		return nil, errors.Wrap(errors.Tooling, err, "failed to run %s", command)
	}

	code, err := ExtractSection(path, section)
	if err != nil {
		return nil, err
	}
	g.Logger.Debug().
		Str("section", section).
		Int("code_bytes", len(code)).
		Msg("assembled")
	return code, nil
}

// Package asm turns the source of an @assembly block into machine code.
package asm

import (
	"context"
)

// Assembler assembles source text into the raw bytes of its code section.
type Assembler interface {
	Assemble(ctx context.Context, source string) ([]byte, error)
}

// Func adapts an ordinary function to the Assembler interface.
type Func func(ctx context.Context, source string) ([]byte, error)

// Assemble calls f(ctx, source).
func (f Func) Assemble(ctx context.Context, source string) ([]byte, error) {
	return f(ctx, source)
}

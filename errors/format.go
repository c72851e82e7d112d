package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats errors with colors and a source snippet.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Colors used for error formatting
var (
	colorError     = []color.Attribute{color.FgRed}
	colorErrorBold = []color.Attribute{color.FgHiRed, color.Bold}
	colorLocation  = []color.Attribute{color.FgCyan}
	colorLineNum   = []color.Attribute{color.FgHiBlack}
	colorSource    = []color.Attribute{color.FgWhite}
	colorCaret     = []color.Attribute{color.FgHiRed}
	colorNote      = []color.Attribute{color.FgHiBlue}
)

// FormattedError represents an error ready for display.
type FormattedError struct {
	Kind     string
	Message  string
	Filename string
	Line     int
	Column   int
	Source   string
	Stack    []StackFrame
}

// Format formats err. Errors that are not *Error are rendered as a single
// header line.
func (f *Formatter) Format(err error) string {
	var e *Error
	if As(err, &e) {
		return f.FormatError(e.ToFormatted())
	}
	return f.FormatError(&FormattedError{Kind: "error", Message: err.Error()})
}

// FormatError formats err in a Rust-like style:
//
//	structural error: unknown macro: @bogus
//	  --> payload.hr:3:1
//	   |
//	 3 | @bogus 1
//	   | ^
func (f *Formatter) FormatError(err *FormattedError) string {
	var b strings.Builder

	lineNumWidth := 2
	if err.Line >= 100 {
		lineNumWidth = len(fmt.Sprintf("%d", err.Line))
	}

	f.writeHeader(&b, err)
	f.writeLocation(&b, err, lineNumWidth)
	f.writeSource(&b, err, lineNumWidth)
	if len(err.Stack) > 0 {
		f.writeStack(&b, err.Stack, lineNumWidth)
	}
	return b.String()
}

// paint colors s with attrs when the formatter uses color. Color is forced
// on only for the Color built here.
func (f *Formatter) paint(attrs []color.Attribute, s string) string {
	if !f.UseColor {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

func (f *Formatter) writeHeader(b *strings.Builder, err *FormattedError) {
	label := "error"
	if err.Kind != "" {
		label = err.Kind
	}
	b.WriteString(f.paint(colorErrorBold, label))
	b.WriteString(f.paint(colorError, ": "))
	b.WriteString(err.Message)
	b.WriteString("\n")
}

func (f *Formatter) writeLocation(b *strings.Builder, err *FormattedError, lineNumWidth int) {
	if err.Line == 0 && err.Filename == "" {
		return
	}
	padding := strings.Repeat(" ", lineNumWidth)
	b.WriteString(padding)
	b.WriteString(f.paint(colorLocation, "-->"))
	b.WriteString(" ")

	loc := err.Filename
	if err.Line > 0 {
		pos := fmt.Sprintf("%d", err.Line)
		if err.Column > 0 {
			pos = fmt.Sprintf("%d:%d", err.Line, err.Column)
		}
		if loc != "" {
			loc += ":" + pos
		} else {
			loc = "line " + pos
		}
	}
	b.WriteString(f.paint(colorLocation, loc))
	b.WriteString("\n")
}

func (f *Formatter) writeSource(b *strings.Builder, err *FormattedError, lineNumWidth int) {
	if err.Source == "" || err.Line == 0 {
		return
	}
	padding := strings.Repeat(" ", lineNumWidth)
	pipe := f.paint(colorLineNum, " | ")

	b.WriteString(padding)
	b.WriteString(f.paint(colorLineNum, " |"))
	b.WriteString("\n")

	b.WriteString(f.paint(colorLineNum, fmt.Sprintf("%*d", lineNumWidth, err.Line)))
	b.WriteString(pipe)
	b.WriteString(f.paint(colorSource, err.Source))
	b.WriteString("\n")

	if err.Column > 0 {
		b.WriteString(padding)
		b.WriteString(pipe)
		b.WriteString(strings.Repeat(" ", err.Column-1))
		b.WriteString(f.paint(colorCaret, "^"))
		b.WriteString("\n")
	}
}

func (f *Formatter) writeStack(b *strings.Builder, stack []StackFrame, lineNumWidth int) {
	padding := strings.Repeat(" ", lineNumWidth)
	b.WriteString(padding)
	b.WriteString(f.paint(colorLineNum, " = "))
	b.WriteString(f.paint(colorNote, "expanded from:"))
	b.WriteString("\n")
	for _, frame := range stack {
		b.WriteString(padding)
		b.WriteString("     ")
		b.WriteString(frame.String())
		b.WriteString("\n")
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/deepnoodle-ai/hexraw/errors"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

var red = color.New(color.FgRed).SprintFunc()

// printError reports err on w. The first line is always the one-line
// "Runtime error on line N" form; verbose mode adds the source excerpt and
// the macro call stack.
func printError(w io.Writer, err error, verbose bool) {
	fmt.Fprintln(w, red(err.Error()))
	if !verbose {
		return
	}
	var e *errors.Error
	if errors.As(err, &e) && (e.Source != "" || len(e.Stack) > 0) {
		formatter := errors.NewFormatter(!color.NoColor && isTerminal(w))
		fmt.Fprintln(w)
		fmt.Fprint(w, formatter.Format(e))
	}
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags(v *viper.Viper) {
	if v.GetBool("no-color") {
		color.NoColor = true
	}
}

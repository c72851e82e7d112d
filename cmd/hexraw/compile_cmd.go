package main

import (
	"fmt"
	"io"
	"os"

	"github.com/deepnoodle-ai/hexraw"
	"github.com/deepnoodle-ai/hexraw/dump"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// openScript opens the script named by path, or stdin for "-".
func openScript(cmd *cobra.Command, path string) (io.ReadCloser, string, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), "", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("error reading file: %w", err)
	}
	return f, path, nil
}

func compileHandler(cmd *cobra.Command, v *viper.Viper, args []string) error {
	r, filename, err := openScript(cmd, args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	logger := newLogger(v, cmd.ErrOrStderr())
	out, err := hexraw.CompileReader(cmd.Context(), r, getCompileOptions(v, filename, logger)...)
	if err != nil {
		return err
	}
	logger.Debug().Int("bytes", len(out)).Msg("compiled")

	if v.GetBool("debug") {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), dump.Hex(out))
		return err
	}
	if path := v.GetString("output"); path != "" {
		return os.WriteFile(path, out, 0o644)
	}

	stdout := cmd.OutOrStdout()
	if isTerminal(stdout) && len(out) > 0 {
		logger.Warn().Msg("writing raw bytes to a terminal; use --debug for a readable listing")
	}
	_, err = stdout.Write(out)
	return err
}

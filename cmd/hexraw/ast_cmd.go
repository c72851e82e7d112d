package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/hexraw"
	"github.com/deepnoodle-ai/hexraw/ast"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newAstCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast FILE",
		Short: "Display the block tree of a script",
		Long: `Display the block tree of a script without evaluating it.

Assembly blocks are still assembled, since their machine code is part of the
tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return astHandler(cmd, v, args)
		},
	}
	cmd.Flags().StringP("format", "f", "json", "Output format (json or text)")
	_ = v.BindPFlag("format", cmd.Flags().Lookup("format"))
	return cmd
}

func astHandler(cmd *cobra.Command, v *viper.Viper, args []string) error {
	r, filename, err := openScript(cmd, args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	logger := newLogger(v, cmd.ErrOrStderr())
	script, err := hexraw.ParseReader(cmd.Context(), r, getCompileOptions(v, filename, logger)...)
	if err != nil {
		return err
	}
	output, err := getOutput(v, script, v.GetString("format"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
	return err
}

func getOutput(v *viper.Viper, script *ast.Script, format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "json":
		output, err := getOutputJSON(v, script)
		if err != nil {
			return "", err
		}
		return string(output), nil
	case "text":
		return strings.TrimSuffix(script.String(), "\n"), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func getOutputJSON(v *viper.Viper, script *ast.Script) ([]byte, error) {
	if v.GetBool("no-color") {
		return json.MarshalIndent(script, "", "  ")
	}
	return prettyjson.Marshal(script)
}

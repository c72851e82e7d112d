package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:   "hexraw FILE",
		Short: "Compile a hexraw script into raw bytes",
		Long: `Compile a hexraw script into raw bytes.

The compiled bytes are written to stdout, or to the file named by --output.
Use --debug to print a hexadecimal listing instead. Pass "-" as FILE to read
the script from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v); err != nil {
				return err
			}
			processGlobalFlags(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return compileHandler(cmd, v, args)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default is $HOME/.hexraw.yaml)")
	pf.BoolP("verbose", "v", false, "Log progress and show detailed errors")
	pf.Bool("no-color", false, "Disable colored output")
	pf.String("assembler", "", "Assembler command used for @assembly blocks (default gcc)")
	pf.Int("max-depth", 0, "Maximum nesting depth of macro bodies")
	pf.Int("max-expansion-depth", 0, "Maximum depth of nested macro expansions")
	pf.Bool("strict-arity", false, "Require every expansion to pass all declared arguments")

	f := root.Flags()
	f.BoolP("debug", "d", false, "Print the result as a readable hexadecimal listing")
	f.StringP("output", "o", "", "Write the result to a file instead of stdout")

	_ = v.BindPFlags(pf)
	_ = v.BindPFlags(f)

	root.AddCommand(newAstCmd(v))
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	v := viper.New()
	cmd := newRootCmd(v)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		printError(os.Stderr, err, v.GetBool("verbose"))
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hexraw %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/hexraw"
	"github.com/deepnoodle-ai/hexraw/asm"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// initConfig reads the config file and environment into v. A missing
// default config file is not an error; a missing --config file is.
func initConfig(v *viper.Viper) error {
	cfgFile := v.GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".hexraw")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("HEXRAW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// newLogger returns a console logger on w. Debug events are shown with
// --verbose, otherwise only warnings and errors.
func newLogger(v *viper.Viper, w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if v.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    v.GetBool("no-color"),
		TimeFormat: "15:04:05",
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// getCompileOptions builds the compiler options selected by flags, the
// environment and the config file.
func getCompileOptions(v *viper.Viper, filename string, logger zerolog.Logger) []hexraw.Option {
	opts := []hexraw.Option{
		hexraw.WithLogger(logger),
		hexraw.WithStrictArity(v.GetBool("strict-arity")),
	}
	if filename != "" {
		opts = append(opts, hexraw.WithFilename(filename))
	}
	if command := v.GetString("assembler"); command != "" {
		opts = append(opts, hexraw.WithAssembler(asm.NewGCC(
			asm.WithCommand(command),
			asm.WithLogger(logger),
		)))
	}
	if depth := v.GetInt("max-depth"); depth > 0 {
		opts = append(opts, hexraw.WithMaxDepth(depth))
	}
	if depth := v.GetInt("max-expansion-depth"); depth > 0 {
		opts = append(opts, hexraw.WithMaxExpansionDepth(depth))
	}
	return opts
}

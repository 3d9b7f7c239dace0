package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/alnah/go-docgen/internal/config"
)

// newFlagSet returns a flag set carrying the shared configuration flags.
func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }
	fs.String("config", "", "YAML configuration file")
	config.RegisterFlags(fs)
	return fs
}

// parseFlags parses args and rejects positional arguments.
func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return fmt.Errorf("%w: help requested", ErrUsage)
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}
	return nil
}

// loadConfig resolves configuration from dotenv files, the environment,
// an optional YAML file and the parsed flags.
func loadConfig(fs *pflag.FlagSet, env *Environment) (*config.Config, error) {
	file, _ := fs.GetString("config")
	return config.Load(config.Options{
		ConfigFile: file,
		EnvFiles:   env.EnvFiles,
		Flags:      fs,
	})
}

// Package cli holds the command line plumbing shared by the binaries: flag
// parsing, configuration loading and logger setup.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/simulation"
	"github.com/spf13/cobra"
	"github.com/tochemey/goakt/v3/log"
)

// RunFunc is the body of a binary once its configuration is settled.
type RunFunc func(ctx context.Context, cfg *simulation.Config, logger log.Logger) error

// Flags are the options every binary accepts.
type Flags struct {
	ConfigFile string
	Word       string
	Seed       uint64
	Workers    int
	LogFile    string
}

// NewRootCommand builds a cobra command that resolves the configuration and
// hands it to run. logOut is where logs go when --log-file is not given;
// nil discards them.
func NewRootCommand(use, short string, logOut io.Writer, run RunFunc) *cobra.Command {
	var flags Flags
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ResolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			out := logOut
			if flags.LogFile != "" {
				f, err := os.OpenFile(flags.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				out = f
			}
			logger, err := NewLogger(cfg.LogLevel, out)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, logger)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.ConfigFile, "config", "c", "", "JSON configuration file")
	f.StringVarP(&flags.Word, "word", "w", "", "word traced by the swarm")
	f.Uint64Var(&flags.Seed, "seed", 0, "random seed, 0 picks one")
	f.IntVar(&flags.Workers, "workers", 0, "goroutines used to update the swarm")
	f.StringVar(&flags.LogFile, "log-file", "", "append logs to this file")
	return cmd
}

// ResolveConfig loads the configuration file, if any, then applies the
// flags the user actually set.
func ResolveConfig(cmd *cobra.Command, flags Flags) (*simulation.Config, error) {
	cfg := simulation.DefaultConfig()
	if flags.ConfigFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(flags.ConfigFile); err != nil {
			return nil, err
		}
	}
	changed := cmd.Flags().Changed
	if changed("word") {
		cfg.Word = flags.Word
	}
	if changed("seed") {
		cfg.Seed = flags.Seed
	}
	if changed("workers") {
		cfg.Workers = flags.Workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger returns a goakt logger at the named level writing to out, or the
// discard logger when out is nil.
func NewLogger(level string, out io.Writer) (log.Logger, error) {
	if out == nil {
		return log.DiscardLogger, nil
	}
	lvl, err := simulation.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return log.New(lvl, out), nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/simsensor/lib/clock"
	"github.com/bureau-foundation/simsensor/lib/config"
)

type runOptions struct {
	ConfigPath string
	Ticks      uint64
	Duration   time.Duration
	Output     string
	LogFile    string
	Debug      bool
}

func runCommand() *command {
	var options runOptions
	return &command{
		Name:    "run",
		Summary: "Run the simulation and publish joint sensor readings",
		Description: `Run the synthetic simulation in real time and publish joint sensor
readings for every configured publisher.

The config file comes from --config or the SIMSENSOR_CONFIG environment
variable. The run stops on SIGINT or SIGTERM, after --duration, or after
--ticks simulator steps, whichever comes first.`,
		Usage: "simsensor run [--config FILE] [--ticks N] [--duration D] [--output PATH]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.StringVarP(&options.ConfigPath, "config", "c", "", "config file (default: $SIMSENSOR_CONFIG)")
			flagSet.Uint64Var(&options.Ticks, "ticks", 0, "stop after this many simulator ticks (0 = no limit)")
			flagSet.DurationVar(&options.Duration, "duration", 0, "stop after this long (overrides simulation.duration)")
			flagSet.StringVarP(&options.Output, "output", "o", "", "write frames to this path (\"-\" for stdout), overriding the config's sink")
			flagSet.StringVar(&options.LogFile, "log-file", "", "write JSON logs to this file with rotation instead of stderr")
			flagSet.BoolVar(&options.Debug, "debug", false, "enable debug logging")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			level := slog.LevelInfo
			if options.Debug {
				level = slog.LevelDebug
			}
			logger := newLogger(level)
			if options.LogFile != "" {
				var closer io.Closer
				logger, closer = newFileLogger(options.LogFile, level)
				defer closer.Close()
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSimulation(ctx, options, clock.Real(), logger)
		},
	}
}

// runSimulation loads and validates the config, applies flag
// overrides, and runs until ctx is done or a limit is reached.
func runSimulation(ctx context.Context, options runOptions, clk clock.Clock, logger *slog.Logger) error {
	cfg, err := loadConfig(options.ConfigPath)
	if err != nil {
		return err
	}
	if options.Output != "" {
		cfg.Sink.Kind = config.SinkFrame
		cfg.Sink.Path = options.Output
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	duration := options.Duration
	if duration == 0 {
		if duration, err = cfg.RunDuration(); err != nil {
			return err
		}
	}
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	s, err := newSystem(cfg, clk, options.Ticks, logger)
	if err != nil {
		return err
	}
	return s.run(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

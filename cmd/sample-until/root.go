// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	sample "github.com/lueckem/sample-until"
	"github.com/lueckem/sample-until/fold"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sample-until [flags] -- command [args...]",
		Short:         "Run a command repeatedly until a stop condition fires, then report latency statistics",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			cfg.Command = args
			return sampleCommand(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	fl.DurationP("duration", "d", 0, "stop after this much wall-clock time (e.g. 30s, 5m)")
	fl.IntP("samples", "n", 0, "stop after this many runs (default 10 when no other condition is given)")
	fl.Float64("memory", 0, "stop when the used fraction of system memory reaches this value (0 to 1)")
	fl.IntP("workers", "w", 1, "number of concurrent samplers (-1 = all cores)")
	fl.Float64P("rate", "r", 0, "max runs per second across all workers (0 = unpaced)")
	fl.Int("batch", 1, "samples per hand-off between workers and the aggregator")
	fl.Duration("timeout", 0, "per-run timeout (0 = none)")
	fl.String("log", "warn", "log level: debug, info, warn, or error")
	fl.String("config", "", "path to a YAML or JSON config file (flags override it)")

	return cmd
}

func sampleCommand(ctx context.Context, cfg *cliConfig, out io.Writer) error {
	lvl, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: lvl})))

	f := runCommandFunc(cfg)
	start := time.Now()
	hist, count, err := sample.UntilFolded(ctx, f, fold.Duration, fold.NewDurations(), cfg.options()...)
	elapsed := time.Since(start)

	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return err
	}
	if interrupted {
		slog.Warn("interrupted, reporting partial results", "runs", count)
	}
	if count == 0 {
		return errors.New("no runs completed")
	}
	printReport(out, cfg.Command, hist, count, elapsed)
	return nil
}

// runCommandFunc wraps the target command as a sampling function measuring
// one run's wall-clock time. The command inherits neither stdout nor stderr;
// only its exit status and duration matter here.
func runCommandFunc(cfg *cliConfig) sample.Func[time.Duration] {
	name, args := cfg.Command[0], cfg.Command[1:]
	return func(ctx context.Context) (time.Duration, error) {
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}
		start := time.Now()
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		if err := cmd.Run(); err != nil {
			return 0, fmt.Errorf("running %q: %w", name, err)
		}
		return time.Since(start), nil
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"log/slog"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	sample "github.com/lueckem/sample-until"
)

type cliConfig struct {
	Duration  time.Duration
	Samples   int
	Memory    float64
	MemorySet bool
	Workers   int
	Rate      float64
	Batch     int
	Timeout   time.Duration
	LogLevel  string
	Command   []string
}

// configKeys are the settings shared between the config file and the flag
// set. Flags that were given on the command line override file values.
var configKeys = []string{"duration", "samples", "memory", "workers", "rate", "batch", "timeout", "log"}

func loadConfig(fl *pflag.FlagSet) (*cliConfig, error) {
	v := viper.New()
	if path, err := fl.GetString("config"); err == nil && path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	for _, key := range configKeys {
		if err := v.BindPFlag(key, fl.Lookup(key)); err != nil {
			return nil, err
		}
	}

	cfg := &cliConfig{
		Duration:  v.GetDuration("duration"),
		Samples:   v.GetInt("samples"),
		Memory:    v.GetFloat64("memory"),
		MemorySet: v.IsSet("memory"),
		Workers:   v.GetInt("workers"),
		Rate:      v.GetFloat64("rate"),
		Batch:     v.GetInt("batch"),
		Timeout:   v.GetDuration("timeout"),
		LogLevel:  v.GetString("log"),
	}

	// Without any stop condition the run could never end; default to a small
	// fixed number of runs like other benchmarking tools do.
	if cfg.Duration <= 0 && cfg.Samples <= 0 && !cfg.MemorySet {
		cfg.Samples = 10
	}
	return cfg, nil
}

func (c *cliConfig) options() []sample.Option {
	opts := []sample.Option{sample.WithLogger(slog.Default())}
	if c.Duration > 0 {
		opts = append(opts, sample.WithDuration(c.Duration))
	}
	if c.Samples > 0 {
		opts = append(opts, sample.WithMaxSamples(c.Samples))
	}
	if c.MemorySet {
		opts = append(opts, sample.WithMemoryLimit(c.Memory))
	}
	if c.Workers != 1 {
		opts = append(opts, sample.WithWorkers(c.Workers))
	}
	if c.Rate > 0 {
		opts = append(opts, sample.WithRateLimit(c.Rate))
	}
	if c.Batch > 1 {
		opts = append(opts, sample.WithBatchSize(c.Batch))
	}
	return opts
}

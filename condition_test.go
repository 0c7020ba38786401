// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lueckem/sample-until"
)

// countAtLeast stops once the worker has produced the given number of samples.
type countAtLeast int64

func (c countAtLeast) Met(p sample.Progress) bool { return p.Count >= int64(c) }
func (c countAtLeast) Reason() string             { return "enough samples" }

// progressRecorder never stops; it keeps the last snapshot it was shown.
type progressRecorder struct{ last *sample.Progress }

func (r progressRecorder) Met(p sample.Progress) bool {
	*r.last = p
	return false
}

func (r progressRecorder) Reason() string { return "recorder" }

func TestCustomConditionStops(t *testing.T) {
	chk := require.New(t)
	var reason string
	samples, err := sample.Until(
		context.Background(),
		func(ctx context.Context) (int, error) { return 1, nil },
		sample.WithCondition(countAtLeast(7)),
		sample.WithOnStop(func(r string) { reason = r }),
	)
	chk.NoError(err)
	chk.Len(samples, 7)
	chk.Equal("enough samples", reason)
}

func TestMemoryLimitStopsOnProbeReading(t *testing.T) {
	chk := require.New(t)
	readings := []float64{0.5, 0.5, 0.9}
	var i int
	probe := func() (float64, error) {
		v := readings[min(i, len(readings)-1)]
		i++
		return v, nil
	}
	samples, err := sample.Until(
		context.Background(),
		func(ctx context.Context) (int, error) {
			time.Sleep(100 * time.Microsecond) // keep iterations longer than the probe interval
			return 1, nil
		},
		sample.WithMemoryLimit(0.8),
		sample.WithMemoryProbe(probe),
		sample.WithMemoryProbeInterval(time.Nanosecond),
	)
	chk.NoError(err)
	// One probe reading per loop iteration: 0.5 and 0.5 admit a sample each,
	// 0.9 stops the loop.
	chk.Len(samples, 2)
}

func TestMemoryLimitZeroStopsImmediately(t *testing.T) {
	chk := require.New(t)
	samples, err := sample.Until(
		context.Background(),
		func(ctx context.Context) (int, error) { return 1, nil },
		sample.WithMemoryLimit(0),
	)
	chk.NoError(err)
	chk.Empty(samples, "any reading from the default probe meets a zero limit")
}

func TestMemoryProbeFirstErrorFatal(t *testing.T) {
	chk := require.New(t)
	probe := func() (float64, error) { return 0, errors.New("sensor offline") }
	samples, err := sample.Until(
		context.Background(),
		func(ctx context.Context) (int, error) { return 1, nil },
		sample.WithMemoryLimit(0.5),
		sample.WithMemoryProbe(probe),
		sample.WithMaxSamples(100),
	)
	chk.Error(err)
	chk.ErrorContains(err, "memory probe")
	chk.Empty(samples)
}

func TestMemoryProbeLaterErrorKeepsLastReading(t *testing.T) {
	chk := require.New(t)
	var calls int
	probe := func() (float64, error) {
		calls++
		if calls == 1 {
			return 0.3, nil
		}
		return 0, errors.New("sensor offline")
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	samples, err := sample.Until(
		context.Background(),
		func(ctx context.Context) (int, error) {
			time.Sleep(100 * time.Microsecond)
			return 1, nil
		},
		sample.WithMemoryLimit(0.9),
		sample.WithMemoryProbe(probe),
		sample.WithMemoryProbeInterval(time.Nanosecond),
		sample.WithMaxSamples(5),
		sample.WithLogger(logger),
	)
	chk.NoError(err, "a probe failure after a successful reading is not fatal")
	chk.Len(samples, 5)
	chk.Contains(buf.String(), "memory probe failed")
}

func TestMemoryProbeFeedsProgress(t *testing.T) {
	chk := require.New(t)
	var last sample.Progress
	_, err := sample.Until(
		context.Background(),
		func(ctx context.Context) (int, error) { return 1, nil },
		sample.WithMaxSamples(3),
		sample.WithCondition(progressRecorder{&last}),
		sample.WithMemoryProbe(func() (float64, error) { return 0.42, nil }),
	)
	chk.NoError(err)
	chk.InDelta(0.42, last.Memory, 1e-9, "a configured probe populates Memory without a limit")
	chk.False(last.Start.IsZero())
	chk.Equal(int64(2), last.Count, "the count condition fires before the recorder sees the third sample")
}

func TestProgressMemoryUnknownWithoutProbe(t *testing.T) {
	chk := require.New(t)
	var last sample.Progress
	_, err := sample.Until(
		context.Background(),
		func(ctx context.Context) (int, error) { return 1, nil },
		sample.WithMaxSamples(2),
		sample.WithCondition(progressRecorder{&last}),
	)
	chk.NoError(err)
	chk.Negative(last.Memory)
}

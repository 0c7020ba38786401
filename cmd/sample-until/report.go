// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lueckem/sample-until/fold"
)

func printReport(w io.Writer, command []string, d *fold.Durations, count int64, elapsed time.Duration) {
	fmt.Fprintf(w, "command:  %s\n", strings.Join(command, " "))
	fmt.Fprintf(w, "runs:     %d in %s\n", count, elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "mean:     %s ± %s\n", round(d.Mean()), round(d.StdDev()))
	fmt.Fprintf(w, "min:      %s\n", round(d.Min()))
	fmt.Fprintf(w, "p50:      %s\n", round(d.Percentile(50)))
	fmt.Fprintf(w, "p90:      %s\n", round(d.Percentile(90)))
	fmt.Fprintf(w, "p99:      %s\n", round(d.Percentile(99)))
	fmt.Fprintf(w, "max:      %s\n", round(d.Max()))
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Microsecond)
}

// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Command sample-until runs a command repeatedly until a stop condition
// fires, then reports latency statistics:
//
//	sample-until -d 30s -- curl -s https://example.com
//	sample-until -n 100 -w 4 --rate 20 -- ./script.sh
//
// Stop conditions, worker count, and pacing map directly onto the options of
// the sample-until library; run timings are folded into an HDR histogram, so
// arbitrarily long sampling runs use constant memory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

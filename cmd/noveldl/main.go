// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// The first interrupt cancels ctx and restores default signal handling, so
// a second one kills the process even while temporary files are removed.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	context.AfterFunc(ctx, stop)
	return ctx, stop
}

func main() {
	ctx, cancel := interruptContext(context.Background())
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}

// SPDX-License-Identifier: MIT

// Package main is the entry point for the hmmalign CLI.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/katalvlaran/hmmalign/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the assetload CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SpringRoll/SpringRoll-sub000/cmd/assetload/commands"
	"github.com/SpringRoll/SpringRoll-sub000/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := commands.New()
	if err := cli.Execute(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, logger.FormatError(err))
		if ctx.Err() != nil {
			return 130
		}
		return 1
	}
	return 0
}

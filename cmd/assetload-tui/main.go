// Package main is the entry point for the interactive asset loader.
package main

import (
	"fmt"
	"os"

	"github.com/SpringRoll/SpringRoll-sub000/internal/config"
	"github.com/SpringRoll/SpringRoll-sub000/internal/logger"
	"github.com/SpringRoll/SpringRoll-sub000/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, logger.FormatError(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "assetload-tui",
		Short:         "Interactively load an asset document",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return tui.Run(settings)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "assetload.yaml", "Path to configuration file")

	return cmd
}

// Package commands implements the assetload command line interface.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/SpringRoll/SpringRoll-sub000/internal/config"
	"github.com/SpringRoll/SpringRoll-sub000/internal/logger"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer"
	"github.com/spf13/cobra"
)

// CLI represents the assetload command line interface.
type CLI struct {
	rootCmd *cobra.Command
	out     io.Writer
	errOut  io.Writer

	// fetcher replaces the HTTP client when set.
	fetcher transfer.Fetcher

	settings *config.Settings
	logger   *slog.Logger
}

// New creates a new CLI writing to stdout and stderr.
func New() *CLI {
	rootCmd := &cobra.Command{
		Use:           "assetload",
		Short:         "Load, cache and export game assets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "assetload.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug output")

	c := &CLI{
		rootCmd: rootCmd,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
	rootCmd.PersistentPreRunE = c.loadSettings

	rootCmd.AddCommand(c.newLoadCmd())
	rootCmd.AddCommand(c.newVersionsCmd())
	rootCmd.AddCommand(c.newSizesCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output and log records. Used for testing.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.out = out
	c.errOut = errOut
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}

// SetFetcher replaces the HTTP client used by load. Used for testing.
func (c *CLI) SetFetcher(f transfer.Fetcher) {
	c.fetcher = f
}

func (c *CLI) loadSettings(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}

	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	c.settings = settings
	c.logger = logger.New(c.errOut, verbose)
	return nil
}

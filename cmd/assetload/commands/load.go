package commands

import (
	"fmt"

	"github.com/SpringRoll/SpringRoll-sub000/internal/download"
	"github.com/spf13/cobra"
)

func (c *CLI) newLoadCmd() *cobra.Command {
	var (
		opts       download.Options
		output     string
		basePath   string
		sequential bool
		cacheBust  bool
	)

	cmd := &cobra.Command{
		Use:   "load <document>",
		Short: "Load every asset in a document and write the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := *c.settings
			if output != "" {
				settings.OutputPath = output
			}
			if basePath != "" {
				settings.BasePath = basePath
			}
			if sequential {
				settings.Parallel = false
			}
			if cacheBust {
				settings.CacheBust = true
			}

			manager, err := download.NewManager(&settings, c.fetcher, opts, c.logger)
			if err != nil {
				return err
			}
			defer manager.Destroy()

			if err := manager.Initialize(cmd.Context(), args[0]); err != nil {
				return err
			}
			summary, err := manager.StartDownloads(cmd.Context())
			if summary != nil {
				_, _ = fmt.Fprintf(c.out, "Loaded %d entries: %d files written, %d failed (%.2f MB) into %s\n",
					summary.Entries, summary.Files, summary.Failed,
					float64(summary.Bytes)/1024/1024, settings.OutputPath)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "Output directory (overrides config)")
	flags.StringVar(&basePath, "base-path", "", "Prefix for relative asset URLs (overrides config)")
	flags.BoolVar(&sequential, "sequential", false, "Load assets one at a time in document order")
	flags.BoolVar(&cacheBust, "cache-bust", false, "Append a cache-busting token to every URL")
	flags.IntVar(&opts.Width, "width", 0, "Viewport width used to pick size variants")
	flags.IntVar(&opts.Height, "height", 0, "Viewport height used to pick size variants")
	flags.IntVar(&opts.MaxImageSize, "max-image-size", 0, "Longest edge of written images (0 keeps the loaded size)")
	flags.BoolVar(&opts.JPEG, "jpeg", false, "Write decoded images as JPEG instead of PNG")

	return cmd
}

package commands

import (
	"fmt"

	"github.com/SpringRoll/SpringRoll-sub000/internal/sizes"
	"github.com/spf13/cobra"
)

func (c *CLI) newSizesCmd() *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "sizes",
		Short: "Show the configured size variants and the one preferred for a viewport",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			sz := sizes.New()
			if err := c.settings.ApplySizes(sz); err != nil {
				return err
			}
			if len(sz.Variants()) == 0 {
				return sizes.ErrNoSizes
			}
			if width > 0 && height > 0 {
				sz.Refresh(width, height)
			}

			preferred := sz.Preferred()
			for _, v := range sz.Variants() {
				marker := " "
				if v.ID == preferred.ID {
					marker = "*"
				}
				_, _ = fmt.Fprintf(c.out, "%s %-10s max %-6d scale %.2f\n", marker, v.ID, v.MaxSize, v.Scale)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Viewport width")
	cmd.Flags().IntVar(&height, "height", 0, "Viewport height")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/qcache/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the embedded store and local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")

			// Default behavior: remove the embedded store only.
			opts := app.CleanOptions{Store: true}
			if all {
				opts.State = true
			}

			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolP("all", "a", false, "Also remove the whole .qcache directory")

	return cmd
}

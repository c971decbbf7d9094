package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/qcache/internal/app"
)

func (c *CLI) newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "List trading timestamps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			future, _ := cmd.Flags().GetBool("future")

			return c.app.Calendar(cmd.Context(), app.CalendarOptions{
				RangeOptions: rangeOptions(cmd),
				Future:       future,
				OutputMode:   outputMode(cmd),
			})
		},
	}
	cmd.Flags().Bool("future", false, "Include trading days after the last historical one")
	addRangeFlags(cmd)
	addOutputFlag(cmd)
	return cmd
}

package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/qcache/internal/app"
)

func (c *CLI) newInstrumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instruments",
		Short: "List the instruments of a market",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			market, _ := cmd.Flags().GetString("market")

			return c.app.Instruments(cmd.Context(), app.InstrumentsOptions{
				RangeOptions: rangeOptions(cmd),
				Market:       market,
				OutputMode:   outputMode(cmd),
			})
		},
	}
	cmd.Flags().StringP("market", "m", "all", "Market to list")
	addRangeFlags(cmd)
	addOutputFlag(cmd)
	return cmd
}

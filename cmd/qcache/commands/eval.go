package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/qcache/internal/app"
)

func (c *CLI) newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval EXPRESSION",
		Short: "Evaluate an expression for instruments",
		Example: `  qcache eval 'Mean(Sub($close,$open),5)' -i SH600000
  qcache eval '$close' --market csi300 --start 2024-01-01 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instruments, _ := cmd.Flags().GetStringSlice("instrument")
			market, _ := cmd.Flags().GetString("market")

			return c.app.Eval(cmd.Context(), app.EvalOptions{
				RangeOptions: rangeOptions(cmd),
				Expression:   args[0],
				Instruments:  instruments,
				Market:       market,
				OutputMode:   outputMode(cmd),
			})
		},
	}
	cmd.Flags().StringSliceP("instrument", "i", nil, "Instrument codes to evaluate (repeatable)")
	cmd.Flags().StringP("market", "m", "all", "Market whose instruments are evaluated when no --instrument is given")
	addRangeFlags(cmd)
	addOutputFlag(cmd)
	return cmd
}

package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/qcache/internal/app"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			idle, _ := cmd.Flags().GetDuration("idle-timeout")
			watch, _ := cmd.Flags().GetBool("watch")

			return c.app.Serve(cmd.Context(), app.ServeOptions{
				Addr:        addr,
				IdleTimeout: idle,
				Watch:       watch,
			})
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "Address to listen on")
	cmd.Flags().Duration("idle-timeout", 0, "Stop after this long without requests (0 disables)")
	cmd.Flags().Bool("watch", true, "Reload cache settings when qcache.yaml changes")
	return cmd
}

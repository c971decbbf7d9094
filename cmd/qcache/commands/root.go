// Package commands implements the CLI commands for qcache.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/qcache/internal/app"
	"go.trai.ch/qcache/internal/build"
)

// CLI represents the command line interface for qcache.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	ConfigureLogger(json, quiet bool)
	Eval(ctx context.Context, opts app.EvalOptions) error
	Calendar(ctx context.Context, opts app.CalendarOptions) error
	Instruments(ctx context.Context, opts app.InstrumentsOptions) error
	Import(ctx context.Context, path string) error
	Clean(ctx context.Context, opts app.CleanOptions) error
	Serve(ctx context.Context, opts app.ServeOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "qcache",
		Short:         "Evaluate cached factor expressions over market data",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only log warnings and errors")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		logJSON, _ := cmd.Flags().GetBool("log-json")
		quiet, _ := cmd.Flags().GetBool("quiet")
		c.app.ConfigureLogger(logJSON, quiet)
	}

	rootCmd.AddCommand(c.newEvalCmd())
	rootCmd.AddCommand(c.newCalendarCmd())
	rootCmd.AddCommand(c.newInstrumentsCmd())
	rootCmd.AddCommand(c.newImportCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newVersionCmd())

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

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// addRangeFlags registers --start, --end and --freq.
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "First timestamp (YYYY-MM-DD, 'YYYY-MM-DD hh:mm:ss' or RFC 3339)")
	cmd.Flags().String("end", "", "Last timestamp")
	cmd.Flags().StringP("freq", "f", "day", "Sampling frequency, e.g. day, 1d, 5min")
}

func rangeOptions(cmd *cobra.Command) app.RangeOptions {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	freq, _ := cmd.Flags().GetString("freq")
	return app.RangeOptions{Start: start, End: end, Freq: freq}
}

// addOutputFlag registers --output and --ci.
func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "auto", "Output mode: auto, table, plain or json")
	cmd.Flags().Bool("ci", false, "Use plain output (shorthand for --output=plain)")
}

func outputMode(cmd *cobra.Command) string {
	mode, _ := cmd.Flags().GetString("output")
	if ci, _ := cmd.Flags().GetBool("ci"); ci {
		return "plain"
	}
	return mode
}

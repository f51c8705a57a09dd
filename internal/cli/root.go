package cli

import (
	"log/slog"
	"os"

	"github.com/me/cpusched/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagLocal     bool
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking CPUSCHED_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("CPUSCHED_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the cpusched CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cpusched",
		Short: "cpusched simulates CPU scheduling policies",
		Long: `cpusched runs FCFS, SJF, Priority, Round-Robin, SRTF and multi-level queue
simulations over a workload file, either in-process (--local) or against a
cpusched server, and prints Gantt charts, schedule tables and comparisons.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "cpusched server URL (or CPUSCHED_SERVER env)")
	root.PersistentFlags().BoolVar(&flagLocal, "local", false, "Run the engine in-process instead of calling the server")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newSimulateCmd(),
		newCompareCmd(),
		newRunsCmd(),
		newPoliciesCmd(),
	)

	return root
}

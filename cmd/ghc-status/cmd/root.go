package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/greenhouse-monitor/internal/config"
	"github.com/oshokin/greenhouse-monitor/internal/service/status"
	"github.com/oshokin/greenhouse-monitor/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured client log level.
	logLevel string
	// alarmsOnly prints only the alarm list.
	alarmsOnly bool
	// jsonOutput prints raw JSON documents.
	jsonOutput bool
	// watch polls at the given interval.
	watch time.Duration

	// rootCmd represents the base command for querying the controller.
	rootCmd = &cobra.Command{
		Use:   "ghc-status [server-address]",
		Short: "Show the state of a running greenhouse controller.",
		Long: `Connects to the ghc-controller status API and prints the latest reading,
setpoints, heater and humidifier states and the active alarms.

The server address can be provided as argument to override config (e.g., 10.0.0.5:50061).
Use --alarms to print only the alarm list, --json for machine-readable output and
--watch to keep polling.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			options := &status.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				AlarmsOnly:    alarmsOnly,
				JSON:          jsonOutput,
				Watch:         watch,
				LogLevel:      logLevel,
			}

			return status.Run(ctx, options)
		},
	}
)

// Execute runs the ghc-status CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&alarmsOnly, "alarms", "a", false, "print only the active alarms")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the response as JSON")
	rootCmd.Flags().DurationVarP(&watch, "watch", "w", 0, "poll at this interval until interrupted")
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/greenhouse-monitor/internal/config"
	"github.com/oshokin/greenhouse-monitor/internal/service/controller"
	"github.com/oshokin/greenhouse-monitor/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// listenAddress overrides the gRPC status API address.
	listenAddress string
	// logLevel overrides the configured log level.
	logLevel string
	// once runs a single cycle.
	once bool

	// rootCmd represents the base command for running the control loop.
	rootCmd = &cobra.Command{
		Use:   "ghc-controller",
		Short: "Run the greenhouse control loop.",
		Long: `Reads the greenhouse sensors on a fixed interval, switches the heater and
humidifier toward the stored setpoints and raises or clears alarms when readings
cross the configured limits.

Every reading is appended to the readings log. Alarm transitions are logged and,
when configured, published to Kafka and mirrored to Redis. The current state is
served over the gRPC status API for ghc-status.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &controller.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				LogLevel:      logLevel,
				Once:          once,
			}

			return controller.Run(ctx, options)
		},
	}

	// configCmd groups configuration helpers.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file.",
	}

	// configInitCmd writes a settings file with every default filled in.
	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with default values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			cmd.Printf("Settings written to %s\n", configPath)

			return nil
		},
	}
)

// Execute runs the ghc-controller CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&listenAddress, "listen", "l", "", "gRPC status API listen address override")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&once, "once", false, "run a single control cycle and exit")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

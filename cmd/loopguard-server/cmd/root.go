package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/loop-guard/internal/config"
	"github.com/oshokin/loop-guard/internal/service/server"
	"github.com/oshokin/loop-guard/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where operator changes are persisted.
	stateFile string
	// noWatch disables settings hot reload.
	noWatch bool

	// rootCmd represents the base command for running the guarded server.
	rootCmd = &cobra.Command{
		Use:   "loopguard-server [listen-address]",
		Short: "Run a guarded process with a loop guard control API.",
		Long: `Starts a long-lived process whose hot loops are protected by the loop guard.

The guard alerts once per armed session when a loop bound or running count exceeds
the configured threshold, optionally with a call stack and an early loop exit.
The threshold can be changed and alerting re-armed at runtime through the gRPC
control API (see loopguard-ctl) or by editing the settings file, which is watched
for changes. Operator changes are persisted to the state file and restored on start.
The listen address argument overrides control_addr from the settings file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
				NoWatch:       noWatch,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the loopguard-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&stateFile, "state-file", "s", "", "path to persist operator changes (overrides state_file)")
	rootCmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the configuration file on change")
}

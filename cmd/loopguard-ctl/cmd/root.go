package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/loop-guard/internal/geometry"
	"github.com/oshokin/loop-guard/internal/service/client"
	"github.com/oshokin/loop-guard/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serverAddress overrides the control address from the configuration file.
	serverAddress string
	// timeout overrides the per-call timeout.
	timeout time.Duration

	// rootCmd represents the base command for controlling a running guard.
	rootCmd = &cobra.Command{
		Use:   "loopguard-ctl",
		Short: "Inspect and reconfigure a running loop guard.",
		Long: `Talks to the control API of a loopguard-server.

Changes take effect on the next loop check of every goroutine, without a restart,
and are recorded with the hostname and username of the caller.`,
		SilenceUsage: true,
	}

	getCmd = &cobra.Command{
		Use:   "get",
		Short: "Print the current guard settings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, client.Get())
		},
	}

	setThresholdCmd = &cobra.Command{
		Use:   "set-threshold <iterations>",
		Short: "Change the iteration count above which loops alert.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse threshold %q: %w", args[0], err)
			}

			return run(cmd, client.SetThreshold(threshold))
		},
	}

	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Re-arm one-shot alerting so the next overflow alerts again.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, client.Reset())
		},
	}

	transformCmd = &cobra.Command{
		Use:   "transform <diameter> <center-x> <center-y>",
		Short: "Scale the reference drawing onto a target circle.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]float64, len(args))

			for i, arg := range args {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("parse %q: %w", arg, err)
				}

				values[i] = v
			}

			t := geometry.ComputeTransform(values[0], values[1], values[2])

			_, err := fmt.Fprintf(cmd.OutOrStdout(),
				"scale: %.4f\nlength: %.2f\ndraw: (%.2f, %.2f)\nend: (%.2f, %.2f)\n",
				t.ScaleFactor, t.ScaledLength, t.DrawX, t.DrawY, t.DrawEndX, t.DrawEndY)

			return err
		},
	}
)

// run performs a control action with the flags of the root command.
func run(cmd *cobra.Command, action client.Action) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	options := &client.Options{
		ConfigPath:    configPath,
		ServerAddress: serverAddress,
		Timeout:       timeout,
	}

	return client.Run(ctx, options, action, cmd.OutOrStdout())
}

// Execute runs the loopguard-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "a", "", "control address (default: control_addr from the configuration file)")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 0, "per-call timeout (default: timeout from the configuration file)")

	rootCmd.AddCommand(getCmd, setThresholdCmd, resetCmd, transformCmd)
}

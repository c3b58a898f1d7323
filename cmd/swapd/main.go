package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/app"
	swapd "github.com/iov-one/tokenswap/cmd/swapd/app"
	"github.com/iov-one/tokenswap/commands"
	"github.com/iov-one/tokenswap/commands/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "swapd",
		Short:         "Token swap escrow node",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(flagHome, defaultHome(), "directory to store files under")
	root.PersistentFlags().String(flagLogLevel, "info", "minimal level of logged entries (debug, info, error, none)")

	root.AddCommand(
		initCmd(),
		startCmd(),
		validateCmd(),
		testgenCmd(),
		versionCmd(),
	)
	return root
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [ticker] [address]",
		Short: "Initialize app_state in the genesis file",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := newLogger(conf.LogLevel)
			if err != nil {
				return err
			}
			return server.InitCmd(swapd.GenInitOptions, logger, cmd.OutOrStdout(), conf.Home, args)
		},
	}
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the abci server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := newLogger(conf.LogLevel)
			if err != nil {
				return err
			}

			var metrics *app.Metrics
			if conf.Metrics != "" {
				metrics = app.NewMetrics(prometheus.DefaultRegisterer)
			}
			application, err := swapd.GenerateApp(swapd.Options{
				Home:    conf.Home,
				Backend: conf.Backend,
				Logger:  logger,
				Debug:   conf.Debug,
				Metrics: metrics,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Start(ctx, application, logger, server.StartConfig{
				Bind:        conf.Bind,
				MetricsAddr: conf.Metrics,
			})
		},
	}
	cmd.Flags().String(flagBind, "tcp://localhost:26658", "address server listens on")
	cmd.Flags().String(flagBackend, swapd.BackendIAVL, "state database (iavl or badger)")
	cmd.Flags().String(flagMetrics, ":9102", "address serving prometheus metrics, empty to disable")
	cmd.Flags().Bool(flagDebug, false, "call stack returned on error")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <genesis.json>...",
		Short: "Check that genesis files can initialize the app",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := server.ValidateGenesis(swapd.Initializers(), args); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "genesis is valid")
			return nil
		},
	}
}

func testgenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "testgen [dir]",
		Short: "Write binary and json encoded example objects",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.TestGenCmd(swapd.Examples(), args)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the app version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), tokenswap.Version())
		},
	}
}

// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/dotandev/simauto/internal/config"
	"github.com/dotandev/simauto/internal/logger"
	"github.com/dotandev/simauto/internal/telemetry"
)

var (
	caseFlag     string
	remoteFlag   string
	configFlag   string
	logLevelFlag string
	jsonLogsFlag bool
)

var (
	appConfig       = config.DefaultConfig()
	tracerProvider  trace.TracerProvider
	shutdownTracing = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "simauto",
	Short: "Drive a power system simulator from the command line",
	Long: `simauto opens a simulation case through the simulator's automation server
and runs scripts, parameter queries, auxiliary file loads and fault studies
against it.

The simulator only runs on Windows. On other machines, start 'simauto serve'
on the Windows host and point every other command at it with --remote.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configFlag
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		if logLevelFlag != "" {
			cfg.LogLevel = logLevelFlag
		}
		if cmd.Flags().Changed("json-logs") {
			cfg.LogJSON = jsonLogsFlag
		}
		if remoteFlag == "" {
			remoteFlag = cfg.RPC.Remote
		}
		appConfig = cfg

		logger.SetOutput(cmd.ErrOrStderr(), cfg.LogJSON)
		logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

		tp, shutdown, err := telemetry.Init(cmd.Context(), telemetry.Config{
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.Tracing.ServiceName,
		})
		if err != nil {
			return fmt.Errorf("Error: failed to initialize tracing: %w", err)
		}
		tracerProvider, shutdownTracing = tp, shutdown
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdownTracing(context.Background())
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&caseFlag, "case", "c", "", "Case file to open (.pwb is assumed when no extension is given)")
	rootCmd.PersistentFlags().StringVar(&remoteFlag, "remote", "", "URL of a 'simauto serve' endpoint, e.g. http://sim-host:7420")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default $SIMAUTO_CONFIG or <user config dir>/simauto/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonLogsFlag, "json-logs", false, "Write logs as JSON")
}

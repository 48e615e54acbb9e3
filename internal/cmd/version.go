// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/dotandev/simauto/internal/config"
)

// Version is set at build time with -ldflags "-X".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the simauto version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "simauto %s (%s/%s, config schema %s)\n", Version, runtime.GOOS, runtime.GOARCH, config.CurrentVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

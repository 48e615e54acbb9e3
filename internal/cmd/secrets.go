// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dotandev/simauto/internal/secrets"
)

var dsnFlag string

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage credentials kept in the OS keychain",
}

var setDSNCmd = &cobra.Command{
	Use:   "set-dsn",
	Short: "Store the PostgreSQL DSN used by 'query --pg-table'",
	Long: `Store the PostgreSQL connection string used for exports in the OS keychain.
Without --dsn it is read from stdin so it stays out of shell history.`,
	Example: `  echo "postgres://grid@db:5432/studies" | simauto secrets set-dsn`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := dsnFlag
		if dsn == "" {
			text, err := readInput(cmd, "-")
			if err != nil {
				return err
			}
			dsn = strings.TrimSpace(text)
		}
		store, err := secrets.Open()
		if err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		if err := store.SetDSN(appConfig.Export.DSNKey, dsn); err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		pterm.Success.Printfln("DSN stored as %s", appConfig.Export.DSNKey)
		return nil
	},
}

func init() {
	setDSNCmd.Flags().StringVar(&dsnFlag, "dsn", "", "Connection string (default: read stdin)")
	secretsCmd.AddCommand(setDSNCmd)
	rootCmd.AddCommand(secretsCmd)
}

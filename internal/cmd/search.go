// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dotandev/simauto/internal/db"
)

var (
	searchSessionFlag string
	searchOpFlag      string
	searchErrorFlag   string
	searchDetailFlag  string
	searchSinceFlag   time.Duration
	searchLimitFlag   int

	pruneOlderThanFlag time.Duration
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the history of simulator calls",
	Long: `Search through the recorded simulator calls using regex patterns for engine
messages or call details, or by session id and operation.`,
	Example: `  simauto search --error "(?i)converge"
  simauto search --op RunScriptCommand --detail "^Fault" --since 24h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.InitDB(appConfig.History.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		params := db.SearchParams{
			SessionID:   searchSessionFlag,
			Op:          searchOpFlag,
			ErrorRegex:  searchErrorFlag,
			DetailRegex: searchDetailFlag,
			Limit:       searchLimitFlag,
		}
		if searchSinceFlag > 0 {
			params.Since = time.Now().Add(-searchSinceFlag)
		}

		calls, err := store.SearchCalls(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(calls) == 0 {
			fmt.Fprintln(out, "No matching calls found.")
			return nil
		}

		fmt.Fprintf(out, "Found %d matching calls:\n", len(calls))
		for _, c := range calls {
			fmt.Fprintln(out, "--------------------------------------------------")
			fmt.Fprintf(out, "ID: %d\n", c.ID)
			fmt.Fprintf(out, "Time: %s (%s)\n", c.Timestamp.Format("2006-01-02 15:04:05"), humanize.Time(c.Timestamp))
			fmt.Fprintf(out, "Session: %s\n", c.SessionID)
			fmt.Fprintf(out, "Call: %s %s\n", c.Op, c.Detail)
			fmt.Fprintf(out, "Outcome: %s in %s\n", c.State, c.Duration.Round(time.Millisecond))
			if c.Message != "" {
				fmt.Fprintf(out, "Message: %s\n", c.Message)
			}
		}
		fmt.Fprintln(out, "--------------------------------------------------")

		return nil
	},
}

var searchPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete recorded calls older than a given age",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.InitDB(appConfig.History.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		before := time.Now().Add(-pruneOlderThanFlag)
		n, err := store.Prune(cmd.Context(), before)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s calls recorded before %s.\n", humanize.Comma(n), humanize.Time(before))
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchSessionFlag, "session", "", "Session id to search for")
	searchCmd.Flags().StringVar(&searchOpFlag, "op", "", "Operation name, e.g. RunScriptCommand")
	searchCmd.Flags().StringVar(&searchErrorFlag, "error", "", "Regex pattern to match engine messages")
	searchCmd.Flags().StringVar(&searchDetailFlag, "detail", "", "Regex pattern to match call details (commands, paths, fields)")
	searchCmd.Flags().DurationVar(&searchSinceFlag, "since", 0, "Only calls newer than this, e.g. 24h")
	searchCmd.Flags().IntVar(&searchLimitFlag, "limit", 10, "Maximum number of results to return")

	searchPruneCmd.Flags().DurationVar(&pruneOlderThanFlag, "older-than", 30*24*time.Hour, "Age of the calls to delete")

	searchCmd.AddCommand(searchPruneCmd)
	rootCmd.AddCommand(searchCmd)
}

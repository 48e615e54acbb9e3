// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dotandev/simauto/internal/session"
)

var (
	auxOutFlag        string
	auxFilterFlag     string
	auxObjectTypeFlag string
	auxFieldsFlag     []string
	auxAppendFlag     bool
)

// withSpinner runs fn behind an indeterminate progress bar. Saves of large
// cases take several seconds.
func withSpinner(cmd *cobra.Command, description string, fn func() error) error {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan error, 1)
	go func() { done <- fn() }()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			_ = bar.Finish()
			return err
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the case and report whether it loaded",
	Long: `Open the case named by --case. Locally this checks that the simulator can
load it; against --remote it makes the served session switch to it.`,
	Example: `  simauto open --case C:\cases\ieee14.pwb
  simauto open --remote http://sim-host:7420 --case C:\cases\b7flat`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if caseFlag == "" {
			return fmt.Errorf("Error: --case is required")
		}
		_, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		pterm.Success.Printfln("Case open: %s", caseFlag)
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the case over its current file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		if err := withSpinner(cmd, "Saving case", func() error { return b.Save(cmd.Context()) }); err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		pterm.Success.Println("Case saved")
		return nil
	},
}

var saveAsCmd = &cobra.Command{
	Use:   "save-as <path>",
	Short: "Save the case to a new file, overwriting it if present",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		if err := withSpinner(cmd, "Saving case", func() error { return b.SaveAs(cmd.Context(), args[0]) }); err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		pterm.Success.Printfln("Case saved to %s", args[0])
		return nil
	},
}

var exportAuxCmd = &cobra.Command{
	Use:   "export-aux",
	Short: "Write a filtered subset of the case as an auxiliary file",
	Example: `  simauto export-aux --case ieee14 --object-type GEN --fields BusNum,GenMW --out gens.aux
  simauto export-aux --case ieee14 --object-type BUS --filter HighVoltage --append`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		x := session.AuxExport{
			Path:       auxOutFlag,
			FilterName: auxFilterFlag,
			ObjectType: strings.ToUpper(auxObjectTypeFlag),
			Append:     auxAppendFlag,
			Fields:     auxFieldsFlag,
		}
		if err := b.SaveAsAuxiliary(cmd.Context(), x); err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		pterm.Success.Printfln("Auxiliary data for %s written", x.ObjectType)
		return nil
	},
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the case without saving",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		if err := b.Close(cmd.Context()); err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		pterm.Success.Println("Case closed")
		return nil
	},
}

func init() {
	exportAuxCmd.Flags().StringVar(&auxOutFlag, "out", "", "Output path (default: the case's .aux file)")
	exportAuxCmd.Flags().StringVar(&auxFilterFlag, "filter", "", "Only elements passing this filter")
	exportAuxCmd.Flags().StringVar(&auxObjectTypeFlag, "object-type", "", "Object type to export, e.g. BUS or GEN")
	exportAuxCmd.Flags().StringSliceVar(&auxFieldsFlag, "fields", nil, "Fields to export (default: all)")
	exportAuxCmd.Flags().BoolVar(&auxAppendFlag, "append", false, "Append to the output file instead of replacing it")
	_ = exportAuxCmd.MarkFlagRequired("object-type")

	rootCmd.AddCommand(openCmd, saveCmd, saveAsCmd, exportAuxCmd, closeCmd)
}

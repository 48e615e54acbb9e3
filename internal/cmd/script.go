// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dotandev/simauto/internal/auxfile"
	"github.com/dotandev/simauto/internal/session"
)

var (
	filterTypeFlag      string
	filterConditionFlag string
	filterLogicFlag     string
	filterPreFlag       string
	filterEnabledFlag   string

	tlrDirectionFlag  string
	tlrTransactorFlag string
	tlrMethodFlag     string

	excelFilterFlag string
	excelFieldsFlag []string
)

var scriptCmd = &cobra.Command{
	Use:   "script <command>...",
	Short: "Run script commands in order, stopping at the first failure",
	Example: `  simauto script --case ieee14 "EnterMode(RUN);" "SolvePowerFlow;"
  simauto script --case ieee14 "Fault([BUS 7], 3PB);"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		for _, c := range args {
			if err := b.RunScript(cmd.Context(), c); err != nil {
				return fmt.Errorf("Error: %w", err)
			}
			pterm.Success.Printfln("%s", c)
		}
		return nil
	},
}

var auxCmd = &cobra.Command{
	Use:   "aux",
	Short: "Work with auxiliary files",
}

var auxLoadCmd = &cobra.Command{
	Use:   "load <file|->",
	Short: "Load auxiliary text into the case",
	Long: `Load auxiliary text into the case. The text is written to the auxiliary file
next to the case, replacing it, and then processed by the simulator. Use - to
read the text from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		if err := b.LoadAuxiliaryText(cmd.Context(), text); err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		pterm.Success.Println("Auxiliary text loaded")
		return nil
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Manage case filters",
}

var filterCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Define a named filter in the case",
	Example: `  simauto filter create LowVoltage --case ieee14 --object-type BUS --condition "BusPUVolt < 0.95"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := auxfile.Filter{
			ObjectType: strings.ToUpper(filterTypeFlag),
			Name:       args[0],
			Condition:  filterConditionFlag,
			Logic:      filterLogicFlag,
			Pre:        filterPreFlag,
			Enabled:    filterEnabledFlag,
		}
		if err := f.WithDefaults().Validate(); err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		if err := b.CreateFilter(cmd.Context(), f); err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		pterm.Success.Printfln("Filter %s created on %s", f.Name, f.ObjectType)
		return nil
	},
}

var tlrCmd = &cobra.Command{
	Use:   "tlr <flow-element>",
	Short: "Calculate transmission loading relief sensitivities",
	Example: `  simauto tlr "[BRANCH 3391 44645 1]" --case ieee14 --direction BUYER --transactor "[SLACK]"
  simauto tlr '[INTERFACE "North-South"]' --case ieee14 --direction SELLER --transactor "[AREA 1]" --method DC`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := session.TLRRequest{
			FlowElement: args[0],
			Direction:   tlrDirectionFlag,
			Transactor:  tlrTransactorFlag,
			Method:      tlrMethodFlag,
		}
		script, err := r.Command()
		if err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		if err := b.CalculateTLR(cmd.Context(), r); err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		pterm.Success.Println(script)
		return nil
	},
}

var excelCmd = &cobra.Command{
	Use:   "excel <object-type>",
	Short: "Send element data to a spreadsheet on the simulator host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		objectType := strings.ToUpper(args[0])
		if err := b.SendToExcel(cmd.Context(), objectType, excelFilterFlag, excelFieldsFlag); err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		pterm.Success.Printfln("%s data sent to Excel", objectType)
		return nil
	},
}

func readInput(cmd *cobra.Command, name string) (string, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("Error: failed to read %s: %w", name, err)
	}
	return string(data), nil
}

func init() {
	filterCreateCmd.Flags().StringVar(&filterTypeFlag, "object-type", "", "Object type the filter applies to, e.g. BUS")
	filterCreateCmd.Flags().StringVar(&filterConditionFlag, "condition", "", "Condition line, e.g. \"BusPUVolt < 0.95\"")
	filterCreateCmd.Flags().StringVar(&filterLogicFlag, "logic", "", "Logic joining conditions (default AND)")
	filterCreateCmd.Flags().StringVar(&filterPreFlag, "pre", "", "Pre-filter flag (default NO)")
	filterCreateCmd.Flags().StringVar(&filterEnabledFlag, "enabled", "", "Enabled flag (default YES)")
	_ = filterCreateCmd.MarkFlagRequired("object-type")

	tlrCmd.Flags().StringVar(&tlrDirectionFlag, "direction", "BUYER", "BUYER or SELLER")
	tlrCmd.Flags().StringVar(&tlrTransactorFlag, "transactor", "[SLACK]", "Transactor, e.g. [AREA 1], [BUS 5] or [SLACK]")
	tlrCmd.Flags().StringVar(&tlrMethodFlag, "method", "AC", "Linear method: AC, DC or DCPC")

	excelCmd.Flags().StringVar(&excelFilterFlag, "filter", "", "Only elements passing this filter")
	excelCmd.Flags().StringSliceVar(&excelFieldsFlag, "fields", nil, "Fields to send (default: all)")

	auxCmd.AddCommand(auxLoadCmd)
	filterCmd.AddCommand(filterCreateCmd)
	rootCmd.AddCommand(scriptCmd, auxCmd, filterCmd, tlrCmd, excelCmd)
}

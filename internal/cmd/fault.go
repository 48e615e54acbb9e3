// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/report"
)

var faultChartFlag string

// parseBuses reads bus numbers given as "7", "1,2,3" or ranges "10-14".
func parseBuses(args []string) ([]int, error) {
	var buses []int
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			lo, hi, isRange := strings.Cut(part, "-")
			from, err := strconv.Atoi(lo)
			if err != nil {
				return nil, errors.WrapContractViolation("bad bus number %q", part)
			}
			to := from
			if isRange {
				if to, err = strconv.Atoi(hi); err != nil || to < from {
					return nil, errors.WrapContractViolation("bad bus range %q", part)
				}
			}
			for b := from; b <= to; b++ {
				buses = append(buses, b)
			}
		}
	}
	if len(buses) == 0 {
		return nil, errors.WrapContractViolation("no buses given")
	}
	return buses, nil
}

var faultCmd = &cobra.Command{
	Use:   "fault <bus>...",
	Short: "Run balanced three-phase faults and report the fault current",
	Long: `Run a balanced three-phase fault at each bus in turn and read back the fault
current magnitude. The case needs only positive-sequence data. Buses that
fail or report no value are listed and skipped in the summary and chart.`,
	Example: `  simauto fault 7 --case ieee14
  simauto fault 1-14 --case ieee14 --chart faults.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buses, err := parseBuses(args)
		if err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()

		bar := progressbar.NewOptions(len(buses),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Faulting buses"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		results := make([]report.FaultResult, 0, len(buses))
		for _, bus := range buses {
			mag, ok, err := b.ThreePhaseFaultCurrent(cmd.Context(), bus)
			results = append(results, report.FaultResult{Bus: bus, Magnitude: mag, OK: ok, Err: err})
			_ = bar.Add(1)
		}
		_ = bar.Finish()

		data := pterm.TableData{{"Bus", "Fault current", "Note"}}
		for _, r := range results {
			switch {
			case r.Err != nil:
				data = append(data, []string{strconv.Itoa(r.Bus), "", r.Err.Error()})
			case !r.OK:
				data = append(data, []string{strconv.Itoa(r.Bus), "", "no value"})
			default:
				data = append(data, []string{strconv.Itoa(r.Bus), strconv.FormatFloat(r.Magnitude, 'f', 4, 64), ""})
			}
		}
		if err := pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render(); err != nil {
			return fmt.Errorf("Error: %w", err)
		}

		s := report.Summarize(results)
		if s.Count > 0 {
			pterm.Info.Printfln("%d buses, mean %.4f, std dev %.4f, max %.4f at bus %d", s.Count, s.Mean, s.StdDev, s.Max, s.MaxBus)
		}
		if s.Skipped > 0 {
			pterm.Warning.Printfln("%d buses skipped", s.Skipped)
		}

		if faultChartFlag != "" {
			if err := report.DefaultChart().Save(faultChartFlag, results); err != nil {
				return fmt.Errorf("Error: %w", err)
			}
			pterm.Success.Printfln("Chart written to %s", faultChartFlag)
		}
		if s.Count == 0 {
			return fmt.Errorf("Error: no bus produced a fault current")
		}
		return nil
	},
}

func init() {
	faultCmd.Flags().StringVar(&faultChartFlag, "chart", "", "Write a bar chart of the results (.png, .svg or .pdf)")
	rootCmd.AddCommand(faultCmd)
}

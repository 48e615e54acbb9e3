// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/export"
	"github.com/dotandev/simauto/internal/secrets"
	"github.com/dotandev/simauto/internal/table"
)

var (
	elementFieldFlags []string

	queryFieldsFlag  []string
	queryFilterFlag  string
	queryKeyFlag     string
	queryPGTableFlag string
	queryReplaceFlag bool

	formatFlag string
)

// parseFieldValues splits FIELD=VALUE pairs. A bare FIELD or an empty value
// asks the engine for that field; integer values are sent as integers.
func parseFieldValues(pairs []string) ([]string, []any, error) {
	fields := make([]string, 0, len(pairs))
	values := make([]any, 0, len(pairs))
	for _, p := range pairs {
		name, raw, _ := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, nil, errors.WrapContractViolation("field %q has no name", p)
		}
		fields = append(fields, name)
		raw = strings.TrimSpace(raw)
		switch n, err := strconv.Atoi(raw); {
		case raw == "":
			values = append(values, 0)
		case err == nil:
			values = append(values, n)
		default:
			if f, ferr := strconv.ParseFloat(raw, 64); ferr == nil {
				values = append(values, f)
			} else {
				values = append(values, raw)
			}
		}
	}
	return fields, values, nil
}

// parseKeySpec reads --key: "#" keys by row ordinal, "A" by one field,
// "A,B" by a composite.
func parseKeySpec(s string) table.KeySpec {
	s = strings.TrimSpace(s)
	if s == "" || s == "#" {
		return table.KeySpec{}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return table.ByFields(parts...)
}

func writeTable(cmd *cobra.Command, t *table.Table) error {
	out, err := table.NewFormatter(table.FormatType(formatFlag)).Format(t)
	if err != nil {
		return fmt.Errorf("Error: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	if t.Len() == 0 && t.Message != "" {
		pterm.Info.Println(t.Message)
	}
	return nil
}

// writeRecords renders keyed records as a table sorted by key, with the key
// as the first column.
func writeRecords(cmd *cobra.Command, fields []string, recs map[string]table.Record) error {
	keys := make([]string, 0, len(recs))
	for k := range recs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := table.New(append([]string{"key"}, fields...))
	for _, k := range keys {
		row := []table.Cell{table.NewCell(k)}
		for _, f := range fields {
			row = append(row, recs[k][f])
		}
		t.Rows = append(t.Rows, row)
	}
	return writeTable(cmd, t)
}

var elementCmd = &cobra.Command{
	Use:   "element <object-type>",
	Short: "Get parameters of one element by its key fields",
	Example: `  simauto element BUS --case ieee14 --field BusNum=7 --field BusPUVolt --field BusAngle
  simauto element BRANCH --case ieee14 --field BusNumFrom=1 --field BusNumTo=2 --field LineCircuit=1 --field LineMW`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, values, err := parseFieldValues(elementFieldFlags)
		if err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		t, err := b.GetSingleElement(cmd.Context(), strings.ToUpper(args[0]), fields, values)
		if err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		return writeTable(cmd, t)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <object-type>",
	Short: "Get parameters of every element of a type",
	Long: `Get the requested fields for every element of a type, or only those passing
a filter defined in the case. With --key the rows are keyed by one or more
fields (joined with "|"); a later row with the same key replaces an earlier
one. With --pg-table the result is also copied into PostgreSQL using the DSN
stored by 'simauto secrets set-dsn'.`,
	Example: `  simauto query BUS --case ieee14 --fields BusNum,BusName,BusPUVolt --format csv
  simauto query BRANCH --case ieee14 --fields BusNumFrom,BusNumTo,LineCircuit,LineMW --key BusNumFrom,BusNumTo,LineCircuit
  simauto query GEN --case ieee14 --fields BusNum,GenMW --filter Online --pg-table studies.gens --replace`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		objectType := strings.ToUpper(args[0])
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()

		if queryKeyFlag != "" {
			recs, err := b.GetMultipleElementsAsMap(cmd.Context(), objectType, queryFieldsFlag, queryFilterFlag, parseKeySpec(queryKeyFlag))
			if err != nil {
				return fmt.Errorf("Error: %w", err)
			}
			return writeRecords(cmd, queryFieldsFlag, recs)
		}

		t, err := b.GetMultipleElements(cmd.Context(), objectType, queryFieldsFlag, queryFilterFlag)
		if err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		if err := writeTable(cmd, t); err != nil {
			return err
		}
		if queryPGTableFlag != "" {
			return exportTable(cmd, t)
		}
		return nil
	},
}

func exportTable(cmd *cobra.Command, t *table.Table) error {
	store, err := secrets.Open()
	if err != nil {
		return fmt.Errorf("Error: %w", err)
	}
	dsn, err := store.DSN(appConfig.Export.DSNKey)
	if err != nil {
		return fmt.Errorf("Error: %w (store one with 'simauto secrets set-dsn')", err)
	}
	pool, err := export.Connect(cmd.Context(), dsn)
	if err != nil {
		return fmt.Errorf("Error: %w", err)
	}
	defer pool.Close()

	n, err := export.Copy(cmd.Context(), pool, export.Target{Table: queryPGTableFlag, Replace: queryReplaceFlag}, t)
	if err != nil {
		return fmt.Errorf("Error: %w", err)
	}
	pterm.Success.Printfln("Copied %d rows into %s", n, queryPGTableFlag)
	return nil
}

var fieldsCmd = &cobra.Command{
	Use:   "fields <object-type>",
	Short: "List the fields the simulator knows for an object type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, release, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		t, err := b.GetFieldList(cmd.Context(), strings.ToUpper(args[0]))
		if err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		return writeTable(cmd, t)
	},
}

func init() {
	for _, c := range []*cobra.Command{elementCmd, queryCmd, fieldsCmd} {
		c.Flags().StringVarP(&formatFlag, "format", "o", string(table.FormatTable), "Output format: table, json, csv")
	}
	elementCmd.Flags().StringArrayVarP(&elementFieldFlags, "field", "f", nil, "FIELD=VALUE to identify the element, or FIELD to fetch (repeatable)")
	_ = elementCmd.MarkFlagRequired("field")

	queryCmd.Flags().StringSliceVar(&queryFieldsFlag, "fields", nil, "Fields to fetch, comma separated")
	queryCmd.Flags().StringVar(&queryFilterFlag, "filter", "", "Only elements passing this filter")
	queryCmd.Flags().StringVar(&queryKeyFlag, "key", "", "Key rows by these fields (comma separated), or # for the row number")
	queryCmd.Flags().StringVar(&queryPGTableFlag, "pg-table", "", "Also copy the result into this PostgreSQL table")
	queryCmd.Flags().BoolVar(&queryReplaceFlag, "replace", false, "Truncate the PostgreSQL table before copying")
	_ = queryCmd.MarkFlagRequired("fields")
	queryCmd.MarkFlagsMutuallyExclusive("key", "pg-table")

	rootCmd.AddCommand(elementCmd, queryCmd, fieldsCmd)
}

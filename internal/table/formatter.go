// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
)

type FormatType string

const (
	FormatJSON  FormatType = "json"
	FormatTable FormatType = "table"
	FormatCSV   FormatType = "csv"
)

// MissingText is how table and CSV output render a missing cell.
const MissingText = "NaN"

type Formatter struct {
	format FormatType
}

func NewFormatter(format FormatType) *Formatter {
	return &Formatter{format: format}
}

func (f *Formatter) Format(t *Table) (string, error) {
	if t == nil {
		t = &Table{}
	}
	switch f.format {
	case FormatJSON:
		return f.formatJSON(t)
	case FormatTable:
		return f.formatTable(t)
	case FormatCSV:
		return f.formatCSV(t)
	default:
		return "", fmt.Errorf("unsupported format: %s", f.format)
	}
}

type jsonTable struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Message string           `json:"message,omitempty"`
}

func (f *Formatter) formatJSON(t *Table) (string, error) {
	doc := jsonTable{Columns: t.Columns, Rows: make([]map[string]any, 0, t.Len()), Message: t.Message}
	if doc.Columns == nil {
		doc.Columns = []string{}
	}
	for _, r := range t.Rows {
		row := make(map[string]any, len(r))
		for i, c := range r {
			if c.Missing {
				row[t.Columns[i]] = nil
			} else {
				row[t.Columns[i]] = c.Value
			}
		}
		doc.Rows = append(doc.Rows, row)
	}
	output, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(output), nil
}

func (f *Formatter) formatTable(t *Table) (string, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, strings.Join(t.Columns, "\t"))
	for _, r := range t.Rows {
		_, _ = fmt.Fprintln(w, strings.Join(cellStrings(r), "\t"))
	}
	if t.Len() == 0 && t.Message != "" {
		_, _ = fmt.Fprintf(w, "(%s)\n", t.Message)
	}
	_ = w.Flush()
	return buf.String(), nil
}

func (f *Formatter) formatCSV(t *Table) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range t.Rows {
		if err := w.Write(cellStrings(r)); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.String(), nil
}

func cellStrings(r []Cell) []string {
	out := make([]string, len(r))
	for i, c := range r {
		if c.Missing {
			out[i] = MissingText
		} else {
			out[i] = c.String()
		}
	}
	return out
}

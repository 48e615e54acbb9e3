// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package table holds element query results: one row per element, one
// column per field.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dotandev/simauto/internal/errors"
)

// Cell is one field value. Empty strings from the engine become Missing.
type Cell struct {
	Value   any
	Missing bool
}

// NewCell normalizes a raw engine value.
func NewCell(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Cell{Missing: true}
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return Cell{Missing: true}
		}
		return Cell{Value: s}
	default:
		return Cell{Value: v}
	}
}

func (c Cell) String() string {
	if c.Missing {
		return ""
	}
	return fmt.Sprint(c.Value)
}

// Float64 parses the cell as a number. The engine returns most numeric fields
// as strings.
func (c Cell) Float64() (float64, error) {
	if c.Missing {
		return 0, fmt.Errorf("missing value")
	}
	switch x := c.Value.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return strconv.ParseFloat(strings.TrimSpace(c.String()), 64)
	}
}

// Record is one row addressed by field name.
type Record map[string]Cell

// Table is a Result Table. Message carries the engine's diagnostic text when
// the query matched nothing.
type Table struct {
	Columns []string
	Rows    [][]Cell
	Message string
}

// New returns an empty table with the given columns.
func New(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// FromRow builds a one-row table from a single-element payload, positionally
// paired with columns.
func FromRow(columns []string, values []any) (*Table, error) {
	if len(values) != len(columns) {
		return nil, errors.WrapMalformedPayload(fmt.Sprintf("%d values for %d fields", len(values), len(columns)))
	}
	t := New(columns)
	row := make([]Cell, len(values))
	for i, v := range values {
		row[i] = NewCell(v)
	}
	t.Rows = append(t.Rows, row)
	return t, nil
}

// FromColumns builds a table from a column-major payload: payload[i] holds
// the values of columns[i] for every element.
func FromColumns(columns []string, payload []any) (*Table, error) {
	if len(payload) != len(columns) {
		return nil, errors.WrapMalformedPayload(fmt.Sprintf("%d columns for %d fields", len(payload), len(columns)))
	}
	t := New(columns)
	if len(payload) == 0 {
		return t, nil
	}

	cols := make([][]any, len(payload))
	for i, p := range payload {
		c, ok := asSlice(p)
		if !ok {
			return nil, errors.WrapMalformedPayload(fmt.Sprintf("column %q is %T, not an array", columns[i], p))
		}
		if i > 0 && len(c) != len(cols[0]) {
			return nil, errors.WrapMalformedPayload(fmt.Sprintf("column %q has %d values, %q has %d", columns[i], len(c), columns[0], len(cols[0])))
		}
		cols[i] = c
	}

	t.Rows = make([][]Cell, len(cols[0]))
	for r := range t.Rows {
		row := make([]Cell, len(cols))
		for c := range cols {
			row[c] = NewCell(cols[c][r])
		}
		t.Rows[r] = row
	}
	return t, nil
}

// FromRecords builds a table from a row-major payload. When columns is nil
// the columns are named by position.
func FromRecords(columns []string, payload []any) (*Table, error) {
	width := len(columns)
	rows := make([][]any, len(payload))
	for i, p := range payload {
		r, ok := asSlice(p)
		if !ok {
			return nil, errors.WrapMalformedPayload(fmt.Sprintf("row %d is %T, not an array", i, p))
		}
		if len(r) > width && columns == nil {
			width = len(r)
		}
		rows[i] = r
	}
	if columns == nil {
		columns = make([]string, width)
		for i := range columns {
			columns[i] = strconv.Itoa(i)
		}
	}

	t := New(columns)
	for i, r := range rows {
		if len(r) > len(columns) {
			return nil, errors.WrapMalformedPayload(fmt.Sprintf("row %d has %d values for %d columns", i, len(r), len(columns)))
		}
		row := make([]Cell, len(columns))
		for c := range row {
			if c < len(r) {
				row[c] = NewCell(r[c])
			} else {
				row[c] = Cell{Missing: true}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func asSlice(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	case []float64:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = f
		}
		return out, true
	case []int:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the index of a field, or -1.
func (t *Table) Column(field string) int {
	for i, c := range t.Columns {
		if c == field {
			return i
		}
	}
	return -1
}

// Get returns the cell of row for field.
func (t *Table) Get(row int, field string) (Cell, bool) {
	c := t.Column(field)
	if c < 0 || row < 0 || row >= len(t.Rows) {
		return Cell{}, false
	}
	return t.Rows[row][c], true
}

// Record returns row as a field-addressed map.
func (t *Table) Record(row int) Record {
	rec := make(Record, len(t.Columns))
	for i, c := range t.Columns {
		rec[c] = t.Rows[row][i]
	}
	return rec
}

// MissingCount returns how many cells are missing.
func (t *Table) MissingCount() int {
	n := 0
	for _, r := range t.Rows {
		for _, c := range r {
			if c.Missing {
				n++
			}
		}
	}
	return n
}

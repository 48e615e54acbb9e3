// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Table {
	t.Helper()
	tbl, err := FromColumns([]string{"BusNum", "BusName"}, []any{
		[]any{1, 2},
		[]any{"ALPHA", ""},
	})
	require.NoError(t, err)
	return tbl
}

func TestFormatTable(t *testing.T) {
	out, err := NewFormatter(FormatTable).Format(sample(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "BusNum"))
	assert.Contains(t, lines[2], MissingText)
}

func TestFormatTableEmptyWithMessage(t *testing.T) {
	tbl := New([]string{"BusNum"})
	tbl.Message = "No data returned"

	out, err := NewFormatter(FormatTable).Format(tbl)
	require.NoError(t, err)
	assert.Contains(t, out, "(No data returned)")
}

func TestFormatJSON(t *testing.T) {
	out, err := NewFormatter(FormatJSON).Format(sample(t))
	require.NoError(t, err)

	var doc struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"BusNum", "BusName"}, doc.Columns)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, "ALPHA", doc.Rows[0]["BusName"])
	assert.Nil(t, doc.Rows[1]["BusName"])
}

func TestFormatCSV(t *testing.T) {
	out, err := NewFormatter(FormatCSV).Format(sample(t))
	require.NoError(t, err)
	assert.Equal(t, "BusNum,BusName\n1,ALPHA\n2,NaN\n", out)
}

func TestFormatUnsupported(t *testing.T) {
	_, err := NewFormatter("xml").Format(sample(t))
	assert.Error(t, err)
}

// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/simauto/internal/errors"
)

func TestFromColumnsThreeBuses(t *testing.T) {
	tbl, err := FromColumns([]string{"BusNum", "BusName"}, []any{
		[]any{1, 2, 3},
		[]any{"ALPHA", "BRAVO", "CHARLIE"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"BusNum", "BusName"}, tbl.Columns)
	assert.Zero(t, tbl.MissingCount())

	c, ok := tbl.Get(2, "BusName")
	require.True(t, ok)
	assert.Equal(t, "CHARLIE", c.String())
}

func TestFromColumnsMarksEmptyStringsMissing(t *testing.T) {
	tbl, err := FromColumns([]string{"BusNum", "AreaName"}, []any{
		[]string{"1", "2"},
		[]string{"", "   "},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.MissingCount())
	c, _ := tbl.Get(0, "AreaName")
	assert.True(t, c.Missing)
	assert.Equal(t, "", c.String())
}

func TestFromColumnsRejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		fields  []string
		payload []any
	}{
		{"column count", []string{"BusNum", "BusName"}, []any{[]any{1}}},
		{"not an array", []string{"BusNum"}, []any{"1"}},
		{"ragged", []string{"BusNum", "BusName"}, []any{[]any{1, 2}, []any{"A"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromColumns(tt.fields, tt.payload)
			assert.ErrorIs(t, err, errors.ErrMalformedPayload)
		})
	}
}

func TestFromRow(t *testing.T) {
	tbl, err := FromRow([]string{"BusNum", "FaultCurMag"}, []any{"  7", " 12.5031 "})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())

	c, _ := tbl.Get(0, "FaultCurMag")
	f, err := c.Float64()
	require.NoError(t, err)
	assert.InDelta(t, 12.5031, f, 1e-9)

	_, err = FromRow([]string{"BusNum"}, []any{1, 2})
	assert.ErrorIs(t, err, errors.ErrMalformedPayload)
}

func TestFromRecordsNamesColumnsByPosition(t *testing.T) {
	tbl, err := FromRecords(nil, []any{
		[]any{"*1*", "BusNum", "Integer", "Number"},
		[]any{"*2*", "BusName", "String"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1", "2", "3"}, tbl.Columns)
	assert.Equal(t, 2, tbl.Len())
	c, _ := tbl.Get(1, "3")
	assert.True(t, c.Missing)
}

func TestCellFloat64(t *testing.T) {
	tests := []struct {
		cell    Cell
		want    float64
		wantErr bool
	}{
		{NewCell(3.5), 3.5, false},
		{NewCell(4), 4, false},
		{NewCell(int32(9)), 9, false},
		{NewCell("1.25"), 1.25, false},
		{NewCell(""), 0, true},
		{NewCell("abc"), 0, true},
	}
	for _, tt := range tests {
		got, err := tt.cell.Float64()
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNilTableLen(t *testing.T) {
	var tbl *Table
	assert.Zero(t, tbl.Len())
}

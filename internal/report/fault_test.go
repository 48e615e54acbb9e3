// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package report

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sweep = []FaultResult{
	{Bus: 3, Magnitude: 10, OK: true},
	{Bus: 1, Magnitude: 20, OK: true},
	{Bus: 2, OK: false},
	{Bus: 4, Err: stderrors.New("Fault analysis requires sequence data")},
	{Bus: 5, Magnitude: 30, OK: true},
}

func TestSummarize(t *testing.T) {
	s := Summarize(sweep)

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.Skipped)
	assert.InDelta(t, 20.0, s.Mean, 1e-9)
	assert.InDelta(t, 10.0, s.StdDev, 1e-9)
	assert.Equal(t, 30.0, s.Max)
	assert.Equal(t, 5, s.MaxBus)
}

func TestSummarizeNothing(t *testing.T) {
	s := Summarize([]FaultResult{{Bus: 1}})
	assert.Equal(t, Summary{Skipped: 1}, s)
}

func TestChartSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faults.png")
	require.NoError(t, DefaultChart().Save(path, sweep))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestChartNeedsValues(t *testing.T) {
	err := DefaultChart().Save(filepath.Join(t.TempDir(), "empty.png"), []FaultResult{{Bus: 1}})
	assert.Error(t, err)
}

// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/session"
	"github.com/dotandev/simauto/internal/simulator"
	"github.com/dotandev/simauto/internal/simulator/simulatortest"
	"github.com/dotandev/simauto/internal/table"
)

const testCase = "/cases/ieee14.pwb"

// useMockBackend points openBackend at a local session over a mock engine
// for the duration of the test.
func useMockBackend(t *testing.T) *simulatortest.Engine {
	t.Helper()
	m := new(simulatortest.Engine)
	m.On("OpenCase", testCase).Return(simulator.Reply(""), nil).Once()
	m.On("CloseCase").Return(nil, nil).Maybe()
	m.On("Release").Return(nil).Maybe()

	sess, err := session.New(testCase, session.WithEngine(m))
	require.NoError(t, err)

	prev := openBackend
	openBackend = func(context.Context) (Backend, func(), error) {
		return &localBackend{sess: sess}, func() { _ = sess.Release() }, nil
	}
	t.Cleanup(func() {
		openBackend = prev
		_ = sess.Release()
	})
	return m
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "config.yaml")))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags returns every flag to its default so runs do not leak into
// each other through the package-level flag variables.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestParseFieldValues(t *testing.T) {
	fields, values, err := parseFieldValues([]string{"BusNum=7", "BusName", "BusPUVolt=", "BusAngle=1.5", "AreaName=East"})
	require.NoError(t, err)
	assert.Equal(t, []string{"BusNum", "BusName", "BusPUVolt", "BusAngle", "AreaName"}, fields)
	assert.Equal(t, []any{7, 0, 0, 1.5, "East"}, values)

	_, _, err = parseFieldValues([]string{"=7"})
	assert.ErrorIs(t, err, errors.ErrContractViolation)
}

func TestParseKeySpec(t *testing.T) {
	assert.Equal(t, table.KeySpec{}, parseKeySpec(""))
	assert.Equal(t, table.KeySpec{}, parseKeySpec("#"))
	assert.Equal(t, table.ByFields("BusNum"), parseKeySpec("BusNum"))
	assert.Equal(t, table.ByFields("BusNumFrom", "BusNumTo"), parseKeySpec("BusNumFrom, BusNumTo"))
}

func TestParseBuses(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []int
		wantErr bool
	}{
		{"single", []string{"7"}, []int{7}, false},
		{"list", []string{"1,2", "5"}, []int{1, 2, 5}, false},
		{"range", []string{"10-12"}, []int{10, 11, 12}, false},
		{"reversed range", []string{"12-10"}, nil, true},
		{"not a number", []string{"seven"}, nil, true},
		{"empty", []string{","}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBuses(tt.args)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrContractViolation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryCommandWritesCSV(t *testing.T) {
	m := useMockBackend(t)
	m.On("GetParametersMultipleElement", "BUS", []string{"BusNum", "BusName"}, "").
		Return(simulator.Reply("", []any{"1", "2"}, []any{"ALPHA", "BRAVO"}), nil).Once()

	out, err := runCommand(t, "query", "bus", "--fields", "BusNum,BusName", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "BusNum,BusName\n1,ALPHA\n2,BRAVO\n", out)
	m.AssertExpectations(t)
}

func TestQueryCommandRejectsKeyWithExport(t *testing.T) {
	m := useMockBackend(t)

	_, err := runCommand(t, "query", "branch", "--fields", "BusNumFrom,BusNumTo", "--key", "BusNumFrom,BusNumTo", "--pg-table", "studies.branches")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others")
	m.AssertNotCalled(t, "GetParametersMultipleElement", "BRANCH", []string{"BusNumFrom", "BusNumTo"}, "")
}

func TestFaultCommandReportsCurrents(t *testing.T) {
	m := useMockBackend(t)
	m.On("RunScriptCommand", session.FaultCommand(7)).Return(nil, nil).Once()
	m.On("GetParametersSingleElement", "BUS", []string{session.FieldBusNum, session.FieldFaultCurMag}, []any{7, 0}).
		Return(simulator.Reply("", "7", "12.5"), nil).Once()
	m.On("RunScriptCommand", session.FaultCommand(8)).Return(simulator.Reply("Error: bus 8 not found"), nil).Once()

	out, err := runCommand(t, "fault", "7-8")
	require.NoError(t, err)
	assert.Contains(t, out, "12.5000")
	assert.Contains(t, out, "bus 8 not found")
	m.AssertNotCalled(t, "GetParametersSingleElement", "BUS", []string{session.FieldBusNum, session.FieldFaultCurMag}, []any{8, 0})
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "simauto "+Version)
}

// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/simulator"
)

var faultFields = []string{FieldBusNum, FieldFaultCurMag}

func recordOps(ops *[]string) Option {
	return WithInterceptors(func(call simulator.Call, invoke func() (*simulator.Response, error)) (*simulator.Response, error) {
		*ops = append(*ops, call.Op)
		return invoke()
	})
}

func TestThreePhaseFaultCurrent(t *testing.T) {
	var ops []string
	s, m := openSession(t, recordOps(&ops))
	ops = ops[:0]

	m.On("RunScriptCommand", "Fault([BUS 7], 3PB);").Return(nil, nil).Once()
	m.On("GetParametersSingleElement", "BUS", faultFields, []any{7, 0}).
		Return(simulator.Reply("", "7", "12.5"), nil).Once()

	mag, ok, err := s.ThreePhaseFaultCurrent(7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 12.5, mag, 1e-9)
	assert.Equal(t, []string{simulator.OpRunScriptCommand, simulator.OpGetParametersSingleElement}, ops)
}

func TestThreePhaseFaultCurrentScriptFailureSkipsQuery(t *testing.T) {
	s, m := openSession(t)
	m.On("RunScriptCommand", "Fault([BUS 7], 3PB);").
		Return(simulator.Reply("Fault analysis requires sequence data"), nil).Once()

	_, ok, err := s.ThreePhaseFaultCurrent(7)
	assert.False(t, ok)
	assert.ErrorIs(t, err, errors.ErrRequestFailed)
	m.AssertNotCalled(t, "GetParametersSingleElement", mock.Anything, mock.Anything, mock.Anything)
}

func TestThreePhaseFaultCurrentMissingValue(t *testing.T) {
	s, m := openSession(t)
	m.On("RunScriptCommand", "Fault([BUS 3], 3PB);").Return(nil, nil).Once()
	m.On("GetParametersSingleElement", "BUS", faultFields, []any{3, 0}).
		Return(simulator.Reply("", "3", "  "), nil).Once()

	mag, ok, err := s.ThreePhaseFaultCurrent(3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, mag)
}

func TestThreePhaseFaultCurrentUnparsableValue(t *testing.T) {
	s, m := openSession(t)
	m.On("RunScriptCommand", "Fault([BUS 3], 3PB);").Return(nil, nil).Once()
	m.On("GetParametersSingleElement", "BUS", faultFields, []any{3, 0}).
		Return(simulator.Reply("", "3", "n/a"), nil).Once()

	_, _, err := s.ThreePhaseFaultCurrent(3)
	assert.ErrorIs(t, err, errors.ErrMalformedPayload)
}

func TestFaultCommand(t *testing.T) {
	assert.Equal(t, "Fault([BUS 14], 3PB);", FaultCommand(14))
}

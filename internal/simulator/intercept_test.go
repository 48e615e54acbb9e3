// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dotandev/simauto/internal/simulator"
	"github.com/dotandev/simauto/internal/simulator/simulatortest"
)

func TestInterceptOrder(t *testing.T) {
	m := new(simulatortest.Engine)
	m.On("RunScriptCommand", "SolvePowerFlow;").Return(simulator.Reply(""), nil)

	var order []string
	tag := func(name string) simulator.Interceptor {
		return func(call simulator.Call, invoke func() (*simulator.Response, error)) (*simulator.Response, error) {
			order = append(order, name+">"+call.Op)
			resp, err := invoke()
			order = append(order, "<"+name)
			return resp, err
		}
	}

	eng := simulator.Intercept(m, tag("outer"), tag("inner"))
	_, err := eng.RunScriptCommand("SolvePowerFlow;")
	require.NoError(t, err)

	assert.Equal(t, []string{"outer>RunScriptCommand", "inner>RunScriptCommand", "<inner", "<outer"}, order)
	m.AssertExpectations(t)
}

func TestInterceptCallDetail(t *testing.T) {
	m := new(simulatortest.Engine)
	m.On("GetParametersMultipleElement", "BUS", []string{"BusNum", "BusName"}, "").Return(nil, nil)
	m.On("OpenCase", "/cases/b7.pwb").Return(nil, nil)
	m.On("Release").Return(nil)

	var calls []simulator.Call
	eng := simulator.Intercept(m, func(call simulator.Call, invoke func() (*simulator.Response, error)) (*simulator.Response, error) {
		calls = append(calls, call)
		return invoke()
	})

	_, _ = eng.GetParametersMultipleElement("BUS", []string{"BusNum", "BusName"}, "")
	_, _ = eng.OpenCase("/cases/b7.pwb")
	require.NoError(t, eng.Release())

	require.Len(t, calls, 2)
	assert.Equal(t, simulator.Call{Op: simulator.OpGetParametersMultipleElement, Detail: "BUS [BusNum,BusName]"}, calls[0])
	assert.Equal(t, simulator.Call{Op: simulator.OpOpenCase, Detail: "/cases/b7.pwb"}, calls[1])
	m.AssertExpectations(t)
}

func TestTracingRecordsOutcome(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	m := new(simulatortest.Engine)
	m.On("RunScriptCommand", "Fault([BUS 1], 3PB);").Return(simulator.Reply(""), nil)
	m.On("RunScriptCommand", "Bogus;").Return(simulator.Reply("Unknown script command"), nil)
	m.On("OpenCase", "/missing.pwb").Return(nil, errors.New("RPC server unavailable"))

	eng := simulator.Intercept(m, simulator.Tracing(tp))
	_, _ = eng.RunScriptCommand("Fault([BUS 1], 3PB);")
	_, _ = eng.RunScriptCommand("Bogus;")
	_, err := eng.OpenCase("/missing.pwb")
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, "simulator.RunScriptCommand", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "Unknown script command", spans[1].Status().Description)

	assert.Equal(t, "simulator.OpenCase", spans[2].Name())
	assert.Equal(t, codes.Error, spans[2].Status().Code)
	assert.Len(t, spans[2].Events(), 1)
}

func TestLoggingPassesThrough(t *testing.T) {
	m := new(simulatortest.Engine)
	want := simulator.Reply("", []any{"1", "2"})
	m.On("GetFieldList", "BUS").Return(want, nil)

	eng := simulator.Intercept(m, simulator.Logging())
	got, err := eng.GetFieldList("BUS")
	require.NoError(t, err)
	assert.Same(t, want, got)
	m.AssertNotCalled(t, "CloseCase", mock.Anything)
}

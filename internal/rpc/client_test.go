// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/session"
	"github.com/dotandev/simauto/internal/simulator"
	"github.com/dotandev/simauto/internal/simulator/simulatortest"
	"github.com/dotandev/simauto/internal/table"
)

const casePath = "/cases/ieee14.pwb"

func serve(t *testing.T, opts ...ServiceOption) (*Client, *simulatortest.Engine, *Service) {
	t.Helper()
	m := new(simulatortest.Engine)
	m.On("OpenCase", casePath).Return(nil, nil).Once()
	m.On("CloseCase").Return(nil, nil).Maybe()
	m.On("Release").Return(nil).Maybe()

	sess, err := session.New(casePath, session.WithEngine(m))
	require.NoError(t, err)
	svc := NewService(sess, opts...)
	t.Cleanup(func() { _ = svc.Shutdown() })

	handler, err := NewHandler(svc)
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c, m, svc
}

func TestClientGetMultipleElements(t *testing.T) {
	c, m, _ := serve(t)
	fields := []string{"BusNum", "BusName"}
	m.On("GetParametersMultipleElement", "BUS", fields, "").
		Return(simulator.Reply("", []any{"1", "2", "3"}, []any{"ALPHA", "", "CHARLIE"}), nil).Once()

	got, err := c.GetMultipleElements(context.Background(), "BUS", fields, "")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
	assert.Equal(t, fields, got.Columns)

	missing, _ := got.Get(1, "BusName")
	assert.True(t, missing.Missing)
	name, _ := got.Get(2, "BusName")
	assert.Equal(t, "CHARLIE", name.String())
}

func TestClientGetMultipleElementsAsMap(t *testing.T) {
	c, m, _ := serve(t)
	fields := []string{"BusNum", "BusName"}
	m.On("GetParametersMultipleElement", "BUS", fields, "").
		Return(simulator.Reply("", []any{"1", "2"}, []any{"ALPHA", "BRAVO"}), nil).Once()

	got, err := c.GetMultipleElementsAsMap(context.Background(), "BUS", fields, "", table.ByField("BusNum"))
	require.NoError(t, err)
	assert.Equal(t, "BRAVO", got["2"]["BusName"].String())

	_, err = c.GetMultipleElementsAsMap(context.Background(), "BUS", fields, "", table.ByField("AreaNum"))
	assert.ErrorIs(t, err, errors.ErrContractViolation)
}

func TestClientEngineFailureKeepsMessage(t *testing.T) {
	c, m, _ := serve(t)
	fields := []string{"BusNum", "BusPUVolt"}
	m.On("GetParametersSingleElement", "BUS", fields, []any{-1, 0}).
		Return(simulator.Reply("Invalid bus number"), nil).Once()

	_, err := c.GetSingleElement(context.Background(), "BUS", fields, []any{-1, 0})
	assert.ErrorIs(t, err, errors.ErrRequestFailed)
	msg, ok := errors.MessageOf(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid bus number", msg)
}

func TestClientNoDataIsEmptyTable(t *testing.T) {
	c, m, _ := serve(t)
	fields := []string{"BusNum", "BusPUVolt"}
	m.On("GetParametersSingleElement", "BUS", fields, []any{99999, 0}).
		Return(simulator.Reply("No data returned"), nil).Once()

	got, err := c.GetSingleElement(context.Background(), "BUS", fields, []any{99999, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, "No data returned", got.Message)
}

func TestClientFaultCurrent(t *testing.T) {
	c, m, _ := serve(t)
	m.On("RunScriptCommand", "Fault([BUS 7], 3PB);").Return(nil, nil).Once()
	m.On("GetParametersSingleElement", "BUS", []string{"BusNum", "FaultCurMag"}, []any{7, 0}).
		Return(simulator.Reply("", "7", "12.5"), nil).Once()

	mag, ok, err := c.ThreePhaseFaultCurrent(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 12.5, mag, 1e-9)
}

func TestClientSentinelsSurviveTheWire(t *testing.T) {
	c, m, svc := serve(t)
	ctx := context.Background()

	require.NoError(t, c.Close(ctx))
	assert.ErrorIs(t, c.RunScript(ctx, "SolvePowerFlow;"), errors.ErrNoCaseOpen)

	m.On("OpenCase", casePath).Return(nil, nil).Once()
	require.NoError(t, c.Open(ctx, ""))
	m.On("SaveCase", casePath, session.CaseFormat, true).Return(simulator.Reply("Access denied"), nil).Once()
	err := c.Save(ctx)
	assert.ErrorIs(t, err, errors.ErrCaseNotSaved)
	msg, _ := errors.MessageOf(err)
	assert.Equal(t, "Access denied", msg)

	require.NoError(t, svc.Shutdown())
	assert.ErrorIs(t, c.RunScript(ctx, "SolvePowerFlow;"), errors.ErrSessionReleased)

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Released)
}

func TestClientOpenSwitchesCase(t *testing.T) {
	c, m, _ := serve(t)
	m.On("OpenCase", "/cases/b7flat.pwb").Return(nil, nil).Once()

	require.NoError(t, c.Open(context.Background(), "/cases/b7flat"))
	status, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/cases/b7flat.pwb", status.CasePath)
	assert.True(t, status.CaseOpen)
}

func TestClientRetriesBusyServer(t *testing.T) {
	c, m, svc := serve(t)
	handler, err := NewHandler(svc)
	require.NoError(t, err)

	busy := 1
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if busy > 0 {
			busy--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		handler.ServeHTTP(w, r)
	}))
	defer srv.Close()

	cfg := DefaultRetryConfig()
	cfg.InitialBackoff = 10 * time.Millisecond
	c, err = NewClient(srv.URL, WithRetryConfig(cfg), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	m.On("RunScriptCommand", "SolvePowerFlow;").Return(nil, nil).Once()
	require.NoError(t, c.RunScript(context.Background(), "SolvePowerFlow;"))
	assert.Equal(t, 0, busy)
}

func TestClientUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := DefaultRetryConfig()
	cfg.MaxRetries = 0
	c, err := NewClient(url, WithRetryConfig(cfg))
	require.NoError(t, err)

	assert.ErrorIs(t, c.RunScript(context.Background(), "SolvePowerFlow;"), errors.ErrRemoteCallFailed)
}

func TestNewClientAddsPath(t *testing.T) {
	c, err := NewClient("http://sim-host:7420/")
	require.NoError(t, err)
	assert.Equal(t, "http://sim-host:7420/rpc", c.URL())

	_, err = NewClient("sim-host:7420")
	assert.Error(t, err)
}

func TestFaultRoundTrip(t *testing.T) {
	assert.Nil(t, newFault(nil))
	assert.NoError(t, (*Fault)(nil).Err())

	err := newFault(errors.WrapContractViolation("%d fields but %d values", 2, 1)).Err()
	assert.ErrorIs(t, err, errors.ErrContractViolation)
	assert.Equal(t, "contract violation: 2 fields but 1 values", err.Error())

	err = newFault(&errors.EngineError{Op: "RunScriptCommand", Message: "Unknown command", Context: "Solv;"}).Err()
	assert.ErrorIs(t, err, errors.ErrRequestFailed)
	msg, _ := errors.MessageOf(err)
	assert.Equal(t, "Unknown command", msg)
}

func TestServiceConfinesPathsToCaseRoot(t *testing.T) {
	c, m, _ := serve(t, WithCaseRoot("/cases"))
	ctx := context.Background()

	for _, path := range []string{"/etc/evil.pwb", "/cases/../etc/evil.pwb", "/casesX/evil.pwb"} {
		err := c.Open(ctx, path)
		assert.ErrorIs(t, err, errors.ErrContractViolation, path)
		err = c.SaveAs(ctx, path)
		assert.ErrorIs(t, err, errors.ErrContractViolation, path)
	}
	err := c.SaveAsAuxiliary(ctx, session.AuxExport{Path: "/tmp/gens.aux", ObjectType: "GEN"})
	assert.ErrorIs(t, err, errors.ErrContractViolation)
	m.AssertNotCalled(t, "SaveCase", mock.Anything, mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "WriteAuxFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	m.On("SaveCase", "/cases/out/ieee14_v2.pwb", session.CaseFormat, true).Return(nil, nil).Once()
	require.NoError(t, c.SaveAs(ctx, "/cases/out/ieee14_v2.pwb"))
	m.AssertExpectations(t)
}

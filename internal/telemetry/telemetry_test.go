// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	tp, shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	require.NotNil(t, tp)

	_, span := tp.Tracer("test").Start(context.Background(), "simulator.OpenCase")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

func TestInitWithEndpoint(t *testing.T) {
	tp, shutdown, err := Init(context.Background(), Config{Endpoint: "http://127.0.0.1:4318", ServiceName: "simauto-test"})
	require.NoError(t, err)
	_, ok := tp.(*sdktrace.TracerProvider)
	assert.True(t, ok)

	_, span := tp.Tracer("test").Start(context.Background(), "simulator.RunScriptCommand")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dotandev/simauto/internal/simulator"

// Tracing returns an Interceptor that records one span per engine call.
func Tracing(tp trace.TracerProvider) Interceptor {
	tracer := tp.Tracer(tracerName)
	return func(call Call, invoke func() (*Response, error)) (*Response, error) {
		_, span := tracer.Start(context.Background(), "simulator."+call.Op,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("simauto.op", call.Op),
				attribute.String("simauto.detail", call.Detail),
			))
		defer span.End()

		resp, err := invoke()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return resp, err
		}

		out := Normalize(resp)
		span.SetAttributes(attribute.String("simauto.outcome", out.State.String()))
		if out.Message != "" {
			span.SetAttributes(attribute.String("simauto.message", out.Message))
		}
		if out.State == StateFailure {
			span.SetStatus(codes.Error, out.Message)
		}
		return resp, nil
	}
}

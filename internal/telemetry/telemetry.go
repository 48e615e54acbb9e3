// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package telemetry sets up OpenTelemetry tracing for simulator calls.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dotandev/simauto/internal/logger"
)

type Config struct {
	// Endpoint is the OTLP/HTTP collector URL, e.g. http://localhost:4318.
	// Empty disables export.
	Endpoint    string
	ServiceName string
}

// Init installs a global TracerProvider and returns it with a shutdown
// function that flushes pending spans. With no endpoint it installs a
// no-op provider.
func Init(ctx context.Context, cfg Config) (trace.TracerProvider, func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return nil, nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "simauto"
	}
	res := resource.NewSchemaless(attribute.String("service.name", name))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	logger.Logger.Debug("Tracing enabled", "endpoint", cfg.Endpoint, "service", name)

	return tp, tp.Shutdown, nil
}

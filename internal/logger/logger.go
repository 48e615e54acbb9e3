// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel selects the initial level (DEBUG, INFO, WARN, ERROR).
const EnvLogLevel = "SIMAUTO_LOG_LEVEL"

var (
	level  = new(slog.LevelVar)
	Logger *slog.Logger
)

func init() {
	level.Set(parseLevelFromEnv())
	SetOutput(os.Stderr, false)
}

func parseLevelFromEnv() slog.Level {
	return ParseLevel(os.Getenv(EnvLogLevel))
}

// ParseLevel maps a level name to a slog level, defaulting to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the minimum level of the shared logger.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetOutput redirects the shared logger, as text or JSON.
func SetOutput(w io.Writer, json bool) {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	Logger = slog.New(h)
}

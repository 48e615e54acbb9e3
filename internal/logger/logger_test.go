// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevelFromEnv(t *testing.T) {
	tests := []struct {
		env      string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(EnvLogLevel, tt.env)
			if lvl := parseLevelFromEnv(); lvl != tt.expected {
				t.Errorf("parseLevelFromEnv(%q) = %v, want %v", tt.env, lvl, tt.expected)
			}
		})
	}
}

func TestLoggerInitialization(t *testing.T) {
	if Logger == nil {
		t.Fatal("Logger should be initialized after package init")
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf, false)
	SetLevel(slog.LevelWarn)
	defer SetLevel(slog.LevelInfo)

	Logger.Info("case opened", "path", "/cases/ieee14.pwb")
	Logger.Warn("duplicate key", "key", "1")

	out := buf.String()
	if strings.Contains(out, "case opened") {
		t.Error("info message should be filtered at WARN level")
	}
	if !strings.Contains(out, "duplicate key") {
		t.Error("warn message should appear at WARN level")
	}
}

func TestJSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf, true)
	SetLevel(slog.LevelDebug)
	defer SetLevel(slog.LevelInfo)

	Logger.Error("engine request failed", "op", "RunScriptCommand", "command", "SolvePowerFlow;")

	out := buf.String()
	for _, want := range []string{`"msg":"engine request failed"`, `"op":"RunScriptCommand"`, `"command":"SolvePowerFlow;"`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON output missing %s: %s", want, out)
		}
	}
}

func TestSetOutputWithNilWriter(t *testing.T) {
	defer SetOutput(&bytes.Buffer{}, false)

	SetOutput(nil, false)
	if Logger == nil {
		t.Fatal("Logger should fall back to stderr")
	}
}

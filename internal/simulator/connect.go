// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"os"

	"github.com/dotandev/simauto/internal/logger"
)

const (
	// EnvProgID overrides the COM class the engine is dispatched from.
	EnvProgID = "SIMAUTO_PROGID"
	// DefaultProgID is the class registered by the SimAuto add-on.
	DefaultProgID = "pwrworld.SimulatorAuto"
)

// ResolveProgID picks the COM class to dispatch.
func ResolveProgID(configured string) string {
	// 1. Check environment variable
	if env := os.Getenv(EnvProgID); env != "" {
		return env
	}

	// 2. Configuration file
	if configured != "" {
		return configured
	}

	// 3. Registered default
	return DefaultProgID
}

// Connect dispatches the automation object and returns a live Engine.
// Failures wrap errors.ErrEngineUnavailable.
func Connect(progID string) (Engine, error) {
	progID = ResolveProgID(progID)
	logger.Logger.Debug("Connecting to simulator", "prog_id", progID)

	eng, err := connectPlatform(progID)
	if err != nil {
		logger.Logger.Error("Unable to launch simulator automation server. Confirm the license includes SimAuto and that it is registered",
			"prog_id", progID, "error", err)
		return nil, err
	}

	logger.Logger.Info("Simulator automation server connected", "prog_id", progID)
	return eng, nil
}

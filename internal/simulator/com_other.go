// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package simulator

import (
	"fmt"
	"runtime"

	"github.com/dotandev/simauto/internal/errors"
)

func connectPlatform(progID string) (Engine, error) {
	return nil, errors.WrapEngineUnavailable(fmt.Errorf("COM class %s requires windows, running on %s", progID, runtime.GOOS))
}

// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"time"

	"github.com/dotandev/simauto/internal/logger"
)

// Logging returns an Interceptor that logs every call at debug level.
// Slow calls (saves on large cases take seconds) show up in the duration.
func Logging() Interceptor {
	return func(call Call, invoke func() (*Response, error)) (*Response, error) {
		logger.Logger.Debug("Simulator call started", "op", call.Op, "detail", call.Detail)
		start := time.Now()
		resp, err := invoke()
		if err != nil {
			logger.Logger.Debug("Simulator call did not complete", "op", call.Op, "error", err, "duration", time.Since(start))
			return resp, err
		}
		out := Normalize(resp)
		logger.Logger.Debug("Simulator call completed", "op", call.Op, "outcome", out.State.String(), "duration", time.Since(start))
		return resp, nil
	}
}

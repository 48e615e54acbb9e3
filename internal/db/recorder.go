// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"time"

	"github.com/dotandev/simauto/internal/logger"
	"github.com/dotandev/simauto/internal/simulator"
)

// StateError marks calls that failed in transport rather than in the engine.
const StateError = "error"

// Recorder returns an interceptor that writes every call to the store. A
// failed write is logged and never fails the call.
func Recorder(store *Store, sessionID string) simulator.Interceptor {
	return func(call simulator.Call, invoke func() (*simulator.Response, error)) (*simulator.Response, error) {
		start := time.Now()
		resp, err := invoke()

		rec := &Call{
			SessionID: sessionID,
			Op:        call.Op,
			Detail:    call.Detail,
			Duration:  time.Since(start),
			Timestamp: start,
		}
		if err != nil {
			rec.State = StateError
			rec.Message = err.Error()
		} else {
			out := simulator.Normalize(resp)
			rec.State = out.State.String()
			rec.Message = out.Message
		}
		if werr := store.Record(context.Background(), rec); werr != nil {
			logger.Logger.Warn("Failed to record simulator call", "op", call.Op, "error", werr)
		}
		return resp, err
	}
}

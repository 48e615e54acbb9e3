// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"strings"

	"github.com/dotandev/simauto/internal/errors"
)

// NoDataMarker marks an engine message that reports an empty result rather
// than a failure.
const NoDataMarker = "No data"

// Response is the raw [error message, payload] pair returned by the engine.
// A nil *Response means the engine returned nothing at all.
type Response struct {
	Message string
	Payload []any
}

// Reply builds a Response; mostly useful for fakes.
func Reply(message string, payload ...any) *Response {
	return &Response{Message: message, Payload: payload}
}

// State classifies a normalized response.
type State int

const (
	StateEmpty State = iota
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the normalized form of a Response. Exactly one State applies.
type Outcome struct {
	State   State
	Message string
	Payload []any
}

// OK reports whether the outcome is not a failure.
func (o Outcome) OK() bool { return o.State != StateFailure }

// Err returns an *errors.EngineError for failures and nil otherwise.
func (o Outcome) Err(op, context string) error {
	if o.State != StateFailure {
		return nil
	}
	return &errors.EngineError{Op: op, Message: o.Message, Context: context}
}

// Normalize classifies a raw engine response.
//
// An absent response or an empty message without payload is empty; a
// payload holding a single nil counts as absent. An empty message with
// payload is success; a message containing NoDataMarker is empty
// with the message kept for diagnostics; anything else is a failure, with the
// payload retained.
func Normalize(resp *Response) Outcome {
	if resp == nil {
		return Outcome{State: StateEmpty}
	}
	switch {
	case resp.Message == "":
		if payloadAbsent(resp.Payload) {
			return Outcome{State: StateEmpty}
		}
		return Outcome{State: StateSuccess, Payload: resp.Payload}
	case strings.Contains(resp.Message, NoDataMarker):
		return Outcome{State: StateEmpty, Message: resp.Message}
	default:
		return Outcome{State: StateFailure, Message: resp.Message, Payload: resp.Payload}
	}
}

// payloadAbsent reports whether p carries no data: nothing at all, or the
// lone nil an engine returns in the payload slot when nothing matched.
func payloadAbsent(p []any) bool {
	return len(p) == 0 || (len(p) == 1 && p[0] == nil)
}

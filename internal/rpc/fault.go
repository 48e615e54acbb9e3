// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/dotandev/simauto/internal/errors"
)

// Fault carries a Session error across the wire so the client can rebuild
// an error that matches the same sentinels.
type Fault struct {
	Kind    string       `json:"kind"`
	Message string       `json:"message"`
	Engine  *EngineFault `json:"engine,omitempty"`
}

// EngineFault is the wire form of errors.EngineError.
type EngineFault struct {
	Op      string `json:"op"`
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

// Checked in order: ErrCaseNotSaved wraps ErrRequestFailed, so it comes first.
var faultKinds = []struct {
	kind     string
	sentinel error
}{
	{"case_not_saved", errors.ErrCaseNotSaved},
	{"session_released", errors.ErrSessionReleased},
	{"no_case_open", errors.ErrNoCaseOpen},
	{"contract_violation", errors.ErrContractViolation},
	{"malformed_payload", errors.ErrMalformedPayload},
	{"engine_unavailable", errors.ErrEngineUnavailable},
	{"request_failed", errors.ErrRequestFailed},
}

// Result is embedded in every reply.
type Result struct {
	Fault *Fault `json:"fault,omitempty"`
}

func (r *Result) fault() *Fault { return r.Fault }

// setErr records err on the reply; nil clears it.
func (r *Result) setErr(err error) {
	r.Fault = newFault(err)
}

func newFault(err error) *Fault {
	if err == nil {
		return nil
	}
	f := &Fault{Kind: "internal", Message: err.Error()}
	for _, k := range faultKinds {
		if errors.Is(err, k.sentinel) {
			f.Kind = k.kind
			f.Message = strings.TrimPrefix(f.Message, k.sentinel.Error()+": ")
			break
		}
	}
	var ee *errors.EngineError
	if errors.As(err, &ee) {
		f.Engine = &EngineFault{Op: ee.Op, Message: ee.Message, Context: ee.Context}
	}
	return f
}

// Err rebuilds the error. Engine messages survive verbatim, so
// errors.MessageOf works on the client as it does locally.
func (f *Fault) Err() error {
	if f == nil {
		return nil
	}
	var engine error
	if f.Engine != nil {
		engine = &errors.EngineError{Op: f.Engine.Op, Message: f.Engine.Message, Context: f.Engine.Context}
	}
	for _, k := range faultKinds {
		if k.kind != f.Kind {
			continue
		}
		switch {
		case engine != nil && k.sentinel == errors.ErrRequestFailed:
			return engine
		case engine != nil:
			return fmt.Errorf("%w: %w", k.sentinel, engine)
		default:
			return fmt.Errorf("%w: %s", k.sentinel, f.Message)
		}
	}
	if engine != nil {
		return engine
	}
	return errors.WrapRemoteCallFailed("server", stderrors.New(f.Message))
}

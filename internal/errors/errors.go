// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is
var (
	ErrEngineUnavailable = errors.New("simulation engine unavailable")
	ErrRequestFailed     = errors.New("engine request failed")
	ErrContractViolation = errors.New("contract violation")
	ErrSessionReleased   = errors.New("session released")
	ErrNoCaseOpen        = errors.New("no case open")
	ErrCaseNotSaved      = errors.New("case not saved")
	ErrMalformedPayload  = errors.New("malformed engine payload")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrRemoteCallFailed  = errors.New("remote call failed")
)

// EngineError is a request failure reported by the engine itself.
// Message is the engine's error text, verbatim.
type EngineError struct {
	Op      string
	Message string
	Context string
}

func (e *EngineError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s (%s)", ErrRequestFailed, e.Op, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s: %s", ErrRequestFailed, e.Op, e.Message)
}

func (e *EngineError) Unwrap() error { return ErrRequestFailed }

// MessageOf returns the engine's verbatim message if err carries one.
func MessageOf(err error) (string, bool) {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Message, true
	}
	return "", false
}

// Is and As re-export the standard helpers so callers need a single import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

// Wrap functions for consistent error wrapping
func WrapEngineUnavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
}

func WrapContractViolation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
}

func WrapNoCaseOpen(op string) error {
	return fmt.Errorf("%w: %s requires an open case", ErrNoCaseOpen, op)
}

func WrapSessionReleased(op string) error {
	return fmt.Errorf("%w: %s called after Release", ErrSessionReleased, op)
}

func WrapCaseNotSaved(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCaseNotSaved, path, err)
}

func WrapMalformedPayload(msg string) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, msg)
}

func WrapInvalidConfig(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

func WrapRemoteCallFailed(method string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrRemoteCallFailed, method, err)
}

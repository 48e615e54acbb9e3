// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineErrorUnwrapsToRequestFailed(t *testing.T) {
	err := fmt.Errorf("query: %w", &EngineError{Op: "GetParametersSingleElement", Message: "Invalid bus number"})

	assert.True(t, errors.Is(err, ErrRequestFailed))
	msg, ok := MessageOf(err)
	assert.True(t, ok)
	assert.Equal(t, "Invalid bus number", msg)
}

func TestEngineErrorIncludesContext(t *testing.T) {
	err := &EngineError{Op: "RunScriptCommand", Message: "unknown command", Context: "Solv;"}
	assert.Contains(t, err.Error(), "Solv;")
	assert.Contains(t, err.Error(), "unknown command")
}

func TestMessageOfPlainError(t *testing.T) {
	_, ok := MessageOf(ErrNoCaseOpen)
	assert.False(t, ok)
}

func TestCaseNotSavedKeepsBothCauses(t *testing.T) {
	cause := &EngineError{Op: "SaveCase", Message: "access denied"}
	err := WrapCaseNotSaved("/cases/a.pwb", cause)

	assert.True(t, errors.Is(err, ErrCaseNotSaved))
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestWrapHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"engine", WrapEngineUnavailable(errors.New("class not registered")), ErrEngineUnavailable},
		{"contract", WrapContractViolation("%d fields, %d values", 2, 1), ErrContractViolation},
		{"no case", WrapNoCaseOpen("RunScript"), ErrNoCaseOpen},
		{"released", WrapSessionReleased("Save"), ErrSessionReleased},
		{"payload", WrapMalformedPayload("ragged columns"), ErrMalformedPayload},
		{"config", WrapInvalidConfig("bad version"), ErrInvalidConfig},
		{"remote", WrapRemoteCallFailed("Session.Open", errors.New("eof")), ErrRemoteCallFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

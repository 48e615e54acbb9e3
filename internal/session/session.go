// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package session owns one connection to the simulator and the case it
// works on. A Session is meant to be driven by one caller at a time; it does
// no locking and imposes no timeouts.
package session

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/uuid"

	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/logger"
	"github.com/dotandev/simauto/internal/simulator"
)

// Dialer acquires an engine handle.
type Dialer func() (simulator.Engine, error)

// Session is one open simulation case.
type Session struct {
	id           string
	dial         Dialer
	interceptors []simulator.Interceptor
	eng          simulator.Engine
	paths        Paths
	caseOpen     bool
	released     bool
	log          *slog.Logger
}

type Option func(*Session)

// WithEngine uses an already acquired engine instead of dialing.
func WithEngine(eng simulator.Engine) Option {
	return func(s *Session) {
		s.dial = func() (simulator.Engine, error) { return eng, nil }
	}
}

// WithDialer replaces the default COM dialer.
func WithDialer(d Dialer) Option {
	return func(s *Session) { s.dial = d }
}

// WithInterceptors wraps the engine once it is acquired.
func WithInterceptors(in ...simulator.Interceptor) Option {
	return func(s *Session) { s.interceptors = append(s.interceptors, in...) }
}

// WithID sets the session id used in logs and call history.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New resolves the case paths, acquires an engine and opens the case.
//
// When the engine cannot be reached or the case cannot be opened, New still
// returns the Session together with the error; it stays inert until a later
// Open succeeds. Only an unusable path yields a nil Session.
func New(path string, opts ...Option) (*Session, error) {
	paths, err := ResolvePaths(path)
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:    uuid.NewString(),
		dial:  func() (simulator.Engine, error) { return simulator.Connect("") },
		paths: paths,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.Logger.With("session", s.id)
	runtime.SetFinalizer(s, (*Session).finalize)

	if err := s.connect(); err != nil {
		return s, err
	}
	if err := s.Open(); err != nil {
		return s, err
	}
	return s, nil
}

func (s *Session) connect() error {
	eng, err := s.dial()
	if err != nil {
		s.log.Error("Unable to acquire simulator", "error", err)
		if !errors.Is(err, errors.ErrEngineUnavailable) {
			err = errors.WrapEngineUnavailable(err)
		}
		return err
	}
	if len(s.interceptors) > 0 {
		eng = simulator.Intercept(eng, s.interceptors...)
	}
	s.eng = eng
	return nil
}

func (s *Session) ID() string { return s.id }

// Paths returns the case path and the paths derived from it.
func (s *Session) Paths() Paths { return s.paths }

func (s *Session) CasePath() string { return s.paths.Case }

// CaseOpen reports whether the last Open succeeded and no Close or path
// switch happened since.
func (s *Session) CaseOpen() bool { return s.caseOpen }

func (s *Session) Released() bool { return s.released }

func (s *Session) usable(op string) error {
	if s.released {
		return errors.WrapSessionReleased(op)
	}
	if s.eng == nil {
		return errors.WrapEngineUnavailable(fmt.Errorf("%s: no engine acquired, call Open", op))
	}
	return nil
}

func (s *Session) requireCase(op string) error {
	if err := s.usable(op); err != nil {
		return err
	}
	if !s.caseOpen {
		return errors.WrapNoCaseOpen(op)
	}
	return nil
}

// do runs one engine call and normalizes the answer. Engine failures come
// back as *errors.EngineError carrying detail as context.
func (s *Session) do(op, detail string, invoke func(simulator.Engine) (*simulator.Response, error)) (simulator.Outcome, error) {
	resp, err := invoke(s.eng)
	if err != nil {
		s.log.Error("Simulator call failed", "op", op, "detail", detail, "error", err)
		return simulator.Outcome{}, err
	}
	out := simulator.Normalize(resp)
	if out.State == simulator.StateFailure {
		return out, out.Err(op, detail)
	}
	if out.Message != "" {
		s.log.Info("Simulator returned no data", "op", op, "message", out.Message)
	}
	return out, nil
}

// SetCasePath switches the target case without contacting the engine. The
// Session no longer assumes a case is open; call Open to load it.
func (s *Session) SetCasePath(path string) error {
	if s.released {
		return errors.WrapSessionReleased("SetCasePath")
	}
	paths, err := ResolvePaths(path)
	if err != nil {
		return err
	}
	s.paths = paths
	s.caseOpen = false
	s.log.Debug("Case path switched", "path", paths.Case)
	return nil
}

// Open (re)opens the current case path, acquiring an engine first if the
// Session has none.
func (s *Session) Open() error {
	if s.released {
		return errors.WrapSessionReleased("Open")
	}
	if s.eng == nil {
		if err := s.connect(); err != nil {
			return err
		}
	}
	s.caseOpen = false
	if _, err := s.do(simulator.OpOpenCase, s.paths.Case, func(e simulator.Engine) (*simulator.Response, error) {
		return e.OpenCase(s.paths.Case)
	}); err != nil {
		s.log.Error("Error opening case. Check the file name and path and call Open again",
			"path", s.paths.Case, "error", err)
		return err
	}
	s.caseOpen = true
	s.log.Info("Case opened", "path", s.paths.Case)
	return nil
}

// Close closes the case without saving. It is always forwarded; an engine
// error (for example, nothing open) is logged and returned.
func (s *Session) Close() error {
	if err := s.usable("Close"); err != nil {
		return err
	}
	s.caseOpen = false
	if _, err := s.do(simulator.OpCloseCase, s.paths.Case, func(e simulator.Engine) (*simulator.Response, error) {
		return e.CloseCase()
	}); err != nil {
		s.log.Error("Error closing case", "path", s.paths.Case, "error", err)
		return err
	}
	s.log.Info("Case closed", "path", s.paths.Case)
	return nil
}

// Release closes an open case and gives up the engine handle. Every later
// call fails with errors.ErrSessionReleased. Release is idempotent.
func (s *Session) Release() error {
	if s.released {
		return nil
	}
	runtime.SetFinalizer(s, nil)
	if s.eng == nil {
		s.released = true
		return nil
	}
	if s.caseOpen {
		_ = s.Close()
	}
	err := s.eng.Release()
	s.eng = nil
	s.released = true
	if err != nil {
		s.log.Error("Error releasing simulator", "error", err)
		return err
	}
	s.log.Debug("Session released")
	return nil
}

func (s *Session) finalize() {
	if s.released {
		return
	}
	// Finalizers run on their own goroutine; a panic there kills the process.
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Release from finalizer panicked", "panic", r)
		}
	}()
	s.log.Warn("Session garbage collected without Release; releasing now", "path", s.paths.Case)
	_ = s.Release()
}

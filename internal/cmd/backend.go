// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dotandev/simauto/internal/auxfile"
	"github.com/dotandev/simauto/internal/db"
	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/logger"
	"github.com/dotandev/simauto/internal/rpc"
	"github.com/dotandev/simauto/internal/session"
	"github.com/dotandev/simauto/internal/simulator"
	"github.com/dotandev/simauto/internal/table"
)

// Backend is what commands drive: a local Session or a remote one.
type Backend interface {
	Open(ctx context.Context, path string) error
	Save(ctx context.Context) error
	SaveAs(ctx context.Context, path string) error
	SaveAsAuxiliary(ctx context.Context, x session.AuxExport) error
	Close(ctx context.Context) error
	RunScript(ctx context.Context, command string) error
	LoadAuxiliaryText(ctx context.Context, text string) error
	GetSingleElement(ctx context.Context, objectType string, fields []string, values []any) (*table.Table, error)
	GetMultipleElements(ctx context.Context, objectType string, fields []string, filterName string) (*table.Table, error)
	GetMultipleElementsAsMap(ctx context.Context, objectType string, fields []string, filterName string, key table.KeySpec) (map[string]table.Record, error)
	GetFieldList(ctx context.Context, objectType string) (*table.Table, error)
	ThreePhaseFaultCurrent(ctx context.Context, bus int) (float64, bool, error)
	CreateFilter(ctx context.Context, f auxfile.Filter) error
	CalculateTLR(ctx context.Context, r session.TLRRequest) error
	SendToExcel(ctx context.Context, objectType, filterName string, fields []string) error
}

var _ Backend = (*rpc.Client)(nil)
var _ Backend = (*localBackend)(nil)

// localBackend adapts a Session; the context is unused because Session
// calls do not block on anything cancellable.
type localBackend struct {
	sess *session.Session
}

func (b *localBackend) Open(_ context.Context, path string) error {
	if path != "" && path != b.sess.CasePath() {
		if err := b.sess.SetCasePath(path); err != nil {
			return err
		}
	}
	return b.sess.Open()
}

func (b *localBackend) Save(context.Context) error { return b.sess.Save() }

func (b *localBackend) SaveAs(_ context.Context, path string) error { return b.sess.SaveAs(path) }

func (b *localBackend) SaveAsAuxiliary(_ context.Context, x session.AuxExport) error {
	return b.sess.SaveAsAuxiliary(x)
}

func (b *localBackend) Close(context.Context) error { return b.sess.Close() }

func (b *localBackend) RunScript(_ context.Context, command string) error {
	return b.sess.RunScript(command)
}

func (b *localBackend) LoadAuxiliaryText(_ context.Context, text string) error {
	return b.sess.LoadAuxiliaryText(text)
}

func (b *localBackend) GetSingleElement(_ context.Context, objectType string, fields []string, values []any) (*table.Table, error) {
	return b.sess.GetSingleElement(objectType, fields, values)
}

func (b *localBackend) GetMultipleElements(_ context.Context, objectType string, fields []string, filterName string) (*table.Table, error) {
	return b.sess.GetMultipleElements(objectType, fields, filterName)
}

func (b *localBackend) GetMultipleElementsAsMap(_ context.Context, objectType string, fields []string, filterName string, key table.KeySpec) (map[string]table.Record, error) {
	return b.sess.GetMultipleElementsAsMap(objectType, fields, filterName, key)
}

func (b *localBackend) GetFieldList(_ context.Context, objectType string) (*table.Table, error) {
	return b.sess.GetFieldList(objectType)
}

func (b *localBackend) ThreePhaseFaultCurrent(_ context.Context, bus int) (float64, bool, error) {
	return b.sess.ThreePhaseFaultCurrent(bus)
}

func (b *localBackend) CreateFilter(_ context.Context, f auxfile.Filter) error {
	return b.sess.CreateFilter(f)
}

func (b *localBackend) CalculateTLR(_ context.Context, r session.TLRRequest) error {
	return b.sess.CalculateTLR(r)
}

func (b *localBackend) SendToExcel(_ context.Context, objectType, filterName string, fields []string) error {
	return b.sess.SendToExcel(objectType, filterName, fields)
}

// dialEngine is replaced in tests.
var dialEngine session.Dialer = func() (simulator.Engine, error) {
	return simulator.Connect(appConfig.ProgID)
}

// newLocalSession opens caseFlag with the configured interceptors. The
// returned release func closes the case, the engine and the history store.
func newLocalSession() (*session.Session, func(), error) {
	if caseFlag == "" {
		return nil, nil, fmt.Errorf("Error: --case is required (or use --remote)")
	}
	id := uuid.NewString()
	interceptors := []simulator.Interceptor{simulator.Logging()}
	if tracerProvider != nil {
		interceptors = append(interceptors, simulator.Tracing(tracerProvider))
	}

	var store *db.Store
	if appConfig.History.Enabled {
		s, err := db.InitDB(appConfig.History.Path)
		if err != nil {
			logger.Logger.Warn("Call history disabled", "error", err)
		} else {
			store = s
			interceptors = append(interceptors, db.Recorder(store, id))
		}
	}

	sess, err := session.New(caseFlag,
		session.WithID(id),
		session.WithDialer(dialEngine),
		session.WithInterceptors(interceptors...),
	)
	release := func() {
		if sess != nil {
			_ = sess.Release()
		}
		if store != nil {
			_ = store.Close()
		}
	}
	if err != nil {
		release()
		if errors.Is(err, errors.ErrEngineUnavailable) {
			return nil, nil, fmt.Errorf("Error: %w (the simulator runs on Windows only; use --remote elsewhere)", err)
		}
		return nil, nil, fmt.Errorf("Error: failed to open case: %w", err)
	}
	return sess, release, nil
}

// openBackend connects to --remote when set, otherwise opens --case
// locally.
var openBackend = func(ctx context.Context) (Backend, func(), error) {
	if remoteFlag != "" {
		client, err := rpc.NewClient(remoteFlag)
		if err != nil {
			return nil, nil, fmt.Errorf("Error: %w", err)
		}
		if caseFlag != "" {
			if err := ensureRemoteCase(ctx, client, caseFlag); err != nil {
				return nil, nil, err
			}
		}
		return client, func() {}, nil
	}
	sess, release, err := newLocalSession()
	if err != nil {
		return nil, nil, err
	}
	return &localBackend{sess: sess}, release, nil
}

func ensureRemoteCase(ctx context.Context, client *rpc.Client, path string) error {
	want, err := session.ResolvePaths(path)
	if err != nil {
		return err
	}
	status, err := client.Status(ctx)
	if err != nil {
		return fmt.Errorf("Error: remote session unreachable: %w", err)
	}
	if status.CaseOpen && status.CasePath == want.Case {
		return nil
	}
	if err := client.Open(ctx, want.Case); err != nil {
		return fmt.Errorf("Error: failed to open case on %s: %w", client.URL(), err)
	}
	return nil
}

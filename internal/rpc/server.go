// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	gorillarpc "github.com/gorilla/rpc"
	"github.com/gorilla/rpc/json"

	"github.com/dotandev/simauto/internal/logger"
)

// DefaultPath is where the JSON-RPC endpoint is mounted.
const DefaultPath = "/rpc"

// NewHandler returns an http.Handler serving svc with the JSON codec.
func NewHandler(svc *Service) (http.Handler, error) {
	srv := gorillarpc.NewServer()
	srv.RegisterCodec(json.NewCodec(), "application/json")
	if err := srv.RegisterService(svc, ServiceName); err != nil {
		return nil, fmt.Errorf("register %s service: %w", ServiceName, err)
	}
	mux := http.NewServeMux()
	mux.Handle(DefaultPath, srv)
	return mux, nil
}

// Serve runs the endpoint on addr until ctx is cancelled, then shuts down
// and releases the served Session.
func Serve(ctx context.Context, addr string, svc *Service) error {
	if err := ValidateListenAddr(addr); err != nil {
		return err
	}
	handler, err := NewHandler(svc)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	httpSrv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()
	logger.Logger.Info("Serving session", "addr", ln.Addr().String(), "path", DefaultPath)

	select {
	case err := <-errCh:
		_ = svc.Shutdown()
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server shutdown failed", "error", err)
	}
	return svc.Shutdown()
}

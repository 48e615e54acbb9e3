// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dotandev/simauto/internal/logger"
)

// RetryConfig controls how remote calls back off when the server is busy.
// A served Session handles one request at a time, so 429 and 503 are normal
// under contention.
type RetryConfig struct {
	MaxRetries         int
	InitialBackoff     time.Duration
	MaxBackoff         time.Duration
	StatusCodesToRetry []int
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:         3,
		InitialBackoff:     1 * time.Second,
		MaxBackoff:         10 * time.Second,
		StatusCodesToRetry: []int{http.StatusTooManyRequests, http.StatusServiceUnavailable},
	}
}

// Retrier replays a request until it gets a non-retryable status or runs
// out of attempts.
type Retrier struct {
	config RetryConfig
	client *http.Client
}

func NewRetrier(config RetryConfig, client *http.Client) *Retrier {
	if client == nil {
		client = http.DefaultClient
	}
	return &Retrier{config: config, client: client}
}

// Do sends req, retrying on the configured status codes. The body is
// buffered so every attempt sends it in full. When retries are exhausted the
// last response is closed and only an error is returned.
func (r *Retrier) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return doWithRetry(ctx, r.config, req, r.client.Do)
}

func doWithRetry(ctx context.Context, cfg RetryConfig, req *http.Request, send func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("buffer request body: %w", err)
		}
		body = b
	}

	backoff := cfg.InitialBackoff
	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if body != nil {
			attemptReq.Body = io.NopCloser(bytes.NewReader(body))
			attemptReq.ContentLength = int64(len(body))
		}

		resp, err := send(attemptReq)
		if err != nil {
			return nil, err
		}
		if !shouldRetry(cfg, resp.StatusCode) {
			return resp, nil
		}

		wait := retryAfter(resp)
		if wait <= 0 {
			wait = backoff
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		if attempt >= cfg.MaxRetries {
			return nil, fmt.Errorf("giving up after %d attempts: last status %d", attempt+1, resp.StatusCode)
		}
		logger.Logger.Debug("Remote server busy, retrying",
			"url", req.URL.String(), "status", resp.StatusCode, "attempt", attempt+1, "wait", wait)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		backoff = nextBackoff(cfg, backoff)
	}
}

func shouldRetry(cfg RetryConfig, status int) bool {
	for _, code := range cfg.StatusCodesToRetry {
		if code == status {
			return true
		}
	}
	return false
}

func nextBackoff(cfg RetryConfig, current time.Duration) time.Duration {
	next := current * 2
	if cfg.MaxBackoff > 0 && next > cfg.MaxBackoff {
		return cfg.MaxBackoff
	}
	return next
}

// retryAfter reads Retry-After as seconds or an HTTP date; 0 if absent or
// unparsable.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

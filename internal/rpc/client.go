// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/rpc/json"

	"github.com/dotandev/simauto/internal/auxfile"
	"github.com/dotandev/simauto/internal/errors"
	"github.com/dotandev/simauto/internal/session"
	"github.com/dotandev/simauto/internal/table"
)

// Client drives a Session served by another process, usually the Windows
// host that runs the simulator.
type Client struct {
	url     string
	retrier *Retrier
}

type ClientOption func(*clientOptions)

type clientOptions struct {
	retry RetryConfig
	http  *http.Client
}

func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(o *clientOptions) { o.retry = cfg }
}

func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) { o.http = c }
}

// NewClient validates url and returns a Client. A url without a path gets
// DefaultPath.
func NewClient(url string, opts ...ClientOption) (*Client, error) {
	if err := ValidateRemoteURL(url); err != nil {
		return nil, err
	}
	o := clientOptions{retry: DefaultRetryConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	url = strings.TrimRight(url, "/")
	if !strings.HasSuffix(url, DefaultPath) {
		url += DefaultPath
	}
	return &Client{url: url, retrier: NewRetrier(o.retry, o.http)}, nil
}

func (c *Client) URL() string { return c.url }

type faulted interface {
	fault() *Fault
}

func (c *Client) call(ctx context.Context, method string, args any, reply faulted) error {
	method = ServiceName + "." + method
	body, err := json.EncodeClientRequest(method, args)
	if err != nil {
		return errors.WrapRemoteCallFailed(method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.WrapRemoteCallFailed(method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.retrier.Do(ctx, req)
	if err != nil {
		return errors.WrapRemoteCallFailed(method, err)
	}
	defer resp.Body.Close()

	if err := json.DecodeClientResponse(resp.Body, reply); err != nil {
		return errors.WrapRemoteCallFailed(method, fmt.Errorf("status %d: %w", resp.StatusCode, err))
	}
	return reply.fault().Err()
}

func (c *Client) Open(ctx context.Context, path string) error {
	return c.call(ctx, "Open", &PathArgs{Path: path}, &Result{})
}

func (c *Client) Save(ctx context.Context) error {
	return c.call(ctx, "Save", &NoArgs{}, &Result{})
}

func (c *Client) SaveAs(ctx context.Context, path string) error {
	return c.call(ctx, "SaveAs", &PathArgs{Path: path}, &Result{})
}

func (c *Client) SaveAsAuxiliary(ctx context.Context, x session.AuxExport) error {
	return c.call(ctx, "SaveAsAuxiliary", &AuxExportArgs{Export: x}, &Result{})
}

func (c *Client) Close(ctx context.Context) error {
	return c.call(ctx, "Close", &NoArgs{}, &Result{})
}

func (c *Client) RunScript(ctx context.Context, command string) error {
	return c.call(ctx, "RunScript", &ScriptArgs{Command: command}, &Result{})
}

func (c *Client) LoadAuxiliaryText(ctx context.Context, text string) error {
	return c.call(ctx, "LoadAuxiliaryText", &TextArgs{Text: text}, &Result{})
}

func (c *Client) GetSingleElement(ctx context.Context, objectType string, fields []string, values []any) (*table.Table, error) {
	if len(fields) != len(values) {
		return nil, errors.WrapContractViolation("%d fields but %d values", len(fields), len(values))
	}
	var reply TableReply
	if err := c.call(ctx, "GetSingleElement", &SingleElementArgs{ObjectType: objectType, Fields: fields, Values: values}, &reply); err != nil {
		return nil, err
	}
	return reply.Table, nil
}

func (c *Client) GetMultipleElements(ctx context.Context, objectType string, fields []string, filterName string) (*table.Table, error) {
	var reply TableReply
	if err := c.call(ctx, "GetMultipleElements", &MultipleElementArgs{ObjectType: objectType, Fields: fields, Filter: filterName}, &reply); err != nil {
		return nil, err
	}
	return reply.Table, nil
}

// GetMultipleElementsAsMap keys the rows on the client; a key function
// cannot cross the wire.
func (c *Client) GetMultipleElementsAsMap(ctx context.Context, objectType string, fields []string, filterName string, key table.KeySpec) (map[string]table.Record, error) {
	for _, k := range key.Fields {
		found := false
		for _, f := range fields {
			found = found || f == k
		}
		if !found {
			return nil, errors.WrapContractViolation("key field %q is not among the queried fields %v", k, fields)
		}
	}
	t, err := c.GetMultipleElements(ctx, objectType, fields, filterName)
	if err != nil {
		return nil, err
	}
	return t.ToMap(key)
}

func (c *Client) GetFieldList(ctx context.Context, objectType string) (*table.Table, error) {
	var reply TableReply
	if err := c.call(ctx, "GetFieldList", &ObjectTypeArgs{ObjectType: objectType}, &reply); err != nil {
		return nil, err
	}
	return reply.Table, nil
}

func (c *Client) ThreePhaseFaultCurrent(ctx context.Context, bus int) (float64, bool, error) {
	var reply FaultReply
	if err := c.call(ctx, "ThreePhaseFaultCurrent", &FaultArgs{Bus: bus}, &reply); err != nil {
		return 0, false, err
	}
	return reply.Magnitude, reply.OK, nil
}

func (c *Client) CreateFilter(ctx context.Context, f auxfile.Filter) error {
	return c.call(ctx, "CreateFilter", &FilterArgs{Filter: f}, &Result{})
}

func (c *Client) CalculateTLR(ctx context.Context, r session.TLRRequest) error {
	return c.call(ctx, "CalculateTLR", &TLRArgs{Request: r}, &Result{})
}

func (c *Client) SendToExcel(ctx context.Context, objectType, filterName string, fields []string) error {
	return c.call(ctx, "SendToExcel", &ExcelArgs{ObjectType: objectType, Filter: filterName, Fields: fields}, &Result{})
}

// Status reports the served Session's id, case path and state.
func (c *Client) Status(ctx context.Context) (*StatusReply, error) {
	var reply StatusReply
	if err := c.call(ctx, "Status", &NoArgs{}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

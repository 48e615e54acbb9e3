// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

func isValidURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsed.Scheme == "" {
		return fmt.Errorf("URL must include scheme (http:// or https://)")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}

// ValidateRemoteURL checks the endpoint a Client dials.
func ValidateRemoteURL(urlStr string) error {
	if err := isValidURL(urlStr); err != nil {
		return fmt.Errorf("invalid remote URL: %w", err)
	}
	return nil
}

// ValidateListenAddr checks a host:port the server binds. The host may be
// empty to listen on every interface.
func ValidateListenAddr(addr string) error {
	if addr == "" {
		return fmt.Errorf("listen address is required")
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid listen port %q", port)
	}
	return nil
}

// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package secrets keeps export credentials in the OS keychain.
package secrets

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "simauto"

// ErrNotFound is returned when no secret is stored under a key.
var ErrNotFound = stderrors.New("secret not found")

// Store is a thread-safe view of one keyring.
type Store struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Open opens the platform keyring: Windows Credential Manager, macOS
// Keychain, or the Secret Service on Linux.
func Open() (*Store, error) {
	cfg := keyring.Config{
		ServiceName: ServiceName,
	}
	switch runtime.GOOS {
	case "windows":
		cfg.AllowedBackends = []keyring.BackendType{keyring.WinCredBackend}
		cfg.WinCredPrefix = ServiceName
	case "darwin":
		cfg.AllowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
		cfg.PassPrefix = ServiceName
	default:
		cfg.AllowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.PassBackend}
		cfg.PassPrefix = ServiceName
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return New(ring), nil
}

// SetDSN stores a PostgreSQL connection string under key.
func (s *Store) SetDSN(key, dsn string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("secret key is required")
	}
	if strings.TrimSpace(dsn) == "" {
		return fmt.Errorf("DSN for %s is empty", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ring.Set(keyring.Item{Key: key, Data: []byte(dsn), Label: ServiceName + " " + key}); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// DSN loads the connection string stored under key.
func (s *Store) DSN(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, err := s.ring.Get(key)
	if stderrors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return string(it.Data), nil
}

// Remove deletes key; removing an absent key is not an error.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ring.Remove(key); err != nil && !stderrors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

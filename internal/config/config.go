// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package config handles reading and writing the simauto config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"

	"github.com/dotandev/simauto/internal/errors"
)

// Environment overrides.
const (
	EnvConfig          = "SIMAUTO_CONFIG"
	EnvProgID          = "SIMAUTO_PROGID"
	EnvLogLevel        = "SIMAUTO_LOG_LEVEL"
	EnvLogJSON         = "SIMAUTO_LOG_JSON"
	EnvHistoryPath     = "SIMAUTO_HISTORY_PATH"
	EnvHistoryEnabled  = "SIMAUTO_HISTORY"
	EnvTracingEndpoint = "SIMAUTO_TRACING_ENDPOINT"
	EnvRemote          = "SIMAUTO_REMOTE"
	EnvListen          = "SIMAUTO_LISTEN"
)

// CurrentVersion is written by WriteConfig; SupportedVersions is what
// Load accepts.
const (
	CurrentVersion    = "1.0"
	SupportedVersions = ">= 1.0, < 2.0"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version  string        `yaml:"version"`
	ProgID   string        `yaml:"prog_id,omitempty"`
	LogLevel string        `yaml:"log_level"`
	LogJSON  bool          `yaml:"log_json"`
	History  HistoryConfig `yaml:"history"`
	Tracing  TracingConfig `yaml:"tracing"`
	RPC      RPCConfig     `yaml:"rpc"`
	Export   ExportConfig  `yaml:"export"`
}

// HistoryConfig controls the local call history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"` // empty: ~/.simauto/history.db
}

// TracingConfig enables OTLP/HTTP trace export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint,omitempty"`
	ServiceName string `yaml:"service_name"`
}

// RPCConfig configures 'serve' and remote clients. CaseRoot confines the
// paths remote clients may open or save to; empty means the served case's
// directory.
type RPCConfig struct {
	Listen   string `yaml:"listen"`
	Remote   string `yaml:"remote,omitempty"`
	CaseRoot string `yaml:"case_root,omitempty"`
}

// ExportConfig names the keyring entry holding the PostgreSQL DSN.
type ExportConfig struct {
	DSNKey string `yaml:"dsn_key"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentVersion,
		LogLevel: "info",
		History: HistoryConfig{
			Enabled: true,
		},
		Tracing: TracingConfig{
			ServiceName: "simauto",
		},
		RPC: RPCConfig{
			Listen: "127.0.0.1:7420",
		},
		Export: ExportConfig{
			DSNKey: "export_dsn",
		},
	}
}

// DefaultPath is $SIMAUTO_CONFIG, else config.yaml under the user config
// directory.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "simauto", "config.yaml"), nil
}

// Load reads path over the defaults, then applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteConfig writes cfg to path, creating the directory if needed.
func WriteConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the schema version and the enumerated fields.
func (c *Config) Validate() error {
	v, err := version.NewVersion(c.Version)
	if err != nil {
		return errors.WrapInvalidConfig(fmt.Sprintf("version %q: %v", c.Version, err))
	}
	supported := version.MustConstraints(version.NewConstraint(SupportedVersions))
	if !supported.Check(v) {
		return errors.WrapInvalidConfig(fmt.Sprintf("config version %s is not supported (want %s)", v, SupportedVersions))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.WrapInvalidConfig(fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}
	return nil
}

func applyEnv(c *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.WrapInvalidConfig(fmt.Sprintf("%s=%q is not a boolean", key, v))
		}
		*dst = b
		return nil
	}

	str(EnvProgID, &c.ProgID)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvHistoryPath, &c.History.Path)
	str(EnvTracingEndpoint, &c.Tracing.Endpoint)
	str(EnvRemote, &c.RPC.Remote)
	str(EnvListen, &c.RPC.Listen)
	if err := boolean(EnvLogJSON, &c.LogJSON); err != nil {
		return err
	}
	return boolean(EnvHistoryEnabled, &c.History.Enabled)
}

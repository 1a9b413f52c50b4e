// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

// Package config defines Thalassa's layered configuration: built-in
// defaults, an optional YAML file, and environment variable overrides.
// All tunables are explicit struct fields passed into services at
// construction; there are no ambient globals.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Thalassa server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	History  HistoryConfig  `koanf:"history"`
	Audit    AuditConfig    `koanf:"audit"`
	Tracking TrackingConfig `koanf:"tracking"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file path, or ":memory:" for an ephemeral store.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads is the DuckDB thread count; 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// HistoryConfig tunes the voyage history service.
type HistoryConfig struct {
	// PositionRetentionDays bounds how long raw position samples are kept.
	PositionRetentionDays int `koanf:"position_retention_days"`

	// InterpolationThreshold is the time gap above which replay generation
	// synthesizes intermediate points.
	InterpolationThreshold time.Duration `koanf:"interpolation_threshold"`

	// AutoStartGraceWindow is how far ahead of a position timestamp a
	// Planned voyage's departure may lie and still be auto-started.
	AutoStartGraceWindow time.Duration `koanf:"auto_start_grace_window"`

	// DefaultHistoryLimit caps vessel history queries when the caller
	// does not specify a limit.
	DefaultHistoryLimit int `koanf:"default_history_limit"`
	MaxHistoryLimit     int `koanf:"max_history_limit"`
}

// AuditConfig tunes the compliance audit log.
type AuditConfig struct {
	Enabled bool `koanf:"enabled"`

	// RetentionDays is how long audit entries are kept. Maritime
	// compliance regimes expect multi-year retention; the default is
	// seven years.
	RetentionDays int `koanf:"retention_days"`

	// SweepInterval is how often the background retention sweeper runs.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// TrackingConfig tunes AIS report ingestion.
type TrackingConfig struct {
	// UpdateThreshold suppresses vessel-record updates arriving sooner
	// than this after the previous one.
	UpdateThreshold time.Duration `koanf:"update_threshold"`

	// StaleAfter marks vessels without updates for this long as stale.
	StaleAfter time.Duration `koanf:"stale_after"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks configuration invariants that would otherwise surface
// as confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.History.PositionRetentionDays <= 0 {
		return fmt.Errorf("history.position_retention_days must be positive, got %d", c.History.PositionRetentionDays)
	}
	if c.History.InterpolationThreshold <= 0 {
		return fmt.Errorf("history.interpolation_threshold must be positive, got %s", c.History.InterpolationThreshold)
	}
	if c.History.AutoStartGraceWindow < 0 {
		return fmt.Errorf("history.auto_start_grace_window must not be negative, got %s", c.History.AutoStartGraceWindow)
	}
	if c.History.MaxHistoryLimit < c.History.DefaultHistoryLimit {
		return fmt.Errorf("history.max_history_limit (%d) must be >= default_history_limit (%d)",
			c.History.MaxHistoryLimit, c.History.DefaultHistoryLimit)
	}
	if c.Audit.RetentionDays <= 0 {
		return fmt.Errorf("audit.retention_days must be positive, got %d", c.Audit.RetentionDays)
	}
	return nil
}

// Thalassa - Maritime Vessel Tracking and Voyage Replay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thalassa

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces all environment variable overrides.
const envPrefix = "THALASSA_"

// Default returns the built-in configuration. Retention and
// interpolation defaults match the documented service behavior.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Path:      "data/thalassa.db",
			MaxMemory: "512MB",
			Threads:   0,
		},
		History: HistoryConfig{
			PositionRetentionDays:  365,
			InterpolationThreshold: 30 * time.Minute,
			AutoStartGraceWindow:   2 * time.Hour,
			DefaultHistoryLimit:    1000,
			MaxHistoryLimit:        10000,
		},
		Audit: AuditConfig{
			Enabled:       true,
			RetentionDays: 2555,
			SweepInterval: 24 * time.Hour,
		},
		Tracking: TrackingConfig{
			UpdateThreshold: 5 * time.Minute,
			StaleAfter:      24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the effective configuration by layering, lowest priority
// first: built-in defaults, the YAML file at path (skipped when path is
// empty or the file does not exist), then THALASSA_* environment
// variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// envTransform maps THALASSA_SECTION_KEY_NAME to section.key_name.
// The first underscore separates the section from the key; the rest of
// the name keeps its underscores to match the koanf struct tags.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(s, "_", 2)
	if len(parts) != 2 {
		return s
	}
	switch parts[0] {
	case "server", "database", "history", "audit", "tracking", "logging":
		return parts[0] + "." + parts[1]
	default:
		return s
	}
}

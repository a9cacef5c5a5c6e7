// Copyright (C) 2025 zajel-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// Package config loads the recognised options of spec.md §6 from YAML,
// applying environment-variable substitution, defaults, and validation
// before the rest of the process sees a Config value.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Epoch selects the routing-fingerprint rotation period (spec.md §4.7).
type Epoch string

const (
	EpochHourly Epoch = "hourly"
	EpochDaily  Epoch = "daily"
)

// Config is the main configuration structure, holding every recognised
// option of spec.md §6 plus the ambient logging/metrics/relay settings.
type Config struct {
	Environment        string         `yaml:"environment" json:"environment"`
	ChunkSize          int            `yaml:"chunk_size" json:"chunk_size"`
	MaxMessageSize     int            `yaml:"max_message_size" json:"max_message_size"`
	MaxChunkPayload    int            `yaml:"max_chunk_payload_size" json:"max_chunk_payload_size"`
	RoutingEpoch       Epoch          `yaml:"routing_epoch" json:"routing_epoch"`
	SessionExpiryMs    int64          `yaml:"session_expiry_ms" json:"session_expiry_ms"`
	MaxNonceHistory    int            `yaml:"max_nonce_history" json:"max_nonce_history"`
	SlidingWindow      int            `yaml:"sliding_window" json:"sliding_window"`
	MaxPendingUpstream int            `yaml:"max_pending_upstream" json:"max_pending_upstream"`
	MaxConsecutiveFail int            `yaml:"max_consecutive_failures" json:"max_consecutive_failures"`
	UnhealthyCooldownMs int64         `yaml:"unhealthy_cooldown_ms" json:"unhealthy_cooldown_ms"`
	RingingTimeoutMs   int64          `yaml:"ringing_timeout_ms" json:"ringing_timeout_ms"`
	RelayNodes         []string       `yaml:"relay_nodes" json:"relay_nodes"`
	Logging            *LoggingConfig `yaml:"logging" json:"logging"`
	Metrics            *MetricsConfig `yaml:"metrics" json:"metrics"`
}

// LoggingConfig configures internal/logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig configures internal/metrics' Prometheus exporter.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
	Path    string `yaml:"path" json:"path"`
}

// Default returns a Config with every spec.md §6 default value applied.
func Default() *Config {
	return &Config{
		Environment:         "development",
		ChunkSize:           65536,
		MaxMessageSize:      52428800,
		MaxChunkPayload:     131072,
		RoutingEpoch:        EpochHourly,
		SessionExpiryMs:     86400000,
		MaxNonceHistory:     10000,
		SlidingWindow:       64,
		MaxPendingUpstream:  100,
		MaxConsecutiveFail:  3,
		UnhealthyCooldownMs: 600000,
		RingingTimeoutMs:    60000,
		Logging:             &LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
		Metrics:             &MetricsConfig{Enabled: false, Addr: ":9090", Path: "/metrics"},
	}
}

// LoadFromFile loads configuration from a YAML (or, failing that, JSON)
// file, applying defaults for any unset field.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile writes cfg to path, choosing JSON or YAML by file extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if len(path) >= 5 && path[len(path)-5:] == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setDefaults(cfg *Config) {
	d := Default()

	if cfg.Environment == "" {
		cfg.Environment = d.Environment
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = d.ChunkSize
	}
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = d.MaxMessageSize
	}
	if cfg.MaxChunkPayload == 0 {
		cfg.MaxChunkPayload = d.MaxChunkPayload
	}
	if cfg.RoutingEpoch == "" {
		cfg.RoutingEpoch = d.RoutingEpoch
	}
	if cfg.SessionExpiryMs == 0 {
		cfg.SessionExpiryMs = d.SessionExpiryMs
	}
	if cfg.MaxNonceHistory == 0 {
		cfg.MaxNonceHistory = d.MaxNonceHistory
	}
	if cfg.SlidingWindow == 0 {
		cfg.SlidingWindow = d.SlidingWindow
	}
	if cfg.MaxPendingUpstream == 0 {
		cfg.MaxPendingUpstream = d.MaxPendingUpstream
	}
	if cfg.MaxConsecutiveFail == 0 {
		cfg.MaxConsecutiveFail = d.MaxConsecutiveFail
	}
	if cfg.UnhealthyCooldownMs == 0 {
		cfg.UnhealthyCooldownMs = d.UnhealthyCooldownMs
	}
	if cfg.RingingTimeoutMs == 0 {
		cfg.RingingTimeoutMs = d.RingingTimeoutMs
	}
	if cfg.Logging == nil {
		cfg.Logging = d.Logging
	} else {
		if cfg.Logging.Level == "" {
			cfg.Logging.Level = d.Logging.Level
		}
		if cfg.Logging.Format == "" {
			cfg.Logging.Format = d.Logging.Format
		}
		if cfg.Logging.Output == "" {
			cfg.Logging.Output = d.Logging.Output
		}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = d.Metrics
	} else {
		if cfg.Metrics.Addr == "" {
			cfg.Metrics.Addr = d.Metrics.Addr
		}
		if cfg.Metrics.Path == "" {
			cfg.Metrics.Path = d.Metrics.Path
		}
	}
}

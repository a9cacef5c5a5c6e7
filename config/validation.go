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

package config

import "fmt"

// Validate checks cfg against the invariants the rest of the process
// relies on, returning one message per violation.
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.ChunkSize <= 0 {
		errs = append(errs, "chunk_size must be positive")
	}
	if cfg.MaxMessageSize <= 0 {
		errs = append(errs, "max_message_size must be positive")
	}
	if cfg.MaxChunkPayload < cfg.ChunkSize {
		errs = append(errs, fmt.Sprintf("max_chunk_payload_size (%d) must be at least chunk_size (%d)", cfg.MaxChunkPayload, cfg.ChunkSize))
	}
	if cfg.RoutingEpoch != EpochHourly && cfg.RoutingEpoch != EpochDaily {
		errs = append(errs, fmt.Sprintf("routing_epoch must be %q or %q, got %q", EpochHourly, EpochDaily, cfg.RoutingEpoch))
	}
	if cfg.SessionExpiryMs <= 0 {
		errs = append(errs, "session_expiry_ms must be positive")
	}
	if cfg.MaxNonceHistory <= 0 {
		errs = append(errs, "max_nonce_history must be positive")
	}
	if cfg.SlidingWindow <= 0 || cfg.SlidingWindow > 64 {
		errs = append(errs, "sliding_window must be between 1 and 64")
	}
	if cfg.MaxPendingUpstream <= 0 {
		errs = append(errs, "max_pending_upstream must be positive")
	}
	if cfg.MaxConsecutiveFail <= 0 {
		errs = append(errs, "max_consecutive_failures must be positive")
	}
	if cfg.UnhealthyCooldownMs <= 0 {
		errs = append(errs, "unhealthy_cooldown_ms must be positive")
	}
	if cfg.RingingTimeoutMs <= 0 {
		errs = append(errs, "ringing_timeout_ms must be positive")
	}
	if cfg.Logging != nil {
		switch cfg.Logging.Level {
		case "debug", "info", "warn", "error", "fatal":
		default:
			errs = append(errs, fmt.Sprintf("logging.level %q is not recognised", cfg.Logging.Level))
		}
	}

	return errs
}

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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelayFetches tracks relay fetch attempts by outcome
	RelayFetches = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "fetches_total",
			Help:      "Total number of relay fetch attempts by result",
		},
		[]string{"result"}, // success, network_error, blocked, empty
	)

	// RelaySends tracks relay send attempts
	RelaySends = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "sends_total",
			Help:      "Total number of upstream sends through a relay",
		},
		[]string{"status"}, // success, failure
	)

	// RelayNodeHealth tracks the current health state observed per relay node
	RelayNodeHealth = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "node_healthy",
			Help:      "1 if the relay node is currently considered healthy, 0 otherwise",
		},
		[]string{"node"},
	)

	// RelayFallbacks tracks switches to a fallback relay node
	RelayFallbacks = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "fallbacks_total",
			Help:      "Total number of times a fallback relay node was selected",
		},
	)

	// RelayFetchDuration tracks fetch latency
	RelayFetchDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "fetch_duration_seconds",
			Help:      "Relay fetch round-trip duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		},
	)
)

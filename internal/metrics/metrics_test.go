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
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegistryExportsNamespacedMetrics(t *testing.T) {
	RelayFallbacks.Inc()

	families, err := Registry.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "zajel_relay_fallbacks_total" {
			found = true
		}
		require.True(t, strings.HasPrefix(f.GetName(), namespace+"_"))
	}
	require.True(t, found)
}

func TestMetricsAreRegistered(t *testing.T) {
	require.NotNil(t, RelayFetches)
	require.NotNil(t, RelaySends)
	require.NotNil(t, RelayNodeHealth)
	require.NotNil(t, RelayFallbacks)
	require.NotNil(t, RelayFetchDuration)

	require.NotNil(t, ChunksSplit)
	require.NotNil(t, ChunksEmitted)
	require.NotNil(t, ChunksReassembled)
	require.NotNil(t, ChunkCountPerMessage)
	require.NotNil(t, MessageSize)

	require.NotNil(t, ReplaysRejected)
	require.NotNil(t, NonceChecks)

	require.NotNil(t, SessionsEstablished)
	require.NotNil(t, SessionsActive)
	require.NotNil(t, SessionsExpired)
	require.NotNil(t, SessionsCleared)
	require.NotNil(t, SessionOperationDuration)
	require.NotNil(t, SessionMessageSize)

	require.NotNil(t, CryptoOperations)
	require.NotNil(t, CryptoErrors)
	require.NotNil(t, CryptoOperationDuration)
}

func TestMetricsCanBeObserved(t *testing.T) {
	RelayFetches.WithLabelValues("success").Inc()
	RelaySends.WithLabelValues("success").Inc()
	RelayNodeHealth.WithLabelValues("relay-1").Set(1)
	RelayFallbacks.Inc()
	RelayFetchDuration.Observe(0.05)

	ChunksSplit.Inc()
	ChunksEmitted.Add(4)
	ChunksReassembled.WithLabelValues("complete").Inc()
	ChunkCountPerMessage.Observe(4)
	MessageSize.Observe(2048)

	ReplaysRejected.WithLabelValues("nonce_set").Inc()
	NonceChecks.WithLabelValues("accepted").Inc()

	SessionsEstablished.WithLabelValues("success").Inc()
	SessionsActive.Inc()
	SessionOperationDuration.WithLabelValues("establish").Observe(0.01)
	SessionMessageSize.WithLabelValues("outbound").Observe(512)

	CryptoOperations.WithLabelValues("seal", "chacha20poly1305").Inc()
	CryptoErrors.WithLabelValues("open").Inc()
	CryptoOperationDuration.WithLabelValues("dh", "x25519").Observe(0.0002)

	require.NotZero(t, testutil.CollectAndCount(RelayFetches))
	require.NotZero(t, testutil.CollectAndCount(ChunksReassembled))
	require.NotZero(t, testutil.CollectAndCount(SessionsEstablished))
	require.NotZero(t, testutil.CollectAndCount(CryptoOperations))
}


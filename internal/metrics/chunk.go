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
	// ChunksSplit tracks messages split into chunks
	ChunksSplit = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chunks",
			Name:      "split_total",
			Help:      "Total number of messages split into chunks",
		},
	)

	// ChunksEmitted tracks individual chunks produced by splitting
	ChunksEmitted = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chunks",
			Name:      "emitted_total",
			Help:      "Total number of chunks produced by the splitter",
		},
	)

	// ChunksReassembled tracks messages successfully reassembled
	ChunksReassembled = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chunks",
			Name:      "reassembled_total",
			Help:      "Total number of chunk reassembly attempts by outcome",
		},
		[]string{"status"}, // complete, incomplete, failed
	)

	// ChunkCountPerMessage tracks how many chunks a message split into
	ChunkCountPerMessage = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chunks",
			Name:      "count_per_message",
			Help:      "Number of chunks a message was split into",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048
		},
	)

	// MessageSize tracks plaintext message sizes before chunking
	MessageSize = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chunks",
			Name:      "message_size_bytes",
			Help:      "Size of messages before chunking, in bytes",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 14), // 64B to 4GiB
		},
	)
)

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

// Package replay implements the two parallel replay-detection families
// used by pairwise sessions (spec.md §4.15): a bounded per-peer nonce set
// shared by both encrypted streams, and an optional sliding-window
// sequence filter used only by the session variant (spec.md §9).
package replay

import (
	"sync"

	"github.com/zajel/zajel/zerr"
)

// Stream names the two independent encrypted streams a peer may carry.
type Stream string

const (
	StreamText   Stream = "text"
	StreamBinary Stream = "binary"
)

// DefaultMaxNonceHistory is the default nonce-set capacity per (peer,
// stream) pair (spec.md §4.15, config max_nonce_history).
const DefaultMaxNonceHistory = 10000

type nonceHistory struct {
	seen  map[string]struct{}
	order []string
}

// NonceGuard tracks recently seen hex-encoded nonces per peer and stream,
// rejecting any nonce seen before with zerr.Replay.
type NonceGuard struct {
	mu       sync.Mutex
	capacity int
	streams  map[string]*nonceHistory
}

// NewNonceGuard returns a NonceGuard bounded to capacity entries per
// (peer, stream) pair.
func NewNonceGuard(capacity int) *NonceGuard {
	return &NonceGuard{capacity: capacity, streams: make(map[string]*nonceHistory)}
}

func streamKey(peerID string, stream Stream) string {
	return peerID + "|" + string(stream)
}

// CheckAndRecord rejects nonceHex if already seen for (peerID, stream);
// otherwise records it, evicting the oldest half of the history once
// capacity is exceeded.
func (g *NonceGuard) CheckAndRecord(peerID string, stream Stream, nonceHex string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := streamKey(peerID, stream)
	h, ok := g.streams[key]
	if !ok {
		h = &nonceHistory{seen: make(map[string]struct{})}
		g.streams[key] = h
	}

	if _, seen := h.seen[nonceHex]; seen {
		return zerr.New("replay.checkandrecord", zerr.Replay, nil)
	}

	h.seen[nonceHex] = struct{}{}
	h.order = append(h.order, nonceHex)

	if len(h.order) > g.capacity {
		evictCount := len(h.order) / 2
		for _, old := range h.order[:evictCount] {
			delete(h.seen, old)
		}
		h.order = append([]string(nil), h.order[evictCount:]...)
	}
	return nil
}

// Clear removes all nonce history (both streams) for peerID.
func (g *NonceGuard) Clear(peerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.streams, streamKey(peerID, StreamText))
	delete(g.streams, streamKey(peerID, StreamBinary))
}

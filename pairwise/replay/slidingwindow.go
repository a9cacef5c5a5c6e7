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

package replay

import (
	"fmt"
	"sync"

	"github.com/zajel/zajel/zerr"
)

// WindowSize is the sliding-window bitmap width in bits (spec.md §4.15,
// config sliding_window).
const WindowSize = 64

type windowState struct {
	highest uint64
	bitmap  uint64
}

// SlidingWindow implements the 64-bit sequence-window replay filter used
// only by the pairwise session variant (spec.md §9: channel chunks use
// NonceGuard alone, since chunk delivery carries no exploitable ordering).
type SlidingWindow struct {
	mu    sync.Mutex
	peers map[string]*windowState
}

// NewSlidingWindow returns an empty SlidingWindow.
func NewSlidingWindow() *SlidingWindow {
	return &SlidingWindow{peers: make(map[string]*windowState)}
}

// CheckAndAccept accepts seq if it is newer than any sequence seen from
// peerID, or falls within the trailing WindowSize-bit window and has not
// been seen before; otherwise it rejects with zerr.Replay.
func (w *SlidingWindow) CheckAndAccept(peerID string, seq uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	state, ok := w.peers[peerID]
	if !ok {
		state = &windowState{}
		w.peers[peerID] = state
	}

	switch {
	case seq > state.highest:
		shift := seq - state.highest
		if shift >= WindowSize {
			state.bitmap = 0
		} else {
			state.bitmap <<= shift
		}
		state.bitmap |= 1
		state.highest = seq
		return nil

	case state.highest-seq < WindowSize:
		bit := state.highest - seq
		mask := uint64(1) << bit
		if state.bitmap&mask != 0 {
			return zerr.New("replay.checkandaccept", zerr.Replay, fmt.Errorf("duplicate sequence number"))
		}
		state.bitmap |= mask
		return nil

	default:
		return zerr.New("replay.checkandaccept", zerr.Replay, fmt.Errorf("sequence too old"))
	}
}

// Clear removes peerID's sliding-window state.
func (w *SlidingWindow) Clear(peerID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.peers, peerID)
}

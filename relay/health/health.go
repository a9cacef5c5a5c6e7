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

// Package health tracks per-node relay reliability and a bounded
// per-routing-fingerprint fetch history (spec.md §4.11).
package health

import (
	"sync"
	"time"

	"github.com/zajel/zajel/model"
)

// maxHistoryPerFingerprint bounds the (vps_url, FetchResult) history kept
// for any one routing fingerprint, so long-lived channels don't grow this
// state unboundedly.
const maxHistoryPerFingerprint = 256

// Record is one fetch outcome observed against a routing fingerprint.
type Record struct {
	VpsURL string
	Result model.FetchResult
	At     time.Time
}

type nodeState struct {
	health  model.VpsNodeHealth
	failAt  []time.Time // ring buffer of recent failure timestamps
	failPos int
}

// Tracker is RelayHealth: per-node counters plus bounded fetch history.
type Tracker struct {
	mu             sync.Mutex
	nodes          map[string]*nodeState
	history        map[string][]Record // keyed by routing fingerprint
	failureWindow  time.Duration
	ringBufferSize int
}

// New returns a Tracker. failureWindow and ringBufferSize configure the
// recent-failure ring buffer used by relay/fallback's consecutive-failure
// check (spec.md §9 resolution: bounded ring buffer over lifetime count).
func New(failureWindow time.Duration, ringBufferSize int) *Tracker {
	return &Tracker{
		nodes:          make(map[string]*nodeState),
		history:        make(map[string][]Record),
		failureWindow:  failureWindow,
		ringBufferSize: ringBufferSize,
	}
}

func (t *Tracker) nodeFor(url string) *nodeState {
	n, ok := t.nodes[url]
	if !ok {
		n = &nodeState{
			health: model.VpsNodeHealth{URL: url},
			failAt: make([]time.Time, 0, t.ringBufferSize),
		}
		t.nodes[url] = n
	}
	return n
}

// Record increments counters for vpsURL under result, appends to the
// routing fingerprint's history when routingHash is non-empty, and updates
// suspected-blocking state per spec.md §4.11.
func (t *Tracker) Record(routingHash, vpsURL string, result model.FetchResult, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.nodeFor(vpsURL)
	switch result {
	case model.FetchSuccess:
		n.health.SuccessCount++
		n.health.SuspectedBlocking = false
		last := at
		n.health.LastSuccess = &last
	case model.FetchBlocked:
		n.health.FailureCount++
		n.health.SuspectedBlocking = true
		last := at
		n.health.LastFailure = &last
		t.pushFailure(n, at)
	case model.FetchNetworkError:
		n.health.FailureCount++
		last := at
		n.health.LastFailure = &last
		t.pushFailure(n, at)
	case model.FetchEmpty:
		// Empty results are neither success nor failure signals.
	}

	if routingHash != "" {
		hist := t.history[routingHash]
		hist = append(hist, Record{VpsURL: vpsURL, Result: result, At: at})
		if len(hist) > maxHistoryPerFingerprint {
			hist = hist[len(hist)-maxHistoryPerFingerprint:]
		}
		t.history[routingHash] = hist
	}
}

func (t *Tracker) pushFailure(n *nodeState, at time.Time) {
	if len(n.failAt) < t.ringBufferSize {
		n.failAt = append(n.failAt, at)
		return
	}
	n.failAt[n.failPos] = at
	n.failPos = (n.failPos + 1) % t.ringBufferSize
}

// RecentFailureCount returns how many of vpsURL's tracked failure
// timestamps fall within the failure window ending at now.
func (t *Tracker) RecentFailureCount(vpsURL string, now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[vpsURL]
	if !ok {
		return 0
	}
	count := 0
	for _, at := range n.failAt {
		if !at.IsZero() && now.Sub(at) <= t.failureWindow {
			count++
		}
	}
	return count
}

// SuccessRate returns success/(success+failure) for vpsURL, defaulting to
// 1.0 when the node has no recorded attempts.
func (t *Tracker) SuccessRate(vpsURL string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[vpsURL]
	if !ok {
		return 1.0
	}
	total := n.health.SuccessCount + n.health.FailureCount
	if total == 0 {
		return 1.0
	}
	return float64(n.health.SuccessCount) / float64(total)
}

// Health returns a snapshot of vpsURL's tracked health.
func (t *Tracker) Health(vpsURL string) model.VpsNodeHealth {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[vpsURL]
	if !ok {
		return model.VpsNodeHealth{URL: vpsURL}
	}
	return n.health
}

// SetSuspectedBlocking directly sets a node's suspected-blocking flag,
// used by relay/fallback after a consecutive-failure threshold is crossed
// or a cooldown un-suspects a node.
func (t *Tracker) SetSuspectedBlocking(vpsURL string, suspected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodeFor(vpsURL).health.SuspectedBlocking = suspected
}

// AllNodes returns a snapshot of every tracked node's health.
func (t *Tracker) AllNodes() []model.VpsNodeHealth {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.VpsNodeHealth, 0, len(t.nodes))
	for _, n := range t.nodes {
		out = append(out, n.health)
	}
	return out
}

// History returns a copy of the recorded (vps_url, FetchResult) pairs for
// routingHash.
func (t *Tracker) History(routingHash string) []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	hist := t.history[routingHash]
	out := make([]Record, len(hist))
	copy(out, hist)
	return out
}

// ResetHealth clears per-node counters and suspected-blocking state while
// keeping fetch history, for use at channel epoch boundaries.
func (t *Tracker) ResetHealth() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes = make(map[string]*nodeState)
}

// ClearHistory discards all per-routing-fingerprint history.
func (t *Tracker) ClearHistory() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = make(map[string][]Record)
}

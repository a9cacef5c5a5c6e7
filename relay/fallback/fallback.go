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

// Package fallback picks and re-evaluates the active relay node, preferring
// non-blocking nodes by success rate, falling back to suspected nodes when
// no non-blocking one is available, and re-adopting a failing node once it
// has cooled down and no alternative exists (spec.md §4.13).
package fallback

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zajel/zajel/model"
	"github.com/zajel/zajel/relay/censor"
	"github.com/zajel/zajel/relay/health"
)

// Defaults per spec.md §4.13.
const (
	MaxConsecutiveFailures = 3
	UnhealthyCooldown      = 10 * time.Minute
	RecentFailureWindow    = 5 * time.Minute
)

// Selector tracks the active relay node and re-evaluates it on failure.
type Selector struct {
	mu         sync.Mutex
	activeNode string
	tracker    *health.Tracker
	group      singleflight.Group
}

// New returns a Selector backed by tracker, which must already be
// configured with RecentFailureWindow (spec.md §9 ring-buffer resolution).
func New(tracker *health.Tracker) *Selector {
	return &Selector{tracker: tracker}
}

// ActiveNode returns the currently selected node URL, or "" if none is set.
func (s *Selector) ActiveNode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeNode
}

// SetActiveNode sets the active node directly, e.g. after initial
// selection.
func (s *Selector) SetActiveNode(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeNode = url
}

// NodeFallbackOrder ranks candidates: non-blocking nodes first sorted by
// success rate descending, then suspected nodes by success rate
// descending.
func (s *Selector) NodeFallbackOrder(candidates []model.VpsNodeHealth) []model.VpsNodeHealth {
	var clear, suspected []model.VpsNodeHealth
	for _, n := range candidates {
		if n.SuspectedBlocking {
			suspected = append(suspected, n)
		} else {
			clear = append(clear, n)
		}
	}
	byRate := func(nodes []model.VpsNodeHealth) {
		sort.SliceStable(nodes, func(i, j int) bool {
			return s.tracker.SuccessRate(nodes[i].URL) > s.tracker.SuccessRate(nodes[j].URL)
		})
	}
	byRate(clear)
	byRate(suspected)
	return append(clear, suspected...)
}

// BestNode returns the first element of NodeFallbackOrder, or "" if
// candidates is empty.
func (s *Selector) BestNode(candidates []model.VpsNodeHealth) string {
	order := s.NodeFallbackOrder(candidates)
	if len(order) == 0 {
		return ""
	}
	return order[0].URL
}

// OnFailure records a failed fetch against vpsURL, re-evaluates its
// suspected-blocking status from recent failures, and — if vpsURL is the
// active node — picks a replacement from candidates. Concurrent failures
// for the same node collapse into one re-evaluation via singleflight.
func (s *Selector) OnFailure(routingHash, vpsURL string, result model.FetchResult, now time.Time, candidates []model.VpsNodeHealth, currentFingerprintVerdict censor.Verdict) (string, error) {
	_, err, _ := s.group.Do(vpsURL, func() (interface{}, error) {
		s.tracker.Record(routingHash, vpsURL, result, now)

		if s.tracker.RecentFailureCount(vpsURL, now) >= MaxConsecutiveFailures {
			s.tracker.SetSuspectedBlocking(vpsURL, true)
		}

		s.mu.Lock()
		isActive := s.activeNode == vpsURL
		s.mu.Unlock()
		if !isActive {
			return nil, nil
		}

		return nil, s.reassignActive(vpsURL, now, candidates, currentFingerprintVerdict)
	})
	if err != nil {
		return "", err
	}
	return s.ActiveNode(), nil
}

func (s *Selector) reassignActive(failingURL string, now time.Time, candidates []model.VpsNodeHealth, verdict censor.Verdict) error {
	pool := candidates
	if verdict == censor.RoutingHashBlocked || verdict == censor.WidespreadBlocking {
		filtered := make([]model.VpsNodeHealth, 0, len(candidates))
		for _, n := range candidates {
			if !n.SuspectedBlocking {
				filtered = append(filtered, n)
			}
		}
		if len(filtered) > 0 {
			pool = filtered
		}
	}

	alternatives := make([]model.VpsNodeHealth, 0, len(pool))
	for _, n := range pool {
		if n.URL != failingURL {
			alternatives = append(alternatives, n)
		}
	}

	if best := s.BestNode(alternatives); best != "" {
		s.SetActiveNode(best)
		return nil
	}

	if cooledDown(s.tracker.Health(failingURL), now) {
		s.tracker.SetSuspectedBlocking(failingURL, false)
		s.SetActiveNode(failingURL)
	}
	return nil
}

func cooledDown(h model.VpsNodeHealth, now time.Time) bool {
	if h.LastFailure == nil {
		return true
	}
	return now.Sub(*h.LastFailure) >= UnhealthyCooldown
}

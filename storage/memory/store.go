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

// Package memory is the in-process reference implementation of
// storage.Store, used by tests and the CLI (spec.md §6).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zajel/zajel/model"
)

// Store implements storage.Store entirely in memory. It never persists to
// disk and is reset when the process exits.
type Store struct {
	mu       sync.RWMutex
	channels map[string]model.Channel
	chunks   map[string][]model.Chunk
}

// NewStore returns an empty in-memory Store.
func NewStore() *Store {
	return &Store{
		channels: make(map[string]model.Channel),
		chunks:   make(map[string][]model.Chunk),
	}
}

func (s *Store) SaveChannel(_ context.Context, ch model.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[ch.ID] = ch
	return nil
}

func (s *Store) GetChannel(_ context.Context, id string) (model.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.channels[id]
	if !ok {
		return model.Channel{}, fmt.Errorf("channel not found: %s", id)
	}
	return ch, nil
}

func (s *Store) GetAllChannels(_ context.Context) ([]model.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteChannel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, id)
	delete(s.chunks, id)
	return nil
}

func (s *Store) SaveChunk(_ context.Context, channelID string, chunk model.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[channelID] = append(s.chunks[channelID], chunk)
	return nil
}

func (s *Store) GetChunksBySequence(_ context.Context, channelID string, sequence uint64) ([]model.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Chunk
	for _, c := range s.chunks[channelID] {
		if c.Sequence == sequence {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}

func (s *Store) GetLatestSequence(_ context.Context, channelID string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest uint64
	var seen bool
	for _, c := range s.chunks[channelID] {
		if !seen || c.Sequence > latest {
			latest = c.Sequence
			seen = true
		}
	}
	return latest, nil
}

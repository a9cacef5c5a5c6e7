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

// Package storage defines the persistence contract shared by both cores
// (spec.md §6): channel records and their chunks. storage/memory is the
// in-process reference implementation used by tests and the CLI.
package storage

import (
	"context"

	"github.com/zajel/zajel/model"
)

// Store persists channel records and the chunk stream published under
// them. Implementations must be safe for concurrent use.
type Store interface {
	SaveChannel(ctx context.Context, ch model.Channel) error
	GetChannel(ctx context.Context, id string) (model.Channel, error)
	GetAllChannels(ctx context.Context) ([]model.Channel, error)
	DeleteChannel(ctx context.Context, id string) error

	SaveChunk(ctx context.Context, channelID string, chunk model.Chunk) error
	GetChunksBySequence(ctx context.Context, channelID string, sequence uint64) ([]model.Chunk, error)
	GetLatestSequence(ctx context.Context, channelID string) (uint64, error)
}

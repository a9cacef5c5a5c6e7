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

// Package relaytransport defines the relay-client contract (spec.md §6):
// announcing chunks, fetching them back by routing fingerprint and epoch,
// and the upstream send/receive path. relaytransport/httprelay is an
// HTTP+WebSocket reference implementation.
package relaytransport

import (
	"context"

	"github.com/zajel/zajel/model"
)

// UpstreamFrame is one delivered frame on an owner's upstream receive
// stream: the sealed envelope plus the sender's ephemeral agreement
// public key carried at the transport layer (spec.md §6).
type UpstreamFrame struct {
	Envelope               model.UpstreamEnvelope
	EphemeralAgreementPub string
}

// Client is the relay-node collaborator both cores depend on. Fetch and
// Receive never retry internally; callers decide retry/backoff policy
// using the FetchResult and relay/fallback.
type Client interface {
	// Announce publishes chunk under channelID, fire-and-forget.
	Announce(ctx context.Context, channelID string, chunk model.Chunk) error

	// Fetch returns the chunks known for routingHash at the given epoch
	// label, plus the outcome of the attempt.
	Fetch(ctx context.Context, routingHash, epochLabel string) ([]model.Chunk, model.FetchResult, error)

	// Send delivers a sealed upstream envelope with its ephemeral
	// agreement public key to the owner of channelID.
	Send(ctx context.Context, channelID string, envelope model.UpstreamEnvelope, ephemeralAgreementPub string) error

	// Receive streams upstream frames addressed to channelID's owner
	// onto frames until ctx is cancelled or an unrecoverable error
	// occurs.
	Receive(ctx context.Context, channelID string, frames chan<- UpstreamFrame) error
}

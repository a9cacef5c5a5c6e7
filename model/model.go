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

// Package model holds the shared wire and local-record types of the
// broadcast-channel and pairwise-session cores (spec.md §3), consumed by
// channel/*, relay/*, and pairwise/* without creating import cycles among
// them.
package model

import "time"

// Role is a channel member's local role.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleSubscriber Role = "subscriber"
)

// AdminKey is one entry in a manifest's admin_keys sequence.
type AdminKey struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Rules governs what a channel's members may publish upstream.
type Rules struct {
	RepliesEnabled  bool     `json:"replies_enabled"`
	PollsEnabled    bool     `json:"polls_enabled"`
	MaxUpstreamSize int      `json:"max_upstream_size"`
	AllowedTypes    []string `json:"allowed_types"`
}

// Manifest is a channel's public contract (spec.md §3). Signature is a
// base64 detached signature by OwnerKey over the canonical encoding of
// every other field, computed with Signature itself cleared.
type Manifest struct {
	ChannelID         string     `json:"channel_id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	OwnerKey          string     `json:"owner_key"`
	AdminKeys         []AdminKey `json:"admin_keys"`
	CurrentEncryptKey string     `json:"current_encrypt_key"`
	KeyEpoch          uint64     `json:"key_epoch"`
	Rules             Rules      `json:"rules"`
	Signature         string     `json:"signature"`
}

// AuthorisedSigningKeys returns the base64-encoded owner and admin signing
// keys permitted to author chunks and re-sign the manifest, owner first.
func (m Manifest) AuthorisedSigningKeys() []string {
	keys := make([]string, 0, 1+len(m.AdminKeys))
	keys = append(keys, m.OwnerKey)
	for _, admin := range m.AdminKeys {
		keys = append(keys, admin.Key)
	}
	return keys
}

// Channel is the local record of a channel's membership material
// (spec.md §3). Owners hold OwnerSigningSecret; admins hold
// AdminSigningSecret whose public half is listed in Manifest.AdminKeys;
// subscribers hold only EncryptionSecret.
type Channel struct {
	ID                 string
	Role               Role
	Manifest           Manifest
	EncryptionSecret   []byte
	EncryptionPublic   []byte
	OwnerSigningSecret []byte
	AdminSigningSecret []byte
	CreatedAt          time.Time
}

// ChunkPayload is the logical content a publish call encrypts and splits.
type ChunkPayload struct {
	Type      string    `json:"type"`
	Bytes     []byte    `json:"bytes"`
	Timestamp time.Time `json:"timestamp"`
}

// Chunk is one on-the-wire slice of an encrypted, split message
// (spec.md §3).
type Chunk struct {
	ChunkID          []byte `json:"chunk_id"`
	RoutingHash      string `json:"routing_hash"`
	Sequence         uint64 `json:"sequence"`
	ChunkIndex       int    `json:"chunk_index"`
	TotalChunks      int    `json:"total_chunks"`
	Size             int    `json:"size"`
	Signature        string `json:"signature"`
	AuthorPubkey     string `json:"author_pubkey"`
	EncryptedPayload []byte `json:"encrypted_payload"`
}

// UpstreamPayload is the logical content a subscriber sends upstream
// before it is encrypted into an UpstreamEnvelope.
type UpstreamPayload struct {
	Type      UpstreamType `json:"type"`
	ReplyTo   *string      `json:"reply_to,omitempty"`
	Bytes     []byte       `json:"bytes"`
	Timestamp time.Time    `json:"timestamp"`
}

// UpstreamType enumerates the kinds of subscriber reply a manifest's rules
// may permit.
type UpstreamType string

const (
	UpstreamReply    UpstreamType = "reply"
	UpstreamVote     UpstreamType = "vote"
	UpstreamReaction UpstreamType = "reaction"
)

// UpstreamEnvelope carries a subscriber reply back to the owner, encrypted
// to the owner's agreement public key under a fresh ephemeral keypair
// (spec.md §3).
type UpstreamEnvelope struct {
	ID                        string       `json:"id"`
	ChannelID                 string       `json:"channel_id"`
	Type                      UpstreamType `json:"type"`
	EncryptedPayload          []byte       `json:"encrypted_payload"`
	Signature                 string       `json:"signature"`
	SenderEphemeralSigningKey string       `json:"sender_ephemeral_signing_key"`
	Timestamp                 time.Time    `json:"timestamp"`
}

// FetchResult is the outcome of one relay fetch attempt against a routing
// fingerprint.
type FetchResult string

const (
	FetchSuccess      FetchResult = "success"
	FetchNetworkError FetchResult = "network_error"
	FetchBlocked      FetchResult = "blocked"
	FetchEmpty        FetchResult = "empty"
)

// VpsNodeHealth tracks one relay node's observed reliability
// (spec.md §3). Mutated only by relay/health.
type VpsNodeHealth struct {
	URL               string
	SuccessCount      int
	FailureCount      int
	SuspectedBlocking bool
	LastSuccess       *time.Time
	LastFailure       *time.Time
}

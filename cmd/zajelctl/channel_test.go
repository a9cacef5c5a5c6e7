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

package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	channelcrypto "github.com/zajel/zajel/channel/crypto"
	"github.com/zajel/zajel/channel/chunk"
	"github.com/zajel/zajel/codec"
	"github.com/zajel/zajel/crypto/keys"
	"github.com/zajel/zajel/crypto/signer"
	"github.com/zajel/zajel/model"
	"github.com/zajel/zajel/routing"
)

func newTestChannelState(t *testing.T) *channelState {
	t.Helper()
	ownerSigning, err := keys.GenerateSigningKeyPair()
	require.NoError(t, err)
	encryptKP, err := keys.GenerateAgreementKeyPair()
	require.NoError(t, err)

	channelID, err := keys.DeriveChannelID(ownerSigning.Public())
	require.NoError(t, err)

	manifest := model.Manifest{
		ChannelID:         channelID,
		Name:              "Test Channel",
		OwnerKey:          codec.B64Encode(ownerSigning.Public()),
		CurrentEncryptKey: codec.B64Encode(encryptKP.Public()),
		KeyEpoch:          1,
		Rules: model.Rules{
			RepliesEnabled:  true,
			MaxUpstreamSize: 65536,
			AllowedTypes:    []string{"text"},
		},
	}

	owner := signer.New(ownerSigning)
	signed, err := channelcrypto.SignManifest(manifest, owner)
	require.NoError(t, err)

	return &channelState{
		Channel: model.Channel{
			ID:                 channelID,
			Role:               model.RoleOwner,
			Manifest:           signed,
			EncryptionSecret:   encryptKP.Secret(),
			EncryptionPublic:   encryptKP.Public(),
			OwnerSigningSecret: ownerSigning.Secret()[:32],
			CreatedAt:          time.Now().UTC(),
		},
	}
}

func TestChannelStateRoundTripsThroughDisk(t *testing.T) {
	st := newTestChannelState(t)
	path := filepath.Join(t.TempDir(), "channel.json")

	require.NoError(t, saveChannelState(path, st))

	loaded, err := loadChannelState(path)
	require.NoError(t, err)
	require.Equal(t, st.Channel.ID, loaded.Channel.ID)
	require.Equal(t, st.Channel.EncryptionSecret, loaded.Channel.EncryptionSecret)
	require.Equal(t, st.Channel.OwnerSigningSecret, loaded.Channel.OwnerSigningSecret)
}

// TestOwnerSigningSecretRoundTripsThroughSigningKeyPairFromSecret guards
// against storing the full 64-byte Ed25519 private key where only the
// 32-byte seed is accepted on reload.
func TestOwnerSigningSecretRoundTripsThroughSigningKeyPairFromSecret(t *testing.T) {
	st := newTestChannelState(t)
	path := filepath.Join(t.TempDir(), "channel.json")
	require.NoError(t, saveChannelState(path, st))

	loaded, err := loadChannelState(path)
	require.NoError(t, err)

	authorKP, err := keys.SigningKeyPairFromSecret(loaded.Channel.OwnerSigningSecret)
	require.NoError(t, err)
	require.Equal(t, loaded.Channel.Manifest.OwnerKey, codec.B64Encode(authorKP.Public()))
}

func TestPublishThenSubscribeRoundTripsMessage(t *testing.T) {
	st := newTestChannelState(t)

	payload := model.ChunkPayload{
		Type:      "text",
		Bytes:     []byte("hello subscribers"),
		Timestamp: time.Now().UTC(),
	}

	wire, err := channelcrypto.EncryptPayload(payload, st.Channel.EncryptionSecret, st.Channel.Manifest.KeyEpoch)
	require.NoError(t, err)

	routingHash, err := routing.CurrentFingerprint(st.Channel.EncryptionSecret, time.Now().UTC(), routing.Hourly)
	require.NoError(t, err)

	authorKP, err := keys.SigningKeyPairFromSecret(st.Channel.OwnerSigningSecret)
	require.NoError(t, err)
	author := chunk.AuthorIdentity{
		Signer:       signer.New(authorKP),
		AuthorPubkey: codec.B64Encode(authorKP.Public()),
	}

	chunks, err := chunk.Split(context.Background(), wire, 1, routingHash, author)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	reassembled, err := chunk.VerifyAndReassemble(chunks, st.Channel.Manifest.AuthorisedSigningKeys())
	require.NoError(t, err)

	decrypted, err := channelcrypto.DecryptPayload(reassembled, st.Channel.EncryptionSecret, st.Channel.Manifest.KeyEpoch)
	require.NoError(t, err)
	require.Equal(t, payload.Type, decrypted.Type)
	require.Equal(t, payload.Bytes, decrypted.Bytes)
}

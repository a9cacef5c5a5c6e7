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

// Package crypto implements the broadcast channel's manifest and chunk
// signing, verification, and epoch-keyed payload encryption (spec.md §4.8).
package crypto

import (
	"slices"
	"time"

	"github.com/zajel/zajel/codec"
	"github.com/zajel/zajel/crypto/aead"
	"github.com/zajel/zajel/crypto/kdf"
	"github.com/zajel/zajel/crypto/signer"
	"github.com/zajel/zajel/model"
	"github.com/zajel/zajel/zerr"
)

// CanonicalManifestBytes returns the deterministic byte encoding a
// manifest's signature is computed over, with the signature field treated
// as cleared regardless of what m.Signature currently holds.
func CanonicalManifestBytes(m model.Manifest) []byte {
	w := codec.NewWriter().
		String(m.ChannelID).
		String(m.Name).
		String(m.Description).
		String(m.OwnerKey).
		Count(len(m.AdminKeys))
	for _, admin := range m.AdminKeys {
		w.String(admin.Key).String(admin.Label)
	}
	w.String(m.CurrentEncryptKey).
		Uint64(m.KeyEpoch).
		Uint32(boolToUint32(m.Rules.RepliesEnabled)).
		Uint32(boolToUint32(m.Rules.PollsEnabled)).
		Uint32(uint32(m.Rules.MaxUpstreamSize)).
		Count(len(m.Rules.AllowedTypes))
	for _, t := range m.Rules.AllowedTypes {
		w.String(t)
	}
	return w.Out()
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// SignManifest re-issues m.Signature over the canonical encoding of every
// other field, signed by ownerSigner. The returned manifest is a
// copy; m is left unmodified.
func SignManifest(m model.Manifest, ownerSigner *signer.Signer) (model.Manifest, error) {
	out := m
	out.Signature = ""

	sig, err := ownerSigner.Sign(CanonicalManifestBytes(out))
	if err != nil {
		return model.Manifest{}, err
	}
	out.Signature = codec.B64Encode(sig)
	return out, nil
}

// VerifyManifest reports whether m.Signature is a valid signature by
// m.OwnerKey over the canonical encoding of m's other fields.
func VerifyManifest(m model.Manifest) error {
	ownerKey, err := codec.B64Decode(m.OwnerKey)
	if err != nil {
		return err
	}
	sig, err := codec.B64Decode(m.Signature)
	if err != nil {
		return err
	}

	unsigned := m
	unsigned.Signature = ""
	return signer.Verify(ownerKey, CanonicalManifestBytes(unsigned), sig)
}

// SignChunk signs encryptedPayload with the author's signing secret,
// returning a base64 detached signature.
func SignChunk(encryptedPayload []byte, author *signer.Signer) (string, error) {
	sig, err := author.Sign(encryptedPayload)
	if err != nil {
		return "", err
	}
	return codec.B64Encode(sig), nil
}

// VerifyChunk reports whether chunk's author is listed in authorisedKeys
// (base64-encoded signing public keys) and its signature verifies over
// EncryptedPayload.
func VerifyChunk(chunk model.Chunk, authorisedKeys []string) error {
	if !slices.Contains(authorisedKeys, chunk.AuthorPubkey) {
		return zerr.New("channelcrypto.verifychunk", zerr.UnknownAuthor, nil)
	}

	authorKey, err := codec.B64Decode(chunk.AuthorPubkey)
	if err != nil {
		return err
	}
	sig, err := codec.B64Decode(chunk.Signature)
	if err != nil {
		return err
	}
	return signer.Verify(authorKey, chunk.EncryptedPayload, sig)
}

// EncryptPayload canonically encodes payload, derives the epoch payload
// key from epochKeyMaterial and keyEpoch via crypto/kdf, and seals it with
// crypto/aead, producing nonce||ciphertext||tag.
func EncryptPayload(payload model.ChunkPayload, epochKeyMaterial []byte, keyEpoch uint64) ([]byte, error) {
	plaintext := codec.NewWriter().
		String(payload.Type).
		Bytes(payload.Bytes).
		Uint64(uint64(payload.Timestamp.UnixMilli())).
		Out()

	key, err := kdf.DeriveKey(epochKeyMaterial, nil, kdf.ChannelPayloadEpochLabel(keyEpoch), aead.KeySize)
	if err != nil {
		return nil, err
	}
	return aead.Seal(key, plaintext, nil)
}

// DecryptPayload reverses EncryptPayload, recovering the ChunkPayload for
// the given historical or current key epoch.
func DecryptPayload(wire []byte, epochKeyMaterial []byte, keyEpoch uint64) (model.ChunkPayload, error) {
	key, err := kdf.DeriveKey(epochKeyMaterial, nil, kdf.ChannelPayloadEpochLabel(keyEpoch), aead.KeySize)
	if err != nil {
		return model.ChunkPayload{}, err
	}

	plaintext, err := aead.Open(key, wire, nil)
	if err != nil {
		return model.ChunkPayload{}, err
	}

	return decodeChunkPayload(plaintext)
}

func decodeChunkPayload(plaintext []byte) (model.ChunkPayload, error) {
	r := codec.NewReader(plaintext)
	typ, err := r.String()
	if err != nil {
		return model.ChunkPayload{}, err
	}
	bts, err := r.Bytes()
	if err != nil {
		return model.ChunkPayload{}, err
	}
	ms, err := r.Uint64()
	if err != nil {
		return model.ChunkPayload{}, err
	}
	return model.ChunkPayload{
		Type:      typ,
		Bytes:     bts,
		Timestamp: time.UnixMilli(int64(ms)).UTC(),
	}, nil
}

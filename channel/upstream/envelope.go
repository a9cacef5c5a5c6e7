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

// Package upstream implements the subscriber-to-owner reply path: an
// ephemeral-keyed envelope encrypted to the channel owner's agreement
// public key, plus thread grouping and a bounded pending-send queue
// (spec.md §4.10).
package upstream

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/zajel/zajel/codec"
	"github.com/zajel/zajel/crypto/aead"
	"github.com/zajel/zajel/crypto/kdf"
	"github.com/zajel/zajel/crypto/keys"
	"github.com/zajel/zajel/crypto/signer"
	"github.com/zajel/zajel/model"
	"github.com/zajel/zajel/zerr"
)

// SealedEnvelope is what a subscriber transmits upstream: the envelope
// itself plus the ephemeral agreement public key attached in the
// transport frame (spec.md §4.10 step 6).
type SealedEnvelope struct {
	Envelope          model.UpstreamEnvelope
	EphemeralAgreePub []byte
}

func canonicalUpstreamPayload(p model.UpstreamPayload) []byte {
	replyTo := ""
	if p.ReplyTo != nil {
		replyTo = *p.ReplyTo
	}
	return codec.NewWriter().
		String(string(p.Type)).
		String(replyTo).
		Bytes(p.Bytes).
		Uint64(uint64(p.Timestamp.UnixMilli())).
		Out()
}

// Send encrypts payload to ownerAgreementPublic under a fresh ephemeral
// agreement and signing keypair and returns the sealed envelope to hand to
// a relay client.
func Send(channelID string, payload model.UpstreamPayload, rules model.Rules, ownerAgreementPublic []byte) (SealedEnvelope, error) {
	canonical := canonicalUpstreamPayload(payload)
	if len(canonical) > rules.MaxUpstreamSize {
		return SealedEnvelope{}, zerr.New("upstream.send", zerr.PolicyViolation, nil)
	}
	if !slices.Contains(rules.AllowedTypes, string(payload.Type)) {
		return SealedEnvelope{}, zerr.New("upstream.send", zerr.PolicyViolation, nil)
	}

	ephAgree, err := keys.GenerateAgreementKeyPair()
	if err != nil {
		return SealedEnvelope{}, err
	}
	ephSigning, err := keys.GenerateSigningKeyPair()
	if err != nil {
		return SealedEnvelope{}, err
	}

	shared, err := ephAgree.DeriveSharedSecret(ownerAgreementPublic)
	if err != nil {
		return SealedEnvelope{}, err
	}
	contentKey, err := kdf.DeriveKey(shared, nil, kdf.LabelUpstreamMessage, aead.KeySize)
	if err != nil {
		return SealedEnvelope{}, err
	}

	wire, err := aead.Seal(contentKey, canonical, nil)
	if err != nil {
		return SealedEnvelope{}, err
	}

	ephSigner := signer.New(ephSigning)
	sig, err := ephSigner.Sign(wire)
	if err != nil {
		return SealedEnvelope{}, err
	}

	envelope := model.UpstreamEnvelope{
		ID:                        uuid.NewString(),
		ChannelID:                 channelID,
		Type:                      payload.Type,
		EncryptedPayload:          wire,
		Signature:                 codec.B64Encode(sig),
		SenderEphemeralSigningKey: codec.B64Encode(ephSigning.Public()),
		Timestamp:                 time.Now().UTC(),
	}

	return SealedEnvelope{Envelope: envelope, EphemeralAgreePub: ephAgree.Public()}, nil
}

// Receive verifies and decrypts a sealed envelope using the owner's
// agreement secret, recovering the original UpstreamPayload.
func Receive(sealed SealedEnvelope, ownerAgreementSecret []byte) (model.UpstreamPayload, error) {
	senderSigningKey, err := codec.B64Decode(sealed.Envelope.SenderEphemeralSigningKey)
	if err != nil {
		return model.UpstreamPayload{}, err
	}
	sig, err := codec.B64Decode(sealed.Envelope.Signature)
	if err != nil {
		return model.UpstreamPayload{}, err
	}
	if err := signer.Verify(senderSigningKey, sealed.Envelope.EncryptedPayload, sig); err != nil {
		return model.UpstreamPayload{}, err
	}

	ownerAgree, err := keys.AgreementKeyPairFromSecret(ownerAgreementSecret)
	if err != nil {
		return model.UpstreamPayload{}, err
	}
	shared, err := ownerAgree.DeriveSharedSecret(sealed.EphemeralAgreePub)
	if err != nil {
		return model.UpstreamPayload{}, err
	}
	contentKey, err := kdf.DeriveKey(shared, nil, kdf.LabelUpstreamMessage, aead.KeySize)
	if err != nil {
		return model.UpstreamPayload{}, err
	}

	canonical, err := aead.Open(contentKey, sealed.Envelope.EncryptedPayload, nil)
	if err != nil {
		return model.UpstreamPayload{}, err
	}

	return decodeUpstreamPayload(canonical)
}

func decodeUpstreamPayload(canonical []byte) (model.UpstreamPayload, error) {
	r := codec.NewReader(canonical)
	typ, err := r.String()
	if err != nil {
		return model.UpstreamPayload{}, err
	}
	replyTo, err := r.String()
	if err != nil {
		return model.UpstreamPayload{}, err
	}
	bts, err := r.Bytes()
	if err != nil {
		return model.UpstreamPayload{}, err
	}
	ms, err := r.Uint64()
	if err != nil {
		return model.UpstreamPayload{}, err
	}

	payload := model.UpstreamPayload{
		Type:      model.UpstreamType(typ),
		Bytes:     bts,
		Timestamp: time.UnixMilli(int64(ms)).UTC(),
	}
	if replyTo != "" {
		payload.ReplyTo = &replyTo
	}
	return payload, nil
}

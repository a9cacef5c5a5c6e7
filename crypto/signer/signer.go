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

// Package signer is the canonical entrypoint channel and chunk code calls
// to sign and verify canonical byte encodings (spec.md §4.5). crypto/keys
// owns key-pair generation and storage; signer owns the sign/verify
// operation surface used on manifests, chunks, and upstream envelopes.
package signer

import (
	zajelcrypto "github.com/zajel/zajel/crypto"
	"github.com/zajel/zajel/crypto/keys"
	"github.com/zajel/zajel/zerr"
)

// Signer signs canonical byte encodings with a fixed signing key pair.
type Signer struct {
	kp zajelcrypto.SigningKeyPair
}

// New returns a Signer bound to kp.
func New(kp zajelcrypto.SigningKeyPair) *Signer {
	return &Signer{kp: kp}
}

// Sign returns a 64-byte detached Ed25519 signature over canonicalBytes.
func (s *Signer) Sign(canonicalBytes []byte) ([]byte, error) {
	sig, err := s.kp.Sign(canonicalBytes)
	if err != nil {
		return nil, zerr.New("signer.sign", zerr.Internal, err)
	}
	return sig, nil
}

// PublicKey returns the signer's raw Ed25519 public key.
func (s *Signer) PublicKey() []byte {
	return s.kp.Public()
}

// Verify reports whether signature is a valid detached Ed25519 signature
// by authorPublic over canonicalBytes. Returns a *zerr.Error wrapping
// zerr.BadSignature rather than a bare bool, so callers get a consistent
// error taxonomy when rejecting a manifest, chunk, or envelope.
func Verify(authorPublic, canonicalBytes, signature []byte) error {
	if !keys.VerifyDetached(authorPublic, canonicalBytes, signature) {
		return zerr.New("signer.verify", zerr.BadSignature, nil)
	}
	return nil
}

// VerifyAny reports whether signature is valid for canonicalBytes under
// any of the candidate public keys, used when verifying against a
// channel's current signing key plus keys still inside their grace window
// after rotation (spec.md §C8 rotation).
func VerifyAny(candidates [][]byte, canonicalBytes, signature []byte) error {
	for _, candidate := range candidates {
		if keys.VerifyDetached(candidate, canonicalBytes, signature) {
			return nil
		}
	}
	return zerr.New("signer.verifyany", zerr.BadSignature, nil)
}

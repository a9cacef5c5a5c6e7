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

// Package crypto holds the shared key-pair interfaces used by the
// channel and pairwise-session cores. The concrete Ed25519 signing keys
// and X25519 agreement keys live in crypto/keys.
package crypto

import "errors"

// KeyType names one of the two curves this system uses: Ed25519 for
// detached signatures, X25519 for static Diffie-Hellman agreement.
type KeyType string

const (
	KeyTypeSigning   KeyType = "Ed25519"
	KeyTypeAgreement KeyType = "X25519"
)

// SigningKeyPair produces and verifies detached signatures (C5 Signer).
type SigningKeyPair interface {
	Public() []byte
	Secret() []byte
	Sign(message []byte) ([]byte, error)
	Verify(message, signature []byte) bool
	ID() string
	Zero()
}

// AgreementKeyPair performs static X25519 Diffie-Hellman (C2 KeyStore).
type AgreementKeyPair interface {
	Public() []byte
	Secret() []byte
	DeriveSharedSecret(peerPublic []byte) ([]byte, error)
	ID() string
	Zero()
}

var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrBadKeyLength     = errors.New("key has the wrong byte length")
)

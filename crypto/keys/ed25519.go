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

package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	zajelcrypto "github.com/zajel/zajel/crypto"
)

// signingKeyPair implements zajelcrypto.SigningKeyPair for Ed25519 keys.
// The owner's signing public key IS the channel identity (spec.md §3).
type signingKeyPair struct {
	secret ed25519.PrivateKey
	public ed25519.PublicKey
	id     string
}

// GenerateSigningKeyPair generates a new Ed25519 signing key pair.
func GenerateSigningKeyPair() (zajelcrypto.SigningKeyPair, error) {
	public, secret, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return newSigningKeyPair(secret, public), nil
}

// SigningKeyPairFromSecret rebuilds a signing key pair from a 32-byte
// Ed25519 seed, as used when loading a previously-generated owner or
// admin secret back into memory.
func SigningKeyPairFromSecret(seed []byte) (zajelcrypto.SigningKeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, zajelcrypto.ErrBadKeyLength
	}
	secret := ed25519.NewKeyFromSeed(seed)
	public := secret.Public().(ed25519.PublicKey)
	return newSigningKeyPair(secret, public), nil
}

func newSigningKeyPair(secret ed25519.PrivateKey, public ed25519.PublicKey) *signingKeyPair {
	hash := sha256.Sum256(public)
	return &signingKeyPair{
		secret: secret,
		public: public,
		id:     hex.EncodeToString(hash[:8]),
	}
}

func (kp *signingKeyPair) Public() []byte { return append([]byte(nil), kp.public...) }
func (kp *signingKeyPair) Secret() []byte { return append([]byte(nil), kp.secret...) }
func (kp *signingKeyPair) ID() string     { return kp.id }

// Sign returns a 64-byte detached Ed25519 signature over message.
func (kp *signingKeyPair) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(kp.secret, message), nil
}

// Verify reports whether signature is a valid Ed25519 signature by this
// key pair's public key over message.
func (kp *signingKeyPair) Verify(message, signature []byte) bool {
	return ed25519.Verify(kp.public, message, signature)
}

// Zero overwrites the secret key material before the key pair is released.
func (kp *signingKeyPair) Zero() {
	for i := range kp.secret {
		kp.secret[i] = 0
	}
}

// DerivePublicFromPrivateSigning returns the Ed25519 public key embedded
// in a 64-byte private key, or derives it from a 32-byte seed.
func DerivePublicFromPrivateSigning(secret []byte) ([]byte, error) {
	switch len(secret) {
	case ed25519.PrivateKeySize:
		pub := ed25519.PrivateKey(secret).Public().(ed25519.PublicKey)
		return append([]byte(nil), pub...), nil
	case ed25519.SeedSize:
		pub := ed25519.NewKeyFromSeed(secret).Public().(ed25519.PublicKey)
		return append([]byte(nil), pub...), nil
	default:
		return nil, zajelcrypto.ErrBadKeyLength
	}
}

// VerifyDetached verifies a detached signature against a raw public key,
// for callers holding only bytes rather than a signingKeyPair (e.g. chunk
// reassembly verifying an author listed in the manifest).
func VerifyDetached(public, message, signature []byte) bool {
	if len(public) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(public, message, signature)
}

// DeriveChannelID returns the hex-encoded SHA-256 of a signing public key.
// This is the channel's immutable identity (spec.md §3).
func DeriveChannelID(signingPublic []byte) (string, error) {
	if len(signingPublic) != ed25519.PublicKeySize {
		return "", zajelcrypto.ErrBadKeyLength
	}
	sum := sha256.Sum256(signingPublic)
	return hex.EncodeToString(sum[:]), nil
}

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
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"

	"filippo.io/edwards25519"

	zajelcrypto "github.com/zajel/zajel/crypto"
)

// agreementKeyPair implements zajelcrypto.AgreementKeyPair for X25519
// static Diffie-Hellman keys, used both as a channel's encryption keypair
// and as a pairwise session's per-process agreement keypair.
type agreementKeyPair struct {
	secret *ecdh.PrivateKey
	public *ecdh.PublicKey
	id     string
}

// GenerateAgreementKeyPair generates a new X25519 agreement key pair.
func GenerateAgreementKeyPair() (zajelcrypto.AgreementKeyPair, error) {
	secret, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return newAgreementKeyPair(secret), nil
}

// AgreementKeyPairFromSecret rebuilds an agreement key pair from a 32-byte
// X25519 scalar, as subscribers do when loading their distributed
// encryption_secret back into memory.
func AgreementKeyPairFromSecret(secretBytes []byte) (zajelcrypto.AgreementKeyPair, error) {
	secret, err := ecdh.X25519().NewPrivateKey(secretBytes)
	if err != nil {
		return nil, zajelcrypto.ErrBadKeyLength
	}
	return newAgreementKeyPair(secret), nil
}

func newAgreementKeyPair(secret *ecdh.PrivateKey) *agreementKeyPair {
	public := secret.PublicKey()
	hash := sha256.Sum256(public.Bytes())
	return &agreementKeyPair{
		secret: secret,
		public: public,
		id:     hex.EncodeToString(hash[:8]),
	}
}

func (kp *agreementKeyPair) Public() []byte { return append([]byte(nil), kp.public.Bytes()...) }
func (kp *agreementKeyPair) Secret() []byte { return append([]byte(nil), kp.secret.Bytes()...) }
func (kp *agreementKeyPair) ID() string     { return kp.id }

// DeriveSharedSecret computes the raw 32-byte X25519 ECDH output between
// this key pair's secret and a peer's public key. Callers must pass the
// raw DH output through crypto/kdf before using it as an AEAD key — this
// method does not itself apply a KDF (compare spec.md §4.4).
func (kp *agreementKeyPair) DeriveSharedSecret(peerPublic []byte) ([]byte, error) {
	peer, err := ecdh.X25519().NewPublicKey(peerPublic)
	if err != nil {
		return nil, zajelcrypto.ErrBadKeyLength
	}
	shared, err := kp.secret.ECDH(peer)
	if err != nil {
		return nil, err
	}
	return shared, nil
}

// Zero overwrites the secret scalar. crypto/ecdh.PrivateKey does not
// expose its internal buffer for in-place zeroing, so this replaces the
// key pair's reference to let the garbage collector reclaim it; callers
// that need a hard guarantee should avoid retaining kp.secret elsewhere.
func (kp *agreementKeyPair) Zero() {
	kp.secret = nil
}

// ConvertSigningPublicToAgreement converts an Ed25519 public key to its
// Montgomery-form X25519 public key, used when an upstream sender needs
// an agreement key for a peer that has only published a signing identity.
func ConvertSigningPublicToAgreement(edPublic []byte) ([]byte, error) {
	if len(edPublic) != ed25519.PublicKeySize {
		return nil, zajelcrypto.ErrBadKeyLength
	}
	p, err := new(edwards25519.Point).SetBytes(edPublic)
	if err != nil {
		return nil, zajelcrypto.ErrBadKeyLength
	}
	return p.BytesMontgomery(), nil
}

// ConvertSigningSecretToAgreement converts an Ed25519 seed into the
// corresponding X25519 scalar per RFC 8032 §5.1.5.
func ConvertSigningSecretToAgreement(edSeed []byte) ([]byte, error) {
	if len(edSeed) != ed25519.SeedSize {
		return nil, zajelcrypto.ErrBadKeyLength
	}
	h := sha512.Sum512(edSeed)
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64
	out := make([]byte, 32)
	copy(out, h[:32])
	return out, nil
}

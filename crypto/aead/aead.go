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

// Package aead wraps ChaCha20-Poly1305 with the wire framing used
// throughout the protocol: nonce || ciphertext || tag.
package aead

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/zajel/zajel/zerr"
)

// KeySize is the ChaCha20-Poly1305 key length in bytes.
const KeySize = chacha20poly1305.KeySize

// NonceSize is the random nonce length prepended to every sealed message.
const NonceSize = chacha20poly1305.NonceSize

// Seal encrypts plaintext under key and an optional associated-data value,
// producing nonce || ciphertext || tag. A fresh random nonce is drawn for
// every call; callers must never reuse a key across unrelated contexts
// without this randomisation.
func Seal(key, plaintext, associatedData []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, zerr.New("aead.seal", zerr.BadKey, nil)
	}
	aeadCipher, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, zerr.New("aead.seal", zerr.BadKey, err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, zerr.New("aead.seal", zerr.Internal, err)
	}

	sealed := aeadCipher.Seal(nil, nonce, plaintext, associatedData)

	out := make([]byte, 0, len(nonce)+len(sealed))
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// Open decrypts wire produced by Seal with the same key and associated
// data, returning the recovered plaintext.
func Open(key, wire, associatedData []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, zerr.New("aead.open", zerr.BadKey, nil)
	}
	if len(wire) < NonceSize {
		return nil, zerr.New("aead.open", zerr.Malformed, nil)
	}

	aeadCipher, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, zerr.New("aead.open", zerr.BadKey, err)
	}

	nonce := wire[:NonceSize]
	ciphertext := wire[NonceSize:]

	plaintext, err := aeadCipher.Open(nil, nonce, ciphertext, associatedData)
	if err != nil {
		return nil, zerr.New("aead.open", zerr.AuthFailed, err)
	}
	return plaintext, nil
}

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

// Package kdf derives keys from raw shared secrets using HKDF-SHA-256,
// extract-then-expand, with domain-separated info labels per use (spec.md
// §4.4). Callers never feed a raw ECDH or chunk-splitting output directly
// into an AEAD; it always passes through here first.
package kdf

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/zajel/zajel/zerr"
)

// Domain-separated info labels used across the protocol.
const (
	// LabelUpstreamMessage keys the AEAD used to encrypt an upstream
	// envelope's ciphertext payload.
	LabelUpstreamMessage = "zajel_upstream_message"

	// LabelSession keys a pairwise session's AEAD and replay state.
	LabelSession = "zajel_session"
)

// ChannelPayloadEpochLabel returns the domain-separated info label for the
// payload key of a given channel epoch, of the form
// "channel_payload_epoch:<epoch>".
func ChannelPayloadEpochLabel(epoch uint64) string {
	return "channel_payload_epoch:" + uitoa(epoch)
}

// Extract runs HKDF-Extract(salt, secret) and returns the pseudorandom key.
func Extract(secret, salt []byte) []byte {
	return hkdf.Extract(sha256.New, secret, salt)
}

// Expand runs HKDF-Expand(prk, info) and returns length bytes of output
// keying material.
func Expand(prk []byte, info string, length int) ([]byte, error) {
	reader := hkdf.Expand(sha256.New, prk, []byte(info))
	out := make([]byte, length)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, zerr.New("kdf.expand", zerr.Internal, err)
	}
	return out, nil
}

// DeriveKey runs the full extract-then-expand pipeline in one call:
// HKDF-Extract(salt, secret) followed by HKDF-Expand(prk, info, length).
func DeriveKey(secret, salt []byte, info string, length int) ([]byte, error) {
	prk := Extract(secret, salt)
	return Expand(prk, info, length)
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

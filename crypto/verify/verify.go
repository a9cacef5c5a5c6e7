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

// Package verify provides out-of-band identity verification helpers built
// on top of crypto/fingerprint (spec.md §4.16): constant-time key
// comparison and safety-number computation for display to end users.
package verify

import (
	"crypto/subtle"

	"github.com/zajel/zajel/codec"
	"github.com/zajel/zajel/crypto/fingerprint"
	"github.com/zajel/zajel/zerr"
)

// ConstantTimeEqual reports whether a and b are byte-identical, comparing
// in constant time so that a peer re-confirming a public key after session
// establishment cannot be timed into leaking a partial match.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// OwnFingerprint returns the display fingerprint of this process's own
// public key.
func OwnFingerprint(ownPublic []byte) (string, error) {
	return fingerprint.PublicKeyFingerprint(ownPublic)
}

// PeerFingerprintFromBase64 recomputes a peer's display fingerprint from a
// base64-encoded public key, using the same formatting rules as
// OwnFingerprint.
func PeerFingerprintFromBase64(peerPublicB64 string) (string, error) {
	raw, err := codec.B64Decode(peerPublicB64)
	if err != nil {
		return "", err
	}
	return fingerprint.PublicKeyFingerprint(raw)
}

// MutualSafetyNumber returns the safety number both peers should see when
// comparing out of band; it is independent of argument order.
func MutualSafetyNumber(ownPublic, peerPublic []byte) (string, error) {
	return fingerprint.SafetyNumber(ownPublic, peerPublic)
}

// ConfirmPeerKey verifies that observedPublic, received during a later
// exchange, matches expectedPublic stored at session establishment. It
// returns a *zerr.Error wrapping zerr.AuthFailed on mismatch rather than a
// bare bool, matching the taxonomy used elsewhere for rejected material.
func ConfirmPeerKey(expectedPublic, observedPublic []byte) error {
	if !ConstantTimeEqual(expectedPublic, observedPublic) {
		return zerr.New("verify.confirmpeerkey", zerr.AuthFailed, nil)
	}
	return nil
}

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

// Package fingerprint derives human-verifiable fingerprints and safety
// numbers from public keys (spec.md §4.6), used for out-of-band identity
// verification between peers.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zajel/zajel/zerr"
)

const publicKeyLen = 32

// PublicKeyFingerprint returns the uppercase hex SHA-256 digest of public,
// formatted as space-separated groups of four hex characters.
func PublicKeyFingerprint(public []byte) (string, error) {
	if len(public) != publicKeyLen {
		return "", zerr.New("fingerprint.publickey", zerr.BadKey, nil)
	}
	sum := sha256.Sum256(public)
	raw := strings.ToUpper(hex.EncodeToString(sum[:]))
	return groupBy(raw, 4), nil
}

// SafetyNumber derives a 60-digit safety number from a pair of 32-byte
// public keys, following spec.md §4.6: sort the keys lexicographically,
// concatenate, SHA-256, then read 12 big-endian uint16 pairs each reduced
// mod 100000 into a zero-padded 5-digit decimal group. Both peers holding
// the same two public keys compute the same number regardless of which
// side is "self" and which is "peer".
func SafetyNumber(aPublic, bPublic []byte) (string, error) {
	if len(aPublic) != publicKeyLen || len(bPublic) != publicKeyLen {
		return "", zerr.New("fingerprint.safetynumber", zerr.BadKey, nil)
	}

	lo, hi := aPublic, bPublic
	if bytes.Compare(lo, hi) > 0 {
		lo, hi = hi, lo
	}

	h := sha256.New()
	h.Write(lo)
	h.Write(hi)
	sum := h.Sum(nil)

	groups := make([]string, 12)
	for i := 0; i < 12; i++ {
		pair := binary.BigEndian.Uint16(sum[i*2 : i*2+2])
		groups[i] = fmt.Sprintf("%05d", uint32(pair)%100000)
	}

	// Display as 4 blocks of 3 five-digit groups, per spec.md §4.6.
	var out strings.Builder
	for block := 0; block < 4; block++ {
		if block > 0 {
			out.WriteString("  ")
		}
		out.WriteString(strings.Join(groups[block*3:block*3+3], " "))
	}
	return out.String(), nil
}

// groupBy inserts a space every n characters of s.
func groupBy(s string, n int) string {
	var out strings.Builder
	for i := 0; i < len(s); i += n {
		if i > 0 {
			out.WriteByte(' ')
		}
		end := i + n
		if end > len(s) {
			end = len(s)
		}
		out.WriteString(s[i:end])
	}
	return out.String()
}

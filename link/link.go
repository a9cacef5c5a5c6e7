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

// Package link encodes and decodes out-of-band channel invites (spec.md
// §6): a channel's manifest plus the subscriber decryption key, packed
// into a single shareable string. The core contract is only that Encode
// and Decode round-trip and that the decoded key has the expected byte
// length; Encoding picks the wire alphabet.
package link

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/zajel/zajel/model"
	"github.com/zajel/zajel/zerr"
)

// Encoding selects the text alphabet a link is packed with.
type Encoding int

const (
	// Base64 packs the link as URL-safe, unpadded base64 (default).
	Base64 Encoding = iota
	// Base58 packs the link using the Bitcoin/IPFS base58 alphabet,
	// avoiding characters easily confused in hand-typed invites.
	Base58
)

const agreementSecretSize = 32

type wireLink struct {
	Manifest         model.Manifest `json:"manifest"`
	EncryptionSecret []byte         `json:"encryption_secret"`
}

// Encode packs manifest and the subscriber's 32-byte decryption secret
// into a single link string under the given encoding.
func Encode(manifest model.Manifest, encryptionSecret []byte, enc Encoding) (string, error) {
	if len(encryptionSecret) != agreementSecretSize {
		return "", zerr.New("link.encode", zerr.BadKey, fmt.Errorf("encryption secret must be %d bytes", agreementSecretSize))
	}

	raw, err := json.Marshal(wireLink{Manifest: manifest, EncryptionSecret: encryptionSecret})
	if err != nil {
		return "", zerr.New("link.encode", zerr.Internal, err)
	}

	switch enc {
	case Base58:
		return base58.Encode(raw), nil
	default:
		return base64.RawURLEncoding.EncodeToString(raw), nil
	}
}

// Decode unpacks a link string produced by Encode under the given
// encoding, returning the manifest and the subscriber's decryption
// secret.
func Decode(link string, enc Encoding) (model.Manifest, []byte, error) {
	var raw []byte
	var err error

	switch enc {
	case Base58:
		raw, err = base58.Decode(link)
	default:
		raw, err = base64.RawURLEncoding.DecodeString(link)
	}
	if err != nil {
		return model.Manifest{}, nil, zerr.New("link.decode", zerr.BadEncoding, err)
	}

	var parsed wireLink
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return model.Manifest{}, nil, zerr.New("link.decode", zerr.BadEncoding, err)
	}
	if len(parsed.EncryptionSecret) != agreementSecretSize {
		return model.Manifest{}, nil, zerr.New("link.decode", zerr.BadKey, fmt.Errorf("encryption secret must be %d bytes", agreementSecretSize))
	}

	return parsed.Manifest, parsed.EncryptionSecret, nil
}

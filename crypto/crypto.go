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

// Package crypto is intentionally minimal to avoid circular dependencies.
// The actual implementations are in the subpackages:
//   - crypto/keys: Ed25519 signing keys and X25519 agreement keys
//   - crypto/aead: authenticated symmetric encryption
//   - crypto/kdf: extract-then-expand key derivation
//   - crypto/signer: detached signatures
//   - crypto/fingerprint: public-key fingerprints and safety numbers
//   - crypto/verify: constant-time comparison helpers
package crypto

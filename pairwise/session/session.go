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

// Package session implements pairwise encrypted sessions between two
// peers over an untrusted relay (spec.md §4.14): static X25519 agreement,
// HKDF session-key derivation binding the peer ID into the expansion
// input, canonical peer-key storage for later MITM-resistant
// verification, and expiry-gated encrypt/decrypt.
package session

import (
	"sync"
	"time"

	"github.com/zajel/zajel/codec"
	zajelcrypto "github.com/zajel/zajel/crypto"
	"github.com/zajel/zajel/crypto/aead"
	"github.com/zajel/zajel/crypto/kdf"
	"github.com/zajel/zajel/crypto/verify"
	"github.com/zajel/zajel/pairwise/replay"
	"github.com/zajel/zajel/zerr"
)

// SessionExpiryMs is the default session lifetime (spec.md config table,
// session_expiry_ms = 86 400 000, 24h).
const SessionExpiryMs int64 = 86400000

type entry struct {
	peerPublic []byte
	sessionKey []byte
	createdAt  time.Time
}

// Manager holds every pairwise session this process has established,
// keyed by peer ID, plus the replay state scoped to each session.
type Manager struct {
	mu       sync.Mutex
	own      zajelcrypto.AgreementKeyPair
	sessions map[string]*entry
	nonces   *replay.NonceGuard
	windows  *replay.SlidingWindow
	expiryMs int64
}

// NewManager returns a Manager that derives pairwise sessions from own's
// static agreement key pair.
func NewManager(own zajelcrypto.AgreementKeyPair) *Manager {
	return &Manager{
		own:      own,
		sessions: make(map[string]*entry),
		nonces:   replay.NewNonceGuard(replay.DefaultMaxNonceHistory),
		windows:  replay.NewSlidingWindow(),
		expiryMs: SessionExpiryMs,
	}
}

// EstablishSession derives and stores a session for peerID from its
// base64 static agreement public key. peerPubKeyB64 must decode to
// exactly 32 bytes.
func (m *Manager) EstablishSession(peerID, peerPubKeyB64 string) error {
	peerPublic, err := codec.B64Decode(peerPubKeyB64)
	if err != nil {
		return zerr.New("session.establish_session", zerr.BadKey, err)
	}
	if len(peerPublic) != 32 {
		return zerr.New("session.establish_session", zerr.BadKey, nil)
	}

	shared, err := m.own.DeriveSharedSecret(peerPublic)
	if err != nil {
		return zerr.New("session.establish_session", zerr.BadKey, err)
	}

	sessionKey, err := kdf.DeriveKey(shared, nil, kdf.LabelSession+":"+peerID, aead.KeySize)
	if err != nil {
		return zerr.New("session.establish_session", zerr.Internal, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[peerID] = &entry{
		peerPublic: peerPublic,
		sessionKey: sessionKey,
		createdAt:  time.Now(),
	}
	return nil
}

// HasSession reports whether a session is currently stored for peerID.
func (m *Manager) HasSession(peerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[peerID]
	return ok
}

// VerifyPeerKey reports whether receivedB64 decodes to the same public
// key stored for peerID at establishment, in constant time. It returns
// false if there is no session for peerID or the lengths differ.
func (m *Manager) VerifyPeerKey(peerID, receivedB64 string) bool {
	m.mu.Lock()
	e, ok := m.sessions[peerID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	received, err := codec.B64Decode(receivedB64)
	if err != nil {
		return false
	}
	return verify.ConstantTimeEqual(e.peerPublic, received)
}

// ClearSession removes peerID's session key, stored public key, creation
// time, and replay state.
func (m *Manager) ClearSession(peerID string) {
	m.mu.Lock()
	delete(m.sessions, peerID)
	m.mu.Unlock()
	m.nonces.Clear(peerID)
	m.windows.Clear(peerID)
}

// IsExpired reports whether peerID's session was created more than
// SessionExpiryMs ago. A missing session is reported as expired.
func (m *Manager) IsExpired(peerID string) bool {
	m.mu.Lock()
	e, ok := m.sessions[peerID]
	m.mu.Unlock()
	if !ok {
		return true
	}
	return time.Since(e.createdAt).Milliseconds() > m.expiryMs
}

// Encrypt seals plaintext under peerID's session key, tagging and
// recording the wire nonce for replay detection on the given stream.
func (m *Manager) Encrypt(peerID string, stream replay.Stream, plaintext []byte) ([]byte, error) {
	m.mu.Lock()
	e, ok := m.sessions[peerID]
	m.mu.Unlock()
	if !ok {
		return nil, zerr.New("session.encrypt", zerr.SessionExpired, nil)
	}
	if m.IsExpired(peerID) {
		return nil, zerr.New("session.encrypt", zerr.SessionExpired, nil)
	}

	wire, err := aead.Seal(e.sessionKey, plaintext, []byte(peerID))
	if err != nil {
		return nil, zerr.New("session.encrypt", zerr.Internal, err)
	}

	nonceHex := codec.HexEncodeLower(wire[:aead.NonceSize])
	if err := m.nonces.CheckAndRecord(peerID, stream, nonceHex); err != nil {
		return nil, err
	}
	return wire, nil
}

// Decrypt opens wire under peerID's session key, rejecting replayed
// nonces and expired sessions.
func (m *Manager) Decrypt(peerID string, stream replay.Stream, wire []byte) ([]byte, error) {
	m.mu.Lock()
	e, ok := m.sessions[peerID]
	m.mu.Unlock()
	if !ok {
		return nil, zerr.New("session.decrypt", zerr.SessionExpired, nil)
	}
	if m.IsExpired(peerID) {
		return nil, zerr.New("session.decrypt", zerr.SessionExpired, nil)
	}
	if len(wire) < aead.NonceSize {
		return nil, zerr.New("session.decrypt", zerr.Malformed, nil)
	}

	nonceHex := codec.HexEncodeLower(wire[:aead.NonceSize])
	if err := m.nonces.CheckAndRecord(peerID, stream, nonceHex); err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(e.sessionKey, wire, []byte(peerID))
	if err != nil {
		return nil, zerr.New("session.decrypt", zerr.AuthFailed, err)
	}
	return plaintext, nil
}

// CheckSequence runs wire sequence seq for peerID through the optional
// sliding-window replay filter, used by callers of the session variant
// that carries an explicit per-message sequence number alongside nonces.
func (m *Manager) CheckSequence(peerID string, seq uint64) error {
	return m.windows.CheckAndAccept(peerID, seq)
}

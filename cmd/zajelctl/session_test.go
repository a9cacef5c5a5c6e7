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

package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zajel/zajel/codec"
	"github.com/zajel/zajel/crypto/keys"
	"github.com/zajel/zajel/pairwise/replay"
)

func TestStreamFromFlag(t *testing.T) {
	require.Equal(t, replay.StreamBinary, streamFromFlag("binary"))
	require.Equal(t, replay.StreamText, streamFromFlag("text"))
	require.Equal(t, replay.StreamText, streamFromFlag("anything-else"))
}

func TestNewSessionManagerLoadsAgreementSecret(t *testing.T) {
	own, err := keys.GenerateAgreementKeyPair()
	require.NoError(t, err)

	mgr, err := newSessionManager(codec.B64Encode(own.Secret()))
	require.NoError(t, err)
	require.NotNil(t, mgr)
}

func TestNewSessionManagerRejectsBadSecret(t *testing.T) {
	_, err := newSessionManager(codec.B64Encode([]byte("too-short")))
	require.Error(t, err)
}

func TestSessionEstablishEncryptDecryptRoundTrip(t *testing.T) {
	alice, err := keys.GenerateAgreementKeyPair()
	require.NoError(t, err)
	bob, err := keys.GenerateAgreementKeyPair()
	require.NoError(t, err)

	aliceMgr, err := newSessionManager(codec.B64Encode(alice.Secret()))
	require.NoError(t, err)
	bobMgr, err := newSessionManager(codec.B64Encode(bob.Secret()))
	require.NoError(t, err)

	require.NoError(t, aliceMgr.EstablishSession("bob", codec.B64Encode(bob.Public())))
	require.NoError(t, bobMgr.EstablishSession("alice", codec.B64Encode(alice.Public())))

	wire, err := aliceMgr.Encrypt("bob", streamFromFlag("text"), []byte("hi bob"))
	require.NoError(t, err)

	plaintext, err := bobMgr.Decrypt("alice", streamFromFlag("text"), wire)
	require.NoError(t, err)
	require.Equal(t, "hi bob", string(plaintext))
}

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zajel/zajel/codec"
	"github.com/zajel/zajel/crypto/keys"
	"github.com/zajel/zajel/pairwise/replay"
	"github.com/zajel/zajel/zerr"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	own, err := keys.GenerateAgreementKeyPair()
	require.NoError(t, err)
	peer, err := keys.GenerateAgreementKeyPair()
	require.NoError(t, err)
	return NewManager(own), codec.B64Encode(peer.Public())
}

func TestEstablishSessionThenHasSession(t *testing.T) {
	m, peerPubB64 := newTestManager(t)
	require.False(t, m.HasSession("peer-1"))

	require.NoError(t, m.EstablishSession("peer-1", peerPubB64))
	require.True(t, m.HasSession("peer-1"))
}

func TestEstablishSessionRejectsWrongKeyLength(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.EstablishSession("peer-1", codec.B64Encode([]byte("short")))
	require.Error(t, err)
	require.Equal(t, zerr.BadKey, zerr.Of(err))
}

func TestVerifyPeerKeyMatchesStoredKey(t *testing.T) {
	m, peerPubB64 := newTestManager(t)
	require.NoError(t, m.EstablishSession("peer-1", peerPubB64))

	require.True(t, m.VerifyPeerKey("peer-1", peerPubB64))
	require.False(t, m.VerifyPeerKey("peer-1", codec.B64Encode(make([]byte, 32))))
}

func TestVerifyPeerKeyFailsWithoutSession(t *testing.T) {
	m, peerPubB64 := newTestManager(t)
	require.False(t, m.VerifyPeerKey("no-such-peer", peerPubB64))
}

func TestClearSessionRemovesEverything(t *testing.T) {
	m, peerPubB64 := newTestManager(t)
	require.NoError(t, m.EstablishSession("peer-1", peerPubB64))

	_, err := m.Encrypt("peer-1", replay.StreamText, []byte("hello"))
	require.NoError(t, err)

	m.ClearSession("peer-1")
	require.False(t, m.HasSession("peer-1"))

	_, err = m.Encrypt("peer-1", replay.StreamText, []byte("hello"))
	require.Error(t, err)
	require.Equal(t, zerr.SessionExpired, zerr.Of(err))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	ownA, err := keys.GenerateAgreementKeyPair()
	require.NoError(t, err)
	ownB, err := keys.GenerateAgreementKeyPair()
	require.NoError(t, err)

	mgrA := NewManager(ownA)
	mgrB := NewManager(ownB)

	require.NoError(t, mgrA.EstablishSession("peer-b", codec.B64Encode(ownB.Public())))
	require.NoError(t, mgrB.EstablishSession("peer-a", codec.B64Encode(ownA.Public())))

	wire, err := mgrA.Encrypt("peer-b", replay.StreamText, []byte("hello from a"))
	require.NoError(t, err)

	plaintext, err := mgrB.Decrypt("peer-a", replay.StreamText, wire)
	require.NoError(t, err)
	require.Equal(t, "hello from a", string(plaintext))
}

func TestIsExpiredAfterSessionExpiryWindow(t *testing.T) {
	m, peerPubB64 := newTestManager(t)
	require.NoError(t, m.EstablishSession("peer-1", peerPubB64))
	require.False(t, m.IsExpired("peer-1"))

	m.mu.Lock()
	m.sessions["peer-1"].createdAt = time.Now().Add(-25 * time.Hour)
	m.mu.Unlock()

	require.True(t, m.IsExpired("peer-1"))

	_, err := m.Encrypt("peer-1", replay.StreamText, []byte("late"))
	require.Error(t, err)
	require.Equal(t, zerr.SessionExpired, zerr.Of(err))
}

func TestIsExpiredWithoutSessionIsTrue(t *testing.T) {
	m, _ := newTestManager(t)
	require.True(t, m.IsExpired("no-such-peer"))
}

func TestCheckSequenceRejectsDuplicate(t *testing.T) {
	m, peerPubB64 := newTestManager(t)
	require.NoError(t, m.EstablishSession("peer-1", peerPubB64))

	require.NoError(t, m.CheckSequence("peer-1", 1))
	err := m.CheckSequence("peer-1", 1)
	require.Error(t, err)
	require.Equal(t, zerr.Replay, zerr.Of(err))
}

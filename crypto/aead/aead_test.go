package aead

import (
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zajel/zajel/zerr"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := io.ReadFull(rand.Reader, key)
	require.NoError(t, err)
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := randomKey(t)
	plaintext := []byte("chunk payload bytes")
	ad := []byte("channel-id:epoch-42")

	wire, err := Seal(key, plaintext, ad)
	require.NoError(t, err)
	require.Len(t, wire, NonceSize+len(plaintext)+16)

	recovered, err := Open(key, wire, ad)
	require.NoError(t, err)
	require.Equal(t, plaintext, recovered)
}

func TestSealProducesDistinctNoncesPerCall(t *testing.T) {
	key := randomKey(t)
	wire1, err := Seal(key, []byte("hello"), nil)
	require.NoError(t, err)
	wire2, err := Seal(key, []byte("hello"), nil)
	require.NoError(t, err)
	require.NotEqual(t, wire1[:NonceSize], wire2[:NonceSize])
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	key := randomKey(t)
	wire, err := Seal(key, []byte("hello"), nil)
	require.NoError(t, err)
	wire[len(wire)-1] ^= 0xFF

	_, err = Open(key, wire, nil)
	require.Error(t, err)
	require.Equal(t, zerr.AuthFailed, zerr.Of(err))
}

func TestOpenRejectsMismatchedAssociatedData(t *testing.T) {
	key := randomKey(t)
	wire, err := Seal(key, []byte("hello"), []byte("ad-a"))
	require.NoError(t, err)

	_, err = Open(key, wire, []byte("ad-b"))
	require.Error(t, err)
}

func TestOpenRejectsShortWire(t *testing.T) {
	key := randomKey(t)
	_, err := Open(key, []byte{1, 2, 3}, nil)
	require.Error(t, err)
	require.Equal(t, zerr.Malformed, zerr.Of(err))
}

func TestSealRejectsBadKeyLength(t *testing.T) {
	_, err := Seal([]byte("short"), []byte("hello"), nil)
	require.Error(t, err)
	require.Equal(t, zerr.BadKey, zerr.Of(err))
}

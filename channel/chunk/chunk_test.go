package chunk

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zajel/zajel/codec"
	"github.com/zajel/zajel/crypto/keys"
	"github.com/zajel/zajel/crypto/signer"
	"github.com/zajel/zajel/zerr"
)

func newAuthor(t *testing.T) (AuthorIdentity, []string) {
	t.Helper()
	kp, err := keys.GenerateSigningKeyPair()
	require.NoError(t, err)
	pub := codec.B64Encode(kp.Public())
	return AuthorIdentity{Signer: signer.New(kp), AuthorPubkey: pub}, []string{pub}
}

func TestSplitAndVerifyAndReassembleRoundTrip(t *testing.T) {
	author, authorisedKeys := newAuthor(t)

	payload := make([]byte, ChunkSize*3+100)
	_, err := io.ReadFull(rand.Reader, payload)
	require.NoError(t, err)

	chunks, err := Split(context.Background(), payload, 7, "deadbeef", author)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	for _, c := range chunks {
		require.Equal(t, uint64(7), c.Sequence)
		require.Equal(t, 4, c.TotalChunks)
		require.Len(t, c.ChunkID, chunkIDSize)
	}

	reassembled, err := VerifyAndReassemble(chunks, authorisedKeys)
	require.NoError(t, err)
	require.True(t, bytes.Equal(payload, reassembled))
}

func TestSplitSmallPayloadYieldsOneChunk(t *testing.T) {
	author, authorisedKeys := newAuthor(t)
	payload := []byte("short message")

	chunks, err := Split(context.Background(), payload, 1, "abc123", author)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, 1, chunks[0].TotalChunks)

	reassembled, err := VerifyAndReassemble(chunks, authorisedKeys)
	require.NoError(t, err)
	require.Equal(t, payload, reassembled)
}

func TestSplitRejectsOversizedPayload(t *testing.T) {
	author, _ := newAuthor(t)
	_, err := Split(context.Background(), make([]byte, MaxMessageSize+1), 1, "abc", author)
	require.Error(t, err)
}

func TestVerifyAndReassembleRejectsEmptySet(t *testing.T) {
	_, err := VerifyAndReassemble(nil, nil)
	require.Error(t, err)
}

func TestVerifyAndReassembleRejectsUnauthorisedAuthor(t *testing.T) {
	author, _ := newAuthor(t)
	chunks, err := Split(context.Background(), []byte("hello"), 1, "abc", author)
	require.NoError(t, err)

	_, err = VerifyAndReassemble(chunks, []string{"bm90LWF1dGhvcml6ZWQ="})
	require.Error(t, err)
	require.Equal(t, zerr.UnknownAuthor, zerr.Of(err))
}

func TestVerifyAndReassembleRejectsDuplicateIndex(t *testing.T) {
	author, authorisedKeys := newAuthor(t)
	chunks, err := Split(context.Background(), make([]byte, ChunkSize*2), 1, "abc", author)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	chunks[1] = chunks[0]

	_, err = VerifyAndReassemble(chunks, authorisedKeys)
	require.Error(t, err)
}

func TestVerifyAndReassembleRejectsMismatchedSequence(t *testing.T) {
	author, authorisedKeys := newAuthor(t)
	chunks, err := Split(context.Background(), make([]byte, ChunkSize*2), 1, "abc", author)
	require.NoError(t, err)
	chunks[1].Sequence = 99

	_, err = VerifyAndReassemble(chunks, authorisedKeys)
	require.Error(t, err)
}

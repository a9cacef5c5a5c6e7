package crypto

import (
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zajel/zajel/codec"
	"github.com/zajel/zajel/crypto/keys"
	"github.com/zajel/zajel/crypto/signer"
	"github.com/zajel/zajel/model"
	"github.com/zajel/zajel/zerr"
)

func newTestManifest(t *testing.T, ownerKP interface{ Public() []byte }) model.Manifest {
	t.Helper()
	return model.Manifest{
		ChannelID:         "chan-1",
		Name:              "News",
		Description:       "announcements",
		OwnerKey:          codec.B64Encode(ownerKP.Public()),
		AdminKeys:         []model.AdminKey{{Key: "YWRtaW4=", Label: "mod"}},
		CurrentEncryptKey: "ZW5jcnlwdA==",
		KeyEpoch:          1,
		Rules: model.Rules{
			RepliesEnabled:  true,
			PollsEnabled:    false,
			MaxUpstreamSize: 4096,
			AllowedTypes:    []string{"text", "image"},
		},
	}
}

func TestSignAndVerifyManifestRoundTrip(t *testing.T) {
	ownerKP, err := keys.GenerateSigningKeyPair()
	require.NoError(t, err)
	owner := signer.New(ownerKP)

	m := newTestManifest(t, ownerKP)
	signed, err := SignManifest(m, owner)
	require.NoError(t, err)
	require.NotEmpty(t, signed.Signature)

	require.NoError(t, VerifyManifest(signed))
}

func TestVerifyManifestRejectsTamperedField(t *testing.T) {
	ownerKP, err := keys.GenerateSigningKeyPair()
	require.NoError(t, err)
	owner := signer.New(ownerKP)

	m := newTestManifest(t, ownerKP)
	signed, err := SignManifest(m, owner)
	require.NoError(t, err)

	signed.Name = "Tampered"
	err = VerifyManifest(signed)
	require.Error(t, err)
	require.Equal(t, zerr.BadSignature, zerr.Of(err))
}

func TestSignAndVerifyChunkRoundTrip(t *testing.T) {
	ownerKP, err := keys.GenerateSigningKeyPair()
	require.NoError(t, err)
	owner := signer.New(ownerKP)

	payload := []byte("encrypted chunk bytes")
	sig, err := SignChunk(payload, owner)
	require.NoError(t, err)

	chunk := model.Chunk{
		EncryptedPayload: payload,
		Signature:        sig,
		AuthorPubkey:     codec.B64Encode(ownerKP.Public()),
	}
	require.NoError(t, VerifyChunk(chunk, []string{chunk.AuthorPubkey}))
}

func TestVerifyChunkRejectsUnauthorisedAuthor(t *testing.T) {
	ownerKP, err := keys.GenerateSigningKeyPair()
	require.NoError(t, err)
	owner := signer.New(ownerKP)

	payload := []byte("encrypted chunk bytes")
	sig, err := SignChunk(payload, owner)
	require.NoError(t, err)

	chunk := model.Chunk{
		EncryptedPayload: payload,
		Signature:        sig,
		AuthorPubkey:     codec.B64Encode(ownerKP.Public()),
	}
	err = VerifyChunk(chunk, []string{"bm90LWF1dGhvcml6ZWQ="})
	require.Error(t, err)
	require.Equal(t, zerr.UnknownAuthor, zerr.Of(err))
}

func TestEncryptDecryptPayloadRoundTrip(t *testing.T) {
	epochKey := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, epochKey)
	require.NoError(t, err)

	payload := model.ChunkPayload{
		Type:      "text",
		Bytes:     []byte("hello subscribers"),
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	}

	wire, err := EncryptPayload(payload, epochKey, 3)
	require.NoError(t, err)

	recovered, err := DecryptPayload(wire, epochKey, 3)
	require.NoError(t, err)
	require.Equal(t, payload.Type, recovered.Type)
	require.Equal(t, payload.Bytes, recovered.Bytes)
	require.True(t, payload.Timestamp.Equal(recovered.Timestamp))
}

func TestDecryptPayloadFailsUnderWrongEpoch(t *testing.T) {
	epochKey := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, epochKey)
	require.NoError(t, err)

	payload := model.ChunkPayload{Type: "text", Bytes: []byte("hi"), Timestamp: time.Now().UTC()}
	wire, err := EncryptPayload(payload, epochKey, 1)
	require.NoError(t, err)

	_, err = DecryptPayload(wire, epochKey, 2)
	require.Error(t, err)
	require.Equal(t, zerr.AuthFailed, zerr.Of(err))
}

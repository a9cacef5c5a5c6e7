package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zajel/zajel/model"
)

func TestSaveAndGetChannel(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	ch := model.Channel{ID: "chan-1", Role: model.RoleOwner}
	require.NoError(t, s.SaveChannel(ctx, ch))

	got, err := s.GetChannel(ctx, "chan-1")
	require.NoError(t, err)
	require.Equal(t, ch.ID, got.ID)
}

func TestGetChannelMissingFails(t *testing.T) {
	s := NewStore()
	_, err := s.GetChannel(context.Background(), "missing")
	require.Error(t, err)
}

func TestGetAllChannelsSortedByID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.SaveChannel(ctx, model.Channel{ID: "b"}))
	require.NoError(t, s.SaveChannel(ctx, model.Channel{ID: "a"}))

	all, err := s.GetAllChannels(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "a", all[0].ID)
	require.Equal(t, "b", all[1].ID)
}

func TestDeleteChannelRemovesChunksToo(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.SaveChannel(ctx, model.Channel{ID: "chan-1"}))
	require.NoError(t, s.SaveChunk(ctx, "chan-1", model.Chunk{Sequence: 1, ChunkIndex: 0}))

	require.NoError(t, s.DeleteChannel(ctx, "chan-1"))

	_, err := s.GetChannel(ctx, "chan-1")
	require.Error(t, err)

	chunks, err := s.GetChunksBySequence(ctx, "chan-1", 1)
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestGetChunksBySequenceOrdersByIndex(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.SaveChunk(ctx, "chan-1", model.Chunk{Sequence: 1, ChunkIndex: 2}))
	require.NoError(t, s.SaveChunk(ctx, "chan-1", model.Chunk{Sequence: 1, ChunkIndex: 0}))
	require.NoError(t, s.SaveChunk(ctx, "chan-1", model.Chunk{Sequence: 1, ChunkIndex: 1}))
	require.NoError(t, s.SaveChunk(ctx, "chan-1", model.Chunk{Sequence: 2, ChunkIndex: 0}))

	chunks, err := s.GetChunksBySequence(ctx, "chan-1", 1)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	require.Equal(t, 0, chunks[0].ChunkIndex)
	require.Equal(t, 1, chunks[1].ChunkIndex)
	require.Equal(t, 2, chunks[2].ChunkIndex)
}

func TestGetLatestSequenceTracksMax(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.SaveChunk(ctx, "chan-1", model.Chunk{Sequence: 3, ChunkIndex: 0}))
	require.NoError(t, s.SaveChunk(ctx, "chan-1", model.Chunk{Sequence: 7, ChunkIndex: 0}))
	require.NoError(t, s.SaveChunk(ctx, "chan-1", model.Chunk{Sequence: 5, ChunkIndex: 0}))

	latest, err := s.GetLatestSequence(ctx, "chan-1")
	require.NoError(t, err)
	require.Equal(t, uint64(7), latest)
}

func TestGetLatestSequenceForUnknownChannelIsZero(t *testing.T) {
	s := NewStore()
	latest, err := s.GetLatestSequence(context.Background(), "missing")
	require.NoError(t, err)
	require.Equal(t, uint64(0), latest)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultAppliesSpecConstants(t *testing.T) {
	cfg := Default()
	require.Equal(t, 65536, cfg.ChunkSize)
	require.Equal(t, 52428800, cfg.MaxMessageSize)
	require.Equal(t, 131072, cfg.MaxChunkPayload)
	require.Equal(t, EpochHourly, cfg.RoutingEpoch)
	require.Equal(t, int64(86400000), cfg.SessionExpiryMs)
	require.Equal(t, 10000, cfg.MaxNonceHistory)
	require.Equal(t, 64, cfg.SlidingWindow)
	require.Equal(t, 100, cfg.MaxPendingUpstream)
	require.Equal(t, 3, cfg.MaxConsecutiveFail)
	require.Equal(t, int64(600000), cfg.UnhealthyCooldownMs)
	require.Equal(t, int64(60000), cfg.RingingTimeoutMs)
	require.Empty(t, Validate(cfg))
}

func TestLoadFromFileAppliesDefaultsForMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: 32768\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, 32768, cfg.ChunkSize)
	require.Equal(t, 52428800, cfg.MaxMessageSize)
	require.Equal(t, EpochHourly, cfg.RoutingEpoch)
}

func TestLoadFromFileRejectsMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.ChunkSize = 16384
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, 16384, loaded.ChunkSize)
}

func TestSaveToFileJSONExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	require.NoError(t, SaveToFile(Default(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "\"chunk_size\"")
}

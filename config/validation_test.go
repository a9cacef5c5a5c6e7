package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsDefaultConfig(t *testing.T) {
	require.Empty(t, Validate(Default()))
}

func TestValidateRejectsChunkPayloadSmallerThanChunkSize(t *testing.T) {
	cfg := Default()
	cfg.MaxChunkPayload = cfg.ChunkSize - 1
	errs := Validate(cfg)
	require.NotEmpty(t, errs)
}

func TestValidateRejectsOutOfRangeSlidingWindow(t *testing.T) {
	cfg := Default()
	cfg.SlidingWindow = 128
	require.NotEmpty(t, Validate(cfg))
}

func TestValidateRejectsUnrecognisedLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	require.NotEmpty(t, Validate(cfg))
}

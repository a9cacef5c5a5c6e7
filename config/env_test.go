package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubstituteEnvVarsUsesEnvValue(t *testing.T) {
	t.Setenv("ZAJEL_TEST_VAR", "resolved")
	require.Equal(t, "resolved", SubstituteEnvVars("${ZAJEL_TEST_VAR}"))
}

func TestSubstituteEnvVarsUsesDefaultWhenUnset(t *testing.T) {
	require.Equal(t, "fallback", SubstituteEnvVars("${ZAJEL_MISSING_VAR:fallback}"))
}

func TestSubstituteEnvVarsInConfigCoversLoggingAndMetrics(t *testing.T) {
	t.Setenv("ZAJEL_LOG_LEVEL_VAR", "debug")
	cfg := Default()
	cfg.Logging.Level = "${ZAJEL_LOG_LEVEL_VAR}"

	SubstituteEnvVarsInConfig(cfg)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestGetEnvironmentDefaultsToDevelopment(t *testing.T) {
	t.Setenv("ZAJEL_ENV", "")
	t.Setenv("ENVIRONMENT", "")
	require.Equal(t, "development", GetEnvironment())
}

func TestGetEnvironmentPrefersZajelEnv(t *testing.T) {
	t.Setenv("ZAJEL_ENV", "Production")
	require.True(t, IsProduction())
}

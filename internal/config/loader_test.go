package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "LLM_PROVIDER", "PHONE_FINGERPRINT_SALT",
		"NINJAENGINE_CONFIG_FILE", "DIALOGUE_SHARD_COUNT",
	} {
		os.Unsetenv(k)
	}
}

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	clearEnv(t)
	os.Setenv("ANTHROPIC_API_KEY", "test-key")
	os.Setenv("PHONE_FINGERPRINT_SALT", "pepper")
	defer clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "anthropic", cfg.LLM.Provider)
	require.Equal(t, "ninjaengine", cfg.ServiceName)
	require.Equal(t, 32, cfg.Dialogue.ShardCount)
}

func TestLoadRejectsMissingProviderKey(t *testing.T) {
	clearEnv(t)
	os.Setenv("PHONE_FINGERPRINT_SALT", "pepper")
	defer clearEnv(t)

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsMissingSalt(t *testing.T) {
	clearEnv(t)
	os.Setenv("ANTHROPIC_API_KEY", "test-key")
	defer clearEnv(t)

	_, err := Load()
	require.Error(t, err)
}

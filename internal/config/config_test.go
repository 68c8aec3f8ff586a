package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":               ":3000",
		"8080":           ":8080",
		":9000":          ":9000",
		"127.0.0.1:8080": "127.0.0.1:8080",
	}
	for in, want := range cases {
		got, err := normalizeAddr(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := normalizeAddr("80 80")
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ARK_API_KEY", "")
	t.Setenv("ARK_ACCESS_KEY", "")
	t.Setenv("ARK_SECRET_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "deepseek-chat", cfg.AI.DefaultModel)
	assert.Equal(t, []string{"deepseek-chat", "deepseek-reasoner"}, cfg.AI.DeepSeekModels)
	assert.Equal(t, 3500, cfg.AI.HistoryTokenLimit)
	assert.Equal(t, 30*time.Minute, cfg.Storage.SessionIdleTimeout)
	assert.False(t, cfg.AI.Enabled())
	assert.False(t, cfg.Storage.UseRedis())
}

func TestLoadProviderKeys(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("ARK_ACCESS_KEY", "ak")
	t.Setenv("ARK_SECRET_KEY", "sk")
	t.Setenv("ARK_MODELS", "doubao-pro,doubao-lite")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Server.Addr)
	assert.True(t, cfg.AI.Enabled())
	assert.True(t, cfg.AI.DeepSeekEnabled())
	assert.True(t, cfg.AI.ArkEnabled())
	assert.Equal(t, []string{"doubao-pro", "doubao-lite"}, cfg.AI.ArkModels)
	assert.True(t, cfg.Storage.UseRedis())
}

func TestLoadRejectsInvalidTemperature(t *testing.T) {
	t.Setenv("TEMPERATURE", "3.5")

	_, err := Load()
	assert.Error(t, err)
}

func TestArkEnabledRequiresPair(t *testing.T) {
	assert.False(t, AIConfig{ArkAccessKey: "ak"}.ArkEnabled())
	assert.True(t, AIConfig{ArkAPIKey: "key"}.ArkEnabled())
}

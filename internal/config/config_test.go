package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(":8080", cfg.Server.Addr)
	req.Equal(DriverMemory, cfg.Storage.Driver)
	req.Equal("info", cfg.Log.Level)
	req.Equal(30*time.Second, cfg.AI.SuggestionTimeout)
	req.Nil(cfg.AI.Temperature)
}

func TestLoadOverrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("PORT", "127.0.0.1:9090")
	t.Setenv("STORAGE_DRIVER", "Badger")
	t.Setenv("SEED_ACCOUNTS", "alice, bob,,alice")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("ARK_TEMPERATURE", "0.7")
	t.Setenv("ARK_MAX_TOKENS", "256")

	cfg, err := Load()
	req.NoError(err)
	req.Equal("127.0.0.1:9090", cfg.Server.Addr)
	req.Equal(DriverBadger, cfg.Storage.Driver)
	req.Equal([]string{"alice", "bob"}, cfg.Storage.SeedAccounts)
	req.True(cfg.Auth.Enabled())
	req.NotNil(cfg.AI.Temperature)
	req.InDelta(0.7, *cfg.AI.Temperature, 1e-6)
	req.Equal(256, *cfg.AI.MaxTokens)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"PORT":           "80 80",
		"STORAGE_DRIVER": "postgres",
		"ARK_MAX_TOKENS": "lots",
		"AUTH_TOKEN_TTL": "forever",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestAIEnabled(t *testing.T) {
	require.False(t, AIConfig{}.Enabled())
	require.False(t, AIConfig{APIKey: "k"}.Enabled())
	require.True(t, AIConfig{APIKey: "k", Model: "m"}.Enabled())
	require.True(t, AIConfig{AccessKey: "a", SecretKey: "s", Model: "m"}.Enabled())
}

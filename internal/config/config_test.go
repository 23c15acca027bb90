package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so host settings do not leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "SERVER_HOST", "GIN_MODE", "SERVER_SHUTDOWN_TIMEOUT",
		"CHAT_REPLY_DELAY", "CHAT_NUDGE_DELAY", "CHAT_TOP_K",
		"STORE_BACKEND", "STORE_KEY_PREFIX",
		"DATABASE_URL", "POSTGRESQL_URI", "PG_DSN", "PG_HOST", "PG_PORT", "PG_USER", "PG_PASSWORD", "PG_DATABASE", "PG_SSLMODE",
		"REDIS_ADDR", "REDIS_DB", "SQLITE_PATH", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Chat.ReplyDelay)
	assert.Equal(t, 10*time.Second, cfg.Chat.NudgeDelay)
	assert.Equal(t, 3, cfg.Chat.TopK)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=propertychat sslmode=disable", cfg.GetPostgreSQLDSN())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CHAT_REPLY_DELAY", "250")
	t.Setenv("CHAT_NUDGE_DELAY", "1m")
	t.Setenv("CHAT_TOP_K", "5")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("POSTGRESQL_URI", "postgres://u:p@db/chat")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Chat.ReplyDelay)
	assert.Equal(t, time.Minute, cfg.Chat.NudgeDelay)
	assert.Equal(t, 5, cfg.Chat.TopK)

	store := cfg.StoreSettings()
	assert.Equal(t, "redis", store.Backend)
	assert.Equal(t, "cache:6379", store.RedisAddr)
	assert.Equal(t, "postgres://u:p@db/chat", store.PostgresDSN)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "eighty")
	t.Setenv("CHAT_REPLY_DELAY", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Chat.ReplyDelay)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Chat:  ChatConfig{ReplyDelay: time.Second, NudgeDelay: 10 * time.Second, TopK: 3},
			Store: StoreConfig{Backend: "sqlite"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "etcd" }},
		{"negative reply delay", func(c *Config) { c.Chat.ReplyDelay = -time.Second }},
		{"negative nudge delay", func(c *Config) { c.Chat.NudgeDelay = -1 }},
		{"zero top k", func(c *Config) { c.Chat.TopK = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "LOG_LEVEL", "TEMPORAL_HOST_PORT", "TEMPORAL_NAMESPACE", "TEMPORAL_API_KEY",
		"TASK_QUEUE", "PROGRESS_DELAY", "OPENROUTER_API_KEY", "OPENROUTER_MODEL", "OPENROUTER_URL",
		"CHAT_TIMEOUT", "AIRTABLE_TOKEN", "AIRTABLE_BASE_ID", "AIRTABLE_TABLE", "AIRTABLE_URL",
		"ARTICLES_CACHE_TTL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "STORE_CACHE_SIZE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.ServerPort)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, "localhost:7233", cfg.Temporal.HostPort)
	assert.Equal(t, DefaultTaskQueue, cfg.Temporal.TaskQueue)
	assert.Equal(t, time.Duration(0), cfg.ProgressDelay)
	assert.Equal(t, 30*time.Second, cfg.Chat.Timeout)
	assert.Equal(t, DefaultChatURL, cfg.Chat.URL)
	assert.Equal(t, "Articles", cfg.Articles.Table)
	assert.Equal(t, time.Hour, cfg.Articles.CacheTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, int64(1000), cfg.StoreCacheSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PROGRESS_DELAY", "750ms")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("STORE_CACHE_SIZE", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 750*time.Millisecond, cfg.ProgressDelay)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, int64(50), cfg.StoreCacheSize)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"duration":   {"CHAT_TIMEOUT", "soon"},
		"integer":    {"REDIS_DB", "first"},
		"log level":  {"LOG_LEVEL", "loud"},
		"port":       {"SERVER_PORT", "http"},
		"cache size": {"STORE_CACHE_SIZE", "-1"},
		"redis addr": {"REDIS_ADDR", "no port"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestTemporalClientOptions(t *testing.T) {
	local := TemporalClientOptions(TemporalConfig{HostPort: "localhost:7233", TaskQueue: "q"}, nil)
	assert.Equal(t, "localhost:7233", local.HostPort)
	assert.Nil(t, local.ConnectionOptions.TLS)
	assert.Nil(t, local.Credentials)

	cloud := TemporalClientOptions(TemporalConfig{HostPort: "ns.tmprl.cloud:7233", Namespace: "ns", APIKey: "secret", TaskQueue: "q"}, nil)
	assert.Equal(t, "ns", cloud.Namespace)
	assert.NotNil(t, cloud.ConnectionOptions.TLS)
	assert.NotNil(t, cloud.Credentials)
}

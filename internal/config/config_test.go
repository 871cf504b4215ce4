package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every KEYPANEL_ env var that Load() reads.
var allConfigKeys = []string{
	"KEYPANEL_LISTEN_ADDR",
	"KEYPANEL_DB_PATH",
	"KEYPANEL_BLOB_NAME",
	"KEYPANEL_NOTICE_DELAY",
	"KEYPANEL_SECRET_KEY",
	"KEYPANEL_LOG_LEVEL",
}

// isolateConfigEnv saves and unsets all KEYPANEL_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "keypanel.db", cfg.DBPath)
	assert.Equal(t, "micro_saas_api_keys", cfg.BlobName)
	assert.Equal(t, 2*time.Second, cfg.NoticeDelay)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.HasSecretKey())
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("KEYPANEL_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("KEYPANEL_DB_PATH", "/tmp/test.db")
	t.Setenv("KEYPANEL_BLOB_NAME", "team_keys")
	t.Setenv("KEYPANEL_NOTICE_DELAY", "5s")
	t.Setenv("KEYPANEL_SECRET_KEY", "hunter2")
	t.Setenv("KEYPANEL_LOG_LEVEL", "debug")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "team_keys", cfg.BlobName)
	assert.Equal(t, 5*time.Second, cfg.NoticeDelay)
	assert.Equal(t, "hunter2", cfg.SecretKey)
	assert.True(t, cfg.HasSecretKey())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_InvalidNoticeDelay(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("KEYPANEL_NOTICE_DELAY", "soon")

	cfg, err := Load()

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "KEYPANEL_NOTICE_DELAY")
}

func TestLoad_NonPositiveNoticeDelay(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("KEYPANEL_NOTICE_DELAY", "0s")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_EmptyBlobName(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("KEYPANEL_BLOB_NAME", "  ")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("KEYPANEL_LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KEYPANEL_LOG_LEVEL")
}

// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr  string
	DBPath      string
	BlobName    string
	NoticeDelay time.Duration
	SecretKey   string
	LogLevel    slog.Level
}

// HasSecretKey returns true when a blob encryption secret is configured.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional: KEYPANEL_LISTEN_ADDR (127.0.0.1:8080),
// KEYPANEL_DB_PATH (keypanel.db), KEYPANEL_BLOB_NAME (micro_saas_api_keys),
// KEYPANEL_NOTICE_DELAY (2s), KEYPANEL_SECRET_KEY (unset: blobs stored unencrypted),
// KEYPANEL_LOG_LEVEL (info).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("KEYPANEL_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	dbPath := "keypanel.db"
	if v, ok := os.LookupEnv("KEYPANEL_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	blobName := "micro_saas_api_keys"
	if v, ok := os.LookupEnv("KEYPANEL_BLOB_NAME"); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, errors.New("KEYPANEL_BLOB_NAME must not be empty")
		}
		blobName = v
	}

	noticeDelay := 2 * time.Second
	if v, ok := os.LookupEnv("KEYPANEL_NOTICE_DELAY"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("KEYPANEL_NOTICE_DELAY has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("KEYPANEL_NOTICE_DELAY must be positive, got %s", parsed)
		}
		noticeDelay = parsed
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("KEYPANEL_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("KEYPANEL_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return &Config{
		ListenAddr:  listenAddr,
		DBPath:      dbPath,
		BlobName:    blobName,
		NoticeDelay: noticeDelay,
		SecretKey:   os.Getenv("KEYPANEL_SECRET_KEY"),
		LogLevel:    logLevel,
	}, nil
}

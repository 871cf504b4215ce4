package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	sqliteadapter "github.com/ericfisherdev/keypanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/keypanel/internal/application"
	"github.com/ericfisherdev/keypanel/internal/config"
)

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

// openStore opens the database, applies migrations and returns a loaded
// KeyStore. The returned func closes the database.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application.KeyStore, func(), error) {
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}
	logger.Debug("database opened", "path", db.Path())

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		closeDB()
		return nil, nil, err
	}

	key, err := sqliteadapter.DeriveBlobKey(cfg.SecretKey)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	blobs := sqliteadapter.NewBlobRepo(db, key)

	// A sealed blob that can't be opened would load as empty; refuse to start
	// rather than serve an empty store over it.
	if err := blobs.Check(ctx, cfg.BlobName); errors.Is(err, sqliteadapter.ErrEncryptionKeyNotSet) || errors.Is(err, sqliteadapter.ErrDecryptFailed) {
		closeDB()
		return nil, nil, fmt.Errorf("open key store: %w", err)
	}

	store := application.NewKeyStore(
		blobs,
		application.WithBlobName(cfg.BlobName),
		application.WithLogger(logger),
	)
	store.Load(ctx)
	return store, closeDB, nil
}

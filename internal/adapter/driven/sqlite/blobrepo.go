package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/ericfisherdev/keypanel/internal/domain/port/driven"
)

var (
	// ErrEncryptionKeyNotSet is returned by Load and Save when a blob was sealed
	// with an encryption key but the repo was constructed without one.
	ErrEncryptionKeyNotSet = errors.New("blob is encrypted but no encryption key is configured: set KEYPANEL_SECRET_KEY")

	// ErrDecryptFailed is returned by Load when a sealed blob does not open with
	// the configured key.
	ErrDecryptFailed = errors.New("blob does not decrypt with the configured key")
)

// blobKeyInfo binds derived keys to this use so the same secret can't be
// replayed as a key for anything else.
const blobKeyInfo = "keypanel blob encryption v1"

// Compile-time interface satisfaction check.
var _ driven.BlobStore = (*BlobRepo)(nil)

// BlobRepo is the SQLite implementation of the BlobStore port interface.
// When constructed with a key, blob values are sealed with AES-256-GCM before
// write; otherwise they are stored as-is.
type BlobRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil stores plaintext.
}

// NewBlobRepo creates a new BlobRepo. key must be 32 bytes for AES-256-GCM,
// or nil to store blobs unencrypted.
func NewBlobRepo(db *DB, key []byte) *BlobRepo {
	return &BlobRepo{db: db, key: key}
}

// DeriveBlobKey stretches an operator-supplied secret into a 32-byte
// AES-256 key with HKDF-SHA256. Returns nil for an empty secret.
func DeriveBlobKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, nil
	}

	h := hkdf.New(sha256.New, []byte(secret), nil, []byte(blobKeyInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, fmt.Errorf("derive blob key: %w", err)
	}
	return key, nil
}

// Load returns the blob stored under name. Returns (nil, nil) if no blob exists.
func (r *BlobRepo) Load(ctx context.Context, name string) ([]byte, error) {
	const query = `SELECT value, encrypted FROM blobs WHERE name = ?`

	var value string
	var encrypted bool
	err := r.db.Reader.QueryRowContext(ctx, query, name).Scan(&value, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load blob %q: %w", name, err)
	}

	if !encrypted {
		return []byte(value), nil
	}
	if r.key == nil {
		return nil, ErrEncryptionKeyNotSet
	}

	plaintext, err := r.decrypt(value)
	if err != nil {
		return nil, fmt.Errorf("decrypt blob %q: %w: %w", name, ErrDecryptFailed, err)
	}
	return plaintext, nil
}

// Check reports whether the blob under name is readable with the configured
// key. A missing or plaintext blob is always readable.
func (r *BlobRepo) Check(ctx context.Context, name string) error {
	_, err := r.Load(ctx, name)
	return err
}

// Save stores or replaces the blob under name. A repo without a key never
// replaces a sealed blob; it returns ErrEncryptionKeyNotSet instead.
func (r *BlobRepo) Save(ctx context.Context, name string, data []byte) error {
	value := string(data)
	encrypted := false
	if r.key != nil {
		sealed, err := r.encrypt(data)
		if err != nil {
			return err
		}
		value = sealed
		encrypted = true
	}

	// The conflict WHERE keeps a sealed row untouched when writing plaintext.
	const query = `
		INSERT INTO blobs (name, value, encrypted, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			encrypted = excluded.encrypted,
			updated_at = excluded.updated_at
		WHERE excluded.encrypted = 1 OR blobs.encrypted = 0
	`
	res, err := r.db.Writer.ExecContext(ctx, query, name, value, encrypted)
	if err != nil {
		return fmt.Errorf("save blob %q: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save blob %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("save blob %q: %w", name, ErrEncryptionKeyNotSet)
	}
	return nil
}

// encrypt seals plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *BlobRepo) encrypt(plaintext []byte) (string, error) {
	gcm, err := r.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt opens a base64-encoded AES-256-GCM ciphertext.
func (r *BlobRepo) decrypt(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.aead()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("gcm.Open: %w", err)
	}
	return plaintext, nil
}

func (r *BlobRepo) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}

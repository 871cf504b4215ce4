// Package application contains the key store and the use-case services built on it.
package application

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/keypanel/internal/domain/model"
	"github.com/ericfisherdev/keypanel/internal/domain/port/driven"
)

// DefaultBlobName is the name under which the key collection is persisted.
const DefaultBlobName = "micro_saas_api_keys"

// Confirmation prompts shown before destructive operations.
const (
	RegenerateConfirmMessage = "Regenerate this key? The old key will be invalid."
	DeleteConfirmMessage     = "Delete this API key? This cannot be undone."
)

// Sentinel errors returned by KeyStore operations.
var (
	// ErrLabelRequired indicates Create was called with a blank label.
	ErrLabelRequired = errors.New("label is required")

	// ErrLabelAndKeyRequired indicates Edit was called with a blank label or secret.
	ErrLabelAndKeyRequired = errors.New("label and key are required")

	// ErrKeyNotFound indicates no record exists for the requested id.
	ErrKeyNotFound = errors.New("api key not found")

	// ErrNotConfirmed indicates the user declined a destructive operation.
	ErrNotConfirmed = errors.New("operation not confirmed")
)

// KeyStore holds the ordered key collection in memory and mirrors it to a
// BlobStore after every mutation. Newest records come first.
type KeyStore struct {
	mu       sync.Mutex
	keys     []model.APIKey
	blobs    driven.BlobStore
	blobName string
	now      func() time.Time
	random   io.Reader
	newID    func() string
	logger   *slog.Logger
}

// KeyStoreOption configures optional KeyStore collaborators.
type KeyStoreOption func(*KeyStore)

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) KeyStoreOption {
	return func(s *KeyStore) { s.now = now }
}

// WithRandom overrides the secure random source used to generate secrets.
func WithRandom(r io.Reader) KeyStoreOption {
	return func(s *KeyStore) { s.random = r }
}

// WithIDGenerator overrides the record id generator.
func WithIDGenerator(newID func() string) KeyStoreOption {
	return func(s *KeyStore) { s.newID = newID }
}

// WithBlobName overrides the blob name the collection is persisted under.
func WithBlobName(name string) KeyStoreOption {
	return func(s *KeyStore) { s.blobName = name }
}

// WithLogger sets the logger used to report absorbed persistence failures.
func WithLogger(logger *slog.Logger) KeyStoreOption {
	return func(s *KeyStore) { s.logger = logger }
}

// NewKeyStore creates an empty KeyStore backed by blobs. Call Load once at
// startup to populate it from the persisted blob.
func NewKeyStore(blobs driven.BlobStore, opts ...KeyStoreOption) *KeyStore {
	s := &KeyStore{
		keys:     []model.APIKey{},
		blobs:    blobs,
		blobName: DefaultBlobName,
		now:      func() time.Time { return time.Now().UTC() },
		random:   rand.Reader,
		newID:    uuid.NewString,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the persisted blob. A missing,
// unreadable or corrupt blob yields an empty collection; the failure is
// logged and never returned.
func (s *KeyStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys = []model.APIKey{}

	data, err := s.blobs.Load(ctx, s.blobName)
	if err != nil {
		s.logger.Warn("failed to read key blob, starting empty", "blob", s.blobName, "error", err)
		return
	}
	if len(data) == 0 {
		return
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("corrupt key blob, starting empty", "blob", s.blobName, "error", err)
		return
	}

	for i, raw := range records {
		key, err := decodeKey(raw)
		if err != nil {
			s.logger.Warn("skipping unreadable key record", "blob", s.blobName, "index", i, "error", err)
			continue
		}
		s.keys = append(s.keys, key)
	}
	s.logger.Debug("key blob loaded", "blob", s.blobName, "count", len(s.keys))
}

// decodeKey decodes one blob record. Dates that don't parse are left unset
// so the record still loads and displays a placeholder date.
func decodeKey(raw json.RawMessage) (model.APIKey, error) {
	var key model.APIKey
	if err := json.Unmarshal(raw, &key); err == nil {
		if key.ID == "" {
			return model.APIKey{}, errors.New("record has no id")
		}
		return key, nil
	}

	var rec struct {
		ID         string          `json:"id"`
		Label      string          `json:"label"`
		Secret     string          `json:"key"`
		CreatedAt  json.RawMessage `json:"createdAt"`
		LastUsedAt json.RawMessage `json:"lastUsedAt"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.APIKey{}, fmt.Errorf("decode key record: %w", err)
	}
	if rec.ID == "" {
		return model.APIKey{}, errors.New("record has no id")
	}

	key = model.APIKey{ID: rec.ID, Label: rec.Label, Secret: rec.Secret}
	var createdAt time.Time
	if json.Unmarshal(rec.CreatedAt, &createdAt) == nil {
		key.CreatedAt = createdAt
	}
	var lastUsedAt *time.Time
	if json.Unmarshal(rec.LastUsedAt, &lastUsedAt) == nil {
		key.LastUsedAt = lastUsedAt
	}
	return key, nil
}

// List returns a copy of the collection in display order.
func (s *KeyStore) List() []model.APIKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.keys)
}

// Len returns the number of stored records.
func (s *KeyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Get returns the record with the given id.
func (s *KeyStore) Get(id string) (model.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.APIKey{}, ErrKeyNotFound
	}
	return s.keys[i], nil
}

// Create prepends a new record. The secret is the trimmed input, or a freshly
// generated token when the input is blank. Returns ErrLabelRequired without
// touching the collection if the trimmed label is empty.
func (s *KeyStore) Create(ctx context.Context, label, secret string) (model.APIKey, error) {
	label = strings.TrimSpace(label)
	secret = strings.TrimSpace(secret)
	if label == "" {
		return model.APIKey{}, ErrLabelRequired
	}

	if secret == "" {
		generated, err := GenerateSecret(s.random)
		if err != nil {
			return model.APIKey{}, fmt.Errorf("generate secret: %w", err)
		}
		secret = generated
	}

	key := model.APIKey{
		ID:        s.newID(),
		Label:     label,
		Secret:    secret,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys = append([]model.APIKey{key}, s.keys...)
	s.commit(ctx)
	return key, nil
}

// Edit overwrites the label and secret of an existing record in place. ID and
// CreatedAt are preserved.
func (s *KeyStore) Edit(ctx context.Context, id, label, secret string) (model.APIKey, error) {
	label = strings.TrimSpace(label)
	secret = strings.TrimSpace(secret)
	if label == "" || secret == "" {
		return model.APIKey{}, ErrLabelAndKeyRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.APIKey{}, ErrKeyNotFound
	}

	s.keys[i].Label = label
	s.keys[i].Secret = secret
	s.commit(ctx)
	return s.keys[i], nil
}

// Regenerate replaces a record's secret with a freshly generated one and resets
// CreatedAt, after confirm approves RegenerateConfirmMessage.
func (s *KeyStore) Regenerate(ctx context.Context, id string, confirm driven.Confirmer) (model.APIKey, error) {
	if _, err := s.Get(id); err != nil {
		return model.APIKey{}, err
	}
	if !confirm.Confirm(RegenerateConfirmMessage) {
		return model.APIKey{}, ErrNotConfirmed
	}

	secret, err := GenerateSecret(s.random)
	if err != nil {
		return model.APIKey{}, fmt.Errorf("generate secret: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The record may have been deleted while the confirmation was pending.
	i := s.indexOf(id)
	if i < 0 {
		return model.APIKey{}, ErrKeyNotFound
	}

	s.keys[i].Secret = secret
	s.keys[i].CreatedAt = s.now()
	s.commit(ctx)
	return s.keys[i], nil
}

// Delete removes a record after confirm approves DeleteConfirmMessage. The
// relative order of the remaining records is unchanged.
func (s *KeyStore) Delete(ctx context.Context, id string, confirm driven.Confirmer) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if !confirm.Confirm(DeleteConfirmMessage) {
		return ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrKeyNotFound
	}

	s.keys = slices.Delete(s.keys, i, i+1)
	s.commit(ctx)
	return nil
}

// commit writes the full collection to the blob store. Callers must hold s.mu.
// Write failures are logged and absorbed; the in-memory state stays authoritative.
func (s *KeyStore) commit(ctx context.Context) {
	data, err := json.Marshal(s.keys)
	if err != nil {
		s.logger.Error("failed to encode key blob", "blob", s.blobName, "error", err)
		return
	}
	if err := s.blobs.Save(ctx, s.blobName, data); err != nil {
		s.logger.Warn("failed to write key blob", "blob", s.blobName, "error", err)
	}
}

// indexOf returns the position of id in s.keys, or -1. Callers must hold s.mu.
func (s *KeyStore) indexOf(id string) int {
	return slices.IndexFunc(s.keys, func(k model.APIKey) bool { return k.ID == id })
}

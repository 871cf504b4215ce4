package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ericfisherdev/keypanel/internal/domain/model"
	"github.com/ericfisherdev/keypanel/internal/domain/port/driven"
)

// Notices shown after user actions.
const (
	NoticeCreated            = "API key created"
	NoticeDeleted            = "API key deleted"
	NoticeCopied             = "Copied to clipboard"
	NoticeCopyFailed         = "Copy failed"
	NoticeRegenerated        = "API key regenerated"
	NoticeUpdated            = "Key updated"
	NoticeLabelAndKeyMissing = "Label and key are required"
)

// clipboardTimeout bounds a single clipboard write.
const clipboardTimeout = 3 * time.Second

// KeyService applies user actions to the KeyStore on behalf of one Session,
// translating outcomes into transient notices. It depends only on port
// interfaces and the store.
type KeyService struct {
	store     *KeyStore
	clipboard driven.Clipboard
	logger    *slog.Logger
}

// NewKeyService creates a KeyService with the required dependencies.
func NewKeyService(store *KeyStore, clipboard driven.Clipboard, logger *slog.Logger) *KeyService {
	return &KeyService{
		store:     store,
		clipboard: clipboard,
		logger:    logger,
	}
}

// Store returns the underlying KeyStore.
func (s *KeyService) Store() *KeyStore {
	return s.store
}

// Create adds a key. A blank label is ignored silently, matching a disabled
// create button; other failures are returned.
func (s *KeyService) Create(ctx context.Context, sess *Session, label, secret string) error {
	key, err := s.store.Create(ctx, label, secret)
	if errors.Is(err, ErrLabelRequired) {
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("api key created", "id", key.ID)
	sess.Notice().Set(NoticeCreated)
	return nil
}

// StartEdit puts the record into edit mode with its current values as the
// draft. Unknown ids are ignored.
func (s *KeyService) StartEdit(sess *Session, id string) {
	key, err := s.store.Get(id)
	if err != nil {
		return
	}
	sess.StartEdit(key.ID, key.Label, key.Secret)
}

// SaveEdit commits the draft for the record in edit mode. On validation
// failure the notice reports it and edit mode is kept with the rejected values.
func (s *KeyService) SaveEdit(ctx context.Context, sess *Session, label, secret string) error {
	draft, ok := sess.Editing()
	if !ok {
		return nil
	}

	_, err := s.store.Edit(ctx, draft.ID, label, secret)
	switch {
	case errors.Is(err, ErrLabelAndKeyRequired):
		sess.StartEdit(draft.ID, label, secret)
		sess.Notice().Set(NoticeLabelAndKeyMissing)
		return nil
	case errors.Is(err, ErrKeyNotFound):
		sess.CancelEdit()
		return err
	case err != nil:
		return err
	}

	sess.CancelEdit()
	s.logger.Info("api key updated", "id", draft.ID)
	sess.Notice().Set(NoticeUpdated)
	return nil
}

// CancelEdit leaves edit mode without saving.
func (s *KeyService) CancelEdit(sess *Session) {
	sess.CancelEdit()
}

// ToggleReveal flips whether a record's secret is shown in full.
func (s *KeyService) ToggleReveal(sess *Session, id string) {
	sess.ToggleReveal(id)
}

// Copy writes the record's secret to the clipboard and reports the outcome
// through the notice.
func (s *KeyService) Copy(ctx context.Context, sess *Session, id string) error {
	key, err := s.store.Get(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, clipboardTimeout)
	defer cancel()

	if err := s.clipboard.WriteText(ctx, key.Secret); err != nil {
		s.logger.Warn("clipboard write failed", "id", id, "error", err)
		sess.Notice().Set(NoticeCopyFailed)
		return nil
	}

	sess.Notice().Set(NoticeCopied)
	return nil
}

// Regenerate replaces the record's secret after confirmation. A declined
// confirmation returns ErrNotConfirmed and changes nothing.
func (s *KeyService) Regenerate(ctx context.Context, sess *Session, id string, confirm driven.Confirmer) (model.APIKey, error) {
	key, err := s.store.Regenerate(ctx, id, confirm)
	if err != nil {
		return model.APIKey{}, err
	}

	s.logger.Info("api key regenerated", "id", id)
	sess.Notice().Set(NoticeRegenerated)
	return key, nil
}

// Delete removes the record after confirmation. A declined confirmation
// returns ErrNotConfirmed and changes nothing.
func (s *KeyService) Delete(ctx context.Context, sess *Session, id string, confirm driven.Confirmer) error {
	if err := s.store.Delete(ctx, id, confirm); err != nil {
		return err
	}

	sess.forget(id)
	s.logger.Info("api key deleted", "id", id)
	sess.Notice().Set(NoticeDeleted)
	return nil
}

package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EditDraft holds the in-progress values of the single record being edited.
type EditDraft struct {
	ID     string
	Label  string
	Secret string
}

// Session is the transient, unpersisted dashboard state of one browser:
// which secrets are revealed, which record (if any) is being edited, and the
// current notice.
type Session struct {
	mu       sync.Mutex
	revealed map[string]struct{}
	editing  *EditDraft
	notice   *Notice
}

// NewSession creates an empty Session whose notice clears after noticeDelay.
func NewSession(noticeDelay time.Duration) *Session {
	return &Session{
		revealed: make(map[string]struct{}),
		notice:   NewNotice(noticeDelay),
	}
}

// Notice returns the session's status message slot.
func (s *Session) Notice() *Notice {
	return s.notice
}

// ToggleReveal flips whether the secret of id is shown in full.
func (s *Session) ToggleReveal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.revealed[id]; ok {
		delete(s.revealed, id)
		return
	}
	s.revealed[id] = struct{}{}
}

// IsRevealed reports whether the secret of id is currently shown in full.
func (s *Session) IsRevealed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revealed[id]
	return ok
}

// forget drops id from the revealed set and cancels an edit targeting it.
func (s *Session) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.revealed, id)
	if s.editing != nil && s.editing.ID == id {
		s.editing = nil
	}
}

// StartEdit makes id the single edit target. Any unsaved draft for another
// record is discarded without warning.
func (s *Session) StartEdit(id, label, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = &EditDraft{ID: id, Label: label, Secret: secret}
}

// Editing returns the current draft and whether an edit is in progress.
func (s *Session) Editing() (EditDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing == nil {
		return EditDraft{}, false
	}
	return *s.editing, true
}

// CancelEdit leaves edit mode, discarding the draft.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = nil
}

// Session registry defaults.
const (
	DefaultSessionIdleTimeout = 12 * time.Hour
	DefaultMaxSessions        = 1024
)

// SessionRegistry hands out one Session per browser, keyed by an opaque id.
// Sessions idle for longer than the idle timeout are dropped by Sweep, and
// the least recently seen session is evicted once the cap is reached.
type SessionRegistry struct {
	mu          sync.Mutex
	sessions    map[string]*sessionEntry
	noticeDelay time.Duration
	idleTimeout time.Duration
	maxSessions int
	now         func() time.Time
	logger      *slog.Logger
}

type sessionEntry struct {
	sess     *Session
	lastSeen time.Time
}

// SessionRegistryOption configures optional SessionRegistry settings.
type SessionRegistryOption func(*SessionRegistry)

// WithIdleTimeout sets how long an unused session is kept.
func WithIdleTimeout(d time.Duration) SessionRegistryOption {
	return func(r *SessionRegistry) { r.idleTimeout = d }
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) SessionRegistryOption {
	return func(r *SessionRegistry) { r.maxSessions = n }
}

// WithSessionClock sets the clock used for idle tracking.
func WithSessionClock(now func() time.Time) SessionRegistryOption {
	return func(r *SessionRegistry) { r.now = now }
}

// WithSessionLogger sets the registry's logger.
func WithSessionLogger(logger *slog.Logger) SessionRegistryOption {
	return func(r *SessionRegistry) { r.logger = logger }
}

// NewSessionRegistry creates an empty registry whose sessions use noticeDelay.
func NewSessionRegistry(noticeDelay time.Duration, opts ...SessionRegistryOption) *SessionRegistry {
	r := &SessionRegistry{
		sessions:    make(map[string]*sessionEntry),
		noticeDelay: noticeDelay,
		idleTimeout: DefaultSessionIdleTimeout,
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the session for id, creating it if needed. An empty or unknown
// id gets a fresh session under a newly minted id, which is returned.
func (r *SessionRegistry) Get(id string) (string, *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if entry, ok := r.sessions[id]; ok && id != "" {
		entry.lastSeen = now
		return id, entry.sess
	}

	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		r.evictOldestLocked()
	}

	id = uuid.NewString()
	sess := NewSession(r.noticeDelay)
	r.sessions[id] = &sessionEntry{sess: sess, lastSeen: now}
	return id, sess
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions not seen within the idle timeout and returns how many
// were removed.
func (r *SessionRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTimeout)
	removed := 0
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			r.dropLocked(id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is canceled.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("session sweeper stopped")
			return
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 {
				r.logger.Info("idle sessions removed", "removed", removed, "live", r.Len())
			}
		}
	}
}

func (r *SessionRegistry) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, entry := range r.sessions {
		if oldestID == "" || entry.lastSeen.Before(oldest) {
			oldestID, oldest = id, entry.lastSeen
		}
	}
	if oldestID != "" {
		r.dropLocked(oldestID)
	}
}

// dropLocked removes a session and stops its notice timer. Callers must hold r.mu.
func (r *SessionRegistry) dropLocked(id string) {
	if entry, ok := r.sessions[id]; ok {
		entry.sess.Notice().Clear()
		delete(r.sessions, id)
	}
}

package application_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/keypanel/internal/domain/port/driven"
)

// --- Mock implementations ---

// memBlobStore is an in-memory driven.BlobStore.
type memBlobStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	saves   int
	loadErr error
	saveErr error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string][]byte)}
}

func (m *memBlobStore) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	data, ok := m.blobs[name]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (m *memBlobStore) Save(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.blobs[name] = append([]byte(nil), data...)
	return nil
}

func (m *memBlobStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// fakeClipboard records the last written text.
type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteText(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

// recordingConfirmer answers every prompt with answer and records the prompts.
type recordingConfirmer struct {
	answer   bool
	messages []string
}

func (c *recordingConfirmer) Confirm(message string) bool {
	c.messages = append(c.messages, message)
	return c.answer
}

var (
	alwaysYes driven.Confirmer = driven.ConfirmFunc(func(string) bool { return true })
	alwaysNo  driven.Confirmer = driven.ConfirmFunc(func(string) bool { return false })
)

// stepClock returns a deterministic, strictly increasing time on each call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

// seqIDs returns ids "id-1", "id-2", ... in call order.
func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// failingReader always fails, standing in for an unavailable entropy source.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

var _ io.Reader = failingReader{}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

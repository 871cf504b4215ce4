// Package clipboard adapts the host clipboard to the driven.Clipboard port.
package clipboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/ericfisherdev/keypanel/internal/domain/port/driven"
)

// ErrUnsupported is returned when no clipboard utility is available on the
// host (for example a headless Linux box without xclip, xsel or wl-copy).
var ErrUnsupported = errors.New("clipboard not supported on this host")

// Compile-time interface satisfaction check.
var _ driven.Clipboard = (*System)(nil)

// System writes to the clipboard of the machine keypanel runs on. Since the
// server binds to loopback by default, that is the user's own desktop.
type System struct {
	write       func(string) error
	unsupported bool
}

// NewSystem creates a System clipboard backed by github.com/atotto/clipboard.
func NewSystem() *System {
	return &System{
		write:       clipboard.WriteAll,
		unsupported: clipboard.Unsupported,
	}
}

// WriteText copies text to the clipboard. The underlying call shells out to
// a platform utility and cannot be interrupted, so it runs in a goroutine and
// ctx only bounds how long the caller waits for it.
func (s *System) WriteText(ctx context.Context, text string) error {
	if s.unsupported {
		return ErrUnsupported
	}

	done := make(chan error, 1)
	go func() { done <- s.write(text) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("write clipboard: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("write clipboard: %w", ctx.Err())
	}
}

package application

import (
	"sync"
	"time"
)

// DefaultNoticeDelay is how long a notice stays visible before clearing itself.
const DefaultNoticeDelay = 2 * time.Second

// Notice is a single-slot transient status message. Setting a message replaces
// any pending one and restarts the clear timer; there is no queue.
type Notice struct {
	mu      sync.Mutex
	message string
	delay   time.Duration
	timer   *time.Timer
	gen     uint64
}

// NewNotice creates an empty Notice that clears itself delay after each Set.
// A non-positive delay falls back to DefaultNoticeDelay.
func NewNotice(delay time.Duration) *Notice {
	if delay <= 0 {
		delay = DefaultNoticeDelay
	}
	return &Notice{delay: delay}
}

// Set replaces the current message and restarts the auto-clear timer.
func (n *Notice) Set(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked()
	n.message = message
	if message == "" {
		return
	}

	// A timer that already fired but is blocked on mu sees a stale generation
	// and leaves the newer message alone.
	gen := n.gen
	n.timer = time.AfterFunc(n.delay, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.gen == gen {
			n.message = ""
			n.timer = nil
		}
	})
}

// Clear empties the slot and cancels the pending timer.
func (n *Notice) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked()
	n.message = ""
}

// Current returns the visible message, or "" when the slot is empty.
func (n *Notice) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message
}

// Delay returns the auto-clear delay.
func (n *Notice) Delay() time.Duration {
	return n.delay
}

func (n *Notice) stopLocked() {
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

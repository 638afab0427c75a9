// Package notice implements a short-lived status message that clears itself.
package notice

import (
	"sync"
	"time"
)

const DefaultTTL = 3 * time.Second

// Notice holds at most one message. Showing a new message cancels the pending
// clear of the previous one, so an old timer never wipes a newer message.
type Notice struct {
	ttl      time.Duration
	onChange func(string)

	mu    sync.Mutex
	text  string
	gen   uint64
	timer *time.Timer
}

// New returns a Notice whose messages live for ttl. onChange, if non-nil, is
// called with the new text whenever it changes, including the automatic clear.
func New(ttl time.Duration, onChange func(string)) *Notice {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notice{ttl: ttl, onChange: onChange}
}

// Show replaces the current message and restarts the clear timer.
func (n *Notice) Show(text string) {
	n.mu.Lock()
	n.stopLocked()
	n.gen++
	gen := n.gen
	n.text = text
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(gen) })
	n.mu.Unlock()

	n.changed(text)
}

// Current returns the visible message, or "".
func (n *Notice) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.text
}

// Clear removes the message immediately.
func (n *Notice) Clear() {
	n.mu.Lock()
	n.stopLocked()
	n.gen++
	had := n.text != ""
	n.text = ""
	n.mu.Unlock()

	if had {
		n.changed("")
	}
}

// Stop cancels any pending timer without notifying.
func (n *Notice) Stop() {
	n.mu.Lock()
	n.stopLocked()
	n.gen++
	n.mu.Unlock()
}

func (n *Notice) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		return
	}
	n.text = ""
	n.timer = nil
	n.mu.Unlock()

	n.changed("")
}

func (n *Notice) stopLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notice) changed(text string) {
	if n.onChange != nil {
		n.onChange(text)
	}
}

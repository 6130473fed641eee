package autoreply

import (
	"sync"
	"time"

	"github.com/ykvlv/autoreply-bot/internal/clock"
)

// Cooldown tracks the last auto-reply per recipient so a chatty sender gets
// at most one reply per window. Memory stays bounded: once more than
// maxTracked recipients are known, entries older than the window are dropped
// on the next MarkReplied.
type Cooldown struct {
	mu         sync.Mutex
	clock      clock.Clock
	window     time.Duration
	maxTracked int
	last       map[int64]time.Time
}

func NewCooldown(c clock.Clock, window time.Duration, maxTracked int) *Cooldown {
	return &Cooldown{
		clock:      c,
		window:     window,
		maxTracked: maxTracked,
		last:       make(map[int64]time.Time),
	}
}

// ShouldReply is false while recipient is inside its cooldown window.
func (c *Cooldown) ShouldReply(recipient int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	last, ok := c.last[recipient]
	if !ok {
		return true
	}
	return c.clock.Now().Sub(last) >= c.window
}

// MarkReplied records a reply to recipient at the current time.
func (c *Cooldown) MarkReplied(recipient int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	c.last[recipient] = now
	if len(c.last) <= c.maxTracked {
		return
	}
	for id, t := range c.last {
		if now.Sub(t) >= c.window {
			delete(c.last, id)
		}
	}
}

// Len is the number of tracked recipients.
func (c *Cooldown) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.last)
}

// Window is the configured cooldown duration.
func (c *Cooldown) Window() time.Duration { return c.window }

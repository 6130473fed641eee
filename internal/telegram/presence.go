package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/ykvlv/autoreply-bot/internal/clock"
)

// ActivityPresence infers the owner's status from their own traffic to the bot.
// The Bot API exposes no user status, so the owner counts as online while
// their last message to the bot is younger than awayAfter.
type ActivityPresence struct {
	mu        sync.Mutex
	clock     clock.Clock
	awayAfter time.Duration
	lastSeen  time.Time
}

func NewActivityPresence(c clock.Clock, awayAfter time.Duration) *ActivityPresence {
	return &ActivityPresence{clock: c, awayAfter: awayAfter}
}

// Touch records owner activity now.
func (p *ActivityPresence) Touch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = p.clock.Now()
}

// LastSeen is the last recorded activity; zero if none.
func (p *ActivityPresence) LastSeen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// OwnerOnline implements autoreply.PresenceSource.
func (p *ActivityPresence) OwnerOnline(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastSeen.IsZero() {
		return false, nil
	}
	return p.clock.Now().Sub(p.lastSeen) < p.awayAfter, nil
}

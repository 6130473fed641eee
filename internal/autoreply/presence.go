package autoreply

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ykvlv/autoreply-bot/internal/clock"
)

// PresenceSource reports whether the owner is currently online.
// Implementations may be slow or rate limited by the transport.
type PresenceSource interface {
	OwnerOnline(ctx context.Context) (bool, error)
}

// Presence is the cached view of the owner's status used by the reply pipeline.
type Presence interface {
	Online(ctx context.Context) bool
}

// PolledPresence queries its source at most once per interval and serves the
// cached answer in between. A failed poll counts as "not online".
type PolledPresence struct {
	mu      sync.Mutex
	src     PresenceSource
	clock   clock.Clock
	limiter *rate.Limiter
	log     *zap.Logger
	online  bool
}

func NewPolledPresence(src PresenceSource, c clock.Clock, interval time.Duration, log *zap.Logger) *PolledPresence {
	return &PolledPresence{
		src:     src,
		clock:   c,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		log:     log,
	}
}

func (p *PolledPresence) Online(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.limiter.AllowN(p.clock.Now(), 1) {
		return p.online
	}
	online, err := p.src.OwnerOnline(ctx)
	if err != nil {
		p.log.Warn("presence poll failed", zap.Error(err))
		online = false
	}
	if online != p.online {
		p.log.Debug("owner presence changed", zap.Bool("online", online))
	}
	p.online = online
	return online
}

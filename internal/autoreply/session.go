// Package autoreply decides whether an incoming private message gets an
// automatic reply and which text it carries, and owns the commands that
// change that decision.
package autoreply

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/autoreply-bot/internal/clock"
	"github.com/ykvlv/autoreply-bot/internal/store"
)

// Settings are the per-owner knobs of a Session.
type Settings struct {
	OwnerID            int64
	DefaultMessage     string
	Cooldown           time.Duration
	CooldownMaxTracked int
	ConfirmTTL         time.Duration
}

// Session bundles everything that belongs to one running owner: the
// persistent components and the in-memory cooldown and presence caches.
type Session struct {
	Controls *Controls
	Rules    *Rules
	Resolver *Resolver
	Temp     *TempMode
	Gate     *Gate
	Cooldown *Cooldown

	repo     store.Repo
	clock    clock.Clock
	presence Presence
	log      *zap.Logger
	ownerID  int64
}

func NewSession(repo store.Repo, c clock.Clock, presence Presence, s Settings, log *zap.Logger) *Session {
	log = log.With(zap.Int64("owner_id", s.OwnerID))
	temp := &TempMode{repo: repo, clock: c, log: log, ownerID: s.OwnerID, defaultMessage: s.DefaultMessage}
	return &Session{
		Controls: &Controls{repo: repo, clock: c, log: log, ownerID: s.OwnerID, defaultMessage: s.DefaultMessage, temp: temp},
		Rules:    &Rules{repo: repo, log: log, ownerID: s.OwnerID, temp: temp},
		Resolver: &Resolver{
			repo:           repo,
			clock:          c,
			log:            log,
			ownerID:        s.OwnerID,
			defaultMessage: s.DefaultMessage,
			temp:           temp,
			spawn:          func(f func()) { go f() },
		},
		Temp:     temp,
		Gate:     &Gate{repo: repo, clock: c, log: log, ownerID: s.OwnerID, ttl: s.ConfirmTTL, temp: temp},
		Cooldown: NewCooldown(c, s.Cooldown, s.CooldownMaxTracked),
		repo:     repo,
		clock:    c,
		presence: presence,
		log:      log,
		ownerID:  s.OwnerID,
	}
}

// OwnerID is the account this session replies for.
func (s *Session) OwnerID() int64 { return s.ownerID }

// IsOwner reports whether id is the session owner.
func (s *Session) IsOwner(id int64) bool { return id == s.ownerID }

// OwnerOnline is the cached presence signal.
func (s *Session) OwnerOnline(ctx context.Context) bool { return s.presence.Online(ctx) }

// Incoming is a message as seen by the reply pipeline.
type Incoming struct {
	SenderID int64
	ChatID   int64
	Private  bool
	FromBot  bool
	Text     string
}

// SkipReason says why no reply is sent.
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipDisabled    SkipReason = "auto-reply disabled"
	SkipNotPrivate  SkipReason = "not a private chat"
	SkipBot         SkipReason = "sender is a bot"
	SkipOwner       SkipReason = "sender is the owner"
	SkipCommand     SkipReason = "command"
	SkipCooldown    SkipReason = "cooldown"
	SkipOwnerOnline SkipReason = "owner online"
)

// Decision is the pipeline verdict. Resolution is set only when Reply is true.
type Decision struct {
	Reply      bool
	Skip       SkipReason
	Resolution Resolution
}

// HandleIncoming runs the reply pipeline for msg. A positive decision has
// already been counted in the ledger; the caller sends the text and then
// calls MarkReplied.
func (s *Session) HandleIncoming(ctx context.Context, msg Incoming) (Decision, error) {
	st, err := s.Controls.State(ctx)
	if err != nil {
		return Decision{}, err
	}
	switch {
	case !st.AutoReplyEnabled:
		return skip(SkipDisabled), nil
	case !msg.Private:
		return skip(SkipNotPrivate), nil
	case msg.FromBot:
		return skip(SkipBot), nil
	case s.IsOwner(msg.SenderID):
		return skip(SkipOwner), nil
	case strings.HasPrefix(msg.Text, "/"):
		return skip(SkipCommand), nil
	case !s.Cooldown.ShouldReply(msg.SenderID):
		s.log.Debug("recipient in cooldown", zap.Int64("recipient", msg.SenderID))
		return skip(SkipCooldown), nil
	case s.presence.Online(ctx):
		s.log.Debug("owner online, not replying", zap.Int64("recipient", msg.SenderID))
		return skip(SkipOwnerOnline), nil
	}

	if err := s.repo.IncrementLedger(ctx, s.ownerID, msg.SenderID, clock.Today(s.clock)); err != nil {
		return Decision{}, err
	}
	res, err := s.Resolver.Resolve(ctx)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Reply: true, Resolution: res}, nil
}

// MarkReplied starts the cooldown for recipient after a successful send.
func (s *Session) MarkReplied(recipient int64) {
	s.Cooldown.MarkReplied(recipient)
}

func skip(r SkipReason) Decision { return Decision{Skip: r} }

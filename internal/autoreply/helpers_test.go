package autoreply

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ykvlv/autoreply-bot/internal/clock"
	"github.com/ykvlv/autoreply-bot/internal/domain"
	"github.com/ykvlv/autoreply-bot/internal/store"
)

const testOwner int64 = 1001

type fakePresence struct {
	mu     sync.Mutex
	online bool
}

func (f *fakePresence) Online(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online
}

func (f *fakePresence) set(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online = v
}

type harness struct {
	ctx      context.Context
	repo     *store.SQLiteRepo
	clock    *clock.Fake
	presence *fakePresence
	session  *Session
	spawned  []func()
}

// at builds a UTC instant on a fixed day.
func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	repo, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	h := &harness{
		ctx:      ctx,
		repo:     repo,
		clock:    clock.NewFake(at(10, 30)),
		presence: &fakePresence{},
	}
	h.session = NewSession(repo, h.clock, h.presence, Settings{
		OwnerID:            testOwner,
		DefaultMessage:     "I'm away right now.",
		Cooldown:           5 * time.Minute,
		CooldownMaxTracked: 100,
		ConfirmTTL:         time.Minute,
	}, zap.NewNop())
	h.session.Resolver.spawn = func(f func()) { h.spawned = append(h.spawned, f) }
	return h
}

// runSpawned executes background work queued by the resolver.
func (h *harness) runSpawned() {
	for _, f := range h.spawned {
		f()
	}
	h.spawned = nil
}

func (h *harness) addRule(t *testing.T, category, window string) domain.TimeRule {
	t.Helper()
	start, end, err := domain.ParseRange(window)
	require.NoError(t, err)
	r, err := h.session.Rules.Add(h.ctx, category, start, end)
	require.NoError(t, err)
	return r
}

func (h *harness) enableRules(t *testing.T) {
	t.Helper()
	_, err := h.session.Controls.SetAutoReply(h.ctx, true)
	require.NoError(t, err)
	_, err = h.session.Controls.SetCustomRules(h.ctx, true)
	require.NoError(t, err)
}

type ruleTuple struct {
	Category string
	Window   string
}

func (h *harness) ruleSet(t *testing.T) []ruleTuple {
	t.Helper()
	rules, err := h.session.Rules.List(h.ctx)
	require.NoError(t, err)
	out := make([]ruleTuple, 0, len(rules))
	for _, r := range rules {
		out = append(out, ruleTuple{r.Category, r.Window()})
	}
	return out
}

func categoryMsg(t *testing.T, key string) string {
	t.Helper()
	msg, ok := domain.CategoryMessage(key)
	require.True(t, ok)
	return msg
}

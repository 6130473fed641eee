package autoreply

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ykvlv/autoreply-bot/internal/clock"
	"github.com/ykvlv/autoreply-bot/internal/domain"
	"github.com/ykvlv/autoreply-bot/internal/store"
)

// Controls owns the ReplyState toggles driven by /on, /off, /set, /customon and /customoff.
// Every change is a read-modify-write inside one store transaction.
type Controls struct {
	repo           store.Repo
	clock          clock.Clock
	log            *zap.Logger
	ownerID        int64
	defaultMessage string
	temp           *TempMode
}

// loadState returns the stored state or the initial one (auto-reply off,
// custom rules off, configured default message).
func loadState(ctx context.Context, repo store.StateRepo, ownerID int64, defaultMessage string) (domain.ReplyState, error) {
	st, err := repo.GetReplyState(ctx, ownerID)
	if err != nil {
		return domain.ReplyState{}, err
	}
	if st == nil {
		return domain.ReplyState{OwnerID: ownerID, DefaultMessage: defaultMessage}, nil
	}
	return *st, nil
}

// Ensure persists the initial state if none exists and returns the current one.
func (c *Controls) Ensure(ctx context.Context) (domain.ReplyState, error) {
	var st domain.ReplyState
	err := c.repo.Atomically(ctx, func(tx store.Repo) error {
		existing, err := tx.GetReplyState(ctx, c.ownerID)
		if err != nil {
			return err
		}
		if existing != nil {
			st = *existing
			return nil
		}
		st = domain.ReplyState{OwnerID: c.ownerID, DefaultMessage: c.defaultMessage, UpdatedAt: c.clock.Now()}
		c.log.Info("initialized reply state")
		return tx.SaveReplyState(ctx, &st)
	})
	return st, err
}

// State returns the current state without persisting anything.
func (c *Controls) State(ctx context.Context) (domain.ReplyState, error) {
	return loadState(ctx, c.repo, c.ownerID, c.defaultMessage)
}

// SetAutoReply turns auto-reply on or off. Both directions also switch custom
// rules off, so enabling always starts from the default message.
// changed is false when auto-reply was already in the requested state.
func (c *Controls) SetAutoReply(ctx context.Context, enabled bool) (changed bool, err error) {
	err = c.update(ctx, func(st *domain.ReplyState) bool {
		if st.AutoReplyEnabled == enabled {
			return false
		}
		st.AutoReplyEnabled = enabled
		st.CustomRulesEnabled = false
		return true
	}, &changed)
	if err == nil && changed {
		c.log.Info("auto-reply toggled", zap.Bool("enabled", enabled))
	}
	return changed, err
}

// SetDefaultMessage stores msg and enables auto-reply.
func (c *Controls) SetDefaultMessage(ctx context.Context, msg string) error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return domain.ErrEmptyMessage
	}
	var changed bool
	err := c.update(ctx, func(st *domain.ReplyState) bool {
		st.DefaultMessage = msg
		st.AutoReplyEnabled = true
		return true
	}, &changed)
	if err == nil {
		c.log.Info("default message set")
	}
	return err
}

// SetCustomRules toggles time-rule matching. Enabling is refused while a
// temporary override is active, since reset restores the saved flag anyway.
func (c *Controls) SetCustomRules(ctx context.Context, enabled bool) (changed bool, err error) {
	err = c.repo.Atomically(ctx, func(tx store.Repo) error {
		ov, _, err := c.temp.settle(ctx, tx)
		if err != nil {
			return err
		}
		if enabled && ov != nil {
			return domain.ErrOverrideActive
		}
		st, err := loadState(ctx, tx, c.ownerID, c.defaultMessage)
		if err != nil {
			return err
		}
		if st.CustomRulesEnabled == enabled {
			return nil
		}
		st.CustomRulesEnabled = enabled
		st.UpdatedAt = c.clock.Now()
		changed = true
		return tx.SaveReplyState(ctx, &st)
	})
	if err == nil && changed {
		c.log.Info("custom rules toggled", zap.Bool("enabled", enabled))
	}
	return changed, err
}

func (c *Controls) update(ctx context.Context, mutate func(*domain.ReplyState) bool, changed *bool) error {
	return c.repo.Atomically(ctx, func(tx store.Repo) error {
		if _, _, err := c.temp.settle(ctx, tx); err != nil {
			return err
		}
		st, err := loadState(ctx, tx, c.ownerID, c.defaultMessage)
		if err != nil {
			return err
		}
		if !mutate(&st) {
			return nil
		}
		*changed = true
		st.UpdatedAt = c.clock.Now()
		return tx.SaveReplyState(ctx, &st)
	})
}

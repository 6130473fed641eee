package autoreply

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/autoreply-bot/internal/clock"
	"github.com/ykvlv/autoreply-bot/internal/domain"
	"github.com/ykvlv/autoreply-bot/internal/store"
)

// ActivateResult describes what Activate did.
type ActivateResult struct {
	Override domain.TempOverride
	// Switched is true when an override was already active and only its
	// category (and expiry) changed.
	Switched bool
}

// ResetResult describes a completed restore.
type ResetResult struct {
	Category           string
	Restored           int
	CustomRulesEnabled bool
}

// TempMode puts the bot into a single-category override and restores the
// rule book afterwards.
type TempMode struct {
	repo           store.Repo
	clock          clock.Clock
	log            *zap.Logger
	ownerID        int64
	defaultMessage string
}

// Activate switches replies to category. The first activation snapshots the
// live rules and the custom-rules flag and turns custom rules off, all in one
// transaction. While an override is active further calls only change the
// category and expiry; the saved baseline is never replaced.
// ttl <= 0 means the override lasts until Reset.
func (m *TempMode) Activate(ctx context.Context, category string, ttl time.Duration) (ActivateResult, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !domain.IsCategory(category) {
		return ActivateResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}

	now := m.clock.Now()
	var expiresAt *time.Time
	if ttl > 0 {
		t := now.Add(ttl)
		expiresAt = &t
	}

	var res ActivateResult
	err := m.repo.Atomically(ctx, func(tx store.Repo) error {
		ov, _, err := m.settle(ctx, tx)
		if err != nil {
			return err
		}
		if ov != nil {
			ov.Category = category
			ov.ExpiresAt = expiresAt
			res = ActivateResult{Override: *ov, Switched: true}
			return tx.SaveOverride(ctx, ov)
		}

		rules, err := tx.ListRules(ctx, m.ownerID)
		if err != nil {
			return err
		}
		st, err := loadState(ctx, tx, m.ownerID, m.defaultMessage)
		if err != nil {
			return err
		}
		ov = &domain.TempOverride{
			OwnerID:           m.ownerID,
			Category:          category,
			ExpiresAt:         expiresAt,
			SavedRules:        rules,
			SavedRulesEnabled: st.CustomRulesEnabled,
			ActivatedAt:       now,
		}
		if err := tx.SaveOverride(ctx, ov); err != nil {
			return err
		}
		st.CustomRulesEnabled = false
		st.UpdatedAt = now
		if err := tx.SaveReplyState(ctx, &st); err != nil {
			return err
		}
		res = ActivateResult{Override: *ov}
		return nil
	})
	if err != nil {
		return ActivateResult{}, err
	}

	if res.Switched {
		m.log.Info("temp mode switched", zap.String("category", category))
	} else {
		m.log.Info("temp mode activated",
			zap.String("category", category),
			zap.Int("saved_rules", len(res.Override.SavedRules)),
			zap.Bool("saved_custom_enabled", res.Override.SavedRulesEnabled),
		)
	}
	return res, nil
}

// Reset replaces the live rules with the saved snapshot, restores the
// custom-rules flag and clears the override. Returns ErrNoOverride when no
// override is active.
func (m *TempMode) Reset(ctx context.Context) (ResetResult, error) {
	var res ResetResult
	err := m.repo.Atomically(ctx, func(tx store.Repo) error {
		ov, err := tx.GetOverride(ctx, m.ownerID)
		if err != nil {
			return err
		}
		if ov == nil {
			return domain.ErrNoOverride
		}
		res, err = m.restore(ctx, tx, ov)
		return err
	})
	if err != nil {
		return ResetResult{}, err
	}
	m.log.Info("temp mode reset",
		zap.String("category", res.Category),
		zap.Int("restored_rules", res.Restored),
		zap.Bool("custom_enabled", res.CustomRulesEnabled),
	)
	return res, nil
}

// ResetIfExpired restores only when the stored override has expired at the
// time of the check. An override re-activated after the expiry was observed
// is left alone.
func (m *TempMode) ResetIfExpired(ctx context.Context) (bool, error) {
	var done bool
	err := m.repo.Atomically(ctx, func(tx store.Repo) error {
		var err error
		_, done, err = m.settle(ctx, tx)
		return err
	})
	if err != nil {
		return false, err
	}
	return done, nil
}

// Status returns the active override or nil. An override past its expiry is
// restored first and reported as inactive.
func (m *TempMode) Status(ctx context.Context) (*domain.TempOverride, error) {
	var ov *domain.TempOverride
	err := m.repo.Atomically(ctx, func(tx store.Repo) error {
		var err error
		ov, _, err = m.settle(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ov, nil
}

// settle returns the live override. One whose expiry has passed is restored
// inside tx and reported as (nil, true), so callers never act on a stale
// override.
func (m *TempMode) settle(ctx context.Context, tx store.Repo) (*domain.TempOverride, bool, error) {
	ov, err := tx.GetOverride(ctx, m.ownerID)
	if err != nil {
		return nil, false, err
	}
	if ov == nil || !ov.Expired(m.clock.Now()) {
		return ov, false, nil
	}
	res, err := m.restore(ctx, tx, ov)
	if err != nil {
		return nil, false, err
	}
	m.log.Info("expired temp mode reset",
		zap.String("category", res.Category),
		zap.Int("restored_rules", res.Restored),
	)
	return nil, true, nil
}

func (m *TempMode) restore(ctx context.Context, tx store.Repo, ov *domain.TempOverride) (ResetResult, error) {
	if _, err := tx.DeleteAllRules(ctx, m.ownerID); err != nil {
		return ResetResult{}, err
	}
	for i := range ov.SavedRules {
		r := ov.SavedRules[i]
		if err := tx.AddRule(ctx, m.ownerID, &r); err != nil {
			return ResetResult{}, err
		}
	}
	st, err := loadState(ctx, tx, m.ownerID, m.defaultMessage)
	if err != nil {
		return ResetResult{}, err
	}
	st.CustomRulesEnabled = ov.SavedRulesEnabled
	st.UpdatedAt = m.clock.Now()
	if err := tx.SaveReplyState(ctx, &st); err != nil {
		return ResetResult{}, err
	}
	if err := tx.ClearOverride(ctx, m.ownerID); err != nil {
		return ResetResult{}, err
	}
	return ResetResult{
		Category:           ov.Category,
		Restored:           len(ov.SavedRules),
		CustomRulesEnabled: ov.SavedRulesEnabled,
	}, nil
}

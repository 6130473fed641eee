package autoreply

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ykvlv/autoreply-bot/internal/clock"
	"github.com/ykvlv/autoreply-bot/internal/domain"
	"github.com/ykvlv/autoreply-bot/internal/store"
)

// Source tells which layer of the cascade produced a reply.
type Source int

const (
	SourceDefault Source = iota
	SourceOverride
	SourceRule
)

func (s Source) String() string {
	switch s {
	case SourceOverride:
		return "override"
	case SourceRule:
		return "rule"
	default:
		return "default"
	}
}

// Resolution is the reply body and where it came from.
type Resolution struct {
	Message  string
	Source   Source
	Category string          // empty for SourceDefault
	Rule     domain.TimeRule // set for SourceRule
	Override *domain.TempOverride
}

// Resolver picks the reply body: an unexpired override first, then the first
// matching time rule when custom rules are on, then the default message.
type Resolver struct {
	repo           store.Repo
	clock          clock.Clock
	log            *zap.Logger
	ownerID        int64
	defaultMessage string
	temp           *TempMode
	// spawn runs the lazy reset of an expired override off the caller's path.
	spawn func(func())
}

// Resolve reads override, state and rules in one pass and applies the cascade.
// It never writes; an expired override only schedules a background reset.
// A stored category missing from the category table yields ErrCorruptState.
func (r *Resolver) Resolve(ctx context.Context) (Resolution, error) {
	var (
		ov    *domain.TempOverride
		st    domain.ReplyState
		rules []domain.TimeRule
	)
	err := r.repo.Atomically(ctx, func(tx store.Repo) error {
		var err error
		if ov, err = tx.GetOverride(ctx, r.ownerID); err != nil {
			return err
		}
		if st, err = loadState(ctx, tx, r.ownerID, r.defaultMessage); err != nil {
			return err
		}
		rules, err = tx.ListRules(ctx, r.ownerID)
		return err
	})
	if err != nil {
		return Resolution{}, err
	}

	now := r.clock.Now()
	if ov != nil {
		if !ov.Expired(now) {
			msg, err := categoryText(ov.Category)
			if err != nil {
				return Resolution{}, err
			}
			return Resolution{Message: msg, Source: SourceOverride, Category: ov.Category, Override: ov}, nil
		}
		r.scheduleReset()
	}

	if st.CustomRulesEnabled {
		if rule, ok := domain.Match(rules, domain.ClockOf(now)); ok {
			msg, err := categoryText(rule.Category)
			if err != nil {
				return Resolution{}, err
			}
			return Resolution{Message: msg, Source: SourceRule, Category: rule.Category, Rule: rule}, nil
		}
	}
	return Resolution{Message: st.DefaultMessage, Source: SourceDefault}, nil
}

func (r *Resolver) scheduleReset() {
	r.spawn(func() {
		// detached from the request; the reply must not wait on it
		ctx := context.Background()
		if _, err := r.temp.ResetIfExpired(ctx); err != nil {
			r.log.Error("reset expired temp mode", zap.Error(err))
		}
	})
}

func categoryText(key string) (string, error) {
	msg, ok := domain.CategoryMessage(key)
	if !ok {
		return "", fmt.Errorf("%w: unknown category %q in stored data", domain.ErrCorruptState, key)
	}
	return msg, nil
}

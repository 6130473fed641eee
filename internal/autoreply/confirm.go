package autoreply

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/autoreply-bot/internal/clock"
	"github.com/ykvlv/autoreply-bot/internal/domain"
	"github.com/ykvlv/autoreply-bot/internal/store"
)

// ConfirmStatus is the outcome of Gate.Confirm.
type ConfirmStatus int

const (
	ConfirmExecuted ConfirmStatus = iota
	ConfirmExpired
)

// ConfirmResult reports what a confirmation did. Affected may be zero.
type ConfirmResult struct {
	Status   ConfirmStatus
	Action   domain.Action
	Target   string
	Affected int64
}

// Gate holds at most one destructive action until the owner confirms it.
// Expiry is checked lazily when /confirm arrives.
type Gate struct {
	repo    store.Repo
	clock   clock.Clock
	log     *zap.Logger
	ownerID int64
	ttl     time.Duration
	temp    *TempMode
}

// Request stores action as the pending confirmation, replacing any previous one.
func (g *Gate) Request(ctx context.Context, action domain.Action, target string) error {
	if _, err := domain.ParseAction(string(action)); err != nil {
		return err
	}
	p := &domain.PendingConfirmation{
		OwnerID:   g.ownerID,
		Action:    action,
		Target:    target,
		CreatedAt: g.clock.Now(),
	}
	if err := g.repo.SetPending(ctx, p); err != nil {
		return err
	}
	g.log.Info("confirmation requested", zap.String("action", string(action)), zap.String("target", target))
	return nil
}

// Pending returns the outstanding confirmation or nil.
func (g *Gate) Pending(ctx context.Context) (*domain.PendingConfirmation, error) {
	return g.repo.GetPending(ctx, g.ownerID)
}

// Remaining is the time left before p expires, never negative.
func (g *Gate) Remaining(p *domain.PendingConfirmation) time.Duration {
	left := g.ttl - g.clock.Now().Sub(p.CreatedAt)
	if left < 0 {
		return 0
	}
	return left
}

// TTL is the confirmation window.
func (g *Gate) TTL() time.Duration { return g.ttl }

// Confirm executes the pending action if it is still fresh. The pending slot
// is cleared in the same transaction whatever the outcome, so a confirmation
// runs at most once.
func (g *Gate) Confirm(ctx context.Context) (ConfirmResult, error) {
	var (
		res     ConfirmResult
		corrupt error
	)
	err := g.repo.Atomically(ctx, func(tx store.Repo) error {
		p, err := tx.GetPending(ctx, g.ownerID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNothingPending
		}
		if err := tx.ClearPending(ctx, g.ownerID); err != nil {
			return err
		}
		res = ConfirmResult{Action: p.Action, Target: p.Target}

		if g.clock.Now().Sub(p.CreatedAt) >= g.ttl {
			res.Status = ConfirmExpired
			return nil
		}
		// deletions must land on the restored rule book, not be wiped by it
		if _, _, err := g.temp.settle(ctx, tx); err != nil {
			return err
		}

		switch p.Action {
		case domain.ActionDeleteRule:
			res.Affected, err = tx.DeleteRule(ctx, g.ownerID, p.Target)
		case domain.ActionDeleteCategory:
			res.Affected, err = tx.DeleteRulesByCategory(ctx, g.ownerID, p.Target)
		case domain.ActionDeleteAll:
			res.Affected, err = tx.DeleteAllRules(ctx, g.ownerID)
		default:
			// keep the clear, report after commit
			corrupt = fmt.Errorf("%w: pending action %q", domain.ErrCorruptState, p.Action)
			return nil
		}
		res.Status = ConfirmExecuted
		return err
	})
	if err != nil {
		return ConfirmResult{}, err
	}
	if corrupt != nil {
		g.log.Error("dropped pending confirmation", zap.Error(corrupt))
		return ConfirmResult{}, corrupt
	}

	switch res.Status {
	case ConfirmExpired:
		g.log.Info("confirmation expired", zap.String("action", string(res.Action)))
	default:
		g.log.Info("confirmation executed",
			zap.String("action", string(res.Action)),
			zap.String("target", res.Target),
			zap.Int64("affected", res.Affected),
		)
	}
	return res, nil
}

// Cancel drops the pending confirmation. ErrNothingPending when there is none.
func (g *Gate) Cancel(ctx context.Context) (domain.PendingConfirmation, error) {
	var p *domain.PendingConfirmation
	err := g.repo.Atomically(ctx, func(tx store.Repo) error {
		var err error
		if p, err = tx.GetPending(ctx, g.ownerID); err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNothingPending
		}
		return tx.ClearPending(ctx, g.ownerID)
	})
	if err != nil {
		return domain.PendingConfirmation{}, err
	}
	g.log.Info("confirmation cancelled", zap.String("action", string(p.Action)))
	return *p, nil
}

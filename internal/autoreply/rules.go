package autoreply

import (
	"context"

	"go.uber.org/zap"

	"github.com/ykvlv/autoreply-bot/internal/domain"
	"github.com/ykvlv/autoreply-bot/internal/store"
)

// Rules is the owner's time rule book. Deletions go through the Gate.
type Rules struct {
	repo    store.Repo
	log     *zap.Logger
	ownerID int64
	temp    *TempMode
}

// Add validates and stores a new rule. Overlapping windows are accepted.
func (r *Rules) Add(ctx context.Context, category string, start, end domain.ClockTime) (domain.TimeRule, error) {
	rule, err := domain.NewTimeRule(category, start, end)
	if err != nil {
		return domain.TimeRule{}, err
	}
	err = r.repo.Atomically(ctx, func(tx store.Repo) error {
		if _, _, err := r.temp.settle(ctx, tx); err != nil {
			return err
		}
		return tx.AddRule(ctx, r.ownerID, &rule)
	})
	if err != nil {
		return domain.TimeRule{}, err
	}
	r.log.Info("time rule added",
		zap.String("rule_id", rule.ShortID()),
		zap.String("category", rule.Category),
		zap.String("window", rule.Window()),
	)
	return rule, nil
}

// Edit moves the window of the rule identified by a full id or unique prefix.
// It returns the rule as it was before the edit.
func (r *Rules) Edit(ctx context.Context, idPrefix string, start, end domain.ClockTime) (domain.TimeRule, error) {
	var before domain.TimeRule
	err := r.repo.Atomically(ctx, func(tx store.Repo) error {
		if _, _, err := r.temp.settle(ctx, tx); err != nil {
			return err
		}
		var err error
		before, err = findRule(ctx, tx, r.ownerID, idPrefix)
		if err != nil {
			return err
		}
		ok, err := tx.UpdateRuleWindow(ctx, r.ownerID, before.ID, start, end)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrRuleNotFound
		}
		return nil
	})
	if err != nil {
		return domain.TimeRule{}, err
	}
	r.log.Info("time rule updated",
		zap.String("rule_id", before.ShortID()),
		zap.String("from", before.Window()),
		zap.String("to", domain.FormatRange(start, end)),
	)
	return before, nil
}

// List returns every live rule in insertion order.
func (r *Rules) List(ctx context.Context) ([]domain.TimeRule, error) {
	return r.repo.ListRules(ctx, r.ownerID)
}

// Find resolves a full rule id or a unique prefix of one.
func (r *Rules) Find(ctx context.Context, idPrefix string) (domain.TimeRule, error) {
	return findRule(ctx, r.repo, r.ownerID, idPrefix)
}

// findRule looks a full id up directly and scans the rule book for a prefix.
func findRule(ctx context.Context, repo store.RuleRepo, ownerID int64, idPrefix string) (domain.TimeRule, error) {
	id, err := domain.ValidateRuleIDPrefix(idPrefix)
	if err != nil {
		return domain.TimeRule{}, err
	}
	if len(id) == domain.FullIDLen {
		rule, err := repo.GetRule(ctx, ownerID, id)
		if err != nil {
			return domain.TimeRule{}, err
		}
		return *rule, nil
	}
	rules, err := repo.ListRules(ctx, ownerID)
	if err != nil {
		return domain.TimeRule{}, err
	}
	return domain.FindByPrefix(rules, id)
}

// ByCategory returns the live rules of one category in insertion order.
func (r *Rules) ByCategory(ctx context.Context, category string) ([]domain.TimeRule, error) {
	rules, err := r.repo.ListRules(ctx, r.ownerID)
	if err != nil {
		return nil, err
	}
	var out []domain.TimeRule
	for _, rule := range rules {
		if rule.Category == category {
			out = append(out, rule)
		}
	}
	return out, nil
}

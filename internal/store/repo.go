package store

import (
	"context"

	"github.com/ykvlv/autoreply-bot/internal/domain"
)

// StateRepo stores the owner's ReplyState singleton.
// GetReplyState returns (nil, nil) when no state has been saved yet.
type StateRepo interface {
	GetReplyState(ctx context.Context, ownerID int64) (*domain.ReplyState, error)
	SaveReplyState(ctx context.Context, st *domain.ReplyState) error
}

// RuleRepo stores time rules. ListRules returns rules in insertion order.
// Delete operations report the number of removed rules; zero is not an error.
type RuleRepo interface {
	AddRule(ctx context.Context, ownerID int64, r *domain.TimeRule) error
	ListRules(ctx context.Context, ownerID int64) ([]domain.TimeRule, error)
	GetRule(ctx context.Context, ownerID int64, ruleID string) (*domain.TimeRule, error)
	UpdateRuleWindow(ctx context.Context, ownerID int64, ruleID string, start, end domain.ClockTime) (bool, error)
	DeleteRule(ctx context.Context, ownerID int64, ruleID string) (int64, error)
	DeleteRulesByCategory(ctx context.Context, ownerID int64, category string) (int64, error)
	DeleteAllRules(ctx context.Context, ownerID int64) (int64, error)
}

// OverrideRepo stores the TempOverride slot. GetOverride returns (nil, nil) when inactive.
type OverrideRepo interface {
	GetOverride(ctx context.Context, ownerID int64) (*domain.TempOverride, error)
	SaveOverride(ctx context.Context, o *domain.TempOverride) error
	ClearOverride(ctx context.Context, ownerID int64) error
}

// ConfirmationRepo stores the PendingConfirmation slot. GetPending returns (nil, nil) when empty.
type ConfirmationRepo interface {
	GetPending(ctx context.Context, ownerID int64) (*domain.PendingConfirmation, error)
	SetPending(ctx context.Context, p *domain.PendingConfirmation) error
	ClearPending(ctx context.Context, ownerID int64) error
}

// LedgerRepo stores per-recipient daily reply counts.
type LedgerRepo interface {
	IncrementLedger(ctx context.Context, ownerID, recipientID int64, date string) error
	LedgerRange(ctx context.Context, ownerID int64, from, to string) ([]domain.LedgerEntry, error)
}

// Repo is the full persistence contract used by the bot.
type Repo interface {
	StateRepo
	RuleRepo
	OverrideRepo
	ConfirmationRepo
	LedgerRepo

	// Atomically runs fn against a transaction-bound Repo. Any error from fn
	// rolls back every write made through the Repo passed to fn.
	// Nested calls join the outer transaction.
	Atomically(ctx context.Context, fn func(Repo) error) error
	Close() error
}

package domain

import (
	"fmt"
	"time"
)

// ReplyState is the owner's singleton auto-reply configuration.
type ReplyState struct {
	OwnerID            int64
	AutoReplyEnabled   bool
	DefaultMessage     string
	CustomRulesEnabled bool
	UpdatedAt          time.Time
}

// TempOverride is present only while a temporary override is active.
// SavedRules and SavedRulesEnabled hold the baseline captured on activation.
type TempOverride struct {
	OwnerID           int64
	Category          string
	ExpiresAt         *time.Time // nil = until reset
	SavedRules        []TimeRule
	SavedRulesEnabled bool
	ActivatedAt       time.Time
}

// Expired reports whether the override has an expiry at or before now.
func (o *TempOverride) Expired(now time.Time) bool {
	return o.ExpiresAt != nil && !now.Before(*o.ExpiresAt)
}

// Action is a destructive rule mutation guarded by confirmation.
type Action string

const (
	ActionDeleteRule     Action = "delete-rule"
	ActionDeleteCategory Action = "delete-category"
	ActionDeleteAll      Action = "delete-all"
)

// ParseAction validates a stored or requested action.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionDeleteRule, ActionDeleteCategory, ActionDeleteAll:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// PendingConfirmation is the single outstanding destructive action.
// Target is a rule id, a category, or empty for ActionDeleteAll.
type PendingConfirmation struct {
	OwnerID   int64
	Action    Action
	Target    string
	CreatedAt time.Time
}

// LedgerEntry counts auto-replied messages per recipient per local date.
type LedgerEntry struct {
	OwnerID     int64
	RecipientID int64
	Date        string // YYYY-MM-DD
	Count       int
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every error returned by the core wraps exactly one of them,
// so callers can branch with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrCorruptState = errors.New("corrupt state")
	ErrStorage      = errors.New("storage failure")
)

var (
	ErrInvalidTime     = fmt.Errorf("%w: expected HH:MM", ErrValidation)
	ErrInvalidRange    = fmt.Errorf("%w: expected HH:MM-HH:MM", ErrValidation)
	ErrInvalidDuration = fmt.Errorf("%w: invalid duration", ErrValidation)
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrInvalidRuleID   = fmt.Errorf("%w: invalid rule id", ErrValidation)
	ErrAmbiguousRuleID = fmt.Errorf("%w: ambiguous rule id", ErrValidation)
	ErrInvalidAction   = fmt.Errorf("%w: invalid action", ErrValidation)
	ErrEmptyMessage    = fmt.Errorf("%w: empty message", ErrValidation)
	ErrOverrideActive  = fmt.Errorf("%w: temporary override is active", ErrValidation)

	ErrRuleNotFound   = fmt.Errorf("%w: time rule", ErrNotFound)
	ErrNoRules        = fmt.Errorf("%w: no time rules", ErrNotFound)
	ErrNothingPending = fmt.Errorf("%w: no pending confirmation", ErrNotFound)
	ErrNoOverride     = fmt.Errorf("%w: no active override", ErrNotFound)
)

// AmbiguousRuleError is returned when a rule id prefix matches more than one rule.
type AmbiguousRuleError struct {
	Prefix     string
	Candidates []TimeRule
}

func (e *AmbiguousRuleError) Error() string {
	ids := make([]string, 0, len(e.Candidates))
	for _, r := range e.Candidates {
		ids = append(ids, r.ShortID())
	}
	return fmt.Sprintf("%v: %q matches %s", ErrAmbiguousRuleID, e.Prefix, strings.Join(ids, ", "))
}

func (e *AmbiguousRuleError) Unwrap() error { return ErrAmbiguousRuleID }

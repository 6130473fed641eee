package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ShortIDLen is the number of rule id characters shown to the owner.
const ShortIDLen = 8

// FullIDLen is the length of a complete rule id.
const FullIDLen = 36

// minRuleIDPrefix is the shortest prefix accepted when looking up a rule.
const minRuleIDPrefix = 4

// TimeRule maps a category onto a recurring daily window.
type TimeRule struct {
	ID       string
	Category string
	Start    ClockTime
	End      ClockTime
	Seq      int64 // storage order; assigned on insert
}

// NewTimeRule validates the category and returns a rule with a fresh id.
func NewTimeRule(category string, start, end ClockTime) (TimeRule, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !IsCategory(category) {
		return TimeRule{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return TimeRule{
		ID:       uuid.New().String(),
		Category: category,
		Start:    start,
		End:      end,
	}, nil
}

// ShortID is the id prefix displayed in listings.
func (r TimeRule) ShortID() string {
	if len(r.ID) <= ShortIDLen {
		return r.ID
	}
	return r.ID[:ShortIDLen]
}

// Window returns "HH:MM-HH:MM".
func (r TimeRule) Window() string { return FormatRange(r.Start, r.End) }

// Wraps reports whether the window crosses midnight.
func (r TimeRule) Wraps() bool { return r.Start > r.End }

// Contains reports whether t falls inside the rule's window, both ends inclusive.
// A window with Start > End wraps past midnight: [Start..23:59] U [00:00..End].
func Contains(r TimeRule, t ClockTime) bool {
	if r.Start <= r.End {
		return t >= r.Start && t <= r.End
	}
	return t >= r.Start || t <= r.End
}

// Match returns the first rule, in slice order, whose window contains t.
// Overlapping rules are allowed; order is the only tie-break.
func Match(rules []TimeRule, t ClockTime) (TimeRule, bool) {
	for _, r := range rules {
		if Contains(r, t) {
			return r, true
		}
	}
	return TimeRule{}, false
}

// ValidateRuleIDPrefix checks that s looks like a (possibly shortened) rule id.
func ValidateRuleIDPrefix(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < minRuleIDPrefix || len(s) > FullIDLen {
		return "", fmt.Errorf("%w: %q", ErrInvalidRuleID, s)
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c == '-') {
			return "", fmt.Errorf("%w: %q", ErrInvalidRuleID, s)
		}
	}
	return s, nil
}

// FindByPrefix resolves an id or unique id prefix against rules.
func FindByPrefix(rules []TimeRule, prefix string) (TimeRule, error) {
	p, err := ValidateRuleIDPrefix(prefix)
	if err != nil {
		return TimeRule{}, err
	}
	var found []TimeRule
	for _, r := range rules {
		if r.ID == p {
			return r, nil
		}
		if strings.HasPrefix(r.ID, p) {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return TimeRule{}, fmt.Errorf("%w: %s", ErrRuleNotFound, p)
	case 1:
		return found[0], nil
	default:
		return TimeRule{}, &AmbiguousRuleError{Prefix: p, Candidates: found}
	}
}

package domain

import (
	"errors"
	"testing"
)

// helper: parse HH:MM or fail
func mustClock(t *testing.T, s string) ClockTime {
	t.Helper()
	c, err := ParseClockTime(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return c
}

func mustRule(t *testing.T, category, start, end string) TimeRule {
	t.Helper()
	r, err := NewTimeRule(category, mustClock(t, start), mustClock(t, end))
	if err != nil {
		t.Fatalf("new rule: %v", err)
	}
	return r
}

func TestMatch_WorkHours(t *testing.T) {
	rules := []TimeRule{mustRule(t, "work", "09:00", "17:00")}

	got, ok := Match(rules, mustClock(t, "10:30"))
	if !ok || got.Category != "work" {
		t.Fatalf("want work at 10:30, got %+v ok=%v", got, ok)
	}
	if _, ok := Match(rules, mustClock(t, "20:00")); ok {
		t.Fatalf("want no match at 20:00")
	}
}

func TestMatch_WrapWindow(t *testing.T) {
	rules := []TimeRule{mustRule(t, "driving", "22:00", "06:00")}

	for _, at := range []string{"23:30", "05:00", "22:00", "06:00", "00:00"} {
		if _, ok := Match(rules, mustClock(t, at)); !ok {
			t.Fatalf("want match at %s", at)
		}
	}
	for _, at := range []string{"12:00", "06:01", "21:59"} {
		if _, ok := Match(rules, mustClock(t, at)); ok {
			t.Fatalf("want no match at %s", at)
		}
	}
}

func TestMatch_FirstInOrderWins(t *testing.T) {
	a := mustRule(t, "work", "09:00", "12:00")
	b := mustRule(t, "meetings", "11:00", "13:00")

	got, _ := Match([]TimeRule{a, b}, mustClock(t, "11:30"))
	if got.ID != a.ID {
		t.Fatalf("want %s, got %s", a.Category, got.Category)
	}
	got, _ = Match([]TimeRule{b, a}, mustClock(t, "11:30"))
	if got.ID != b.ID {
		t.Fatalf("want %s, got %s", b.Category, got.Category)
	}
}

func TestMatch_Empty(t *testing.T) {
	if _, ok := Match(nil, 0); ok {
		t.Fatalf("empty rule set must not match")
	}
}

func TestContains_ZeroLengthWindow(t *testing.T) {
	r := mustRule(t, "lunch", "13:00", "13:00")
	if !Contains(r, mustClock(t, "13:00")) {
		t.Fatalf("want exact minute to match")
	}
	if Contains(r, mustClock(t, "13:01")) || Contains(r, mustClock(t, "12:59")) {
		t.Fatalf("want only the exact minute to match")
	}
}

func TestNewTimeRule_UnknownCategory(t *testing.T) {
	_, err := NewTimeRule("napping", 0, 60)
	if !errors.Is(err, ErrUnknownCategory) || !errors.Is(err, ErrValidation) {
		t.Fatalf("want unknown category validation error, got %v", err)
	}
}

func TestFindByPrefix(t *testing.T) {
	rules := []TimeRule{
		{ID: "abcd1111-0000-0000-0000-000000000000", Category: "work"},
		{ID: "abcd2222-0000-0000-0000-000000000000", Category: "gym"},
		{ID: "ffff0000-0000-0000-0000-000000000000", Category: "sleep"},
	}

	got, err := FindByPrefix(rules, "ffff0000")
	if err != nil || got.Category != "sleep" {
		t.Fatalf("want sleep, got %+v err=%v", got, err)
	}

	_, err = FindByPrefix(rules, "abcd")
	var amb *AmbiguousRuleError
	if !errors.As(err, &amb) || len(amb.Candidates) != 2 {
		t.Fatalf("want ambiguous error with 2 candidates, got %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ambiguous prefix must be a validation error")
	}

	if _, err := FindByPrefix(rules, "0123"); !errors.Is(err, ErrRuleNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if _, err := FindByPrefix(rules, "work"); !errors.Is(err, ErrInvalidRuleID) {
		t.Fatalf("want invalid id, got %v", err)
	}
}

func TestWraps(t *testing.T) {
	if !mustRule(t, "sleep", "23:00", "07:00").Wraps() {
		t.Fatalf("23:00-07:00 must wrap")
	}
	if mustRule(t, "lunch", "13:00", "13:00").Wraps() {
		t.Fatalf("zero-length window must not wrap")
	}
}

func TestShortID(t *testing.T) {
	r := TimeRule{ID: "0123456789abcdef"}
	if got := r.ShortID(); got != "01234567" {
		t.Fatalf("want 01234567, got %s", got)
	}
}

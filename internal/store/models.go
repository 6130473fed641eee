package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ykvlv/autoreply-bot/internal/domain"
)

func toNullInt64(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().UnixMilli(), Valid: true}
}

func fromNullInt64(ns sql.NullInt64) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := time.UnixMilli(ns.Int64).UTC()
	return &t
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// savedRule is the JSON shape of a rule inside an override snapshot.
type savedRule struct {
	ID       string `json:"rule_id"`
	Category string `json:"category"`
	Start    string `json:"start_time"`
	End      string `json:"end_time"`
}

func encodeSnapshot(rules []domain.TimeRule) (string, error) {
	out := make([]savedRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, savedRule{
			ID:       r.ID,
			Category: r.Category,
			Start:    r.Start.String(),
			End:      r.End.String(),
		})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeSnapshot(s string) ([]domain.TimeRule, error) {
	var in []savedRule
	if err := json.Unmarshal([]byte(s), &in); err != nil {
		return nil, fmt.Errorf("%w: saved rules: %v", domain.ErrCorruptState, err)
	}
	rules := make([]domain.TimeRule, 0, len(in))
	for _, sr := range in {
		start, err := domain.ParseClockTime(sr.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: saved rule %s: %v", domain.ErrCorruptState, sr.ID, err)
		}
		end, err := domain.ParseClockTime(sr.End)
		if err != nil {
			return nil, fmt.Errorf("%w: saved rule %s: %v", domain.ErrCorruptState, sr.ID, err)
		}
		rules = append(rules, domain.TimeRule{ID: sr.ID, Category: sr.Category, Start: start, End: end})
	}
	return rules, nil
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// storageErr tags a driver failure as a retryable storage error.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

// Package stats summarizes the reply ledger.
package stats

import (
	"context"
	"sort"

	"github.com/ykvlv/autoreply-bot/internal/clock"
	"github.com/ykvlv/autoreply-bot/internal/store"
)

// WeekDays is the length of the weekly window, today included.
const WeekDays = 7

// TopUser is the recipient with the most counted messages.
type TopUser struct {
	RecipientID int64
	Count       int
}

// Day is the summary for one local date.
type Day struct {
	Date   string
	Total  int
	Unique int
	Top    *TopUser // nil when nothing was counted
}

// DayTotal is one row of the weekly breakdown.
type DayTotal struct {
	Date  string
	Total int
}

// Week is the summary of the last WeekDays local dates.
type Week struct {
	From, To string
	Total    int
	Unique   int
	Days     []DayTotal // newest first, only dates with messages
}

type Service struct {
	repo    store.LedgerRepo
	clock   clock.Clock
	ownerID int64
}

func New(repo store.LedgerRepo, c clock.Clock, ownerID int64) *Service {
	return &Service{repo: repo, clock: c, ownerID: ownerID}
}

// Today summarizes the current local date. Ties for the top user go to the
// lowest recipient id.
func (s *Service) Today(ctx context.Context) (Day, error) {
	today := clock.Today(s.clock)
	entries, err := s.repo.LedgerRange(ctx, s.ownerID, today, today)
	if err != nil {
		return Day{}, err
	}

	day := Day{Date: today, Unique: len(entries)}
	for _, e := range entries {
		day.Total += e.Count
		if day.Top == nil || e.Count > day.Top.Count ||
			(e.Count == day.Top.Count && e.RecipientID < day.Top.RecipientID) {
			day.Top = &TopUser{RecipientID: e.RecipientID, Count: e.Count}
		}
	}
	return day, nil
}

// Week summarizes today and the six dates before it.
func (s *Service) Week(ctx context.Context) (Week, error) {
	now := s.clock.Now()
	w := Week{
		From: now.AddDate(0, 0, -(WeekDays - 1)).Format(clock.DateLayout),
		To:   now.Format(clock.DateLayout),
	}
	entries, err := s.repo.LedgerRange(ctx, s.ownerID, w.From, w.To)
	if err != nil {
		return Week{}, err
	}

	perDay := make(map[string]int)
	users := make(map[int64]struct{})
	for _, e := range entries {
		perDay[e.Date] += e.Count
		users[e.RecipientID] = struct{}{}
		w.Total += e.Count
	}
	w.Unique = len(users)
	for date, total := range perDay {
		w.Days = append(w.Days, DayTotal{Date: date, Total: total})
	}
	sort.Slice(w.Days, func(i, j int) bool { return w.Days[i].Date > w.Days[j].Date })
	return w, nil
}

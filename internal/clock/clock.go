// Package clock supplies the current time in the bot's single fixed timezone.
package clock

import (
	"sync"
	"time"

	"github.com/ykvlv/autoreply-bot/internal/domain"
)

// DateLayout is the ledger date format.
const DateLayout = "2006-01-02"

// Clock returns the current instant in the configured location.
type Clock interface {
	Now() time.Time
}

// Zone is the production Clock.
type Zone struct {
	loc *time.Location
}

// NewZone returns a Clock reporting wall time in loc.
func NewZone(loc *time.Location) *Zone {
	if loc == nil {
		loc = time.UTC
	}
	return &Zone{loc: loc}
}

func (z *Zone) Now() time.Time { return time.Now().In(z.loc) }

// TimeOfDay is the local time of day, minute resolution.
func TimeOfDay(c Clock) domain.ClockTime { return domain.ClockOf(c.Now()) }

// Today is the local date as YYYY-MM-DD.
func Today(c Clock) string { return c.Now().Format(DateLayout) }

// Fake is a manually advanced Clock for tests.
type Fake struct {
	mu sync.Mutex
	t  time.Time
}

// NewFake returns a Fake frozen at t.
func NewFake(t time.Time) *Fake { return &Fake{t: t} }

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

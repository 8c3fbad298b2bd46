// internal/daily/daily.go
//
// Daily game limit policy: caps how many games a user may start within
// one calendar day. The day boundary follows a configured timezone.
//
// The policy itself is a read-only check over past games; the store
// re-applies the same cap inside the game-creation transaction so two
// concurrent starts cannot both slip under it.

package daily

import (
	"context"
	"time"
)

// DefaultLimit is the per-user, per-day cap on started games.
const DefaultLimit = 3

// Window is a calendar-day range: [Start, End), End being the next
// midnight in the window's timezone.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DayWindow returns the calendar-day window containing t in loc.
func DayWindow(t time.Time, loc *time.Location) Window {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.Add(24 * time.Hour)}
}

// DateKey returns YYYY-MM-DD for t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// GameCounter is the query interface the policy needs: how many games a
// user started within [from, to).
type GameCounter interface {
	CountGamesBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
}

// Policy enforces the daily started-game cap.
type Policy struct {
	counter GameCounter
	limit   int
	loc     *time.Location
}

// NewPolicy builds a Policy. A non-positive limit falls back to
// DefaultLimit; a nil location falls back to UTC.
func NewPolicy(counter GameCounter, limit int, loc *time.Location) *Policy {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Policy{counter: counter, limit: limit, loc: loc}
}

// Limit returns the configured cap.
func (p *Policy) Limit() int { return p.limit }

// Location returns the timezone used for day boundaries.
func (p *Policy) Location() *time.Location { return p.loc }

// CanStartNewGame reports whether the user is below the cap on the
// calendar day containing `on`. Read-only; no mutation.
func (p *Policy) CanStartNewGame(ctx context.Context, userID string, on time.Time) (bool, error) {
	n, err := p.GamesStarted(ctx, userID, on)
	if err != nil {
		return false, err
	}
	return n < p.limit, nil
}

// GamesStarted counts the user's games on the calendar day containing `on`.
func (p *Policy) GamesStarted(ctx context.Context, userID string, on time.Time) (int, error) {
	w := DayWindow(on, p.loc)
	return p.counter.CountGamesBetween(ctx, userID, w.Start, w.End)
}

// Today returns the current day's window.
func (p *Policy) Today() Window {
	return DayWindow(time.Now(), p.loc)
}

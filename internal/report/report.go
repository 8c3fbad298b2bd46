// internal/report/report.go
//
// Staff reporting: read-only aggregation over persisted games/guesses.
// Two views:
//   - Daily: distinct users, games started, wins, plus per-game detail
//     for one calendar day, newest first.
//   - ForUser: every game a user ever played, newest first.
//
// Both have CSV renderings whose field layouts match the exported report
// files consumed downstream (see csv.go).

package report

import (
	"context"
	"time"

	"github.com/guessfive/go-server/internal/daily"
	"github.com/guessfive/go-server/internal/store"
)

// Source is the slice of the store the aggregator reads from.
type Source interface {
	GamesBetween(ctx context.Context, from, to time.Time) ([]store.GameRecord, error)
	GamesByUser(ctx context.Context, userID string) ([]store.GameRecord, error)
	UserByUsername(ctx context.Context, username string) (*store.User, error)
}

// Detail is one game row inside a daily report.
type Detail struct {
	GameID       string    `json:"gameId"`
	Username     string    `json:"username"`
	Word         string    `json:"word"`
	StartedAt    time.Time `json:"startedAt"`
	GuessesCount int       `json:"guessesCount"`
	Win          bool      `json:"win"`
}

// Daily is the aggregate view for one calendar day.
// GamesCount always equals len(Games); CorrectGuesses equals the number
// of detail rows with Win set.
type Daily struct {
	Date           string   `json:"date"`
	UsersCount     int      `json:"usersCount"`
	GamesCount     int      `json:"gamesCount"`
	CorrectGuesses int      `json:"correctGuesses"`
	Games          []Detail `json:"games"`
}

// UserRow is one game in a per-user report.
type UserRow struct {
	GameID     string `json:"gameId"`
	Date       string `json:"date"`
	WordsTried int    `json:"wordsTried"`
	Correct    bool   `json:"correct"`
}

// Aggregator computes reports. Day boundaries follow loc.
type Aggregator struct {
	src Source
	loc *time.Location
}

// New builds an Aggregator; a nil location falls back to UTC.
func New(src Source, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{src: src, loc: loc}
}

// Location returns the timezone used for day boundaries.
func (a *Aggregator) Location() *time.Location { return a.loc }

// ForDay aggregates the calendar day containing `on`.
func (a *Aggregator) ForDay(ctx context.Context, on time.Time) (*Daily, error) {
	w := daily.DayWindow(on, a.loc)
	recs, err := a.src.GamesBetween(ctx, w.Start, w.End)
	if err != nil {
		return nil, err
	}

	rep := &Daily{
		Date:  daily.DateKey(on, a.loc),
		Games: make([]Detail, 0, len(recs)),
	}
	users := make(map[string]struct{})
	for _, r := range recs {
		users[r.UserID] = struct{}{}
		if r.Win {
			rep.CorrectGuesses++
		}
		rep.Games = append(rep.Games, Detail{
			GameID:       r.GameID,
			Username:     r.Username,
			Word:         r.Word,
			StartedAt:    r.StartedAt,
			GuessesCount: r.GuessCount,
			Win:          r.Win,
		})
	}
	rep.UsersCount = len(users)
	rep.GamesCount = len(rep.Games)
	return rep, nil
}

// ForUser lists every game the named user played, newest first.
// Returns game.ErrNotFound (via the source) for an unknown username.
func (a *Aggregator) ForUser(ctx context.Context, username string) ([]UserRow, error) {
	u, err := a.src.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	recs, err := a.src.GamesByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	rows := make([]UserRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, UserRow{
			GameID:     r.GameID,
			Date:       daily.DateKey(r.StartedAt, a.loc),
			WordsTried: r.GuessCount,
			Correct:    r.Win,
		})
	}
	return rows, nil
}

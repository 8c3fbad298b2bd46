// internal/store/store.go
//
// Persistence interface for users, words, games and guesses.
// Implementations must keep a game's guesses_used counter and its Guess
// rows consistent: a guess submission is one atomic unit of work.

package store

import (
	"context"
	"time"

	"github.com/guessfive/go-server/internal/daily"
	"github.com/guessfive/go-server/internal/game"
)

// User is an account row. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"isStaff"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Word is one candidate secret. Immutable after seeding.
type Word struct {
	ID   int64
	Text string
}

// GameSummary is the per-player listing row (dashboard view).
type GameSummary struct {
	ID             string     `json:"id"`
	StartedAt      time.Time  `json:"startedAt"`
	State          game.State `json:"state"`
	GuessesUsed    int        `json:"guessesUsed"`
	GuessesAllowed int        `json:"guessesAllowed"`
	Win            bool       `json:"win"`
}

// GameRecord is a joined game row for reporting: owner name, secret word
// text and the stored guess count.
type GameRecord struct {
	GameID     string
	UserID     string
	Username   string
	Word       string
	StartedAt  time.Time
	GuessCount int
	Win        bool
}

// Store is the durable backend. Backed by SQLite in this repo.
type Store interface {
	Close() error

	// Users.
	CreateUser(ctx context.Context, username, passwordHash string, isStaff bool) (*User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)

	// Words. SeedWords is idempotent and skips duplicates; it returns the
	// number of newly inserted words.
	SeedWords(ctx context.Context, words []string) (int, error)
	WordCount(ctx context.Context) (int, error)

	// Games. CreateGame picks a random secret and inserts the game in one
	// transaction that re-checks the daily cap for the given window;
	// returns game.ErrLimitExceeded when the cap is hit.
	CreateGame(ctx context.Context, userID string, guessesAllowed int, window daily.Window, dailyLimit int) (*game.Game, error)
	GameByID(ctx context.Context, id string) (*game.Game, error)

	// SubmitGuess applies a guess to the stored game atomically: the Guess
	// row, the counter increment and any terminal transition commit
	// together or not at all. A lost concurrent update returns
	// game.ErrConflict.
	SubmitGuess(ctx context.Context, gameID, rawText string) (*game.Game, *game.Guess, error)

	// History returns the game's guesses in attempt order. Each call
	// re-queries; no side effects.
	History(ctx context.Context, gameID string) ([]game.Guess, error)

	// Queries for dashboards, the daily limit policy and reports.
	RecentGames(ctx context.Context, userID string, limit int) ([]GameSummary, error)
	CountGamesBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
	GamesBetween(ctx context.Context, from, to time.Time) ([]GameRecord, error)
	GamesByUser(ctx context.Context, userID string) ([]GameRecord, error)
}

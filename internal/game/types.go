// internal/game/types.go
//
// Core type definitions for the word-guessing engine.
// Defines:
//   - Mark: per-letter result of a guess (green/orange/grey).
//   - Game: state of one play session (owner, secret, counters).
//   - Guess: one scored attempt inside a Game.

package game

import (
	"strings"
	"time"
)

// WordLength is the fixed secret/guess length.
const WordLength = 5

// DefaultGuessesAllowed is the per-game guess allowance.
const DefaultGuessesAllowed = 5

// Mark represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "green":  letter is correct and in the correct position.
//   - "orange": letter exists in the secret but in a different position.
//   - "grey":   letter is absent, or already accounted for by another mark.
type Mark string

const (
	MarkGreen  Mark = "green"
	MarkOrange Mark = "orange"
	MarkGrey   Mark = "grey"
)

// State is the coarse lifecycle state of a game.
type State string

const (
	StateActive State = "active"
	StateWon    State = "won"
	StateLost   State = "lost"
)

// Game holds the state of a single play session. The secret is fixed at
// creation and the game is owned by the user who started it.
type Game struct {
	ID             string    // Unique game identifier (UUID).
	UserID         string    // Owning user.
	WordID         int64     // Reference to the secret word row.
	Secret         string    // The secret word (5 uppercase letters).
	StartedAt      time.Time // Creation timestamp (UTC).
	Finished       bool      // True once the game is over (won or lost).
	Win            bool      // True if the game finished with a win.
	GuessesAllowed int       // Maximum guesses permitted (default 5).
	GuessesUsed    int       // Guesses taken so far; always == stored Guess count.
}

// State reports the current lifecycle state.
func (g *Game) State() State {
	if g.Finished {
		if g.Win {
			return StateWon
		}
		return StateLost
	}
	return StateActive
}

// Guess is one scored attempt. Immutable once created; attempt order is
// defined by AttemptedAt.
type Guess struct {
	ID          string    `json:"id"`
	GameID      string    `json:"gameId"`
	Text        string    `json:"text"`
	Marks       []Mark    `json:"marks"`
	AttemptedAt time.Time `json:"attemptedAt"`
}

// JoinMarks encodes a mark sequence as a comma-separated string for storage.
func JoinMarks(marks []Mark) string {
	parts := make([]string, len(marks))
	for i, m := range marks {
		parts[i] = string(m)
	}
	return strings.Join(parts, ",")
}

// ParseMarks decodes a comma-separated mark string. Unknown values fail.
func ParseMarks(s string) ([]Mark, error) {
	if s == "" {
		return nil, ErrInvalidInput
	}
	parts := strings.Split(s, ",")
	out := make([]Mark, len(parts))
	for i, p := range parts {
		switch Mark(p) {
		case MarkGreen, MarkOrange, MarkGrey:
			out[i] = Mark(p)
		default:
			return nil, ErrInvalidInput
		}
	}
	return out, nil
}

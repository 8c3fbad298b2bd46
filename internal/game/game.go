// internal/game/game.go
//
// Lifecycle state machine for a single game session.
// Responsibilities:
//   - Normalize and validate raw guess input.
//   - Apply a guess: score it, bump the counter, transition state.
//   - Keep the finished/win flags consistent with the guess counter.
//
// Persistence is the store's concern: Apply mutates an in-memory Game the
// store has read inside a transaction, and the store writes the result
// back atomically with the new Guess row.

package game

import "strings"

// NormalizeGuess trims and uppercases raw input, then validates it.
// Returns ErrValidation unless the result is exactly 5 ASCII letters.
func NormalizeGuess(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) != WordLength {
		return "", ErrValidation
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", ErrValidation
		}
	}
	return s, nil
}

// Apply validates and scores a raw guess, mutating the game state.
// Returns the normalized guess text and its per-letter marks.
//
// Transitions:
//   - normalized == secret              → Finished, Win (won).
//   - GuessesUsed reaches GuessesAllowed → Finished (lost).
//   - otherwise the game stays active.
func (g *Game) Apply(rawText string) (string, []Mark, error) {
	if g.Finished {
		return "", nil, ErrTerminalState
	}
	text, err := NormalizeGuess(rawText)
	if err != nil {
		return "", nil, err
	}
	// Defensive: unreachable while Finished tracks the counter.
	if g.GuessesUsed >= g.GuessesAllowed {
		return "", nil, ErrGuessLimit
	}

	marks, err := Evaluate(g.Secret, text)
	if err != nil {
		return "", nil, err
	}
	g.GuessesUsed++

	if text == g.Secret {
		g.Finished, g.Win = true, true
	} else if g.GuessesUsed >= g.GuessesAllowed {
		g.Finished = true
	}
	return text, marks, nil
}

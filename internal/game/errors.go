package game

import "errors"

// Domain errors surfaced by the engine and the persistence layer. Handlers
// map these to HTTP statuses with errors.Is.
var (
	// ErrInvalidInput: evaluator input is not exactly 5 letters.
	ErrInvalidInput = errors.New("input must be exactly 5 letters")

	// ErrValidation: submitted guess is not 5 alphabetic characters.
	ErrValidation = errors.New("guess must be a 5-letter word (A-Z only)")

	// ErrTerminalState: guess submitted to a finished game.
	ErrTerminalState = errors.New("game is finished")

	// ErrGuessLimit: guess allowance exhausted. Unreachable while the
	// finished flag is maintained, kept as a defensive check.
	ErrGuessLimit = errors.New("no more guesses allowed")

	// ErrLimitExceeded: daily game cap reached.
	ErrLimitExceeded = errors.New("daily game limit reached")

	// ErrNotFound: unknown game, user or word.
	ErrNotFound = errors.New("not found")

	// ErrConflict: concurrent update lost an optimistic-concurrency check.
	ErrConflict = errors.New("concurrent update conflict")
)

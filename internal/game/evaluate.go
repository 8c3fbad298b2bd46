// internal/game/evaluate.go
//
// Guess evaluation: compares a secret against a guess and produces one
// mark per letter position using the classic two-pass algorithm.
//
// Pass 1:
//   - Mark exact matches green.
//   - Count remaining (non-green) secret letters by letter index.
//
// Pass 2:
//   - For each non-green guess letter: if there is remaining count for
//     that letter, mark orange and decrement; otherwise grey.
//
// Decrementing the count consumes the leftmost remaining occurrence, so
// repeated letters in either string are never over-counted (guess "LLAMA"
// against a secret with one L yields a single non-grey L).

package game

// Evaluate scores guess against secret and returns 5 marks.
// Both inputs must be exactly 5 uppercase letters; callers normalize.
// Returns ErrInvalidInput if either length is wrong.
func Evaluate(secret, guess string) ([]Mark, error) {
	if len(secret) != WordLength || len(guess) != WordLength {
		return nil, ErrInvalidInput
	}

	res := make([]Mark, WordLength)

	// Letter frequency for the non-green secret positions (A-Z).
	var counts [26]int

	// First pass: greens, and counts for the remaining secret letters.
	for i := 0; i < WordLength; i++ {
		if guess[i] == secret[i] {
			res[i] = MarkGreen
		} else {
			counts[letterIdx(secret[i])]++
		}
	}

	// Second pass: resolve oranges/greys for non-green positions.
	for i := 0; i < WordLength; i++ {
		if res[i] == MarkGreen {
			continue
		}
		j := letterIdx(guess[i])
		if j >= 0 && j < 26 && counts[j] > 0 {
			res[i] = MarkOrange
			counts[j]--
		} else {
			res[i] = MarkGrey
		}
	}
	return res, nil
}

// letterIdx maps an uppercase ASCII letter to 0..25.
func letterIdx(b byte) int { return int(b - 'A') }

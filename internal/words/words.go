// internal/words/words.go
//
// Word list loading for the seed step.
//
// Responsibilities:
//   - Load candidate secrets from an environment-provided file or fall
//     back to the embedded default list.
//   - Normalize to uppercase and keep only valid 5-letter A-Z words.
//   - Deduplicate while preserving input order.
//
// The loaded list is handed to the store's idempotent seeder at startup;
// after seeding, the word table is read-only.
//
// Environment variables:
//   WORDS_FILE=/path/to/words.txt

package words

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/guessfive/go-server/assets"
	"github.com/guessfive/go-server/internal/game"
)

// Load returns the seed word list. If WORDS_FILE is set, the file is
// read (one word per line); otherwise the embedded defaults are used.
// Returns an error if the resulting list is empty.
func Load() ([]string, error) {
	var raw []string
	if path := os.Getenv("WORDS_FILE"); path != "" {
		list, err := readWordFile(path)
		if err != nil {
			return nil, err
		}
		raw = list
	} else {
		list, err := assets.SeedWords()
		if err != nil {
			return nil, err
		}
		raw = list
	}
	out := Normalize(raw)
	if len(out) == 0 {
		return nil, errors.New("words: seed list is empty")
	}
	return out, nil
}

// Normalize uppercases, filters to valid 5-letter A-Z words, and drops
// duplicates preserving first occurrence.
func Normalize(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.ToUpper(strings.TrimSpace(w))
		if !valid(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// valid reports whether w is exactly 5 uppercase ASCII letters.
func valid(w string) bool {
	if len(w) != game.WordLength {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'A' || w[i] > 'Z' {
			return false
		}
	}
	return true
}

// readWordFile loads one word per line from a file, skipping blanks and
// #-comments. Validation happens in Normalize.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

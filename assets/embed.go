package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed seed_words.txt
var FS embed.FS

// SeedWords returns the embedded default word list, uppercased, with
// blank lines and #-comments skipped.
func SeedWords() ([]string, error) {
	f, err := FS.Open("seed_words.txt")
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
		out = append(out, strings.ToUpper(s))
	}
	return out, sc.Err()
}

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/guessfive/go-server/internal/daily"
	"github.com/guessfive/go-server/internal/game"
)

// openTestStore opens a fresh SQLite store seeded with a single word, so
// the "random" secret is deterministic.
func openTestStore(t *testing.T, words ...string) *SQLite {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if len(words) == 0 {
		words = []string{"CRANE"}
	}
	if _, err := st.SeedWords(context.Background(), words); err != nil {
		t.Fatalf("seed words: %v", err)
	}
	return st
}

func testUser(t *testing.T, st *SQLite, username string) *User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), username, "x", false)
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func todayWindow() daily.Window {
	return daily.DayWindow(time.Now(), time.UTC)
}

func TestSeedWordsIsIdempotent(t *testing.T) {
	st := openTestStore(t, "CRANE", "STONE")
	ctx := context.Background()

	n, err := st.SeedWords(ctx, []string{"CRANE", "STONE", "LEVEL"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("inserted = %d, want 1 (duplicates skipped)", n)
	}
	count, err := st.WordCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("word count = %d, want 3", count)
	}
}

func TestCreateUserRejectsDuplicate(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	testUser(t, st, "alice")
	if _, err := st.CreateUser(ctx, "ALICE", "x", false); err == nil {
		t.Error("expected case-insensitive duplicate username to fail")
	}

	u, err := st.UserByUsername(ctx, "Alice")
	if err != nil {
		t.Fatalf("lookup by different case: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("username = %q, want alice", u.Username)
	}

	if _, err := st.UserByUsername(ctx, "nobody"); !errors.Is(err, game.ErrNotFound) {
		t.Errorf("unknown user err = %v, want ErrNotFound", err)
	}
}

func TestCreateGameAndPlayToWin(t *testing.T) {
	st := openTestStore(t) // secret is always CRANE
	ctx := context.Background()
	u := testUser(t, st, "alice")

	g, err := st.CreateGame(ctx, u.ID, game.DefaultGuessesAllowed, todayWindow(), daily.DefaultLimit)
	if err != nil {
		t.Fatal(err)
	}
	if g.Secret != "CRANE" {
		t.Fatalf("secret = %q, want CRANE", g.Secret)
	}
	if g.State() != game.StateActive || g.GuessesUsed != 0 {
		t.Fatalf("new game state = %v used = %d", g.State(), g.GuessesUsed)
	}

	g2, gu, err := st.SubmitGuess(ctx, g.ID, "stone")
	if err != nil {
		t.Fatal(err)
	}
	if gu.Text != "STONE" || len(gu.Marks) != game.WordLength {
		t.Errorf("guess = %+v", gu)
	}
	if g2.GuessesUsed != 1 || g2.State() != game.StateActive {
		t.Errorf("after wrong guess: used=%d state=%v", g2.GuessesUsed, g2.State())
	}

	g3, gu, err := st.SubmitGuess(ctx, g.ID, "crane")
	if err != nil {
		t.Fatal(err)
	}
	for i, m := range gu.Marks {
		if m != game.MarkGreen {
			t.Errorf("mark[%d] = %v, want green", i, m)
		}
	}
	if g3.State() != game.StateWon {
		t.Errorf("state = %v, want won", g3.State())
	}

	// Terminal: further guesses are rejected and nothing is recorded.
	if _, _, err := st.SubmitGuess(ctx, g.ID, "crane"); !errors.Is(err, game.ErrTerminalState) {
		t.Errorf("guess on won game err = %v, want ErrTerminalState", err)
	}
	hist, err := st.History(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 {
		t.Fatalf("history length = %d, want 2", len(hist))
	}
	if hist[0].Text != "STONE" || hist[1].Text != "CRANE" {
		t.Errorf("history order = %q,%q", hist[0].Text, hist[1].Text)
	}

	// Counter matches stored guess rows.
	stored, err := st.GameByID(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.GuessesUsed != len(hist) {
		t.Errorf("guessesUsed = %d, history = %d", stored.GuessesUsed, len(hist))
	}
}

func TestSubmitGuessExhaustsAllowance(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	u := testUser(t, st, "bob")

	g, err := st.CreateGame(ctx, u.ID, game.DefaultGuessesAllowed, todayWindow(), daily.DefaultLimit)
	if err != nil {
		t.Fatal(err)
	}

	var last *game.Game
	for i := 0; i < game.DefaultGuessesAllowed; i++ {
		last, _, err = st.SubmitGuess(ctx, g.ID, "STONE")
		if err != nil {
			t.Fatalf("guess %d: %v", i+1, err)
		}
	}
	if last.State() != game.StateLost {
		t.Errorf("state = %v, want lost", last.State())
	}
	if _, _, err := st.SubmitGuess(ctx, g.ID, "STONE"); !errors.Is(err, game.ErrTerminalState) {
		t.Errorf("err = %v, want ErrTerminalState", err)
	}
}

func TestSubmitGuessValidationLeavesNoRow(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	u := testUser(t, st, "carol")

	g, err := st.CreateGame(ctx, u.ID, game.DefaultGuessesAllowed, todayWindow(), daily.DefaultLimit)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.SubmitGuess(ctx, g.ID, "nope"); !errors.Is(err, game.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	hist, err := st.History(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 0 {
		t.Errorf("history length = %d after rejected guess, want 0", len(hist))
	}
	stored, _ := st.GameByID(ctx, g.ID)
	if stored.GuessesUsed != 0 {
		t.Errorf("guessesUsed = %d, want 0", stored.GuessesUsed)
	}
}

func TestSubmitGuessUnknownGame(t *testing.T) {
	st := openTestStore(t)
	if _, _, err := st.SubmitGuess(context.Background(), "missing", "CRANE"); !errors.Is(err, game.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateGameEnforcesDailyCap(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	u := testUser(t, st, "dave")
	w := todayWindow()

	for i := 0; i < daily.DefaultLimit; i++ {
		if _, err := st.CreateGame(ctx, u.ID, game.DefaultGuessesAllowed, w, daily.DefaultLimit); err != nil {
			t.Fatalf("game %d: %v", i+1, err)
		}
	}
	if _, err := st.CreateGame(ctx, u.ID, game.DefaultGuessesAllowed, w, daily.DefaultLimit); !errors.Is(err, game.ErrLimitExceeded) {
		t.Errorf("err = %v, want ErrLimitExceeded", err)
	}

	// Another user is unaffected.
	u2 := testUser(t, st, "erin")
	if _, err := st.CreateGame(ctx, u2.ID, game.DefaultGuessesAllowed, w, daily.DefaultLimit); err != nil {
		t.Errorf("other user blocked: %v", err)
	}

	n, err := st.CountGamesBetween(ctx, u.ID, w.Start, w.End)
	if err != nil {
		t.Fatal(err)
	}
	if n != daily.DefaultLimit {
		t.Errorf("count = %d, want %d", n, daily.DefaultLimit)
	}
}

func TestGamesBetweenAndByUser(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	alice := testUser(t, st, "alice")
	bob := testUser(t, st, "bob")
	w := todayWindow()

	ga, err := st.CreateGame(ctx, alice.ID, game.DefaultGuessesAllowed, w, daily.DefaultLimit)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.SubmitGuess(ctx, ga.ID, "CRANE"); err != nil {
		t.Fatal(err)
	}
	gb, err := st.CreateGame(ctx, bob.ID, game.DefaultGuessesAllowed, w, daily.DefaultLimit)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.SubmitGuess(ctx, gb.ID, "STONE"); err != nil {
		t.Fatal(err)
	}

	recs, err := st.GamesBetween(ctx, w.Start, w.End)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	// Newest first.
	if recs[0].GameID != gb.ID || recs[1].GameID != ga.ID {
		t.Errorf("order = %s,%s want %s,%s", recs[0].GameID, recs[1].GameID, gb.ID, ga.ID)
	}
	for _, r := range recs {
		if r.Word != "CRANE" || r.GuessCount != 1 {
			t.Errorf("record = %+v", r)
		}
	}
	if !recs[1].Win || recs[0].Win {
		t.Errorf("win flags: alice=%v bob=%v", recs[1].Win, recs[0].Win)
	}

	mine, err := st.GamesByUser(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].Username != "alice" {
		t.Errorf("user records = %+v", mine)
	}

	// Outside the window nothing shows up.
	empty, err := st.GamesBetween(ctx, w.Start.AddDate(0, 0, -1), w.Start)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("yesterday records = %d, want 0", len(empty))
	}
}

func TestRecentGames(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	u := testUser(t, st, "fred")
	w := todayWindow()

	g, err := st.CreateGame(ctx, u.ID, game.DefaultGuessesAllowed, w, daily.DefaultLimit)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.SubmitGuess(ctx, g.ID, "CRANE"); err != nil {
		t.Fatal(err)
	}

	list, err := st.RecentGames(ctx, u.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("recent = %d, want 1", len(list))
	}
	if list[0].State != game.StateWon || list[0].GuessesUsed != 1 {
		t.Errorf("summary = %+v", list[0])
	}
}

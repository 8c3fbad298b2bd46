// internal/store/sqlite.go
//
// SQLite-backed Store implementation.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, FK on).
//   - Applying embedded migrations.
//   - All reads/writes for users, words, games and guesses.
//
// Concurrency notes:
//   - Guess submission is a single transaction: the game row is re-read
//     inside it, the engine transition is applied, and the UPDATE carries
//     an optimistic guard on the previous guesses_used value. A losing
//     concurrent request rolls back with game.ErrConflict instead of
//     double-incrementing.
//   - Game creation counts the day's games and inserts inside the same
//     transaction, so the daily cap holds under concurrent starts.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/guessfive/go-server/internal/daily"
	"github.com/guessfive/go-server/internal/game"
)

// Ensure SQLite implements Store.
var _ Store = (*SQLite)(nil)

// SQLite wraps a *sql.DB opened on a SQLite file.
type SQLite struct {
	db *sql.DB
}

// Open opens (and creates if missing) the SQLite database at dsn,
// sets pragmas and runs migrations.
func Open(dsn string) (*SQLite, error) {
	// Ensure directory exists for ./data/app.db, etc.
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }

// DB exposes the raw handle (useful for tests).
func (s *SQLite) DB() *sql.DB { return s.db }

// Timestamps are stored as RFC3339 UTC text: fixed width, so string
// comparison in SQL matches chronological order.
func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

/* -------------------------------- users -------------------------------- */

func (s *SQLite) CreateUser(ctx context.Context, username, passwordHash string, isStaff bool) (*User, error) {
	var exists int
	_ = s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if exists == 1 {
		return nil, errors.New("username taken")
	}
	u := &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		IsStaff:      isStaff,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, is_staff, created_at) VALUES (?,?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, boolToInt(u.IsStaff), formatTime(u.CreatedAt))
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *SQLite) UserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_staff, created_at
		 FROM users WHERE lower(username)=lower(?)`, username)
	return scanUser(row)
}

func (s *SQLite) UserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_staff, created_at
		 FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var staff int
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &staff, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, game.ErrNotFound
		}
		return nil, err
	}
	u.IsStaff = staff == 1
	u.CreatedAt = parseTime(created)
	return &u, nil
}

/* -------------------------------- words -------------------------------- */

// SeedWords inserts words with INSERT OR IGNORE: re-running the seed step
// is a no-op for words already present.
func (s *SQLite) SeedWords(ctx context.Context, list []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, w := range list {
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO words (text) VALUES (?)`, strings.ToUpper(w))
		if err != nil {
			return 0, fmt.Errorf("seed word %q: %w", w, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *SQLite) WordCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM words`).Scan(&n)
	return n, err
}

/* -------------------------------- games -------------------------------- */

// CreateGame starts a new game for userID with a randomly chosen secret.
// The daily-cap count and the insert share one transaction.
func (s *SQLite) CreateGame(ctx context.Context, userID string, guessesAllowed int, window daily.Window, dailyLimit int) (*game.Game, error) {
	if guessesAllowed <= 0 {
		guessesAllowed = game.DefaultGuessesAllowed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var started int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM games WHERE user_id=? AND started_at >= ? AND started_at < ?`,
		userID, formatTime(window.Start), formatTime(window.End),
	).Scan(&started); err != nil {
		return nil, err
	}
	if started >= dailyLimit {
		return nil, game.ErrLimitExceeded
	}

	var w Word
	err = tx.QueryRowContext(ctx, `SELECT id, text FROM words ORDER BY RANDOM() LIMIT 1`).Scan(&w.ID, &w.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no words seeded: %w", game.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	g := &game.Game{
		ID:             uuid.New().String(),
		UserID:         userID,
		WordID:         w.ID,
		Secret:         w.Text,
		StartedAt:      time.Now().UTC().Truncate(time.Second),
		GuessesAllowed: guessesAllowed,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO games (id, user_id, word_id, started_at, finished, win, guesses_allowed, guesses_used)
		 VALUES (?,?,?,?,0,0,?,0)`,
		g.ID, g.UserID, g.WordID, formatTime(g.StartedAt), g.GuessesAllowed,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *SQLite) GameByID(ctx context.Context, id string) (*game.Game, error) {
	return scanGame(s.db.QueryRowContext(ctx, gameSelect+` WHERE g.id=?`, id))
}

const gameSelect = `SELECT g.id, g.user_id, g.word_id, w.text, g.started_at,
       g.finished, g.win, g.guesses_allowed, g.guesses_used
FROM games g JOIN words w ON w.id = g.word_id`

func scanGame(row *sql.Row) (*game.Game, error) {
	var g game.Game
	var started string
	var finished, win int
	if err := row.Scan(&g.ID, &g.UserID, &g.WordID, &g.Secret, &started,
		&finished, &win, &g.GuessesAllowed, &g.GuessesUsed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, game.ErrNotFound
		}
		return nil, err
	}
	g.StartedAt = parseTime(started)
	g.Finished = finished == 1
	g.Win = win == 1
	return &g, nil
}

// SubmitGuess re-reads the game inside a transaction, applies the engine
// transition, inserts the Guess row and writes the updated counters with
// an optimistic guard on the previous guesses_used value.
func (s *SQLite) SubmitGuess(ctx context.Context, gameID, rawText string) (*game.Game, *game.Guess, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var g game.Game
	var started string
	var finished, win int
	err = tx.QueryRowContext(ctx, gameSelect+` WHERE g.id=?`, gameID).Scan(
		&g.ID, &g.UserID, &g.WordID, &g.Secret, &started,
		&finished, &win, &g.GuessesAllowed, &g.GuessesUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, game.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	g.StartedAt = parseTime(started)
	g.Finished = finished == 1
	g.Win = win == 1

	prevUsed := g.GuessesUsed
	text, marks, err := g.Apply(rawText)
	if err != nil {
		return nil, nil, err
	}

	gu := &game.Guess{
		ID:          uuid.New().String(),
		GameID:      g.ID,
		Text:        text,
		Marks:       marks,
		AttemptedAt: time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO guesses (id, game_id, text, marks, attempted_at) VALUES (?,?,?,?,?)`,
		gu.ID, gu.GameID, gu.Text, game.JoinMarks(gu.Marks), formatTime(gu.AttemptedAt),
	); err != nil {
		return nil, nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE games SET guesses_used=?, finished=?, win=? WHERE id=? AND guesses_used=?`,
		g.GuessesUsed, boolToInt(g.Finished), boolToInt(g.Win), g.ID, prevUsed)
	if err != nil {
		return nil, nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil, game.ErrConflict
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &g, gu, nil
}

// History returns the game's guesses in attempt order. Rowid breaks ties
// between guesses landing in the same second.
func (s *SQLite) History(ctx context.Context, gameID string) ([]game.Guess, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, text, marks, attempted_at
		 FROM guesses WHERE game_id=?
		 ORDER BY attempted_at ASC, rowid ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []game.Guess{}
	for rows.Next() {
		var gu game.Guess
		var marks, attempted string
		if err := rows.Scan(&gu.ID, &gu.GameID, &gu.Text, &marks, &attempted); err != nil {
			return nil, err
		}
		ms, err := game.ParseMarks(marks)
		if err != nil {
			return nil, fmt.Errorf("guess %s: %w", gu.ID, err)
		}
		gu.Marks = ms
		gu.AttemptedAt = parseTime(attempted)
		out = append(out, gu)
	}
	return out, rows.Err()
}

/* ------------------------------- queries -------------------------------- */

func (s *SQLite) RecentGames(ctx context.Context, userID string, limit int) ([]GameSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished, win, guesses_allowed, guesses_used
		 FROM games WHERE user_id=?
		 ORDER BY started_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameSummary{}
	for rows.Next() {
		var gs GameSummary
		var started string
		var finished, win int
		if err := rows.Scan(&gs.ID, &started, &finished, &win, &gs.GuessesAllowed, &gs.GuessesUsed); err != nil {
			return nil, err
		}
		gs.StartedAt = parseTime(started)
		gs.Win = win == 1
		g := game.Game{Finished: finished == 1, Win: gs.Win}
		gs.State = g.State()
		out = append(out, gs)
	}
	return out, rows.Err()
}

func (s *SQLite) CountGamesBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM games WHERE user_id=? AND started_at >= ? AND started_at < ?`,
		userID, formatTime(from), formatTime(to)).Scan(&n)
	return n, err
}

const recordSelect = `SELECT g.id, g.user_id, u.username, w.text, g.started_at, g.win,
       (SELECT COUNT(1) FROM guesses q WHERE q.game_id = g.id) AS guess_count
FROM games g
JOIN users u ON u.id = g.user_id
JOIN words w ON w.id = g.word_id`

func (s *SQLite) GamesBetween(ctx context.Context, from, to time.Time) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		recordSelect+` WHERE g.started_at >= ? AND g.started_at < ?
		 ORDER BY g.started_at DESC, g.rowid DESC`,
		formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (s *SQLite) GamesByUser(ctx context.Context, userID string) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		recordSelect+` WHERE g.user_id=? ORDER BY g.started_at DESC, g.rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]GameRecord, error) {
	defer rows.Close()
	out := []GameRecord{}
	for rows.Next() {
		var r GameRecord
		var started string
		var win int
		if err := rows.Scan(&r.GameID, &r.UserID, &r.Username, &r.Word, &started, &win, &r.GuessCount); err != nil {
			return nil, err
		}
		r.StartedAt = parseTime(started)
		r.Win = win == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

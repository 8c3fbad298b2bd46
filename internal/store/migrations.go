package store

import (
	"database/sql"
	"fmt"
)

// Migrations are embedded here rather than read from a ./sql directory so
// fresh checkouts and tests need no external files. Applied migrations
// are recorded in _migrations and skipped on later runs.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "001_init",
		sql: `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE COLLATE NOCASE,
    password_hash TEXT NOT NULL,
    is_staff      INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS words (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS games (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    word_id         INTEGER NOT NULL REFERENCES words(id),
    started_at      TEXT NOT NULL,
    finished        INTEGER NOT NULL DEFAULT 0,
    win             INTEGER NOT NULL DEFAULT 0,
    guesses_allowed INTEGER NOT NULL DEFAULT 5,
    guesses_used    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_games_user_started ON games(user_id, started_at);
CREATE INDEX IF NOT EXISTS idx_games_started ON games(started_at);

CREATE TABLE IF NOT EXISTS guesses (
    id           TEXT PRIMARY KEY,
    game_id      TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    text         TEXT NOT NULL,
    marks        TEXT NOT NULL,
    attempted_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_guesses_game ON guesses(game_id, attempted_at);
`,
	},
}

// migrate applies pending migrations inside dedicated transactions,
// recording each in the _migrations ledger.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	for _, m := range migrations {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, m.name).Scan(&done)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", m.name, err)
		}
	}
	return nil
}

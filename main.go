package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/guessfive/go-server/internal/daily"
	"github.com/guessfive/go-server/internal/game"
	"github.com/guessfive/go-server/internal/httpserver"
	"github.com/guessfive/go-server/internal/report"
	"github.com/guessfive/go-server/internal/store"
	"github.com/guessfive/go-server/internal/words"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	st, err := store.Open(getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer st.Close()

	ctx := context.Background()
	seedWords(ctx, st)
	ensureStaffUser(ctx, st)

	loc := loadTimezone()
	policy := daily.NewPolicy(st, envInt("DAILY_GAME_LIMIT", daily.DefaultLimit), loc)
	reports := report.New(st, loc)

	srv := httpserver.New(st, policy, reports)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Str("tz", loc.String()).Msg("starting go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// seedWords loads the word list (WORDS_FILE or embedded defaults) and
// seeds the word table. Idempotent: already-present words are skipped.
func seedWords(ctx context.Context, st store.Store) {
	list, err := words.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	n, err := st.SeedWords(ctx, list)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed words")
	}
	log.Info().Int("loaded", len(list)).Int("inserted", n).Msg("seeded words")
}

// ensureStaffUser bootstraps a staff account from ADMIN_USERNAME /
// ADMIN_PASSWORD if set and not already present. Staff accounts can read
// the /admin/reports endpoints.
func ensureStaffUser(ctx context.Context, st store.Store) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}
	if _, err := st.UserByUsername(ctx, username); err == nil {
		return
	} else if !errors.Is(err, game.ErrNotFound) {
		log.Fatal().Err(err).Msg("failed to look up admin user")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash admin password")
	}
	if _, err := st.CreateUser(ctx, username, string(h), true); err != nil {
		log.Fatal().Err(err).Msg("failed to create admin user")
	}
	log.Info().Str("username", username).Msg("created staff user")
}

// loadTimezone resolves the TIMEZONE env var (default UTC). Day
// boundaries for the daily limit and reports follow this zone.
func loadTimezone() *time.Location {
	name := getEnv("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Err(err).Str("tz", name).Msg("invalid timezone, using UTC")
		return time.UTC
	}
	return loc
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// internal/httpserver/server.go
//
// HTTP wiring for the word-guessing backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints (require auth): start, guess, history, my games.
//   - Auth endpoints: /auth/*.
//   - Staff report endpoints: mounted under /admin/reports.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Domain errors from the engine/store are translated to HTTP statuses
//     here; nothing below this layer knows about HTTP.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/guessfive/go-server/internal/daily"
	"github.com/guessfive/go-server/internal/game"
	"github.com/guessfive/go-server/internal/report"
	"github.com/guessfive/go-server/internal/store"
)

// Server bundles router, store, daily-limit policy and report aggregator.
type Server struct {
	r       *chi.Mux
	store   store.Store
	policy  *daily.Policy
	reports *report.Aggregator
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, policy *daily.Policy, reports *report.Aggregator) *Server {
	s := &Server{r: chi.NewRouter(), store: st, policy: policy, reports: reports}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"guessfive","endpoints":["/health","POST /games","POST /games/{gameID}/guess","/auth/*","/admin/reports/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		n, err := s.store.WordCount(r.Context())
		if err != nil {
			http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"words": n})
	})

	// Game endpoints — players must be signed in.
	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Post("/games", s.handleNewGame)
		r.Post("/games/{gameID}/guess", s.handleGuess)
		r.Get("/games/{gameID}/history", s.handleHistory)
		r.Get("/games/mine", s.handleMyGames)
	})

	// Auth endpoints.
	s.mountAuthRoutes()

	// Staff reports.
	s.mountReportRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// gameView is the game state returned to the player. The secret is only
// revealed once the game is lost.
type gameView struct {
	GameID         string     `json:"gameId"`
	StartedAt      time.Time  `json:"startedAt"`
	State          game.State `json:"state"`
	GuessesUsed    int        `json:"guessesUsed"`
	GuessesAllowed int        `json:"guessesAllowed"`
	Secret         string     `json:"secret,omitempty"`
}

func viewOf(g *game.Game) gameView {
	v := gameView{
		GameID:         g.ID,
		StartedAt:      g.StartedAt,
		State:          g.State(),
		GuessesUsed:    g.GuessesUsed,
		GuessesAllowed: g.GuessesAllowed,
	}
	if g.State() == game.StateLost {
		v.Secret = g.Secret
	}
	return v
}

// handleNewGame starts a game for the current user, enforcing the daily
// cap. The policy check is advisory; the store re-checks inside the
// creation transaction.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	if me == nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	ok, err := s.policy.CanStartNewGame(r.Context(), me.ID, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("daily limit check")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"limit_exceeded"}`, http.StatusTooManyRequests)
		return
	}

	g, err := s.store.CreateGame(r.Context(), me.ID, game.DefaultGuessesAllowed, s.policy.Today(), s.policy.Limit())
	if errors.Is(err, game.ErrLimitExceeded) {
		http.Error(w, `{"error":"limit_exceeded"}`, http.StatusTooManyRequests)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("create game")
		http.Error(w, `{"error":"create_failed"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(viewOf(g))
}

// guessReq/guessRes payloads for POST /games/{gameID}/guess.
type guessReq struct {
	Guess string `json:"guess"`
}
type guessRes struct {
	Accepted bool        `json:"accepted"`
	Error    string      `json:"error,omitempty"`
	Guess    *game.Guess `json:"guess,omitempty"`
	Game     *gameView   `json:"game,omitempty"`
}

// handleGuess applies a guess to the caller's game. The Guess row, the
// counter increment and any terminal transition commit atomically.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	if me == nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	gameID := chi.URLParam(r, "gameID")
	g, err := s.store.GameByID(r.Context(), gameID)
	if err != nil || g.UserID != me.ID {
		// Foreign games look the same as missing ones.
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	g, gu, err := s.store.SubmitGuess(r.Context(), gameID, req.Guess)
	if err != nil {
		s.writeGuessError(w, err)
		return
	}

	v := viewOf(g)
	_ = json.NewEncoder(w).Encode(guessRes{Accepted: true, Guess: gu, Game: &v})
}

// writeGuessError maps engine/store errors onto HTTP statuses.
func (s *Server) writeGuessError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrTerminalState),
		errors.Is(err, game.ErrGuessLimit),
		errors.Is(err, game.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, game.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("submit guess")
		http.Error(w, `{"error":"guess_failed"}`, status)
		return
	}
	body, _ := json.Marshal(guessRes{Accepted: false, Error: err.Error()})
	http.Error(w, string(body), status)
}

// historyRow is one attempt in display order.
type historyRow struct {
	Index       int         `json:"index"`
	Text        string      `json:"text"`
	Marks       []game.Mark `json:"marks"`
	AttemptedAt time.Time   `json:"attemptedAt"`
}

// handleHistory returns the caller's guesses for one game in attempt
// order. Re-queries on every call; no side effects.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	if me == nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	gameID := chi.URLParam(r, "gameID")
	g, err := s.store.GameByID(r.Context(), gameID)
	if err != nil || g.UserID != me.ID {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	guesses, err := s.store.History(r.Context(), gameID)
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("load history")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	out := make([]historyRow, 0, len(guesses))
	for i, gu := range guesses {
		out = append(out, historyRow{Index: i, Text: gu.Text, Marks: gu.Marks, AttemptedAt: gu.AttemptedAt})
	}
	v := viewOf(g)
	_ = json.NewEncoder(w).Encode(map[string]any{"game": v, "guesses": out})
}

// handleMyGames returns the player's recent games and today's started
// count (the dashboard payload).
func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	if me == nil {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}
	recent, err := s.store.RecentGames(r.Context(), me.ID, 10)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	today, err := s.policy.GamesStarted(r.Context(), me.ID, time.Now())
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"games":      recent,
		"todayCount": today,
		"dailyLimit": s.policy.Limit(),
	})
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

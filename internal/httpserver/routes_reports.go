// internal/httpserver/routes_reports.go
//
// Staff-only reporting endpoints under /admin/reports:
//   - GET /admin/reports/day?date=YYYY-MM-DD&format=csv&detail=1
//   - GET /admin/reports/user?username=NAME&format=csv
//
// JSON by default; format=csv streams a downloadable CSV attachment.
// Both endpoints are pure reads over persisted games/guesses.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/guessfive/go-server/internal/report"
)

// mountReportRoutes registers the /admin/reports routes behind
// requireAuth + requireStaff.
func (s *Server) mountReportRoutes() {
	s.r.Route("/admin/reports", func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Use(s.requireStaff())
		r.Get("/day", s.handleDayReport)
		r.Get("/user", s.handleUserReport)
	})
}

// handleDayReport aggregates one calendar day (default: today).
func (s *Server) handleDayReport(w http.ResponseWriter, r *http.Request) {
	on := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, s.reports.Location())
		if err != nil {
			http.Error(w, `{"error":"bad_date"}`, http.StatusBadRequest)
			return
		}
		on = parsed
	}

	rep, err := s.reports.ForDay(r.Context(), on)
	if err != nil {
		log.Error().Err(err).Msg("daily report")
		http.Error(w, `{"error":"report_failed"}`, http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		detail := r.URL.Query().Get("detail") == "1"
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="report_day_`+rep.Date+`.csv"`)
		if err := report.WriteDailyCSV(w, rep, detail); err != nil {
			log.Error().Err(err).Msg("write daily csv")
		}
		return
	}
	_ = json.NewEncoder(w).Encode(rep)
}

// handleUserReport lists every game the named user played.
func (s *Server) handleUserReport(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, `{"error":"missing_username"}`, http.StatusBadRequest)
		return
	}

	rows, err := s.reports.ForUser(r.Context(), username)
	if err != nil {
		if notFound(err) {
			http.Error(w, `{"error":"user_not_found"}`, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("username", username).Msg("user report")
		http.Error(w, `{"error":"report_failed"}`, http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="report_user_`+username+`.csv"`)
		if err := report.WriteUserCSV(w, rows); err != nil {
			log.Error().Err(err).Msg("write user csv")
		}
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"username": username, "games": rows})
}

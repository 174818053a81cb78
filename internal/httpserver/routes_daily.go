// internal/httpserver/routes_daily.go
//
// Daily Challenge mode. Every route addresses the caller's session for
// today's UTC date; one session per user per day. The date is the server's
// clock, not the client's: a game started before UTC midnight is no longer
// addressable after it (404), and POST /daily starts the new day's game.
//   - POST /daily              → today's session (created on first call)
//   - POST /daily/guess        → submit a guess
//   - POST /daily/hint/letter  → reveal one letter
//   - POST /daily/hint/power   → one-time meaning clue
//   - GET  /daily/reveal       → target word once finished
//   - GET  /daily/leaderboard  → today's (or ?date=) winners, public
//
// Also the overall leaderboard and the reminder trigger.

package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordplay/internal/daily"
	"github.com/robalobadob/wordplay/internal/notify"
)

func (s *Server) mountDaily() {
	s.r.Route("/daily", func(r chi.Router) {
		r.Get("/leaderboard", s.handleDailyLeaderboard)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleStartDaily)
			r.Post("/guess", s.keyed(dailyKey, s.handleGuess))
			r.Post("/hint/letter", s.keyed(dailyKey, s.handleLetterHint))
			r.Post("/hint/power", s.keyed(dailyKey, s.handlePowerHint))
			r.Get("/reveal", s.keyed(dailyKey, s.handleReveal))
		})
	})
}

// dailyRes is returned by POST /daily.
type dailyRes struct {
	Date    string `json:"date"`
	Session any    `json:"session"`
}

func (s *Server) handleStartDaily(w http.ResponseWriter, r *http.Request) {
	v, err := s.ctl.StartDaily(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dailyRes{Date: s.ctl.Today(), Session: v})
}

// ------------------------------ leaderboards ------------------------------

// limitParam reads ?limit=; absent means the board's default.
func limitParam(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n, ok := limitParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_request", Message: "limit must be an integer"})
		return
	}
	rows, err := s.board.TopPlayers(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"players": rows})
}

func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	n, ok := limitParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_request", Message: "limit must be an integer"})
		return
	}
	date := s.ctl.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := daily.ParseDate(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_request", Message: "date must be YYYY-MM-DD"})
			return
		}
		date = d
	}
	rows, err := s.board.DailyRankings(r.Context(), date, n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "results": rows})
}

// ------------------------------ cron reminder ------------------------------

// handleDailyReminder emails the reminder list. Hit by an external
// scheduler with "Authorization: Bearer <CRON_SECRET>".
func (s *Server) handleDailyReminder(w http.ResponseWriter, r *http.Request) {
	if !notify.Authorize(r.Header.Get("Authorization"), s.cfg.CronSecret) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return
	}
	if s.reminder == nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "mailer_not_configured"})
		return
	}
	n, id, err := s.reminder.Send(r.Context())
	if errors.Is(err, notify.ErrNotConfigured) {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "mailer_not_configured", Message: err.Error()})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sent": n, "id": id})
}

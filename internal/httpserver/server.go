// internal/httpserver/server.go
//
// HTTP server wiring for the wordplay backend.
// Responsibilities:
//   - Router + middleware (access log, JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", auth, leaderboards, cron reminder.
//   - Game endpoints (require auth): /game/*, /daily/*, /stats/me.
//
// Handlers stay thin: decode + validate the request, call the controller,
// map typed game errors onto status codes.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordplay/internal/config"
	"github.com/robalobadob/wordplay/internal/controller"
	"github.com/robalobadob/wordplay/internal/notify"
	"github.com/robalobadob/wordplay/internal/oracle"
	"github.com/robalobadob/wordplay/internal/stats"
	"github.com/robalobadob/wordplay/internal/store"
)

// Server bundles the router with its collaborators.
type Server struct {
	r        *chi.Mux
	cfg      *config.Config
	ctl      *controller.Controller
	store    store.Store
	board    *stats.Board
	reminder *notify.Reminder
	now      func() time.Time
}

const (
	minRequestTimeout = 15 * time.Second
	oracleSlack       = 5 * time.Second
)

// requestTimeout is the router deadline: the oracle's worst case plus slack,
// never below minRequestTimeout. A guess or power hint makes at most one
// oracle call.
func requestTimeout(cfg *config.Config) time.Duration {
	d := oracle.Config{Timeout: cfg.OracleTimeout, Retries: cfg.OracleRetries}.WorstCase() + oracleSlack
	if d < minRequestTimeout {
		return minRequestTimeout
	}
	return d
}

// New constructs a Server, installs middleware, and registers routes.
// reminder may be nil, in which case the cron route answers 500.
func New(cfg *config.Config, ctl *controller.Controller, st store.Store, reminder *notify.Reminder) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg,
		ctl:      ctl,
		store:    st,
		board:    stats.NewBoard(st),
		reminder: reminder,
		now:      time.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(requestTimeout(cfg)))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordplay","endpoints":["/health","/auth/*","/game/*","/daily/*","/leaderboard"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountAuthRoutes()
	s.mountGameRoutes()
	s.mountDaily()
	s.r.Get("/leaderboard", s.handleLeaderboard)
	s.r.Get("/api/cron/daily-reminder", s.handleDailyReminder)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (used by main and tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// accessLog attaches the request logger and writes one line per request.
func accessLog(next http.Handler) http.Handler {
	h := hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})(next)
	return hlog.NewHandler(log.Logger)(h)
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
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

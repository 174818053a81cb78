// internal/httpserver/routes_game.go
//
// Regular (levelled) mode:
//   - POST /game                  → current playing session, or a new one
//   - POST /game/next             → start the next level
//   - GET  /game/remaining        → whether unsolved words remain
//   - POST /game/{id}/guess       → submit a guess
//   - POST /game/{id}/hint/letter → reveal one letter
//   - POST /game/{id}/hint/power  → one-time meaning clue
//   - GET  /game/{id}/reveal      → target word once finished

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordplay/internal/game"
)

// guessReq is the payload for every guess endpoint.
type guessReq struct {
	Guess string `json:"guess" validate:"required,max=32"`
}

func (g *guessReq) normalize() { g.Guess = game.Normalize(g.Guess) }

// sessionRes wraps a view so "no words left" can answer {"session":null}.
type sessionRes struct {
	Session game.View `json:"session"`
}

func (s *Server) mountGameRoutes() {
	s.r.Route("/game", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/", s.handleStartSession)
		r.Post("/next", s.handleNextLevel)
		r.Get("/remaining", s.handleRemaining)
		r.Route("/{id}", func(r chi.Router) {
			r.Post("/guess", s.keyed(regularKey, s.handleGuess))
			r.Post("/hint/letter", s.keyed(regularKey, s.handleLetterHint))
			r.Post("/hint/power", s.keyed(regularKey, s.handlePowerHint))
			r.Get("/reveal", s.keyed(regularKey, s.handleReveal))
		})
	})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	v, err := s.ctl.StartSession(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionRes{Session: v})
}

func (s *Server) handleNextLevel(w http.ResponseWriter, r *http.Request) {
	v, err := s.ctl.NextLevel(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionRes{Session: v})
}

func (s *Server) handleRemaining(w http.ResponseWriter, r *http.Request) {
	ok, err := s.ctl.HasUnsolvedWords(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hasUnsolvedWords": ok})
}

// ------------------------- handlers shared with /daily -------------------------

// keyFunc resolves the session a request addresses.
type keyFunc func(s *Server, r *http.Request) game.Key

func regularKey(_ *Server, r *http.Request) game.Key { return game.RegularKey(chi.URLParam(r, "id")) }

func dailyKey(s *Server, _ *http.Request) game.Key { return game.DailyKey(s.ctl.Today()) }

type keyedHandler func(w http.ResponseWriter, r *http.Request, key game.Key)

func (s *Server) keyed(kf keyFunc, h keyedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { h(w, r, kf(s, r)) }
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request, key game.Key) {
	var body guessReq
	if err := decodeBody(r, &body); err != nil {
		if errors.Is(err, errBadJSON) {
			badRequest(w, err)
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: string(game.KindMalformedInput), Message: validationMessage(err)})
		return
	}
	res, err := s.ctl.SubmitGuess(r.Context(), userID(r), key, body.Guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLetterHint(w http.ResponseWriter, r *http.Request, key game.Key) {
	hint, err := s.ctl.RequestLetterHint(r.Context(), userID(r), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hint)
}

func (s *Server) handlePowerHint(w http.ResponseWriter, r *http.Request, key game.Key) {
	text, err := s.ctl.RequestPowerHint(r.Context(), userID(r), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hint": text})
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request, key game.Key) {
	word, ok, err := s.ctl.Reveal(r.Context(), userID(r), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, game.ErrInvalidState)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"word": word})
}

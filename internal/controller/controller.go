// internal/controller/controller.go
//
// Game controller: one state transition per call.
//
// Every mutating operation follows the same shape:
//  1. load the session owned by the caller,
//  2. check preconditions,
//  3. run any slow external call (dictionary, hint text) with nothing held,
//  4. reload, re-apply the transition and save with a version check,
//     retrying on a lost race.
//
// Step 4 re-runs the engine's own precondition checks against the fresh
// row, so a session that finished while the oracle was in flight is never
// mutated again.
package controller

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordplay/internal/daily"
	"github.com/robalobadob/wordplay/internal/game"
	"github.com/robalobadob/wordplay/internal/stats"
	"github.com/robalobadob/wordplay/internal/store"
)

// Dictionary decides whether a guess is an acceptable word.
type Dictionary interface {
	IsAcceptable(ctx context.Context, word string, length int) (bool, error)
}

// Hinter produces the one-time power hint sentence for a target word.
type Hinter interface {
	MeaningHint(ctx context.Context, word string) (string, error)
}

// Controller orchestrates sessions against a Store.
type Controller struct {
	store  store.Store
	dict   Dictionary
	hinter Hinter
	daily  *daily.Picker

	now        func() time.Time
	intn       func(n int) int
	maxRetries int
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// WithRand overrides the random source; intn(n) must return a value in [0, n).
func WithRand(intn func(n int) int) Option { return func(c *Controller) { c.intn = intn } }

// WithMaxRetries bounds how often a lost save race is retried.
func WithMaxRetries(n int) Option { return func(c *Controller) { c.maxRetries = n } }

func New(st store.Store, dict Dictionary, hinter Hinter, opts ...Option) *Controller {
	c := &Controller{
		store:      st,
		dict:       dict,
		hinter:     hinter,
		daily:      daily.NewPicker(st, game.DailyLength),
		now:        func() time.Time { return time.Now().UTC() },
		intn:       rand.Intn,
		maxRetries: 5,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GuessResult is the outcome of one accepted guess.
type GuessResult struct {
	Evaluation []game.Status `json:"evaluation"`
	State      game.State    `json:"state"`
	Game       game.View     `json:"game"`
}

/* ----------------------------- regular mode ----------------------------- */

// StartSession returns the caller's playing session, or draws a new word
// the caller has not solved yet. game.ErrNoWordsAvailable means the pool
// for the drawn length is empty and no session was created.
func (c *Controller) StartSession(ctx context.Context, userID string) (game.View, error) {
	if userID == "" {
		return game.View{}, game.ErrUnauthenticated
	}
	for attempt := 0; ; attempt++ {
		cur, err := c.store.ActiveSession(ctx, userID)
		if err == nil {
			return cur.View(), nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return game.View{}, fmt.Errorf("controller: active session: %w", err)
		}

		length := game.Lengths[c.intn(len(game.Lengths))]
		pool, err := c.store.UnsolvedWordIDs(ctx, userID, length)
		if err != nil {
			return game.View{}, fmt.Errorf("controller: word pool: %w", err)
		}
		if len(pool) == 0 {
			log.Info().Str("user", userID).Int("word_len", length).Msg("no words available")
			return game.View{}, game.ErrNoWordsAvailable
		}
		w, err := c.store.WordByID(ctx, pool[c.intn(len(pool))])
		if err != nil {
			return game.View{}, fmt.Errorf("controller: word: %w", err)
		}

		s := game.NewSession(game.Regular, userID, w, c.now())
		s.ID = uuid.NewString()
		stored, created, err := c.store.CreateSession(ctx, s)
		if errors.Is(err, store.ErrConflict) && attempt < c.maxRetries {
			continue
		}
		if err != nil {
			return game.View{}, fmt.Errorf("controller: create session: %w", err)
		}
		if created {
			log.Info().Str("user", userID).Str("session", s.ID).Int("word_len", length).Msg("session started")
		}
		return stored.View(), nil
	}
}

// NextLevel starts the next regular level. A still-playing session is
// returned as is; there is only ever one per user.
func (c *Controller) NextLevel(ctx context.Context, userID string) (game.View, error) {
	return c.StartSession(ctx, userID)
}

// HasUnsolvedWords reports whether any word of any length remains for the user.
func (c *Controller) HasUnsolvedWords(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, game.ErrUnauthenticated
	}
	ok, err := c.store.HasUnsolvedWords(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("controller: unsolved words: %w", err)
	}
	return ok, nil
}

// UserStats returns the caller's aggregate stats.
func (c *Controller) UserStats(ctx context.Context, userID string) (stats.UserStats, error) {
	if userID == "" {
		return stats.UserStats{}, game.ErrUnauthenticated
	}
	st, err := c.store.UserStats(ctx, userID)
	if err != nil {
		return stats.UserStats{}, fmt.Errorf("controller: stats: %w", err)
	}
	return st, nil
}

/* ------------------------------ daily mode ------------------------------ */

// StartDaily returns (creating if needed) the caller's session for today's
// UTC date. Every player gets the same word.
func (c *Controller) StartDaily(ctx context.Context, userID string) (game.View, error) {
	if userID == "" {
		return game.View{}, game.ErrUnauthenticated
	}
	date := daily.DateKey(c.now())

	cur, err := c.store.LoadSession(ctx, userID, game.DailyKey(date))
	if err == nil {
		return cur.View(), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return game.View{}, fmt.Errorf("controller: daily session: %w", err)
	}

	wordID, err := c.daily.WordForDate(ctx, date)
	if errors.Is(err, daily.ErrNoCandidates) {
		return game.View{}, game.ErrNoWordsAvailable
	}
	if err != nil {
		return game.View{}, fmt.Errorf("controller: daily word: %w", err)
	}
	w, err := c.store.WordByID(ctx, wordID)
	if err != nil {
		return game.View{}, fmt.Errorf("controller: daily word: %w", err)
	}

	s := game.NewSession(game.Daily, userID, w, c.now())
	s.Date = date
	stored, created, err := c.store.CreateSession(ctx, s)
	if err != nil {
		return game.View{}, fmt.Errorf("controller: create daily: %w", err)
	}
	if created {
		log.Info().Str("user", userID).Str("date", date).Msg("daily started")
	}
	return stored.View(), nil
}

// Today is the current daily key.
func (c *Controller) Today() string { return daily.DateKey(c.now()) }

/* ------------------------------ both modes ------------------------------ */

// SubmitGuess validates, scores and records one guess.
func (c *Controller) SubmitGuess(ctx context.Context, userID string, key game.Key, raw string) (GuessResult, error) {
	if userID == "" {
		return GuessResult{}, game.ErrUnauthenticated
	}
	guess := game.Normalize(raw)

	s, err := c.load(ctx, userID, key)
	if err != nil {
		return GuessResult{}, err
	}
	if err := s.CheckGuess(guess); err != nil {
		return GuessResult{}, err
	}

	ok, err := c.dict.IsAcceptable(ctx, guess, s.Length())
	if err != nil {
		return GuessResult{}, fmt.Errorf("controller: dictionary: %w", err)
	}
	if !ok {
		return GuessResult{}, game.ErrRejectedByDictionary
	}

	var marks []game.Status
	s, err = c.mutate(ctx, userID, key, func(s *game.Session, now time.Time) (*store.Finish, error) {
		var err error
		if marks, err = s.ApplyGuess(guess, now); err != nil {
			return nil, err
		}
		if s.Mode == game.Regular && s.State.Terminal() {
			return &store.Finish{Won: s.State == game.Won, At: now}, nil
		}
		return nil, nil
	})
	if err != nil {
		return GuessResult{}, err
	}

	if s.State.Terminal() {
		log.Info().
			Str("user", userID).
			Str("session", s.View().SessionID).
			Str("state", string(s.State)).
			Int("attempts", s.AttemptsUsed).
			Msg("session finished")
	}
	return GuessResult{Evaluation: marks, State: s.State, Game: s.View()}, nil
}

// RequestLetterHint reveals one letter at a position not yet known.
func (c *Controller) RequestLetterHint(ctx context.Context, userID string, key game.Key) (game.LetterHint, error) {
	if userID == "" {
		return game.LetterHint{}, game.ErrUnauthenticated
	}
	var hint game.LetterHint
	_, err := c.mutate(ctx, userID, key, func(s *game.Session, now time.Time) (*store.Finish, error) {
		var err error
		hint, err = s.ApplyLetterHint(c.intn, now)
		return nil, err
	})
	if err != nil {
		return game.LetterHint{}, err
	}
	return hint, nil
}

// RequestPowerHint asks the hint oracle for a one-sentence clue. The one-time
// use is only consumed once the oracle has answered.
func (c *Controller) RequestPowerHint(ctx context.Context, userID string, key game.Key) (string, error) {
	if userID == "" {
		return "", game.ErrUnauthenticated
	}
	s, err := c.load(ctx, userID, key)
	if err != nil {
		return "", err
	}
	if err := s.CheckPowerHint(); err != nil {
		return "", err
	}
	if c.hinter == nil {
		return "", game.ErrOracleUnavailable
	}

	text, err := c.hinter.MeaningHint(ctx, s.Target)
	if err != nil || text == "" {
		log.Warn().Err(err).Str("user", userID).Msg("power hint unavailable")
		return "", game.ErrOracleUnavailable
	}

	if _, err := c.mutate(ctx, userID, key, func(s *game.Session, now time.Time) (*store.Finish, error) {
		return nil, s.ApplyPowerHint(text, now)
	}); err != nil {
		return "", err
	}
	return text, nil
}

// Reveal returns the target once the session is over; ok is false while
// it is still playing.
func (c *Controller) Reveal(ctx context.Context, userID string, key game.Key) (word string, ok bool, err error) {
	if userID == "" {
		return "", false, game.ErrUnauthenticated
	}
	s, err := c.load(ctx, userID, key)
	if err != nil {
		return "", false, err
	}
	word, ok = s.Reveal()
	return word, ok, nil
}

/* ------------------------------- helpers ------------------------------- */

func (c *Controller) load(ctx context.Context, userID string, key game.Key) (*game.Session, error) {
	s, err := c.store.LoadSession(ctx, userID, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, game.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("controller: load session: %w", err)
	}
	return s, nil
}

// mutate reloads the session, applies fn and saves it under the version
// check, retrying from a fresh read when another writer got there first.
func (c *Controller) mutate(
	ctx context.Context,
	userID string,
	key game.Key,
	fn func(s *game.Session, now time.Time) (*store.Finish, error),
) (*game.Session, error) {
	for attempt := 0; ; attempt++ {
		s, err := c.load(ctx, userID, key)
		if err != nil {
			return nil, err
		}
		fin, err := fn(s, c.now())
		if err != nil {
			return nil, err
		}
		err = c.store.SaveSession(ctx, s, fin)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, store.ErrConflict) || attempt >= c.maxRetries {
			return nil, fmt.Errorf("controller: save session: %w", err)
		}
		log.Debug().Str("user", userID).Int("attempt", attempt+1).Msg("session save conflict, retrying")
	}
}

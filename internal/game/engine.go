// internal/game/engine.go
//
// State machine for a single session.
// Responsibilities:
//   - Create sessions with fixed dimensions (6 attempts, word length from target).
//   - Validate and apply guesses; drive playing → won | lost.
//   - Letter-hint and power-hint bookkeeping.
//
// Dictionary membership is decided outside this package; ApplyGuess only
// enforces the structural preconditions.
package game

import (
	"time"
)

// NewSession builds a fresh playing session for w.
func NewSession(mode Mode, userID string, w Word, now time.Time) *Session {
	return &Session{
		Mode:            mode,
		UserID:          userID,
		WordID:          w.ID,
		Target:          Normalize(w.Text),
		MaxAttempts:     MaxAttempts,
		State:           Playing,
		Guesses:         []string{},
		Evaluations:     [][]Status{},
		HintedPositions: []int{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CheckGuess reports why guess cannot be applied right now, if at all.
// guess must already be normalized.
func (s *Session) CheckGuess(guess string) error {
	if s.State != Playing {
		return ErrInvalidState
	}
	if s.AttemptsUsed >= s.MaxAttempts {
		return ErrExhaustedAttempts
	}
	if len(guess) != s.Length() {
		return ErrMalformedInput
	}
	if !IsAlpha(guess) {
		return ErrNotLetters
	}
	return nil
}

// ApplyGuess scores guess, appends it to the history and advances the state.
// Returns the per-letter marks for this guess.
func (s *Session) ApplyGuess(guess string, now time.Time) ([]Status, error) {
	if err := s.CheckGuess(guess); err != nil {
		return nil, err
	}

	marks := Evaluate(guess, s.Target)
	s.Guesses = append(s.Guesses, guess)
	s.Evaluations = append(s.Evaluations, marks)
	s.AttemptsUsed++
	s.UpdatedAt = now

	switch {
	case Solved(marks):
		s.State = Won
	case s.AttemptsUsed >= s.MaxAttempts:
		s.State = Lost
	}
	if s.State.Terminal() {
		s.CompletedAt = &now
	}
	return marks, nil
}

// Hintable lists 0-based positions that are neither hinted nor already
// evaluated Correct in any row.
func (s *Session) Hintable() []int {
	known := make(map[int]bool, s.Length())
	for _, p := range s.HintedPositions {
		known[p] = true
	}
	for _, row := range s.Evaluations {
		for col, m := range row {
			if m == Correct {
				known[col] = true
			}
		}
	}
	var out []int
	for i := 0; i < s.Length(); i++ {
		if !known[i] {
			out = append(out, i)
		}
	}
	return out
}

// ApplyLetterHint reveals one unknown letter. pick(n) must return a value in [0, n).
func (s *Session) ApplyLetterHint(pick func(n int) int, now time.Time) (LetterHint, error) {
	if s.State != Playing {
		return LetterHint{}, ErrInvalidState
	}
	if s.LetterHintsUsed >= MaxLetterHints {
		return LetterHint{}, ErrHintExhausted
	}
	avail := s.Hintable()
	if len(avail) == 0 {
		return LetterHint{}, ErrNoHintablePositions
	}

	pos := avail[pick(len(avail))]
	s.LetterHintsUsed++
	s.HintedPositions = append(s.HintedPositions, pos)
	s.UpdatedAt = now
	return LetterHint{Letter: string([]rune(s.Target)[pos]), Position: pos + 1}, nil
}

// CheckPowerHint reports whether the one-time power hint may still be used.
func (s *Session) CheckPowerHint() error {
	if s.State != Playing {
		return ErrInvalidState
	}
	if s.PowerHintUsed {
		return ErrPowerHintUsed
	}
	return nil
}

// ApplyPowerHint consumes the power hint and records its text.
func (s *Session) ApplyPowerHint(text string, now time.Time) error {
	if err := s.CheckPowerHint(); err != nil {
		return err
	}
	s.PowerHintUsed = true
	s.PowerHintText = text
	s.UpdatedAt = now
	return nil
}

// Reveal returns the target only once the game is over.
func (s *Session) Reveal() (string, bool) {
	if !s.State.Terminal() {
		return "", false
	}
	return s.Target, true
}

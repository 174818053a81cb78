// internal/game/types.go
//
// Core type definitions for the word-guessing engine.
// Defines:
//   - Status: per-letter feedback for a guess (correct/present/absent).
//   - State:  lifecycle of a session (playing → won | lost).
//   - Mode:   regular (opaque id) vs daily (user + UTC date) sessions.
//   - Session: the mutable record of one puzzle for one user.
//   - View:   the public projection of a Session (never carries the target).

package game

import "time"

// Status represents the evaluation result for a single letter in a guess.
type Status string

const (
	Correct Status = "correct" // right letter, right position
	Present Status = "present" // in the target, wrong position, within duplicate budget
	Absent  Status = "absent"  // not in the target (or budget exhausted)
)

// State is the coarse lifecycle of a session. Won and Lost are terminal.
type State string

const (
	Playing State = "playing"
	Won     State = "won"
	Lost    State = "lost"
)

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool { return s == Won || s == Lost }

// Mode distinguishes regular level play from the shared daily challenge.
type Mode string

const (
	Regular Mode = "regular"
	Daily   Mode = "daily"
)

const (
	MaxAttempts    = 6 // guesses allowed per session
	MaxLetterHints = 4 // letter hints allowed per session
	DailyLength    = 5 // the daily word is always five letters
	MinLength      = 5
	MaxLength      = 7
)

// Lengths are the word lengths a regular session can draw from.
var Lengths = []int{5, 6, 7}

// Word is a row of the curated target list. Immutable once seeded.
type Word struct {
	ID     string `json:"id" db:"id"`
	Text   string `json:"text" db:"text"`
	Length int    `json:"length" db:"length"`
}

// Key identifies a session from the caller's point of view.
// Regular sessions are addressed by ID, daily sessions by Date (YYYY-MM-DD).
type Key struct {
	Mode Mode
	ID   string
	Date string
}

// RegularKey and DailyKey build Keys for each mode.
func RegularKey(id string) Key { return Key{Mode: Regular, ID: id} }
func DailyKey(date string) Key { return Key{Mode: Daily, Date: date} }

// Session holds the state of one regular or daily puzzle for one user.
//
// Invariants:
//   - len(Guesses) == len(Evaluations) == AttemptsUsed <= MaxAttempts
//   - once State is terminal, attempts and history never change
type Session struct {
	Mode   Mode
	ID     string // regular only
	UserID string
	Date   string // daily only, YYYY-MM-DD UTC
	WordID string
	Target string // lowercase; never leaves the server before the game ends

	AttemptsUsed int
	MaxAttempts  int
	State        State
	Guesses      []string
	Evaluations  [][]Status

	LetterHintsUsed int
	HintedPositions []int // 0-based
	PowerHintUsed   bool
	PowerHintText   string

	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Version is the optimistic-concurrency token; bumped on every save.
	Version int
}

// Length is the target word length.
func (s *Session) Length() int { return len(s.Target) }

// Key returns the caller-facing key for this session.
func (s *Session) Key() Key {
	if s.Mode == Daily {
		return DailyKey(s.Date)
	}
	return RegularKey(s.ID)
}

// Clone returns a deep copy, so callers can mutate without aliasing stored state.
func (s *Session) Clone() *Session {
	c := *s
	c.Guesses = append([]string(nil), s.Guesses...)
	c.Evaluations = make([][]Status, len(s.Evaluations))
	for i, row := range s.Evaluations {
		c.Evaluations[i] = append([]Status(nil), row...)
	}
	c.HintedPositions = append([]int(nil), s.HintedPositions...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// View is the client-visible projection of a session.
type View struct {
	SessionID       string     `json:"sessionId"`
	WordLength      int        `json:"wordLength"`
	Attempts        []string   `json:"attempts"`
	Evaluations     [][]Status `json:"evaluations"`
	State           State      `json:"state"`
	MaxAttempts     int        `json:"maxAttempts"`
	HintsUsed       int        `json:"hintsUsed"`
	HintedPositions []int      `json:"hintedPositions"`
	PowerHintUsed   bool       `json:"powerHintUsed"`
	PowerHintText   string     `json:"powerHintText,omitempty"`
}

// View projects the session for the client.
func (s *Session) View() View {
	id := s.ID
	if s.Mode == Daily {
		id = "daily:" + s.Date
	}
	v := View{
		SessionID:       id,
		WordLength:      s.Length(),
		Attempts:        append([]string{}, s.Guesses...),
		Evaluations:     make([][]Status, 0, len(s.Evaluations)),
		State:           s.State,
		MaxAttempts:     s.MaxAttempts,
		HintsUsed:       s.LetterHintsUsed,
		HintedPositions: append([]int{}, s.HintedPositions...),
		PowerHintUsed:   s.PowerHintUsed,
		PowerHintText:   s.PowerHintText,
	}
	for _, row := range s.Evaluations {
		v.Evaluations = append(v.Evaluations, append([]Status(nil), row...))
	}
	return v
}

// LetterHint is one revealed letter. Position is 1-based.
type LetterHint struct {
	Letter   string `json:"letter"`
	Position int    `json:"position"`
}

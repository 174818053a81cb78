package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/wordplay/internal/game"
)

// On-disk encoding of session history:
//
//	guess_history      "crane,slate"
//	evaluation_history "apcaa,ccaaa"   one char per letter: c/p/a
//	hint_positions     "0,3"
//
// Letters are a-z only, so a comma never needs escaping.

const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// boolInt keeps flag columns INTEGER on every backend.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func encodeGuesses(gs []string) string { return strings.Join(gs, ",") }

func decodeGuesses(s string) []string { return splitList(s) }

var statusChar = map[game.Status]byte{game.Correct: 'c', game.Present: 'p', game.Absent: 'a'}

func encodeEvaluations(rows [][]game.Status) string {
	parts := make([]string, len(rows))
	for i, row := range rows {
		b := make([]byte, len(row))
		for j, m := range row {
			b[j] = statusChar[m]
		}
		parts[i] = string(b)
	}
	return strings.Join(parts, ",")
}

func decodeEvaluations(s string) ([][]game.Status, error) {
	parts := splitList(s)
	out := make([][]game.Status, len(parts))
	for i, p := range parts {
		row := make([]game.Status, len(p))
		for j := 0; j < len(p); j++ {
			switch p[j] {
			case 'c':
				row[j] = game.Correct
			case 'p':
				row[j] = game.Present
			case 'a':
				row[j] = game.Absent
			default:
				return nil, fmt.Errorf("evaluation row %d: bad mark %q", i, p[j])
			}
		}
		out[i] = row
	}
	return out, nil
}

func encodePositions(ps []int) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

func decodePositions(s string) ([]int, error) {
	parts := splitList(s)
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("hint position %q: %w", p, err)
		}
		out[i] = n
	}
	return out, nil
}

// sessionRow is the column layout shared by game_sessions and daily_sessions.
// Regular rows fill ID, daily rows fill Date.
type sessionRow struct {
	ID                string  `db:"id"`
	UserID            string  `db:"user_id"`
	Date              string  `db:"date"`
	WordID            string  `db:"word_id"`
	Target            string  `db:"target"`
	Attempts          int     `db:"attempts"`
	MaxAttempts       int     `db:"max_attempts"`
	State             string  `db:"state"`
	GuessHistory      string  `db:"guess_history"`
	EvaluationHistory string  `db:"evaluation_history"`
	HintsUsed         int     `db:"hints_used"`
	HintPositions     string  `db:"hint_positions"`
	PowerHintUsed     int     `db:"power_hint_used"`
	PowerHintText     string  `db:"power_hint_text"`
	CompletedAt       *string `db:"completed_at"`
	CreatedAt         string  `db:"created_at"`
	UpdatedAt         string  `db:"updated_at"`
	Version           int     `db:"version"`
}

func toRow(s *game.Session) sessionRow {
	return sessionRow{
		ID:                s.ID,
		UserID:            s.UserID,
		Date:              s.Date,
		WordID:            s.WordID,
		Target:            s.Target,
		Attempts:          s.AttemptsUsed,
		MaxAttempts:       s.MaxAttempts,
		State:             string(s.State),
		GuessHistory:      encodeGuesses(s.Guesses),
		EvaluationHistory: encodeEvaluations(s.Evaluations),
		HintsUsed:         s.LetterHintsUsed,
		HintPositions:     encodePositions(s.HintedPositions),
		PowerHintUsed:     boolInt(s.PowerHintUsed),
		PowerHintText:     s.PowerHintText,
		CompletedAt:       formatTimePtr(s.CompletedAt),
		CreatedAt:         formatTime(s.CreatedAt),
		UpdatedAt:         formatTime(s.UpdatedAt),
		Version:           s.Version,
	}
}

// session decodes r and checks that the histories zip with the attempt count.
func (r sessionRow) session(mode game.Mode) (*game.Session, error) {
	evals, err := decodeEvaluations(r.EvaluationHistory)
	if err != nil {
		return nil, err
	}
	hinted, err := decodePositions(r.HintPositions)
	if err != nil {
		return nil, err
	}
	guesses := decodeGuesses(r.GuessHistory)
	if len(guesses) != len(evals) || len(guesses) != r.Attempts {
		return nil, fmt.Errorf("history mismatch: %d guesses, %d evaluations, %d attempts",
			len(guesses), len(evals), r.Attempts)
	}
	completed, err := parseTimePtr(r.CompletedAt)
	if err != nil {
		return nil, err
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &game.Session{
		Mode:            mode,
		ID:              r.ID,
		UserID:          r.UserID,
		Date:            r.Date,
		WordID:          r.WordID,
		Target:          r.Target,
		AttemptsUsed:    r.Attempts,
		MaxAttempts:     r.MaxAttempts,
		State:           game.State(r.State),
		Guesses:         guesses,
		Evaluations:     evals,
		LetterHintsUsed: r.HintsUsed,
		HintedPositions: hinted,
		PowerHintUsed:   r.PowerHintUsed != 0,
		PowerHintText:   r.PowerHintText,
		CompletedAt:     completed,
		CreatedAt:       created,
		UpdatedAt:       updated,
		Version:         r.Version,
	}, nil
}

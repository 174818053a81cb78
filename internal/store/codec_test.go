package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/robalobadob/wordplay/internal/game"
)

func TestSessionRowRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 30, 0, 123, time.UTC)
	s := game.NewSession(game.Regular, "u1", game.Word{ID: "w1", Text: "crane"}, now)
	s.ID = "s1"
	if _, err := s.ApplyGuess("slate", now); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ApplyGuess("crane", now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	s.HintedPositions = []int{0, 3}
	s.LetterHintsUsed = 2
	s.PowerHintUsed = true
	s.PowerHintText = "Tall bird, or what lifts steel."
	s.Version = 4

	r := toRow(s)
	if r.GuessHistory != "slate,crane" || r.EvaluationHistory != "aacac,ccccc" || r.HintPositions != "0,3" {
		t.Fatalf("encoded row = %+v", r)
	}

	got, err := r.session(game.Regular)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Guesses, s.Guesses) || !reflect.DeepEqual(got.Evaluations, s.Evaluations) {
		t.Errorf("history = %v %v", got.Guesses, got.Evaluations)
	}
	if got.State != game.Won || got.AttemptsUsed != 2 || !got.PowerHintUsed || got.Version != 4 {
		t.Errorf("decoded = %+v", got)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(*s.CompletedAt) || !got.CreatedAt.Equal(now) {
		t.Errorf("timestamps = %v %v", got.CompletedAt, got.CreatedAt)
	}
}

func TestEmptyHistoryDecodes(t *testing.T) {
	s := game.NewSession(game.Daily, "u1", game.Word{ID: "w1", Text: "crane"}, time.Unix(0, 0))
	got, err := toRow(s).session(game.Daily)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Guesses) != 0 || len(got.Evaluations) != 0 || len(got.HintedPositions) != 0 || got.CompletedAt != nil {
		t.Errorf("decoded = %+v", got)
	}
}

func TestDecodeRejectsCorruptRows(t *testing.T) {
	base := toRow(game.NewSession(game.Regular, "u", game.Word{ID: "w", Text: "crane"}, time.Unix(0, 0)))
	tests := []struct {
		name string
		edit func(r *sessionRow)
	}{
		{"bad mark", func(r *sessionRow) { r.GuessHistory, r.EvaluationHistory, r.Attempts = "crane", "ccxcc", 1 }},
		{"zip mismatch", func(r *sessionRow) { r.GuessHistory, r.EvaluationHistory, r.Attempts = "crane,slate", "ccccc", 2 }},
		{"attempt count mismatch", func(r *sessionRow) { r.GuessHistory, r.EvaluationHistory, r.Attempts = "crane", "aaaaa", 3 }},
		{"bad position", func(r *sessionRow) { r.HintPositions = "1,x" }},
		{"bad timestamp", func(r *sessionRow) { r.CreatedAt = "yesterday" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.edit(&r)
			if _, err := r.session(game.Regular); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

package stats

import (
	"context"
	"sort"
	"time"
)

// PlayerRow is one user's overall standing as read from storage.
type PlayerRow struct {
	UserID      string `db:"user_id"`
	DisplayName string `db:"display_name"`
	WordsSolved int    `db:"words_solved"`
	MaxStreak   int    `db:"max_streak"`
}

// DailyRow is one winning daily session as read from storage.
type DailyRow struct {
	UserID      string    `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Attempts    int       `db:"attempts"`
	CompletedAt time.Time `db:"-"`
}

// PlayerRank is a ranked overall leaderboard entry. Rank is 1-based.
type PlayerRank struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	WordsSolved int    `json:"wordsSolved"`
	MaxStreak   int    `json:"maxStreak"`
}

// DailyRank is a ranked daily leaderboard entry. Rank is 1-based.
type DailyRank struct {
	Rank        int       `json:"rank"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Attempts    int       `json:"attempts"`
	CompletedAt time.Time `json:"completedAt"`
}

// Source yields already-ordered leaderboard rows.
type Source interface {
	TopPlayerRows(ctx context.Context, n int) ([]PlayerRow, error)
	DailyWinnerRows(ctx context.Context, date string, n int) ([]DailyRow, error)
}

// PlayerLess orders by words solved desc, then max streak desc.
// Display name breaks remaining ties so the order is stable.
func PlayerLess(a, b PlayerRow) bool {
	if a.WordsSolved != b.WordsSolved {
		return a.WordsSolved > b.WordsSolved
	}
	if a.MaxStreak != b.MaxStreak {
		return a.MaxStreak > b.MaxStreak
	}
	return a.DisplayName < b.DisplayName
}

// DailyLess orders by attempts asc, then completion time asc.
func DailyLess(a, b DailyRow) bool {
	if a.Attempts != b.Attempts {
		return a.Attempts < b.Attempts
	}
	return a.CompletedAt.Before(b.CompletedAt)
}

// SortPlayers and SortDaily order rows in place.
func SortPlayers(rows []PlayerRow) {
	sort.SliceStable(rows, func(i, j int) bool { return PlayerLess(rows[i], rows[j]) })
}

func SortDaily(rows []DailyRow) {
	sort.SliceStable(rows, func(i, j int) bool { return DailyLess(rows[i], rows[j]) })
}

// Board assigns ranks to rows from a Source.
type Board struct {
	src Source
}

func NewBoard(src Source) *Board { return &Board{src: src} }

// TopPlayers returns at most n entries.
func (b *Board) TopPlayers(ctx context.Context, n int) ([]PlayerRank, error) {
	rows, err := b.src.TopPlayerRows(ctx, clampLimit(n))
	if err != nil {
		return nil, err
	}
	out := make([]PlayerRank, 0, len(rows))
	for i, r := range rows {
		out = append(out, PlayerRank{
			Rank:        i + 1,
			UserID:      r.UserID,
			DisplayName: displayName(r.DisplayName),
			WordsSolved: r.WordsSolved,
			MaxStreak:   r.MaxStreak,
		})
	}
	return out, nil
}

// DailyRankings returns at most n winners for date.
func (b *Board) DailyRankings(ctx context.Context, date string, n int) ([]DailyRank, error) {
	rows, err := b.src.DailyWinnerRows(ctx, date, clampLimit(n))
	if err != nil {
		return nil, err
	}
	out := make([]DailyRank, 0, len(rows))
	for i, r := range rows {
		out = append(out, DailyRank{
			Rank:        i + 1,
			UserID:      r.UserID,
			DisplayName: displayName(r.DisplayName),
			Attempts:    r.Attempts,
			CompletedAt: r.CompletedAt,
		})
	}
	return out, nil
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return defaultLimit
	case n > maxLimit:
		return maxLimit
	}
	return n
}

func displayName(s string) string {
	if s == "" {
		return "Player"
	}
	return s
}

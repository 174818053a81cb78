package stats

import (
	"context"
	"testing"
	"time"
)

func day(d, h, m int) time.Time { return time.Date(2026, 3, d, h, m, 0, 0, time.UTC) }

func TestRecord(t *testing.T) {
	tests := []struct {
		name        string
		prev        UserStats
		won         bool
		now         time.Time
		wantCurrent int
		wantMax     int
		wantSolved  int
	}{
		{"first ever win", UserStats{}, true, day(10, 9, 0), 1, 1, 1},
		{"first ever loss", UserStats{}, false, day(10, 9, 0), 0, 0, 0},
		{
			"win after yesterday extends",
			UserStats{GamesPlayed: 3, WordsSolved: 3, CurrentStreak: 3, MaxStreak: 3, LastPlayedAt: ptr(day(9, 23, 59))},
			true, day(10, 0, 1), 4, 4, 4,
		},
		{
			"win after skipped day restarts",
			UserStats{GamesPlayed: 3, WordsSolved: 3, CurrentStreak: 3, MaxStreak: 5, LastPlayedAt: ptr(day(8, 12, 0))},
			true, day(10, 12, 0), 1, 5, 4,
		},
		{
			"second win same day restarts",
			UserStats{GamesPlayed: 1, WordsSolved: 1, CurrentStreak: 1, MaxStreak: 1, LastPlayedAt: ptr(day(10, 8, 0))},
			true, day(10, 9, 0), 1, 1, 2,
		},
		{
			"loss resets but keeps max",
			UserStats{GamesPlayed: 5, WordsSolved: 5, CurrentStreak: 5, MaxStreak: 5, LastPlayedAt: ptr(day(9, 8, 0))},
			false, day(10, 8, 0), 0, 5, 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Record(tt.prev, tt.won, tt.now)
			if got.GamesPlayed != tt.prev.GamesPlayed+1 {
				t.Errorf("GamesPlayed = %d", got.GamesPlayed)
			}
			if got.CurrentStreak != tt.wantCurrent || got.MaxStreak != tt.wantMax || got.WordsSolved != tt.wantSolved {
				t.Errorf("got current=%d max=%d solved=%d, want %d %d %d",
					got.CurrentStreak, got.MaxStreak, got.WordsSolved, tt.wantCurrent, tt.wantMax, tt.wantSolved)
			}
			if got.LastPlayedAt == nil || !got.LastPlayedAt.Equal(tt.now) {
				t.Errorf("LastPlayedAt = %v", got.LastPlayedAt)
			}
		})
	}
}

func TestIsYesterdayUsesUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 2026-03-09 22:00 EST is 2026-03-10 03:00 UTC: same UTC day as now.
	last := time.Date(2026, 3, 9, 22, 0, 0, 0, est)
	if IsYesterday(last, day(10, 12, 0)) {
		t.Error("expected same UTC day, not yesterday")
	}
	if !IsYesterday(time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC)) {
		t.Error("month boundary should count as yesterday")
	}
}

type fakeSource struct {
	players []PlayerRow
	daily   []DailyRow
	gotN    int
}

func (f *fakeSource) TopPlayerRows(_ context.Context, n int) ([]PlayerRow, error) {
	f.gotN = n
	rows := append([]PlayerRow(nil), f.players...)
	SortPlayers(rows)
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

func (f *fakeSource) DailyWinnerRows(_ context.Context, _ string, n int) ([]DailyRow, error) {
	f.gotN = n
	rows := append([]DailyRow(nil), f.daily...)
	SortDaily(rows)
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

func TestDailyRankingOrder(t *testing.T) {
	t1, t2, t3 := day(10, 9, 0), day(10, 8, 0), day(10, 7, 0)
	src := &fakeSource{daily: []DailyRow{
		{UserID: "a", Attempts: 3, CompletedAt: t1},
		{UserID: "b", Attempts: 2, CompletedAt: t2},
		{UserID: "c", Attempts: 2, CompletedAt: t3},
	}}
	got, err := NewBoard(src).DailyRankings(context.Background(), "2026-03-10", 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i, r := range got {
		if r.UserID != want[i] || r.Rank != i+1 {
			t.Errorf("pos %d = %s rank %d, want %s rank %d", i, r.UserID, r.Rank, want[i], i+1)
		}
		if r.DisplayName != "Player" {
			t.Errorf("empty display name should fall back, got %q", r.DisplayName)
		}
	}
}

func TestTopPlayersOrderAndLimit(t *testing.T) {
	src := &fakeSource{players: []PlayerRow{
		{UserID: "a", DisplayName: "ann", WordsSolved: 4, MaxStreak: 1},
		{UserID: "b", DisplayName: "bob", WordsSolved: 9, MaxStreak: 2},
		{UserID: "c", DisplayName: "cat", WordsSolved: 4, MaxStreak: 3},
	}}
	b := NewBoard(src)
	got, err := b.TopPlayers(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].UserID != "b" || got[1].UserID != "c" {
		t.Fatalf("got %+v", got)
	}
	if _, err := b.TopPlayers(context.Background(), 0); err != nil || src.gotN != defaultLimit {
		t.Errorf("limit 0 should default to %d, got %d", defaultLimit, src.gotN)
	}
	if _, err := b.TopPlayers(context.Background(), 1000); err != nil || src.gotN != maxLimit {
		t.Errorf("limit should clamp to %d, got %d", maxLimit, src.gotN)
	}
}

func ptr(t time.Time) *time.Time { return &t }

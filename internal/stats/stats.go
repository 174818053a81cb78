// Package stats derives per-user aggregates and leaderboards from finished
// sessions. Everything here is pure; persistence lives in internal/store.
package stats

import (
	"time"
)

// UserStats is the per-user aggregate updated on each terminal regular game.
type UserStats struct {
	UserID        string     `json:"userId"`
	GamesPlayed   int        `json:"gamesPlayed"`
	WordsSolved   int        `json:"wordsSolved"`
	CurrentStreak int        `json:"currentStreak"`
	MaxStreak     int        `json:"maxStreak"`
	LastPlayedAt  *time.Time `json:"lastPlayedAt,omitempty"`
}

// Record folds one finished game into prev.
//
// Streaks use UTC calendar days, not a rolling 24h window: a win extends the
// streak only when the previous play fell on the day before now (or there
// was no previous play); any other win restarts at 1 and a loss resets to 0.
func Record(prev UserStats, won bool, now time.Time) UserStats {
	next := prev
	next.GamesPlayed++
	if won {
		next.WordsSolved++
		if prev.LastPlayedAt == nil || IsYesterday(*prev.LastPlayedAt, now) {
			next.CurrentStreak = prev.CurrentStreak + 1
		} else {
			next.CurrentStreak = 1
		}
	} else {
		next.CurrentStreak = 0
	}
	if next.CurrentStreak > next.MaxStreak {
		next.MaxStreak = next.CurrentStreak
	}
	at := now.UTC()
	next.LastPlayedAt = &at
	return next
}

// IsYesterday reports whether last falls on the UTC calendar day before now.
func IsYesterday(last, now time.Time) bool {
	y := now.UTC().AddDate(0, 0, -1)
	l := last.UTC()
	return l.Year() == y.Year() && l.Month() == y.Month() && l.Day() == y.Day()
}

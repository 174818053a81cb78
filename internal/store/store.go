// internal/store/store.go
//
// Persistence contract for the game server.
//
// The Store owns every session row. The game controller is its only writer;
// rankings and stats readers never mutate. Two implementations live here:
//   - memory.go: mutex-guarded maps, for development and tests.
//   - sql.go:    sqlx over sqlite or postgres, with embedded migrations.
//
// Concurrency: sessions carry a Version. SaveSession only succeeds when the
// caller's Version still matches the stored one; otherwise ErrConflict and
// the caller reloads and retries.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/wordplay/internal/game"
	"github.com/robalobadob/wordplay/internal/stats"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrConflict      = errors.New("store: concurrent update")
	ErrUsernameTaken = errors.New("store: username taken")
)

// User is an account. Username doubles as the display name.
type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"-"`
}

// Finish describes a terminal transition to be recorded with the session.
// Only regular sessions feed progress and stats.
type Finish struct {
	Won bool
	At  time.Time
}

// Store defines the persistence interface used by the controller, the
// word oracle, the rankings board and the HTTP layer.
type Store interface {
	// Words
	InsertWords(ctx context.Context, ws []game.Word) (int, error)
	WordByID(ctx context.Context, id string) (game.Word, error)
	HasWord(ctx context.Context, text string, length int) (bool, error)
	WordIDsByText(ctx context.Context, length int) ([]string, error)
	UnsolvedWordIDs(ctx context.Context, userID string, length int) ([]string, error)
	HasUnsolvedWords(ctx context.Context, userID string) (bool, error)

	// Validated-guess cache (insert-if-absent, never invalidated)
	HasCachedGuess(ctx context.Context, text string, length int) (bool, error)
	CacheGuess(ctx context.Context, text string, length int) error

	// Sessions

	// ActiveSession returns the user's playing regular session or ErrNotFound.
	ActiveSession(ctx context.Context, userID string) (*game.Session, error)
	// LoadSession returns the session at key if it belongs to userID, else ErrNotFound.
	LoadSession(ctx context.Context, userID string, key game.Key) (*game.Session, error)
	// CreateSession inserts s unless the user already holds a playing regular
	// session (or a daily row for s.Date); in that case the existing session is
	// returned with created=false.
	CreateSession(ctx context.Context, s *game.Session) (stored *game.Session, created bool, err error)
	// SaveSession writes s if s.Version matches, then bumps s.Version.
	// A non-nil fin records progress and stats in the same transaction.
	SaveSession(ctx context.Context, s *game.Session, fin *Finish) error

	// Stats and rankings
	UserStats(ctx context.Context, userID string) (stats.UserStats, error)
	TopPlayerRows(ctx context.Context, n int) ([]stats.PlayerRow, error)
	DailyWinnerRows(ctx context.Context, date string, n int) ([]stats.DailyRow, error)

	// Users
	CreateUser(ctx context.Context, u User) error
	UserByUsername(ctx context.Context, username string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)

	Close() error
}

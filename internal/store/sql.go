package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/robalobadob/wordplay/assets"
	"github.com/robalobadob/wordplay/internal/game"
	"github.com/robalobadob/wordplay/internal/stats"
)

// SQL is the durable Store backed by sqlite or postgres.
type SQL struct {
	db *sqlx.DB
}

// Open connects to dsn and applies pending migrations.
func Open(dsn string) (*SQL, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db, assets.Migrations()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Close() error { return s.db.Close() }

// Driver reports the database/sql driver in use.
func (s *SQL) Driver() string { return s.db.DriverName() }

func (s *SQL) q(query string) string { return s.db.Rebind(query) }

/* -------------------------------- words -------------------------------- */

func (s *SQL) InsertWords(ctx context.Context, ws []game.Word) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(
		`INSERT INTO words (id, text, length) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`))
	if err != nil {
		return 0, fmt.Errorf("prepare insert words: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, w := range ws {
		res, err := stmt.ExecContext(ctx, w.ID, w.Text, w.Length)
		if err != nil {
			return 0, fmt.Errorf("insert word %q: %w", w.Text, err)
		}
		if k, _ := res.RowsAffected(); k > 0 {
			n++
		}
	}
	return n, tx.Commit()
}

func (s *SQL) WordByID(ctx context.Context, id string) (game.Word, error) {
	var w game.Word
	err := s.db.GetContext(ctx, &w, s.q(`SELECT id, text, length FROM words WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return w, ErrNotFound
	}
	return w, err
}

func (s *SQL) HasWord(ctx context.Context, text string, length int) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM words WHERE text = ? AND length = ?`, text, length)
}

func (s *SQL) WordIDsByText(ctx context.Context, length int) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids, s.q(`SELECT id FROM words WHERE length = ? ORDER BY text`), length)
	return ids, err
}

func (s *SQL) UnsolvedWordIDs(ctx context.Context, userID string, length int) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids, s.q(`
        SELECT w.id FROM words w
        WHERE w.length = ?
          AND NOT EXISTS (
              SELECT 1 FROM user_word_progress p
              WHERE p.user_id = ? AND p.word_id = w.id AND p.solved = 1)
        ORDER BY w.text`), length, userID)
	return ids, err
}

func (s *SQL) HasUnsolvedWords(ctx context.Context, userID string) (bool, error) {
	return s.exists(ctx, `
        SELECT 1 FROM words w
        WHERE NOT EXISTS (
            SELECT 1 FROM user_word_progress p
            WHERE p.user_id = ? AND p.word_id = w.id AND p.solved = 1)
        LIMIT 1`, userID)
}

func (s *SQL) HasCachedGuess(ctx context.Context, text string, length int) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM valid_guesses WHERE text = ? AND length = ?`, text, length)
}

func (s *SQL) CacheGuess(ctx context.Context, text string, length int) error {
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO valid_guesses (text, length) VALUES (?, ?) ON CONFLICT DO NOTHING`), text, length)
	return err
}

func (s *SQL) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.GetContext(ctx, &one, s.q(query), args...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

/* ------------------------------- sessions ------------------------------- */

const sessionCols = `s.user_id, s.word_id, w.text AS target, s.attempts, s.max_attempts, s.state,
        s.guess_history, s.evaluation_history, s.hints_used, s.hint_positions,
        s.power_hint_used, s.power_hint_text, s.completed_at, s.created_at, s.updated_at, s.version`

const (
	selectRegular = `SELECT s.id, ` + sessionCols + ` FROM game_sessions s JOIN words w ON w.id = s.word_id`
	selectDaily   = `SELECT s.date, ` + sessionCols + ` FROM daily_sessions s JOIN words w ON w.id = s.word_id`
)

func (s *SQL) getSession(ctx context.Context, mode game.Mode, query string, args ...any) (*game.Session, error) {
	var r sessionRow
	err := s.db.GetContext(ctx, &r, s.q(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess, err := r.session(mode)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

func (s *SQL) ActiveSession(ctx context.Context, userID string) (*game.Session, error) {
	return s.getSession(ctx, game.Regular,
		selectRegular+` WHERE s.user_id = ? AND s.state = 'playing'`, userID)
}

func (s *SQL) LoadSession(ctx context.Context, userID string, key game.Key) (*game.Session, error) {
	if key.Mode == game.Daily {
		return s.getSession(ctx, game.Daily,
			selectDaily+` WHERE s.user_id = ? AND s.date = ?`, userID, key.Date)
	}
	return s.getSession(ctx, game.Regular,
		selectRegular+` WHERE s.id = ? AND s.user_id = ?`, key.ID, userID)
}

// CreateSession relies on the primary key (daily) and the partial unique
// index on playing sessions (regular) to make the insert conditional.
func (s *SQL) CreateSession(ctx context.Context, sess *game.Session) (*game.Session, bool, error) {
	r := toRow(sess)
	var query string
	if sess.Mode == game.Daily {
		query = `INSERT INTO daily_sessions
            (user_id, date, word_id, attempts, max_attempts, state, guess_history, evaluation_history,
             hints_used, hint_positions, power_hint_used, power_hint_text, completed_at, created_at, updated_at, version)
            VALUES (:user_id, :date, :word_id, :attempts, :max_attempts, :state, :guess_history, :evaluation_history,
             :hints_used, :hint_positions, :power_hint_used, :power_hint_text, :completed_at, :created_at, :updated_at, :version)
            ON CONFLICT DO NOTHING`
	} else {
		query = `INSERT INTO game_sessions
            (id, user_id, word_id, attempts, max_attempts, state, guess_history, evaluation_history,
             hints_used, hint_positions, power_hint_used, power_hint_text, completed_at, created_at, updated_at, version)
            VALUES (:id, :user_id, :word_id, :attempts, :max_attempts, :state, :guess_history, :evaluation_history,
             :hints_used, :hint_positions, :power_hint_used, :power_hint_text, :completed_at, :created_at, :updated_at, :version)
            ON CONFLICT DO NOTHING`
	}
	res, err := s.db.NamedExecContext(ctx, query, r)
	if err != nil {
		return nil, false, fmt.Errorf("insert session: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return sess.Clone(), true, nil
	}

	var existing *game.Session
	if sess.Mode == game.Daily {
		existing, err = s.LoadSession(ctx, sess.UserID, sess.Key())
	} else {
		existing, err = s.ActiveSession(ctx, sess.UserID)
	}
	if errors.Is(err, ErrNotFound) {
		// The conflicting row finished between our insert and the read.
		return nil, false, ErrConflict
	}
	return existing, false, err
}

func (s *SQL) SaveSession(ctx context.Context, sess *game.Session, fin *Finish) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const set = `SET attempts = :attempts, state = :state, guess_history = :guess_history,
            evaluation_history = :evaluation_history, hints_used = :hints_used,
            hint_positions = :hint_positions, power_hint_used = :power_hint_used,
            power_hint_text = :power_hint_text, completed_at = :completed_at,
            updated_at = :updated_at, version = version + 1`
	query := `UPDATE game_sessions ` + set + ` WHERE id = :id AND user_id = :user_id AND version = :version`
	if sess.Mode == game.Daily {
		query = `UPDATE daily_sessions ` + set + ` WHERE user_id = :user_id AND date = :date AND version = :version`
	}

	named, args, err := sqlx.Named(query, toRow(sess))
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(named), args...)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}

	if fin != nil && sess.Mode == game.Regular {
		if err := recordFinish(ctx, tx, sess, fin); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	sess.Version++
	return nil
}

// recordFinish upserts progress and folds the result into user_stats.
func recordFinish(ctx context.Context, tx *sqlx.Tx, sess *game.Session, fin *Finish) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`
        INSERT INTO user_word_progress (user_id, word_id, solved, attempted_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (user_id, word_id) DO UPDATE
            SET solved = excluded.solved, attempted_at = excluded.attempted_at`),
		sess.UserID, sess.WordID, boolInt(fin.Won), formatTime(fin.At)); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}

	prev, err := readStats(ctx, tx, sess.UserID)
	if err != nil {
		return err
	}
	next := stats.Record(prev, fin.Won, fin.At)
	if _, err := tx.ExecContext(ctx, tx.Rebind(`
        INSERT INTO user_stats (user_id, games_played, words_solved, current_streak, max_streak, last_played_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (user_id) DO UPDATE SET
            games_played = excluded.games_played,
            words_solved = excluded.words_solved,
            current_streak = excluded.current_streak,
            max_streak = excluded.max_streak,
            last_played_at = excluded.last_played_at`),
		sess.UserID, next.GamesPlayed, next.WordsSolved, next.CurrentStreak, next.MaxStreak,
		formatTimePtr(next.LastPlayedAt)); err != nil {
		return fmt.Errorf("upsert stats: %w", err)
	}
	return nil
}

/* ---------------------------- stats / ranks ---------------------------- */

type statsRow struct {
	UserID        string  `db:"user_id"`
	GamesPlayed   int     `db:"games_played"`
	WordsSolved   int     `db:"words_solved"`
	CurrentStreak int     `db:"current_streak"`
	MaxStreak     int     `db:"max_streak"`
	LastPlayedAt  *string `db:"last_played_at"`
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(string) string
}

func readStats(ctx context.Context, q queryer, userID string) (stats.UserStats, error) {
	var r statsRow
	err := sqlx.GetContext(ctx, q, &r, q.Rebind(`
        SELECT user_id, games_played, words_solved, current_streak, max_streak, last_played_at
        FROM user_stats WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return stats.UserStats{UserID: userID}, nil
	}
	if err != nil {
		return stats.UserStats{}, fmt.Errorf("read stats: %w", err)
	}
	last, err := parseTimePtr(r.LastPlayedAt)
	if err != nil {
		return stats.UserStats{}, err
	}
	return stats.UserStats{
		UserID:        r.UserID,
		GamesPlayed:   r.GamesPlayed,
		WordsSolved:   r.WordsSolved,
		CurrentStreak: r.CurrentStreak,
		MaxStreak:     r.MaxStreak,
		LastPlayedAt:  last,
	}, nil
}

func (s *SQL) UserStats(ctx context.Context, userID string) (stats.UserStats, error) {
	return readStats(ctx, s.db, userID)
}

func (s *SQL) TopPlayerRows(ctx context.Context, n int) ([]stats.PlayerRow, error) {
	rows := []stats.PlayerRow{}
	err := s.db.SelectContext(ctx, &rows, s.q(`
        SELECT st.user_id, COALESCE(u.username, '') AS display_name, st.words_solved, st.max_streak
        FROM user_stats st
        LEFT JOIN users u ON u.id = st.user_id
        ORDER BY st.words_solved DESC, st.max_streak DESC, display_name ASC
        LIMIT ?`), n)
	return rows, err
}

func (s *SQL) DailyWinnerRows(ctx context.Context, date string, n int) ([]stats.DailyRow, error) {
	var raw []struct {
		UserID      string `db:"user_id"`
		DisplayName string `db:"display_name"`
		Attempts    int    `db:"attempts"`
		CompletedAt string `db:"completed_at"`
	}
	if err := s.db.SelectContext(ctx, &raw, s.q(`
        SELECT d.user_id, COALESCE(u.username, '') AS display_name, d.attempts, d.completed_at
        FROM daily_sessions d
        LEFT JOIN users u ON u.id = d.user_id
        WHERE d.date = ? AND d.state = 'won' AND d.completed_at IS NOT NULL
        ORDER BY d.attempts ASC, d.completed_at ASC
        LIMIT ?`), date, n); err != nil {
		return nil, err
	}
	out := make([]stats.DailyRow, 0, len(raw))
	for _, r := range raw {
		at, err := parseTime(r.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("decode completed_at: %w", err)
		}
		out = append(out, stats.DailyRow{
			UserID:      r.UserID,
			DisplayName: r.DisplayName,
			Attempts:    r.Attempts,
			CompletedAt: at,
		})
	}
	return out, nil
}

/* -------------------------------- users -------------------------------- */

type userRow struct {
	ID           string `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    string `db:"created_at"`
}

func (r userRow) user() User {
	u := User{ID: r.ID, Username: r.Username, PasswordHash: r.PasswordHash}
	u.CreatedAt, _ = parseTime(r.CreatedAt)
	return u
}

func (s *SQL) CreateUser(ctx context.Context, u User) error {
	res, err := s.db.ExecContext(ctx, s.q(`
        INSERT INTO users (id, username, password_hash, created_at)
        VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`),
		u.ID, u.Username, u.PasswordHash, formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUsernameTaken
	}
	return nil
}

func (s *SQL) getUser(ctx context.Context, query string, arg string) (User, error) {
	var r userRow
	err := s.db.GetContext(ctx, &r, s.q(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return r.user(), nil
}

func (s *SQL) UserByUsername(ctx context.Context, username string) (User, error) {
	return s.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE lower(username) = lower(?)`, username)
}

func (s *SQL) UserByID(ctx context.Context, id string) (User, error) {
	return s.getUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
}

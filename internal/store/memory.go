// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// A lightweight persistence layer for development and tests, or when
// durability is not required.
//
// Characteristics:
//   - Sessions are stored as deep copies; callers never alias stored state.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Version checks mirror the SQL store so the controller's retry path
//     behaves the same against both.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/robalobadob/wordplay/internal/game"
	"github.com/robalobadob/wordplay/internal/stats"
)

type dailyKey struct{ user, date string }

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu sync.RWMutex

	words   map[string]game.Word // by id
	byText  map[string]string    // text -> id
	guesses map[string]int       // validated guess -> length

	sessions map[string]*game.Session   // regular, by id
	active   map[string]string          // user -> playing regular session id
	daily    map[dailyKey]*game.Session // by (user, date)
	progress map[string]map[string]bool // user -> word id -> solved
	stats    map[string]stats.UserStats

	users  map[string]User   // by id
	byName map[string]string // lowercase username -> id
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		words:    make(map[string]game.Word),
		byText:   make(map[string]string),
		guesses:  make(map[string]int),
		sessions: make(map[string]*game.Session),
		active:   make(map[string]string),
		daily:    make(map[dailyKey]*game.Session),
		progress: make(map[string]map[string]bool),
		stats:    make(map[string]stats.UserStats),
		users:    make(map[string]User),
		byName:   make(map[string]string),
	}
}

func (m *memory) Close() error { return nil }

/* -------------------------------- words -------------------------------- */

func (m *memory) InsertWords(_ context.Context, ws []game.Word) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, w := range ws {
		if _, ok := m.byText[w.Text]; ok {
			continue
		}
		m.words[w.ID] = w
		m.byText[w.Text] = w.ID
		n++
	}
	return n, nil
}

func (m *memory) WordByID(_ context.Context, id string) (game.Word, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.words[id]; ok {
		return w, nil
	}
	return game.Word{}, ErrNotFound
}

func (m *memory) HasWord(_ context.Context, text string, length int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byText[text]
	return ok && m.words[id].Length == length, nil
}

// idsByText returns ids of words of length that pass keep, ordered by text.
// Callers hold m.mu.
func (m *memory) idsByText(length int, keep func(id string) bool) []string {
	var ws []game.Word
	for _, w := range m.words {
		if w.Length == length && keep(w.ID) {
			ws = append(ws, w)
		}
	}
	sort.Slice(ws, func(i, j int) bool { return ws[i].Text < ws[j].Text })
	ids := make([]string, len(ws))
	for i, w := range ws {
		ids[i] = w.ID
	}
	return ids
}

func (m *memory) WordIDsByText(_ context.Context, length int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idsByText(length, func(string) bool { return true }), nil
}

func (m *memory) UnsolvedWordIDs(_ context.Context, userID string, length int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	solved := m.progress[userID]
	return m.idsByText(length, func(id string) bool { return !solved[id] }), nil
}

func (m *memory) HasUnsolvedWords(_ context.Context, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	solved := m.progress[userID]
	for id := range m.words {
		if !solved[id] {
			return true, nil
		}
	}
	return false, nil
}

func (m *memory) HasCachedGuess(_ context.Context, text string, length int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.guesses[text]
	return ok && l == length, nil
}

func (m *memory) CacheGuess(_ context.Context, text string, length int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.guesses[text]; !ok {
		m.guesses[text] = length
	}
	return nil
}

/* ------------------------------- sessions ------------------------------- */

func (m *memory) ActiveSession(_ context.Context, userID string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.active[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return m.sessions[id].Clone(), nil
}

// lookup finds the stored session for key. Callers hold m.mu.
func (m *memory) lookup(userID string, key game.Key) (*game.Session, bool) {
	var s *game.Session
	if key.Mode == game.Daily {
		s = m.daily[dailyKey{userID, key.Date}]
	} else {
		s = m.sessions[key.ID]
	}
	if s == nil || s.UserID != userID {
		return nil, false
	}
	return s, true
}

func (m *memory) LoadSession(_ context.Context, userID string, key game.Key) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.lookup(userID, key)
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *memory) CreateSession(_ context.Context, s *game.Session) (*game.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.Mode == game.Daily {
		k := dailyKey{s.UserID, s.Date}
		if cur, ok := m.daily[k]; ok {
			return cur.Clone(), false, nil
		}
		m.daily[k] = s.Clone()
		return s.Clone(), true, nil
	}

	if id, ok := m.active[s.UserID]; ok {
		return m.sessions[id].Clone(), false, nil
	}
	m.sessions[s.ID] = s.Clone()
	if s.State == game.Playing {
		m.active[s.UserID] = s.ID
	}
	return s.Clone(), true, nil
}

func (m *memory) SaveSession(_ context.Context, s *game.Session, fin *Finish) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.lookup(s.UserID, s.Key())
	if !ok {
		return ErrNotFound
	}
	if cur.Version != s.Version {
		return ErrConflict
	}

	next := s.Clone()
	next.Version++
	if s.Mode == game.Daily {
		m.daily[dailyKey{s.UserID, s.Date}] = next
	} else {
		m.sessions[s.ID] = next
		if next.State != game.Playing && m.active[s.UserID] == s.ID {
			delete(m.active, s.UserID)
		}
		if fin != nil {
			if m.progress[s.UserID] == nil {
				m.progress[s.UserID] = make(map[string]bool)
			}
			m.progress[s.UserID][s.WordID] = fin.Won
			prev := m.stats[s.UserID]
			prev.UserID = s.UserID
			m.stats[s.UserID] = stats.Record(prev, fin.Won, fin.At)
		}
	}
	s.Version = next.Version
	return nil
}

/* ---------------------------- stats / ranks ---------------------------- */

func (m *memory) UserStats(_ context.Context, userID string) (stats.UserStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.stats[userID]
	if !ok {
		return stats.UserStats{UserID: userID}, nil
	}
	return st, nil
}

func (m *memory) TopPlayerRows(_ context.Context, n int) ([]stats.PlayerRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]stats.PlayerRow, 0, len(m.stats))
	for id, st := range m.stats {
		rows = append(rows, stats.PlayerRow{
			UserID:      id,
			DisplayName: m.users[id].Username,
			WordsSolved: st.WordsSolved,
			MaxStreak:   st.MaxStreak,
		})
	}
	stats.SortPlayers(rows)
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

func (m *memory) DailyWinnerRows(_ context.Context, date string, n int) ([]stats.DailyRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []stats.DailyRow
	for k, s := range m.daily {
		if k.date != date || s.State != game.Won || s.CompletedAt == nil {
			continue
		}
		rows = append(rows, stats.DailyRow{
			UserID:      s.UserID,
			DisplayName: m.users[s.UserID].Username,
			Attempts:    s.AttemptsUsed,
			CompletedAt: *s.CompletedAt,
		})
	}
	stats.SortDaily(rows)
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

/* -------------------------------- users -------------------------------- */

func (m *memory) CreateUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := strings.ToLower(u.Username)
	if _, ok := m.byName[name]; ok {
		return ErrUsernameTaken
	}
	m.users[u.ID] = u
	m.byName[name] = u.ID
	return nil
}

func (m *memory) UserByUsername(_ context.Context, username string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[strings.ToLower(username)]
	if !ok {
		return User{}, ErrNotFound
	}
	return m.users[id], nil
}

func (m *memory) UserByID(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

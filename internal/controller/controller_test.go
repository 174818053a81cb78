package controller

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/wordplay/internal/daily"
	"github.com/robalobadob/wordplay/internal/game"
	"github.com/robalobadob/wordplay/internal/stats"
	"github.com/robalobadob/wordplay/internal/store"
)

var clock = time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)

var corpus = []game.Word{
	{ID: "w1", Text: "crane", Length: 5},
	{ID: "w2", Text: "slate", Length: 5},
	{ID: "w3", Text: "fjord", Length: 5},
	{ID: "w4", Text: "planet", Length: 6},
	{ID: "w5", Text: "blanket", Length: 7},
}

// allowAll accepts any alphabetic word; reject lists explicit refusals.
type allowAll struct {
	reject map[string]bool
	during func()
	calls  int
	mu     sync.Mutex
}

func (d *allowAll) IsAcceptable(_ context.Context, w string, _ int) (bool, error) {
	d.mu.Lock()
	d.calls++
	hook := d.during
	d.during = nil
	d.mu.Unlock()
	if hook != nil {
		hook()
	}
	return !d.reject[w], nil
}

type fakeHinter struct {
	text  string
	err   error
	calls int
}

func (h *fakeHinter) MeaningHint(_ context.Context, _ string) (string, error) {
	h.calls++
	return h.text, h.err
}

func first(int) int { return 0 }

func newController(t *testing.T, dict Dictionary, hinter Hinter) (*Controller, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	if _, err := st.InsertWords(context.Background(), corpus); err != nil {
		t.Fatal(err)
	}
	c := New(st, dict, hinter,
		WithClock(func() time.Time { return clock }),
		WithRand(first),
	)
	return c, st
}

// startCrane starts a session; with WithRand(first) the draw is the
// alphabetically first 5-letter word, "crane".
func startCrane(t *testing.T, c *Controller, user string) game.Key {
	t.Helper()
	v, err := c.StartSession(context.Background(), user)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if v.WordLength != 5 || v.State != game.Playing || v.MaxAttempts != game.MaxAttempts {
		t.Fatalf("view = %+v", v)
	}
	return game.RegularKey(v.SessionID)
}

func TestStartSessionReturnsActive(t *testing.T) {
	c, _ := newController(t, &allowAll{}, nil)
	ctx := context.Background()

	a, err := c.StartSession(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.NextLevel(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if a.SessionID != b.SessionID {
		t.Errorf("second start created %s, want existing %s", b.SessionID, a.SessionID)
	}
	if _, err := c.StartSession(ctx, ""); !errors.Is(err, game.ErrUnauthenticated) {
		t.Errorf("anonymous start err = %v", err)
	}
}

func TestStartSessionNoWordsAvailable(t *testing.T) {
	st := store.NewMemoryStore()
	c := New(st, &allowAll{}, nil, WithRand(first))
	if _, err := c.StartSession(context.Background(), "u1"); !errors.Is(err, game.ErrNoWordsAvailable) {
		t.Fatalf("err = %v, want ErrNoWordsAvailable", err)
	}
	if ok, _ := c.HasUnsolvedWords(context.Background(), "u1"); ok {
		t.Error("empty corpus reports unsolved words")
	}
}

func TestSubmitGuessWinUpdatesStatsAndPool(t *testing.T) {
	c, st := newController(t, &allowAll{}, nil)
	ctx := context.Background()
	key := startCrane(t, c, "u1")

	res, err := c.SubmitGuess(ctx, "u1", key, " SLATE ")
	if err != nil {
		t.Fatal(err)
	}
	if res.State != game.Playing || res.Game.Attempts[0] != "slate" || len(res.Evaluation) != 5 {
		t.Fatalf("first guess = %+v", res)
	}

	res, err = c.SubmitGuess(ctx, "u1", key, "crane")
	if err != nil {
		t.Fatal(err)
	}
	if res.State != game.Won || !game.Solved(res.Evaluation) || len(res.Game.Attempts) != 2 {
		t.Fatalf("winning guess = %+v", res)
	}

	s, _ := c.UserStats(ctx, "u1")
	if s.GamesPlayed != 1 || s.WordsSolved != 1 || s.CurrentStreak != 1 || s.MaxStreak != 1 {
		t.Errorf("stats = %+v", s)
	}
	pool, _ := st.UnsolvedWordIDs(ctx, "u1", 5)
	for _, id := range pool {
		if id == "w1" {
			t.Error("solved word still in pool")
		}
	}

	next, err := c.NextLevel(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if next.SessionID == key.ID {
		t.Error("next level reused the finished session")
	}
}

func TestRejectedGuessesDoNotConsumeAttempts(t *testing.T) {
	dict := &allowAll{reject: map[string]bool{"xxxxx": true}}
	c, _ := newController(t, dict, nil)
	ctx := context.Background()
	key := startCrane(t, c, "u1")

	tests := []struct {
		guess string
		want  error
	}{
		{"xxxxx", game.ErrRejectedByDictionary},
		{"planet", game.ErrMalformedInput},
		{"cr4ne", game.ErrMalformedInput},
		{"", game.ErrMalformedInput},
	}
	for _, tt := range tests {
		if _, err := c.SubmitGuess(ctx, "u1", key, tt.guess); !errors.Is(err, tt.want) {
			t.Errorf("SubmitGuess(%q) err = %v, want %v", tt.guess, err, tt.want)
		}
	}
	if _, err := c.SubmitGuess(ctx, "u2", key, "slate"); !errors.Is(err, game.ErrNotFound) {
		t.Errorf("foreign session err = %v, want ErrNotFound", err)
	}

	v, _ := c.StartSession(ctx, "u1")
	if len(v.Attempts) != 0 {
		t.Errorf("attempts after rejections = %d", len(v.Attempts))
	}
}

func TestLossAfterMaxAttempts(t *testing.T) {
	c, _ := newController(t, &allowAll{}, nil)
	ctx := context.Background()
	key := startCrane(t, c, "u1")

	var res GuessResult
	var err error
	for i := 0; i < game.MaxAttempts; i++ {
		if res, err = c.SubmitGuess(ctx, "u1", key, "fjord"); err != nil {
			t.Fatalf("guess %d: %v", i+1, err)
		}
		if len(res.Game.Attempts) != i+1 {
			t.Fatalf("attempts = %d after %d guesses", len(res.Game.Attempts), i+1)
		}
	}
	if res.State != game.Lost {
		t.Fatalf("state = %s, want lost", res.State)
	}
	_, err = c.SubmitGuess(ctx, "u1", key, "crane")
	if !errors.Is(err, game.ErrInvalidState) && !errors.Is(err, game.ErrExhaustedAttempts) {
		t.Errorf("guess after loss err = %v", err)
	}

	s, _ := c.UserStats(ctx, "u1")
	if s.GamesPlayed != 1 || s.WordsSolved != 0 || s.CurrentStreak != 0 {
		t.Errorf("stats after loss = %+v", s)
	}
	word, ok, err := c.Reveal(ctx, "u1", key)
	if err != nil || !ok || word != "crane" {
		t.Errorf("Reveal = %q, %v, %v", word, ok, err)
	}
}

func TestRevealHiddenWhilePlaying(t *testing.T) {
	c, _ := newController(t, &allowAll{}, nil)
	key := startCrane(t, c, "u1")
	word, ok, err := c.Reveal(context.Background(), "u1", key)
	if err != nil || ok || word != "" {
		t.Errorf("Reveal mid-game = %q, %v, %v", word, ok, err)
	}
}

func TestLetterHints(t *testing.T) {
	c, _ := newController(t, &allowAll{}, nil)
	ctx := context.Background()
	key := startCrane(t, c, "u1")

	// "trace" vs "crane": r, a and e are correct at positions 1, 2 and 4.
	if _, err := c.SubmitGuess(ctx, "u1", key, "trace"); err != nil {
		t.Fatal(err)
	}

	seen := map[int]bool{}
	for i := 0; i < 2; i++ {
		h, err := c.RequestLetterHint(ctx, "u1", key)
		if err != nil {
			t.Fatalf("hint %d: %v", i+1, err)
		}
		pos := h.Position - 1
		if pos == 1 || pos == 2 || pos == 4 || seen[pos] {
			t.Errorf("hint revealed known position %d", h.Position)
		}
		if h.Letter != string("crane"[pos]) {
			t.Errorf("hint letter %q at %d", h.Letter, h.Position)
		}
		seen[pos] = true
	}
	if _, err := c.RequestLetterHint(ctx, "u1", key); !errors.Is(err, game.ErrNoHintablePositions) {
		t.Errorf("third hint err = %v, want ErrNoHintablePositions", err)
	}
}

func TestLetterHintQuota(t *testing.T) {
	c, _ := newController(t, &allowAll{}, nil)
	ctx := context.Background()
	v, err := c.StartSession(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	key := game.RegularKey(v.SessionID)
	for i := 0; i < game.MaxLetterHints; i++ {
		if _, err := c.RequestLetterHint(ctx, "u1", key); err != nil {
			t.Fatalf("hint %d: %v", i+1, err)
		}
	}
	if _, err := c.RequestLetterHint(ctx, "u1", key); !errors.Is(err, game.ErrHintExhausted) {
		t.Errorf("fifth hint err = %v, want ErrHintExhausted", err)
	}
	v, _ = c.StartSession(ctx, "u1")
	if v.HintsUsed != game.MaxLetterHints || len(v.HintedPositions) != game.MaxLetterHints || len(v.Attempts) != 0 {
		t.Errorf("view after hints = %+v", v)
	}
}

func TestPowerHint(t *testing.T) {
	h := &fakeHinter{err: errors.New("upstream down")}
	c, _ := newController(t, &allowAll{}, h)
	ctx := context.Background()
	key := startCrane(t, c, "u1")

	if _, err := c.RequestPowerHint(ctx, "u1", key); !errors.Is(err, game.ErrOracleUnavailable) {
		t.Fatalf("failing oracle err = %v", err)
	}

	h.err, h.text = nil, "A long-legged wader, or a machine on a building site."
	text, err := c.RequestPowerHint(ctx, "u1", key)
	if err != nil || text != h.text {
		t.Fatalf("RequestPowerHint = %q, %v", text, err)
	}
	calls := h.calls
	if _, err := c.RequestPowerHint(ctx, "u1", key); !errors.Is(err, game.ErrInvalidState) {
		t.Errorf("second power hint err = %v, want ErrInvalidState", err)
	}
	if h.calls != calls {
		t.Error("used power hint must not call the oracle again")
	}

	v, _ := c.StartSession(ctx, "u1")
	if !v.PowerHintUsed || v.PowerHintText != h.text {
		t.Errorf("view = %+v", v)
	}
}

func TestPowerHintWithoutOracle(t *testing.T) {
	c, _ := newController(t, &allowAll{}, nil)
	key := startCrane(t, c, "u1")
	if _, err := c.RequestPowerHint(context.Background(), "u1", key); !errors.Is(err, game.ErrOracleUnavailable) {
		t.Errorf("err = %v, want ErrOracleUnavailable", err)
	}
}

// The session finishes while the dictionary call is in flight; the stale
// guess must be refused instead of overwriting the terminal state.
func TestSessionFinishedDuringDictionaryCall(t *testing.T) {
	dict := &allowAll{}
	c, _ := newController(t, dict, nil)
	ctx := context.Background()
	key := startCrane(t, c, "u1")

	dict.during = func() {
		if _, err := c.SubmitGuess(ctx, "u1", key, "crane"); err != nil {
			t.Errorf("inner guess: %v", err)
		}
	}
	if _, err := c.SubmitGuess(ctx, "u1", key, "slate"); !errors.Is(err, game.ErrInvalidState) {
		t.Fatalf("stale guess err = %v, want ErrInvalidState", err)
	}
	v, _, _ := c.Reveal(ctx, "u1", key)
	if v != "crane" {
		t.Error("session should be won")
	}
	s, _ := c.UserStats(ctx, "u1")
	if s.GamesPlayed != 1 {
		t.Errorf("GamesPlayed = %d, want 1", s.GamesPlayed)
	}
}

func TestConcurrentGuessesOnLastAttempt(t *testing.T) {
	c, st := newController(t, &allowAll{}, nil)
	ctx := context.Background()
	key := startCrane(t, c, "u1")
	for i := 0; i < game.MaxAttempts-1; i++ {
		if _, err := c.SubmitGuess(ctx, "u1", key, "fjord"); err != nil {
			t.Fatal(err)
		}
	}

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.SubmitGuess(ctx, "u1", key, "crane")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, game.ErrInvalidState), errors.Is(err, game.ErrExhaustedAttempts):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("%d guesses succeeded, want exactly 1", wins)
	}

	s, _ := st.LoadSession(ctx, "u1", key)
	if s.AttemptsUsed != game.MaxAttempts || s.State != game.Won {
		t.Errorf("final session attempts=%d state=%s", s.AttemptsUsed, s.State)
	}
	us, _ := c.UserStats(ctx, "u1")
	if us.GamesPlayed != 1 || us.WordsSolved != 1 {
		t.Errorf("stats double-counted: %+v", us)
	}
}

func dailyWord(t *testing.T) string {
	t.Helper()
	var fives []string
	for _, w := range corpus {
		if w.Length == 5 {
			fives = append(fives, w.Text)
		}
	}
	sort.Strings(fives)
	return fives[daily.WordIndex(daily.DateKey(clock), len(fives))]
}

func TestDailyMode(t *testing.T) {
	c, st := newController(t, &allowAll{}, nil)
	ctx := context.Background()
	target := dailyWord(t)
	date := c.Today()

	a, err := c.StartDaily(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if a.SessionID != "daily:"+date || a.WordLength != 5 {
		t.Fatalf("daily view = %+v", a)
	}
	if again, _ := c.StartDaily(ctx, "u1"); again.SessionID != a.SessionID {
		t.Error("StartDaily not idempotent")
	}

	key := game.DailyKey(date)
	if _, err := c.RequestLetterHint(ctx, "u1", key); err != nil {
		t.Fatalf("daily letter hint: %v", err)
	}
	res, err := c.SubmitGuess(ctx, "u1", key, target)
	if err != nil || res.State != game.Won {
		t.Fatalf("daily win = %+v, %v", res, err)
	}

	// Everyone gets the same word.
	if _, err := c.StartDaily(ctx, "u2"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SubmitGuess(ctx, "u2", key, target); err != nil {
		t.Fatalf("u2 daily guess: %v", err)
	}

	if s, _ := c.UserStats(ctx, "u1"); s.GamesPlayed != 0 {
		t.Errorf("daily play fed regular stats: %+v", s)
	}

	ranks, err := stats.NewBoard(st).DailyRankings(ctx, date, 10)
	if err != nil || len(ranks) != 2 {
		t.Fatalf("DailyRankings = %+v, %v", ranks, err)
	}
	if ranks[0].Rank != 1 || ranks[0].Attempts != 1 {
		t.Errorf("top daily rank = %+v", ranks[0])
	}

	if _, err := c.SubmitGuess(ctx, "u3", key, target); !errors.Is(err, game.ErrNotFound) {
		t.Errorf("guess without daily session err = %v", err)
	}
}

func TestDailyWithoutWords(t *testing.T) {
	c := New(store.NewMemoryStore(), &allowAll{}, nil)
	if _, err := c.StartDaily(context.Background(), "u1"); !errors.Is(err, game.ErrNoWordsAvailable) {
		t.Errorf("err = %v, want ErrNoWordsAvailable", err)
	}
}

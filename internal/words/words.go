// internal/words/words.go
//
// Word list management.
//
// Responsibilities:
//   - Normalize raw word lists (trim, lowercase, a–z only, length 5–7, dedupe).
//   - Seed the curated target list into storage with stable uuid ids.
//
// Lists come from the embedded assets/words/*.txt files, or from
// WORDS_FILE when the operator wants a different corpus.
package words

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordplay/assets"
	"github.com/robalobadob/wordplay/internal/game"
)

// Inserter stores words, skipping texts that already exist.
type Inserter interface {
	InsertWords(ctx context.Context, ws []game.Word) (int, error)
}

// Normalize keeps playable words only, lowercased and deduplicated, in input order.
func Normalize(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		w := game.Normalize(line)
		if !game.ValidLength(len(w)) || !game.IsAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Load returns the normalized corpus from path, or the embedded lists when path is empty.
func Load(path string) ([]string, error) {
	if path == "" {
		raw, err := assets.WordLists()
		if err != nil {
			return nil, fmt.Errorf("words: read embedded lists: %w", err)
		}
		return Normalize(raw), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: open %s: %w", path, err)
	}
	defer f.Close()

	var raw []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" && !strings.HasPrefix(s, "#") {
			raw = append(raw, s)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	return Normalize(raw), nil
}

// Seed inserts texts as target words. Existing texts keep their ids.
func Seed(ctx context.Context, dst Inserter, texts []string) (int, error) {
	ws := make([]game.Word, 0, len(texts))
	for _, t := range texts {
		ws = append(ws, game.Word{ID: uuid.NewString(), Text: t, Length: len(t)})
	}
	n, err := dst.InsertWords(ctx, ws)
	if err != nil {
		return n, fmt.Errorf("words: seed: %w", err)
	}
	log.Info().Int("offered", len(ws)).Int("inserted", n).Msg("seeded words")
	return n, nil
}

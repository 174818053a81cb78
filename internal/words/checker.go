package words

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Lookup is the persistent side of the dictionary: the curated target list
// and the cache of externally validated guesses.
type Lookup interface {
	HasWord(ctx context.Context, text string, length int) (bool, error)
	HasCachedGuess(ctx context.Context, text string, length int) (bool, error)
	CacheGuess(ctx context.Context, text string, length int) error
}

// Oracle is an external yes/no dictionary.
type Oracle interface {
	IsEnglishWord(ctx context.Context, word string) (bool, error)
}

// Memo is an optional fast positive-only memo in front of Lookup.
type Memo interface {
	Has(ctx context.Context, text string, length int) (bool, error)
	Add(ctx context.Context, text string, length int) error
}

// Checker decides whether a string is an acceptable guess.
type Checker struct {
	lookup Lookup
	oracle Oracle
	memo   Memo
}

// NewChecker builds a Checker. oracle and memo may be nil.
func NewChecker(lookup Lookup, oracle Oracle, memo Memo) *Checker {
	return &Checker{lookup: lookup, oracle: oracle, memo: memo}
}

// IsAcceptable checks, in order: the target list, the validated-guess cache,
// then the external oracle, whose yes answers are cached before returning.
// Oracle failures reject the word; only storage failures surface as errors.
func (c *Checker) IsAcceptable(ctx context.Context, word string, length int) (bool, error) {
	if len(word) != length {
		return false, nil
	}
	if c.memoHas(ctx, word, length) {
		return true, nil
	}

	ok, err := c.lookup.HasWord(ctx, word, length)
	if err != nil {
		return false, fmt.Errorf("words: target lookup: %w", err)
	}
	if !ok {
		ok, err = c.lookup.HasCachedGuess(ctx, word, length)
		if err != nil {
			return false, fmt.Errorf("words: cache lookup: %w", err)
		}
	}
	if ok {
		c.memoAdd(ctx, word, length)
		return true, nil
	}

	if c.oracle == nil {
		return false, nil
	}
	valid, err := c.oracle.IsEnglishWord(ctx, word)
	if err != nil {
		log.Warn().Err(err).Str("word", word).Msg("dictionary oracle unavailable")
		return false, nil
	}
	if !valid {
		return false, nil
	}
	if err := c.lookup.CacheGuess(ctx, word, length); err != nil {
		return false, fmt.Errorf("words: cache insert: %w", err)
	}
	c.memoAdd(ctx, word, length)
	return true, nil
}

func (c *Checker) memoHas(ctx context.Context, word string, length int) bool {
	if c.memo == nil {
		return false
	}
	ok, err := c.memo.Has(ctx, word, length)
	if err != nil {
		log.Debug().Err(err).Msg("memo lookup failed")
		return false
	}
	return ok
}

func (c *Checker) memoAdd(ctx context.Context, word string, length int) {
	if c.memo == nil {
		return
	}
	if err := c.memo.Add(ctx, word, length); err != nil {
		log.Debug().Err(err).Msg("memo insert failed")
	}
}

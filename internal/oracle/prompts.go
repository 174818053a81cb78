package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// IsEnglishWord asks whether word is an acceptable English word, accepting
// standard inflections. Only a reply beginning with YES counts as yes.
func (c *Client) IsEnglishWord(ctx context.Context, word string) (bool, error) {
	prompt := fmt.Sprintf(`Is "%s" a valid English word (as used in word games like Scrabble or Wordle)? `+
		`Accept: plurals (e.g. words, cats, boxes), past tense (e.g. walked, tried), -ing forms (e.g. running), `+
		`comparatives (e.g. bigger), and other standard inflections. Only reject if it is not a real English word. `+
		`Answer only YES or NO.`, word)
	out, err := c.Complete(ctx, prompt, 10, 0)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToUpper(out), "YES"), nil
}

// MeaningHint asks for one short cryptic sentence about word's meaning.
// The prompt forbids naming or spelling the word; this is not checked.
func (c *Client) MeaningHint(ctx context.Context, word string) (string, error) {
	prompt := fmt.Sprintf(`Give a single brief cryptic hint about what the word "%s" means `+
		`(for a word-guessing game). Do not say the word or spell any letters. One short sentence only.`, word)
	out, err := c.Complete(ctx, prompt, 60, 0.7)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", errors.New("oracle: empty hint")
	}
	return out, nil
}

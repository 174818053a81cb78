// internal/game/evaluate.go
//
// Guess evaluation using the classic two-pass algorithm.
//
// Pass 1 marks exact matches Correct and consumes one unit of that letter.
// Pass 2 walks the remaining positions left to right and marks Present while
// the letter still has unconsumed units in the target, otherwise Absent.
// Resolving Correct first keeps repeated letters from being double-credited.

package game

import "strings"

// Evaluate scores guess against target. The result always has one entry per
// target letter. Callers guarantee equal lengths; a shorter guess leaves the
// missing tail Absent rather than panicking.
func Evaluate(guess, target string) []Status {
	g, t := []rune(guess), []rune(target)
	out := make([]Status, len(t))

	counts := make(map[rune]int, len(t))
	for _, r := range t {
		counts[r]++
	}
	used := make(map[rune]int, len(t))

	for i := range t {
		if i < len(g) && g[i] == t[i] {
			out[i] = Correct
			used[g[i]]++
		}
	}
	for i := range t {
		if out[i] == Correct {
			continue
		}
		out[i] = Absent
		if i >= len(g) {
			continue
		}
		if used[g[i]] < counts[g[i]] {
			out[i] = Present
			used[g[i]]++
		}
	}
	return out
}

// Solved reports whether every position is Correct.
func Solved(marks []Status) bool {
	if len(marks) == 0 {
		return false
	}
	for _, m := range marks {
		if m != Correct {
			return false
		}
	}
	return true
}

// Normalize trims and lowercases raw input.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IsAlpha reports whether s is non-empty lowercase ASCII a–z.
func IsAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// ValidLength reports whether n is a playable word length.
func ValidLength(n int) bool { return n >= MinLength && n <= MaxLength }

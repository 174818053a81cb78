// Package daily implements the shared daily challenge word selection.
//
// The choice must be identical on every instance: SHA-256 over the literal
// date string "YYYY-MM-DD", the first 4 digest bytes read as a big-endian
// uint32, reduced modulo the number of candidates ordered by word text.
package daily

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"
)

const layout = "2006-01-02"

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(layout)
}

// ParseDate validates a YYYY-MM-DD key and returns it in canonical form.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return "", fmt.Errorf("daily: bad date %q: %w", s, err)
	}
	return t.Format(layout), nil
}

// WordIndex returns the candidate index for date given n candidates.
func WordIndex(date string, n int) int {
	if n <= 0 {
		return 0
	}
	sum := sha256.Sum256([]byte(date))
	v := binary.BigEndian.Uint32(sum[:4])
	return int(v % uint32(n))
}

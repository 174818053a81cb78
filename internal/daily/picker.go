package daily

import (
	"context"
	"errors"
)

// ErrNoCandidates is returned when there are no words of the daily length.
var ErrNoCandidates = errors.New("daily: no candidate words")

// Candidates lists word ids of a given length ordered by word text ascending.
type Candidates interface {
	WordIDsByText(ctx context.Context, length int) ([]string, error)
}

// Picker resolves the daily word for a date.
type Picker struct {
	src    Candidates
	length int
}

func NewPicker(src Candidates, length int) *Picker {
	return &Picker{src: src, length: length}
}

// WordForDate returns the word id shared by every player on date.
func (p *Picker) WordForDate(ctx context.Context, date string) (string, error) {
	ids, err := p.src.WordIDsByText(ctx, p.length)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", ErrNoCandidates
	}
	return ids[WordIndex(date, len(ids))], nil
}

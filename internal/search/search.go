// Package search finds literal digit patterns in the corpus.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/pidigits/internal/model"
)

var (
	// ErrEmptyPattern rejects searches with nothing to look for.
	ErrEmptyPattern = errors.New("pattern must not be empty")
	// ErrInvalidDate rejects birthday fields outside the calendar.
	ErrInvalidDate = errors.New("invalid date")
)

// ctxCheckEvery bounds how many matches are scanned between cancellation checks.
const ctxCheckEvery = 1024

// DigitReader is the digit window searched over.
type DigitReader interface {
	ReadDigits(ctx context.Context, offset, length int) (string, error)
	TotalDigits() int
}

// FamousSequence is a well-known digit run.
type FamousSequence struct {
	Pattern string
	Label   string
}

// Famous lists the sequences reported by FamousSequences, in order.
var Famous = []FamousSequence{
	{"999999", "Feynman Point"},
	{"123456", "Sequential Digits"},
	{"314159", "Pi Beginning"},
	{"271828", "Euler's Number Beginning"},
	{"161803", "Golden Ratio Beginning"},
	{"000000", "Six Zeros"},
}

// Searcher scans the whole corpus. The corpus is read once and reused.
type Searcher struct {
	reader DigitReader

	mu     sync.Mutex
	corpus string
	loaded bool
}

// New returns a Searcher over reader.
func New(reader DigitReader) *Searcher {
	return &Searcher{reader: reader}
}

func (s *Searcher) text(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.corpus, nil
	}
	text, err := s.reader.ReadDigits(ctx, 0, s.reader.TotalDigits())
	if err != nil {
		return "", fmt.Errorf("failed to load corpus: %w", err)
	}
	s.corpus = text
	s.loaded = true
	return text, nil
}

// Search finds every occurrence of pattern, overlapping ones included.
func (s *Searcher) Search(ctx context.Context, pattern string) (model.SearchResult, error) {
	return s.SearchType(ctx, pattern, model.PatternCustom)
}

// SearchType is Search with an explicit type tag.
func (s *Searcher) SearchType(ctx context.Context, pattern string, kind model.PatternType) (model.SearchResult, error) {
	if pattern == "" {
		return model.SearchResult{}, ErrEmptyPattern
	}
	text, err := s.text(ctx)
	if err != nil {
		return model.SearchResult{}, err
	}
	positions, err := findAll(ctx, text, pattern)
	if err != nil {
		return model.SearchResult{}, err
	}
	return model.SearchResult{Pattern: pattern, Positions: positions, Type: kind}, nil
}

func findAll(ctx context.Context, text, pattern string) ([]int, error) {
	positions := []int{}
	for start := 0; start < len(text); {
		if len(positions)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		idx := strings.Index(text[start:], pattern)
		if idx < 0 {
			break
		}
		positions = append(positions, start+idx)
		start += idx + 1
	}
	return positions, nil
}

// BirthdayPatterns returns the encodings tried for a date, in order.
func BirthdayPatterns(month, day, year int) []string {
	return []string{
		fmt.Sprintf("%02d%02d%04d", month, day, year),
		fmt.Sprintf("%02d%02d%02d", month, day, year%100),
		fmt.Sprintf("%d%d%d", month, day, year),
		fmt.Sprintf("%d%d%d", month, day, year%100),
	}
}

// SearchBirthday tries each birthday encoding and returns the first with a
// match, or the last encoding's empty result.
func (s *Searcher) SearchBirthday(ctx context.Context, month, day, year int) (model.SearchResult, error) {
	if err := validateDate(month, day, year); err != nil {
		return model.SearchResult{}, err
	}
	var res model.SearchResult
	for _, pattern := range BirthdayPatterns(month, day, year) {
		var err error
		res, err = s.SearchType(ctx, pattern, model.PatternBirthday)
		if err != nil {
			return model.SearchResult{}, err
		}
		if len(res.Positions) > 0 {
			break
		}
	}
	res.Label = fmt.Sprintf("%02d/%02d/%04d", month, day, year)
	return res, nil
}

func validateDate(month, day, year int) error {
	if month < 1 || month > 12 || day < 1 || year < 1 || year > 9999 {
		return fmt.Errorf("%w: %d/%d/%d", ErrInvalidDate, month, day, year)
	}
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return fmt.Errorf("%w: %d/%d/%d", ErrInvalidDate, month, day, year)
	}
	return nil
}

// ParseBirthday parses MM/DD/YYYY, padded or not.
func ParseBirthday(s string) (month, day, year int, err error) {
	t, err := time.Parse("1/2/2006", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q (want MM/DD/YYYY)", ErrInvalidDate, s)
	}
	return int(t.Month()), t.Day(), t.Year(), nil
}

// SearchPhoneNumber searches the digits of a phone number, ignoring punctuation.
func (s *Searcher) SearchPhoneNumber(ctx context.Context, phone string) (model.SearchResult, error) {
	clean := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	res, err := s.SearchType(ctx, clean, model.PatternPhoneNumber)
	if err != nil {
		return model.SearchResult{}, err
	}
	res.Label = phone
	return res, nil
}

// FamousSequences searches every entry of Famous.
func (s *Searcher) FamousSequences(ctx context.Context) ([]model.SearchResult, error) {
	out := make([]model.SearchResult, 0, len(Famous))
	for _, seq := range Famous {
		res, err := s.SearchType(ctx, seq.Pattern, model.PatternFamousSequence)
		if err != nil {
			return nil, err
		}
		res.Label = seq.Label
		out = append(out, res)
	}
	return out, nil
}

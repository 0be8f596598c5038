package search

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/verte-zerg/pidigits/internal/generator"
	"github.com/verte-zerg/pidigits/internal/model"
)

type stringReader struct {
	text  string
	reads int
}

func (s *stringReader) ReadDigits(_ context.Context, offset, length int) (string, error) {
	s.reads++
	if offset < 0 || offset >= len(s.text) || length <= 0 {
		return "", nil
	}
	return s.text[offset:min(offset+length, len(s.text))], nil
}

func (s *stringReader) TotalDigits() int { return len(s.text) }

func TestSearchOverlapping(t *testing.T) {
	s := New(&stringReader{text: "1111"})
	res, err := s.Search(context.Background(), "11")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !reflect.DeepEqual(res.Positions, []int{0, 1, 2}) {
		t.Fatalf("expected [0 1 2], got %v", res.Positions)
	}
	if res.Type != model.PatternCustom || res.Pattern != "11" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSearchNoMatch(t *testing.T) {
	s := New(&stringReader{text: "14159"})
	res, err := s.Search(context.Background(), "00")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Positions == nil || len(res.Positions) != 0 {
		t.Fatalf("expected empty non-nil positions, got %#v", res.Positions)
	}
}

func TestSearchEmptyPattern(t *testing.T) {
	s := New(&stringReader{text: "14159"})
	if _, err := s.Search(context.Background(), ""); !errors.Is(err, ErrEmptyPattern) {
		t.Fatalf("expected ErrEmptyPattern, got %v", err)
	}
	if _, err := s.SearchPhoneNumber(context.Background(), "(---)"); !errors.Is(err, ErrEmptyPattern) {
		t.Fatalf("expected ErrEmptyPattern for punctuation-only phone, got %v", err)
	}
}

func TestSearchCorpusLoadedOnce(t *testing.T) {
	r := &stringReader{text: "14159265"}
	s := New(r)
	for _, p := range []string{"1", "59", "265"} {
		if _, err := s.Search(context.Background(), p); err != nil {
			t.Fatalf("search %q: %v", p, err)
		}
	}
	if r.reads != 1 {
		t.Fatalf("expected corpus to be read once, got %d reads", r.reads)
	}
}

func TestSearchCancelled(t *testing.T) {
	s := New(&stringReader{text: "1111"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Search(ctx, "1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSearchBirthdayEncodings(t *testing.T) {
	got := BirthdayPatterns(3, 14, 1995)
	want := []string{"03141995", "031495", "3141995", "31495"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BirthdayPatterns = %v, want %v", got, want)
	}
}

func TestSearchBirthdayFirstMatchWins(t *testing.T) {
	// The eight-digit encoding is absent; the six-digit one is the first hit.
	s := New(&stringReader{text: "99314199599031495"})
	res, err := s.SearchBirthday(context.Background(), 3, 14, 1995)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Pattern != "031495" || !reflect.DeepEqual(res.Positions, []int{11}) {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Type != model.PatternBirthday || res.Label != "03/14/1995" {
		t.Fatalf("unexpected tags %+v", res)
	}
}

func TestSearchBirthdayNoMatchReturnsLastPattern(t *testing.T) {
	s := New(&stringReader{text: "0000000000"})
	res, err := s.SearchBirthday(context.Background(), 12, 25, 2001)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Pattern != "12251" || len(res.Positions) != 0 {
		t.Fatalf("expected last encoding with no matches, got %+v", res)
	}
}

func TestSearchBirthdayInvalid(t *testing.T) {
	s := New(&stringReader{text: "1"})
	for _, d := range [][3]int{{0, 1, 2000}, {13, 1, 2000}, {2, 30, 2000}, {4, 31, 2001}, {1, 0, 2000}, {1, 1, 0}} {
		if _, err := s.SearchBirthday(context.Background(), d[0], d[1], d[2]); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected ErrInvalidDate for %v, got %v", d, err)
		}
	}
	if _, err := s.SearchBirthday(context.Background(), 2, 29, 2024); err != nil {
		t.Fatalf("leap day rejected: %v", err)
	}
}

func TestParseBirthday(t *testing.T) {
	m, d, y, err := ParseBirthday("03/14/1879")
	if err != nil || m != 3 || d != 14 || y != 1879 {
		t.Fatalf("ParseBirthday = %d %d %d %v", m, d, y, err)
	}
	if _, _, _, err := ParseBirthday("1879-03-14"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestSearchPhoneNumber(t *testing.T) {
	s := New(&stringReader{text: generator.PiDigits(1000)})
	res, err := s.SearchPhoneNumber(context.Background(), "(265) 358-979")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Pattern != "265358979" || res.Type != model.PatternPhoneNumber {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Positions) == 0 || res.Positions[0] != 5 {
		t.Fatalf("expected match at 5, got %v", res.Positions)
	}
}

func TestFamousSequences(t *testing.T) {
	s := New(&stringReader{text: generator.PiDigits(1000)})
	results, err := s.FamousSequences(context.Background())
	if err != nil {
		t.Fatalf("famous: %v", err)
	}
	if len(results) != len(Famous) {
		t.Fatalf("expected %d results, got %d", len(Famous), len(results))
	}
	feynman := results[0]
	if feynman.Label != "Feynman Point" || feynman.Type != model.PatternFamousSequence {
		t.Fatalf("unexpected first result %+v", feynman)
	}
	if len(feynman.Positions) == 0 || feynman.Positions[0] != 761 {
		t.Fatalf("expected Feynman point at 761, got %v", feynman.Positions)
	}
}

func TestStatistics(t *testing.T) {
	s := New(&stringReader{text: "1210012001"})
	st, err := s.Statistics(context.Background(), "1")
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	// positions 0, 2, 5, 9
	if st.Occurrences != 4 || !reflect.DeepEqual(st.Positions, []int{0, 2, 5, 9}) {
		t.Fatalf("unexpected positions %+v", st)
	}
	if math.Abs(st.AverageGap-3) > 1e-9 {
		t.Fatalf("expected average gap 3, got %v", st.AverageGap)
	}
	if math.Abs(st.TheoreticalProbability-0.1) > 1e-12 {
		t.Fatalf("theoretical probability %v", st.TheoreticalProbability)
	}
	if math.Abs(st.ActualProbability-0.4) > 1e-12 {
		t.Fatalf("actual probability %v", st.ActualProbability)
	}

	single, err := s.Statistics(context.Background(), "33")
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if single.Occurrences != 0 || single.AverageGap != 0 {
		t.Fatalf("unexpected stats %+v", single)
	}
}

package stats

import (
	"sort"

	"github.com/verte-zerg/pidigits/internal/model"
)

const defaultStickingTop = 5

// StickingPoint is a corpus offset where test sessions repeatedly failed.
type StickingPoint struct {
	Offset int
	Count  int
}

// FindStickingPoints returns the most frequent failure offsets of test-mode
// sessions. A test session with more attempts than correct answers ended on
// its first mistake, so its end digit is where recall broke down.
func FindStickingPoints(sessions []model.SessionSummary, top int) []StickingPoint {
	counts := map[int]int{}
	for _, s := range sessions {
		if s.Mode != model.ModeTest || s.Total <= s.Correct {
			continue
		}
		counts[s.EndDigit]++
	}
	points := make([]StickingPoint, 0, len(counts))
	for offset, count := range counts {
		points = append(points, StickingPoint{Offset: offset, Count: count})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Count == points[j].Count {
			return points[i].Offset < points[j].Offset
		}
		return points[i].Count > points[j].Count
	})
	if top > 0 && len(points) > top {
		points = points[:top]
	}
	return points
}

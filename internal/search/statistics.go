package search

import (
	"context"
	"math"

	"github.com/verte-zerg/pidigits/internal/model"
)

// Statistics describes how pattern is spread across the corpus.
func (s *Searcher) Statistics(ctx context.Context, pattern string) (model.PatternStatistics, error) {
	res, err := s.Search(ctx, pattern)
	if err != nil {
		return model.PatternStatistics{}, err
	}
	text, err := s.text(ctx)
	if err != nil {
		return model.PatternStatistics{}, err
	}
	stats := model.PatternStatistics{
		Pattern:                pattern,
		Occurrences:            len(res.Positions),
		Positions:              res.Positions,
		AverageGap:             averageGap(res.Positions),
		TheoreticalProbability: math.Pow(10, -float64(len(pattern))),
	}
	if len(text) > 0 {
		stats.ActualProbability = float64(stats.Occurrences) / float64(len(text))
	}
	return stats, nil
}

func averageGap(positions []int) float64 {
	if len(positions) < 2 {
		return 0
	}
	return float64(positions[len(positions)-1]-positions[0]) / float64(len(positions)-1)
}

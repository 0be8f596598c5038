package memorize

import (
	"time"

	"github.com/verte-zerg/pidigits/internal/model"
)

// foldSession adds one session to the running aggregates using incremental
// weighted averages. Sessions without attempts leave accuracy untouched.
func foldSession(stats *model.MemorizationStats, s model.SessionSummary) {
	n := float64(stats.TotalSessions)
	if s.Total > 0 {
		accuracy := float64(s.Correct) / float64(s.Total)
		stats.AverageAccuracy = (stats.AverageAccuracy*n + accuracy) / (n + 1)
	}
	stats.AverageSessionTime = time.Duration((float64(stats.AverageSessionTime)*n + float64(s.Duration)) / (n + 1))
	stats.TotalSessions++
	stats.TotalDigits += s.Correct
	stats.PersonalBest = max(stats.PersonalBest, s.Correct)
}

// StatsFromHistory rebuilds aggregate statistics by replaying sessions in
// the order given, then attaches the already-unlocked achievements.
func StatsFromHistory(sessions []model.SessionSummary, achievements []model.Achievement) model.MemorizationStats {
	var stats model.MemorizationStats
	for _, s := range sessions {
		foldSession(&stats, s)
	}
	stats.Achievements = append([]model.Achievement(nil), achievements...)
	return stats
}

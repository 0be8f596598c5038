package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/pidigits/internal/memorize"
	"github.com/verte-zerg/pidigits/internal/model"
	"github.com/verte-zerg/pidigits/internal/store"
)

// ReportConfig filters the sessions a report covers.
type ReportConfig struct {
	Mode        model.Mode
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions       []model.SessionSummary
	Achievements   []model.Achievement
	Stats          model.MemorizationStats
	StickingPoints []StickingPoint
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg ReportConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, store.SessionFilter{Mode: cfg.Mode, Since: cfg.Since, Limit: cfg.Last})
	if err != nil {
		return Report{}, err
	}
	achievements, err := st.ListAchievements(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Sessions:       sessions,
		Achievements:   achievements,
		Stats:          memorize.StatsFromHistory(sessions, achievements),
		StickingPoints: FindStickingPoints(sessions, defaultStickingTop),
	}, nil
}

// LoadStats rebuilds the all-time aggregates used to seed a new game.
func LoadStats(ctx context.Context, st *store.Store) (model.MemorizationStats, error) {
	report, err := BuildReport(ctx, st, ReportConfig{})
	if err != nil {
		return model.MemorizationStats{}, err
	}
	return report.Stats, nil
}

package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/pidigits/internal/model"
	"github.com/verte-zerg/pidigits/internal/stats"
	"github.com/verte-zerg/pidigits/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "pidigits.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := []model.SessionSummary{
		{ID: "a", Mode: model.ModePractice, EndDigit: 12, Correct: 12, Total: 12, Duration: time.Minute, EndedAt: base},
		{ID: "b", Mode: model.ModeTest, EndDigit: 7, Correct: 7, Total: 8, Duration: time.Minute, EndedAt: base.Add(time.Hour)},
	}
	for i, s := range sessions {
		var unlocked []model.Achievement
		if i == 0 {
			unlocked = []model.Achievement{{ID: "digits_10", Title: "First Steps", Threshold: 10, UnlockedAt: base}}
		}
		if err := st.InsertSession(ctx, s, unlocked); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}
	return st
}

func TestAchievementsTabShowsLockedAndSticking(t *testing.T) {
	m := NewModel(seededStore(t), stats.ReportConfig{CurveWindow: 1})
	out := renderAchievements(m.report)
	if !strings.Contains(out, "[x] First Steps") {
		t.Fatalf("expected unlocked milestone, got %q", out)
	}
	if !strings.Contains(out, "[ ] Pi Legend") {
		t.Fatalf("expected locked milestone, got %q", out)
	}
	if !strings.Contains(out, "digit 8  missed 1") {
		t.Fatalf("expected sticking point, got %q", out)
	}
}

func TestFilterByMode(t *testing.T) {
	m := NewModel(seededStore(t), stats.ReportConfig{CurveWindow: 1})
	if len(m.report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(m.report.Sessions))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[0].SetValue("test")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter to apply, got error %q", m.filterError)
	}
	if m.cfg.Mode != model.ModeTest || len(m.report.Sessions) != 1 {
		t.Fatalf("expected only test sessions, got %+v", m.report.Sessions)
	}
	if m.report.Stats.PersonalBest != 7 {
		t.Fatalf("expected filtered personal best 7, got %d", m.report.Stats.PersonalBest)
	}
}

func TestFilterRejectsBadInput(t *testing.T) {
	m := NewModel(seededStore(t), stats.ReportConfig{CurveWindow: 1})
	m.startFilter()
	m.filterInputs[3].SetValue("0")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode {
		t.Fatalf("esc should leave filter mode")
	}
}

func TestSessionTableNewestFirst(t *testing.T) {
	m := NewModel(seededStore(t), stats.ReportConfig{CurveWindow: 1})
	rows := m.sessionTable.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "test" || rows[1][1] != "practice" {
		t.Fatalf("unexpected row order %+v", rows)
	}
}

func TestViewRendersTabs(t *testing.T) {
	m := NewModel(seededStore(t), stats.ReportConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	for _, want := range []string{"Overview", "Sessions", "Achievements", "mode=any"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabSessions {
		t.Fatalf("expected sessions tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabAchievements {
		t.Fatalf("expected wraparound to achievements, got %d", m.activeTab)
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct{ in, next, prev int }{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("next(%d)=%d want %d", tc.in, got, tc.next)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prev(%d)=%d want %d", tc.in, got, tc.prev)
		}
	}
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/pidigits/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "pidigits.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func summaryAt(id string, at time.Time, correct, total int) model.SessionSummary {
	return model.SessionSummary{
		ID:         id,
		Mode:       model.ModePractice,
		StartDigit: 0,
		EndDigit:   correct,
		Correct:    correct,
		Total:      total,
		Duration:   1500 * time.Millisecond,
		EndedAt:    at,
	}
}

func TestInsertAndListSessions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2024, 3, 14, 1, 59, 26, 0, time.UTC)
	// Out of order inserts, one with sub-second precision.
	inputs := []model.SessionSummary{
		summaryAt("b", base.Add(2*time.Second), 20, 22),
		summaryAt("a", base, 10, 10),
		summaryAt("c", base.Add(2*time.Second+500*time.Millisecond), 5, 9),
	}
	inputs[2].Mode = model.ModeTest
	for _, in := range inputs {
		if err := s.InsertSession(ctx, in, nil); err != nil {
			t.Fatalf("insert %s: %v", in.ID, err)
		}
	}

	all, err := s.ListSessions(ctx, SessionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "a" || all[1].ID != "b" || all[2].ID != "c" {
		t.Fatalf("unexpected order %+v", all)
	}
	got := all[1]
	if got.Correct != 20 || got.Total != 22 || got.Duration != 1500*time.Millisecond || !got.EndedAt.Equal(base.Add(2*time.Second)) {
		t.Fatalf("unexpected round trip %+v", got)
	}

	recent, err := s.ListSessions(ctx, SessionFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "b" || recent[1].ID != "c" {
		t.Fatalf("expected the two most recent in order, got %+v", recent)
	}

	tests, err := s.ListSessions(ctx, SessionFilter{Mode: model.ModeTest})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tests) != 1 || tests[0].ID != "c" {
		t.Fatalf("unexpected mode filter result %+v", tests)
	}

	since := base.Add(time.Second)
	later, err := s.ListSessions(ctx, SessionFilter{Since: &since})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(later) != 2 {
		t.Fatalf("expected 2 sessions since %v, got %+v", since, later)
	}
}

func TestAchievementsInsertedOnce(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	at := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	century := model.Achievement{ID: "digits_100", Title: "Century Club", Description: "Memorized 100 digits of Pi in a single session", Threshold: 100, UnlockedAt: at}
	first := model.Achievement{ID: "digits_10", Title: "First Steps", Threshold: 10, UnlockedAt: at}

	if err := s.InsertSession(ctx, summaryAt("one", at, 100, 100), []model.Achievement{century, first}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	again := century
	again.UnlockedAt = at.Add(time.Hour)
	if err := s.InsertSession(ctx, summaryAt("two", at.Add(time.Hour), 100, 100), []model.Achievement{again}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	achievements, err := s.ListAchievements(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(achievements) != 2 {
		t.Fatalf("expected 2 achievements, got %+v", achievements)
	}
	if achievements[0].Threshold != 10 || achievements[1].ID != "digits_100" {
		t.Fatalf("unexpected order %+v", achievements)
	}
	if !achievements[1].UnlockedAt.Equal(at) {
		t.Fatalf("first unlock time must be kept, got %v", achievements[1].UnlockedAt)
	}
}

func TestDuplicateSessionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	at := time.Now()
	if err := s.InsertSession(ctx, summaryAt("dup", at, 1, 1), nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	a := model.Achievement{ID: "digits_10", Threshold: 10, UnlockedAt: at}
	if err := s.InsertSession(ctx, summaryAt("dup", at, 1, 1), []model.Achievement{a}); err == nil {
		t.Fatalf("expected duplicate id to fail")
	}
	achievements, err := s.ListAchievements(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(achievements) != 0 {
		t.Fatalf("failed insert must not leave achievements behind: %+v", achievements)
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	removed, err := s.GetBool(ctx, KeyAdsRemoved)
	if err != nil || removed {
		t.Fatalf("expected unset bool to be false, got %v %v", removed, err)
	}
	if err := s.SetBool(ctx, KeyAdsRemoved, true); err != nil {
		t.Fatalf("set bool: %v", err)
	}
	if removed, err := s.GetBool(ctx, KeyAdsRemoved); err != nil || !removed {
		t.Fatalf("expected true, got %v %v", removed, err)
	}

	if _, ok, err := s.GetString(ctx, KeyPurchaseToken); err != nil || ok {
		t.Fatalf("expected unset token, got %v %v", ok, err)
	}
	for _, token := range []string{"tok-1", "tok-2"} {
		if err := s.SetString(ctx, KeyPurchaseToken, token); err != nil {
			t.Fatalf("set string: %v", err)
		}
	}
	if token, ok, err := s.GetString(ctx, KeyPurchaseToken); err != nil || !ok || token != "tok-2" {
		t.Fatalf("expected tok-2, got %q %v %v", token, ok, err)
	}

	if err := s.SetString(ctx, "flag", "maybe"); err != nil {
		t.Fatalf("set string: %v", err)
	}
	if _, err := s.GetBool(ctx, "flag"); err == nil {
		t.Fatalf("expected non-boolean value to fail")
	}

	all, err := s.ListSettings(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 settings, got %v %v", all, err)
	}
	if err := s.DeleteSetting(ctx, "flag"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.ClearSettings(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if all, err := s.ListSettings(ctx); err != nil || len(all) != 0 {
		t.Fatalf("expected no settings after clear, got %v %v", all, err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pidigits.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.InsertSession(ctx, summaryAt("keep", time.Now(), 3, 4), nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	sessions, err := s.ListSessions(ctx, SessionFilter{})
	if err != nil || len(sessions) != 1 || sessions[0].ID != "keep" {
		t.Fatalf("unexpected sessions %+v %v", sessions, err)
	}
}

package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/verte-zerg/pidigits/internal/model"
)

func TestRenderFooterFormats(t *testing.T) {
	m := NewModel(context.Background(), stringReader("1415926535"), nil, Config{Mode: model.ModePractice}, model.MemorizationStats{PersonalBest: 42})
	m.Init()
	for _, r := range "14x" {
		m.game.SubmitAnswer(r)
	}
	out := m.renderFooter(m.game.State())
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Mode practice", "Progress 20%", "Accuracy 66.7%", "Best 42", "?: hint"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestBuildStyledDigitsCursor(t *testing.T) {
	runes := buildStyledDigits("141", 1, false, false)
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("1") {
		t.Fatalf("expected recalled digit to be shown")
	}
	if runes[1].s != cursorStyle.Render("·") {
		t.Fatalf("expected cursor slot to hide the digit")
	}
	if runes[2].s != currentGroupStyle.Render("·") {
		t.Fatalf("expected pending digit in the current group to be hidden")
	}
}

func TestBuildStyledDigitsHint(t *testing.T) {
	runes := buildStyledDigits("141", 1, true, false)
	if runes[1].s != hintStyle.Underline(true).Render("4") {
		t.Fatalf("expected hint to reveal the cursor digit")
	}
}

func TestBuildStyledDigitsGroups(t *testing.T) {
	target := strings.Repeat("1234567890", 3)
	runes := buildStyledDigits(target, 0, false, false)
	if len(runes) != 32 {
		t.Fatalf("expected 30 digits and 2 separators, got %d", len(runes))
	}
	if !runes[10].isSpace || !runes[21].isSpace {
		t.Fatalf("expected separators after each group of %d", groupSize)
	}
	if runes[25].s != pendingStyle.Render("·") {
		t.Fatalf("expected later groups to use the pending style")
	}
}

func TestBuildStyledDigitsColorize(t *testing.T) {
	runes := buildStyledDigits("09", 2, false, true)
	if runes[0].s != digitStyle('0').Render("0") {
		t.Fatalf("expected palette color for recalled digit")
	}
	if digitStyle('9').GetForeground() != lipgloss.Color("#8000FF") {
		t.Fatalf("unexpected color for 9")
	}
}

func TestWrapStyledRunesBreaksAtGroups(t *testing.T) {
	target := strings.Repeat("1", 25)
	runes := buildStyledDigits(target, 25, false, false)
	wrapped := wrapStyledRunes(runes, 15)
	lines := strings.Split(wrapped, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), wrapped)
	}
	for i, line := range lines {
		if got := lipgloss.Width(line); got > 15 {
			t.Fatalf("line %d is %d wide", i, got)
		}
	}
}

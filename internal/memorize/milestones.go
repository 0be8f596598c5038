package memorize

import (
	"fmt"
	"time"

	"github.com/verte-zerg/pidigits/internal/model"
)

// Milestone is a personal-best threshold that unlocks an achievement.
type Milestone struct {
	Threshold int
	Title     string
}

// Milestones in ascending order.
var Milestones = []Milestone{
	{10, "First Steps"},
	{50, "Getting Started"},
	{100, "Century Club"},
	{250, "Pi Master"},
	{500, "Pi Expert"},
	{1000, "Pi Legend"},
}

// AchievementID returns the stable id for a threshold.
func AchievementID(threshold int) string {
	return fmt.Sprintf("digits_%d", threshold)
}

func (m Milestone) achievement(at time.Time) model.Achievement {
	return model.Achievement{
		ID:          AchievementID(m.Threshold),
		Title:       m.Title,
		Description: fmt.Sprintf("Memorized %d digits of Pi in a single session", m.Threshold),
		Threshold:   m.Threshold,
		UnlockedAt:  at,
	}
}

var digitColors = [10]string{
	"#FF0000", "#FF8000", "#FFFF00", "#80FF00", "#00FF00",
	"#00FF80", "#00FFFF", "#0080FF", "#0000FF", "#8000FF",
}

// ColorForDigit returns the memory-aid color for a digit, gray otherwise.
func ColorForDigit(d int) string {
	if d < 0 || d > 9 {
		return "#808080"
	}
	return digitColors[d]
}

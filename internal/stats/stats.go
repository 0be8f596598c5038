// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/pidigits/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes digits per minute and accuracy for a session.
func SessionMetrics(correct, total int, duration time.Duration) (dpm, accuracy float64) {
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}
	minutes := duration.Minutes()
	if minutes <= 0 {
		return 0, accuracy
	}
	return float64(correct) / minutes, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample shrinks values to at most width points by averaging buckets.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return append([]float64(nil), values...)
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := max((i+1)*len(values)/width, start+1)
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// Curves holds per-session series smoothed by a moving average.
type Curves struct {
	Correct  []float64
	Accuracy []float64
	DPM      []float64
}

// BuildCurves derives learning curves from sessions in chronological order.
func BuildCurves(sessions []model.SessionSummary, window int) Curves {
	correct := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	dpms := make([]float64, len(sessions))
	for i, s := range sessions {
		dpm, acc := SessionMetrics(s.Correct, s.Total, s.Duration)
		correct[i] = float64(s.Correct)
		accs[i] = acc * 100
		dpms[i] = dpm
	}
	return Curves{
		Correct:  MovingAverage(correct, window),
		Accuracy: MovingAverage(accs, window),
		DPM:      MovingAverage(dpms, window),
	}
}

// RenderSummary prints the aggregate memorization statistics.
func RenderSummary(w io.Writer, stats model.MemorizationStats) error {
	if stats.TotalSessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %s", humanize.Comma(int64(stats.TotalSessions))),
		fmt.Sprintf("Digits memorized: %s", humanize.Comma(int64(stats.TotalDigits))),
		fmt.Sprintf("Personal best: %s", humanize.Comma(int64(stats.PersonalBest))),
		fmt.Sprintf("Avg accuracy: %.2f%%", stats.AverageAccuracy*100),
		fmt.Sprintf("Avg session: %s", stats.AverageSessionTime.Round(100*time.Millisecond)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints sparkline learning curves sized to width columns.
func RenderCurves(w io.Writer, sessions []model.SessionSummary, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	curves := BuildCurves(sessions, window)
	rows := []struct {
		name   string
		values []float64
	}{
		{"Correct", curves.Correct},
		{"Accuracy", curves.Accuracy},
		{"Digits/min", curves.DPM},
	}
	if _, err := fmt.Fprintf(w, "Learning Curves (window %d)\n", max(window, 1)); err != nil {
		return err
	}
	const labelWidth = 11
	for _, row := range rows {
		values := Resample(row.values, width-labelWidth-1)
		last := row.values[len(row.values)-1]
		if _, err := fmt.Fprintf(w, "%-*s %s  %.1f\n", labelWidth, row.name, Sparkline(values), last); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// SessionRows formats sessions, newest first, as table cells.
func SessionRows(sessions []model.SessionSummary) [][]string {
	rows := make([][]string, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		dpm, acc := SessionMetrics(s.Correct, s.Total, s.Duration)
		rows = append(rows, []string{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			string(s.Mode),
			fmt.Sprintf("%d-%d", s.StartDigit, s.EndDigit),
			fmt.Sprintf("%d", s.Correct),
			fmt.Sprintf("%.1f%%", acc*100),
			fmt.Sprintf("%.1f", dpm),
			s.Duration.Round(time.Second).String(),
		})
	}
	return rows
}

// SessionHeaders matches the columns of SessionRows.
var SessionHeaders = []string{"Ended", "Mode", "Digits", "Correct", "Accuracy", "Digits/min", "Time"}

// RenderSessions prints a session table, newest first.
func RenderSessions(w io.Writer, sessions []model.SessionSummary) error {
	if len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Sessions"); err != nil {
		return err
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true, 6: true}
	for _, line := range FormatTable(SessionHeaders, SessionRows(sessions), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderAchievements prints unlocked achievements.
func RenderAchievements(w io.Writer, achievements []model.Achievement) error {
	if _, err := fmt.Fprintln(w, "Achievements"); err != nil {
		return err
	}
	if len(achievements) == 0 {
		_, err := fmt.Fprintln(w, "None unlocked yet.")
		return err
	}
	rows := make([][]string, 0, len(achievements))
	for _, a := range achievements {
		rows = append(rows, []string{a.Title, a.Description, a.UnlockedAt.Local().Format("2006-01-02")})
	}
	for _, line := range FormatTable([]string{"Title", "Description", "Unlocked"}, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

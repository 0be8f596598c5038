// Package memorize implements the digit memorization drill.
package memorize

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/verte-zerg/pidigits/internal/model"
)

const (
	// DefaultTargetDigits is the length of a session's target window.
	DefaultTargetDigits = 100
	// DefaultTimeLimit bounds a timed challenge.
	DefaultTimeLimit = 60 * time.Second
)

// ErrNoDigits is returned when the start offset leaves nothing to memorize.
var ErrNoDigits = errors.New("no digits available at start offset")

// DigitReader is the digit window a session draws its target from.
type DigitReader interface {
	ReadDigits(ctx context.Context, offset, length int) (string, error)
}

// SessionHook observes every finished session along with the achievements it unlocked.
type SessionHook func(summary model.SessionSummary, unlocked []model.Achievement)

// Game is the memorization state machine: idle, active, then complete or
// back to idle on reset. It is safe for concurrent use.
type Game struct {
	reader       DigitReader
	targetDigits int
	timeLimit    time.Duration
	now          func() time.Time
	onSessionEnd SessionHook

	mu       sync.Mutex
	entropy  io.Reader
	state    model.GameState
	stats    model.MemorizationStats
	unlocked map[int]bool
}

// Option configures a Game.
type Option func(*Game)

// WithTargetDigits overrides the session target length.
func WithTargetDigits(n int) Option {
	return func(g *Game) {
		if n > 0 {
			g.targetDigits = n
		}
	}
}

// WithTimeLimit overrides the timed challenge limit.
func WithTimeLimit(d time.Duration) Option {
	return func(g *Game) {
		if d > 0 {
			g.timeLimit = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		g.now = now
	}
}

// WithSessionHook registers a callback run after each session ends.
func WithSessionHook(fn SessionHook) Option {
	return func(g *Game) {
		g.onSessionEnd = fn
	}
}

// WithStats seeds the aggregate statistics, typically from persisted sessions.
// Seeded achievements are never unlocked again.
func WithStats(stats model.MemorizationStats) Option {
	return func(g *Game) {
		g.stats = stats
		g.stats.Achievements = append([]model.Achievement(nil), stats.Achievements...)
	}
}

// New returns an idle Game over reader.
func New(reader DigitReader, opts ...Option) *Game {
	g := &Game{
		reader:       reader,
		targetDigits: DefaultTargetDigits,
		timeLimit:    DefaultTimeLimit,
		now:          time.Now,
		entropy:      ulid.Monotonic(rand.Reader, 0),
		state:        model.GameState{Mode: model.ModePractice},
		unlocked:     map[int]bool{},
	}
	for _, opt := range opts {
		opt(g)
	}
	for _, a := range g.stats.Achievements {
		g.unlocked[a.Threshold] = true
	}
	return g
}

// StartSession loads the target window at start and activates a new session.
func (g *Game) StartSession(ctx context.Context, mode model.Mode, start int) error {
	if start < 0 {
		return fmt.Errorf("start offset must be >= 0, got %d", start)
	}
	raw, err := g.reader.ReadDigits(ctx, start, g.targetDigits)
	if err != nil {
		return fmt.Errorf("failed to load target digits: %w", err)
	}
	target := onlyDigits(raw)
	if target == "" {
		return fmt.Errorf("%w: %d", ErrNoDigits, start)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = model.GameState{
		Mode:       mode,
		StartDigit: start,
		Target:     target,
		Active:     true,
		StartedAt:  g.now(),
	}
	return nil
}

func onlyDigits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// SubmitAnswer checks digit against the current position. A correct answer
// advances the position. A wrong answer ends a test session and is otherwise
// only counted. The session ends once the whole target has been answered or
// a timed challenge runs out of time.
func (g *Game) SubmitAnswer(digit rune) bool {
	g.mu.Lock()
	if !g.state.Active {
		g.mu.Unlock()
		return false
	}
	if g.expiredLocked() {
		summary, unlocked := g.endLocked()
		g.mu.Unlock()
		g.notify(summary, unlocked)
		return false
	}

	st := &g.state
	correct := st.Position < len(st.Target) && rune(st.Target[st.Position]) == digit
	st.Total++
	if correct {
		st.Correct++
		st.Position++
	}
	st.LastAnswer = digit
	st.LastAnswerCorrect = &correct

	if st.Position >= len(st.Target) || (!correct && st.Mode == model.ModeTest) {
		summary, unlocked := g.endLocked()
		g.mu.Unlock()
		g.notify(summary, unlocked)
		return correct
	}
	g.mu.Unlock()
	return correct
}

// EndSession finishes the active session and folds it into the aggregate
// statistics. It reports false when no session was active.
func (g *Game) EndSession() (model.SessionSummary, bool) {
	g.mu.Lock()
	if !g.state.Active {
		g.mu.Unlock()
		return model.SessionSummary{}, false
	}
	summary, unlocked := g.endLocked()
	g.mu.Unlock()
	g.notify(summary, unlocked)
	return summary, true
}

func (g *Game) notify(summary model.SessionSummary, unlocked []model.Achievement) {
	if g.onSessionEnd != nil {
		g.onSessionEnd(summary, unlocked)
	}
}

func (g *Game) endLocked() (model.SessionSummary, []model.Achievement) {
	ended := g.now()
	st := &g.state
	st.Active = false
	st.Complete = true
	st.EndedAt = ended

	summary := model.SessionSummary{
		ID:         ulid.MustNew(ulid.Timestamp(ended), g.entropy).String(),
		Mode:       st.Mode,
		StartDigit: st.StartDigit,
		EndDigit:   st.StartDigit + st.Position,
		Correct:    st.Correct,
		Total:      st.Total,
		Duration:   ended.Sub(st.StartedAt),
		EndedAt:    ended,
	}
	unlocked := g.updateStatsLocked(summary)
	return summary, unlocked
}

func (g *Game) updateStatsLocked(s model.SessionSummary) []model.Achievement {
	stats := &g.stats
	foldSession(stats, s)

	var unlocked []model.Achievement
	for _, m := range Milestones {
		if stats.PersonalBest < m.Threshold || g.unlocked[m.Threshold] {
			continue
		}
		a := m.achievement(s.EndedAt)
		g.unlocked[m.Threshold] = true
		stats.Achievements = append(stats.Achievements, a)
		unlocked = append(unlocked, a)
	}
	return unlocked
}

// ResetGame returns to idle, keeping aggregate statistics.
func (g *Game) ResetGame() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = model.GameState{Mode: model.ModePractice}
}

// State returns a snapshot of the current session.
func (g *Game) State() model.GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.state
	if st.LastAnswerCorrect != nil {
		v := *st.LastAnswerCorrect
		st.LastAnswerCorrect = &v
	}
	return st
}

// Stats returns a snapshot of the aggregate statistics.
func (g *Game) Stats() model.MemorizationStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	stats := g.stats
	stats.Achievements = append([]model.Achievement(nil), g.stats.Achievements...)
	return stats
}

// Hint returns the target digit at position, or "" past the end.
func (g *Game) Hint(position int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if position < 0 || position >= len(g.state.Target) {
		return ""
	}
	return g.state.Target[position : position+1]
}

// Remaining reports the time left in a timed challenge. Other modes report zero.
func (g *Game) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Mode != model.ModeTimedChallenge || !g.state.Active {
		return 0
	}
	return max(g.timeLimit-g.now().Sub(g.state.StartedAt), 0)
}

// Expire ends a timed challenge whose limit has passed. It reports whether
// the session ended.
func (g *Game) Expire() bool {
	g.mu.Lock()
	if !g.state.Active || !g.expiredLocked() {
		g.mu.Unlock()
		return false
	}
	summary, unlocked := g.endLocked()
	g.mu.Unlock()
	g.notify(summary, unlocked)
	return true
}

func (g *Game) expiredLocked() bool {
	return g.state.Mode == model.ModeTimedChallenge && g.now().Sub(g.state.StartedAt) >= g.timeLimit
}

// Package tui provides the Bubble Tea memorization drill.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/pidigits/internal/memorize"
	"github.com/verte-zerg/pidigits/internal/model"
	"github.com/verte-zerg/pidigits/internal/stats"
)

// Recorder persists finished sessions.
type Recorder interface {
	InsertSession(ctx context.Context, summary model.SessionSummary, unlocked []model.Achievement) error
}

// Config selects the drill rules.
type Config struct {
	Mode         model.Mode
	Start        int
	TargetDigits int
	TimeLimit    time.Duration
	Colorize     bool
}

type tickMsg time.Time

// Model implements the Bubble Tea memorization UI.
type Model struct {
	ctx      context.Context
	cfg      Config
	game     *memorize.Game
	recorder Recorder

	width  int
	height int

	start    int
	showHint bool
	last     *model.SessionSummary
	notice   string
	errMsg   string
}

var (
	correctStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	currentGroupStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	hintStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle       = currentGroupStyle.Underline(true)
	noticeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a memorization TUI model. Aggregate stats are seeded
// from seed so milestones already reached are not unlocked again.
func NewModel(ctx context.Context, reader memorize.DigitReader, recorder Recorder, cfg Config, seed model.MemorizationStats) *Model {
	m := &Model{
		ctx:      ctx,
		cfg:      cfg,
		recorder: recorder,
		start:    cfg.Start,
	}
	m.game = memorize.New(reader,
		memorize.WithTargetDigits(cfg.TargetDigits),
		memorize.WithTimeLimit(cfg.TimeLimit),
		memorize.WithStats(seed),
		memorize.WithSessionHook(m.onSessionEnd),
	)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.startSession()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.game.Expire() || !m.game.State().Active {
			return m, nil
		}
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	active := m.game.State().Active
	switch msg.Type {
	case tea.KeyCtrlC:
		m.game.EndSession()
		return m, tea.Quit
	case tea.KeyEsc:
		if active {
			m.game.EndSession()
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyEnter:
		if !active {
			return m, m.startSession()
		}
		return m, nil
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if cmd := m.handleRune(r); cmd != nil {
				return m, cmd
			}
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleRune(r rune) tea.Cmd {
	st := m.game.State()
	switch {
	case r >= '0' && r <= '9':
		if st.Active {
			m.game.SubmitAnswer(r)
			m.showHint = false
		}
	case r == '?':
		if st.Active {
			m.showHint = true
		}
	case r == 'n':
		if !st.Active && m.last != nil {
			m.start = m.last.EndDigit
			return m.startSession()
		}
	case r == 'q':
		m.game.EndSession()
		return tea.Quit
	}
	return nil
}

func (m *Model) startSession() tea.Cmd {
	m.notice = ""
	m.showHint = false
	if err := m.game.StartSession(m.ctx, m.cfg.Mode, m.start); err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.errMsg = ""
	if m.cfg.Mode == model.ModeTimedChallenge {
		return tick()
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) onSessionEnd(summary model.SessionSummary, unlocked []model.Achievement) {
	m.last = &summary
	if len(unlocked) > 0 {
		titles := make([]string, len(unlocked))
		for i, a := range unlocked {
			titles[i] = a.Title
		}
		m.notice = "Achievement unlocked: " + strings.Join(titles, ", ")
	}
	if m.recorder == nil {
		return
	}
	if err := m.recorder.InsertSession(m.ctx, summary, unlocked); err != nil {
		m.errMsg = fmt.Sprintf("failed to save session: %v", err)
		logErrf("failed to save session: %v\n", err)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	st := m.game.State()
	if st.Target == "" {
		if m.errMsg != "" {
			return incorrectStyle.Render(m.errMsg)
		}
		return ""
	}
	runes := buildStyledDigits(st.Target, st.Position, m.showHint, m.cfg.Colorize)
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(runes)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	lines := []string{footerStyle.Render(fmt.Sprintf("3. digits %d-%d", st.StartDigit+1, st.StartDigit+len(st.Target))), ""}
	lines = append(lines, wrapStyledRunes(runes, contentWidth), "")
	if status := m.renderStatus(st); status != "" {
		lines = append(lines, status)
	}
	if m.notice != "" {
		lines = append(lines, noticeStyle.Render(m.notice))
	}
	if m.errMsg != "" {
		lines = append(lines, incorrectStyle.Render(m.errMsg))
	}
	content := lipgloss.NewStyle().Width(contentWidth).Render(strings.Join(lines, "\n"))
	footer := m.renderFooter(st)
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderStatus(st model.GameState) string {
	if st.Active {
		if st.LastAnswerCorrect != nil && !*st.LastAnswerCorrect {
			return incorrectStyle.Render(fmt.Sprintf("%c is not digit %d", st.LastAnswer, st.StartDigit+st.Position+1))
		}
		return ""
	}
	if !st.Complete || m.last == nil {
		return ""
	}
	_, acc := stats.SessionMetrics(m.last.Correct, m.last.Total, m.last.Duration)
	summary := fmt.Sprintf("Session complete: %d/%d correct (%.1f%%) in %s",
		m.last.Correct, m.last.Total, acc*100, m.last.Duration.Round(time.Second))
	return correctStyle.Render(summary) + "\n" + footerStyle.Render("enter: retry  n: continue from here  q: quit")
}

func (m *Model) renderFooter(st model.GameState) string {
	if st.Target == "" {
		return ""
	}
	progress := int(float64(st.Position) / float64(len(st.Target)) * 100)
	segments := []string{
		fmt.Sprintf("Mode %s", st.Mode),
		fmt.Sprintf("Progress %d%%", progress),
	}
	if st.Total > 0 {
		segments = append(segments, fmt.Sprintf("Accuracy %.1f%%", float64(st.Correct)/float64(st.Total)*100))
	}
	agg := m.game.Stats()
	segments = append(segments, fmt.Sprintf("Best %d", agg.PersonalBest))
	if st.Active && st.Mode == model.ModeTimedChallenge {
		segments = append(segments, fmt.Sprintf("Time %s", m.game.Remaining().Round(time.Second)))
	}
	if st.Active {
		segments = append(segments, "?: hint  esc: end")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

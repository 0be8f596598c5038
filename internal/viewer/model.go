// Package viewer provides the Bubble Tea scrolling digit viewer.
package viewer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/pidigits/internal/model"
)

const (
	// DigitsPerLine is the width of one viewer row.
	DigitsPerLine = 50
	groupSize     = 10
	// defaultWindowLines matches the reader's default preload window.
	defaultWindowLines = 200
)

// DigitWindow is the windowed reader the viewer pages through.
type DigitWindow interface {
	Initialize(ctx context.Context) error
	ReadDigits(ctx context.Context, offset, length int) (string, error)
	TotalDigits() int
	PreloadWindowAsync(ctx context.Context, center, size int)
	CacheStats() model.CacheStats
}

var (
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	digitsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

type windowLoadedMsg struct {
	seq       int
	startLine int
	focusLine int
	digits    string
	err       error
}

// Model implements the Bubble Tea digit viewer.
type Model struct {
	ctx         context.Context
	reader      DigitWindow
	windowLines int
	showStats   bool

	vp        viewport.Model
	gotoInput textinput.Model
	gotoMode  bool

	width  int
	height int

	seq         int
	loading     bool
	loaded      bool
	windowStart int
	windowLen   int
	initialLine int
	errMsg      string
}

// Option configures a Model.
type Option func(*Model)

// WithWindowLines overrides how many rows one load covers.
func WithWindowLines(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.windowLines = n
		}
	}
}

// WithStats shows cache statistics in the footer from the start.
func WithStats(show bool) Option {
	return func(m *Model) {
		m.showStats = show
	}
}

// NewModel constructs a viewer positioned at the given digit offset.
func NewModel(ctx context.Context, reader DigitWindow, offset int, opts ...Option) *Model {
	input := textinput.New()
	input.Prompt = "Go to digit: "
	input.CharLimit = 12
	input.Cursor.SetMode(cursor.CursorBlink)
	m := &Model{
		ctx:         ctx,
		reader:      reader,
		windowLines: defaultWindowLines,
		vp:          viewport.New(0, 0),
		gotoInput:   input,
		initialLine: max(offset, 0) / DigitsPerLine,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.load(m.initialLine)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-2, 1)
		m.windowLines = max(m.windowLines, 4*m.vp.Height)
		m.gotoInput.Width = max(msg.Width-lipgloss.Width(m.gotoInput.Prompt)-2, 10)
		return m, nil
	case windowLoadedMsg:
		return m, m.applyWindow(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.gotoMode {
			return m.updateGoto(msg)
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case ":", "/":
			m.gotoMode = true
			m.gotoInput.SetValue("")
			return m, m.gotoInput.Focus()
		case "s":
			m.showStats = !m.showStats
			return m, nil
		case "g", "home":
			return m, m.load(0)
		case "G", "end":
			return m, m.load(m.totalLines() - 1)
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, tea.Batch(cmd, m.shiftIfAtEdge())
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, tea.Batch(cmd, m.shiftIfAtEdge())
	}
	return m, nil
}

func (m *Model) updateGoto(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.gotoMode = false
		m.gotoInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.gotoMode = false
		m.gotoInput.Blur()
		raw := strings.ReplaceAll(strings.TrimSpace(m.gotoInput.Value()), ",", "")
		pos, err := strconv.Atoi(raw)
		if err != nil || pos < 1 {
			m.errMsg = fmt.Sprintf("invalid digit position %q", m.gotoInput.Value())
			return m, nil
		}
		m.errMsg = ""
		return m, m.load((pos - 1) / DigitsPerLine)
	}
	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	return m, cmd
}

func (m *Model) totalLines() int {
	total := m.reader.TotalDigits()
	return (total + DigitsPerLine - 1) / DigitsPerLine
}

// load reads the window of rows centered on focusLine.
func (m *Model) load(focusLine int) tea.Cmd {
	m.seq++
	m.loading = true
	seq := m.seq
	ctx := m.ctx
	reader := m.reader
	windowLines := m.windowLines
	return func() tea.Msg {
		if err := reader.Initialize(ctx); err != nil {
			return windowLoadedMsg{seq: seq, err: err}
		}
		total := (reader.TotalDigits() + DigitsPerLine - 1) / DigitsPerLine
		focus := min(max(focusLine, 0), max(total-1, 0))
		startLine := max(focus-windowLines/2, 0)
		text, err := reader.ReadDigits(ctx, startLine*DigitsPerLine, windowLines*DigitsPerLine)
		return windowLoadedMsg{seq: seq, startLine: startLine, focusLine: focus, digits: text, err: err}
	}
}

func (m *Model) applyWindow(msg windowLoadedMsg) tea.Cmd {
	if msg.seq != m.seq {
		return nil
	}
	m.loading = false
	if msg.err != nil {
		m.errMsg = fmt.Sprintf("failed to load digits: %v", msg.err)
		return nil
	}
	lines := formatLines(msg.digits, msg.startLine)
	m.windowStart = msg.startLine
	m.windowLen = len(lines)
	m.loaded = true
	m.vp.SetContent(strings.Join(lines, "\n"))
	m.vp.SetYOffset(msg.focusLine - msg.startLine)

	center := (msg.startLine + m.windowLen/2) * DigitsPerLine
	m.reader.PreloadWindowAsync(m.ctx, center, 2*m.windowLines*DigitsPerLine)
	return nil
}

// shiftIfAtEdge recenters the loaded window once scrolling reaches a border
// that is not the corpus border.
func (m *Model) shiftIfAtEdge() tea.Cmd {
	if !m.loaded || m.loading {
		return nil
	}
	top := m.windowStart + m.vp.YOffset
	if m.vp.YOffset == 0 && m.windowStart > 0 {
		return m.load(top)
	}
	if m.vp.AtBottom() && m.windowStart+m.windowLen < m.totalLines() {
		return m.load(top)
	}
	return nil
}

func formatLines(text string, startLine int) []string {
	labelWidth := len(humanize.Comma(int64(startLine*DigitsPerLine + len(text))))
	lines := make([]string, 0, (len(text)+DigitsPerLine-1)/DigitsPerLine)
	for i := 0; i < len(text); i += DigitsPerLine {
		row := text[i:min(i+DigitsPerLine, len(text))]
		label := humanize.Comma(int64(startLine*DigitsPerLine + i + 1))
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%*s", labelWidth, label))+"  "+digitsStyle.Render(groupDigits(row)))
	}
	return lines
}

func groupDigits(row string) string {
	var b strings.Builder
	b.Grow(len(row) + len(row)/groupSize)
	for i := 0; i < len(row); i += groupSize {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(row[i:min(i+groupSize, len(row))])
	}
	return b.String()
}

// View implements tea.Model.
func (m *Model) View() string {
	header := titleStyle.Render("π = 3.")
	var body string
	if !m.loaded {
		body = labelStyle.Render("Loading digits...")
	} else {
		body = m.vp.View()
	}
	return strings.Join([]string{header, body, m.renderFooter()}, "\n")
}

func (m *Model) renderFooter() string {
	if m.gotoMode {
		return m.gotoInput.View()
	}
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg)
	}
	segments := []string{}
	if m.loaded && m.windowLen > 0 {
		first := (m.windowStart+m.vp.YOffset)*DigitsPerLine + 1
		segments = append(segments, fmt.Sprintf("Digit %s of %s", humanize.Comma(int64(first)), humanize.Comma(int64(m.reader.TotalDigits()))))
	}
	if m.loading {
		segments = append(segments, "loading")
	}
	if m.showStats {
		st := m.reader.CacheStats()
		segments = append(segments, fmt.Sprintf("Cache %d/%d hits %s misses %s evictions %s (%.1f%%)",
			st.Len, st.Capacity, humanize.Comma(int64(st.Hits)), humanize.Comma(int64(st.Misses)), humanize.Comma(int64(st.Evictions)), st.HitRatio*100))
	}
	segments = append(segments, "go to: /  stats: s  quit: q")
	return footerStyle.Render(strings.Join(segments, "  "))
}

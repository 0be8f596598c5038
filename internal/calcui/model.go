// Package calcui provides the Bubble Tea live calculation display.
package calcui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/pidigits/internal/calculator"
	"github.com/verte-zerg/pidigits/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	barFullStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	barEmpty     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	digitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

type progressMsg model.CalculationProgress

type doneMsg struct {
	result model.CalculationResult
	err    error
}

// Model implements the Bubble Tea calculation UI.
type Model struct {
	ctx       context.Context
	cancel    context.CancelFunc
	calc      *calculator.Calculator
	digits    int
	algorithm model.Algorithm

	events chan progressMsg
	done   chan doneMsg

	spinner spinner.Model
	vp      viewport.Model
	width   int
	height  int

	progress   model.CalculationProgress
	result     *model.CalculationResult
	err        error
	cancelling bool
}

// NewModel constructs a calculation UI for digits digits using algorithm.
func NewModel(ctx context.Context, calc *calculator.Calculator, digits int, algorithm model.Algorithm) *Model {
	ctx, cancel := context.WithCancel(ctx)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle
	return &Model{
		ctx:       ctx,
		cancel:    cancel,
		calc:      calc,
		digits:    digits,
		algorithm: algorithm,
		events:    make(chan progressMsg),
		done:      make(chan doneMsg, 1),
		spinner:   sp,
		vp:        viewport.New(0, 0),
		progress:  model.CalculationProgress{TargetDigits: digits},
	}
}

// Result returns the terminal result once the calculation has finished.
func (m *Model) Result() (model.CalculationResult, bool) {
	if m.result == nil {
		return model.CalculationResult{}, false
	}
	return *m.result, true
}

// Err returns the calculation error, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run())
}

// run starts the calculation and delivers its first event.
func (m *Model) run() tea.Cmd {
	return func() tea.Msg {
		go m.calculate()
		return m.next()
	}
}

func (m *Model) calculate() {
	result, err := m.calc.Calculate(m.ctx, m.digits, m.algorithm, func(p model.CalculationProgress) {
		select {
		case m.events <- progressMsg(p):
		case <-m.ctx.Done():
		}
	})
	m.done <- doneMsg{result: result, err: err}
}

// next blocks for the following event. Progress is handed over
// synchronously, so the final result never overtakes a snapshot.
func (m *Model) next() tea.Msg {
	select {
	case p := <-m.events:
		return p
	case d := <-m.done:
		return d
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return m.next
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-5, 1)
		m.refreshDigits()
		return m, nil
	case progressMsg:
		m.progress = model.CalculationProgress(msg)
		m.refreshDigits()
		return m, m.waitForEvent()
	case doneMsg:
		m.result = &msg.result
		m.err = msg.err
		m.cancel()
		m.refreshDigits()
		return m, nil
	case spinner.TickMsg:
		if m.result != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.result == nil && !m.cancelling {
				m.cancelling = true
				m.cancel()
				return m, nil
			}
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) current() string {
	if m.result != nil {
		return m.result.Digits
	}
	return m.progress.CurrentResult
}

func (m *Model) refreshDigits() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.vp.SetContent(digitStyle.Render(wrapDigits(m.current(), width)))
	if m.result == nil {
		m.vp.GotoBottom()
	}
}

func wrapDigits(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i += width {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s[i:min(i+width, len(s))])
	}
	return b.String()
}

// View implements tea.Model.
func (m *Model) View() string {
	title := titleStyle.Render(fmt.Sprintf("Computing π with %s", m.algorithm.DisplayName()))
	lines := []string{title, m.renderStatus(), renderBar(m.progress.CurrentDigits, m.progress.TargetDigits, m.barWidth()), m.vp.View(), m.renderFooter()}
	return strings.Join(lines, "\n")
}

func (m *Model) barWidth() int {
	if m.width <= 0 {
		return 40
	}
	return max(m.width-2, 10)
}

func (m *Model) renderStatus() string {
	switch {
	case m.err != nil:
		return errorStyle.Render(fmt.Sprintf("Calculation failed: %v", m.err))
	case m.result != nil && m.result.Complete:
		return fmt.Sprintf("Done: %s digits in %s", humanize.Comma(int64(m.progress.CurrentDigits)), m.result.Elapsed.Round(time.Millisecond))
	case m.result != nil:
		return fmt.Sprintf("Cancelled at %s of %s digits", humanize.Comma(int64(m.progress.CurrentDigits)), humanize.Comma(int64(m.progress.TargetDigits)))
	case m.cancelling:
		return "Cancelling..."
	default:
		return fmt.Sprintf("%s %s / %s digits  ETA %s", m.spinner.View(),
			humanize.Comma(int64(m.progress.CurrentDigits)), humanize.Comma(int64(m.progress.TargetDigits)),
			m.progress.EstimatedRemain.Round(time.Second))
	}
}

func renderBar(current, target, width int) string {
	filled := 0
	if target > 0 {
		filled = min(current*width/target, width)
	}
	return barFullStyle.Render(strings.Repeat("█", filled)) + barEmpty.Render(strings.Repeat("░", width-filled))
}

func (m *Model) renderFooter() string {
	if m.result != nil {
		return footerStyle.Render("scroll: up/down  quit: q")
	}
	return footerStyle.Render("cancel: ctrl+c")
}

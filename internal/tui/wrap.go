package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/pidigits/internal/memorize"
)

// groupSize is the number of digits shown between spaces.
const groupSize = 10

const hiddenDigit = '·'

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledDigits renders recalled digits, the cursor slot and hidden
// pending digits, split into groups that wrap at group boundaries.
func buildStyledDigits(target string, position int, showHint, colorize bool) []styledRune {
	out := make([]styledRune, 0, len(target)+len(target)/groupSize)
	currentGroup := position / groupSize
	for i := 0; i < len(target); i++ {
		if i > 0 && i%groupSize == 0 {
			out = append(out, styledRune{s: " ", width: 1, isSpace: true})
		}
		displayed := hiddenDigit
		var style lipgloss.Style
		switch {
		case i < position:
			displayed = rune(target[i])
			style = correctStyle
			if colorize {
				style = digitStyle(target[i])
			}
		case i == position && showHint:
			displayed = rune(target[i])
			style = hintStyle.Underline(true)
		case i == position:
			style = cursorStyle
		case i/groupSize == currentGroup:
			style = currentGroupStyle
		default:
			style = pendingStyle
		}
		out = append(out, styledRune{
			s:     style.Render(string(displayed)),
			width: runewidth.RuneWidth(displayed),
		})
	}
	return out
}

func digitStyle(d byte) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(memorize.ColorForDigit(int(d - '0'))))
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}

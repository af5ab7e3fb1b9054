// Package tui provides the Bubble Tea workout interface.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes renders text rune by rune, collapsing whitespace runs to a
// single space.
func buildStyledRunes(text string, style lipgloss.Style) []styledRune {
	out := make([]styledRune, 0, len(text))
	prevSpace := true
	for _, r := range text {
		if r == '\n' || r == '\t' || r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
			out = append(out, styledRune{s: " ", width: 1, isSpace: true})
			continue
		}
		prevSpace = false
		out = append(out, styledRune{
			s:     style.Render(string(r)),
			width: runewidth.RuneWidth(r),
		})
	}
	if n := len(out); n > 0 && out[n-1].isSpace {
		out = out[:n-1]
	}
	return out
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

func wrapText(text string, style lipgloss.Style, width int) string {
	return wrapStyledRunes(buildStyledRunes(text, style), width)
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

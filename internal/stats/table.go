package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Column describes one column of a plain-text table such as the workout
// list or the step plan. Max caps the column width when positive; longer
// cells are truncated with an ellipsis.
type Column struct {
	Title string
	Right bool
	Max   int
}

// FormatTable aligns rows under cols. Missing cells are blank and trailing
// spaces are trimmed from every line.
func FormatTable(cols []Column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = displayWidth(col.Title)
	}
	for _, row := range rows {
		for i, col := range cols {
			if w := displayWidth(cellAt(row, i, col.Max)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Title
	}
	lines = append(lines, joinCells(cols, widths, header))
	for _, row := range rows {
		lines = append(lines, joinCells(cols, widths, row))
	}
	return lines
}

func cellAt(row []string, i, max int) string {
	if i >= len(row) {
		return ""
	}
	if max > 0 {
		return truncate(row[i], max)
	}
	return row[i]
}

func joinCells(cols []Column, widths []int, row []string) string {
	var b strings.Builder
	for i, col := range cols {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cellAt(row, i, col.Max), widths[i], col.Right))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	padding := width - displayWidth(value)
	if padding <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}

func truncate(line string, width int) string {
	if displayWidth(line) <= width {
		return line
	}
	return runewidth.Truncate(line, width, "…")
}

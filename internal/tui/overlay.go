package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// overlayCenter draws card centred over base on a width x height canvas.
func overlayCenter(base, card string, width, height int) string {
	if width <= 0 || height <= 0 {
		return base + "\n\n" + card
	}
	canvas := toLines(base, height)
	cardLines := strings.Split(card, "\n")
	cardWidth := lipgloss.Width(card)
	x := max((width-cardWidth)/2, 0)
	y := max((height-len(cardLines))/2, 0)

	for i, line := range cardLines {
		row := y + i
		if row >= height {
			break
		}
		target := padANSI(canvas[row], width)
		left := padANSI(ansi.Truncate(target, x, ""), x)
		mid := padANSI(line, cardWidth)
		right := skipColumns(target, x+cardWidth)
		canvas[row] = ansi.Truncate(left+mid+right, width, "")
	}
	return strings.Join(canvas, "\n")
}

func toLines(s string, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

func skipColumns(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	return ansi.TruncateLeft(s, cols, "")
}

func padANSI(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and
// height lines tall.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		if w > width {
			switch {
			case width <= 0:
				ln = ""
			case width == 1:
				ln = xansi.Cut(ln, 0, 1)
			default:
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

// scrollWindow returns the slice of lines [off, off+height) where off keeps
// the range [focusStart, focusEnd) visible, preferring to show it from the top
// third of the window.
func scrollWindow(lines []string, height, focusStart, focusEnd int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	off := 0
	if focusEnd > height {
		off = focusStart - height/3
		if focusEnd-off > height {
			off = focusEnd - height
		}
		if off > focusStart {
			off = focusStart
		}
	}
	if off > len(lines)-height {
		off = len(lines) - height
	}
	if off < 0 {
		off = 0
	}
	return lines[off : off+height]
}

func modalBodyWidth(width int) int {
	w := width - 10
	if w > 64 {
		w = 64
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderModalBox draws a titled, padded box. Borders are avoided because some
// terminals show artifacts when nesting them inside a colored background.
func renderModalBox(width int, title string, content string) string {
	bodyW := modalBodyWidth(width)
	header := lipgloss.NewStyle().
		Bold(true).
		Width(bodyW).
		Foreground(colorAccentFg).
		Background(colorAccent).
		Padding(0, 1).
		Render(title)
	body := lipgloss.NewStyle().
		Width(bodyW).
		Padding(1, 1).
		Background(colorModalSurfaceBg).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/hostlog/internal/hostio"
)

// ansiColors maps console colors to ANSI palette indexes.
var ansiColors = map[hostio.Color]string{
	hostio.Black:       "0",
	hostio.DarkRed:     "1",
	hostio.DarkGreen:   "2",
	hostio.DarkYellow:  "3",
	hostio.DarkBlue:    "4",
	hostio.DarkMagenta: "5",
	hostio.DarkCyan:    "6",
	hostio.Gray:        "7",
	hostio.DarkGray:    "8",
	hostio.Red:         "9",
	hostio.Green:       "10",
	hostio.Yellow:      "11",
	hostio.Blue:        "12",
	hostio.Magenta:     "13",
	hostio.Cyan:        "14",
	hostio.White:       "15",
}

// TerminalColor returns the lipgloss color for c. ColorDefault and unknown
// values map to lipgloss.NoColor.
func TerminalColor(c hostio.Color) lipgloss.TerminalColor {
	if code, ok := ansiColors[c]; ok {
		return lipgloss.Color(code)
	}
	return lipgloss.NoColor{}
}

// style returns the style for a foreground and background pair.
func (t *Terminal) style(fg, bg hostio.Color) lipgloss.Style {
	return t.renderer.NewStyle().
		Foreground(TerminalColor(fg)).
		Background(TerminalColor(bg)).
		TabWidth(lipgloss.NoTabConversion)
}

// colorize renders text line by line so fragments are not padded to a common
// width and terminators stay untouched.
func (t *Terminal) colorize(fg, bg hostio.Color, text string) string {
	if !t.color || (fg == hostio.ColorDefault && bg == hostio.ColorDefault) {
		return text
	}
	st := t.style(fg, bg)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		body, cr := strings.CutSuffix(line, "\r")
		if body == "" {
			continue
		}
		lines[i] = st.Render(body)
		if cr {
			lines[i] += "\r"
		}
	}
	return strings.Join(lines, "\n")
}

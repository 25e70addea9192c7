package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Output colours.
var (
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourError   = lipgloss.Color("#F38BA8")
	colourMuted   = lipgloss.Color("#6C7086")
	colourTitle   = lipgloss.Color("#7C3AED")
)

// styles renders command output. Plain styles are used when the
// output is not a terminal.
type styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return styles{Title: plain, Success: plain, Error: plain, Muted: plain}
	}
	return styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colourTitle),
		Success: lipgloss.NewStyle().Foreground(colourSuccess),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(colourError),
		Muted:   lipgloss.NewStyle().Foreground(colourMuted),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

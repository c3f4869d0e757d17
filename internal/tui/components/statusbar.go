package components

import (
	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// StatusKind selects the color of a status line.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusError
	StatusSuccess
)

// StatusBar renders a status message line between the content and footer.
func StatusBar(width int, message string, kind StatusKind) string {
	if message == "" {
		return ""
	}

	style := styles.MutedText
	switch kind {
	case StatusError:
		style = styles.ErrorText
	case StatusSuccess:
		style = styles.SuccessText
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Render(style.Render(message))
}

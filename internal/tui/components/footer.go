package components

import (
	"strings"

	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// KeyBinding is one key hint of the footer.
type KeyBinding struct {
	Key  string
	Desc string
}

// Footer renders the key hints of the current view. Hints past the
// window width are cut with an ellipsis.
func Footer(width int, bindings []KeyBinding) string {
	if width < 10 || len(bindings) == 0 {
		return ""
	}
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		hints = append(hints, styles.FormatKeyBinding(b.Key, b.Desc))
	}
	line := strings.Join(hints, styles.KeySepStyle.Render("  "))
	return bar(width, lipgloss.Border{Top: "─"}).
		BorderTop(true).
		Render(ansi.Truncate(line, width-4, "…"))
}

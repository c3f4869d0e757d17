// Package components provides render-only building blocks (not tea.Model)
// shared by the twcatele views.
package components

import (
	"strings"

	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Header renders the top bar: the breadcrumb on the left and the session
// environment host on the right.
//
//	twcatele > Tower > Sensors            sandbox-api.invicara.com
//	──────────────────────────────────────────────────────────────
func Header(width int, breadcrumb string, env string) string {
	if width < 10 {
		return ""
	}
	inner := width - 4

	right := ""
	if host := envHost(env); host != "" {
		right = styles.Subtitle.Render(host)
	}

	left := styles.Title.Foreground(styles.Blue).Render("twcatele")
	if breadcrumb != "" {
		left += styles.MutedText.Render(" > ") + styles.Title.Render(breadcrumb)
	}
	// The breadcrumb gives way to the host when both do not fit.
	left = ansi.Truncate(left, max(inner-lipgloss.Width(right)-1, 8), "…")

	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return bar(width, lipgloss.Border{Bottom: "─"}).
		BorderBottom(true).
		Render(left + strings.Repeat(" ", gap) + right)
}

// envHost strips the scheme and trailing slash of a session origin.
func envHost(env string) string {
	env = strings.TrimPrefix(strings.TrimPrefix(env, "https://"), "http://")
	return strings.TrimRight(env, "/")
}

func bar(width int, border lipgloss.Border) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderStyle(border).
		BorderForeground(styles.DimGray)
}

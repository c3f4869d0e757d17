package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(White)
	Subtitle = lipgloss.NewStyle().Foreground(Gray)

	// Label and Value pair up in property and config listings.
	Label = lipgloss.NewStyle().Foreground(Gray).Bold(true)
	Value = lipgloss.NewStyle().Foreground(White)

	MutedText   = lipgloss.NewStyle().Foreground(Muted)
	AccentText  = lipgloss.NewStyle().Foreground(Blue)
	ErrorText   = lipgloss.NewStyle().Foreground(Red).Bold(true)
	SuccessText = lipgloss.NewStyle().Foreground(Green).Bold(true)
	WarningText = lipgloss.NewStyle().Foreground(Yellow).Bold(true)
)

// statusColors maps invite statuses and audit outcomes to colors.
var statusColors = map[string]lipgloss.Color{
	"ACCEPTED": Green,
	"SUCCESS":  Green,
	"PENDING":  Yellow,
	"EXPIRED":  Red,
	"ERROR":    Red,
}

// StatusIndicator renders a colored dot and the lower-cased status, e.g.
// an invitation's PENDING or an audit entry's error outcome.
func StatusIndicator(status string) string {
	color, ok := statusColors[strings.ToUpper(status)]
	if !ok {
		color = Gray
	}
	style := lipgloss.NewStyle().Foreground(color)
	return style.Render("●") + " " + style.Render(strings.ToLower(status))
}

// Card frames the status and login panels.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(DimGray).
	Padding(1, 2)

// Footer key hints.
var (
	keyStyle     = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	keyDescStyle = lipgloss.NewStyle().Foreground(Muted)
	KeySepStyle  = lipgloss.NewStyle().Foreground(DimGray)
)

// FormatKeyBinding renders "key desc" for the footer.
func FormatKeyBinding(key, desc string) string {
	return keyStyle.Render(key) + " " + keyDescStyle.Render(desc)
}

// Table rows of the project, collection, item and group lists.
var (
	TableHeader      = lipgloss.NewStyle().Bold(true).Foreground(Gray).Padding(0, 1)
	TableCell        = lipgloss.NewStyle().Foreground(White).Padding(0, 1)
	TableSelectedRow = lipgloss.NewStyle().Foreground(White).Background(DarkBlue).Bold(true).Padding(0, 1)
)

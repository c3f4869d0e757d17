package tui

import (
	"strings"

	"github.com/xbocquet/twcatele/internal/platform/backends"
	"github.com/xbocquet/twcatele/internal/services/auth"
	"github.com/xbocquet/twcatele/internal/tui/components"
	"github.com/xbocquet/twcatele/internal/tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Auth status model ---

type authStatusModel struct {
	signedIn bool
	env      string
	states   []backends.CredentialState

	width  int
	height int
}

func newAuthStatusModel(store auth.Store) authStatusModel {
	m := authStatusModel{states: backends.CredentialStates(store)}
	if sess, err := auth.LoadSession(store); err == nil {
		m.signedIn = true
		m.env = sess.Env
	}
	return m
}

// RunAuthStatus shows the stored session and backend credentials.
func RunAuthStatus(store auth.Store) error {
	p := tea.NewProgram(newAuthStatusModel(store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m authStatusModel) Init() tea.Cmd {
	return nil
}

func (m authStatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m authStatusModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "auth status", m.env)
	footer := components.Footer(m.width, []components.KeyBinding{{Key: "q", Desc: "quit"}})

	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderContent(contentH), footer)
}

func (m authStatusModel) renderContent(height int) string {
	session := styles.MutedText.Render("not logged in")
	if m.signedIn {
		session = styles.SuccessText.Render("logged in")
	}
	title := styles.Title.Render("Twinit session: ") + session

	labelWidth := 18
	var rows []string
	backend := ""
	for _, st := range m.states {
		if st.Backend != backend {
			if backend != "" {
				rows = append(rows, "")
			}
			backend = st.Backend
			rows = append(rows, styles.Subtitle.Render(backend))
		}
		value := styles.Value.Render(st.Display())
		switch {
		case st.Err != nil:
			value = styles.ErrorText.Render(st.Display())
		case !st.Set:
			value = styles.MutedText.Render(st.Display())
		}
		rows = append(rows, "  "+styles.Label.Width(labelWidth).Render(st.Key.Label)+value)
	}

	card := styles.Card.Width(56).Render(strings.Join(rows, "\n"))
	combined := lipgloss.JoinVertical(lipgloss.Center, title, "", card)

	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, combined)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/xbocquet/twcatele/internal/tui/components"
	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Token prompt model ---

// tokenPromptModel asks for an access token without echoing it. Saving is
// left to the caller so the session is written in one place.
type tokenPromptModel struct {
	env        string
	tokenInput textinput.Model

	width  int
	height int

	err      error
	token    string
	quitting bool
}

func newTokenPromptModel(env string) tokenPromptModel {
	ti := textinput.New()
	ti.Placeholder = "paste your access token here"
	ti.Focus()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.Width = 50

	return tokenPromptModel{env: env, tokenInput: ti}
}

// RunTokenPrompt reads an access token for env. It returns "" when the
// user cancels.
func RunTokenPrompt(env string) (string, error) {
	p := tea.NewProgram(newTokenPromptModel(env), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("failed to run token prompt: %w", err)
	}
	final := result.(tokenPromptModel)
	if final.quitting {
		return "", nil
	}
	return final.token, nil
}

func (m tokenPromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m tokenPromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			token := strings.TrimSpace(m.tokenInput.Value())
			if token == "" {
				m.err = fmt.Errorf("token cannot be empty")
				return m, nil
			}
			m.token = token
			return m, tea.Quit
		}
		m.err = nil
	}

	var cmd tea.Cmd
	m.tokenInput, cmd = m.tokenInput.Update(msg)
	return m, cmd
}

func (m tokenPromptModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "auth login", m.env)
	footer := components.Footer(m.width, []components.KeyBinding{
		{Key: "enter", Desc: "save"},
		{Key: "esc", Desc: "cancel"},
	})
	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	var errLine string
	if m.err != nil {
		errLine = "\n" + styles.ErrorText.Render(m.err.Error())
	}
	card := lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("Access Token"),
		styles.MutedText.Render("Paste the access token issued by "+m.env),
		"",
		m.tokenInput.View(),
		errLine,
	)

	content := lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, card)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

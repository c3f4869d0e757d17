package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/xbocquet/twcatele/internal/config"
	"github.com/xbocquet/twcatele/internal/tui/components"
	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Config messages ---

type configSavedMsg struct {
	key string
}

type configSaveErrorMsg struct {
	err error
}

// --- Config model ---

// configViewModel edits the config file. Values overridden from the
// environment are shown with their override but the file value is what
// gets edited and saved.
type configViewModel struct {
	file   *config.Config
	lookup func(string) (string, bool)
	keys   []config.KeySpec

	cursor  int
	editing bool
	editor  textinput.Model

	width  int
	height int

	status string
	kind   components.StatusKind
}

func newConfigViewModel(file *config.Config, lookup func(string) (string, bool)) configViewModel {
	return configViewModel{file: file, lookup: lookup, keys: config.Keys}
}

// RunConfigView starts the interactive config viewer/editor TUI.
func RunConfigView() error {
	cfg, err := config.LoadFile()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p := tea.NewProgram(newConfigViewModel(cfg, os.LookupEnv), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func (m configViewModel) Init() tea.Cmd {
	return nil
}

func (m configViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case configSavedMsg:
		m.editing = false
		m.status = "Saved " + msg.key
		m.kind = components.StatusSuccess
		return m, nil

	case configSaveErrorMsg:
		m.status = "Error: " + msg.err.Error()
		m.kind = components.StatusError
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m configViewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.keys)-1 {
			m.cursor++
		}
	case "enter", "e":
		spec := m.keys[m.cursor]
		ti := textinput.New()
		ti.SetValue(spec.Get(m.file))
		ti.Focus()
		ti.Width = 40
		ti.Placeholder = spec.Default
		m.editor = ti
		m.editing = true
		m.status = ""
		return m, textinput.Blink
	case "x":
		// Unset: the default applies again.
		spec := m.keys[m.cursor]
		spec.Set(m.file, "")
		return m, m.saveConfig(spec.Name)
	}

	return m, nil
}

func (m configViewModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.editor.Value())
		spec := m.keys[m.cursor]
		if value != "" && spec.Validate != nil {
			if err := spec.Validate(value); err != nil {
				m.status = err.Error()
				m.kind = components.StatusError
				return m, nil
			}
		}
		spec.Set(m.file, value)
		return m, m.saveConfig(spec.Name)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m configViewModel) saveConfig(key string) tea.Cmd {
	cfg := *m.file
	return func() tea.Msg {
		if err := cfg.Save(); err != nil {
			return configSaveErrorMsg{err: err}
		}
		return configSavedMsg{key: key}
	}
}

// override returns the environment value replacing key, if any.
func (m configViewModel) override(key string) (string, bool) {
	if m.lookup == nil {
		return "", false
	}
	v, ok := m.lookup(config.EnvName(key))
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (m configViewModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "config", "")

	var bindings []components.KeyBinding
	if m.editing {
		bindings = []components.KeyBinding{
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "cancel"},
		}
	} else {
		bindings = []components.KeyBinding{
			{Key: "j/k", Desc: "navigate"},
			{Key: "e", Desc: "edit"},
			{Key: "x", Desc: "unset"},
			{Key: "q", Desc: "quit"},
		}
	}
	footer := components.Footer(m.width, bindings)
	statusBar := components.StatusBar(m.width, m.status, m.kind)

	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer)-lipgloss.Height(statusBar), 1)

	sections := []string{header, m.renderContent(contentH)}
	if statusBar != "" {
		sections = append(sections, statusBar)
	}
	sections = append(sections, footer)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m configViewModel) renderContent(height int) string {
	title := styles.Title.Render("Configuration")
	labelWidth := 26

	rows := make([]string, 0, len(m.keys)+2)
	for i, spec := range m.keys {
		selected := i == m.cursor

		prefix := "  "
		nameStyle := styles.MutedText.Width(labelWidth)
		valueStyle := styles.MutedText
		if selected {
			prefix = styles.AccentText.Render("> ")
			nameStyle = styles.Label.Width(labelWidth)
			valueStyle = styles.Value.Bold(true)
		}

		value := spec.Get(m.file)
		switch {
		case value != "":
		case spec.Default != "":
			value = spec.Default + " (default)"
		default:
			value = "(not set)"
		}

		if selected && m.editing {
			rows = append(rows, prefix+nameStyle.Render(spec.Name)+m.editor.View())
			continue
		}
		row := prefix + nameStyle.Render(spec.Name) + valueStyle.Render(value)
		if env, ok := m.override(spec.Name); ok {
			row += styles.WarningText.Render("  " + config.EnvName(spec.Name) + "=" + env)
		}
		rows = append(rows, row)

		if selected {
			rows = append(rows, strings.Repeat(" ", 4)+styles.MutedText.Italic(true).Render(spec.Description))
		}
	}

	card := styles.Card.Width(min(max(m.width-4, 40), 100)).Render(strings.Join(rows, "\n"))
	combined := lipgloss.JoinVertical(lipgloss.Center, title, "", card)

	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, combined)
}

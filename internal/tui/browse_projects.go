package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/services/catalog"
	"github.com/xbocquet/twcatele/internal/tui/components"
	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type projectsLoadedMsg struct {
	projects []domain.Project
	err      error
}

// projectListModel lists the projects visible to the session, sorted by
// name.
type projectListModel struct {
	catalog *catalog.Service

	// openID jumps straight to a project once the list arrives.
	openID string

	projects []domain.Project
	cursor   int

	loading bool
	spinner spinner.Model
	err     error

	width  int
	height int
}

func newProjectListModel(svc *catalog.Service, openID string) projectListModel {
	return projectListModel{
		catalog: svc,
		openID:  openID,
		loading: true,
		spinner: newSpinner(),
	}
}

func (m projectListModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(false))
}

func (m projectListModel) fetch(refresh bool) tea.Cmd {
	svc := m.catalog
	return func() tea.Msg {
		ctx := context.Background()
		if refresh {
			if err := svc.Refresh(ctx); err != nil {
				return projectsLoadedMsg{err: err}
			}
		}
		projects, err := svc.Projects(ctx)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func (m projectListModel) update(msg tea.Msg) (projectListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case projectsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.projects = sortProjects(msg.projects)
		m.cursor = moveCursor(m.cursor, 0, len(m.projects))
		if m.openID != "" {
			id := m.openID
			m.openID = ""
			for i, p := range m.projects {
				if p.ID == id {
					m.cursor = i
					project := p
					return m, func() tea.Msg { return navigateToCollectionsMsg{project: project} }
				}
			}
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "up", "k":
			m.cursor = moveCursor(m.cursor, -1, len(m.projects))
		case "down", "j":
			m.cursor = moveCursor(m.cursor, 1, len(m.projects))
		case "r":
			m.loading = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.fetch(true))
		case "enter":
			if len(m.projects) > 0 {
				project := m.projects[m.cursor]
				return m, func() tea.Msg { return navigateToCollectionsMsg{project: project} }
			}
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// sortProjects orders projects by name, case-insensitively.
func sortProjects(projects []domain.Project) []domain.Project {
	out := append([]domain.Project(nil), projects...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func (m projectListModel) view(env string) string {
	header := components.Header(m.width, "projects", env)
	footer := components.Footer(m.width, []components.KeyBinding{
		{Key: "j/k", Desc: "navigate"},
		{Key: "enter", Desc: "open"},
		{Key: "r", Desc: "refresh"},
		{Key: "q", Desc: "quit"},
	})
	status := ""
	if !m.loading && m.err == nil {
		status = components.StatusBar(m.width, fmt.Sprintf("%d projects", len(m.projects)), components.StatusInfo)
	}
	contentH := layout(m.height, header, status, footer)

	var content string
	switch {
	case m.loading:
		content = fmt.Sprintf("\n  %s Loading projects...", m.spinner.View())
	case m.err != nil:
		content = "\n  " + styles.ErrorText.Render(catalog.LoadError("projects", m.err))
	case len(m.projects) == 0:
		content = "\n  " + styles.MutedText.Render("No projects found.")
	default:
		content = m.renderTable(contentH)
	}

	sections := []string{header, fill(content, contentH)}
	if status != "" {
		sections = append(sections, status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(sections, footer)...)
}

func (m projectListModel) renderTable(height int) string {
	nameW := max(min(m.width/2, 48), 16)
	shortW := 16

	rows := []string{styles.TableHeader.Render(fmt.Sprintf("  %-*s %-*s %s", nameW, "NAME", shortW, "SHORT NAME", "ID"))}
	start, end := scrollWindow(m.cursor, len(m.projects), height-1)
	for i := start; i < end; i++ {
		p := m.projects[i]
		cursor := " "
		rowStyle := styles.TableCell
		if i == m.cursor {
			cursor = styles.AccentText.Render(">")
			rowStyle = styles.TableSelectedRow
		}
		row := fmt.Sprintf("%s %-*s %-*s %s",
			cursor,
			nameW, ansi.Truncate(p.Name, nameW, "…"),
			shortW, ansi.Truncate(p.ShortName, shortW, "…"),
			p.ID,
		)
		rows = append(rows, rowStyle.Render(row))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

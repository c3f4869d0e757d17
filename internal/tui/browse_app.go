package tui

import (
	"fmt"
	"strings"

	"github.com/xbocquet/twcatele/internal/groupprefs"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/services/catalog"
	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BrowseDeps are the services the browser reads from.
type BrowseDeps struct {
	Catalog  *catalog.Service
	Readings domain.ReadingSource
	Passport domain.Passport

	// Prefs stores the selected user group per project. May be nil.
	Prefs groupprefs.Repository

	// Env is shown in the header.
	Env string

	// ProjectID opens the browser on a project's collections when set.
	ProjectID string
}

// --- Navigation messages ---
//
// Child models send these to request view transitions; browseAppModel
// handles them.

type navigateToCollectionsMsg struct {
	project domain.Project
}

type navigateToItemsMsg struct {
	collection record.Record
}

type navigateToGroupsMsg struct{}

// navigateBackMsg returns to the parent view.
type navigateBackMsg struct{}

type browseView int

const (
	browseViewProjects browseView = iota
	browseViewCollections
	browseViewItems
	browseViewGroups
)

// browseAppModel switches between the project, collection, item and group
// views within a single alt-screen session.
type browseAppModel struct {
	deps BrowseDeps
	view browseView

	project *domain.Project

	projects    projectListModel
	collections collectionListModel
	items       itemListModel
	groups      groupsModel

	width  int
	height int
}

func newBrowseAppModel(deps BrowseDeps) browseAppModel {
	return browseAppModel{
		deps:     deps,
		view:     browseViewProjects,
		projects: newProjectListModel(deps.Catalog, deps.ProjectID),
	}
}

// RunBrowse starts the interactive browser.
func RunBrowse(deps BrowseDeps) error {
	p := tea.NewProgram(newBrowseAppModel(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}

func (m browseAppModel) Init() tea.Cmd {
	return m.projects.Init()
}

func (m browseAppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.updateChild(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case navigateToCollectionsMsg:
		project := msg.project
		m.project = &project
		m.view = browseViewCollections
		m.collections = newCollectionListModel(m.deps.Catalog, project, m.width, m.height)
		return m, m.collections.Init()

	case navigateToItemsMsg:
		m.view = browseViewItems
		m.items = newItemListModel(m.deps.Catalog, m.deps.Readings, *m.project, msg.collection, m.width, m.height)
		return m, m.items.Init()

	case navigateToGroupsMsg:
		m.view = browseViewGroups
		m.groups = newGroupsModel(m.deps.Passport, m.deps.Prefs, *m.project, m.width, m.height)
		return m, m.groups.Init()

	case navigateBackMsg:
		switch m.view {
		case browseViewItems, browseViewGroups:
			m.view = browseViewCollections
			m.collections.width, m.collections.height = m.width, m.height
		case browseViewCollections:
			m.view = browseViewProjects
			m.projects.width, m.projects.height = m.width, m.height
		}
		return m, nil

	// Results are routed by type so a late response still lands in the
	// model that asked for it.
	case projectsLoadedMsg:
		var cmd tea.Cmd
		m.projects, cmd = m.projects.update(msg)
		return m, cmd
	case collectionsLoadedMsg:
		var cmd tea.Cmd
		m.collections, cmd = m.collections.update(msg)
		return m, cmd
	case itemsLoadedMsg, readingsUpdatedMsg:
		var cmd tea.Cmd
		m.items, cmd = m.items.update(msg)
		return m, cmd
	case groupsLoadedMsg, groupMembersLoadedMsg, groupSwitchedMsg:
		var cmd tea.Cmd
		m.groups, cmd = m.groups.update(msg)
		return m, cmd

	case spinner.TickMsg:
		return m.updateChild(msg)
	}

	return m.updateChild(msg)
}

func (m browseAppModel) updateChild(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case browseViewProjects:
		m.projects, cmd = m.projects.update(msg)
	case browseViewCollections:
		m.collections, cmd = m.collections.update(msg)
	case browseViewItems:
		m.items, cmd = m.items.update(msg)
	case browseViewGroups:
		m.groups, cmd = m.groups.update(msg)
	}
	return m, cmd
}

func (m browseAppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	var view string
	switch m.view {
	case browseViewProjects:
		view = m.projects.view(m.deps.Env)
	case browseViewCollections:
		view = m.collections.view(m.deps.Env)
	case browseViewItems:
		view = m.items.view(m.deps.Env)
	case browseViewGroups:
		view = m.groups.view(m.deps.Env)
	}
	return padToHeight(view, m.width, m.height)
}

// padToHeight appends blank lines so the alt screen is fully repainted
// when a view shrinks.
func padToHeight(view string, width, height int) string {
	if height <= 0 {
		return view
	}
	lines := strings.Split(view, "\n")
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// --- Shared helpers ---

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)
	return s
}

// layout splits the window height between header, content, status and
// footer, returning the content height.
func layout(height int, parts ...string) int {
	used := 0
	for _, p := range parts {
		if p != "" {
			used += lipgloss.Height(p)
		}
	}
	return max(height-used, 1)
}

// fill pads content to height lines.
func fill(content string, height int) string {
	if lines := lipgloss.Height(content); lines < height {
		content += lipgloss.NewStyle().Height(height - lines).Render("")
	}
	return content
}

// scrollWindow returns the [start, end) rows to show so cursor stays
// visible in a viewport of size rows.
func scrollWindow(cursor, total, size int) (int, int) {
	size = max(size, 1)
	start := 0
	if cursor >= size {
		start = cursor - size + 1
	}
	end := min(start+size, total)
	return start, end
}

func moveCursor(cursor, delta, total int) int {
	if total == 0 {
		return 0
	}
	return max(0, min(cursor+delta, total-1))
}

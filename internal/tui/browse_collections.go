package tui

import (
	"context"
	"fmt"

	"github.com/xbocquet/twcatele/internal/itemsort"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/services/catalog"
	"github.com/xbocquet/twcatele/internal/tui/components"
	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type collectionsLoadedMsg struct {
	projectID   string
	collections []record.Record
	err         error
}

type collectionListModel struct {
	catalog *catalog.Service
	project domain.Project

	all     []record.Record
	visible []record.Record
	filter  itemsort.CollectionFilter
	cursor  int

	loading bool
	spinner spinner.Model
	err     error

	width  int
	height int
}

func newCollectionListModel(svc *catalog.Service, project domain.Project, width, height int) collectionListModel {
	return collectionListModel{
		catalog: svc,
		project: project,
		filter:  itemsort.FilterAll,
		loading: true,
		spinner: newSpinner(),
		width:   width,
		height:  height,
	}
}

func (m collectionListModel) Init() tea.Cmd {
	svc, project := m.catalog, m.project
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		cols, err := svc.Collections(context.Background(), project)
		return collectionsLoadedMsg{projectID: project.ID, collections: cols, err: err}
	})
}

// applyFilter keeps the collections whose _itemClass passes the filter.
func (m collectionListModel) applyFilter() collectionListModel {
	m.visible = nil
	for _, c := range m.all {
		if m.filter.Allows(c.String("_itemClass")) {
			m.visible = append(m.visible, c)
		}
	}
	m.cursor = moveCursor(m.cursor, 0, len(m.visible))
	return m
}

func (m collectionListModel) update(msg tea.Msg) (collectionListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case collectionsLoadedMsg:
		if msg.projectID != m.project.ID {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.all = msg.collections
		return m.applyFilter(), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "esc", "backspace":
			return m, func() tea.Msg { return navigateBackMsg{} }
		case "up", "k":
			m.cursor = moveCursor(m.cursor, -1, len(m.visible))
		case "down", "j":
			m.cursor = moveCursor(m.cursor, 1, len(m.visible))
		case "f":
			m.filter = m.filter.Next()
			m.cursor = 0
			return m.applyFilter(), nil
		case "g":
			return m, func() tea.Msg { return navigateToGroupsMsg{} }
		case "r":
			m.loading = true
			m.err = nil
			return m, m.Init()
		case "enter":
			if len(m.visible) > 0 {
				c := m.visible[m.cursor]
				return m, func() tea.Msg { return navigateToItemsMsg{collection: c} }
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

func (m collectionListModel) view(env string) string {
	header := components.Header(m.width, m.project.Name, env)
	footer := components.Footer(m.width, []components.KeyBinding{
		{Key: "j/k", Desc: "navigate"},
		{Key: "enter", Desc: "items"},
		{Key: "f", Desc: "filter"},
		{Key: "g", Desc: "user groups"},
		{Key: "esc", Desc: "projects"},
		{Key: "q", Desc: "quit"},
	})
	status := components.StatusBar(m.width,
		fmt.Sprintf("Filter: %s  (%d of %d collections)", m.filter, len(m.visible), len(m.all)),
		components.StatusInfo)
	contentH := layout(m.height, header, status, footer)

	var content string
	switch {
	case m.loading:
		content = fmt.Sprintf("\n  %s Loading collections...", m.spinner.View())
	case m.err != nil:
		content = "\n  " + styles.ErrorText.Render(catalog.LoadError("collections", m.err))
	case len(m.visible) == 0:
		content = "\n  " + styles.MutedText.Render("No collections match the filter.")
	default:
		content = m.renderTable(contentH)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, fill(content, contentH), status, footer)
}

func (m collectionListModel) renderTable(height int) string {
	nameW := max(min(m.width/2, 56), 20)
	classW := 26

	rows := []string{styles.TableHeader.Render(fmt.Sprintf("  %-*s %-*s %s", nameW, "NAME", classW, "CLASS", "ID"))}
	start, end := scrollWindow(m.cursor, len(m.visible), height-1)
	for i := start; i < end; i++ {
		c := m.visible[i]
		cursor := " "
		rowStyle := styles.TableCell
		if i == m.cursor {
			cursor = styles.AccentText.Render(">")
			rowStyle = styles.TableSelectedRow
		}
		row := fmt.Sprintf("%s %-*s %-*s %s",
			cursor,
			nameW, ansi.Truncate(catalog.CollectionText(c), nameW, "…"),
			classW, c.String("_itemClass"),
			c.ID(),
		)
		rows = append(rows, rowStyle.Render(row))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

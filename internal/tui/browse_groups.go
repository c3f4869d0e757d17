package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/xbocquet/twcatele/internal/groupprefs"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/services/groups"
	"github.com/xbocquet/twcatele/internal/tui/components"
	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/sync/errgroup"
)

type groupsLoadedMsg struct {
	projectID string
	mine      []domain.UserGroup
	all       []domain.UserGroup
	current   *domain.UserGroup
	err       error
}

type groupMembersLoadedMsg struct {
	groupID string
	users   []domain.User
	invites groups.Invites
	err     error
}

type groupSwitchedMsg struct {
	group *domain.UserGroup
	err   error
}

// groupsModel lists the user's groups in a project. The highlighted
// group's members and invitations are shown beside the list.
type groupsModel struct {
	svc     *groups.Service
	project domain.Project

	mine    []domain.UserGroup
	admin   bool
	current string
	cursor  int

	// members caches loaded member lists by group id.
	members   map[string]groupMembersLoadedMsg
	requested map[string]bool

	loading bool
	spinner spinner.Model
	err     error
	status  string
	kind    components.StatusKind

	width  int
	height int
}

func newGroupsModel(passport domain.Passport, prefs groupprefs.Repository, project domain.Project, width, height int) groupsModel {
	return groupsModel{
		svc:       groups.New(passport, prefs, project),
		project:   project,
		members:   map[string]groupMembersLoadedMsg{},
		requested: map[string]bool{},
		loading:   true,
		spinner:   newSpinner(),
		width:     width,
		height:    height,
	}
}

func (m groupsModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadGroups(m.svc))
}

func loadGroups(svc *groups.Service) tea.Cmd {
	return func() tea.Msg {
		msg := groupsLoadedMsg{projectID: svc.Project().ID}
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			msg.mine, err = svc.MyGroups(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			msg.all, err = svc.AllGroups(ctx)
			return err
		})
		if msg.err = g.Wait(); msg.err != nil {
			return msg
		}
		msg.current, msg.err = svc.Current(msg.mine)
		return msg
	}
}

func loadMembers(svc *groups.Service, groupID string) tea.Cmd {
	return func() tea.Msg {
		msg := groupMembersLoadedMsg{groupID: groupID}
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			msg.users, err = svc.Users(ctx, groupID)
			return err
		})
		g.Go(func() error {
			var err error
			msg.invites, err = svc.Invites(ctx, groupID)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

// ensureMembers requests the highlighted group's members once.
func (m groupsModel) ensureMembers() (groupsModel, tea.Cmd) {
	if m.cursor >= len(m.mine) {
		return m, nil
	}
	id := m.mine[m.cursor].ID
	if m.requested[id] {
		return m, nil
	}
	m.requested[id] = true
	return m, loadMembers(m.svc, id)
}

func (m groupsModel) update(msg tea.Msg) (groupsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case groupsLoadedMsg:
		if msg.projectID != m.project.ID {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.mine = msg.mine
		m.admin = groups.IsAdmin(msg.all, msg.mine)
		m.cursor = 0
		if msg.current != nil {
			m.current = msg.current.ID
			for i, g := range m.mine {
				if g.ID == m.current {
					m.cursor = i
				}
			}
		}
		return m.ensureMembers()

	case groupMembersLoadedMsg:
		m.members[msg.groupID] = msg

	case groupSwitchedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			m.kind = components.StatusError
			return m, nil
		}
		m.current = msg.group.ID
		m.status = fmt.Sprintf("Current user group set to %q.", msg.group.Name)
		m.kind = components.StatusSuccess

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m groupsModel) handleKey(msg tea.KeyMsg) (groupsModel, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		return m, func() tea.Msg { return navigateBackMsg{} }
	case "up", "k":
		m.cursor = moveCursor(m.cursor, -1, len(m.mine))
		return m.ensureMembers()
	case "down", "j":
		m.cursor = moveCursor(m.cursor, 1, len(m.mine))
		return m.ensureMembers()
	case "enter":
		if m.cursor >= len(m.mine) || m.mine[m.cursor].ID == m.current {
			return m, nil
		}
		svc, mine, id := m.svc, m.mine, m.mine[m.cursor].ID
		return m, func() tea.Msg {
			g, err := svc.Switch(mine, id)
			return groupSwitchedMsg{group: g, err: err}
		}
	case "r":
		if m.cursor < len(m.mine) {
			id := m.mine[m.cursor].ID
			delete(m.members, id)
			m.requested[id] = true
			return m, loadMembers(m.svc, id)
		}
	}
	return m, nil
}

func (m groupsModel) view(env string) string {
	header := components.Header(m.width, m.project.Name+" > User groups", env)
	footer := components.Footer(m.width, []components.KeyBinding{
		{Key: "j/k", Desc: "navigate"},
		{Key: "enter", Desc: "make current"},
		{Key: "r", Desc: "reload members"},
		{Key: "esc", Desc: "back"},
		{Key: "q", Desc: "quit"},
	})
	status := components.StatusBar(m.width, m.status, m.kind)
	contentH := layout(m.height, header, status, footer)

	var content string
	switch {
	case m.loading:
		content = fmt.Sprintf("\n  %s Loading user groups...", m.spinner.View())
	case m.err != nil:
		content = "\n  " + styles.ErrorText.Render("Failed to load user groups: "+m.err.Error())
	case len(m.mine) == 0:
		content = "\n  " + styles.MutedText.Render("You are not a member of any user group in this project.")
	default:
		listW := max(m.width/2, 30)
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderList(listW, contentH),
			m.renderMembers(max(m.width-listW-2, 20), contentH))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, fill(content, contentH), status, footer)
}

func (m groupsModel) renderList(width, height int) string {
	role := "member"
	if m.admin {
		role = "admin"
	}
	lines := []string{
		styles.MutedText.Render(fmt.Sprintf("  Role: %s", role)),
		styles.TableHeader.Render(fmt.Sprintf("    %-*s", width-4, "GROUP")),
	}
	start, end := scrollWindow(m.cursor, len(m.mine), height-2)
	for i := start; i < end; i++ {
		g := m.mine[i]
		cursor := " "
		style := styles.TableCell
		if i == m.cursor {
			cursor = styles.AccentText.Render(">")
			style = styles.TableSelectedRow
		}
		marker := " "
		if g.ID == m.current {
			marker = styles.SuccessText.Render("*")
		}
		label := g.Name
		if g.Description != "" {
			label += " - " + g.Description
		}
		lines = append(lines, cursor+" "+marker+" "+style.Render(ansi.Truncate(label, width-4, "…")))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m groupsModel) renderMembers(width, height int) string {
	if m.cursor >= len(m.mine) {
		return ""
	}
	g := m.mine[m.cursor]
	loaded, ok := m.members[g.ID]
	lines := []string{styles.Subtitle.Render(g.Name)}
	switch {
	case !ok:
		lines = append(lines, styles.MutedText.Render("Loading members..."))
	case loaded.err != nil:
		lines = append(lines, styles.ErrorText.Render("Failed to load members: "+loaded.err.Error()))
	default:
		lines = append(lines, "", styles.Label.Render(fmt.Sprintf("Users (%d)", len(loaded.users))))
		for _, u := range loaded.users {
			lines = append(lines, "  "+ansi.Truncate(memberLine(u), width-2, "…"))
		}
		invites := append(append([]domain.Invite{}, loaded.invites.Pending...), loaded.invites.Expired...)
		if len(invites) > 0 {
			lines = append(lines, "", styles.Label.Render(fmt.Sprintf("Invitations (%d)", len(invites))))
			for _, inv := range invites {
				lines = append(lines, "  "+ansi.Truncate(inv.Email, width-14, "…")+"  "+styles.StatusIndicator(inv.Status))
			}
		}
	}
	if len(lines) > height {
		lines = append(lines[:height-1], styles.MutedText.Render(fmt.Sprintf("… %d more", len(lines)-height+1)))
	}
	return strings.Join(lines, "\n")
}

// memberLine is "<first> <last>  <email>", or the email alone when the
// user has no name.
func memberLine(u domain.User) string {
	name := u.DisplayName()
	switch {
	case name == "":
		return u.Email
	case u.Email == "":
		return name
	}
	return name + "  " + styles.MutedText.Render(u.Email)
}

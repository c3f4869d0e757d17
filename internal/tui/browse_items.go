package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/xbocquet/twcatele/internal/displaystate"
	"github.com/xbocquet/twcatele/internal/itemsort"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/services/catalog"
	"github.com/xbocquet/twcatele/internal/services/readings"
	"github.com/xbocquet/twcatele/internal/telemetry"
	"github.com/xbocquet/twcatele/internal/tui/components"
	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type itemsLoadedMsg struct {
	collectionID string
	items        []record.Record
	err          error
}

// readingsUpdatedMsg reports that an item's display entry changed.
type readingsUpdatedMsg struct {
	itemID string
	err    error
}

// itemListModel is the sortable, paged item table of one collection.
// Telemetry items expand into a readings panel; other items show their
// properties.
type itemListModel struct {
	catalog  *catalog.Service
	readings *readings.Service
	project  domain.Project

	collection  record.Record
	isTelemetry bool

	all    []record.Record
	sort   itemsort.State
	cursor int // index into the current page

	// expanded lists item ids in the order they were opened.
	expanded []string
	rng      *telemetry.DateRange
	form     *rangeForm

	loading bool
	spinner spinner.Model
	err     error
	status  string
	kind    components.StatusKind

	width  int
	height int
}

func newItemListModel(svc *catalog.Service, source domain.ReadingSource, project domain.Project, collection record.Record, width, height int) itemListModel {
	return itemListModel{
		catalog:     svc,
		readings:    readings.New(source, project, nil),
		project:     project,
		collection:  collection,
		isTelemetry: collection.String("_itemClass") == itemsort.ClassTelemetryCollection,
		sort:        itemsort.NewState(),
		loading:     true,
		spinner:     newSpinner(),
		width:       width,
		height:      height,
	}
}

func (m itemListModel) Init() tea.Cmd {
	svc, project, id := m.catalog, m.project, m.collection.ID()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		items, err := svc.Items(context.Background(), project, id)
		return itemsLoadedMsg{collectionID: id, items: items, err: err}
	})
}

func (m itemListModel) page() []record.Record {
	return m.sort.Apply(m.all, m.isTelemetry)
}

func (m itemListModel) selected() (record.Record, bool) {
	page := m.page()
	if m.cursor < 0 || m.cursor >= len(page) {
		return nil, false
	}
	return page[m.cursor], true
}

func (m itemListModel) isExpanded(id string) bool {
	return slices.Contains(m.expanded, id)
}

func (m itemListModel) update(msg tea.Msg) (itemListModel, tea.Cmd) {
	if m.form != nil {
		if key, ok := msg.(tea.KeyMsg); ok {
			return m.updateForm(key)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case itemsLoadedMsg:
		if msg.collectionID != m.collection.ID() {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.all = msg.items
		m.cursor = 0

	case readingsUpdatedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			m.kind = components.StatusError
		}

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.loading || m.anyLoading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m itemListModel) anyLoading() bool {
	for _, id := range m.expanded {
		if e, ok := m.readings.State().Get(id); ok && e.Loading {
			return true
		}
	}
	return false
}

func (m itemListModel) handleKey(msg tea.KeyMsg) (itemListModel, tea.Cmd) {
	pageLen := len(m.page())
	total := len(m.all)
	m.status = ""

	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		return m, func() tea.Msg { return navigateBackMsg{} }
	case "up", "k":
		m.cursor = moveCursor(m.cursor, -1, pageLen)
	case "down", "j":
		m.cursor = moveCursor(m.cursor, 1, pageLen)
	case "n", "right":
		m.sort = m.sort.GoToPage(m.sort.Page()+1, total)
		m.cursor = 0
	case "p", "left":
		m.sort = m.sort.GoToPage(m.sort.Page()-1, total)
		m.cursor = 0
	case "+", "-":
		m.sort = m.stepPageSize(key == "+")
		m.cursor = moveCursor(m.cursor, 0, len(m.page()))
	case "1", "2", "3", "4", "5":
		col := itemsort.Columns[int(key[0]-'1')]
		m.sort = m.sort.Click(col)
		m.cursor = 0
	case "enter", " ":
		return m.toggle()
	case "d":
		if m.isTelemetry {
			m.form = newRangeForm(m.rng)
			return m, m.form.Init()
		}
	case "x":
		if m.isTelemetry && m.rng != nil {
			m.rng = nil
			m.status = "Date range cleared."
			m.kind = components.StatusInfo
			return m, m.reloadExpanded()
		}
	default:
		if m.isTelemetry {
			return m.handleReadingsKey(key)
		}
	}
	return m, nil
}

// stepPageSize moves to the next smaller or larger allowed page size.
func (m itemListModel) stepPageSize(larger bool) itemsort.State {
	sizes := itemsort.PageSizes
	i := slices.Index(sizes, m.sort.PageSize)
	switch {
	case larger && i < len(sizes)-1:
		i++
	case !larger && i > 0:
		i--
	default:
		return m.sort
	}
	s, err := m.sort.SetPageSize(sizes[i])
	if err != nil {
		return m.sort
	}
	return s
}

// toggle expands or collapses the selected item.
func (m itemListModel) toggle() (itemListModel, tea.Cmd) {
	item, ok := m.selected()
	if !ok {
		return m, nil
	}
	id := item.ID()
	if m.isExpanded(id) {
		m.expanded = slices.DeleteFunc(m.expanded, func(e string) bool { return e == id })
		if m.isTelemetry {
			m.readings.Collapse(id)
		}
		return m, nil
	}
	m.expanded = append(m.expanded, id)
	if !m.isTelemetry {
		return m, nil
	}
	m.readings.State().Apply(id, displaystate.Loading())
	return m, tea.Batch(m.spinner.Tick, m.loadCmd(item))
}

func (m itemListModel) loadCmd(item record.Record) tea.Cmd {
	svc, collectionID, rng := m.readings, m.collection.ID(), m.rng
	return func() tea.Msg {
		_, err := svc.LoadReadings(context.Background(), collectionID, item, rng)
		return readingsUpdatedMsg{itemID: item.ID(), err: err}
	}
}

// handleReadingsKey applies the readings panel keys to the selected item.
func (m itemListModel) handleReadingsKey(key string) (itemListModel, tea.Cmd) {
	item, ok := m.selected()
	if !ok || !m.isExpanded(item.ID()) {
		return m, nil
	}
	id := item.ID()
	store := m.readings.State()
	entry, _ := store.Get(id)
	if entry.Loading {
		return m, nil
	}

	switch key {
	case "c":
		mode := displaystate.ModeChart
		if entry.Mode == displaystate.ModeChart {
			mode = displaystate.ModeTable
		}
		store.Apply(id, displaystate.WithMode(mode))
	case "P":
		store.Apply(id, displaystate.WithPeriod(nextPeriod(entry.Period)))
	case "a":
		if _, ok := m.readings.AggregateClient(id, periodOrDefault(entry.Period)); !ok {
			m.status = "No readings loaded to aggregate."
			m.kind = components.StatusError
		}
	case "s":
		store.Apply(id, displaystate.Loading())
		svc, collectionID, rng, period := m.readings, m.collection.ID(), m.rng, periodOrDefault(entry.Period)
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			svc.AggregateServer(context.Background(), collectionID, item, period, rng)
			return readingsUpdatedMsg{itemID: id}
		})
	case "R":
		m.readings.ShowRaw(id)
	case "r":
		store.Apply(id, displaystate.Loading())
		return m, tea.Batch(m.spinner.Tick, m.loadCmd(item))
	}
	return m, nil
}

func (m itemListModel) updateForm(msg tea.KeyMsg) (itemListModel, tea.Cmd) {
	form, done, cmd := m.form.Update(msg)
	m.form = form
	switch done {
	case rangeFormCancelled:
		m.form = nil
	case rangeFormSubmitted:
		m.rng = form.Range()
		m.form = nil
		m.status = "Date range: " + describeRange(m.rng)
		m.kind = components.StatusInfo
		return m, m.reloadExpanded()
	}
	return m, cmd
}

// reloadExpanded refetches every open telemetry item, e.g. after the date
// range changed.
func (m itemListModel) reloadExpanded() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for _, it := range m.all {
		if m.isExpanded(it.ID()) {
			m.readings.State().Apply(it.ID(), displaystate.Loading())
			cmds = append(cmds, m.loadCmd(it))
		}
	}
	return tea.Batch(cmds...)
}

func nextPeriod(p telemetry.Period) telemetry.Period {
	i := slices.Index(telemetry.Periods, p)
	return telemetry.Periods[(i+1)%len(telemetry.Periods)]
}

func periodOrDefault(p telemetry.Period) telemetry.Period {
	if p == "" {
		return telemetry.DefaultPeriod
	}
	return p
}

func describeRange(rng *telemetry.DateRange) string {
	if !rng.Enabled() {
		return "latest readings"
	}
	start, end, err := rng.Bounds(nil)
	if err != nil {
		return err.Error()
	}
	return start.Format("2006-01-02 15:04") + " to " + end.Format("2006-01-02 15:04")
}

// --- View ---

func (m itemListModel) view(env string) string {
	name := catalog.CollectionText(m.collection)
	header := components.Header(m.width, m.project.Name+" > "+name, env)

	bindings := []components.KeyBinding{
		{Key: "j/k", Desc: "navigate"},
		{Key: "n/p", Desc: "page"},
		{Key: "+/-", Desc: "page size"},
		{Key: "1-5", Desc: "sort"},
		{Key: "enter", Desc: "expand"},
	}
	if m.isTelemetry {
		bindings = append(bindings,
			components.KeyBinding{Key: "c", Desc: "chart"},
			components.KeyBinding{Key: "P", Desc: "period"},
			components.KeyBinding{Key: "a/s", Desc: "aggregate client/server"},
			components.KeyBinding{Key: "R", Desc: "raw"},
			components.KeyBinding{Key: "d", Desc: "date range"},
		)
	}
	bindings = append(bindings, components.KeyBinding{Key: "esc", Desc: "back"})
	if m.form != nil {
		bindings = m.form.Bindings()
	}
	footer := components.Footer(m.width, bindings)

	status := components.StatusBar(m.width, m.statusLine(), m.kind)
	contentH := layout(m.height, header, status, footer)

	var content string
	switch {
	case m.loading:
		content = fmt.Sprintf("\n  %s Loading items...", m.spinner.View())
	case m.err != nil:
		content = "\n  " + styles.ErrorText.Render(catalog.LoadError("items", m.err))
	case len(m.all) == 0:
		content = "\n  " + styles.MutedText.Render("This collection has no items.")
	case m.form != nil:
		content = m.form.View(m.width)
	default:
		content = m.renderBody(contentH)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, fill(content, contentH), status, footer)
}

func (m itemListModel) statusLine() string {
	if m.status != "" {
		return m.status
	}
	if m.loading || m.err != nil {
		return ""
	}
	line := fmt.Sprintf("Page %d of %d  (%d items, %d per page)",
		m.sort.Page(), itemsort.PageCount(len(m.all), m.sort.PageSize), len(m.all), m.sort.PageSize)
	if m.isTelemetry {
		line += "  Range: " + describeRange(m.rng)
	}
	return line
}

// columnWidths spreads the row width over the five item columns.
func (m itemListModel) columnWidths() []int {
	avail := max(m.width-8, 40)
	return []int{avail * 3 / 10, avail * 2 / 10, avail * 3 / 10, avail / 10, avail / 10}
}

func (m itemListModel) renderBody(height int) string {
	table := m.renderTable()
	tableH := lipgloss.Height(table)

	item, ok := m.selected()
	if !ok || !m.isExpanded(item.ID()) {
		return table
	}
	panelH := max(height-tableH-1, 3)
	var panel string
	if m.isTelemetry {
		entry, _ := m.readings.State().Get(item.ID())
		panel = m.renderReadings(item, entry, panelH)
	} else {
		panel = m.renderProperties(item, panelH)
	}
	return lipgloss.JoinVertical(lipgloss.Left, table, "", panel)
}

func (m itemListModel) renderTable() string {
	widths := m.columnWidths()
	var head []string
	for i, col := range itemsort.Columns {
		label := fmt.Sprintf("%d %s %s", i+1, strings.ToUpper(string(col)), m.sort.Indicator(col))
		head = append(head, fmt.Sprintf("%-*s", widths[i], label))
	}
	rows := []string{styles.TableHeader.Render("    " + strings.Join(head, " "))}

	for i, it := range m.page() {
		cursor := " "
		rowStyle := styles.TableCell
		if i == m.cursor {
			cursor = styles.AccentText.Render(">")
			rowStyle = styles.TableSelectedRow
		}
		marker := " "
		if m.isExpanded(it.ID()) {
			marker = "▾"
		}
		var cells []string
		for c, col := range itemsort.Columns {
			v := record.Stringify(itemsort.Value(it, col, m.isTelemetry))
			cells = append(cells, fmt.Sprintf("%-*s", widths[c], ansi.Truncate(v, widths[c], "…")))
		}
		rows = append(rows, rowStyle.Render(cursor+" "+marker+" "+strings.Join(cells, " ")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m itemListModel) renderProperties(item record.Record, height int) string {
	props := record.FilteredProperties(item)
	lines := []string{styles.Subtitle.Render(record.DisplayName(item, false) + "  " + item.ID())}
	for i, p := range props {
		if i >= height-1 {
			lines = append(lines, styles.MutedText.Render(fmt.Sprintf("… %d more", len(props)-i)))
			break
		}
		value := ansi.Truncate(record.Stringify(p.Value), max(m.width-32, 10), "…")
		lines = append(lines, "  "+styles.Label.Width(26).Render(p.Key)+styles.Value.Render(value))
	}
	return strings.Join(lines, "\n")
}

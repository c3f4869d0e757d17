package tui

import (
	"fmt"
	"strings"

	"github.com/xbocquet/twcatele/internal/displaystate"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/telemetry"
	"github.com/xbocquet/twcatele/internal/tui/components"
	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// renderReadings draws the panel of an expanded telemetry item.
func (m itemListModel) renderReadings(item record.Record, entry displaystate.Entry, height int) string {
	name := record.DisplayName(item, true)
	unit := telemetry.ItemUnit(item)

	title := name
	if unit != "" {
		title += " [" + unit + "]"
	}
	var tags []string
	if entry.Aggregated {
		tags = append(tags, fmt.Sprintf("%s, %s-side", entry.Period.Label(), entry.AggregationMethod))
	} else {
		tags = append(tags, "raw", "next period: "+periodOrDefault(entry.Period).Label())
	}
	head := styles.Subtitle.Render(title) + "  " + styles.MutedText.Render(strings.Join(tags, " · "))

	var body string
	switch {
	case entry.Loading:
		body = fmt.Sprintf("  %s Loading readings...", m.spinner.View())
	case entry.Error != "":
		body = "  " + styles.ErrorText.Render(entry.Error)
	case len(entry.Readings) == 0:
		body = "  " + styles.MutedText.Render("No readings found.")
	case entry.Mode == displaystate.ModeChart && (entry.Aggregated || entry.IsNumeric):
		chartTitle := telemetry.RawChartTitle
		if entry.Aggregated {
			chartTitle = telemetry.ChartTitle(name)
		}
		body = components.TelemetryChart(chartTitle, telemetry.YAxisTitle(unit),
			telemetry.ChartSeries(entry.Readings, entry.Aggregated),
			max(m.width-4, 30), max(height-6, 4))
	case entry.Mode == displaystate.ModeChart:
		body = "  " + styles.WarningText.Render("Readings are not numeric; showing a table instead.") + "\n" +
			readingsTable(entry, height-2)
	default:
		body = readingsTable(entry, height-1)
	}
	return lipgloss.JoinVertical(lipgloss.Left, head, body)
}

// readingsTable lists readings or buckets, at most rows lines including
// the header.
func readingsTable(entry displaystate.Entry, rows int) string {
	rows = max(rows, 2)
	var lines []string
	if entry.Aggregated {
		lines = append(lines, styles.TableHeader.Render(fmt.Sprintf("  %-21s %12s %12s %12s %7s", "BUCKET", "AVG", "MIN", "MAX", "COUNT")))
	} else {
		lines = append(lines, styles.TableHeader.Render(fmt.Sprintf("  %-21s %s", "TIME", "VALUE")))
	}

	for i, r := range entry.Readings {
		if len(lines) >= rows {
			lines = append(lines, styles.MutedText.Render(fmt.Sprintf("  … %d more", len(entry.Readings)-i)))
			break
		}
		if entry.Aggregated {
			b := telemetry.BucketFromRecord(r)
			lines = append(lines, fmt.Sprintf("  %-21s %12s %12s %12s %7d",
				readingTime(r), bucketNumber(b.Avg), bucketNumber(b.Min), bucketNumber(b.Max), b.Count))
			continue
		}
		v, _ := telemetry.ReadingValue(r)
		value := record.Stringify(v)
		if value == "" {
			value = "-"
		}
		lines = append(lines, fmt.Sprintf("  %-21s %s", readingTime(r), value))
	}
	return strings.Join(lines, "\n")
}

func readingTime(r record.Record) string {
	if ts, ok := telemetry.ReadingTime(r); ok {
		return ts.Local().Format("2006-01-02 15:04:05")
	}
	if s := r.String("_ts"); s != "" {
		return s
	}
	return "-"
}

func bucketNumber(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *p)
}

// --- Date range form ---

type rangeFormResult int

const (
	rangeFormEditing rangeFormResult = iota
	rangeFormSubmitted
	rangeFormCancelled
)

var rangeFieldLabels = []string{"Start date", "Start time", "End date", "End time"}

// rangeForm edits a DateRange with one text input per field. Submitting
// with both dates empty clears the range.
type rangeForm struct {
	inputs []textinput.Model
	focus  int
	err    string
}

func newRangeForm(current *telemetry.DateRange) *rangeForm {
	var values []string
	if current != nil {
		values = []string{current.StartDate, current.StartTime, current.EndDate, current.EndTime}
	} else {
		values = make([]string, len(rangeFieldLabels))
	}
	f := &rangeForm{}
	for i, label := range rangeFieldLabels {
		ti := textinput.New()
		ti.CharLimit = 10
		ti.Width = 12
		ti.Placeholder = "YYYY-MM-DD"
		if strings.HasSuffix(label, "time") {
			ti.CharLimit = 5
			ti.Placeholder = "HH:MM"
		}
		ti.SetValue(values[i])
		f.inputs = append(f.inputs, ti)
	}
	f.inputs[0].Focus()
	return f
}

func (f *rangeForm) Init() tea.Cmd {
	return textinput.Blink
}

// Range returns the entered range, or nil when both dates are empty.
func (f *rangeForm) Range() *telemetry.DateRange {
	rng := &telemetry.DateRange{
		StartDate: strings.TrimSpace(f.inputs[0].Value()),
		StartTime: strings.TrimSpace(f.inputs[1].Value()),
		EndDate:   strings.TrimSpace(f.inputs[2].Value()),
		EndTime:   strings.TrimSpace(f.inputs[3].Value()),
	}
	if rng.StartDate == "" && rng.EndDate == "" {
		return nil
	}
	return rng
}

// validate checks the entered range; an empty form is valid.
func (f *rangeForm) validate() error {
	rng := f.Range()
	if rng == nil {
		return nil
	}
	start, end, err := rng.Bounds(nil)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end is before start")
	}
	return nil
}

func (f *rangeForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

// Update handles a key and reports whether the form finished.
func (f *rangeForm) Update(msg tea.KeyMsg) (*rangeForm, rangeFormResult, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return f, rangeFormCancelled, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return f, rangeFormEditing, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return f, rangeFormEditing, nil
	case "ctrl+x":
		for i := range f.inputs {
			f.inputs[i].SetValue("")
		}
		f.err = ""
		return f, rangeFormEditing, nil
	case "enter":
		if err := f.validate(); err != nil {
			f.err = err.Error()
			return f, rangeFormEditing, nil
		}
		return f, rangeFormSubmitted, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.err = ""
	return f, rangeFormEditing, cmd
}

func (f *rangeForm) View(width int) string {
	lines := []string{"", "  " + styles.Title.Render("Reading date range"), ""}
	for i, label := range rangeFieldLabels {
		prefix := "  "
		if i == f.focus {
			prefix = styles.AccentText.Render("> ")
		}
		lines = append(lines, prefix+styles.Label.Width(14).Render(label)+f.inputs[i].View())
	}
	lines = append(lines, "", "  "+styles.MutedText.Render("Empty times cover the whole day. Leave both dates empty for the latest readings."))
	if f.err != "" {
		lines = append(lines, "", "  "+styles.ErrorText.Render(f.err))
	}
	return lipgloss.NewStyle().MaxWidth(max(width, 20)).Render(strings.Join(lines, "\n"))
}

func (f *rangeForm) Bindings() []components.KeyBinding {
	return []components.KeyBinding{
		{Key: "tab", Desc: "next field"},
		{Key: "enter", Desc: "apply"},
		{Key: "ctrl+x", Desc: "clear"},
		{Key: "esc", Desc: "cancel"},
	}
}

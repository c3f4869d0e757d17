package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/xbocquet/twcatele/internal/telemetry"
	"github.com/xbocquet/twcatele/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// DefaultChartHeight is the plot height used by the CLI chart output.
const DefaultChartHeight = 12

// seriesColors are assigned to series in order (Value/Average, Min, Max).
var seriesColors = []asciigraph.AnsiColor{asciigraph.DodgerBlue, asciigraph.MediumSeaGreen, asciigraph.LightCoral}

// TelemetryChart renders reading series as a line chart with a title, the
// y-axis caption and one summary line per series. Empty series are left
// out; a chart without any point renders a "no data" note.
func TelemetryChart(title, yAxis string, series []telemetry.Series, width, height int) string {
	var data [][]float64
	var legends []string
	var colors []asciigraph.AnsiColor
	var summary []string
	var first, last string

	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		values := make([]float64, len(s.Points))
		for j, p := range s.Points {
			values[j] = p.Value
		}
		data = append(data, values)
		legends = append(legends, s.Name)
		colors = append(colors, seriesColors[i%len(seriesColors)])

		lo, hi := minMax(values)
		summary = append(summary, fmt.Sprintf("  %-8s latest: %s  min: %s  max: %s",
			s.Name, formatValue(values[len(values)-1]), formatValue(lo), formatValue(hi)))

		if ts := s.Points[0].Time.Local().Format("2006-01-02 15:04"); first == "" || ts < first {
			first = ts
		}
		if ts := s.Points[len(s.Points)-1].Time.Local().Format("2006-01-02 15:04"); ts > last {
			last = ts
		}
	}

	header := styles.Label.Render(title)
	if len(data) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, styles.MutedText.Render("No numeric readings to plot."))
	}

	// Reserve space for Y-axis labels (number + " ┤").
	plotWidth := max(width-12, 10)
	if height <= 0 {
		height = DefaultChartHeight
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(plotWidth),
		asciigraph.Precision(2),
		asciigraph.Caption(yAxis),
		asciigraph.SeriesColors(colors...),
		asciigraph.LabelColor(asciigraph.Default),
	}
	if len(data) > 1 {
		opts = append(opts, asciigraph.SeriesLegends(legends...))
	}
	chart := asciigraph.PlotMany(data, opts...)

	span := styles.MutedText.Render(fmt.Sprintf("  %s → %s", first, last))
	return lipgloss.JoinVertical(lipgloss.Left, header, chart, span, styles.MutedText.Render(strings.Join(summary, "\n")))
}

// minMax returns the minimum and maximum values from a slice.
func minMax(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	lo, hi := data[0], data[0]
	for _, v := range data[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// formatValue renders a float using human-readable scaling for large
// magnitudes.
func formatValue(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= 1_000_000_000:
		return fmt.Sprintf("%.1fG", v/1_000_000_000)
	case a >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case a >= 10_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

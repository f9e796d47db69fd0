package commands

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"

	"github.com/aristath/forecastfolio/internal/modules/optimization"
)

//go:embed templates/*.md
var templates embed.FS

type weightRow struct {
	Ticker string
	Weight float64
}

var reportFuncs = template.FuncMap{
	"pct":     formatPercent,
	"ratio":   func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"window":  formatWindow,
	"weights": sortedWeights,
}

// formatPercent renders a fraction as a percentage with two decimals (0.1234 -> 12.34%).
func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func formatWindow(days int) string {
	if days == 0 {
		return "full series"
	}
	return fmt.Sprintf("%d days", days)
}

// sortedWeights orders weights from largest to smallest, ties by ticker.
func sortedWeights(w optimization.PortfolioWeights) []weightRow {
	rows := make([]weightRow, 0, len(w))
	for ticker, weight := range w {
		rows = append(rows, weightRow{Ticker: ticker, Weight: weight})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Weight != rows[j].Weight {
			return rows[i].Weight > rows[j].Weight
		}
		return rows[i].Ticker < rows[j].Ticker
	})
	return rows
}

// renderReportMarkdown renders the report to markdown using the embedded template.
func renderReportMarkdown(report *optimization.Report) (string, error) {
	tmpl, err := template.New("report.md").Funcs(reportFuncs).ParseFS(templates, "templates/report.md")
	if err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, report); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return b.String(), nil
}

// styleMarkdown renders markdown for the terminal. Styling is dropped when stdout is not a TTY.
func styleMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render(md)
}

// Package cli provides rendering utilities for budgetctl terminal output.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/shopspring/decimal"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

var confidenceStyles = map[domain.Confidence]lipgloss.Style{
	domain.ConfidenceHigh:   lipgloss.NewStyle().Foreground(ColorGreen),
	domain.ConfidenceMedium: lipgloss.NewStyle().Foreground(ColorOrange),
	domain.ConfidenceLow:    lipgloss.NewStyle().Foreground(ColorRed),
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(60).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table. The first two columns are left-aligned,
// the rest right-aligned. A row holding a single "---" cell renders as a separator.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(pad(h, widths[i], i < 2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(pad(cell, widths[i], i < 2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")

	return b.String()
}

func pad(cell string, width int, left bool) string {
	gap := width - lipgloss.Width(cell)
	if gap < 0 {
		gap = 0
	}
	if left {
		return " " + cell + strings.Repeat(" ", gap) + " "
	}
	return " " + strings.Repeat(" ", gap) + cell + " "
}

// FormatMoney formats an amount as dollars with two decimals.
func FormatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// RecommendationTable builds the table shown by `budgetctl recommend`,
// closed by a total row.
func RecommendationTable(recs []*domain.Recommendation) Table {
	rows := make([][]string, 0, len(recs)+2)
	total := decimal.Zero
	for _, r := range recs {
		total = total.Add(r.RecommendedBudget)
		rows = append(rows, []string{
			r.Category,
			r.SubCategory,
			FormatMoney(r.RecommendedBudget),
			FormatMoney(r.Last6MonthAvg),
			FormatMoney(r.Last3MonthAvg),
			FormatMoney(r.Last1MonthActual),
			fmt.Sprintf("%d", r.DataMonths),
			RenderConfidence(r.Confidence),
		})
	}
	if len(recs) > 0 {
		rows = append(rows, []string{"---"})
		rows = append(rows, []string{"Total", "", FormatMoney(total)})
	}

	return Table{
		Headers: []string{"Category", "Subcategory", "Recommended", "6mo Avg", "3mo Avg", "Last Month", "Months", "Confidence"},
		Rows:    rows,
	}
}

// SubcategoryBudgetTable builds the table shown by `budgetctl budgets list`.
func SubcategoryBudgetTable(budgets []domain.SubcategoryBudget) Table {
	rows := make([][]string, 0, len(budgets))
	for _, b := range budgets {
		grouping := "subcategory"
		if b.BudgetByCategory {
			grouping = "category"
		}
		active := "yes"
		if !b.IsActive {
			active = "no"
		}
		rows = append(rows, []string{b.Category, b.SubCategory, FormatMoney(b.BudgetAmount), grouping, active})
	}
	return Table{
		Headers: []string{"Category", "Subcategory", "Budget", "Grouping", "Active"},
		Rows:    rows,
	}
}

// RenderConfidence colors a confidence grade.
func RenderConfidence(c domain.Confidence) string {
	if style, ok := confidenceStyles[c]; ok {
		return style.Render(string(c))
	}
	return mutedStyle.Render(string(c))
}

// RenderMigrationStats renders the outcome of a migration run.
func RenderMigrationStats(stats *domain.MigrationStats) string {
	return RenderTable(Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Categories processed", fmt.Sprintf("%d", stats.CategoriesProcessed)},
			{"Subcategory budgets written", fmt.Sprintf("%d", stats.SubcategoriesCreated)},
			{"Total migrated", FormatMoney(stats.TotalBudgetMigrated)},
		},
	})
}

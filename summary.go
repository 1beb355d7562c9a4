package main

import (
	"fmt"
	"strings"

	"mixed-route-planner/routing"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the one-shot CLI report.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff9e64"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9ece6a"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e0af68"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7aa2f7")).Padding(0, 1)
)

// renderSummary formats a plan as a bordered terminal panel: totals, one row
// per segment, then any warnings.
func renderSummary(name string, plan *routing.RoutePlan, meta RouteMeta) string {
	if name == "" {
		name = "route"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(name))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  chip=%s layer=%s width=%.4fmm", meta.Chip, meta.Layer, meta.TraceWidth)))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("length    "))
	b.WriteString(fmt.Sprintf("%.4f mm", plan.Length))
	if plan.Budget.Active {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (requested %.4f mm)", plan.Requested)))
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("points    "))
	b.WriteString(fmt.Sprintf("%d", len(plan.Points)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("leads     "))
	b.WriteString(fmt.Sprintf("%.4f / %.4f mm", plan.Head.Length(), plan.Tail.Length()))
	b.WriteString("\n\n")

	for _, seg := range plan.Segments {
		row := fmt.Sprintf("#%-2d %-2s %10.4f mm", seg.Index, seg.Strategy.Tag(), seg.Length())
		if seg.Strategy == routing.Meandered {
			row += dimStyle.Render(fmt.Sprintf("  target %.4f", seg.Target))
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(plan.Warnings) == 0 {
		b.WriteString(okStyle.Render("✓ no warnings"))
	}
	for i, w := range plan.Warnings {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(warningStyle.Render("⚠ " + w.Error()))
	}

	return panelStyle.Render(b.String())
}

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"

	"github.com/mtlprog/assettrack/internal/domain"
)

var (
	colorExpired  = lipgloss.AdaptiveColor{Light: "1", Dark: "9"}
	colorCritical = lipgloss.AdaptiveColor{Light: "1", Dark: "1"}
	colorWarning  = lipgloss.AdaptiveColor{Light: "3", Dark: "3"}
	colorMuted    = lipgloss.AdaptiveColor{Light: "8", Dark: "8"}

	styleHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
	styleBorder = lipgloss.NewStyle().Foreground(colorMuted)
	styleNotice = lipgloss.NewStyle().Foreground(colorWarning)
)

// statusStyle colours a row by lifecycle urgency.
func statusStyle(s domain.LifecycleStatus) lipgloss.Style {
	switch s {
	case domain.StatusExpired:
		return styleCell.Foreground(colorExpired).Bold(true)
	case domain.StatusCritical:
		return styleCell.Foreground(colorCritical)
	case domain.StatusWarning:
		return styleCell.Foreground(colorWarning)
	default:
		return styleCell
	}
}

// RenderTable renders the report as a terminal table followed by a summary.
func RenderTable(r Report) string {
	var b strings.Builder

	if !r.LiveRates {
		b.WriteString(styleNotice.Render("Exchange rates are approximate: live rates could not be fetched."))
		b.WriteString("\n")
	}

	rows := lo.Map(r.Rows, func(row Row, _ int) []string { return textCells(row) })

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styleBorder).
		Headers(columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if row < 0 || row >= len(r.Rows) {
				return styleCell
			}
			return statusStyle(r.Rows[row].Lifecycle.Status)
		})

	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(summary(r))
	return b.String()
}

func summary(r Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Assets: %d", len(r.Rows))
	for _, k := range domain.AssetKinds {
		fmt.Fprintf(&b, "  %s: %d", k.Label(), r.CountsByKind[k])
	}
	b.WriteString("\n")

	b.WriteString("Offices:")
	for _, o := range domain.Offices {
		fmt.Fprintf(&b, "  %s: %d", o, r.CountsByOffice[o])
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Total value: %s %s", r.TotalUSD.StringFixed(2), ReportCurrency)
	if r.RatesUpdatedAt != nil {
		fmt.Fprintf(&b, "  (rates as of %s)", r.RatesUpdatedAt.UTC().Format(time.RFC3339))
	}
	b.WriteString("\n")
	return b.String()
}

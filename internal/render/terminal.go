package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"syndicpulse/internal/core"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	kpiStyle     = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)

	statusColors = map[core.PaymentStatus]lipgloss.Color{
		core.StatusPaid:    lipgloss.Color("10"),
		core.StatusPending: lipgloss.Color("11"),
		core.StatusOverdue: lipgloss.Color("9"),
	}
)

// WriteTerminal draws the screen view as styled terminal tables.
func WriteTerminal(w io.Writer, v ScreenView) error {
	if _, err := fmt.Fprintln(w, headingStyle.Render(v.Title+" · "+v.Building+" · "+v.Period)); err != nil {
		return err
	}

	cards := make([]string, 0, len(v.KPIs))
	for _, k := range v.KPIs {
		cards = append(cards, kpiStyle.Render(k.Label+"\n"+k.Value))
	}
	if _, err := fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cards...)); err != nil {
		return err
	}

	for _, t := range []Table{v.Expenses, v.Residents, v.Categories} {
		if _, err := fmt.Fprintln(w, "\n"+headingStyle.Render(t.Title)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, terminalTable(t).Render()); err != nil {
			return err
		}
	}
	return nil
}

func terminalTable(t Table) *table.Table {
	rows := t.Rows
	if len(t.Footer) > 0 {
		rows = append(append([][]string(nil), rows...), t.Footer)
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if t.Statuses != nil && row >= 0 && row < len(t.Statuses) && col == 3 {
				return cellStyle.Foreground(statusColors[t.Statuses[row]])
			}
			return cellStyle
		})
}

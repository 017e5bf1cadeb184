package render

import (
	"syndicpulse/internal/core"
	"syndicpulse/internal/report"
)

type (
	// ScreenView is the display-ready form of a report used by the JSON API
	// and the terminal renderer.
	ScreenView struct {
		Title      string `json:"title"`
		Building   string `json:"building"`
		Period     string `json:"period"`
		KPIs       []KPI  `json:"kpis"`
		Expenses   Table  `json:"expenses"`
		Residents  Table  `json:"residents"`
		Categories Table  `json:"categories"`
	}

	KPI struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}

	Table struct {
		Title   string     `json:"title"`
		Headers []string   `json:"headers"`
		Rows    [][]string `json:"rows"`
		Footer  []string   `json:"footer,omitempty"`
		// Statuses parallels Rows for the resident table.
		Statuses []core.PaymentStatus `json:"statuses,omitempty"`
	}
)

// Screen converts the report to display rows. Amounts carry the currency
// label; counts and statuses are the report's own values.
func Screen(r report.Report) ScreenView {
	m := r.Meta
	v := ScreenView{
		Title:    title(m),
		Building: m.BuildingName,
		Period:   m.ReferenceLabel,
	}

	s := r.Summary
	v.KPIs = []KPI{
		{Label: labelPaid, Value: itoa(s.PaidCount)},
		{Label: labelPending, Value: itoa(s.PendingCount)},
		{Label: labelOverdue, Value: itoa(s.OverdueCount)},
		{Label: labelUnits, Value: itoa(s.TotalUnits)},
		{Label: labelExpenses, Value: s.TotalExpenses.Format(m.Currency)},
	}

	v.Expenses = Table{
		Title:   blockJournal,
		Headers: []string{colDate, colCategory, colVendor, colDescription, colAmount, colInvoice},
		Rows:    make([][]string, 0, len(r.ExpenseRows)),
		Footer:  []string{totalLabel, "", "", "", r.ExpenseTotal().Format(m.Currency), ""},
	}
	for _, e := range r.ExpenseRows {
		v.Expenses.Rows = append(v.Expenses.Rows, []string{
			e.Date.String(), e.Category, e.Vendor, e.Description, e.FormattedAmount, yesNo(e.HasInvoice),
		})
	}

	v.Residents = Table{
		Title:    blockResidents,
		Headers:  residentHeader(),
		Rows:     make([][]string, 0, len(r.ResidentRows)),
		Statuses: make([]core.PaymentStatus, 0, len(r.ResidentRows)),
	}
	for _, res := range r.ResidentRows {
		v.Residents.Rows = append(v.Residents.Rows, []string{
			res.Unit, res.Name, res.Phone, res.StatusLabel, res.PaidThroughLabel, res.Since,
		})
		v.Residents.Statuses = append(v.Residents.Statuses, res.Status)
	}

	v.Categories = Table{
		Title:   blockCategories,
		Headers: []string{colCategory, colAmount, colShare},
		Rows:    make([][]string, 0, len(r.CategoryRows)),
	}
	for _, c := range r.CategoryRows {
		v.Categories.Rows = append(v.Categories.Rows, []string{c.Category, c.FormattedAmount, itoa(c.Percentage)})
	}
	return v
}

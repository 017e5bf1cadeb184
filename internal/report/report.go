// Package report assembles the renderer-agnostic financial report of a
// building from its residents, expense journal and expense breakdown.
package report

import (
	"fmt"

	"syndicpulse/internal/core"
)

// Options carries presentation inputs that are not part of the ledger.
// GeneratedOn is supplied by the caller so assembly stays deterministic.
type Options struct {
	AppName     string
	Currency    string
	GeneratedOn core.Date
}

type (
	Report struct {
		Meta         Meta
		Summary      Summary
		ExpenseRows  []ExpenseRow
		ResidentRows []ResidentRow
		CategoryRows []CategoryRow
	}

	Meta struct {
		AppName         string
		Currency        string
		BuildingID      string
		BuildingName    string
		BuildingCity    string
		BuildingAddress string
		ReferenceMonth  core.YearMonth
		ReferenceLabel  string
		GeneratedOn     core.Date
	}

	Summary struct {
		PaidCount     int
		PendingCount  int
		OverdueCount  int
		ResidentCount int
		TotalUnits    int
		TotalExpenses core.Money
	}

	ExpenseRow struct {
		Date            core.Date
		Category        string
		Vendor          string
		Description     string
		Amount          core.Money
		FormattedAmount string
		HasInvoice      bool
	}

	ResidentRow struct {
		ID               string
		Unit             string
		Name             string
		Phone            string
		Status           core.PaymentStatus
		StatusLabel      string
		PaidThrough      core.YearMonth
		PaidThroughLabel string
		Since            string
	}

	CategoryRow struct {
		Category        string
		Amount          core.Money
		FormattedAmount string
		Percentage      int
	}
)

// Assemble classifies every resident against reference and copies the
// journal and breakdown into display rows. Rows keep their input order.
// Empty inputs yield zero counts and empty rows.
func Assemble(
	b core.Building,
	residents []core.Resident,
	journal []core.ExpenseEntry,
	breakdown []core.CategoryShare,
	reference core.YearMonth,
	opts Options,
) (Report, error) {
	if err := reference.Validate(); err != nil {
		return Report{}, fmt.Errorf("reference month: %w", err)
	}

	r := Report{
		Meta: Meta{
			AppName:         opts.AppName,
			Currency:        opts.Currency,
			BuildingID:      b.ID,
			BuildingName:    b.Name,
			BuildingCity:    b.City,
			BuildingAddress: b.Address,
			ReferenceMonth:  reference,
			ReferenceLabel:  reference.Label(),
			GeneratedOn:     opts.GeneratedOn,
		},
		Summary: Summary{
			ResidentCount: len(residents),
			TotalUnits:    b.TotalUnits,
		},
		ExpenseRows:  make([]ExpenseRow, 0, len(journal)),
		ResidentRows: make([]ResidentRow, 0, len(residents)),
		CategoryRows: make([]CategoryRow, 0, len(breakdown)),
	}

	for _, res := range residents {
		status, err := core.Classify(res.PaidThrough, reference)
		if err != nil {
			return Report{}, fmt.Errorf("resident %s (%s): %w", res.ID, res.Unit, err)
		}
		switch status {
		case core.StatusPaid:
			r.Summary.PaidCount++
		case core.StatusPending:
			r.Summary.PendingCount++
		case core.StatusOverdue:
			r.Summary.OverdueCount++
		}
		r.ResidentRows = append(r.ResidentRows, ResidentRow{
			ID:               res.ID,
			Unit:             res.Unit,
			Name:             res.Name,
			Phone:            res.Phone,
			Status:           status,
			StatusLabel:      status.Label(),
			PaidThrough:      res.PaidThrough,
			PaidThroughLabel: res.PaidThrough.Label(),
			Since:            res.Since,
		})
	}

	for _, e := range journal {
		r.Summary.TotalExpenses = r.Summary.TotalExpenses.Add(e.Amount)
		r.ExpenseRows = append(r.ExpenseRows, ExpenseRow{
			Date:            e.Date,
			Category:        e.Category,
			Vendor:          e.Vendor,
			Description:     e.Description,
			Amount:          e.Amount,
			FormattedAmount: e.Amount.Format(opts.Currency),
			HasInvoice:      e.HasInvoice,
		})
	}

	for _, c := range breakdown {
		r.CategoryRows = append(r.CategoryRows, CategoryRow{
			Category:        c.Category,
			Amount:          c.Amount,
			FormattedAmount: c.Amount.Format(opts.Currency),
			Percentage:      c.Percentage,
		})
	}

	return r, nil
}

// ExpenseTotal sums the listed expense rows. It equals Summary.TotalExpenses
// for any assembled report.
func (r Report) ExpenseTotal() core.Money {
	var total core.Money
	for _, row := range r.ExpenseRows {
		total = total.Add(row.Amount)
	}
	return total
}

// CollectionRate is the share of listed residents who are paid, in percent.
func (s Summary) CollectionRate() float64 {
	if s.ResidentCount == 0 {
		return 0
	}
	return float64(s.PaidCount) * 100 / float64(s.ResidentCount)
}

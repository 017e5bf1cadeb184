package ledger

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"syndicpulse/internal/core"
)

type (
	// Seed is the YAML document a store is bootstrapped from.
	Seed struct {
		Buildings []SeedBuilding `yaml:"buildings"`
	}

	SeedBuilding struct {
		ID          string          `yaml:"id"`
		OrgID       string          `yaml:"org_id"`
		Name        string          `yaml:"name"`
		City        string          `yaml:"city"`
		Address     string          `yaml:"address"`
		TotalUnits  int             `yaml:"total_units"`
		ReserveFund int64           `yaml:"reserve_fund"`
		Manager     string          `yaml:"manager"`
		Residents   []SeedResident  `yaml:"residents"`
		Expenses    []SeedExpense   `yaml:"expenses"`
		Breakdown   []SeedBreakdown `yaml:"breakdown"`
	}

	// SeedResident carries either an explicit paid_through month or a status
	// that is converted relative to the reference month. Neither means never paid.
	SeedResident struct {
		ID          string `yaml:"id"`
		Unit        string `yaml:"unit"`
		Name        string `yaml:"name"`
		Phone       string `yaml:"phone"`
		Floor       int    `yaml:"floor"`
		Type        string `yaml:"type"`
		Since       string `yaml:"since"`
		PaidThrough string `yaml:"paid_through,omitempty"`
		Status      string `yaml:"status,omitempty"`
	}

	SeedExpense struct {
		ID          string `yaml:"id"`
		Date        string `yaml:"date"`
		Category    string `yaml:"category"`
		Vendor      string `yaml:"vendor"`
		Amount      int64  `yaml:"amount"`
		Description string `yaml:"description"`
		HasInvoice  bool   `yaml:"has_invoice"`
	}

	SeedBreakdown struct {
		Category   string `yaml:"category"`
		Amount     int64  `yaml:"amount"`
		Percentage int    `yaml:"percentage"`
	}

	// BuildingData is a seed building converted to domain values.
	BuildingData struct {
		Building  core.Building
		Residents []core.Resident
		Expenses  []core.ExpenseEntry
		Breakdown []core.CategoryShare
	}
)

// LoadSeed reads a YAML seed document.
func LoadSeed(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return s, nil
}

// Resolve converts the seed to domain values. reference is used for
// residents that only carry a status.
func (s Seed) Resolve(reference core.YearMonth) ([]BuildingData, error) {
	out := make([]BuildingData, 0, len(s.Buildings))
	seen := make(map[string]bool, len(s.Buildings))
	for _, sb := range s.Buildings {
		if sb.ID == "" {
			return nil, fmt.Errorf("seed building %q: missing id", sb.Name)
		}
		if seen[sb.ID] {
			return nil, fmt.Errorf("seed building %s: %w", sb.ID, ErrDuplicate)
		}
		seen[sb.ID] = true

		bd := BuildingData{
			Building: core.Building{
				ID:          sb.ID,
				OrgID:       sb.OrgID,
				Name:        sb.Name,
				City:        sb.City,
				Address:     sb.Address,
				TotalUnits:  sb.TotalUnits,
				ReserveFund: core.Money{Units: sb.ReserveFund},
				Manager:     sb.Manager,
			},
			Residents: make([]core.Resident, 0, len(sb.Residents)),
			Expenses:  make([]core.ExpenseEntry, 0, len(sb.Expenses)),
			Breakdown: make([]core.CategoryShare, 0, len(sb.Breakdown)),
		}

		for _, sr := range sb.Residents {
			r, err := sr.resolve(reference)
			if err != nil {
				return nil, fmt.Errorf("seed building %s: resident %s: %w", sb.ID, sr.ID, err)
			}
			bd.Residents = append(bd.Residents, r)
		}
		for _, se := range sb.Expenses {
			d, err := core.ParseDate(se.Date)
			if err != nil {
				return nil, fmt.Errorf("seed building %s: expense %s: %w", sb.ID, se.ID, err)
			}
			bd.Expenses = append(bd.Expenses, core.ExpenseEntry{
				ID:          se.ID,
				Date:        d,
				Category:    se.Category,
				Vendor:      se.Vendor,
				Amount:      core.Money{Units: se.Amount},
				Description: se.Description,
				HasInvoice:  se.HasInvoice,
			})
		}
		for _, c := range sb.Breakdown {
			bd.Breakdown = append(bd.Breakdown, core.CategoryShare{
				Category:   c.Category,
				Amount:     core.Money{Units: c.Amount},
				Percentage: c.Percentage,
			})
		}
		out = append(out, bd)
	}
	return out, nil
}

func (sr SeedResident) resolve(reference core.YearMonth) (core.Resident, error) {
	r := core.Resident{
		ID:    sr.ID,
		Unit:  sr.Unit,
		Name:  sr.Name,
		Phone: sr.Phone,
		Floor: sr.Floor,
		Type:  core.NormalizeResidentType(sr.Type),
		Since: sr.Since,
	}
	switch {
	case sr.PaidThrough != "":
		pt, err := core.ParseYearMonth(sr.PaidThrough)
		if err != nil {
			return core.Resident{}, err
		}
		r.PaidThrough = pt
	case sr.Status != "":
		status, err := core.ParsePaymentStatus(sr.Status)
		if err != nil {
			return core.Resident{}, err
		}
		pt, err := core.PaidThroughFor(status, reference)
		if err != nil {
			return core.Resident{}, err
		}
		r.PaidThrough = pt
	}
	return r, r.Validate()
}

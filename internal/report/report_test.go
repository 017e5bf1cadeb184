package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syndicpulse/internal/core"
)

var ref = core.MustYearMonth(2026, 2)

func norwest() core.Building {
	return core.Building{
		ID:         "bld-1",
		Name:       "Norwest",
		City:       "Tanger",
		Address:    "Av. Mohammed VI, Résidence Norwest, Tanger 90000",
		TotalUnits: 48,
	}
}

func residents() []core.Resident {
	return []core.Resident{
		{ID: "r08", Unit: "Apt 6B", Name: "Mehdi Chraibi", Phone: "+212668901234", Since: "2021", PaidThrough: core.MustYearMonth(2026, 1)},
		{ID: "r10", Unit: "Apt 9A", Name: "Lamia Bensouda", Phone: "+212661123456", Since: "2019", PaidThrough: core.MustYearMonth(2026, 2)},
		{ID: "r11", Unit: "Apt 11C", Name: "Lamia Tazi", Phone: "+212662234567", Since: "2023", PaidThrough: core.MustYearMonth(2025, 11)},
		{ID: "r99", Unit: "Apt 12B", Name: "Nouveau Résident", Since: "Fév. 2026"},
	}
}

func journal() []core.ExpenseEntry {
	return []core.ExpenseEntry{
		{ID: "el1", Date: core.NewDate(2026, 2, 18), Category: "Entretien & réparations", Vendor: "Otis Morocco", Amount: core.Money{Units: 8400}, Description: "Révision complète ascenseur Bloc B", HasInvoice: true},
		{ID: "el2", Date: core.NewDate(2026, 2, 15), Category: "Nettoyage", Vendor: "ProNet SARL", Amount: core.Money{Units: 3200}, Description: "Nettoyage mensuel parties communes", HasInvoice: true},
		{ID: "el3", Date: core.NewDate(2026, 2, 10), Category: "Eau & Électricité", Vendor: "Redal", Amount: core.Money{Units: 1850}, Description: "Facture eau parties communes", HasInvoice: true},
		{ID: "el4", Date: core.NewDate(2026, 2, 8), Category: "Entretien & réparations", Vendor: "IBS Plomberie", Amount: core.Money{Units: 3600}, Description: "Réparation fuite parking sous-sol", HasInvoice: false},
	}
}

func breakdown() []core.CategoryShare {
	return []core.CategoryShare{
		{Category: "Entretien & réparations", Amount: core.Money{Units: 12400}, Percentage: 38},
		{Category: "Gardiennage", Amount: core.Money{Units: 8200}, Percentage: 25},
	}
}

func opts() Options {
	return Options{AppName: "SyndicPulse", Currency: "MAD", GeneratedOn: core.NewDate(2026, 2, 20)}
}

func TestAssemble_Summary(t *testing.T) {
	r, err := Assemble(norwest(), residents(), journal(), breakdown(), ref, opts())
	require.NoError(t, err)

	assert.Equal(t, 1, r.Summary.PaidCount)
	assert.Equal(t, 1, r.Summary.PendingCount)
	assert.Equal(t, 2, r.Summary.OverdueCount)
	assert.Equal(t, 4, r.Summary.ResidentCount)
	assert.Equal(t, 48, r.Summary.TotalUnits)
	assert.Equal(t, int64(17050), r.Summary.TotalExpenses.Units)
	assert.Equal(t, r.Summary.TotalExpenses, r.ExpenseTotal())
	assert.InDelta(t, 25.0, r.Summary.CollectionRate(), 0.001)
}

func TestAssemble_Rows(t *testing.T) {
	r, err := Assemble(norwest(), residents(), journal(), breakdown(), ref, opts())
	require.NoError(t, err)

	require.Len(t, r.ResidentRows, 4)
	units := make([]string, 0, len(r.ResidentRows))
	for _, row := range r.ResidentRows {
		units = append(units, row.Unit)
	}
	assert.Equal(t, []string{"Apt 6B", "Apt 9A", "Apt 11C", "Apt 12B"}, units)

	assert.Equal(t, core.StatusPending, r.ResidentRows[0].Status)
	assert.Equal(t, "En attente", r.ResidentRows[0].StatusLabel)
	assert.Equal(t, "Janvier 2026", r.ResidentRows[0].PaidThroughLabel)
	assert.Equal(t, core.StatusOverdue, r.ResidentRows[3].Status)
	assert.Equal(t, "—", r.ResidentRows[3].PaidThroughLabel)

	require.Len(t, r.ExpenseRows, 4)
	assert.Equal(t, "8 400 MAD", r.ExpenseRows[0].FormattedAmount)
	assert.Equal(t, "IBS Plomberie", r.ExpenseRows[3].Vendor)
	assert.False(t, r.ExpenseRows[3].HasInvoice)

	require.Len(t, r.CategoryRows, 2)
	assert.Equal(t, 38, r.CategoryRows[0].Percentage)
	assert.Equal(t, "12 400 MAD", r.CategoryRows[0].FormattedAmount)

	assert.Equal(t, "Février 2026", r.Meta.ReferenceLabel)
	assert.Equal(t, "Norwest", r.Meta.BuildingName)
	assert.Equal(t, "2026-02-20", r.Meta.GeneratedOn.String())
}

func TestAssemble_Deterministic(t *testing.T) {
	a, err := Assemble(norwest(), residents(), journal(), breakdown(), ref, opts())
	require.NoError(t, err)
	b, err := Assemble(norwest(), residents(), journal(), breakdown(), ref, opts())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAssemble_DoesNotMutateInputs(t *testing.T) {
	in := residents()
	before := append([]core.Resident(nil), in...)
	_, err := Assemble(norwest(), in, journal(), breakdown(), ref, opts())
	require.NoError(t, err)
	assert.Equal(t, before, in)
}

func TestAssemble_Empty(t *testing.T) {
	r, err := Assemble(norwest(), nil, nil, nil, ref, opts())
	require.NoError(t, err)
	assert.Zero(t, r.Summary.PaidCount)
	assert.Zero(t, r.Summary.OverdueCount)
	assert.Zero(t, r.Summary.TotalExpenses.Units)
	assert.NotNil(t, r.ResidentRows)
	assert.Empty(t, r.ResidentRows)
	assert.Empty(t, r.ExpenseRows)
	assert.Empty(t, r.CategoryRows)
	assert.Zero(t, r.Summary.CollectionRate())
}

func TestAssemble_MalformedInput(t *testing.T) {
	_, err := Assemble(norwest(), residents(), nil, nil, core.YearMonth{Year: 2026, Month: 13}, opts())
	assert.ErrorIs(t, err, core.ErrInvalidMonth)

	bad := residents()
	bad[1].PaidThrough = core.YearMonth{Year: 2026, Month: 0}
	_, err = Assemble(norwest(), bad, nil, nil, ref, opts())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
	assert.Contains(t, err.Error(), "r10")
}
